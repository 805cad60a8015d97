// handlers/auth_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/monizb/vmp/logging"
	"github.com/monizb/vmp/models"
	"github.com/monizb/vmp/utils"
)

// Login validates credentials and issues an access/refresh token pair.
// The refresh token is persisted so it can be revoked and rotated.
func Login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := utils.ParseJSON(r, &creds); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	creds.Email = strings.TrimSpace(creds.Email)
	if creds.Email == "" || creds.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err := userCollection.FindOne(ctx, bson.M{"email": creds.Email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Burn the same bcrypt cost as a real comparison so absent
			// accounts are not distinguishable by timing.
			_ = utils.CheckPasswordHash("dummy_password", "$2a$10$dummyhashfordummycomparison")
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		logging.Logger.Errorf("login lookup failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}

	if user.PasswordHash == "" || !utils.CheckPasswordHash(creds.Password, user.PasswordHash) {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	accessToken, err := utils.GenerateAccessToken(user.ID.Hex(), user.Email, user.Role, user.TeamIDs)
	if err != nil {
		logging.Logger.Errorf("access token generation failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	refreshToken, err := utils.GenerateRefreshToken(user.ID.Hex())
	if err != nil {
		logging.Logger.Errorf("refresh token generation failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	_, err = refreshCollection.InsertOne(ctx, models.RefreshToken{
		ID:        primitive.NewObjectID(),
		UserID:    user.ID.Hex(),
		Token:     refreshToken,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		logging.Logger.Errorf("refresh token persist failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to persist token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"user":         user,
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	})
}

// Refresh rotates a refresh token: the presented token must verify and
// still exist in the revocation store; it is deleted and replaced in the
// same request, so each refresh token works exactly once.
func Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := utils.ParseJSON(r, &req); err != nil || req.RefreshToken == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	claims, err := utils.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var stored models.RefreshToken
	err = refreshCollection.FindOne(ctx, bson.M{"token": req.RefreshToken}).Decode(&stored)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	if _, err := refreshCollection.DeleteOne(ctx, bson.M{"token": req.RefreshToken}); err != nil {
		logging.Logger.Errorf("refresh token delete failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	var user models.User
	err = userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "User not found")
		return
	}

	accessToken, err := utils.GenerateAccessToken(user.ID.Hex(), user.Email, user.Role, user.TeamIDs)
	if err != nil {
		logging.Logger.Errorf("access token generation failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	rotated, err := utils.GenerateRefreshToken(user.ID.Hex())
	if err != nil {
		logging.Logger.Errorf("refresh token generation failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	_, err = refreshCollection.InsertOne(ctx, models.RefreshToken{
		ID:        primitive.NewObjectID(),
		UserID:    user.ID.Hex(),
		Token:     rotated,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		logging.Logger.Errorf("refresh token persist failed: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to persist token")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]string{
		"accessToken":  accessToken,
		"refreshToken": rotated,
	})
}

// Logout revokes the presented refresh token. Always succeeds from the
// caller's point of view.
func Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := utils.ParseJSON(r, &req); err == nil && req.RefreshToken != "" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if _, err := refreshCollection.DeleteOne(ctx, bson.M{"token": req.RefreshToken}); err != nil {
			logging.Logger.Warnf("refresh token revoke failed: %v", err)
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
