// handlers/user_handler.go
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/monizb/vmp/logging"
	"github.com/monizb/vmp/middleware"
	"github.com/monizb/vmp/models"
	"github.com/monizb/vmp/utils"
)

// ListUsers returns every user. Admin only (enforced in routes).
func ListUsers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := userCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		logging.Logger.Errorf("users Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		logging.Logger.Errorf("cursor decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode users")
		return
	}
	if users == nil {
		users = []models.User{}
	}

	utils.RespondWithJSON(w, http.StatusOK, users)
}

// GetMe returns the calling user's own record.
func GetMe(w http.ResponseWriter, r *http.Request) {
	principal := middleware.PrincipalFrom(r.Context())
	if principal == nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	userID, err := primitive.ObjectIDFromHex(principal.ID)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err = userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

func GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err = userCollection.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		logging.Logger.Errorf("find user error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

type createUserRequest struct {
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Role     string   `json:"role"`
	TeamIDs  []string `json:"teamIds"`
	Password string   `json:"password"`
}

func CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Name == "" || req.Role == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email, name, and role are required")
		return
	}
	if !models.ValidRole(req.Role) {
		utils.RespondWithError(w, http.StatusBadRequest, "Unknown role: "+req.Role)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	count, err := userCollection.CountDocuments(ctx, bson.M{"email": req.Email})
	if err != nil {
		logging.Logger.Errorf("unique check error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}
	if count > 0 {
		utils.RespondWithError(w, http.StatusConflict, "User with this email already exists")
		return
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        primitive.NewObjectID(),
		Email:     req.Email,
		Name:      req.Name,
		Role:      req.Role,
		TeamIDs:   req.TeamIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if user.TeamIDs == nil {
		user.TeamIDs = []string{}
	}
	if req.Password != "" {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
		user.PasswordHash = hash
	}

	if _, err := userCollection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "User with this email already exists")
			return
		}
		logging.Logger.Errorf("insert user error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, user)
}

type updateUserRequest struct {
	Email    *string   `json:"email,omitempty"`
	Name     *string   `json:"name,omitempty"`
	Role     *string   `json:"role,omitempty"`
	TeamIDs  *[]string `json:"teamIds,omitempty"`
	Password *string   `json:"password,omitempty"`
}

func UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id format")
		return
	}

	var req updateUserRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	update := bson.M{"updatedAt": time.Now().UTC()}
	if req.Email != nil {
		update["email"] = strings.TrimSpace(*req.Email)
	}
	if req.Name != nil {
		update["name"] = *req.Name
	}
	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			utils.RespondWithError(w, http.StatusBadRequest, "Unknown role: "+*req.Role)
			return
		}
		update["role"] = *req.Role
	}
	if req.TeamIDs != nil {
		update["teamIds"] = *req.TeamIDs
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := utils.HashPassword(*req.Password)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "failed to hash password")
			return
		}
		update["passwordHash"] = hash
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var user models.User
	err = userCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": userID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		logging.Logger.Errorf("update user error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

func DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid user id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := userCollection.DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		logging.Logger.Errorf("delete user error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	// Orphaned refresh tokens are just dead weight; drop them with the user.
	if _, err := refreshCollection.DeleteMany(ctx, bson.M{"userId": userID.Hex()}); err != nil {
		logging.Logger.Warnf("refresh token cleanup failed: %v", err)
	}

	w.WriteHeader(http.StatusNoContent)
}
