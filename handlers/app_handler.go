// handlers/app_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/monizb/vmp/logging"
	"github.com/monizb/vmp/models"
	"github.com/monizb/vmp/utils"
)

// ListApps returns applications, optionally filtered by teamId and
// platform query parameters. Team scoping for Dev/ProductOwner callers is
// enforced by the route policy before this runs.
func ListApps(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if teamIDStr := r.URL.Query().Get("teamId"); teamIDStr != "" {
		teamID, err := primitive.ObjectIDFromHex(teamIDStr)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid team id format")
			return
		}
		filter["teamId"] = teamID
	}
	if platform := r.URL.Query().Get("platform"); platform != "" {
		filter["platform"] = platform
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := appCollection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		logging.Logger.Errorf("apps Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var apps []models.Application
	if err = cursor.All(ctx, &apps); err != nil {
		logging.Logger.Errorf("cursor decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode applications")
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}

	utils.RespondWithJSON(w, http.StatusOK, apps)
}

func GetApp(w http.ResponseWriter, r *http.Request) {
	appID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid application id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var app models.Application
	err = appCollection.FindOne(ctx, bson.M{"_id": appID}).Decode(&app)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Application not found")
			return
		}
		logging.Logger.Errorf("find application error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, app)
}

type appRequest struct {
	Name        string `json:"name"`
	Platform    string `json:"platform"`
	TeamID      string `json:"teamId"`
	Description string `json:"description"`
}

func CreateApp(w http.ResponseWriter, r *http.Request) {
	var req appRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.Name == "" || req.Platform == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Name and platform are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	now := time.Now().UTC()
	app := models.Application{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Platform:    req.Platform,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.TeamID != "" {
		teamID, err := primitive.ObjectIDFromHex(req.TeamID)
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "invalid team id format")
			return
		}
		app.TeamID = &teamID
	}

	if _, err := appCollection.InsertOne(ctx, app); err != nil {
		logging.Logger.Errorf("insert application error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create application")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, app)
}

func UpdateApp(w http.ResponseWriter, r *http.Request) {
	appID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid application id format")
		return
	}

	var req struct {
		Name        *string `json:"name,omitempty"`
		Platform    *string `json:"platform,omitempty"`
		TeamID      *string `json:"teamId,omitempty"`
		Description *string `json:"description,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	update := bson.M{"updatedAt": time.Now().UTC()}
	if req.Name != nil {
		update["name"] = *req.Name
	}
	if req.Platform != nil {
		update["platform"] = *req.Platform
	}
	if req.Description != nil {
		update["description"] = *req.Description
	}
	if req.TeamID != nil {
		if *req.TeamID == "" {
			update["teamId"] = nil
		} else {
			teamID, err := primitive.ObjectIDFromHex(*req.TeamID)
			if err != nil {
				utils.RespondWithError(w, http.StatusBadRequest, "invalid team id format")
				return
			}
			update["teamId"] = teamID
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var app models.Application
	err = appCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": appID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&app)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Application not found")
			return
		}
		logging.Logger.Errorf("update application error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update application")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, app)
}

func DeleteApp(w http.ResponseWriter, r *http.Request) {
	appID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid application id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Findings outlive parsers and reports, but never their application.
	vulnCount, err := vulnCollection.CountDocuments(ctx, bson.M{"applicationId": appID})
	if err != nil {
		logging.Logger.Errorf("check linked vulns error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database error")
		return
	}
	if vulnCount > 0 {
		utils.RespondWithError(w, http.StatusConflict, "application has linked vulnerabilities, cannot delete")
		return
	}

	result, err := appCollection.DeleteOne(ctx, bson.M{"_id": appID})
	if err != nil {
		logging.Logger.Errorf("delete application error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete application")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Application not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
