// handlers/team_handler.go
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

func ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := teamCollection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		logging.Logger.Errorf("teams Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var teams []models.Team
	if err = cursor.All(ctx, &teams); err != nil {
		logging.Logger.Errorf("cursor decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode teams")
		return
	}
	if teams == nil {
		teams = []models.Team{}
	}

	utils.RespondWithJSON(w, http.StatusOK, teams)
}

func GetTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid team id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var team models.Team
	err = teamCollection.FindOne(ctx, bson.M{"_id": teamID}).Decode(&team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Team not found")
			return
		}
		logging.Logger.Errorf("find team error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, team)
}

type teamRequest struct {
	Name           string   `json:"name"`
	Platform       string   `json:"platform"`
	ApplicationIDs []string `json:"applicationIds"`
}

func CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
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
	team := models.Team{
		ID:             primitive.NewObjectID(),
		Name:           req.Name,
		Platform:       req.Platform,
		ApplicationIDs: req.ApplicationIDs,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if team.ApplicationIDs == nil {
		team.ApplicationIDs = []string{}
	}

	if _, err := teamCollection.InsertOne(ctx, team); err != nil {
		logging.Logger.Errorf("insert team error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create team")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, team)
}

func UpdateTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid team id format")
		return
	}

	var req struct {
		Name           *string   `json:"name,omitempty"`
		Platform       *string   `json:"platform,omitempty"`
		ApplicationIDs *[]string `json:"applicationIds,omitempty"`
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
	if req.ApplicationIDs != nil {
		update["applicationIds"] = *req.ApplicationIDs
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var team models.Team
	err = teamCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": teamID},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&team)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "Team not found")
			return
		}
		logging.Logger.Errorf("update team error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update team")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, team)
}

func DeleteTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid team id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := teamCollection.DeleteOne(ctx, bson.M{"_id": teamID})
	if err != nil {
		logging.Logger.Errorf("delete team error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete team")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "Team not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetTeamsByPlatform lists teams for a single platform.
func GetTeamsByPlatform(w http.ResponseWriter, r *http.Request) {
	platform := mux.Vars(r)["platform"]

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := teamCollection.Find(ctx, bson.M{"platform": platform}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		logging.Logger.Errorf("teams Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var teams []models.Team
	if err = cursor.All(ctx, &teams); err != nil {
		logging.Logger.Errorf("cursor decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode teams")
		return
	}
	if teams == nil {
		teams = []models.Team{}
	}

	utils.RespondWithJSON(w, http.StatusOK, teams)
}
