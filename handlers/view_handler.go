// handlers/view_handler.go
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
	"github.com/monizb/vmp/middleware"
	"github.com/monizb/vmp/models"
	"github.com/monizb/vmp/utils"
)

// ownerID resolves the caller's user id. Saved views are strictly
// personal: every query below is scoped by ownerUserId, so one user can
// never see or touch another's presets.
func ownerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	principal := middleware.PrincipalFrom(r.Context())
	if principal == nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(principal.ID)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return primitive.NilObjectID, false
	}
	return userID, true
}

// ListViews returns the caller's saved views, optionally filtered by
// ?entityType.
func ListViews(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	filter := bson.M{"ownerUserId": owner}
	if entityType := r.URL.Query().Get("entityType"); entityType != "" {
		filter["entityType"] = entityType
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := viewCollection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		logging.Logger.Errorf("views Find error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}
	defer cursor.Close(ctx)

	var views []models.SavedView
	if err = cursor.All(ctx, &views); err != nil {
		logging.Logger.Errorf("cursor decode error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to decode views")
		return
	}
	if views == nil {
		views = []models.SavedView{}
	}

	utils.RespondWithJSON(w, http.StatusOK, views)
}

func GetView(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	viewID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid view id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var view models.SavedView
	err = viewCollection.FindOne(ctx, bson.M{"_id": viewID, "ownerUserId": owner}).Decode(&view)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "View not found")
			return
		}
		logging.Logger.Errorf("find view error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "database query failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, view)
}

type viewRequest struct {
	Name       string `json:"name"`
	EntityType string `json:"entityType"`
	Filters    bson.M `json:"filters"`
}

func CreateView(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}

	var req viewRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	if req.Name == "" || req.EntityType == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Name and entity type are required")
		return
	}
	if req.Filters == nil {
		req.Filters = bson.M{}
	}

	now := time.Now().UTC()
	view := models.SavedView{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		EntityType:  req.EntityType,
		Filters:     req.Filters,
		OwnerUserID: owner,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if _, err := viewCollection.InsertOne(ctx, view); err != nil {
		logging.Logger.Errorf("insert view error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to create view")
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, view)
}

func UpdateView(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	viewID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid view id format")
		return
	}

	var req struct {
		Name       *string `json:"name,omitempty"`
		EntityType *string `json:"entityType,omitempty"`
		Filters    *bson.M `json:"filters,omitempty"`
	}
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	update := bson.M{"updatedAt": time.Now().UTC()}
	if req.Name != nil {
		update["name"] = *req.Name
	}
	if req.EntityType != nil {
		update["entityType"] = *req.EntityType
	}
	if req.Filters != nil {
		update["filters"] = *req.Filters
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var view models.SavedView
	err = viewCollection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": viewID, "ownerUserId": owner},
		bson.M{"$set": update},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&view)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			utils.RespondWithError(w, http.StatusNotFound, "View not found")
			return
		}
		logging.Logger.Errorf("update view error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update view")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, view)
}

func DeleteView(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerID(w, r)
	if !ok {
		return
	}
	viewID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid view id format")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := viewCollection.DeleteOne(ctx, bson.M{"_id": viewID, "ownerUserId": owner})
	if err != nil {
		logging.Logger.Errorf("delete view error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to delete view")
		return
	}
	if result.DeletedCount == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "View not found")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
