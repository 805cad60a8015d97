// handlers/settings_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/monizb/vmp/logging"
	"github.com/monizb/vmp/models"
	"github.com/monizb/vmp/sla"
	"github.com/monizb/vmp/utils"
)

// settingsSeed is the update applied on first read. $setOnInsert leaves
// an existing document untouched, so the singleton stays a singleton even
// when concurrent first reads race.
func settingsSeed() bson.M {
	return bson.M{"$setOnInsert": models.DefaultDueDateSettings()}
}

// getOrCreateSettings reads the singleton settings document, creating it
// with defaults on first read via upsert.
func getOrCreateSettings(ctx context.Context) (models.DueDateSettings, error) {
	var settings models.DueDateSettings
	err := settingsCollection.FindOneAndUpdate(
		ctx,
		bson.M{},
		settingsSeed(),
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(true),
	).Decode(&settings)
	return settings, err
}

// GetDueDateSettings returns the SLA timeline configuration. Admin or
// Security (enforced in routes).
func GetDueDateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	settings, err := getOrCreateSettings(ctx)
	if err != nil {
		logging.Logger.Errorf("settings read error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, settings)
}

type updateSettingsRequest struct {
	AutoAssignDueDates *bool          `json:"autoAssignDueDates,omitempty"`
	DueDateTimelines   map[string]int `json:"dueDateTimelines,omitempty"`
}

// UpdateDueDateSettings merges a partial update into the singleton
// settings document. Admin only. Changing timelines never touches due
// dates already stamped on findings.
func UpdateDueDateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := utils.ParseJSON(r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid payload")
		return
	}

	if err := sla.ValidateTimelines(req.DueDateTimelines); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	current, err := getOrCreateSettings(ctx)
	if err != nil {
		logging.Logger.Errorf("settings read error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}

	merged := sla.MergeSettings(current, req.AutoAssignDueDates, req.DueDateTimelines)

	var updated models.DueDateSettings
	err = settingsCollection.FindOneAndUpdate(
		ctx,
		bson.M{},
		bson.M{"$set": bson.M{
			"autoAssignDueDates": merged.AutoAssignDueDates,
			"dueDateTimelines":   merged.DueDateTimelines,
			"updatedAt":          merged.UpdatedAt,
		}},
		options.FindOneAndUpdate().SetReturnDocument(options.After).SetUpsert(true),
	).Decode(&updated)
	if err != nil {
		logging.Logger.Errorf("settings update error: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to update settings")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, updated)
}
