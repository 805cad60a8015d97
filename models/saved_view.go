// models/saved_view.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SavedView stores per-user table filter presets.
type SavedView struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	EntityType  string             `bson:"entityType" json:"entityType"`
	Filters     bson.M             `bson:"filters" json:"filters"`
	OwnerUserID primitive.ObjectID `bson:"ownerUserId" json:"ownerUserId"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
