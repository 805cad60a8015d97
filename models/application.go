// models/application.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Application struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Platform    string              `bson:"platform" json:"platform"`
	TeamID      *primitive.ObjectID `bson:"teamId,omitempty" json:"teamId,omitempty"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}
