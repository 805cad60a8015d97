// models/refresh_token.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RefreshToken tracks issued refresh tokens so they can be revoked and
// rotated. Keyed by the token value itself.
type RefreshToken struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID    string             `bson:"userId" json:"userId"`
	Token     string             `bson:"token" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
