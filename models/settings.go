// models/settings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DueDateSettings is a singleton document controlling SLA due-date
// assignment. At most one document exists in its collection; it is created
// lazily with defaults on first read.
type DueDateSettings struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AutoAssignDueDates bool               `bson:"autoAssignDueDates" json:"autoAssignDueDates"`
	DueDateTimelines   map[string]int     `bson:"dueDateTimelines" json:"dueDateTimelines"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DefaultDueDateSettings returns the timeline table used until an Admin
// configures one.
func DefaultDueDateSettings() DueDateSettings {
	now := time.Now().UTC()
	return DueDateSettings{
		ID:                 primitive.NewObjectID(),
		AutoAssignDueDates: true,
		DueDateTimelines: map[string]int{
			SeverityCritical: 15,
			SeverityHigh:     30,
			SeverityMedium:   60,
			SeverityLow:      60,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
