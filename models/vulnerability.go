// models/vulnerability.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Vulnerability struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ApplicationID    primitive.ObjectID  `bson:"applicationId" json:"applicationId"`
	ReportID         *primitive.ObjectID `bson:"reportId,omitempty" json:"reportId,omitempty"`
	Title            string              `bson:"title" json:"title"`
	Description      string              `bson:"description" json:"description"`
	Severity         string              `bson:"severity" json:"severity"`
	CVSSScore        *float64            `bson:"cvssScore,omitempty" json:"cvssScore,omitempty"`
	CVSSVector       string              `bson:"cvssVector,omitempty" json:"cvssVector,omitempty"`
	CWE              []string            `bson:"cwe" json:"cwe"`
	CVE              []string            `bson:"cve" json:"cve"`
	Status           string              `bson:"status" json:"status"`
	InternalStatus   string              `bson:"internalStatus,omitempty" json:"internalStatus,omitempty"`
	DiscoveredDate   time.Time           `bson:"discoveredDate" json:"discoveredDate"`
	DueDate          *time.Time          `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	ResolvedDate     *time.Time          `bson:"resolvedDate,omitempty" json:"resolvedDate,omitempty"`
	AssignedToUserID *primitive.ObjectID `bson:"assignedToUserId,omitempty" json:"assignedToUserId,omitempty"`
	Tags             []string            `bson:"tags" json:"tags"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}
