// models/report.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report types.
const (
	ReportTypeInitial        = "initial"
	ReportTypeReconfirmatory = "reconfirmatory"
)

type Report struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	DriveFileID      string              `bson:"driveFileId" json:"driveFileId"`
	FileName         string              `bson:"fileName" json:"fileName"`
	VendorName       string              `bson:"vendorName" json:"vendorName"`
	ApplicationID    *primitive.ObjectID `bson:"applicationId,omitempty" json:"applicationId,omitempty"`
	DateUploaded     time.Time           `bson:"dateUploaded" json:"dateUploaded"`
	ReportDate       *time.Time          `bson:"reportDate,omitempty" json:"reportDate,omitempty"`
	Parsed           bool                `bson:"parsed" json:"parsed"`
	VulnerabilityIDs []string            `bson:"vulnerabilityIds" json:"vulnerabilityIds"`
	ReportType       string              `bson:"reportType" json:"reportType"`
	OriginalReportID *primitive.ObjectID `bson:"originalReportId,omitempty" json:"originalReportId,omitempty"`
	Year             int                 `bson:"year" json:"year"`
	CreatedAt        time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time           `bson:"updatedAt" json:"updatedAt"`
}
