// handlers/collections.go
package handlers

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/monizb/vmp/database"
)

var (
	userCollection     *mongo.Collection
	teamCollection     *mongo.Collection
	appCollection      *mongo.Collection
	reportCollection   *mongo.Collection
	vulnCollection     *mongo.Collection
	viewCollection     *mongo.Collection
	settingsCollection *mongo.Collection
	refreshCollection  *mongo.Collection
)

func InitCollections() {
	userCollection = database.Collection("users")
	teamCollection = database.Collection("teams")
	appCollection = database.Collection("applications")
	reportCollection = database.Collection("reports")
	vulnCollection = database.Collection("vulnerabilities")
	viewCollection = database.Collection("saved_views")
	settingsCollection = database.Collection("due_date_settings")
	refreshCollection = database.Collection("refresh_tokens")
}
