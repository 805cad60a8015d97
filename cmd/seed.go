// cmd/seed.go
package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/monizb/vmp/database"
	"github.com/monizb/vmp/logging"
	"github.com/monizb/vmp/models"
	"github.com/monizb/vmp/sla"
	"github.com/monizb/vmp/utils"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo data into an empty database",
	Run: func(cmd *cobra.Command, args []string) {
		logging.InitLogger(debugMode)
		defer logging.Sync()

		if err := database.Connect(); err != nil {
			logging.Logger.Fatalf("database connection failed: %v", err)
		}
		defer database.Disconnect()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := seed(ctx); err != nil {
			logging.Logger.Fatalf("seed failed: %v", err)
		}
		logging.Logger.Info("seed complete")
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func seed(ctx context.Context) error {
	users := database.Collection("users")
	if n, err := users.CountDocuments(ctx, bson.M{}); err != nil {
		return err
	} else if n > 0 {
		logging.Logger.Warn("database is not empty, skipping seed")
		return nil
	}

	now := time.Now().UTC()

	webTeam := models.Team{ID: primitive.NewObjectID(), Name: "Payments Web", Platform: models.PlatformWeb, ApplicationIDs: []string{}, CreatedAt: now, UpdatedAt: now}
	iosTeam := models.Team{ID: primitive.NewObjectID(), Name: "Mobile Banking iOS", Platform: models.PlatformIOS, ApplicationIDs: []string{}, CreatedAt: now, UpdatedAt: now}
	if _, err := database.Collection("teams").InsertMany(ctx, []interface{}{webTeam, iosTeam}); err != nil {
		return err
	}

	hash, err := utils.HashPassword("ChangeMe123!")
	if err != nil {
		return err
	}
	demoUsers := []interface{}{
		models.User{ID: primitive.NewObjectID(), Email: "admin@example.com", Name: "Ada Admin", Role: models.RoleAdmin, TeamIDs: []string{}, PasswordHash: hash, CreatedAt: now, UpdatedAt: now},
		models.User{ID: primitive.NewObjectID(), Email: "sec@example.com", Name: "Sam Security", Role: models.RoleSecurity, TeamIDs: []string{}, PasswordHash: hash, CreatedAt: now, UpdatedAt: now},
		models.User{ID: primitive.NewObjectID(), Email: "dev@example.com", Name: "Devi Developer", Role: models.RoleDev, TeamIDs: []string{webTeam.ID.Hex()}, PasswordHash: hash, CreatedAt: now, UpdatedAt: now},
		models.User{ID: primitive.NewObjectID(), Email: "po@example.com", Name: "Pat Owner", Role: models.RoleProductOwner, TeamIDs: []string{iosTeam.ID.Hex()}, PasswordHash: hash, CreatedAt: now, UpdatedAt: now},
	}
	if _, err := users.InsertMany(ctx, demoUsers); err != nil {
		return err
	}

	checkout := models.Application{ID: primitive.NewObjectID(), Name: "Checkout Portal", Platform: models.PlatformWeb, TeamID: &webTeam.ID, Description: "Customer facing checkout", CreatedAt: now, UpdatedAt: now}
	wallet := models.Application{ID: primitive.NewObjectID(), Name: "Wallet App", Platform: models.PlatformIOS, TeamID: &iosTeam.ID, Description: "iOS wallet client", CreatedAt: now, UpdatedAt: now}
	if _, err := database.Collection("applications").InsertMany(ctx, []interface{}{checkout, wallet}); err != nil {
		return err
	}

	settings := models.DefaultDueDateSettings()
	if _, err := database.Collection("due_date_settings").InsertOne(ctx, settings); err != nil {
		return err
	}

	discovered := now.AddDate(0, 0, -10)
	findings := []interface{}{
		demoVuln(checkout.ID, "SQL injection in order search", models.SeverityCritical, settings, discovered, now),
		demoVuln(checkout.ID, "Session cookie missing Secure flag", models.SeverityMedium, settings, discovered, now),
		demoVuln(wallet.ID, "Sensitive data in device logs", models.SeverityHigh, settings, discovered, now),
	}
	if _, err := database.Collection("vulnerabilities").InsertMany(ctx, findings); err != nil {
		return err
	}

	return nil
}

func demoVuln(appID primitive.ObjectID, title, severity string, settings models.DueDateSettings, discovered, now time.Time) models.Vulnerability {
	return models.Vulnerability{
		ID:             primitive.NewObjectID(),
		ApplicationID:  appID,
		Title:          title,
		Description:    "Seeded demo finding.",
		Severity:       severity,
		CWE:            []string{},
		CVE:            []string{},
		Status:         models.StatusOpen,
		DiscoveredDate: discovered,
		DueDate:        sla.ComputeDueDate(settings, severity, discovered),
		Tags:           []string{"demo"},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
