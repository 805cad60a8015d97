// database/database.go
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/monizb/vmp/config"
	"github.com/monizb/vmp/logging"
)

var Client *mongo.Client

func Connect() error {
	mongoURI := config.MongoURI
	if mongoURI == "" {
		return fmt.Errorf("MONGODB_URI is required")
	}

	clientOptions := options.Client().
		ApplyURI(mongoURI).
		SetConnectTimeout(20 * time.Second).
		SetServerSelectionTimeout(15 * time.Second).
		SetMaxPoolSize(50)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var err error
	Client, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to create MongoDB client: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelPing()

	if err = Client.Ping(ctxPing, readpref.Primary()); err != nil {
		_ = Client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logging.Logger.Infof("connected to MongoDB at %s", mongoURI)
	return nil
}

// Collection returns a handle into the configured database.
func Collection(name string) *mongo.Collection {
	return Client.Database(config.DatabaseName).Collection(name)
}

func Disconnect() {
	if Client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := Client.Disconnect(ctx); err != nil {
		logging.Logger.Warnf("MongoDB disconnect warning: %v", err)
	}
}
