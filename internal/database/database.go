package database

import (
	"context"
	"fmt"
	"time"

	"github.com/Bekarys04/CollabTask_Manager/internal/config"
	"github.com/Bekarys04/CollabTask_Manager/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectDB establishes the MongoDB connection and bootstraps the indexes
// the service relies on.
func ConnectDB(cfg *config.Config) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	db := client.Database(cfg.MongoDBName)
	if err := EnsureIndexes(ctx, db); err != nil {
		return nil, err
	}

	logger.Log.WithField("database", cfg.MongoDBName).Info("Connected to MongoDB")
	return db, nil
}

// EnsureIndexes creates the indexes the repositories depend on. The unique
// partial index over pair_key is what makes sendRequest's duplicate check
// safe under concurrency: two racing inserts for the same pair cannot both
// land while either request is still pending or accepted.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("collaboration_requests").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "pair_key", Value: 1}},
		Options: options.Index().
			SetUnique(true).
			SetPartialFilterExpression(bson.M{
				"status": bson.M{"$in": []string{"pending", "accepted"}},
			}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collaboration pair index: %v", err)
	}

	_, err = db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create username index: %v", err)
	}

	_, err = db.Collection("tasks").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "assignee_id", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create task assignee index: %v", err)
	}

	return nil
}
