// internal/database/mongodb.go
package database

import (
	"context"
	"fmt"
	"time"

	"relief-hub/internal/config"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDB(cfg *config.Config) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.MongoTimeout)*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(cfg.MongoURI).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connecting to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("pinging MongoDB: %w", err)
	}

	database := client.Database(cfg.DatabaseName)

	logrus.WithField("database", cfg.DatabaseName).Info("connected to MongoDB")

	return &MongoDB{
		Client:   client,
		Database: database,
	}, nil
}

func (m *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting from MongoDB: %w", err)
	}

	logrus.Info("disconnected from MongoDB")
	return nil
}

// CreateIndexes creates the indexes every collection relies on.
// bson.D is used throughout to keep compound key order stable.
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	userIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	if _, err := m.Database.Collection("users").Indexes().CreateMany(ctx, userIndexes); err != nil {
		return fmt.Errorf("creating user indexes: %w", err)
	}

	resourceIndexes := []mongo.IndexModel{
		{
			// Compound index for the catalog listing filters
			Keys: bson.D{
				{Key: "category", Value: 1},
				{Key: "status", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "is_verified", Value: 1}},
		},
		{
			// Partial index over resources that can be geo-matched
			Keys: bson.D{
				{Key: "latitude", Value: 1},
				{Key: "longitude", Value: 1},
			},
			Options: options.Index().SetPartialFilterExpression(bson.D{
				{Key: "latitude", Value: bson.D{{Key: "$exists", Value: true}}},
				{Key: "longitude", Value: bson.D{{Key: "$exists", Value: true}}},
			}),
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}
	if _, err := m.Database.Collection("resources").Indexes().CreateMany(ctx, resourceIndexes); err != nil {
		return fmt.Errorf("creating resource indexes: %w", err)
	}

	alertIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "is_active", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "severity", Value: 1}},
		},
	}
	if _, err := m.Database.Collection("alerts").Indexes().CreateMany(ctx, alertIndexes); err != nil {
		return fmt.Errorf("creating alert indexes: %w", err)
	}

	submissionIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{
			Keys: bson.D{{Key: "submitted_by", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "type", Value: 1}},
		},
	}
	if _, err := m.Database.Collection("submissions").Indexes().CreateMany(ctx, submissionIndexes); err != nil {
		return fmt.Errorf("creating submission indexes: %w", err)
	}

	return nil
}
