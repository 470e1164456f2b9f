// internal/database/stores.go
//
// Mongo-backed implementations of the store interfaces consumed by the
// services package. Handlers talk to collections directly for plain
// CRUD; these types exist so the geo matching and moderation logic can
// be exercised against test doubles.
package database

import (
	"context"
	"fmt"
	"time"

	"relief-hub/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ResourceStore struct {
	collection *mongo.Collection
}

func NewResourceStore(collection *mongo.Collection) *ResourceStore {
	return &ResourceStore{collection: collection}
}

// ListWithCoordinates fetches every resource that has both latitude and
// longitude populated, in one query. Uncoordinated resources are never
// geographically matchable and are filtered out at the store.
func (s *ResourceStore) ListWithCoordinates(ctx context.Context) ([]models.Resource, error) {
	filter := bson.M{
		"latitude":  bson.M{"$exists": true, "$ne": nil},
		"longitude": bson.M{"$exists": true, "$ne": nil},
	}

	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("finding resources with coordinates: %w", err)
	}
	defer cursor.Close(ctx)

	var resources []models.Resource
	if err := cursor.All(ctx, &resources); err != nil {
		return nil, fmt.Errorf("decoding resources: %w", err)
	}
	return resources, nil
}

func (s *ResourceStore) Insert(ctx context.Context, resource *models.Resource) (primitive.ObjectID, error) {
	result, err := s.collection.InsertOne(ctx, resource)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("inserting resource: %w", err)
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id, nil
}

func (s *ResourceStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("deleting resource: %w", err)
	}
	return nil
}

// ApplyPartialUpdate sets the given fields and returns the document as
// it was before the update, or nil when no resource matched. The
// pre-image lets the caller undo the update.
func (s *ResourceStore) ApplyPartialUpdate(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Resource, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.Before)

	var prior models.Resource
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&prior)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("updating resource %s: %w", id.Hex(), err)
	}
	return &prior, nil
}

func (s *ResourceStore) Replace(ctx context.Context, resource *models.Resource) error {
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": resource.ID}, resource); err != nil {
		return fmt.Errorf("replacing resource %s: %w", resource.ID.Hex(), err)
	}
	return nil
}

type AlertStore struct {
	collection *mongo.Collection
}

func NewAlertStore(collection *mongo.Collection) *AlertStore {
	return &AlertStore{collection: collection}
}

// ListActiveWithZones fetches all active alerts carrying a full impact
// zone in a single query; the geometry test runs in-process so no
// per-candidate round-trips are made.
func (s *AlertStore) ListActiveWithZones(ctx context.Context) ([]models.Alert, error) {
	filter := bson.M{
		"is_active": true,
		"latitude":  bson.M{"$exists": true, "$ne": nil},
		"longitude": bson.M{"$exists": true, "$ne": nil},
		"radius_km": bson.M{"$gt": 0},
	}

	cursor, err := s.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("finding active alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var alerts []models.Alert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("decoding alerts: %w", err)
	}
	return alerts, nil
}

type SubmissionStore struct {
	collection *mongo.Collection
}

func NewSubmissionStore(collection *mongo.Collection) *SubmissionStore {
	return &SubmissionStore{collection: collection}
}

func (s *SubmissionStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Submission, error) {
	var submission models.Submission
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&submission)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding submission %s: %w", id.Hex(), err)
	}
	return &submission, nil
}

// TransitionIfPending is the compare-and-swap out of PENDING: the
// filter matches only a still-pending submission, so concurrent
// reviewers cannot both win.
func (s *SubmissionStore) TransitionIfPending(ctx context.Context, id primitive.ObjectID, status models.SubmissionStatus, reviewerID primitive.ObjectID, notes string, reviewedAt time.Time) (*models.Submission, error) {
	filter := bson.M{
		"_id":    id,
		"status": models.SubmissionStatusPending,
	}

	set := bson.M{
		"status":      status,
		"reviewed_by": reviewerID,
		"reviewed_at": reviewedAt,
	}
	if notes != "" {
		set["review_notes"] = notes
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated models.Submission
	err := s.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("transitioning submission %s: %w", id.Hex(), err)
	}
	return &updated, nil
}
