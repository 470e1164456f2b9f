// internal/services/moderation.go
package services

import (
	"context"
	"fmt"
	"time"

	"relief-hub/internal/models"
	"relief-hub/internal/utils"
	"relief-hub/pkg/validator"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ModerationResourceStore is the slice of the catalog the workflow
// writes resources through.
type ModerationResourceStore interface {
	Insert(ctx context.Context, resource *models.Resource) (primitive.ObjectID, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// ApplyPartialUpdate sets the given fields on the resource and
	// returns the document as it was before the update, or nil when the
	// resource does not exist.
	ApplyPartialUpdate(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Resource, error)
	// Replace restores a full resource document. Used to undo a partial
	// update whose submission transition lost a race.
	Replace(ctx context.Context, resource *models.Resource) error
}

// SubmissionStore persists submissions and performs the conditional
// status transition.
type SubmissionStore interface {
	// GetByID returns nil, nil when no submission has the given id.
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Submission, error)
	// TransitionIfPending atomically moves the submission out of
	// PENDING. It returns the updated submission, or nil when no
	// pending submission matched (missing or already reviewed).
	TransitionIfPending(ctx context.Context, id primitive.ObjectID, status models.SubmissionStatus, reviewerID primitive.ObjectID, notes string, reviewedAt time.Time) (*models.Submission, error)
}

// ModerationService transitions submissions to a terminal state and
// applies the matching side effect to the resource catalog. Transitions
// are guarded by a conditional update so a submission leaves PENDING at
// most once, even under concurrent reviewers.
type ModerationService struct {
	submissions          SubmissionStore
	resources            ModerationResourceStore
	enforceCapacityLimit bool
}

func NewModerationService(submissions SubmissionStore, resources ModerationResourceStore, enforceCapacityLimit bool) *ModerationService {
	return &ModerationService{
		submissions:          submissions,
		resources:            resources,
		enforceCapacityLimit: enforceCapacityLimit,
	}
}

// Approve moves a pending submission to APPROVED, applying the side
// effect its type requires. The side effect is applied first and the
// status transition gates on the submission still being PENDING; when
// the transition loses a race the side effect is compensated.
func (s *ModerationService) Approve(ctx context.Context, submissionID, reviewerID primitive.ObjectID) (*models.Submission, error) {
	sub, err := s.submissions.GetByID(ctx, submissionID)
	if err != nil {
		return nil, storeError("fetching submission", err)
	}
	if sub == nil {
		return nil, ErrSubmissionNotFound
	}
	if !sub.IsPending() {
		return nil, ErrSubmissionAlreadyReviewed
	}

	now := time.Now()

	switch sub.Type {
	case models.SubmissionTypeNewResource:
		return s.approveNewResource(ctx, sub, reviewerID, now)
	case models.SubmissionTypeResourceUpdate:
		return s.approveResourceUpdate(ctx, sub, reviewerID, now)
	case models.SubmissionTypeReport:
		// Reports carry no catalog side effect.
		return s.transition(ctx, sub.ID, models.SubmissionStatusApproved, reviewerID, "", now)
	default:
		return nil, fmt.Errorf("%w: unknown submission type %q", ErrInvalidSubmissionData, sub.Type)
	}
}

// Reject moves a pending submission to REJECTED. No catalog side
// effect beyond the submission record itself.
func (s *ModerationService) Reject(ctx context.Context, submissionID, reviewerID primitive.ObjectID, notes string) (*models.Submission, error) {
	return s.transition(ctx, submissionID, models.SubmissionStatusRejected, reviewerID, notes, time.Now())
}

func (s *ModerationService) approveNewResource(ctx context.Context, sub *models.Submission, reviewerID primitive.ObjectID, now time.Time) (*models.Submission, error) {
	resource, err := resourceFromSubmissionData(sub.Data)
	if err != nil {
		return nil, err
	}

	// The resource is stamped with the original submitter, not the
	// reviewer; the reviewer appears only as verifier.
	resource.SubmittedBy = sub.SubmittedBy
	resource.IsVerified = true
	resource.VerifiedBy = &reviewerID
	resource.CreatedAt = now
	resource.UpdatedAt = now
	if resource.Status == "" {
		resource.Status = models.ResourceStatusAvailable
	}

	// An approved submission lands in the catalog under the same rules
	// as a privileged create.
	if (resource.Latitude == nil) != (resource.Longitude == nil) {
		return nil, fmt.Errorf("%w: latitude and longitude must be provided together", ErrInvalidSubmissionData)
	}
	if fieldErrs := validator.Struct(resource); fieldErrs != nil {
		return nil, fmt.Errorf("%w: %s %s", ErrInvalidSubmissionData, fieldErrs[0].Field, fieldErrs[0].Message)
	}
	if s.enforceCapacityLimit && resource.IsOverCapacity() {
		return nil, fmt.Errorf("%w: current_occupancy must not exceed capacity", ErrInvalidSubmissionData)
	}

	newID, err := s.resources.Insert(ctx, resource)
	if err != nil {
		// Resource creation gates the transition: the submission stays
		// PENDING and the approval can be retried.
		return nil, storeError("creating resource from submission", err)
	}

	updated, err := s.transition(ctx, sub.ID, models.SubmissionStatusApproved, reviewerID, "", now)
	if err != nil {
		// Lost the transition race (or the store failed) after the
		// resource was created. Compensate by removing it.
		if delErr := s.resources.Delete(ctx, newID); delErr != nil {
			logrus.WithError(delErr).WithFields(logrus.Fields{
				"submission_id": sub.ID.Hex(),
				"resource_id":   newID.Hex(),
			}).Error("failed to compensate resource creation after lost approval")
		}
		return nil, err
	}

	return updated, nil
}

func (s *ModerationService) approveResourceUpdate(ctx context.Context, sub *models.Submission, reviewerID primitive.ObjectID, now time.Time) (*models.Submission, error) {
	if sub.ResourceID == nil {
		return nil, ErrMissingResourceID
	}

	fields := sanitizeUpdateFields(sub.Data)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: no updatable fields", ErrInvalidSubmissionData)
	}
	if err := s.validateUpdateFields(fields); err != nil {
		return nil, err
	}
	fields["updated_at"] = now

	prior, err := s.resources.ApplyPartialUpdate(ctx, *sub.ResourceID, fields)
	if err != nil {
		return nil, storeError("updating resource from submission", err)
	}
	if prior == nil {
		return nil, ErrResourceNotFound
	}

	updated, err := s.transition(ctx, sub.ID, models.SubmissionStatusApproved, reviewerID, "", now)
	if err != nil {
		// Restore the pre-image captured by the partial update.
		if repErr := s.resources.Replace(ctx, prior); repErr != nil {
			logrus.WithError(repErr).WithFields(logrus.Fields{
				"submission_id": sub.ID.Hex(),
				"resource_id":   sub.ResourceID.Hex(),
			}).Error("failed to restore resource after lost approval")
		}
		return nil, err
	}

	return updated, nil
}

// transition performs the conditional PENDING -> terminal update and
// disambiguates a non-match into not-found vs already-reviewed.
func (s *ModerationService) transition(ctx context.Context, id primitive.ObjectID, status models.SubmissionStatus, reviewerID primitive.ObjectID, notes string, reviewedAt time.Time) (*models.Submission, error) {
	updated, err := s.submissions.TransitionIfPending(ctx, id, status, reviewerID, notes, reviewedAt)
	if err != nil {
		return nil, storeError("transitioning submission", err)
	}
	if updated != nil {
		return updated, nil
	}

	existing, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("fetching submission", err)
	}
	if existing == nil {
		return nil, ErrSubmissionNotFound
	}
	return nil, ErrSubmissionAlreadyReviewed
}

// resourceFromSubmissionData decodes the free-form payload into a
// resource through a bson round-trip, so submissions use the same field
// names as resource documents.
func resourceFromSubmissionData(data map[string]interface{}) (*models.Resource, error) {
	raw, err := bson.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubmissionData, err)
	}

	var resource models.Resource
	if err := bson.Unmarshal(raw, &resource); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSubmissionData, err)
	}

	if resource.Name == "" || resource.Category == "" {
		return nil, fmt.Errorf("%w: name and category are required", ErrInvalidSubmissionData)
	}

	return &resource, nil
}

// validateUpdateFields bounds-checks the fields an approved update may
// set, mirroring the resource model rules.
func (s *ModerationService) validateUpdateFields(fields map[string]interface{}) error {
	lat, hasLat, err := numericField(fields, "latitude")
	if err != nil {
		return err
	}
	lng, hasLng, err := numericField(fields, "longitude")
	if err != nil {
		return err
	}
	if hasLat != hasLng {
		return fmt.Errorf("%w: latitude and longitude must be provided together", ErrInvalidSubmissionData)
	}
	if hasLat && !utils.ValidCoordinates(lat, lng) {
		return fmt.Errorf("%w: latitude must be in [-90,90] and longitude in [-180,180]", ErrInvalidSubmissionData)
	}

	capacity, hasCapacity, err := numericField(fields, "capacity")
	if err != nil {
		return err
	}
	occupancy, hasOccupancy, err := numericField(fields, "current_occupancy")
	if err != nil {
		return err
	}
	if hasCapacity && capacity < 0 {
		return fmt.Errorf("%w: capacity must not be negative", ErrInvalidSubmissionData)
	}
	if hasOccupancy && occupancy < 0 {
		return fmt.Errorf("%w: current_occupancy must not be negative", ErrInvalidSubmissionData)
	}
	if s.enforceCapacityLimit && hasCapacity && hasOccupancy && occupancy > capacity {
		return fmt.Errorf("%w: current_occupancy must not exceed capacity", ErrInvalidSubmissionData)
	}

	if raw, ok := fields["status"]; ok {
		if err := enumField("status", raw, models.ResourceStatuses()); err != nil {
			return err
		}
	}
	if raw, ok := fields["category"]; ok {
		if err := enumField("category", raw, models.ResourceCategories()); err != nil {
			return err
		}
	}

	return nil
}

func numericField(fields map[string]interface{}, key string) (float64, bool, error) {
	raw, ok := fields[key]
	if !ok || raw == nil {
		return 0, false, nil
	}

	// Payloads arrive through JSON or bson decoding, so numbers show up
	// under several concrete types.
	switch v := raw.(type) {
	case float64:
		return v, true, nil
	case float32:
		return float64(v), true, nil
	case int:
		return float64(v), true, nil
	case int32:
		return float64(v), true, nil
	case int64:
		return float64(v), true, nil
	default:
		return 0, false, fmt.Errorf("%w: %s must be a number", ErrInvalidSubmissionData, key)
	}
}

func enumField(key string, raw interface{}, allowed []string) error {
	value, ok := raw.(string)
	if !ok {
		return fmt.Errorf("%w: %s must be a string", ErrInvalidSubmissionData, key)
	}
	for _, candidate := range allowed {
		if candidate == value {
			return nil
		}
	}
	return fmt.Errorf("%w: invalid %s %q", ErrInvalidSubmissionData, key, value)
}

// sanitizeUpdateFields drops identity and provenance fields from a
// RESOURCE_UPDATE payload so an approved update cannot rewrite them.
func sanitizeUpdateFields(data map[string]interface{}) map[string]interface{} {
	protected := map[string]bool{
		"_id":          true,
		"id":           true,
		"submitted_by": true,
		"verified_by":  true,
		"is_verified":  true,
		"created_at":   true,
		"updated_at":   true,
	}

	fields := make(map[string]interface{}, len(data))
	for key, value := range data {
		if protected[key] {
			continue
		}
		fields[key] = value
	}
	return fields
}
