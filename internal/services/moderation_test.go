package services

import (
	"context"
	"testing"
	"time"

	"relief-hub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeSubmissionStore struct {
	submissions map[primitive.ObjectID]*models.Submission

	// stealTransition simulates a concurrent reviewer winning the race:
	// the conditional update finds nothing pending because the other
	// reviewer already moved the submission out of PENDING.
	stealTransition bool
}

func newFakeSubmissionStore(subs ...*models.Submission) *fakeSubmissionStore {
	store := &fakeSubmissionStore{submissions: make(map[primitive.ObjectID]*models.Submission)}
	for _, s := range subs {
		store.submissions[s.ID] = s
	}
	return store
}

func (f *fakeSubmissionStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Submission, error) {
	sub, ok := f.submissions[id]
	if !ok {
		return nil, nil
	}
	copied := *sub
	return &copied, nil
}

func (f *fakeSubmissionStore) TransitionIfPending(ctx context.Context, id primitive.ObjectID, status models.SubmissionStatus, reviewerID primitive.ObjectID, notes string, reviewedAt time.Time) (*models.Submission, error) {
	sub, ok := f.submissions[id]
	if !ok || !sub.IsPending() {
		return nil, nil
	}

	if f.stealTransition {
		other := primitive.NewObjectID()
		sub.Status = models.SubmissionStatusApproved
		sub.ReviewedBy = &other
		return nil, nil
	}

	sub.Status = status
	sub.ReviewedBy = &reviewerID
	sub.ReviewedAt = &reviewedAt
	if notes != "" {
		sub.ReviewNotes = notes
	}

	copied := *sub
	return &copied, nil
}

type fakeModResourceStore struct {
	resources map[primitive.ObjectID]*models.Resource

	inserted       []*models.Resource
	deleted        []primitive.ObjectID
	appliedUpdates map[primitive.ObjectID]map[string]interface{}
	replaced       []*models.Resource
}

func newFakeModResourceStore(resources ...*models.Resource) *fakeModResourceStore {
	store := &fakeModResourceStore{
		resources:      make(map[primitive.ObjectID]*models.Resource),
		appliedUpdates: make(map[primitive.ObjectID]map[string]interface{}),
	}
	for _, r := range resources {
		store.resources[r.ID] = r
	}
	return store
}

func (f *fakeModResourceStore) Insert(ctx context.Context, resource *models.Resource) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	resource.ID = id
	copied := *resource
	f.resources[id] = &copied
	f.inserted = append(f.inserted, &copied)
	return id, nil
}

func (f *fakeModResourceStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	delete(f.resources, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeModResourceStore) ApplyPartialUpdate(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) (*models.Resource, error) {
	resource, ok := f.resources[id]
	if !ok {
		return nil, nil
	}
	prior := *resource
	f.appliedUpdates[id] = fields
	return &prior, nil
}

func (f *fakeModResourceStore) Replace(ctx context.Context, resource *models.Resource) error {
	copied := *resource
	f.resources[resource.ID] = &copied
	f.replaced = append(f.replaced, &copied)
	return nil
}

func pendingSubmission(subType models.SubmissionType, data map[string]interface{}) *models.Submission {
	return &models.Submission{
		ID:          primitive.NewObjectID(),
		Type:        subType,
		Data:        data,
		Status:      models.SubmissionStatusPending,
		SubmittedBy: primitive.NewObjectID(),
		CreatedAt:   time.Now(),
	}
}

func TestApprove_NewResource(t *testing.T) {
	sub := pendingSubmission(models.SubmissionTypeNewResource, map[string]interface{}{
		"name":     "Shelter A",
		"category": "SHELTER",
		"status":   "AVAILABLE",
	})
	subStore := newFakeSubmissionStore(sub)
	resStore := newFakeModResourceStore()
	svc := NewModerationService(subStore, resStore, false)

	reviewer := primitive.NewObjectID()
	updated, err := svc.Approve(context.Background(), sub.ID, reviewer)
	require.NoError(t, err)

	assert.Equal(t, models.SubmissionStatusApproved, updated.Status)
	require.NotNil(t, updated.ReviewedBy)
	assert.Equal(t, reviewer, *updated.ReviewedBy)
	assert.NotNil(t, updated.ReviewedAt)

	require.Len(t, resStore.inserted, 1)
	created := resStore.inserted[0]
	assert.Equal(t, "Shelter A", created.Name)
	assert.Equal(t, models.ResourceCategoryShelter, created.Category)
	assert.True(t, created.IsVerified)
	require.NotNil(t, created.VerifiedBy)
	assert.Equal(t, reviewer, *created.VerifiedBy)
	// The resource belongs to the original submitter, not the reviewer.
	assert.Equal(t, sub.SubmittedBy, created.SubmittedBy)
}

func TestApprove_NewResource_InvalidPayload(t *testing.T) {
	sub := pendingSubmission(models.SubmissionTypeNewResource, map[string]interface{}{
		"description": "no name or category",
	})
	subStore := newFakeSubmissionStore(sub)
	resStore := newFakeModResourceStore()
	svc := NewModerationService(subStore, resStore, false)

	_, err := svc.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrInvalidSubmissionData)

	// Nothing written, submission still pending.
	assert.Empty(t, resStore.inserted)
	stored, _ := subStore.GetByID(context.Background(), sub.ID)
	assert.Equal(t, models.SubmissionStatusPending, stored.Status)
}

func TestApprove_NewResource_OutOfRangeCoordinates(t *testing.T) {
	sub := pendingSubmission(models.SubmissionTypeNewResource, map[string]interface{}{
		"name":      "Bad Shelter",
		"category":  "SHELTER",
		"latitude":  200.0,
		"longitude": -300.0,
	})
	subStore := newFakeSubmissionStore(sub)
	resStore := newFakeModResourceStore()
	svc := NewModerationService(subStore, resStore, false)

	_, err := svc.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrInvalidSubmissionData)

	// An out-of-range payload never reaches the catalog and the
	// submission stays reviewable.
	assert.Empty(t, resStore.inserted)
	stored, _ := subStore.GetByID(context.Background(), sub.ID)
	assert.Equal(t, models.SubmissionStatusPending, stored.Status)
}

func TestApprove_NewResource_OneSidedCoordinates(t *testing.T) {
	sub := pendingSubmission(models.SubmissionTypeNewResource, map[string]interface{}{
		"name":     "Half-Placed Shelter",
		"category": "SHELTER",
		"latitude": 48.5,
	})
	subStore := newFakeSubmissionStore(sub)
	resStore := newFakeModResourceStore()
	svc := NewModerationService(subStore, resStore, false)

	_, err := svc.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrInvalidSubmissionData)
	assert.Empty(t, resStore.inserted)
}

func TestApprove_NewResource_CapacityRule(t *testing.T) {
	data := map[string]interface{}{
		"name":              "Crowded Shelter",
		"category":          "SHELTER",
		"capacity":          50,
		"current_occupancy": 80,
	}

	// Off by default: over-capacity is recorded as-is.
	sub := pendingSubmission(models.SubmissionTypeNewResource, data)
	relaxed := NewModerationService(newFakeSubmissionStore(sub), newFakeModResourceStore(), false)
	_, err := relaxed.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	require.NoError(t, err)

	// Enabled: the community path follows the same rule as a privileged
	// create.
	sub = pendingSubmission(models.SubmissionTypeNewResource, data)
	resStore := newFakeModResourceStore()
	strict := NewModerationService(newFakeSubmissionStore(sub), resStore, true)
	_, err = strict.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrInvalidSubmissionData)
	assert.Empty(t, resStore.inserted)
}

func TestApprove_ResourceUpdate(t *testing.T) {
	resource := &models.Resource{
		ID:       primitive.NewObjectID(),
		Name:     "Water Point 3",
		Category: models.ResourceCategoryWater,
		Status:   models.ResourceStatusAvailable,
	}
	sub := pendingSubmission(models.SubmissionTypeResourceUpdate, map[string]interface{}{
		"status":       "LIMITED",
		"submitted_by": primitive.NewObjectID(), // must be stripped
	})
	sub.ResourceID = &resource.ID

	subStore := newFakeSubmissionStore(sub)
	resStore := newFakeModResourceStore(resource)
	svc := NewModerationService(subStore, resStore, false)

	updated, err := svc.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusApproved, updated.Status)

	fields := resStore.appliedUpdates[resource.ID]
	require.NotNil(t, fields)
	assert.Equal(t, "LIMITED", fields["status"])
	assert.Contains(t, fields, "updated_at")
	// Provenance fields never pass through an approved update.
	assert.NotContains(t, fields, "submitted_by")
}

func TestApprove_ResourceUpdate_OutOfRangeCoordinates(t *testing.T) {
	resource := &models.Resource{
		ID:       primitive.NewObjectID(),
		Name:     "Relocatable Clinic",
		Category: models.ResourceCategoryMedical,
		Status:   models.ResourceStatusAvailable,
	}
	sub := pendingSubmission(models.SubmissionTypeResourceUpdate, map[string]interface{}{
		"latitude":  95.0,
		"longitude": 10.0,
	})
	sub.ResourceID = &resource.ID

	subStore := newFakeSubmissionStore(sub)
	resStore := newFakeModResourceStore(resource)
	svc := NewModerationService(subStore, resStore, false)

	_, err := svc.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrInvalidSubmissionData)

	assert.Empty(t, resStore.appliedUpdates)
	stored, _ := subStore.GetByID(context.Background(), sub.ID)
	assert.Equal(t, models.SubmissionStatusPending, stored.Status)
}

func TestApprove_ResourceUpdate_InvalidStatus(t *testing.T) {
	resource := &models.Resource{
		ID:       primitive.NewObjectID(),
		Name:     "Water Point 9",
		Category: models.ResourceCategoryWater,
		Status:   models.ResourceStatusAvailable,
	}
	sub := pendingSubmission(models.SubmissionTypeResourceUpdate, map[string]interface{}{
		"status": "SORT_OF_OPEN",
	})
	sub.ResourceID = &resource.ID

	resStore := newFakeModResourceStore(resource)
	svc := NewModerationService(newFakeSubmissionStore(sub), resStore, false)

	_, err := svc.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrInvalidSubmissionData)
	assert.Empty(t, resStore.appliedUpdates)
}

func TestApprove_ResourceUpdate_CapacityRule(t *testing.T) {
	resource := &models.Resource{
		ID:       primitive.NewObjectID(),
		Name:     "Shelter C",
		Category: models.ResourceCategoryShelter,
		Status:   models.ResourceStatusAvailable,
	}
	sub := pendingSubmission(models.SubmissionTypeResourceUpdate, map[string]interface{}{
		"capacity":          40,
		"current_occupancy": 60,
	})
	sub.ResourceID = &resource.ID

	resStore := newFakeModResourceStore(resource)
	svc := NewModerationService(newFakeSubmissionStore(sub), resStore, true)

	_, err := svc.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrInvalidSubmissionData)
	assert.Empty(t, resStore.appliedUpdates)
}

func TestApprove_ResourceUpdate_MissingResourceID(t *testing.T) {
	sub := pendingSubmission(models.SubmissionTypeResourceUpdate, map[string]interface{}{
		"status": "LIMITED",
	})
	subStore := newFakeSubmissionStore(sub)
	resStore := newFakeModResourceStore()
	svc := NewModerationService(subStore, resStore, false)

	_, err := svc.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrMissingResourceID)

	// No record touched, no partial transition.
	assert.Empty(t, resStore.appliedUpdates)
	stored, _ := subStore.GetByID(context.Background(), sub.ID)
	assert.Equal(t, models.SubmissionStatusPending, stored.Status)
}

func TestApprove_ResourceUpdate_UnknownResource(t *testing.T) {
	missingID := primitive.NewObjectID()
	sub := pendingSubmission(models.SubmissionTypeResourceUpdate, map[string]interface{}{
		"status": "LIMITED",
	})
	sub.ResourceID = &missingID

	subStore := newFakeSubmissionStore(sub)
	svc := NewModerationService(subStore, newFakeModResourceStore(), false)

	_, err := svc.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrResourceNotFound)

	stored, _ := subStore.GetByID(context.Background(), sub.ID)
	assert.Equal(t, models.SubmissionStatusPending, stored.Status)
}

func TestApprove_Report_NoSideEffect(t *testing.T) {
	sub := pendingSubmission(models.SubmissionTypeReport, map[string]interface{}{
		"reason": "resource no longer exists",
	})
	subStore := newFakeSubmissionStore(sub)
	resStore := newFakeModResourceStore()
	svc := NewModerationService(subStore, resStore, false)

	updated, err := svc.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusApproved, updated.Status)

	assert.Empty(t, resStore.inserted)
	assert.Empty(t, resStore.appliedUpdates)
}

func TestApprove_UnknownSubmission(t *testing.T) {
	svc := NewModerationService(newFakeSubmissionStore(), newFakeModResourceStore(), false)

	_, err := svc.Approve(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}

func TestApprove_AlreadyReviewed(t *testing.T) {
	sub := pendingSubmission(models.SubmissionTypeReport, map[string]interface{}{"reason": "dup"})
	subStore := newFakeSubmissionStore(sub)
	svc := NewModerationService(subStore, newFakeModResourceStore(), false)

	_, err := svc.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	require.NoError(t, err)

	// Terminal state is final: a second transition is a conflict, not a
	// silent re-apply.
	_, err = svc.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrSubmissionAlreadyReviewed)

	_, err = svc.Reject(context.Background(), sub.ID, primitive.NewObjectID(), "late")
	assert.ErrorIs(t, err, ErrSubmissionAlreadyReviewed)
}

func TestApprove_NewResource_LostRaceCompensates(t *testing.T) {
	sub := pendingSubmission(models.SubmissionTypeNewResource, map[string]interface{}{
		"name":     "Shelter B",
		"category": "SHELTER",
	})
	subStore := newFakeSubmissionStore(sub)
	subStore.stealTransition = true
	resStore := newFakeModResourceStore()
	svc := NewModerationService(subStore, resStore, false)

	_, err := svc.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrSubmissionAlreadyReviewed)

	// The resource created before the lost transition must be removed.
	require.Len(t, resStore.inserted, 1)
	require.Len(t, resStore.deleted, 1)
	assert.Equal(t, resStore.inserted[0].ID, resStore.deleted[0])
}

func TestApprove_ResourceUpdate_LostRaceRestoresPreImage(t *testing.T) {
	resource := &models.Resource{
		ID:     primitive.NewObjectID(),
		Name:   "Clinic 7",
		Status: models.ResourceStatusAvailable,
	}
	sub := pendingSubmission(models.SubmissionTypeResourceUpdate, map[string]interface{}{
		"status": "UNAVAILABLE",
	})
	sub.ResourceID = &resource.ID

	subStore := newFakeSubmissionStore(sub)
	subStore.stealTransition = true
	resStore := newFakeModResourceStore(resource)
	svc := NewModerationService(subStore, resStore, false)

	_, err := svc.Approve(context.Background(), sub.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrSubmissionAlreadyReviewed)

	require.Len(t, resStore.replaced, 1)
	assert.Equal(t, models.ResourceStatusAvailable, resStore.replaced[0].Status)
}

func TestReject(t *testing.T) {
	sub := pendingSubmission(models.SubmissionTypeNewResource, map[string]interface{}{
		"name": "spam", "category": "OTHER",
	})
	subStore := newFakeSubmissionStore(sub)
	resStore := newFakeModResourceStore()
	svc := NewModerationService(subStore, resStore, false)

	reviewer := primitive.NewObjectID()
	updated, err := svc.Reject(context.Background(), sub.ID, reviewer, "duplicate entry")
	require.NoError(t, err)

	assert.Equal(t, models.SubmissionStatusRejected, updated.Status)
	require.NotNil(t, updated.ReviewedBy)
	assert.Equal(t, reviewer, *updated.ReviewedBy)
	assert.Equal(t, "duplicate entry", updated.ReviewNotes)

	// Rejection never touches the catalog.
	assert.Empty(t, resStore.inserted)
	assert.Empty(t, resStore.appliedUpdates)
}

func TestReject_UnknownSubmission(t *testing.T) {
	svc := NewModerationService(newFakeSubmissionStore(), newFakeModResourceStore(), false)

	_, err := svc.Reject(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "")
	assert.ErrorIs(t, err, ErrSubmissionNotFound)
}
