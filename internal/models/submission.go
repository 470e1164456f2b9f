// internal/models/submission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SubmissionType string

const (
	SubmissionTypeNewResource    SubmissionType = "NEW_RESOURCE"
	SubmissionTypeResourceUpdate SubmissionType = "RESOURCE_UPDATE"
	SubmissionTypeReport         SubmissionType = "REPORT"
)

func (t SubmissionType) IsValid() bool {
	switch t {
	case SubmissionTypeNewResource, SubmissionTypeResourceUpdate, SubmissionTypeReport:
		return true
	}
	return false
}

type SubmissionStatus string

const (
	SubmissionStatusPending  SubmissionStatus = "PENDING"
	SubmissionStatusApproved SubmissionStatus = "APPROVED"
	SubmissionStatusRejected SubmissionStatus = "REJECTED"
)

// Submission is a community-proposed change awaiting moderation.
// Status moves PENDING -> APPROVED or PENDING -> REJECTED, one way,
// exactly once.
type Submission struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`

	Type SubmissionType `bson:"type" json:"type" validate:"required,oneof=NEW_RESOURCE RESOURCE_UPDATE REPORT"`

	// ResourceID is required for RESOURCE_UPDATE submissions.
	ResourceID *primitive.ObjectID `bson:"resource_id,omitempty" json:"resource_id,omitempty"`

	// Data is the proposed payload; its shape depends on Type.
	Data map[string]interface{} `bson:"data" json:"data" validate:"required"`

	Status SubmissionStatus `bson:"status" json:"status"`

	SubmittedBy primitive.ObjectID  `bson:"submitted_by" json:"submitted_by"`
	ReviewedBy  *primitive.ObjectID `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	ReviewNotes string              `bson:"review_notes,omitempty" json:"review_notes,omitempty"`

	CreatedAt  time.Time  `bson:"created_at" json:"created_at"`
	ReviewedAt *time.Time `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
}

func (s *Submission) IsPending() bool {
	return s.Status == SubmissionStatusPending
}
