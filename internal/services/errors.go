package services

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the core services. Handlers translate
// these into HTTP status codes; store failures are wrapped and reach
// the caller as-is.
var (
	ErrInvalidCoordinates = errors.New("latitude must be in [-90,90] and longitude in [-180,180]")

	ErrSubmissionNotFound        = errors.New("submission not found")
	ErrSubmissionAlreadyReviewed = errors.New("submission has already been reviewed")
	ErrMissingResourceID         = errors.New("resource_id is required for RESOURCE_UPDATE submissions")
	ErrResourceNotFound          = errors.New("resource not found")
	ErrInvalidSubmissionData     = errors.New("submission data is not a valid resource payload")
)

// storeError marks a failure coming from the catalog store, as opposed
// to a validation or state problem.
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
