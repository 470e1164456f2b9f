package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestResource_HasCoordinates(t *testing.T) {
	both := Resource{Latitude: floatPtr(48.4), Longitude: floatPtr(35.0)}
	assert.True(t, both.HasCoordinates())

	latOnly := Resource{Latitude: floatPtr(48.4)}
	assert.False(t, latOnly.HasCoordinates())

	none := Resource{}
	assert.False(t, none.HasCoordinates())
}

func TestResource_IsOverCapacity(t *testing.T) {
	over := Resource{Capacity: intPtr(100), CurrentOccupancy: intPtr(120)}
	assert.True(t, over.IsOverCapacity())

	atLimit := Resource{Capacity: intPtr(100), CurrentOccupancy: intPtr(100)}
	assert.False(t, atLimit.IsOverCapacity())

	unknown := Resource{Capacity: intPtr(100)}
	assert.False(t, unknown.IsOverCapacity())
}

func TestResource_CanBeEditedBy(t *testing.T) {
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	resource := Resource{SubmittedBy: owner}

	assert.True(t, resource.CanBeEditedBy(owner, RoleUser))
	assert.False(t, resource.CanBeEditedBy(stranger, RoleUser))
	assert.True(t, resource.CanBeEditedBy(stranger, RoleVolunteer))
	assert.True(t, resource.CanBeEditedBy(stranger, RoleAdmin))
}
