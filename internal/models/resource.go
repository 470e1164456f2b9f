// internal/models/resource.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Resource struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`

	Name        string `bson:"name" json:"name" validate:"required,min=2,max=200"`
	Category    string `bson:"category" json:"category" validate:"required,oneof=SHELTER FOOD MEDICAL WATER CLOTHING OTHER"`
	Status      string `bson:"status" json:"status" validate:"required,oneof=AVAILABLE LIMITED UNAVAILABLE TEMPORARILY_CLOSED"`
	Description string `bson:"description,omitempty" json:"description,omitempty" validate:"max=2000"`

	// Coordinates are optional; a resource without them is never
	// geographically matchable.
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`

	Address        string `bson:"address,omitempty" json:"address,omitempty"`
	City           string `bson:"city,omitempty" json:"city,omitempty"`
	Country        string `bson:"country,omitempty" json:"country,omitempty"`
	Phone          string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email          string `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	OperatingHours string `bson:"operating_hours,omitempty" json:"operating_hours,omitempty"`

	Capacity         *int `bson:"capacity,omitempty" json:"capacity,omitempty" validate:"omitempty,min=0"`
	CurrentOccupancy *int `bson:"current_occupancy,omitempty" json:"current_occupancy,omitempty" validate:"omitempty,min=0"`

	IsVerified  bool                `bson:"is_verified" json:"is_verified"`
	SubmittedBy primitive.ObjectID  `bson:"submitted_by,omitempty" json:"submitted_by,omitempty"`
	VerifiedBy  *primitive.ObjectID `bson:"verified_by,omitempty" json:"verified_by,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Resource categories
const (
	ResourceCategoryShelter  = "SHELTER"
	ResourceCategoryFood     = "FOOD"
	ResourceCategoryMedical  = "MEDICAL"
	ResourceCategoryWater    = "WATER"
	ResourceCategoryClothing = "CLOTHING"
	ResourceCategoryOther    = "OTHER"
)

// Resource statuses
const (
	ResourceStatusAvailable         = "AVAILABLE"
	ResourceStatusLimited           = "LIMITED"
	ResourceStatusUnavailable       = "UNAVAILABLE"
	ResourceStatusTemporarilyClosed = "TEMPORARILY_CLOSED"
)

func ResourceCategories() []string {
	return []string{
		ResourceCategoryShelter,
		ResourceCategoryFood,
		ResourceCategoryMedical,
		ResourceCategoryWater,
		ResourceCategoryClothing,
		ResourceCategoryOther,
	}
}

func ResourceStatuses() []string {
	return []string{
		ResourceStatusAvailable,
		ResourceStatusLimited,
		ResourceStatusUnavailable,
		ResourceStatusTemporarilyClosed,
	}
}

// HasCoordinates reports whether the resource can take part in
// geographic matching at all.
func (r *Resource) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// IsOverCapacity reports whether current occupancy exceeds capacity.
// Only meaningful when both values are set.
func (r *Resource) IsOverCapacity() bool {
	if r.Capacity == nil || r.CurrentOccupancy == nil {
		return false
	}
	return *r.CurrentOccupancy > *r.Capacity
}

func (r *Resource) CanBeEditedBy(userID primitive.ObjectID, role UserRole) bool {
	if role.CanModerate() {
		return true
	}
	return r.SubmittedBy == userID
}
