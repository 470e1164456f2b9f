// internal/models/alert.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "INFO"
	AlertSeverityWarning  AlertSeverity = "WARNING"
	AlertSeverityDanger   AlertSeverity = "DANGER"
	AlertSeverityCritical AlertSeverity = "CRITICAL"
)

func (s AlertSeverity) IsValid() bool {
	switch s {
	case AlertSeverityInfo, AlertSeverityWarning, AlertSeverityDanger, AlertSeverityCritical:
		return true
	}
	return false
}

// Rank orders severities for display, CRITICAL highest.
func (s AlertSeverity) Rank() int {
	switch s {
	case AlertSeverityCritical:
		return 3
	case AlertSeverityDanger:
		return 2
	case AlertSeverityWarning:
		return 1
	default:
		return 0
	}
}

const (
	// DefaultAlertRadiusKm is applied when an alert is created without
	// an explicit radius.
	DefaultAlertRadiusKm = 10.0

	// MaxAlertRadiusKm caps how wide a single impact zone may be.
	MaxAlertRadiusKm = 1000.0
)

type Alert struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`

	Title    string        `bson:"title" json:"title" validate:"required,min=3,max=200"`
	Message  string        `bson:"message" json:"message" validate:"required,min=3,max=2000"`
	Severity AlertSeverity `bson:"severity" json:"severity" validate:"required,oneof=INFO WARNING DANGER CRITICAL"`

	// Impact zone. All three must be set for the alert to be
	// geographically matchable.
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	RadiusKm  float64  `bson:"radius_km" json:"radius_km" validate:"gt=0,max=1000"`

	Address       string   `bson:"address,omitempty" json:"address,omitempty"`
	AffectedAreas []string `bson:"affected_areas,omitempty" json:"affected_areas,omitempty"`
	Instructions  string   `bson:"instructions,omitempty" json:"instructions,omitempty"`

	IsActive bool       `bson:"is_active" json:"is_active"`
	StartsAt time.Time  `bson:"starts_at" json:"starts_at"`
	EndsAt   *time.Time `bson:"ends_at,omitempty" json:"ends_at,omitempty"`

	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// HasImpactZone reports whether the alert carries a full center+radius
// and can be matched against a query point.
func (a *Alert) HasImpactZone() bool {
	return a.Latitude != nil && a.Longitude != nil && a.RadiusKm > 0
}
