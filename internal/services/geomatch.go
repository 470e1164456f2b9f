// internal/services/geomatch.go
package services

import (
	"context"

	"relief-hub/internal/models"
	"relief-hub/internal/utils"

	"github.com/sirupsen/logrus"
)

// GeoResourceStore is the slice of the catalog the matching engine
// reads resources from.
type GeoResourceStore interface {
	// ListWithCoordinates returns every resource that has both latitude
	// and longitude populated.
	ListWithCoordinates(ctx context.Context) ([]models.Resource, error)
}

// GeoAlertStore is the slice of the catalog the matching engine reads
// alerts from.
type GeoAlertStore interface {
	// ListActiveWithZones returns every active alert that has a full
	// impact zone (latitude, longitude and radius).
	ListActiveWithZones(ctx context.Context) ([]models.Alert, error)
}

// ResourceMatch is a resource relevant to a query point.
type ResourceMatch struct {
	Resource   models.Resource `json:"resource"`
	DistanceKm float64         `json:"distance_km"`
}

// AlertMatch is an alert whose impact zone contains a query point.
type AlertMatch struct {
	Alert      models.Alert `json:"alert"`
	DistanceKm float64      `json:"distance_km"`
}

// GeoMatchService decides which resources and alerts are relevant to a
// location. Both operations are full scans with in-process trigonometry;
// the catalog is sized in the thousands, not millions.
type GeoMatchService struct {
	resources       GeoResourceStore
	alerts          GeoAlertStore
	defaultRadiusKm float64
}

func NewGeoMatchService(resources GeoResourceStore, alerts GeoAlertStore, defaultRadiusKm float64) *GeoMatchService {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = models.DefaultAlertRadiusKm
	}
	return &GeoMatchService{
		resources:       resources,
		alerts:          alerts,
		defaultRadiusKm: defaultRadiusKm,
	}
}

// FindResourcesNear returns all resources within radiusKm of the query
// point, boundary inclusive. radiusKm <= 0 selects the default radius.
// Resources without coordinates never match.
func (s *GeoMatchService) FindResourcesNear(ctx context.Context, lat, lng, radiusKm float64) ([]ResourceMatch, error) {
	if !utils.ValidCoordinates(lat, lng) {
		return nil, ErrInvalidCoordinates
	}
	if radiusKm <= 0 {
		radiusKm = s.defaultRadiusKm
	}

	candidates, err := s.resources.ListWithCoordinates(ctx)
	if err != nil {
		return nil, storeError("listing resources with coordinates", err)
	}

	matches := make([]ResourceMatch, 0)
	for _, resource := range candidates {
		if !resource.HasCoordinates() {
			continue
		}
		distance := utils.DistanceKm(lat, lng, *resource.Latitude, *resource.Longitude)
		if distance <= radiusKm {
			matches = append(matches, ResourceMatch{Resource: resource, DistanceKm: distance})
		}
	}

	logrus.WithFields(logrus.Fields{
		"lat":        lat,
		"lng":        lng,
		"radius_km":  radiusKm,
		"candidates": len(candidates),
		"matches":    len(matches),
	}).Debug("resource proximity search")

	return matches, nil
}

// FindAlertsAffecting returns all active alerts whose own impact zone
// contains the query point. Each alert is tested against its declared
// radius; alerts missing any part of the zone never match.
func (s *GeoMatchService) FindAlertsAffecting(ctx context.Context, lat, lng float64) ([]AlertMatch, error) {
	if !utils.ValidCoordinates(lat, lng) {
		return nil, ErrInvalidCoordinates
	}

	candidates, err := s.alerts.ListActiveWithZones(ctx)
	if err != nil {
		return nil, storeError("listing active alerts", err)
	}

	matches := make([]AlertMatch, 0)
	for _, alert := range candidates {
		if !alert.HasImpactZone() {
			continue
		}
		distance := utils.DistanceKm(lat, lng, *alert.Latitude, *alert.Longitude)
		if distance <= alert.RadiusKm {
			matches = append(matches, AlertMatch{Alert: alert, DistanceKm: distance})
		}
	}

	return matches, nil
}
