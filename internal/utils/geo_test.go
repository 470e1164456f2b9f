package utils

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		wantKm                 float64
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 48.62, lng1: 33.25, lat2: 48.62, lng2: 33.25,
			wantKm: 0, tolerance: 0.001,
		},
		{
			name: "one tenth degree of longitude on the equator",
			lat1: 0, lng1: 0, lat2: 0, lng2: 0.1,
			wantKm: 11.12, tolerance: 0.01,
		},
		{
			name: "point near ten kilometers on the equator",
			lat1: 0, lng1: 0, lat2: 0, lng2: 0.09,
			wantKm: 10.0, tolerance: 0.05,
		},
		{
			name: "london to paris",
			lat1: 51.5074, lng1: -0.1278, lat2: 48.8566, lng2: 2.3522,
			wantKm: 343.5, tolerance: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("DistanceKm() = %f, want %f within %f", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestDistanceKm_Symmetric(t *testing.T) {
	d1 := DistanceKm(48.62, 33.25, 50.45, 30.52)
	d2 := DistanceKm(50.45, 30.52, 48.62, 33.25)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("distance is not symmetric: %f vs %f", d1, d2)
	}
}

func TestWithinRadiusKm_BoundaryInclusive(t *testing.T) {
	// A point exactly on the circle counts as inside.
	d := DistanceKm(0, 0, 0, 0.09)
	if !WithinRadiusKm(0, 0, 0, 0.09, d) {
		t.Error("point exactly at the radius should be within")
	}
	if WithinRadiusKm(0, 0, 0, 0.09, d-0.001) {
		t.Error("point just beyond the radius should not be within")
	}
}

func TestValidCoordinates(t *testing.T) {
	valid := [][2]float64{
		{0, 0}, {90, 180}, {-90, -180}, {48.62, 33.25},
	}
	for _, c := range valid {
		if !ValidCoordinates(c[0], c[1]) {
			t.Errorf("ValidCoordinates(%f, %f) = false, want true", c[0], c[1])
		}
	}

	invalid := [][2]float64{
		{90.001, 0}, {-91, 0}, {0, 180.5}, {0, -181},
	}
	for _, c := range invalid {
		if ValidCoordinates(c[0], c[1]) {
			t.Errorf("ValidCoordinates(%f, %f) = true, want false", c[0], c[1])
		}
	}
}
