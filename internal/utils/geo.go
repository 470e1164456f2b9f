package utils

import "math"

const earthRadiusKm = 6371

// DistanceKm returns the great-circle distance in kilometers between
// two points given in decimal degrees, using the Haversine formula.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)

	deltaLat := toRadians(lat2 - lat1)
	deltaLng := toRadians(lng2 - lng1)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// WithinRadiusKm reports whether the point (lat2, lng2) lies inside or
// exactly on the circle of radiusKm centered at (lat1, lng1).
func WithinRadiusKm(lat1, lng1, lat2, lng2, radiusKm float64) bool {
	return DistanceKm(lat1, lng1, lat2, lng2) <= radiusKm
}

// ValidCoordinates reports whether lat/lng are inside the valid
// decimal-degree ranges.
func ValidCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}
