// Package geo provides coordinate types, great-circle distance math, and
// free-text address validation for the distance estimation subsystem.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMiles is the mean Earth radius used for great-circle math.
const EarthRadiusMiles = 3959.0

// Continental-US sanity bounds. Geocoding results outside this box are
// treated as misses rather than returned to callers.
const (
	MinLat = 24.0
	MaxLat = 71.0
	MinLon = -180.0
	MaxLon = -66.0
)

// Coordinate represents a geographic point.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Haversine returns the great-circle distance between two points in miles.
// Pure function; always finite and non-negative for valid numeric inputs.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}

// Distance returns the great-circle distance between two coordinates in miles.
func Distance(a, b Coordinate) float64 {
	return Haversine(a.Lat, a.Lon, b.Lat, b.Lon)
}

// ValidateBounds checks that a coordinate falls inside the continental-US
// sanity box.
func ValidateBounds(c Coordinate) error {
	if c.Lat < MinLat || c.Lat > MaxLat {
		return fmt.Errorf("latitude %f out of range [%v, %v]", c.Lat, MinLat, MaxLat)
	}
	if c.Lon < MinLon || c.Lon > MaxLon {
		return fmt.Errorf("longitude %f out of range [%v, %v]", c.Lon, MinLon, MaxLon)
	}
	return nil
}
