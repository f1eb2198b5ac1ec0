// Package geo holds great-circle helpers used by the ticket filters.
package geo

import (
	"math"

	"civicalert/internal/domain/entity"
)

const EarthRadiusKm = 6371.0

// DistanceKm returns the haversine distance between two points in kilometers.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	// Rounding can push a past 1 for near-antipodal points.
	a = math.Min(1, math.Max(0, a))
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

func Between(a, b entity.Coordinate) float64 {
	return DistanceKm(a.Latitude, a.Longitude, b.Latitude, b.Longitude)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
