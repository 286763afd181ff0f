package services

import "math"

const earthRadiusKm = 6371

// HaversineKm returns the great-circle distance between two points in kilometers
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	// Clamp against rounding drift, the same way the SQL variant uses LEAST/GREATEST
	a = math.Min(1, math.Max(0, a))

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
