// Package geo provides great-circle distance math for place filtering.
package geo

import "math"

// earthRadiusM is the mean Earth radius in meters.
const earthRadiusM = 6371000.0

// DistanceMeters returns the haversine distance in meters between two
// coordinates. The second return value is false when either coordinate
// is missing, in which case the distance is meaningless.
func DistanceMeters(lat1, lng1, lat2, lng2 *float64) (float64, bool) {
	if lat1 == nil || lng1 == nil || lat2 == nil || lng2 == nil {
		return 0, false
	}
	return haversineM(*lat1, *lng1, *lat2, *lng2), true
}

// haversineM computes the great-circle distance in meters between two
// points given in decimal degrees.
func haversineM(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}
