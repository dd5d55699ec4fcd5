package geo

import "math"

const (
	earthRadiusKm = 6371.0
	// kmPerDegree is the rough equirectangular conversion used for cheap
	// bounding-box prefilters. Not geodesically exact; acceptable at the
	// radii this service queries (<=10 km).
	kmPerDegree = 111.0

	walkingSpeedKmh = 5.0
)

// Haversine calculates the great-circle distance in kilometres between two
// coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLon := (lon2 - lon1) * math.Pi / 180.0

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// DegreeRadius converts a radius in kilometres to the degree offset used by
// bounding-box queries (radiusKm / 111).
func DegreeRadius(radiusKm float64) float64 {
	return radiusKm / kmPerDegree
}

// BoundingBox returns the min/max latitude and longitude of a square box
// of the given radius centred on the coordinate.
func BoundingBox(lat, lon, radiusKm float64) (minLat, maxLat, minLon, maxLon float64) {
	d := DegreeRadius(radiusKm)
	return lat - d, lat + d, lon - d, lon + d
}

// EstimateWalkingSeconds returns the estimated walking time in seconds for
// the direct distance between two coordinates, at 5 km/h.
func EstimateWalkingSeconds(lat1, lon1, lat2, lon2 float64) int {
	distance := Haversine(lat1, lon1, lat2, lon2)
	return int(math.Round((distance / walkingSpeedKmh) * 3600))
}

// RoundKm rounds a distance to one decimal place for display.
func RoundKm(km float64) float64 {
	return math.Round(km*10) / 10
}
