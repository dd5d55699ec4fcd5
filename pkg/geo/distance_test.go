package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineZeroDistance(t *testing.T) {
	assert.InDelta(t, 0, Haversine(12.9716, 77.5946, 12.9716, 77.5946), 1e-9)
}

func TestHaversineKnownDistance(t *testing.T) {
	// Bengaluru City Railway Station to Cubbon Park, roughly 0.4-0.5 km
	d := Haversine(12.9762, 77.6033, 12.9762, 77.5993)
	assert.InDelta(t, 0.43, d, 0.05)
}

func TestDegreeRadius(t *testing.T) {
	assert.InDelta(t, 5.0/111.0, DegreeRadius(5), 1e-12)
}

func TestBoundingBox(t *testing.T) {
	minLat, maxLat, minLon, maxLon := BoundingBox(10, 20, 111)
	assert.InDelta(t, 9, minLat, 1e-9)
	assert.InDelta(t, 11, maxLat, 1e-9)
	assert.InDelta(t, 19, minLon, 1e-9)
	assert.InDelta(t, 21, maxLon, 1e-9)
}

func TestEstimateWalkingSeconds(t *testing.T) {
	// Same point walks in zero seconds.
	assert.Equal(t, 0, EstimateWalkingSeconds(1, 1, 1, 1))

	// One degree of latitude is ~111 km: about 22 hours at 5 km/h.
	secs := EstimateWalkingSeconds(0, 0, 1, 0)
	assert.Greater(t, secs, 75000)
	assert.Less(t, secs, 85000)
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 1.2, RoundKm(1.24))
	assert.Equal(t, 1.3, RoundKm(1.25))
}
