package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportRequest struct {
	Latitude     float64 `validate:"latitude"`
	Longitude    float64 `validate:"longitude"`
	DensityLevel string  `validate:"omitempty,density_level"`
}

func TestValidateStruct_Valid(t *testing.T) {
	req := reportRequest{Latitude: 12.9716, Longitude: 77.5946, DensityLevel: "high"}
	assert.NoError(t, ValidateStruct(req))
}

func TestValidateStruct_InvalidLatitude(t *testing.T) {
	req := reportRequest{Latitude: 91, Longitude: 77.5946}
	err := ValidateStruct(req)
	require.Error(t, err)

	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, ve.Errors, "latitude")
}

func TestValidateStruct_InvalidDensityLevel(t *testing.T) {
	req := reportRequest{Latitude: 0, Longitude: 0, DensityLevel: "extreme"}
	assert.Error(t, ValidateStruct(req))
}

func TestEmergencyEnums(t *testing.T) {
	type alert struct {
		Type     string `validate:"emergency_type"`
		Severity string `validate:"emergency_severity"`
	}

	assert.NoError(t, ValidateStruct(alert{Type: "stampede_risk", Severity: "critical"}))
	assert.NoError(t, ValidateStruct(alert{Type: "fire_hazard", Severity: "low"}))
	assert.Error(t, ValidateStruct(alert{Type: "tsunami", Severity: "critical"}))
	assert.Error(t, ValidateStruct(alert{Type: "fire_hazard", Severity: "catastrophic"}))
}

func TestValidateCoordinates(t *testing.T) {
	assert.NoError(t, ValidateCoordinates(12.9716, 77.5946))
	assert.Error(t, ValidateCoordinates(-90.5, 0))
	assert.Error(t, ValidateCoordinates(0, 180.5))
}

func TestValidateRadius(t *testing.T) {
	assert.NoError(t, ValidateRadius(5))
	assert.Error(t, ValidateRadius(0))
	assert.Error(t, ValidateRadius(-1))
	assert.Error(t, ValidateRadius(101))
}

func TestPaginationNormalize(t *testing.T) {
	p := PaginationRequest{}
	p.Normalize()
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = PaginationRequest{Limit: 500, Offset: -3}
	p.Normalize()
	assert.Equal(t, 100, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestRouteEndpoints(t *testing.T) {
	assert.NoError(t, RouteEndpoints(12.97, 77.59, 12.98, 77.60))
	assert.Error(t, RouteEndpoints(12.97, 77.59, 12.97, 77.59))
	assert.Error(t, RouteEndpoints(120, 77.59, 12.98, 77.60))
}

func TestValidationError_Message(t *testing.T) {
	ve := &ValidationError{}
	ve.AddError("latitude", "out of range")
	require.True(t, ve.HasErrors())
	assert.Contains(t, ve.Error(), "validation failed")
	assert.Contains(t, ve.Error(), "latitude")
}
