package crowd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForPercentage_StepFunction(t *testing.T) {
	tests := []struct {
		percentage float64
		expected   DensityLevel
	}{
		{0, DensityLow},
		{39.9, DensityLow},
		{40, DensityMedium},
		{69.9, DensityMedium},
		{70, DensityHigh},
		{89.9, DensityHigh},
		{90, DensityCritical},
		{100, DensityCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LevelForPercentage(tt.percentage),
			"percentage %.1f", tt.percentage)
	}
}

func TestUpdateDensity_PercentageClampsAt100(t *testing.T) {
	location := &Location{Name: "Stadium A", MaxCapacity: 1000}
	location.UpdateDensity(2500, time.Now())

	assert.Equal(t, 100.0, location.DensityPercentage)
	assert.Equal(t, DensityCritical, location.DensityLevel)
}

func TestUpdateDensity_AlertTracksLevel(t *testing.T) {
	location := &Location{Name: "Stadium A", MaxCapacity: 1000}

	tests := []struct {
		count       int
		level       DensityLevel
		alertActive bool
	}{
		{100, DensityLow, false},
		{500, DensityMedium, false},
		{750, DensityHigh, true},
		{950, DensityCritical, true},
		{300, DensityLow, false},
	}

	for _, tt := range tests {
		location.UpdateDensity(tt.count, time.Now())
		assert.Equal(t, tt.level, location.DensityLevel, "count %d", tt.count)
		assert.Equal(t, tt.alertActive, location.AlertActive, "count %d", tt.count)
		if tt.alertActive {
			assert.Contains(t, location.AlertMessage, "Stadium A")
		} else {
			assert.Empty(t, location.AlertMessage)
		}
	}
}

func TestUpdateDensity_AlertMessages(t *testing.T) {
	location := &Location{Name: "Brigade Road", MaxCapacity: 100}

	location.UpdateDensity(95, time.Now())
	assert.Contains(t, location.AlertMessage, "CRITICAL")

	location.UpdateDensity(75, time.Now())
	assert.Contains(t, location.AlertMessage, "WARNING")
}

func TestUpdateDensity_HistoryBounded(t *testing.T) {
	location := &Location{Name: "Station", MaxCapacity: 1000}

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		location.UpdateDensity(i*10, base.Add(time.Duration(i)*time.Minute))
	}

	require.Len(t, location.History, 24)

	// Buffer holds exactly the most recent samples in chronological order
	assert.Equal(t, 160, location.History[0].Count)
	assert.Equal(t, 390, location.History[23].Count)
	for i := 1; i < len(location.History); i++ {
		assert.True(t, location.History[i].Timestamp.After(location.History[i-1].Timestamp))
	}
}

func TestValidCategory(t *testing.T) {
	assert.True(t, ValidCategory(CategoryStadium))
	assert.True(t, ValidCategory(CategoryOther))
	assert.False(t, ValidCategory(Category("museum")))
}
