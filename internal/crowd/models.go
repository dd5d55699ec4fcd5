package crowd

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// DensityLevel classifies occupancy as a fraction of capacity.
type DensityLevel string

const (
	DensityLow      DensityLevel = "low"
	DensityMedium   DensityLevel = "medium"
	DensityHigh     DensityLevel = "high"
	DensityCritical DensityLevel = "critical"
)

// Category describes the kind of place where crowds gather.
type Category string

const (
	CategoryEvent     Category = "event"
	CategoryTransport Category = "transport"
	CategoryShopping  Category = "shopping"
	CategoryReligious Category = "religious"
	CategoryStadium   Category = "stadium"
	CategoryFestival  Category = "festival"
	CategoryOther     Category = "other"
)

// Categories lists all valid location categories.
func Categories() []Category {
	return []Category{
		CategoryEvent, CategoryTransport, CategoryShopping,
		CategoryReligious, CategoryStadium, CategoryFestival, CategoryOther,
	}
}

// ValidCategory reports whether c is a known category.
func ValidCategory(c Category) bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// DensityLevels lists all levels in ascending order of severity.
func DensityLevels() []DensityLevel {
	return []DensityLevel{DensityLow, DensityMedium, DensityHigh, DensityCritical}
}

func validLevel(level DensityLevel) bool {
	for _, known := range DensityLevels() {
		if level == known {
			return true
		}
	}
	return false
}

// maxHistorySamples bounds the per-location trend buffer.
const maxHistorySamples = 24

// HistorySample is one point of the density trend buffer.
type HistorySample struct {
	Timestamp time.Time    `json:"timestamp"`
	Count     int          `json:"count"`
	Level     DensityLevel `json:"density_level"`
}

// Location is a monitored crowd gathering spot.
type Location struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"location_name"`
	Category          Category        `json:"location_type"`
	Latitude          float64         `json:"latitude"`
	Longitude         float64         `json:"longitude"`
	EstimatedCount    int             `json:"estimated_count"`
	MaxCapacity       int             `json:"max_capacity"`
	DensityPercentage float64         `json:"density_percentage"`
	DensityLevel      DensityLevel    `json:"current_density"`
	AlertActive       bool            `json:"alert_active"`
	AlertMessage      string          `json:"alert_message"`
	History           []HistorySample `json:"density_history,omitempty"`
	LastUpdated       time.Time       `json:"last_updated"`
	CreatedAt         time.Time       `json:"created_at"`
}

// LevelForPercentage maps a density percentage to its level.
func LevelForPercentage(percentage float64) DensityLevel {
	switch {
	case percentage >= 90:
		return DensityCritical
	case percentage >= 70:
		return DensityHigh
	case percentage >= 40:
		return DensityMedium
	default:
		return DensityLow
	}
}

// UpdateDensity applies a new count: recomputes the percentage (capped at
// 100), the level, the alert state and appends a history sample, trimming
// the buffer to the most recent samples.
func (l *Location) UpdateDensity(newCount int, now time.Time) {
	l.EstimatedCount = newCount
	l.DensityPercentage = math.Min(float64(newCount)/float64(l.MaxCapacity)*100, 100)
	l.DensityLevel = LevelForPercentage(l.DensityPercentage)
	l.LastUpdated = now

	l.History = append(l.History, HistorySample{
		Timestamp: now,
		Count:     newCount,
		Level:     l.DensityLevel,
	})
	if len(l.History) > maxHistorySamples {
		l.History = l.History[len(l.History)-maxHistorySamples:]
	}

	if l.DensityLevel == DensityCritical || l.DensityLevel == DensityHigh {
		l.AlertActive = true
		l.AlertMessage = l.alertMessage()
	} else {
		l.AlertActive = false
		l.AlertMessage = ""
	}
}

func (l *Location) alertMessage() string {
	switch l.DensityLevel {
	case DensityCritical:
		return fmt.Sprintf("CRITICAL: Extremely high crowd density at %s. Avoid this area immediately for your safety. Consider alternative routes.", l.Name)
	case DensityHigh:
		return fmt.Sprintf("WARNING: High crowd density detected at %s. Exercise caution and consider alternative locations or routes.", l.Name)
	default:
		return ""
	}
}

// RegisterLocationRequest is the payload for adding a monitored location.
type RegisterLocationRequest struct {
	Name         string  `json:"location_name" binding:"required" validate:"required,min=2,max=200"`
	Category     string  `json:"location_type"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	MaxCapacity  int     `json:"max_capacity"`
	InitialCount int     `json:"initial_count"`
}

// UpdateDensityRequest carries a fresh crowd count for a location.
type UpdateDensityRequest struct {
	EstimatedCount *int `json:"estimated_count" binding:"required" validate:"required"`
}

// SimulateRequest triggers the synthetic detection pass over an area.
// Coordinates are checked by the handler, the radius by the nearby query.
type SimulateRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	RadiusKm  float64 `json:"radius"`
}

// NearbyAlert is a crowd alert annotated with distance from the user.
type NearbyAlert struct {
	ID                uuid.UUID    `json:"id"`
	Name              string       `json:"location_name"`
	Category          Category     `json:"location_type"`
	DensityLevel      DensityLevel `json:"current_density"`
	DensityPercentage float64      `json:"density_percentage"`
	EstimatedCount    int          `json:"estimated_count"`
	AlertMessage      string       `json:"alert_message"`
	DistanceKm        float64      `json:"distance_km"`
	Latitude          float64      `json:"latitude"`
	Longitude         float64      `json:"longitude"`
}

// UserLocationReport summarizes crowd alerts around a user position.
type UserLocationReport struct {
	UserLocation   Coordinates   `json:"user_location"`
	NearbyAlerts   []NearbyAlert `json:"nearby_alerts"`
	TotalAlerts    int           `json:"total_alerts"`
	CriticalAlerts int           `json:"critical_alerts"`
}

// Coordinates is a plain latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// SimulationUpdate describes one location touched by a simulation pass.
type SimulationUpdate struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"location_name"`
	OldLevel    DensityLevel `json:"old_density"`
	NewCount    int          `json:"new_count"`
	NewLevel    DensityLevel `json:"new_density"`
	AlertActive bool         `json:"alert_active"`
}

// SimulationSummary is the result of one synthetic detection pass.
type SimulationSummary struct {
	LocationsUpdated int                `json:"locations_updated"`
	NewAlerts        int                `json:"new_alerts"`
	Updates          []SimulationUpdate `json:"updates"`
}

// ListFilter narrows location listings.
type ListFilter struct {
	Category Category
	Level    DensityLevel
	Limit    int
	Offset   int
}
