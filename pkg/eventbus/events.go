package eventbus

import (
	"time"

	"github.com/google/uuid"
)

// CrowdReportedData is emitted whenever a crowd density report lands,
// regardless of whether it crossed an alert threshold.
type CrowdReportedData struct {
	LocationID   uuid.UUID `json:"location_id"`
	LocationName string    `json:"location_name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	CrowdCount   int       `json:"crowd_count"`
	Percentage   float64   `json:"percentage"`
	DensityLevel string    `json:"density_level"`
	ReportedAt   time.Time `json:"reported_at"`
}

// CrowdAlertData is emitted when a location enters or leaves the
// alert-active state (high or critical density).
type CrowdAlertData struct {
	LocationID   uuid.UUID `json:"location_id"`
	LocationName string    `json:"location_name"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	DensityLevel string    `json:"density_level"`
	Percentage   float64   `json:"percentage"`
	ChangedAt    time.Time `json:"changed_at"`
}

// EmergencyAlertData is emitted on emergency alert lifecycle transitions:
// created, verified, resolved and auto-detected.
type EmergencyAlertData struct {
	AlertID    uuid.UUID `json:"alert_id"`
	Type       string    `json:"type"`
	Severity   string    `json:"severity"`
	Status     string    `json:"status"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Address    string    `json:"address"`
	Title      string    `json:"title"`
	ReportedBy string    `json:"reported_by"`
	VerifiedBy string    `json:"verified_by,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BroadcastRequestedData is emitted when an alert broadcast is issued,
// carrying the estimated audience for downstream notifiers.
type BroadcastRequestedData struct {
	AlertID         uuid.UUID `json:"alert_id"`
	Severity        string    `json:"severity"`
	RadiusKm        float64   `json:"radius_km"`
	EstimatedPeople int       `json:"estimated_people"`
	Message         string    `json:"message"`
	RequestedAt     time.Time `json:"requested_at"`
}
