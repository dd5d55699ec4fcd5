package emergency

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// AlertType classifies the kind of emergency being reported.
type AlertType string

const (
	TypeStampedeRisk     AlertType = "stampede_risk"
	TypeOvercrowding     AlertType = "overcrowding"
	TypeBlockedExit      AlertType = "blocked_exit"
	TypePanicSituation   AlertType = "panic_situation"
	TypeMedicalEmergency AlertType = "medical_emergency"
	TypeFireHazard       AlertType = "fire_hazard"
	TypeStructuralIssue  AlertType = "structural_issue"
)

// AlertTypes lists all valid emergency types.
func AlertTypes() []AlertType {
	return []AlertType{
		TypeStampedeRisk, TypeOvercrowding, TypeBlockedExit, TypePanicSituation,
		TypeMedicalEmergency, TypeFireHazard, TypeStructuralIssue,
	}
}

// ValidAlertType reports whether t is a known emergency type.
func ValidAlertType(t AlertType) bool {
	for _, known := range AlertTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Severity orders emergencies from low to critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists all severities in ascending order.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}

// ValidSeverity reports whether s is a known severity.
func ValidSeverity(s Severity) bool {
	for _, known := range Severities() {
		if s == known {
			return true
		}
	}
	return false
}

// Rank returns the sort weight of a severity, higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Response action types appended during automatic emergency response.
const (
	ActionPoliceNotified    = "police_notified"
	ActionMedicalDispatched = "medical_dispatched"
	ActionEvacuationStarted = "evacuation_started"
	ActionAreaCordoned      = "area_cordoned"
)

// Defaults and bounds for alert creation.
const (
	DefaultBroadcastRadiusM = 1000
	MinBroadcastRadiusM     = 100
	MaxBroadcastRadiusM     = 10000
	DefaultExpiry           = 2 * time.Hour

	// Reporter identities for machine-created and machine-verified alerts.
	ReporterAutoDetect  = "system_auto_detect"
	VerifiedBySystem    = "system"
	VerifiedByCommunity = "community_verified"
	RejectedByCommunity = "community_rejected"
	ResolvedBySystem    = "system"
)

// Confirmation is one user's vote on whether an alert is real.
type Confirmation struct {
	UserID    string    `json:"user_id"`
	Confirmed bool      `json:"confirmed"`
	Timestamp time.Time `json:"timestamp"`
}

// ResponseAction is one entry of the append-only response log.
type ResponseAction struct {
	ActionType string    `json:"action_type"`
	Timestamp  time.Time `json:"timestamp"`
	Details    string    `json:"details"`
}

// Alert is an emergency alert with its full lifecycle state.
type Alert struct {
	ID                uuid.UUID        `json:"id"`
	Type              AlertType        `json:"alert_type"`
	Severity          Severity         `json:"severity"`
	LocationName      string           `json:"location_name"`
	Latitude          float64          `json:"latitude"`
	Longitude         float64          `json:"longitude"`
	Description       string           `json:"description"`
	ReporterID        string           `json:"reporter_id"`
	Verified          bool             `json:"verified"`
	VerifiedBy        string           `json:"verified_by,omitempty"`
	BroadcastRadiusM  int              `json:"broadcast_radius"`
	Active            bool             `json:"active"`
	ResolvedAt        *time.Time       `json:"resolved_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	ExpiresAt         time.Time        `json:"expires_at"`
	NotificationsSent int              `json:"notifications_sent"`
	Confirmations     []Confirmation   `json:"user_confirmations,omitempty"`
	ResponseActions   []ResponseAction `json:"response_actions,omitempty"`
}

// IsValid reports whether the alert is active and not yet expired.
func (a *Alert) IsValid(now time.Time) bool {
	return a.Active && now.Before(a.ExpiresAt)
}

// Resolve terminates the alert.
func (a *Alert) Resolve(resolvedBy string, now time.Time) {
	a.Active = false
	a.ResolvedAt = &now
	a.VerifiedBy = resolvedBy
}

// AddConfirmation upserts a user's vote, replacing any earlier vote by
// the same user.
func (a *Alert) AddConfirmation(userID string, confirmed bool, now time.Time) {
	kept := a.Confirmations[:0]
	for _, c := range a.Confirmations {
		if c.UserID != userID {
			kept = append(kept, c)
		}
	}
	a.Confirmations = append(kept, Confirmation{
		UserID:    userID,
		Confirmed: confirmed,
		Timestamp: now,
	})
}

// ConfirmationRatio is the fraction of affirmative votes, 0 when empty.
func (a *Alert) ConfirmationRatio() float64 {
	if len(a.Confirmations) == 0 {
		return 0
	}
	confirmed := 0
	for _, c := range a.Confirmations {
		if c.Confirmed {
			confirmed++
		}
	}
	return float64(confirmed) / float64(len(a.Confirmations))
}

// NotificationMessage renders the per-type broadcast template.
func (a *Alert) NotificationMessage() string {
	switch a.Type {
	case TypeStampedeRisk:
		return fmt.Sprintf("🚨 STAMPEDE RISK at %s. Avoid this area immediately!", a.LocationName)
	case TypeOvercrowding:
		return fmt.Sprintf("⚠️ Severe overcrowding at %s. Consider alternative routes.", a.LocationName)
	case TypeBlockedExit:
		return fmt.Sprintf("🚪 Exit blocked at %s. Use alternative exits.", a.LocationName)
	case TypePanicSituation:
		return fmt.Sprintf("😰 Panic situation reported at %s. Stay calm and avoid area.", a.LocationName)
	case TypeMedicalEmergency:
		return fmt.Sprintf("🏥 Medical emergency at %s. Give way to emergency vehicles.", a.LocationName)
	case TypeFireHazard:
		return fmt.Sprintf("🔥 Fire hazard at %s. Evacuate immediately!", a.LocationName)
	case TypeStructuralIssue:
		return fmt.Sprintf("🏗️ Structural issue at %s. Area unsafe, avoid immediately.", a.LocationName)
	default:
		return fmt.Sprintf("⚠️ Emergency alert at %s: %s", a.LocationName, a.Description)
	}
}

// CreateAlertRequest is the payload for reporting an emergency.
type CreateAlertRequest struct {
	AlertType        string  `json:"alert_type" binding:"required"`
	Severity         string  `json:"severity"`
	LocationName     string  `json:"location_name" binding:"required"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Description      string  `json:"description" binding:"required"`
	ReporterID       string  `json:"reporter_id"`
	BroadcastRadiusM int     `json:"broadcast_radius"`

	// AutoVerify marks machine-created alerts as immediately verified.
	// Never bound from client JSON.
	AutoVerify bool `json:"-"`
}

// ConfirmRequest is one user's vote on an alert.
type ConfirmRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	Confirmed *bool  `json:"confirmed"`
}

// ConfirmResult summarizes the state after a confirmation vote.
type ConfirmResult struct {
	AlertID           uuid.UUID `json:"alert_id"`
	ConfirmationRatio float64   `json:"confirmation_ratio"`
	Verified          bool      `json:"verified"`
	Active            bool      `json:"active"`
}

// ResolveRequest names who resolved an alert.
type ResolveRequest struct {
	ResolvedBy string `json:"resolved_by"`
}

// NearbyAlert is the public view of an active alert near a position.
type NearbyAlert struct {
	ID                uuid.UUID `json:"id"`
	Type              AlertType `json:"type"`
	Severity          Severity  `json:"severity"`
	LocationName      string    `json:"location_name"`
	Latitude          float64   `json:"latitude"`
	Longitude         float64   `json:"longitude"`
	Description       string    `json:"description"`
	Verified          bool      `json:"verified"`
	CreatedAt         time.Time `json:"created_at"`
	ExpiresAt         time.Time `json:"expires_at"`
	ConfirmationRatio float64   `json:"confirmation_ratio"`
	NotificationsSent int       `json:"notifications_sent"`
}

// TypeStats aggregates alerts of one type.
type TypeStats struct {
	Type             AlertType `json:"alert_type"`
	Count            int       `json:"count"`
	ActiveCount      int       `json:"active_count"`
	AvgNotifications float64   `json:"avg_notifications"`
}

// Stats is the global emergency alert summary.
type Stats struct {
	TotalAlerts  int         `json:"total_alerts"`
	ActiveAlerts int         `json:"active_alerts"`
	ByType       []TypeStats `json:"by_type"`
	LastUpdated  time.Time   `json:"last_updated"`
}

// BroadcastResult reports the outcome of an alert broadcast.
type BroadcastResult struct {
	AlertID             uuid.UUID `json:"alert_id"`
	Message             string    `json:"message"`
	EstimatedRecipients int       `json:"estimated_recipients"`
	BroadcastRadiusM    int       `json:"broadcast_radius"`
}
