package emergency

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValid(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	alert := &Alert{Active: true, ExpiresAt: now.Add(time.Hour)}
	assert.True(t, alert.IsValid(now))

	alert.ExpiresAt = now.Add(-time.Minute)
	assert.False(t, alert.IsValid(now), "expired alerts are invalid")

	alert.ExpiresAt = now.Add(time.Hour)
	alert.Active = false
	assert.False(t, alert.IsValid(now), "inactive alerts are invalid")
}

func TestIsValid_ExactlyAtExpiry(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	// The expiry instant itself is already expired
	alert := &Alert{Active: true, ExpiresAt: now}
	assert.False(t, alert.IsValid(now))
	assert.True(t, alert.IsValid(now.Add(-time.Nanosecond)))
}

func TestResolve(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	alert := &Alert{Active: true, ExpiresAt: now.Add(time.Hour)}

	alert.Resolve("operator_7", now)

	assert.False(t, alert.Active)
	require.NotNil(t, alert.ResolvedAt)
	assert.Equal(t, now, *alert.ResolvedAt)
	assert.Equal(t, "operator_7", alert.VerifiedBy)
}

func TestAddConfirmation_ReplacesEarlierVote(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	alert := &Alert{ID: uuid.New()}

	alert.AddConfirmation("user_a", true, now)
	alert.AddConfirmation("user_b", false, now)
	alert.AddConfirmation("user_a", false, now.Add(time.Minute))

	require.Len(t, alert.Confirmations, 2)
	assert.Equal(t, 0.0, alert.ConfirmationRatio())

	// The replacement vote is the latest entry
	last := alert.Confirmations[len(alert.Confirmations)-1]
	assert.Equal(t, "user_a", last.UserID)
	assert.False(t, last.Confirmed)
}

func TestConfirmationRatio(t *testing.T) {
	alert := &Alert{}
	assert.Equal(t, 0.0, alert.ConfirmationRatio(), "no votes yields zero, not NaN")

	now := time.Now()
	alert.AddConfirmation("a", true, now)
	alert.AddConfirmation("b", true, now)
	alert.AddConfirmation("c", false, now)
	assert.InDelta(t, 2.0/3.0, alert.ConfirmationRatio(), 1e-9)
}

func TestNotificationMessage(t *testing.T) {
	tests := []struct {
		alertType AlertType
		fragment  string
	}{
		{TypeStampedeRisk, "STAMPEDE RISK at Chinnaswamy Stadium"},
		{TypeOvercrowding, "Severe overcrowding at Chinnaswamy Stadium"},
		{TypeBlockedExit, "Use alternative exits"},
		{TypePanicSituation, "Stay calm and avoid area"},
		{TypeMedicalEmergency, "Give way to emergency vehicles"},
		{TypeFireHazard, "Evacuate immediately"},
		{TypeStructuralIssue, "Area unsafe"},
	}

	for _, tt := range tests {
		alert := &Alert{Type: tt.alertType, LocationName: "Chinnaswamy Stadium"}
		assert.Contains(t, alert.NotificationMessage(), tt.fragment, string(tt.alertType))
	}

	fallback := &Alert{Type: AlertType("unknown"), LocationName: "Brigade Road", Description: "gas leak"}
	assert.Contains(t, fallback.NotificationMessage(), "Brigade Road: gas leak")
}

func TestSeverityRank(t *testing.T) {
	assert.Greater(t, SeverityCritical.Rank(), SeverityHigh.Rank())
	assert.Greater(t, SeverityHigh.Rank(), SeverityMedium.Rank())
	assert.Greater(t, SeverityMedium.Rank(), SeverityLow.Rank())
	assert.Equal(t, 0, Severity("unknown").Rank())
}

func TestValidAlertType(t *testing.T) {
	assert.True(t, ValidAlertType(TypeStampedeRisk))
	assert.True(t, ValidAlertType(TypeStructuralIssue))
	assert.False(t, ValidAlertType(AlertType("tsunami")))
}
