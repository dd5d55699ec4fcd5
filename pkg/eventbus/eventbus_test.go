package eventbus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent_Success(t *testing.T) {
	data := map[string]string{"location_id": "abc"}

	event, err := NewEvent(SubjectCrowdReported, "crowd-service", data)
	require.NoError(t, err)
	require.NotNil(t, event)

	assert.Equal(t, SubjectCrowdReported, event.Type)
	assert.Equal(t, "crowd-service", event.Source)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, time.UTC, event.Timestamp.Location())

	_, err = uuid.Parse(event.ID)
	assert.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(event.Data, &decoded))
	assert.Equal(t, "abc", decoded["location_id"])
}

func TestNewEvent_NilData(t *testing.T) {
	event, err := NewEvent("test.event", "test-source", nil)
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage("null"), event.Data)
}

func TestNewEvent_UnmarshalableData(t *testing.T) {
	event, err := NewEvent("test", "src", make(chan int))
	assert.Error(t, err)
	assert.Nil(t, event)
}

func TestNewEvent_UniqueIDs(t *testing.T) {
	ids := make(map[string]bool)
	for i := 0; i < 100; i++ {
		event, err := NewEvent("test", "src", nil)
		require.NoError(t, err)
		assert.False(t, ids[event.ID], "duplicate event ID generated")
		ids[event.ID] = true
	}
}

func TestEvent_JSONRoundTrip(t *testing.T) {
	original, err := NewEvent(SubjectEmergencyCreated, "emergency-service", EmergencyAlertData{
		AlertID:  uuid.New(),
		Type:     "stampede_risk",
		Severity: "critical",
		Status:   "active",
	})
	require.NoError(t, err)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var restored Event
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, original.ID, restored.ID)
	assert.Equal(t, original.Type, restored.Type)
	assert.Equal(t, original.Source, restored.Source)
	assert.JSONEq(t, string(original.Data), string(restored.Data))
}

func TestSubjectConstants(t *testing.T) {
	tests := []struct {
		name     string
		subject  string
		expected string
	}{
		{"CrowdReported", SubjectCrowdReported, "crowd.reported"},
		{"CrowdAlertRaised", SubjectCrowdAlertRaised, "crowd.alert.raised"},
		{"CrowdAlertCleared", SubjectCrowdAlertCleared, "crowd.alert.cleared"},
		{"EmergencyCreated", SubjectEmergencyCreated, "emergency.alert.created"},
		{"EmergencyVerified", SubjectEmergencyVerified, "emergency.alert.verified"},
		{"EmergencyResolved", SubjectEmergencyResolved, "emergency.alert.resolved"},
		{"EmergencyAutoDetected", SubjectEmergencyAutoDetected, "emergency.alert.autodetected"},
		{"EmergencyBroadcast", SubjectEmergencyBroadcast, "emergency.alert.broadcast"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.subject)
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "nats://127.0.0.1:4222", cfg.URL)
	assert.Equal(t, "crowd-safety", cfg.Name)
	assert.Equal(t, "CROWDSAFETY", cfg.StreamName)
}

func TestHandlerFunc_Invocation(t *testing.T) {
	var called bool
	var receivedEvent *Event

	handler := HandlerFunc(func(ctx context.Context, event *Event) error {
		called = true
		receivedEvent = event
		return nil
	})

	event, _ := NewEvent("test.event", "test", map[string]string{"key": "value"})
	err := handler(context.Background(), event)

	assert.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, event.ID, receivedEvent.ID)
}

func TestBus_Connected_NilConn(t *testing.T) {
	bus := &Bus{}
	assert.False(t, bus.Connected())
}

func TestBus_Close_NoSubs(t *testing.T) {
	bus := &Bus{}
	// Should not panic
	bus.Close()
}
