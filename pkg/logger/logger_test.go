package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationIDRoundTrip(t *testing.T) {
	ctx := ContextWithCorrelationID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", CorrelationIDFromContext(ctx))
}

func TestCorrelationIDMissing(t *testing.T) {
	assert.Equal(t, "", CorrelationIDFromContext(context.Background()))
	assert.Equal(t, "", CorrelationIDFromContext(nil))
}

func TestGetWithoutInit(t *testing.T) {
	log = nil
	assert.NotNil(t, Get())
}

func TestInit(t *testing.T) {
	assert.NoError(t, Init("development"))
	assert.NoError(t, Init("production"))
}
