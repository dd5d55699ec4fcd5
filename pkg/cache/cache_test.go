package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRedisClient implements the operations needed by cache.Manager
type mockRedisClient struct {
	mu       sync.RWMutex
	data     map[string]string
	getError error
	setError error
}

func newMockRedisClient() *mockRedisClient {
	return &mockRedisClient{data: make(map[string]string)}
}

func (m *mockRedisClient) GetString(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getError != nil {
		return "", m.getError
	}
	value, ok := m.data[key]
	if !ok {
		return "", errors.New("redis: nil")
	}
	return value, nil
}

func (m *mockRedisClient) SetWithExpiration(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setError != nil {
		return m.setError
	}
	m.data[key] = value.(string)
	return nil
}

func (m *mockRedisClient) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

type payload struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

func TestSetAndGet(t *testing.T) {
	redis := newMockRedisClient()
	manager := NewManager(redis)
	ctx := context.Background()

	require.NoError(t, manager.Set(ctx, "route:abc", payload{Name: "direct", Score: 100}, time.Minute))

	var got payload
	require.NoError(t, manager.Get(ctx, "route:abc", &got))
	assert.Equal(t, "direct", got.Name)
	assert.Equal(t, 100, got.Score)
}

func TestGetMiss(t *testing.T) {
	manager := NewManager(newMockRedisClient())

	var got payload
	assert.Error(t, manager.Get(context.Background(), "missing", &got))
}

func TestDelete(t *testing.T) {
	redis := newMockRedisClient()
	manager := NewManager(redis)
	ctx := context.Background()

	require.NoError(t, manager.Set(ctx, "k", payload{}, time.Minute))
	require.NoError(t, manager.Delete(ctx, "k"))

	var got payload
	assert.Error(t, manager.Get(ctx, "k", &got))
}
