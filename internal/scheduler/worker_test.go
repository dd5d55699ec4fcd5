package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/suraksha/crowd-safety/internal/crowd"
	"github.com/suraksha/crowd-safety/internal/emergency"
	"github.com/suraksha/crowd-safety/pkg/config"
)

type stubCrowdService struct {
	crowd.ServiceInterface
	calls int
	err   error
}

func (s *stubCrowdService) Simulate(ctx context.Context, latitude, longitude, radiusKm float64) (*crowd.SimulationSummary, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &crowd.SimulationSummary{LocationsUpdated: 2}, nil
}

type stubEmergencyService struct {
	emergency.ServiceInterface
	detectCalls  int
	cleanupCalls int
	detectErr    error
}

func (s *stubEmergencyService) Detect(ctx context.Context) ([]*emergency.Alert, error) {
	s.detectCalls++
	return nil, s.detectErr
}

func (s *stubEmergencyService) CleanupExpired(ctx context.Context) (int64, error) {
	s.cleanupCalls++
	return 1, nil
}

func newTestWorker(crowds *stubCrowdService, emergencies *stubEmergencyService) *Worker {
	return NewWorker(crowds, emergencies, config.SchedulerConfig{
		SimulateIntervalMin: 5,
		DetectIntervalMin:   2,
		SimulateLatitude:    12.9716,
		SimulateLongitude:   77.5946,
		SimulateRadiusKm:    10,
	})
}

func TestRunSimulation_SwallowsErrors(t *testing.T) {
	crowds := &stubCrowdService{err: errors.New("db down")}
	worker := newTestWorker(crowds, &stubEmergencyService{})

	worker.runSimulation(context.Background())
	assert.Equal(t, 1, crowds.calls)
}

func TestRunDetection_CleansUpEvenWhenDetectionFails(t *testing.T) {
	emergencies := &stubEmergencyService{detectErr: errors.New("db down")}
	worker := newTestWorker(&stubCrowdService{}, emergencies)

	worker.runDetection(context.Background())
	assert.Equal(t, 1, emergencies.detectCalls)
	assert.Equal(t, 1, emergencies.cleanupCalls)
}

func TestStop_IsIdempotent(t *testing.T) {
	worker := newTestWorker(&stubCrowdService{}, &stubEmergencyService{})
	worker.Start()
	worker.Stop()
	worker.Stop()
}
