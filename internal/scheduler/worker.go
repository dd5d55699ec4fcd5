package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/suraksha/crowd-safety/internal/crowd"
	"github.com/suraksha/crowd-safety/internal/emergency"
	"github.com/suraksha/crowd-safety/pkg/config"
	"github.com/suraksha/crowd-safety/pkg/logger"
	"go.uber.org/zap"
)

// Worker runs the periodic crowd simulation and the detection plus
// expiry cleanup loops. Task failures are logged and swallowed so a bad
// pass never stops the loops.
type Worker struct {
	crowds      crowd.ServiceInterface
	emergencies emergency.ServiceInterface
	cfg         config.SchedulerConfig

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWorker creates a new background worker
func NewWorker(crowds crowd.ServiceInterface, emergencies emergency.ServiceInterface, cfg config.SchedulerConfig) *Worker {
	return &Worker{
		crowds:      crowds,
		emergencies: emergencies,
		cfg:         cfg,
		stop:        make(chan struct{}),
	}
}

// Start launches both loops
func (w *Worker) Start() {
	simulateEvery := time.Duration(w.cfg.SimulateIntervalMin) * time.Minute
	detectEvery := time.Duration(w.cfg.DetectIntervalMin) * time.Minute
	if simulateEvery <= 0 {
		simulateEvery = 5 * time.Minute
	}
	if detectEvery <= 0 {
		detectEvery = 2 * time.Minute
	}

	w.wg.Add(2)
	go w.loop("crowd simulation", simulateEvery, w.runSimulation)
	go w.loop("emergency detection", detectEvery, w.runDetection)

	logger.Info("scheduler started",
		zap.Duration("simulate_interval", simulateEvery),
		zap.Duration("detect_interval", detectEvery),
	)
}

// Stop terminates both loops and waits for in-flight passes
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
	w.wg.Wait()
	logger.Info("scheduler stopped")
}

func (w *Worker) loop(name string, interval time.Duration, task func(ctx context.Context)) {
	defer w.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			logger.Debug("stopping scheduler loop", zap.String("task", name))
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			task(ctx)
			cancel()
		}
	}
}

func (w *Worker) runSimulation(ctx context.Context) {
	summary, err := w.crowds.Simulate(ctx,
		w.cfg.SimulateLatitude, w.cfg.SimulateLongitude, w.cfg.SimulateRadiusKm)
	if err != nil {
		logger.Warn("scheduled crowd simulation failed", zap.Error(err))
		return
	}
	logger.Debug("scheduled crowd simulation completed",
		zap.Int("locations_updated", summary.LocationsUpdated),
		zap.Int("new_alerts", summary.NewAlerts),
	)
}

func (w *Worker) runDetection(ctx context.Context) {
	if created, err := w.emergencies.Detect(ctx); err != nil {
		logger.Warn("scheduled emergency detection failed", zap.Error(err))
	} else if len(created) > 0 {
		logger.Info("scheduled detection raised alerts", zap.Int("count", len(created)))
	}

	if cleaned, err := w.emergencies.CleanupExpired(ctx); err != nil {
		logger.Warn("scheduled expiry cleanup failed", zap.Error(err))
	} else if cleaned > 0 {
		logger.Debug("scheduled expiry cleanup completed", zap.Int64("cleaned", cleaned))
	}
}
