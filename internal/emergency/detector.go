package emergency

import (
	"context"
	"fmt"

	"github.com/suraksha/crowd-safety/internal/crowd"
	"github.com/suraksha/crowd-safety/pkg/common"
	"github.com/suraksha/crowd-safety/pkg/eventbus"
	"github.com/suraksha/crowd-safety/pkg/logger"
	"go.uber.org/zap"
)

const (
	// Coordinate window for deduplicating auto-detected alerts, roughly
	// a hundred meters.
	detectDedupeDelta = 0.001
	// Minimum density percentage before a stampede risk alert is raised.
	detectMinPercentage = 95
	// Auto-detected alerts warn a wider area than user reports.
	detectBroadcastRadiusM = 2000
)

// Detect scans critically crowded locations and raises stampede risk
// alerts for those without an existing active alert nearby. Detected
// alerts are created pre-verified.
func (s *Service) Detect(ctx context.Context) ([]*Alert, error) {
	if s.crowds == nil {
		return nil, nil
	}

	locations, err := s.crowds.ActiveAlerts(ctx)
	if err != nil {
		return nil, common.NewInternalError("failed to load crowd alerts", err)
	}

	var created []*Alert
	now := s.now()
	for _, location := range locations {
		if location.DensityLevel != crowd.DensityCritical || !location.AlertActive {
			continue
		}
		if location.DensityPercentage <= detectMinPercentage {
			continue
		}

		existing, err := s.repo.FindActiveByTypeNear(ctx, TypeStampedeRisk,
			location.Latitude, location.Longitude, detectDedupeDelta, now)
		if err != nil {
			return created, common.NewInternalError("failed to check for existing alerts", err)
		}
		if len(existing) > 0 {
			continue
		}

		alert, err := s.Create(ctx, &CreateAlertRequest{
			AlertType:    string(TypeStampedeRisk),
			Severity:     string(SeverityCritical),
			LocationName: location.Name,
			Latitude:     location.Latitude,
			Longitude:    location.Longitude,
			Description: fmt.Sprintf("Critical overcrowding detected: %.1f%% capacity (%d people)",
				location.DensityPercentage, location.EstimatedCount),
			ReporterID:       ReporterAutoDetect,
			BroadcastRadiusM: detectBroadcastRadiusM,
			AutoVerify:       true,
		})
		if err != nil {
			return created, err
		}

		created = append(created, alert)
		alertsAutoDetected.Inc()
		s.publishAlertEvent(ctx, eventbus.SubjectEmergencyAutoDetected, alert)

		logger.WithContext(ctx).Warn("stampede risk auto-detected",
			zap.String("alert_id", alert.ID.String()),
			zap.String("location", location.Name),
			zap.Float64("density_percentage", location.DensityPercentage),
		)
	}

	return created, nil
}
