package emergency

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/suraksha/crowd-safety/pkg/common"
	"github.com/suraksha/crowd-safety/pkg/eventbus"
	"github.com/suraksha/crowd-safety/pkg/logger"
	"github.com/suraksha/crowd-safety/pkg/validation"
	"go.uber.org/zap"
)

const (
	defaultNearbyRadiusKm = 5

	// Community verification thresholds.
	verifyRatio   = 0.7
	verifyMinVote = 3
	rejectRatio   = 0.3
	rejectMinVote = 5

	// Share of the nearby crowd assumed reachable by a broadcast.
	broadcastReachFactor = 0.3
	// Assumed population density when no crowd data covers the radius,
	// people per square kilometer times the reach share.
	fallbackDensityPerKm2 = 1000
	fallbackReachFactor   = 0.2
)

// Service implements the emergency alert lifecycle
type Service struct {
	repo     RepositoryInterface
	crowds   CrowdSource
	bus      *eventbus.Bus
	notifier Notifier
	now      func() time.Time
}

// NewService creates a new emergency service. The event bus and notifier
// may be nil, in which case broadcasts are only recorded.
func NewService(repo RepositoryInterface, crowds CrowdSource, bus *eventbus.Bus, notifier Notifier) *Service {
	return &Service{
		repo:     repo,
		crowds:   crowds,
		bus:      bus,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create reports a new emergency alert, broadcasts it to the surrounding
// area and, for critical alerts, triggers the automatic response chain.
func (s *Service) Create(ctx context.Context, req *CreateAlertRequest) (*Alert, error) {
	alertType := AlertType(req.AlertType)
	if !ValidAlertType(alertType) {
		return nil, common.NewValidationError(common.CodeInvalidEnum,
			fmt.Sprintf("unknown alert type: %s", req.AlertType))
	}

	severity := Severity(req.Severity)
	if severity == "" {
		severity = SeverityMedium
	}
	if !ValidSeverity(severity) {
		return nil, common.NewValidationError(common.CodeInvalidEnum,
			fmt.Sprintf("unknown severity: %s", req.Severity))
	}

	if err := validation.ValidateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, common.NewValidationError(common.CodeInvalidCoordinates, err.Error())
	}
	if req.LocationName == "" {
		return nil, common.NewValidationError(common.CodeMissingField, "location_name is required")
	}
	if req.Description == "" {
		return nil, common.NewValidationError(common.CodeMissingField, "description is required")
	}

	radius := req.BroadcastRadiusM
	if radius == 0 {
		radius = DefaultBroadcastRadiusM
	}
	if radius < MinBroadcastRadiusM || radius > MaxBroadcastRadiusM {
		return nil, common.NewValidationError(common.CodeInvalidCount,
			fmt.Sprintf("broadcast_radius must be between %d and %d meters", MinBroadcastRadiusM, MaxBroadcastRadiusM))
	}

	reporter := req.ReporterID
	if reporter == "" {
		reporter = "anonymous"
	}

	now := s.now()
	alert := &Alert{
		ID:               uuid.New(),
		Type:             alertType,
		Severity:         severity,
		LocationName:     req.LocationName,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Description:      req.Description,
		ReporterID:       reporter,
		BroadcastRadiusM: radius,
		Active:           true,
		CreatedAt:        now,
		ExpiresAt:        now.Add(DefaultExpiry),
	}
	if req.AutoVerify {
		alert.Verified = true
		alert.VerifiedBy = VerifiedBySystem
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		return nil, common.NewInternalError("failed to create alert", err)
	}

	alertsCreated.WithLabelValues(string(alert.Type), string(alert.Severity)).Inc()
	logger.WithContext(ctx).Info("emergency alert created",
		zap.String("alert_id", alert.ID.String()),
		zap.String("alert_type", string(alert.Type)),
		zap.String("severity", string(alert.Severity)),
		zap.String("location", alert.LocationName),
	)
	s.publishAlertEvent(ctx, eventbus.SubjectEmergencyCreated, alert)

	s.broadcast(ctx, alert)
	if alert.Severity == SeverityCritical {
		s.triggerResponse(ctx, alert)
	}
	return alert, nil
}

// broadcast estimates the reachable crowd inside the alert radius,
// records it on the alert and hands the message to the gateway.
func (s *Service) broadcast(ctx context.Context, alert *Alert) {
	radiusKm := float64(alert.BroadcastRadiusM) / 1000

	estimated := -1
	if s.crowds != nil {
		nearby, err := s.crowds.FindNearby(ctx, alert.Latitude, alert.Longitude, radiusKm)
		if err != nil {
			logger.WithContext(ctx).Warn("crowd lookup for broadcast failed",
				zap.String("alert_id", alert.ID.String()),
				zap.Error(err),
			)
		} else if len(nearby) > 0 {
			total := 0
			for _, location := range nearby {
				total += location.EstimatedCount
			}
			estimated = int(math.Floor(broadcastReachFactor * float64(total)))
		}
	}
	if estimated < 0 {
		// No crowd data for the area, assume a uniform urban density
		estimated = int(math.Floor(math.Pi * radiusKm * radiusKm * fallbackDensityPerKm2 * fallbackReachFactor))
	}

	alert.NotificationsSent = estimated
	if err := s.repo.Update(ctx, alert); err != nil {
		logger.WithContext(ctx).Warn("failed to record broadcast reach",
			zap.String("alert_id", alert.ID.String()),
			zap.Error(err),
		)
	}
	broadcastReach.Observe(float64(estimated))

	result := &BroadcastResult{
		AlertID:             alert.ID,
		Message:             alert.NotificationMessage(),
		EstimatedRecipients: estimated,
		BroadcastRadiusM:    alert.BroadcastRadiusM,
	}

	if s.bus != nil {
		event, err := eventbus.NewEvent(eventbus.SubjectEmergencyBroadcast, "emergency-service",
			eventbus.BroadcastRequestedData{
				AlertID:         alert.ID,
				Severity:        string(alert.Severity),
				RadiusKm:        radiusKm,
				EstimatedPeople: estimated,
				Message:         result.Message,
				RequestedAt:     s.now(),
			})
		if err == nil {
			if err := s.bus.Publish(ctx, eventbus.SubjectEmergencyBroadcast, event); err != nil {
				logger.Warn("failed to publish broadcast event", zap.Error(err))
			}
		}
	}
	if s.notifier != nil {
		// Gateway failures never fail alert creation
		_ = s.notifier.Send(ctx, result)
	}

	logger.WithContext(ctx).Info("emergency broadcast issued",
		zap.String("alert_id", alert.ID.String()),
		zap.Int("estimated_recipients", estimated),
		zap.Int("radius_m", alert.BroadcastRadiusM),
	)
}

// triggerResponse appends the automatic response actions taken for
// critical alerts.
func (s *Service) triggerResponse(ctx context.Context, alert *Alert) {
	now := s.now()
	alert.ResponseActions = append(alert.ResponseActions, ResponseAction{
		ActionType: ActionPoliceNotified,
		Timestamp:  now,
		Details:    "Automatic notification sent to local police control room",
	})

	switch alert.Type {
	case TypeMedicalEmergency:
		alert.ResponseActions = append(alert.ResponseActions, ResponseAction{
			ActionType: ActionMedicalDispatched,
			Timestamp:  now,
			Details:    "Ambulance dispatch requested",
		})
	case TypeFireHazard:
		alert.ResponseActions = append(alert.ResponseActions, ResponseAction{
			ActionType: ActionEvacuationStarted,
			Timestamp:  now,
			Details:    "Fire department notified, evacuation procedures initiated",
		})
	}

	if err := s.repo.Update(ctx, alert); err != nil {
		logger.WithContext(ctx).Warn("failed to record response actions",
			zap.String("alert_id", alert.ID.String()),
			zap.Error(err),
		)
		return
	}

	logger.WithContext(ctx).Info("automatic emergency response triggered",
		zap.String("alert_id", alert.ID.String()),
		zap.Int("actions", len(alert.ResponseActions)),
	)
}

// Confirm records one user's vote on an alert and applies the community
// verification rules: enough affirmative votes verify the alert, a clear
// majority of denials resolves it as rejected.
func (s *Service) Confirm(ctx context.Context, alertID uuid.UUID, userID string, confirmed bool) (*ConfirmResult, error) {
	if userID == "" {
		return nil, common.NewValidationError(common.CodeMissingField, "user_id is required")
	}

	alert, err := s.repo.GetByID(ctx, alertID)
	if err != nil {
		return nil, common.NewInternalError("failed to load alert", err)
	}
	if alert == nil {
		return nil, common.NewNotFoundError("alert not found")
	}

	// Expired or resolved alerts are gone for voting purposes
	now := s.now()
	if !alert.IsValid(now) {
		return nil, common.NewNotFoundErrorWithCode(common.CodeAlertExpired, "alert is no longer active")
	}

	alert.AddConfirmation(userID, confirmed, now)
	ratio := alert.ConfirmationRatio()
	votes := len(alert.Confirmations)

	if !alert.Verified && ratio >= verifyRatio && votes >= verifyMinVote {
		alert.Verified = true
		alert.VerifiedBy = VerifiedByCommunity
		s.publishAlertEvent(ctx, eventbus.SubjectEmergencyVerified, alert)
		logger.WithContext(ctx).Info("alert verified by community",
			zap.String("alert_id", alert.ID.String()),
			zap.Float64("ratio", ratio),
		)
	}
	if ratio <= rejectRatio && votes >= rejectMinVote {
		alert.Resolve(RejectedByCommunity, now)
		alertsResolved.WithLabelValues(RejectedByCommunity).Inc()
		s.publishAlertEvent(ctx, eventbus.SubjectEmergencyResolved, alert)
		logger.WithContext(ctx).Info("alert rejected by community",
			zap.String("alert_id", alert.ID.String()),
			zap.Float64("ratio", ratio),
		)
	}

	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, common.NewInternalError("failed to save confirmation", err)
	}

	return &ConfirmResult{
		AlertID:           alert.ID,
		ConfirmationRatio: ratio,
		Verified:          alert.Verified,
		Active:            alert.Active,
	}, nil
}

// Resolve terminates an alert on behalf of resolvedBy
func (s *Service) Resolve(ctx context.Context, alertID uuid.UUID, resolvedBy string) (*Alert, error) {
	alert, err := s.repo.GetByID(ctx, alertID)
	if err != nil {
		return nil, common.NewInternalError("failed to load alert", err)
	}
	if alert == nil {
		return nil, common.NewNotFoundError("alert not found")
	}

	if resolvedBy == "" {
		resolvedBy = ResolvedBySystem
	}
	alert.Resolve(resolvedBy, s.now())

	if err := s.repo.Update(ctx, alert); err != nil {
		return nil, common.NewInternalError("failed to resolve alert", err)
	}

	alertsResolved.WithLabelValues(resolvedBy).Inc()
	logger.WithContext(ctx).Info("emergency alert resolved",
		zap.String("alert_id", alert.ID.String()),
		zap.String("resolved_by", resolvedBy),
	)
	s.publishAlertEvent(ctx, eventbus.SubjectEmergencyResolved, alert)
	return alert, nil
}

// FindNearby returns active unexpired alerts around a position, most
// severe and newest first.
func (s *Service) FindNearby(ctx context.Context, latitude, longitude, radiusKm float64) ([]NearbyAlert, error) {
	if err := validation.ValidateCoordinates(latitude, longitude); err != nil {
		return nil, common.NewValidationError(common.CodeInvalidCoordinates, err.Error())
	}
	if radiusKm <= 0 {
		radiusKm = defaultNearbyRadiusKm
	}
	if err := validation.ValidateRadius(radiusKm); err != nil {
		return nil, common.NewValidationError(common.CodeInvalidCount, err.Error())
	}

	alerts, err := s.repo.FindNearbyActive(ctx, latitude, longitude, radiusKm, s.now())
	if err != nil {
		return nil, common.NewInternalError("failed to query nearby alerts", err)
	}

	views := make([]NearbyAlert, 0, len(alerts))
	for _, alert := range alerts {
		views = append(views, NearbyAlert{
			ID:                alert.ID,
			Type:              alert.Type,
			Severity:          alert.Severity,
			LocationName:      alert.LocationName,
			Latitude:          alert.Latitude,
			Longitude:         alert.Longitude,
			Description:       alert.Description,
			Verified:          alert.Verified,
			CreatedAt:         alert.CreatedAt,
			ExpiresAt:         alert.ExpiresAt,
			ConfirmationRatio: alert.ConfirmationRatio(),
			NotificationsSent: alert.NotificationsSent,
		})
	}
	return views, nil
}

// CleanupExpired deactivates alerts past their expiry
func (s *Service) CleanupExpired(ctx context.Context) (int64, error) {
	cleaned, err := s.repo.CleanupExpired(ctx, s.now())
	if err != nil {
		return 0, common.NewInternalError("failed to clean up expired alerts", err)
	}
	if cleaned > 0 {
		alertsExpired.Add(float64(cleaned))
		logger.WithContext(ctx).Info("expired alerts deactivated", zap.Int64("count", cleaned))
	}
	return cleaned, nil
}

// Stats returns the per-type alert aggregation
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, common.NewInternalError("failed to aggregate alert stats", err)
	}
	return stats, nil
}

func (s *Service) publishAlertEvent(ctx context.Context, subject string, alert *Alert) {
	if s.bus == nil {
		return
	}

	status := "active"
	if !alert.Active {
		status = "resolved"
	}
	event, err := eventbus.NewEvent(subject, "emergency-service", eventbus.EmergencyAlertData{
		AlertID:    alert.ID,
		Type:       string(alert.Type),
		Severity:   string(alert.Severity),
		Status:     status,
		Latitude:   alert.Latitude,
		Longitude:  alert.Longitude,
		Address:    alert.LocationName,
		Title:      alert.NotificationMessage(),
		ReportedBy: alert.ReporterID,
		VerifiedBy: alert.VerifiedBy,
		OccurredAt: alert.CreatedAt,
	})
	if err != nil {
		logger.Warn("failed to build emergency event", zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.Warn("failed to publish emergency event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
