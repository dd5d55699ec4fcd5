package crowd

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/suraksha/crowd-safety/pkg/common"
	"github.com/suraksha/crowd-safety/pkg/eventbus"
	"github.com/suraksha/crowd-safety/pkg/geo"
	"github.com/suraksha/crowd-safety/pkg/logger"
	"github.com/suraksha/crowd-safety/pkg/validation"
	"go.uber.org/zap"
)

const (
	defaultMaxCapacity    = 1000
	defaultNearbyRadiusKm = 5
	defaultSimulateRadius = 1
)

// Service implements crowd density tracking
type Service struct {
	repo   RepositoryInterface
	bus    *eventbus.Bus
	now    func() time.Time
	jitter func() float64
}

// NewService creates a new crowd service. The event bus may be nil, in
// which case alert transitions are only logged.
func NewService(repo RepositoryInterface, bus *eventbus.Bus) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		now:    func() time.Time { return time.Now().UTC() },
		jitter: defaultJitter,
	}
}

// Register adds a new monitored location and applies its initial count
func (s *Service) Register(ctx context.Context, req *RegisterLocationRequest) (*Location, error) {
	if err := validation.ValidateStruct(req); err != nil {
		return nil, common.NewValidationError(common.CodeMissingField, err.Error())
	}
	if err := validation.ValidateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, common.NewValidationError(common.CodeInvalidCoordinates, err.Error())
	}

	category := Category(req.Category)
	if category == "" {
		category = CategoryOther
	}
	if !ValidCategory(category) {
		return nil, common.NewValidationError(common.CodeInvalidEnum,
			fmt.Sprintf("unknown location type: %s", req.Category))
	}

	capacity := req.MaxCapacity
	if capacity == 0 {
		capacity = defaultMaxCapacity
	}
	if capacity < 1 {
		return nil, common.NewValidationError(common.CodeInvalidCount, "max_capacity must be at least 1")
	}
	if req.InitialCount < 0 {
		return nil, common.NewValidationError(common.CodeInvalidCount, "initial_count cannot be negative")
	}

	now := s.now()
	location := &Location{
		ID:          uuid.New(),
		Name:        req.Name,
		Category:    category,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		MaxCapacity: capacity,
		CreatedAt:   now,
	}
	location.UpdateDensity(req.InitialCount, now)

	if err := s.repo.Create(ctx, location); err != nil {
		return nil, common.NewInternalError("failed to register location", err)
	}

	logger.WithContext(ctx).Info("crowd location registered",
		zap.String("location_id", location.ID.String()),
		zap.String("name", location.Name),
		zap.String("density_level", string(location.DensityLevel)),
	)

	if location.AlertActive {
		s.publishAlertTransition(ctx, location, eventbus.SubjectCrowdAlertRaised)
	}
	return location, nil
}

// UpdateDensity applies a fresh crowd count to a location
func (s *Service) UpdateDensity(ctx context.Context, id uuid.UUID, newCount int) (*Location, error) {
	if newCount < 0 {
		return nil, common.NewValidationError(common.CodeInvalidCount, "estimated_count cannot be negative")
	}

	location, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, common.NewInternalError("failed to load location", err)
	}
	if location == nil {
		return nil, common.NewNotFoundError("location not found")
	}

	wasActive := location.AlertActive
	location.UpdateDensity(newCount, s.now())

	if err := s.repo.Update(ctx, location); err != nil {
		return nil, common.NewInternalError("failed to update location", err)
	}

	densityUpdates.WithLabelValues(string(location.DensityLevel)).Inc()
	s.publishReport(ctx, location, newCount)
	logger.WithContext(ctx).Info("crowd density updated",
		zap.String("location_id", location.ID.String()),
		zap.Int("count", newCount),
		zap.Float64("percentage", location.DensityPercentage),
		zap.String("density_level", string(location.DensityLevel)),
	)

	switch {
	case !wasActive && location.AlertActive:
		alertsRaised.Inc()
		s.publishAlertTransition(ctx, location, eventbus.SubjectCrowdAlertRaised)
	case wasActive && !location.AlertActive:
		s.publishAlertTransition(ctx, location, eventbus.SubjectCrowdAlertCleared)
	}
	return location, nil
}

// Get returns a single location with its recent history
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Location, error) {
	location, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, common.NewInternalError("failed to load location", err)
	}
	if location == nil {
		return nil, common.NewNotFoundError("location not found")
	}

	// Detail views show the most recent dozen samples
	const detailHistory = 12
	if len(location.History) > detailHistory {
		location.History = location.History[len(location.History)-detailHistory:]
	}
	return location, nil
}

// List returns locations matching the filter
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Location, error) {
	if filter.Category != "" && !ValidCategory(filter.Category) {
		return nil, common.NewValidationError(common.CodeInvalidEnum,
			fmt.Sprintf("unknown location type: %s", filter.Category))
	}
	if filter.Level != "" && !validLevel(filter.Level) {
		return nil, common.NewValidationError(common.CodeInvalidEnum,
			fmt.Sprintf("unknown density level: %s", filter.Level))
	}

	locations, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, common.NewInternalError("failed to list locations", err)
	}
	return locations, nil
}

// FindNearby returns locations within radiusKm, densest first
func (s *Service) FindNearby(ctx context.Context, latitude, longitude, radiusKm float64) ([]*Location, error) {
	if err := validation.ValidateCoordinates(latitude, longitude); err != nil {
		return nil, common.NewValidationError(common.CodeInvalidCoordinates, err.Error())
	}
	if radiusKm <= 0 {
		radiusKm = defaultNearbyRadiusKm
	}
	if err := validation.ValidateRadius(radiusKm); err != nil {
		return nil, common.NewValidationError(common.CodeInvalidCount, err.Error())
	}

	locations, err := s.repo.FindNearby(ctx, latitude, longitude, radiusKm)
	if err != nil {
		return nil, common.NewInternalError("failed to query nearby locations", err)
	}
	return locations, nil
}

// ActiveAlerts returns all locations with active crowd alerts
func (s *Service) ActiveAlerts(ctx context.Context) ([]*Location, error) {
	locations, err := s.repo.FindActiveAlerts(ctx)
	if err != nil {
		return nil, common.NewInternalError("failed to query active alerts", err)
	}
	return locations, nil
}

// CheckUserLocation reports crowd alerts around a user position with
// haversine distances, nearest first.
func (s *Service) CheckUserLocation(ctx context.Context, latitude, longitude, radiusKm float64) (*UserLocationReport, error) {
	nearby, err := s.FindNearby(ctx, latitude, longitude, radiusKm)
	if err != nil {
		return nil, err
	}

	alerts := make([]NearbyAlert, 0)
	critical := 0
	for _, location := range nearby {
		if !location.AlertActive &&
			location.DensityLevel != DensityHigh && location.DensityLevel != DensityCritical {
			continue
		}

		distance := geo.Haversine(latitude, longitude, location.Latitude, location.Longitude)
		alerts = append(alerts, NearbyAlert{
			ID:                location.ID,
			Name:              location.Name,
			Category:          location.Category,
			DensityLevel:      location.DensityLevel,
			DensityPercentage: location.DensityPercentage,
			EstimatedCount:    location.EstimatedCount,
			AlertMessage:      location.AlertMessage,
			DistanceKm:        geo.RoundKm(distance),
			Latitude:          location.Latitude,
			Longitude:         location.Longitude,
		})
		if location.DensityLevel == DensityCritical {
			critical++
		}
	}

	// Nearest alerts first
	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].DistanceKm < alerts[j].DistanceKm
	})

	return &UserLocationReport{
		UserLocation:   Coordinates{Latitude: latitude, Longitude: longitude},
		NearbyAlerts:   alerts,
		TotalAlerts:    len(alerts),
		CriticalAlerts: critical,
	}, nil
}

// Simulate runs one synthetic detection pass over the area, standing in
// for a live crowd-sensing feed.
func (s *Service) Simulate(ctx context.Context, latitude, longitude, radiusKm float64) (*SimulationSummary, error) {
	if radiusKm <= 0 {
		radiusKm = defaultSimulateRadius
	}
	nearby, err := s.FindNearby(ctx, latitude, longitude, radiusKm)
	if err != nil {
		return nil, err
	}

	now := s.now()
	hour := now.Hour()
	weekday := now.Weekday()
	weekend := weekday == time.Saturday || weekday == time.Sunday

	summary := &SimulationSummary{Updates: make([]SimulationUpdate, 0, len(nearby))}
	for _, location := range nearby {
		multiplier := crowdMultiplier(location.Category, hour, weekend) * s.jitter()
		newCount := int(math.Floor(float64(location.MaxCapacity) * multiplier))

		oldLevel := location.DensityLevel
		wasActive := location.AlertActive
		location.UpdateDensity(newCount, now)

		if err := s.repo.Update(ctx, location); err != nil {
			return nil, common.NewInternalError("failed to persist simulated density", err)
		}

		summary.LocationsUpdated++
		densityUpdates.WithLabelValues(string(location.DensityLevel)).Inc()
		if !wasActive && location.AlertActive {
			summary.NewAlerts++
			alertsRaised.Inc()
			s.publishAlertTransition(ctx, location, eventbus.SubjectCrowdAlertRaised)
		} else if wasActive && !location.AlertActive {
			s.publishAlertTransition(ctx, location, eventbus.SubjectCrowdAlertCleared)
		}

		summary.Updates = append(summary.Updates, SimulationUpdate{
			ID:          location.ID,
			Name:        location.Name,
			OldLevel:    oldLevel,
			NewCount:    newCount,
			NewLevel:    location.DensityLevel,
			AlertActive: location.AlertActive,
		})

		logger.WithContext(ctx).Debug("simulated crowd update",
			zap.String("location", location.Name),
			zap.Int("count", newCount),
			zap.Float64("percentage", location.DensityPercentage),
		)
	}

	simulationRuns.Inc()
	return summary, nil
}

// SeedSampleLocations registers the demo locations that do not exist yet
func (s *Service) SeedSampleLocations(ctx context.Context) error {
	for _, sample := range sampleLocations() {
		existing, err := s.repo.GetByName(ctx, sample.Name)
		if err != nil {
			return fmt.Errorf("lookup sample location %q: %w", sample.Name, err)
		}
		if existing != nil {
			continue
		}
		if _, err := s.Register(ctx, sample); err != nil {
			return fmt.Errorf("register sample location %q: %w", sample.Name, err)
		}
	}

	logger.Info("sample crowd monitoring locations initialized")
	return nil
}

func (s *Service) publishReport(ctx context.Context, location *Location, count int) {
	if s.bus == nil {
		return
	}

	event, err := eventbus.NewEvent(eventbus.SubjectCrowdReported, "crowd-service", eventbus.CrowdReportedData{
		LocationID:   location.ID,
		LocationName: location.Name,
		Latitude:     location.Latitude,
		Longitude:    location.Longitude,
		CrowdCount:   count,
		Percentage:   location.DensityPercentage,
		DensityLevel: string(location.DensityLevel),
		ReportedAt:   location.LastUpdated,
	})
	if err != nil {
		logger.Warn("failed to build crowd report event", zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, eventbus.SubjectCrowdReported, event); err != nil {
		logger.Warn("failed to publish crowd report event", zap.Error(err))
	}
}

func (s *Service) publishAlertTransition(ctx context.Context, location *Location, subject string) {
	if s.bus == nil {
		return
	}

	event, err := eventbus.NewEvent(subject, "crowd-service", eventbus.CrowdAlertData{
		LocationID:   location.ID,
		LocationName: location.Name,
		Latitude:     location.Latitude,
		Longitude:    location.Longitude,
		DensityLevel: string(location.DensityLevel),
		Percentage:   location.DensityPercentage,
		ChangedAt:    location.LastUpdated,
	})
	if err != nil {
		logger.Warn("failed to build crowd alert event", zap.Error(err))
		return
	}
	if err := s.bus.Publish(ctx, subject, event); err != nil {
		logger.Warn("failed to publish crowd alert event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}
