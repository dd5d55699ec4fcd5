package routing

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/suraksha/crowd-safety/internal/crowd"
	"github.com/suraksha/crowd-safety/pkg/common"
	"github.com/suraksha/crowd-safety/pkg/logger"
	"github.com/suraksha/crowd-safety/pkg/validation"
	"go.uber.org/zap"
)

const (
	defaultMaxDetourPercent = 50
	defaultTransportMode    = "walking"

	// Scoring radii in kilometers.
	crowdCheckRadiusKm     = 0.5
	emergencyCheckRadiusKm = 1

	// Penalties per hit along the sampled route.
	penaltyCrowdCritical = 30
	penaltyCrowdHigh     = 15

	routeSamplePoints = 6
	neutralScore      = 50
)

// emergencySeverityPenalty maps alert severity to its score penalty.
// Unknown severities cost a flat 10.
var emergencySeverityPenalty = map[string]int{
	"critical": 50,
	"high":     30,
	"medium":   15,
	"low":      5,
}

// Service scores candidate routes against live crowd and emergency data
type Service struct {
	provider    RouteProvider
	crowds      CrowdFinder
	emergencies EmergencyFinder
}

// NewService creates a new routing service
func NewService(provider RouteProvider, crowds CrowdFinder, emergencies EmergencyFinder) *Service {
	return &Service{
		provider:    provider,
		crowds:      crowds,
		emergencies: emergencies,
	}
}

// SafeRoutes fetches candidate routes, scores each for safety, drops
// excessive detours and returns the safest route with alternatives.
func (s *Service) SafeRoutes(ctx context.Context, req *SafeRoutesRequest) (*SafeRoutesResult, error) {
	if err := validation.RouteEndpoints(req.Origin.Latitude, req.Origin.Longitude,
		req.Destination.Latitude, req.Destination.Longitude); err != nil {
		return nil, common.NewValidationError(common.CodeInvalidCoordinates, err.Error())
	}

	mode := req.TransportMode
	if mode == "" {
		mode = defaultTransportMode
	}
	if mode != "walking" && mode != "driving" && mode != "transit" {
		return nil, common.NewValidationError(common.CodeInvalidEnum,
			fmt.Sprintf("unknown transport mode: %s", mode))
	}

	maxDetour := req.MaxDetourPercent
	if maxDetour == 0 {
		maxDetour = defaultMaxDetourPercent
	}
	avoidCrowds := req.AvoidCrowds == nil || *req.AvoidCrowds
	avoidEmergencies := req.AvoidEmergencies == nil || *req.AvoidEmergencies

	routeRequests.WithLabelValues("safe_routes").Inc()

	routes, err := s.provider.Routes(ctx, req.Origin, req.Destination, mode)
	if err != nil {
		return nil, common.NewInternalError("failed to fetch routes", err)
	}
	if len(routes) == 0 {
		return nil, common.NewNotFoundError("no routes found")
	}

	scored := make([]*ScoredRoute, 0, len(routes))
	for _, route := range routes {
		scored = append(scored, s.analyze(ctx, route, req.Origin, req.Destination, avoidCrowds, avoidEmergencies))
	}

	// Safest first; detours measured against the safest route's duration
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].SafetyScore > scored[j].SafetyScore
	})

	best := scored[0]
	acceptable := scored[:0]
	for _, route := range scored {
		detourPercent := float64(route.DurationSeconds-best.DurationSeconds) /
			float64(best.DurationSeconds) * 100
		if detourPercent <= maxDetour {
			acceptable = append(acceptable, route)
		}
	}

	alternatives := acceptable[1:]
	if len(alternatives) > 2 {
		alternatives = alternatives[:2]
	}

	logger.WithContext(ctx).Info("safe routes calculated",
		zap.Int("candidates", len(routes)),
		zap.Int("safety_score", best.SafetyScore),
	)

	return &SafeRoutesResult{
		Recommended:  best,
		Alternatives: alternatives,
		SafetyAnalysis: SafetyAnalysis{
			CrowdedAreasAvoided:   len(best.CrowdedAreas),
			EmergencyAreasAvoided: len(best.EmergencyAreas),
		},
	}, nil
}

// analyze walks sample points along the route, deducting penalties for
// crowd and emergency hits. Any data failure yields the neutral score
// with a warning rather than an error.
func (s *Service) analyze(ctx context.Context, route Route, origin, destination LatLng, avoidCrowds, avoidEmergencies bool) *ScoredRoute {
	score := 100
	warnings := make([]string, 0)
	crowdedAreas := make([]CrowdedArea, 0)
	emergencyAreas := make([]EmergencyArea, 0)

	for _, point := range sampleRoutePoints(route, origin, destination) {
		if avoidCrowds {
			nearby, err := s.crowds.FindNearby(ctx, point.Latitude, point.Longitude, crowdCheckRadiusKm)
			if err != nil {
				return neutralRoute(route)
			}
			for _, location := range nearby {
				switch location.DensityLevel {
				case crowd.DensityCritical:
					score -= penaltyCrowdCritical
					warnings = append(warnings, fmt.Sprintf("Critical crowd density at %s", location.Name))
				case crowd.DensityHigh:
					score -= penaltyCrowdHigh
					warnings = append(warnings, fmt.Sprintf("High crowd density at %s", location.Name))
				default:
					continue
				}
				crowdedAreas = append(crowdedAreas, CrowdedArea{
					Name:       location.Name,
					Density:    string(location.DensityLevel),
					Percentage: location.DensityPercentage,
					Latitude:   location.Latitude,
					Longitude:  location.Longitude,
				})
			}
		}

		if avoidEmergencies {
			alerts, err := s.emergencies.FindNearby(ctx, point.Latitude, point.Longitude, emergencyCheckRadiusKm)
			if err != nil {
				return neutralRoute(route)
			}
			for _, alert := range alerts {
				penalty, known := emergencySeverityPenalty[string(alert.Severity)]
				if !known {
					penalty = 10
				}
				score -= penalty
				emergencyAreas = append(emergencyAreas, EmergencyArea{
					Type:      string(alert.Type),
					Severity:  string(alert.Severity),
					Location:  alert.LocationName,
					Latitude:  alert.Latitude,
					Longitude: alert.Longitude,
				})
				warnings = append(warnings, fmt.Sprintf("%s %s at %s",
					strings.ToUpper(string(alert.Severity)), alert.Type, alert.LocationName))
			}
		}
	}

	if score < 0 {
		score = 0
	}

	return &ScoredRoute{
		Route:          route,
		SafetyScore:    score,
		Warnings:       warnings,
		CrowdedAreas:   crowdedAreas,
		EmergencyAreas: emergencyAreas,
		Recommendation: recommendation(score),
	}
}

func neutralRoute(route Route) *ScoredRoute {
	return &ScoredRoute{
		Route:          route,
		SafetyScore:    neutralScore,
		Warnings:       []string{"Unable to analyze route safety"},
		CrowdedAreas:   make([]CrowdedArea, 0),
		EmergencyAreas: make([]EmergencyArea, 0),
		Recommendation: "Use caution",
	}
}

// sampleRoutePoints spreads sample points along the route bounds
// diagonal, or between the endpoints when the provider gave no bounds.
func sampleRoutePoints(route Route, origin, destination LatLng) []LatLng {
	start, end := origin, destination
	if route.Bounds != nil {
		start = route.Bounds.SouthWest
		end = route.Bounds.NorthEast
	}

	points := make([]LatLng, 0, routeSamplePoints)
	steps := routeSamplePoints - 1
	for i := 0; i < routeSamplePoints; i++ {
		fraction := float64(i) / float64(steps)
		points = append(points, LatLng{
			Latitude:  start.Latitude + (end.Latitude-start.Latitude)*fraction,
			Longitude: start.Longitude + (end.Longitude-start.Longitude)*fraction,
		})
	}
	return points
}

func recommendation(score int) string {
	switch {
	case score >= 80:
		return "Safe route - recommended"
	case score >= 60:
		return "Generally safe - minor caution advised"
	case score >= 40:
		return "Use caution - some safety concerns"
	case score >= 20:
		return "Not recommended - significant safety risks"
	default:
		return "Avoid this route - high safety risks"
	}
}
