package routing

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/suraksha/crowd-safety/pkg/common"
	"github.com/suraksha/crowd-safety/pkg/geo"
	"github.com/suraksha/crowd-safety/pkg/logger"
	"github.com/suraksha/crowd-safety/pkg/validation"
	"go.uber.org/zap"
)

const (
	defaultEvacuationRadiusKm = 2
	defaultMaxEvacuationRoute = 3
	evacuationDetourPercent   = 100
)

// safeDestinations is the fixed catalog of Bengaluru evacuation targets.
func safeDestinations() []SafeDestination {
	return []SafeDestination{
		{Name: "Cubbon Park", Latitude: 12.9762, Longitude: 77.5993, Category: "park"},
		{Name: "Lalbagh Botanical Garden", Latitude: 12.9507, Longitude: 77.5848, Category: "park"},
		{Name: "Bangalore Palace Grounds", Latitude: 12.9988, Longitude: 77.5916, Category: "open_space"},
		{Name: "Kanteerava Stadium", Latitude: 12.9698, Longitude: 77.5986, Category: "stadium"},
		{Name: "Freedom Park", Latitude: 12.9716, Longitude: 77.5946, Category: "park"},
	}
}

// categorySafety scores how suitable a destination category is as an
// evacuation target.
func categorySafety(category string) int {
	switch category {
	case "park":
		return 90
	case "open_space":
		return 85
	case "stadium":
		return 80
	case "hospital":
		return 75
	case "school":
		return 70
	default:
		return 60
	}
}

// EvacuationRoutes plans walking routes from the current position to safe
// destinations outside the evacuation radius around the emergency.
func (s *Service) EvacuationRoutes(ctx context.Context, req *EvacuationRequest) (*EvacuationPlan, error) {
	if err := validation.ValidateCoordinates(req.CurrentLocation.Latitude, req.CurrentLocation.Longitude); err != nil {
		return nil, common.NewValidationError(common.CodeInvalidCoordinates, err.Error())
	}
	if err := validation.ValidateCoordinates(req.EmergencyLocation.Latitude, req.EmergencyLocation.Longitude); err != nil {
		return nil, common.NewValidationError(common.CodeInvalidCoordinates, err.Error())
	}

	radius := req.EvacuationRadiusKm
	if radius <= 0 {
		radius = defaultEvacuationRadiusKm
	}
	maxRoutes := req.MaxRoutes
	if maxRoutes <= 0 {
		maxRoutes = defaultMaxEvacuationRoute
	}

	routeRequests.WithLabelValues("evacuation_routes").Inc()

	destinations := s.findSafeDestinations(req.CurrentLocation, req.EmergencyLocation, radius)
	if len(destinations) > maxRoutes {
		destinations = destinations[:maxRoutes]
	}

	avoid := true
	evacuationRoutes := make([]EvacuationRoute, 0, len(destinations))
	for _, destination := range destinations {
		result, err := s.SafeRoutes(ctx, &SafeRoutesRequest{
			Origin:           req.CurrentLocation,
			Destination:      LatLng{Latitude: destination.Latitude, Longitude: destination.Longitude},
			AvoidCrowds:      &avoid,
			AvoidEmergencies: &avoid,
			TransportMode:    "walking",
			MaxDetourPercent: evacuationDetourPercent,
		})
		if err != nil {
			logger.WithContext(ctx).Warn("evacuation route planning failed",
				zap.String("destination", destination.Name),
				zap.Error(err),
			)
			continue
		}
		if result.Recommended == nil {
			continue
		}
		evacuationRoutes = append(evacuationRoutes, EvacuationRoute{
			Destination:     destination.Name,
			Route:           result.Recommended,
			EstimatedSafety: destination.SafetyLevel,
		})
	}

	return &EvacuationPlan{
		EvacuationRoutes:   evacuationRoutes,
		EmergencyLocation:  req.EmergencyLocation,
		EvacuationRadiusKm: radius,
		Instructions:       evacuationInstructions(evacuationRoutes),
	}, nil
}

// findSafeDestinations returns catalog entries outside the evacuation
// radius, nearest to the current position first.
func (s *Service) findSafeDestinations(current, emergencyLoc LatLng, radiusKm float64) []SafeDestination {
	candidates := make([]SafeDestination, 0)
	for _, destination := range safeDestinations() {
		fromEmergency := geo.Haversine(emergencyLoc.Latitude, emergencyLoc.Longitude,
			destination.Latitude, destination.Longitude)
		if fromEmergency <= radiusKm {
			continue
		}
		destination.DistanceFromCurrentKm = geo.Haversine(current.Latitude, current.Longitude,
			destination.Latitude, destination.Longitude)
		destination.SafetyLevel = categorySafety(destination.Category)
		candidates = append(candidates, destination)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].DistanceFromCurrentKm < candidates[j].DistanceFromCurrentKm
	})
	return candidates
}

func evacuationInstructions(routes []EvacuationRoute) []string {
	if len(routes) == 0 {
		return []string{
			"Move away from the emergency area",
			"Seek open spaces",
			"Follow local authorities' instructions",
		}
	}

	primary := routes[0]
	minutes := int(math.Round(float64(primary.Route.DurationSeconds) / 60))
	return []string{
		fmt.Sprintf("Head towards %s", primary.Destination),
		fmt.Sprintf("Estimated travel time: %d minutes", minutes),
		"Stay calm and move steadily",
		"Avoid running to prevent panic",
		"Help others if safe to do so",
		"Follow instructions from emergency personnel",
	}
}
