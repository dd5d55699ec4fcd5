package routing

import (
	"context"

	"github.com/suraksha/crowd-safety/internal/crowd"
	"github.com/suraksha/crowd-safety/internal/emergency"
)

// RouteProvider fetches candidate routes between two coordinates.
type RouteProvider interface {
	Routes(ctx context.Context, origin, destination LatLng, mode string) ([]Route, error)
}

// CrowdFinder is the slice of the crowd service used for route scoring.
type CrowdFinder interface {
	FindNearby(ctx context.Context, latitude, longitude, radiusKm float64) ([]*crowd.Location, error)
}

// EmergencyFinder is the slice of the emergency service used for route
// scoring.
type EmergencyFinder interface {
	FindNearby(ctx context.Context, latitude, longitude, radiusKm float64) ([]emergency.NearbyAlert, error)
}

// ServiceInterface defines the routing operations used by handlers
type ServiceInterface interface {
	SafeRoutes(ctx context.Context, req *SafeRoutesRequest) (*SafeRoutesResult, error)
	EvacuationRoutes(ctx context.Context, req *EvacuationRequest) (*EvacuationPlan, error)
}
