package crowd

import (
	"context"

	"github.com/google/uuid"
)

// RepositoryInterface defines all public methods of the Repository
type RepositoryInterface interface {
	Create(ctx context.Context, location *Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*Location, error)
	GetByName(ctx context.Context, name string) (*Location, error)
	Update(ctx context.Context, location *Location) error
	FindNearby(ctx context.Context, latitude, longitude, radiusKm float64) ([]*Location, error)
	FindActiveAlerts(ctx context.Context) ([]*Location, error)
	List(ctx context.Context, filter ListFilter) ([]*Location, error)
}

// ServiceInterface defines the crowd operations used by handlers and workers
type ServiceInterface interface {
	Register(ctx context.Context, req *RegisterLocationRequest) (*Location, error)
	UpdateDensity(ctx context.Context, id uuid.UUID, newCount int) (*Location, error)
	Get(ctx context.Context, id uuid.UUID) (*Location, error)
	List(ctx context.Context, filter ListFilter) ([]*Location, error)
	FindNearby(ctx context.Context, latitude, longitude, radiusKm float64) ([]*Location, error)
	ActiveAlerts(ctx context.Context) ([]*Location, error)
	CheckUserLocation(ctx context.Context, latitude, longitude, radiusKm float64) (*UserLocationReport, error)
	Simulate(ctx context.Context, latitude, longitude, radiusKm float64) (*SimulationSummary, error)
	SeedSampleLocations(ctx context.Context) error
}
