package emergency

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suraksha/crowd-safety/internal/crowd"
)

// RepositoryInterface defines all public methods of the Repository
type RepositoryInterface interface {
	Create(ctx context.Context, alert *Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	Update(ctx context.Context, alert *Alert) error
	FindNearbyActive(ctx context.Context, latitude, longitude, radiusKm float64, now time.Time) ([]*Alert, error)
	FindActiveByTypeNear(ctx context.Context, alertType AlertType, latitude, longitude, degreeDelta float64, now time.Time) ([]*Alert, error)
	CleanupExpired(ctx context.Context, now time.Time) (int64, error)
	Stats(ctx context.Context) (*Stats, error)
}

// CrowdSource is the slice of the crowd service the emergency module
// needs for broadcast sizing and automatic detection.
type CrowdSource interface {
	FindNearby(ctx context.Context, latitude, longitude, radiusKm float64) ([]*crowd.Location, error)
	ActiveAlerts(ctx context.Context) ([]*crowd.Location, error)
}

// Notifier delivers broadcast messages to an external gateway.
type Notifier interface {
	Send(ctx context.Context, broadcast *BroadcastResult) error
}

// ServiceInterface defines the emergency operations used by handlers
// and workers
type ServiceInterface interface {
	Create(ctx context.Context, req *CreateAlertRequest) (*Alert, error)
	Confirm(ctx context.Context, alertID uuid.UUID, userID string, confirmed bool) (*ConfirmResult, error)
	Resolve(ctx context.Context, alertID uuid.UUID, resolvedBy string) (*Alert, error)
	FindNearby(ctx context.Context, latitude, longitude, radiusKm float64) ([]NearbyAlert, error)
	Detect(ctx context.Context) ([]*Alert, error)
	CleanupExpired(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (*Stats, error)
}
