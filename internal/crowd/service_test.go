package crowd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/suraksha/crowd-safety/pkg/common"
)

// mockRepo is a test-local mock that implements RepositoryInterface.
type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, location *Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}
func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Location), args.Error(1)
}
func (m *mockRepo) GetByName(ctx context.Context, name string) (*Location, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Location), args.Error(1)
}
func (m *mockRepo) Update(ctx context.Context, location *Location) error {
	args := m.Called(ctx, location)
	return args.Error(0)
}
func (m *mockRepo) FindNearby(ctx context.Context, latitude, longitude, radiusKm float64) ([]*Location, error) {
	args := m.Called(ctx, latitude, longitude, radiusKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Location), args.Error(1)
}
func (m *mockRepo) FindActiveAlerts(ctx context.Context) ([]*Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Location), args.Error(1)
}
func (m *mockRepo) List(ctx context.Context, filter ListFilter) ([]*Location, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Location), args.Error(1)
}

func newTestService(repo *mockRepo) *Service {
	svc := NewService(repo, nil)
	svc.now = func() time.Time {
		return time.Date(2026, 8, 29, 18, 0, 0, 0, time.UTC) // Saturday evening
	}
	svc.jitter = func() float64 { return 1.0 }
	return svc
}

func TestRegister_AppliesInitialCountAndDefaults(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(l *Location) bool {
		return l.Name == "Stadium A" && l.Category == CategoryOther && l.MaxCapacity == 1000
	})).Return(nil)

	location, err := svc.Register(context.Background(), &RegisterLocationRequest{
		Name:         "Stadium A",
		Latitude:     12.97,
		Longitude:    77.59,
		InitialCount: 950,
	})
	require.NoError(t, err)

	assert.Equal(t, 95.0, location.DensityPercentage)
	assert.Equal(t, DensityCritical, location.DensityLevel)
	assert.True(t, location.AlertActive)
	assert.Len(t, location.History, 1)
	repo.AssertExpectations(t)
}

func TestRegister_RejectsBadCoordinates(t *testing.T) {
	svc := newTestService(new(mockRepo))

	_, err := svc.Register(context.Background(), &RegisterLocationRequest{
		Name:     "Nowhere",
		Latitude: 95, Longitude: 0,
	})
	require.Error(t, err)

	appErr := common.AsAppError(err)
	assert.Equal(t, 400, appErr.Code)
	assert.Equal(t, common.CodeInvalidCoordinates, appErr.ErrorCode)
}

func TestRegister_RejectsUnknownCategory(t *testing.T) {
	svc := newTestService(new(mockRepo))

	_, err := svc.Register(context.Background(), &RegisterLocationRequest{
		Name:     "Museum of Art",
		Category: "museum",
		Latitude: 12.97, Longitude: 77.59,
	})
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidEnum, common.AsAppError(err).ErrorCode)
}

func TestUpdateDensity_NotFound(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo)
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(nil, nil)

	_, err := svc.UpdateDensity(context.Background(), id, 100)
	require.Error(t, err)
	assert.Equal(t, 404, common.AsAppError(err).Code)
}

func TestUpdateDensity_NegativeCount(t *testing.T) {
	svc := newTestService(new(mockRepo))

	_, err := svc.UpdateDensity(context.Background(), uuid.New(), -1)
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidCount, common.AsAppError(err).ErrorCode)
}

func TestUpdateDensity_RecomputesState(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo)
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(&Location{
		ID: id, Name: "Station", MaxCapacity: 1000,
		EstimatedCount: 100, DensityLevel: DensityLow,
	}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	location, err := svc.UpdateDensity(context.Background(), id, 720)
	require.NoError(t, err)

	assert.Equal(t, 72.0, location.DensityPercentage)
	assert.Equal(t, DensityHigh, location.DensityLevel)
	assert.True(t, location.AlertActive)
	repo.AssertExpectations(t)
}

func TestCheckUserLocation_FiltersAndSorts(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo)

	far := &Location{
		ID: uuid.New(), Name: "Far Critical", MaxCapacity: 100,
		Latitude: 13.05, Longitude: 77.59,
		DensityLevel: DensityCritical, AlertActive: true, DensityPercentage: 95,
	}
	near := &Location{
		ID: uuid.New(), Name: "Near High", MaxCapacity: 100,
		Latitude: 12.975, Longitude: 77.595,
		DensityLevel: DensityHigh, AlertActive: true, DensityPercentage: 75,
	}
	calm := &Location{
		ID: uuid.New(), Name: "Calm Park", MaxCapacity: 100,
		Latitude: 12.98, Longitude: 77.60,
		DensityLevel: DensityLow, AlertActive: false, DensityPercentage: 10,
	}

	repo.On("FindNearby", mock.Anything, 12.97, 77.59, 5.0).
		Return([]*Location{far, near, calm}, nil)

	report, err := svc.CheckUserLocation(context.Background(), 12.97, 77.59, 5)
	require.NoError(t, err)

	require.Len(t, report.NearbyAlerts, 2)
	assert.Equal(t, "Near High", report.NearbyAlerts[0].Name)
	assert.Equal(t, "Far Critical", report.NearbyAlerts[1].Name)
	assert.Equal(t, 2, report.TotalAlerts)
	assert.Equal(t, 1, report.CriticalAlerts)
	assert.Equal(t, 12.97, report.UserLocation.Latitude)
}

func TestSimulate_UpdatesAndCountsNewAlerts(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo)

	// Saturday 18:00, stadium multiplier is 0.95 with unit jitter
	stadium := &Location{
		ID: uuid.New(), Name: "Chinnaswamy Stadium", Category: CategoryStadium,
		MaxCapacity: 1000, DensityLevel: DensityLow,
	}

	repo.On("FindNearby", mock.Anything, 12.97, 77.59, 1.0).
		Return([]*Location{stadium}, nil)
	repo.On("Update", mock.Anything, stadium).Return(nil)

	summary, err := svc.Simulate(context.Background(), 12.97, 77.59, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.LocationsUpdated)
	assert.Equal(t, 1, summary.NewAlerts)
	require.Len(t, summary.Updates, 1)
	assert.Equal(t, 950, summary.Updates[0].NewCount)
	assert.Equal(t, DensityCritical, summary.Updates[0].NewLevel)
	assert.Equal(t, DensityLow, summary.Updates[0].OldLevel)
}

func TestSimulate_RejectsOversizedRadius(t *testing.T) {
	svc := newTestService(new(mockRepo))

	_, err := svc.Simulate(context.Background(), 12.97, 77.59, 200)
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidCount, common.AsAppError(err).ErrorCode)
}

func TestList_RejectsUnknownLevel(t *testing.T) {
	svc := newTestService(new(mockRepo))

	_, err := svc.List(context.Background(), ListFilter{Level: "extreme"})
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidEnum, common.AsAppError(err).ErrorCode)
}

func TestSeedSampleLocations_SkipsExisting(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo)

	existing := &Location{ID: uuid.New(), Name: "Bengaluru City Railway Station"}
	repo.On("GetByName", mock.Anything, "Bengaluru City Railway Station").Return(existing, nil)
	repo.On("GetByName", mock.Anything, mock.Anything).Return(nil, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil).Times(4)

	require.NoError(t, svc.SeedSampleLocations(context.Background()))
	repo.AssertExpectations(t)
}

func TestActiveAlerts_PropagatesRepoError(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo)

	repo.On("FindActiveAlerts", mock.Anything).Return(nil, errors.New("db down"))

	_, err := svc.ActiveAlerts(context.Background())
	require.Error(t, err)
	assert.Equal(t, 500, common.AsAppError(err).Code)
}
