package emergency

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/suraksha/crowd-safety/internal/crowd"
	"github.com/suraksha/crowd-safety/pkg/common"
)

// mockRepo is a test-local mock that implements RepositoryInterface.
type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, alert *Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}
func (m *mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Alert), args.Error(1)
}
func (m *mockRepo) Update(ctx context.Context, alert *Alert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}
func (m *mockRepo) FindNearbyActive(ctx context.Context, latitude, longitude, radiusKm float64, now time.Time) ([]*Alert, error) {
	args := m.Called(ctx, latitude, longitude, radiusKm, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Alert), args.Error(1)
}
func (m *mockRepo) FindActiveByTypeNear(ctx context.Context, alertType AlertType, latitude, longitude, degreeDelta float64, now time.Time) ([]*Alert, error) {
	args := m.Called(ctx, alertType, latitude, longitude, degreeDelta, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Alert), args.Error(1)
}
func (m *mockRepo) CleanupExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
func (m *mockRepo) Stats(ctx context.Context) (*Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Stats), args.Error(1)
}

// mockCrowds is a test-local mock that implements CrowdSource.
type mockCrowds struct {
	mock.Mock
}

func (m *mockCrowds) FindNearby(ctx context.Context, latitude, longitude, radiusKm float64) ([]*crowd.Location, error) {
	args := m.Called(ctx, latitude, longitude, radiusKm)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*crowd.Location), args.Error(1)
}
func (m *mockCrowds) ActiveAlerts(ctx context.Context) ([]*crowd.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*crowd.Location), args.Error(1)
}

var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockRepo, crowds *mockCrowds) *Service {
	var source CrowdSource
	if crowds != nil {
		source = crowds
	}
	svc := NewService(repo, source, nil, nil)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestCreate_DefaultsAndBroadcastFallback(t *testing.T) {
	repo := new(mockRepo)
	crowds := new(mockCrowds)
	svc := newTestService(repo, crowds)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	crowds.On("FindNearby", mock.Anything, 12.97, 77.59, 1.0).
		Return([]*crowd.Location{}, nil)

	alert, err := svc.Create(context.Background(), &CreateAlertRequest{
		AlertType:    "overcrowding",
		LocationName: "Commercial Street",
		Latitude:     12.97,
		Longitude:    77.59,
		Description:  "crowd surging near entrance",
	})
	require.NoError(t, err)

	assert.Equal(t, SeverityMedium, alert.Severity)
	assert.Equal(t, "anonymous", alert.ReporterID)
	assert.Equal(t, DefaultBroadcastRadiusM, alert.BroadcastRadiusM)
	assert.Equal(t, testNow.Add(2*time.Hour), alert.ExpiresAt)
	assert.True(t, alert.Active)
	assert.False(t, alert.Verified)

	// With no crowd data the reach estimate falls back to the density model
	assert.Equal(t, 628, alert.NotificationsSent)
	repo.AssertExpectations(t)
}

func TestCreate_BroadcastUsesCrowdCounts(t *testing.T) {
	repo := new(mockRepo)
	crowds := new(mockCrowds)
	svc := newTestService(repo, crowds)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	crowds.On("FindNearby", mock.Anything, 12.97, 77.59, 1.0).
		Return([]*crowd.Location{
			{EstimatedCount: 1000},
			{EstimatedCount: 2000},
		}, nil)

	alert, err := svc.Create(context.Background(), &CreateAlertRequest{
		AlertType:    "blocked_exit",
		LocationName: "Metro Station",
		Latitude:     12.97,
		Longitude:    77.59,
		Description:  "east exit shutters stuck",
	})
	require.NoError(t, err)

	assert.Equal(t, 900, alert.NotificationsSent)
}

func TestCreate_TinyCrowdCountsKeepZeroEstimate(t *testing.T) {
	repo := new(mockRepo)
	crowds := new(mockCrowds)
	svc := newTestService(repo, crowds)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	crowds.On("FindNearby", mock.Anything, 12.97, 77.59, 1.0).
		Return([]*crowd.Location{
			{EstimatedCount: 1},
			{EstimatedCount: 1},
		}, nil)

	alert, err := svc.Create(context.Background(), &CreateAlertRequest{
		AlertType:    "overcrowding",
		LocationName: "Commercial Street",
		Latitude:     12.97,
		Longitude:    77.59,
		Description:  "small gathering",
	})
	require.NoError(t, err)

	// Crowd data exists, so the density fallback must not kick in
	assert.Equal(t, 0, alert.NotificationsSent)
}

func TestCreate_CriticalTriggersResponseActions(t *testing.T) {
	repo := new(mockRepo)
	crowds := new(mockCrowds)
	svc := newTestService(repo, crowds)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	crowds.On("FindNearby", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]*crowd.Location{}, nil)

	alert, err := svc.Create(context.Background(), &CreateAlertRequest{
		AlertType:    "fire_hazard",
		Severity:     "critical",
		LocationName: "ISKCON Temple",
		Latitude:     12.9434,
		Longitude:    77.6009,
		Description:  "smoke from kitchen block",
	})
	require.NoError(t, err)

	require.Len(t, alert.ResponseActions, 2)
	assert.Equal(t, ActionPoliceNotified, alert.ResponseActions[0].ActionType)
	assert.Equal(t, ActionEvacuationStarted, alert.ResponseActions[1].ActionType)
}

func TestCreate_MedicalDispatchForCriticalMedical(t *testing.T) {
	repo := new(mockRepo)
	crowds := new(mockCrowds)
	svc := newTestService(repo, crowds)

	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	crowds.On("FindNearby", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return([]*crowd.Location{}, nil)

	alert, err := svc.Create(context.Background(), &CreateAlertRequest{
		AlertType:    "medical_emergency",
		Severity:     "critical",
		LocationName: "Brigade Road",
		Latitude:     12.9698,
		Longitude:    77.6205,
		Description:  "person collapsed in crowd",
	})
	require.NoError(t, err)

	require.Len(t, alert.ResponseActions, 2)
	assert.Equal(t, ActionMedicalDispatched, alert.ResponseActions[1].ActionType)
}

func TestCreate_RejectsUnknownType(t *testing.T) {
	svc := newTestService(new(mockRepo), nil)

	_, err := svc.Create(context.Background(), &CreateAlertRequest{
		AlertType:    "tsunami",
		LocationName: "Beach Road",
		Latitude:     12.97,
		Longitude:    77.59,
		Description:  "waves",
	})
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidEnum, common.AsAppError(err).ErrorCode)
}

func TestCreate_RejectsOutOfRangeRadius(t *testing.T) {
	svc := newTestService(new(mockRepo), nil)

	_, err := svc.Create(context.Background(), &CreateAlertRequest{
		AlertType:        "overcrowding",
		LocationName:     "Commercial Street",
		Latitude:         12.97,
		Longitude:        77.59,
		Description:      "too many people",
		BroadcastRadiusM: 50,
	})
	require.Error(t, err)
	assert.Equal(t, common.CodeInvalidCount, common.AsAppError(err).ErrorCode)
}

func TestConfirm_CommunityVerification(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, nil)
	id := uuid.New()

	alert := &Alert{
		ID: id, Type: TypeOvercrowding, Active: true,
		ExpiresAt: testNow.Add(time.Hour),
	}
	alert.AddConfirmation("user_a", true, testNow)
	alert.AddConfirmation("user_b", true, testNow)

	repo.On("GetByID", mock.Anything, id).Return(alert, nil)
	repo.On("Update", mock.Anything, alert).Return(nil)

	result, err := svc.Confirm(context.Background(), id, "user_c", true)
	require.NoError(t, err)

	assert.Equal(t, 1.0, result.ConfirmationRatio)
	assert.True(t, result.Verified)
	assert.True(t, result.Active)
	assert.Equal(t, VerifiedByCommunity, alert.VerifiedBy)
}

func TestConfirm_CommunityRejection(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, nil)
	id := uuid.New()

	alert := &Alert{
		ID: id, Type: TypeOvercrowding, Active: true,
		ExpiresAt: testNow.Add(time.Hour),
	}
	for _, user := range []string{"a", "b", "c", "d"} {
		alert.AddConfirmation(user, false, testNow)
	}

	repo.On("GetByID", mock.Anything, id).Return(alert, nil)
	repo.On("Update", mock.Anything, alert).Return(nil)

	result, err := svc.Confirm(context.Background(), id, "e", false)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.ConfirmationRatio)
	assert.False(t, result.Active)
	assert.Equal(t, RejectedByCommunity, alert.VerifiedBy)
	require.NotNil(t, alert.ResolvedAt)
}

func TestConfirm_ExpiredAlert(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, nil)
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(&Alert{
		ID: id, Active: true, ExpiresAt: testNow.Add(-time.Minute),
	}, nil)

	_, err := svc.Confirm(context.Background(), id, "user_a", true)
	require.Error(t, err)

	// Expired alerts read as missing, like deleted ones
	appErr := common.AsAppError(err)
	assert.Equal(t, 404, appErr.Code)
	assert.Equal(t, common.CodeAlertExpired, appErr.ErrorCode)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestConfirm_NotFound(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, nil)
	id := uuid.New()

	repo.On("GetByID", mock.Anything, id).Return(nil, nil)

	_, err := svc.Confirm(context.Background(), id, "user_a", true)
	require.Error(t, err)
	assert.Equal(t, 404, common.AsAppError(err).Code)
}

func TestResolve_DefaultsToSystem(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, nil)
	id := uuid.New()

	alert := &Alert{ID: id, Active: true, ExpiresAt: testNow.Add(time.Hour)}
	repo.On("GetByID", mock.Anything, id).Return(alert, nil)
	repo.On("Update", mock.Anything, alert).Return(nil)

	resolved, err := svc.Resolve(context.Background(), id, "")
	require.NoError(t, err)

	assert.False(t, resolved.Active)
	assert.Equal(t, ResolvedBySystem, resolved.VerifiedBy)
}

func TestDetect_CreatesVerifiedStampedeAlert(t *testing.T) {
	repo := new(mockRepo)
	crowds := new(mockCrowds)
	svc := newTestService(repo, crowds)

	hot := &crowd.Location{
		ID: uuid.New(), Name: "Chinnaswamy Stadium",
		Latitude: 12.9784, Longitude: 77.5996,
		EstimatedCount: 38400, MaxCapacity: 40000,
		DensityPercentage: 96, DensityLevel: crowd.DensityCritical, AlertActive: true,
	}
	borderline := &crowd.Location{
		ID: uuid.New(), Name: "Commercial Street",
		DensityPercentage: 95, DensityLevel: crowd.DensityCritical, AlertActive: true,
	}

	crowds.On("ActiveAlerts", mock.Anything).Return([]*crowd.Location{hot, borderline}, nil)
	repo.On("FindActiveByTypeNear", mock.Anything, TypeStampedeRisk,
		12.9784, 77.5996, 0.001, testNow).Return([]*Alert{}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	crowds.On("FindNearby", mock.Anything, 12.9784, 77.5996, 2.0).
		Return([]*crowd.Location{hot}, nil)

	created, err := svc.Detect(context.Background())
	require.NoError(t, err)

	require.Len(t, created, 1, "a location at exactly 95 percent stays below the detection bar")
	alert := created[0]
	assert.Equal(t, TypeStampedeRisk, alert.Type)
	assert.Equal(t, SeverityCritical, alert.Severity)
	assert.Equal(t, ReporterAutoDetect, alert.ReporterID)
	assert.Equal(t, detectBroadcastRadiusM, alert.BroadcastRadiusM)
	assert.True(t, alert.Verified)
	assert.Equal(t, VerifiedBySystem, alert.VerifiedBy)
	assert.Equal(t, "Critical overcrowding detected: 96.0% capacity (38400 people)", alert.Description)
}

func TestDetect_SkipsDuplicates(t *testing.T) {
	repo := new(mockRepo)
	crowds := new(mockCrowds)
	svc := newTestService(repo, crowds)

	hot := &crowd.Location{
		ID: uuid.New(), Name: "Chinnaswamy Stadium",
		Latitude: 12.9784, Longitude: 77.5996,
		DensityPercentage: 97, DensityLevel: crowd.DensityCritical, AlertActive: true,
	}

	crowds.On("ActiveAlerts", mock.Anything).Return([]*crowd.Location{hot}, nil)
	repo.On("FindActiveByTypeNear", mock.Anything, TypeStampedeRisk,
		12.9784, 77.5996, 0.001, testNow).
		Return([]*Alert{{ID: uuid.New(), Type: TypeStampedeRisk, Active: true}}, nil)

	created, err := svc.Detect(context.Background())
	require.NoError(t, err)
	assert.Empty(t, created)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCleanupExpired_PassesThroughCount(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, nil)

	repo.On("CleanupExpired", mock.Anything, testNow).Return(int64(3), nil)

	cleaned, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), cleaned)
}

func TestFindNearby_MapsToViews(t *testing.T) {
	repo := new(mockRepo)
	svc := newTestService(repo, nil)

	stored := &Alert{
		ID: uuid.New(), Type: TypeStampedeRisk, Severity: SeverityCritical,
		LocationName: "Chinnaswamy Stadium", Active: true,
		ExpiresAt: testNow.Add(time.Hour), NotificationsSent: 900,
	}
	stored.AddConfirmation("a", true, testNow)
	stored.AddConfirmation("b", false, testNow)

	repo.On("FindNearbyActive", mock.Anything, 12.97, 77.59, 5.0, testNow).
		Return([]*Alert{stored}, nil)

	views, err := svc.FindNearby(context.Background(), 12.97, 77.59, 0)
	require.NoError(t, err)

	require.Len(t, views, 1)
	assert.Equal(t, stored.ID, views[0].ID)
	assert.Equal(t, 0.5, views[0].ConfirmationRatio)
	assert.Equal(t, 900, views[0].NotificationsSent)
}
