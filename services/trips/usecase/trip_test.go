package usecase

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwayapp/uway/internal/pkg/models"
	"github.com/uwayapp/uway/services/trips"
	"github.com/uwayapp/uway/services/trips/mocks"
)

func newTestUC(t *testing.T) (*TripUC, *mocks.MockTripRepo, *mocks.MockTripGW) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockRepo := mocks.NewMockTripRepo(ctrl)
	mockGW := mocks.NewMockTripGW(ctrl)
	return NewTripUC(mockRepo, mockGW), mockRepo, mockGW
}

func driverIdentity() *models.Identity {
	return &models.Identity{UserID: "driver-1", Name: "Budi", Role: "driver"}
}

func TestCreateTrip_OwnedByCaller(t *testing.T) {
	uc, mockRepo, _ := newTestUC(t)

	req := &models.CreateTripRequest{RouteName: "Kampus A - Kampus B", VehiclePlate: "B 1234 XYZ", Seats: 4}
	mockRepo.EXPECT().
		CreateTrip(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
			assert.Equal(t, "driver-1", trip.DriverID)
			assert.Equal(t, "Budi", trip.DriverName)
			assert.Equal(t, "Kampus A - Kampus B", trip.RouteName)
			trip.ID = 1
			return trip, nil
		})

	trip, err := uc.CreateTrip(context.Background(), driverIdentity(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), trip.ID)
}

func TestStartTrip_Success(t *testing.T) {
	uc, mockRepo, mockGW := newTestUC(t)

	mockRepo.EXPECT().
		GetTrip(gomock.Any(), int64(1)).
		Return(&models.Trip{ID: 1, DriverID: "driver-1", Status: models.TripStatusScheduled}, nil)
	mockRepo.EXPECT().
		UpdateTripStatus(gomock.Any(), int64(1), models.TripStatusScheduled, models.TripStatusInProgress).
		Return(&models.Trip{ID: 1, DriverID: "driver-1", Status: models.TripStatusInProgress}, nil)
	mockGW.EXPECT().
		PublishTripEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, event *models.TripEvent) error {
			assert.Equal(t, int64(1), event.TripID)
			assert.Equal(t, models.TripStatusInProgress, event.Status)
			return nil
		})

	trip, err := uc.StartTrip(context.Background(), driverIdentity(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.TripStatusInProgress, trip.Status)
}

func TestStartTrip_NotOwner(t *testing.T) {
	uc, mockRepo, _ := newTestUC(t)

	mockRepo.EXPECT().
		GetTrip(gomock.Any(), int64(1)).
		Return(&models.Trip{ID: 1, DriverID: "driver-2", Status: models.TripStatusScheduled}, nil)

	_, err := uc.StartTrip(context.Background(), driverIdentity(), 1)
	assert.ErrorIs(t, err, ErrNotTripOwner)
}

func TestStartTrip_AlreadyStarted(t *testing.T) {
	uc, mockRepo, _ := newTestUC(t)

	mockRepo.EXPECT().
		GetTrip(gomock.Any(), int64(1)).
		Return(&models.Trip{ID: 1, DriverID: "driver-1", Status: models.TripStatusInProgress}, nil)
	mockRepo.EXPECT().
		UpdateTripStatus(gomock.Any(), int64(1), models.TripStatusScheduled, models.TripStatusInProgress).
		Return(nil, trips.ErrInvalidTransition)

	_, err := uc.StartTrip(context.Background(), driverIdentity(), 1)
	assert.ErrorIs(t, err, trips.ErrInvalidTransition)
}

func TestCompleteTrip_PublishesCompletionEvent(t *testing.T) {
	uc, mockRepo, mockGW := newTestUC(t)

	mockRepo.EXPECT().
		GetTrip(gomock.Any(), int64(1)).
		Return(&models.Trip{ID: 1, DriverID: "driver-1", Status: models.TripStatusInProgress}, nil)
	mockRepo.EXPECT().
		UpdateTripStatus(gomock.Any(), int64(1), models.TripStatusInProgress, models.TripStatusCompleted).
		Return(&models.Trip{ID: 1, DriverID: "driver-1", Status: models.TripStatusCompleted}, nil)
	mockGW.EXPECT().
		PublishTripEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, event *models.TripEvent) error {
			assert.Equal(t, models.TripStatusCompleted, event.Status)
			return nil
		})

	trip, err := uc.CompleteTrip(context.Background(), driverIdentity(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.TripStatusCompleted, trip.Status)
}

func TestCancelTrip_InProgressPublishesCancellationEvent(t *testing.T) {
	uc, mockRepo, mockGW := newTestUC(t)

	mockRepo.EXPECT().
		GetTrip(gomock.Any(), int64(1)).
		Return(&models.Trip{ID: 1, DriverID: "driver-1", Status: models.TripStatusInProgress}, nil)
	mockRepo.EXPECT().
		UpdateTripStatus(gomock.Any(), int64(1), models.TripStatusInProgress, models.TripStatusCancelled).
		Return(&models.Trip{ID: 1, DriverID: "driver-1", Status: models.TripStatusCancelled}, nil)
	mockGW.EXPECT().
		PublishTripEvent(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, event *models.TripEvent) error {
			assert.Equal(t, models.TripStatusCancelled, event.Status)
			return nil
		})

	trip, err := uc.CancelTrip(context.Background(), driverIdentity(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.TripStatusCancelled, trip.Status)
}

func TestCancelTrip_ScheduledTripCanBeCancelled(t *testing.T) {
	uc, mockRepo, mockGW := newTestUC(t)

	mockRepo.EXPECT().
		GetTrip(gomock.Any(), int64(1)).
		Return(&models.Trip{ID: 1, DriverID: "driver-1", Status: models.TripStatusScheduled}, nil)
	mockRepo.EXPECT().
		UpdateTripStatus(gomock.Any(), int64(1), models.TripStatusScheduled, models.TripStatusCancelled).
		Return(&models.Trip{ID: 1, DriverID: "driver-1", Status: models.TripStatusCancelled}, nil)
	mockGW.EXPECT().
		PublishTripEvent(gomock.Any(), gomock.Any()).
		Return(nil)

	trip, err := uc.CancelTrip(context.Background(), driverIdentity(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.TripStatusCancelled, trip.Status)
}

func TestCancelTrip_FinishedTripCannotBeCancelled(t *testing.T) {
	uc, mockRepo, _ := newTestUC(t)

	for _, status := range []models.TripStatus{
		models.TripStatusCompleted,
		models.TripStatusCancelled,
	} {
		mockRepo.EXPECT().
			GetTrip(gomock.Any(), int64(1)).
			Return(&models.Trip{ID: 1, DriverID: "driver-1", Status: status}, nil)

		_, err := uc.CancelTrip(context.Background(), driverIdentity(), 1)
		assert.ErrorIs(t, err, trips.ErrInvalidTransition, "status %s", status)
	}
}

func TestCancelTrip_NotOwner(t *testing.T) {
	uc, mockRepo, _ := newTestUC(t)

	mockRepo.EXPECT().
		GetTrip(gomock.Any(), int64(1)).
		Return(&models.Trip{ID: 1, DriverID: "driver-2", Status: models.TripStatusInProgress}, nil)

	_, err := uc.CancelTrip(context.Background(), driverIdentity(), 1)
	assert.ErrorIs(t, err, ErrNotTripOwner)
}

func TestCompleteTrip_TripNotFound(t *testing.T) {
	uc, mockRepo, _ := newTestUC(t)

	mockRepo.EXPECT().
		GetTrip(gomock.Any(), int64(9)).
		Return(nil, trips.ErrTripNotFound)

	_, err := uc.CompleteTrip(context.Background(), driverIdentity(), 9)
	assert.ErrorIs(t, err, trips.ErrTripNotFound)
}
