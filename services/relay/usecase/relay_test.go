package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwayapp/uway/internal/pkg/constants"
	"github.com/uwayapp/uway/internal/pkg/models"
	"github.com/uwayapp/uway/internal/utils"
	"github.com/uwayapp/uway/services/relay"
	"github.com/uwayapp/uway/services/relay/mocks"
	"github.com/uwayapp/uway/services/relay/registry"
)

type noopPublisher struct{}

func (noopPublisher) Close() {}

func newTestUC(t *testing.T) (*RelayUC, *mocks.MockRelayGW, *registry.Registry) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockGW := mocks.NewMockRelayGW(ctrl)
	reg := registry.New()
	uc := NewRelayUC(mockGW, reg, nil, &models.Config{})
	return uc, mockGW, reg
}

func TestAuthorizePublisher_Success(t *testing.T) {
	uc, mockGW, _ := newTestUC(t)

	identity := &models.Identity{UserID: "driver-1", Name: "Budi", Role: "driver"}
	mockGW.EXPECT().
		GetTrip(gomock.Any(), int64(42)).
		Return(&models.Trip{ID: 42, DriverID: "driver-1", Status: models.TripStatusInProgress}, nil)

	err := uc.AuthorizePublisher(context.Background(), identity, 42)
	assert.NoError(t, err)
}

func TestAuthorizePublisher_TripNotFound(t *testing.T) {
	uc, mockGW, _ := newTestUC(t)

	mockGW.EXPECT().
		GetTrip(gomock.Any(), int64(42)).
		Return(nil, relay.ErrTripNotFound)

	err := uc.AuthorizePublisher(context.Background(), &models.Identity{UserID: "driver-1"}, 42)
	assert.ErrorIs(t, err, relay.ErrTripNotFound)
}

func TestAuthorizePublisher_NotTripDriver(t *testing.T) {
	uc, mockGW, _ := newTestUC(t)

	mockGW.EXPECT().
		GetTrip(gomock.Any(), int64(42)).
		Return(&models.Trip{ID: 42, DriverID: "driver-2", Status: models.TripStatusInProgress}, nil)

	err := uc.AuthorizePublisher(context.Background(), &models.Identity{UserID: "driver-1"}, 42)
	assert.ErrorIs(t, err, relay.ErrNotTripDriver)
}

func TestAuthorizePublisher_TripNotActive(t *testing.T) {
	uc, mockGW, _ := newTestUC(t)

	for _, status := range []models.TripStatus{
		models.TripStatusScheduled,
		models.TripStatusCompleted,
		models.TripStatusCancelled,
	} {
		mockGW.EXPECT().
			GetTrip(gomock.Any(), int64(42)).
			Return(&models.Trip{ID: 42, DriverID: "driver-1", Status: status}, nil)

		err := uc.AuthorizePublisher(context.Background(), &models.Identity{UserID: "driver-1"}, 42)
		assert.ErrorIs(t, err, relay.ErrTripNotActive, "status %s", status)
	}
}

func TestRelaySample_PublishesToBusAfterFanOut(t *testing.T) {
	uc, mockGW, reg := newTestUC(t)

	session := noopPublisher{}
	reg.RegisterPublisher(1, session)

	sample := &models.LocationSample{TripID: 1, DriverName: "Budi", Latitude: -6.2, Longitude: 106.8}
	mockGW.EXPECT().
		PublishLocationUpdate(gomock.Any(), sample).
		Return(nil)

	err := uc.RelaySample(context.Background(), session, sample)
	assert.NoError(t, err)

	last, ok := reg.LastSample(1)
	require.True(t, ok)
	assert.Equal(t, sample, last)
}

func TestRelaySample_BusFailureIsNotFatal(t *testing.T) {
	uc, mockGW, reg := newTestUC(t)

	session := noopPublisher{}
	reg.RegisterPublisher(1, session)

	sample := &models.LocationSample{TripID: 1, Latitude: -6.2, Longitude: 106.8}
	mockGW.EXPECT().
		PublishLocationUpdate(gomock.Any(), sample).
		Return(errors.New("nats down"))

	err := uc.RelaySample(context.Background(), session, sample)
	assert.NoError(t, err, "event bus mirroring is best-effort")
}

func TestRelaySample_SupersededStopsEverything(t *testing.T) {
	uc, _, reg := newTestUC(t)

	stale := noopPublisher{}
	current := &struct{ noopPublisher }{}
	reg.RegisterPublisher(1, stale)
	reg.RegisterPublisher(1, current)

	sample := &models.LocationSample{TripID: 1, Latitude: -6.2, Longitude: 106.8}
	err := uc.RelaySample(context.Background(), stale, sample)
	assert.ErrorIs(t, err, registry.ErrSuperseded)
	// No PublishLocationUpdate expectation: a rejected sample must not
	// reach the event bus.
}

func TestLocationFields_CarriesGeohash(t *testing.T) {
	speed := 32.5
	sample := &models.LocationSample{
		TripID:     1,
		DriverName: "Budi",
		Latitude:   -6.1754,
		Longitude:  106.8272,
		SpeedKmh:   &speed,
	}

	fields := locationFields(sample)

	hash, ok := fields[constants.FieldGeohash].(string)
	require.True(t, ok, "hash field missing")
	lat, lon := utils.DecodeGeohash(hash)
	assert.InDelta(t, sample.Latitude, lat, 0.001)
	assert.InDelta(t, sample.Longitude, lon, 0.001)

	assert.Equal(t, sample.Latitude, fields[constants.FieldLatitude])
	assert.Equal(t, speed, fields[constants.FieldSpeed])
}

func TestLocationFields_OmitsSpeedWhenUnknown(t *testing.T) {
	fields := locationFields(&models.LocationSample{TripID: 1, Latitude: -6.2, Longitude: 106.8})
	_, ok := fields[constants.FieldSpeed]
	assert.False(t, ok)
}

func TestTripCompleted_RemovesChannel(t *testing.T) {
	uc, _, reg := newTestUC(t)

	session := noopPublisher{}
	reg.RegisterPublisher(1, session)

	uc.TripCompleted(context.Background(), 1)
	assert.Nil(t, reg.CurrentPublisher(1))
}
