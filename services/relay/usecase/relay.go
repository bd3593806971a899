package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/uwayapp/uway/internal/pkg/constants"
	"github.com/uwayapp/uway/internal/pkg/database"
	"github.com/uwayapp/uway/internal/pkg/logger"
	"github.com/uwayapp/uway/internal/pkg/models"
	"github.com/uwayapp/uway/internal/utils"
	"github.com/uwayapp/uway/services/relay"
	"github.com/uwayapp/uway/services/relay/registry"
)

// RelayUC implements the relay.RelayUC interface
type RelayUC struct {
	gw          relay.RelayGW
	registry    *registry.Registry
	redisClient *database.RedisClient
	cfg         *models.Config
}

// NewRelayUC creates a new relay use case
func NewRelayUC(gw relay.RelayGW, reg *registry.Registry, redisClient *database.RedisClient, cfg *models.Config) *RelayUC {
	return &RelayUC{
		gw:          gw,
		registry:    reg,
		redisClient: redisClient,
		cfg:         cfg,
	}
}

// AuthorizePublisher verifies the identity is the assigned driver of an
// in-progress trip. The trip is expected to have been started via the trips
// service before the driver opens the publisher connection.
func (uc *RelayUC) AuthorizePublisher(ctx context.Context, identity *models.Identity, tripID int64) error {
	trip, err := uc.gw.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.DriverID != identity.UserID {
		return relay.ErrNotTripDriver
	}
	if trip.Status != models.TripStatusInProgress {
		return relay.ErrTripNotActive
	}
	return nil
}

// RelaySample fans the sample out to every subscriber, then updates the
// last-location store and mirrors the sample onto the event bus. Fan-out
// failure (superseded publisher) is the only error surfaced to the session;
// the side stores are best-effort.
func (uc *RelayUC) RelaySample(ctx context.Context, session registry.Publisher, sample *models.LocationSample) error {
	if err := uc.registry.Publish(session, sample); err != nil {
		return err
	}

	if err := uc.storeLastLocation(ctx, sample); err != nil {
		logger.Warn("Failed to store last location",
			logger.Int64("trip_id", sample.TripID),
			logger.Err(err))
	}

	if err := uc.gw.PublishLocationUpdate(ctx, sample); err != nil {
		logger.Warn("Failed to mirror sample to event bus",
			logger.Int64("trip_id", sample.TripID),
			logger.Err(err))
	}

	return nil
}

// TripCompleted destroys the trip's channel and clears its cached location
func (uc *RelayUC) TripCompleted(ctx context.Context, tripID int64) {
	uc.registry.RemoveChannel(tripID)

	if uc.redisClient == nil {
		return
	}
	key := fmt.Sprintf(constants.KeyTripLocation, tripID)
	if err := uc.redisClient.Delete(ctx, key); err != nil {
		logger.Warn("Failed to delete trip location key",
			logger.Int64("trip_id", tripID),
			logger.Err(err))
	}
	if err := uc.redisClient.GeoRemove(ctx, constants.KeyVehicleGeo, strconv.FormatInt(tripID, 10)); err != nil {
		logger.Warn("Failed to remove vehicle from geo set",
			logger.Int64("trip_id", tripID),
			logger.Err(err))
	}
}

func (uc *RelayUC) storeLastLocation(ctx context.Context, sample *models.LocationSample) error {
	if uc.redisClient == nil {
		return nil
	}

	key := fmt.Sprintf(constants.KeyTripLocation, sample.TripID)
	if err := uc.redisClient.HSet(ctx, key, locationFields(sample)); err != nil {
		return err
	}

	return uc.redisClient.GeoAdd(ctx, constants.KeyVehicleGeo,
		sample.Longitude, sample.Latitude, strconv.FormatInt(sample.TripID, 10))
}

// geohashPrecision gives roughly 5 meter cells, enough for the trip
// directory to bucket vehicles by block.
const geohashPrecision = 9

// locationFields builds the last-location hash for a sample. The geohash
// field lets the trip directory bucket vehicles without recomputing from
// raw coordinates.
func locationFields(sample *models.LocationSample) map[string]interface{} {
	point := utils.GeoPoint{Latitude: sample.Latitude, Longitude: sample.Longitude}
	fields := map[string]interface{}{
		constants.FieldLatitude:   sample.Latitude,
		constants.FieldLongitude:  sample.Longitude,
		constants.FieldGeohash:    utils.EncodeGeohash(point, geohashPrecision),
		constants.FieldDriverName: sample.DriverName,
		constants.FieldTimestamp:  time.Now().Unix(),
	}
	if sample.SpeedKmh != nil {
		fields[constants.FieldSpeed] = *sample.SpeedKmh
	}
	return fields
}
