package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/uwayapp/uway/internal/pkg/logger"
	"github.com/uwayapp/uway/internal/pkg/models"
	"github.com/uwayapp/uway/services/trips"
)

// ErrNotTripOwner indicates the caller is not the driver of the trip
var ErrNotTripOwner = errors.New("caller is not the trip driver")

// TripUC implements the trip lifecycle operations
type TripUC struct {
	repo trips.TripRepo
	gw   trips.TripGW
}

// NewTripUC creates a new trip usecase
func NewTripUC(repo trips.TripRepo, gw trips.TripGW) *TripUC {
	return &TripUC{
		repo: repo,
		gw:   gw,
	}
}

// CreateTrip registers a scheduled trip owned by the calling driver
func (uc *TripUC) CreateTrip(ctx context.Context, identity *models.Identity, req *models.CreateTripRequest) (*models.Trip, error) {
	trip := &models.Trip{
		DriverID:     identity.UserID,
		DriverName:   identity.Name,
		RouteName:    req.RouteName,
		VehiclePlate: req.VehiclePlate,
		Seats:        req.Seats,
	}
	return uc.repo.CreateTrip(ctx, trip)
}

// StartTrip moves a scheduled trip to IN_PROGRESS and announces it
func (uc *TripUC) StartTrip(ctx context.Context, identity *models.Identity, tripID int64) (*models.Trip, error) {
	if err := uc.checkOwnership(ctx, identity, tripID); err != nil {
		return nil, err
	}

	trip, err := uc.repo.UpdateTripStatus(ctx, tripID, models.TripStatusScheduled, models.TripStatusInProgress)
	if err != nil {
		return nil, err
	}

	uc.publishEvent(ctx, trip)
	return trip, nil
}

// CompleteTrip moves an in-progress trip to COMPLETED and announces it so the
// relay tears the trip's channel down.
func (uc *TripUC) CompleteTrip(ctx context.Context, identity *models.Identity, tripID int64) (*models.Trip, error) {
	if err := uc.checkOwnership(ctx, identity, tripID); err != nil {
		return nil, err
	}

	trip, err := uc.repo.UpdateTripStatus(ctx, tripID, models.TripStatusInProgress, models.TripStatusCompleted)
	if err != nil {
		return nil, err
	}

	uc.publishEvent(ctx, trip)
	return trip, nil
}

// CancelTrip aborts a trip before or during its run. The cancellation is
// announced like a completion so the relay tears the trip's channel down.
func (uc *TripUC) CancelTrip(ctx context.Context, identity *models.Identity, tripID int64) (*models.Trip, error) {
	current, err := uc.repo.GetTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if current.DriverID != identity.UserID {
		return nil, ErrNotTripOwner
	}
	switch current.Status {
	case models.TripStatusScheduled, models.TripStatusInProgress:
	default:
		return nil, trips.ErrInvalidTransition
	}

	trip, err := uc.repo.UpdateTripStatus(ctx, tripID, current.Status, models.TripStatusCancelled)
	if err != nil {
		return nil, err
	}

	uc.publishEvent(ctx, trip)
	return trip, nil
}

// GetTrip returns a trip by id
func (uc *TripUC) GetTrip(ctx context.Context, tripID int64) (*models.Trip, error) {
	return uc.repo.GetTrip(ctx, tripID)
}

// ListActiveTrips returns all trips currently in progress
func (uc *TripUC) ListActiveTrips(ctx context.Context) ([]*models.Trip, error) {
	return uc.repo.ListActiveTrips(ctx)
}

func (uc *TripUC) checkOwnership(ctx context.Context, identity *models.Identity, tripID int64) error {
	trip, err := uc.repo.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.DriverID != identity.UserID {
		return ErrNotTripOwner
	}
	return nil
}

// publishEvent announces a lifecycle change. Failures are logged and not
// surfaced: the database row is the source of truth and consumers recover by
// re-reading it.
func (uc *TripUC) publishEvent(ctx context.Context, trip *models.Trip) {
	event := &models.TripEvent{
		TripID:    trip.ID,
		DriverID:  trip.DriverID,
		Status:    trip.Status,
		Timestamp: time.Now(),
	}
	if err := uc.gw.PublishTripEvent(ctx, event); err != nil {
		logger.Warn("failed to publish trip event",
			logger.Int64("trip_id", trip.ID),
			logger.String("status", string(trip.Status)),
			logger.Err(err))
	}
}
