package trips

import (
	"context"
	"errors"

	"github.com/uwayapp/uway/internal/pkg/models"
)

// ErrInvalidTransition indicates the trip is not in the state the requested
// lifecycle operation expects.
var ErrInvalidTransition = errors.New("invalid trip status transition")

// TripUC defines the trip lifecycle operations
type TripUC interface {
	// CreateTrip registers a scheduled trip owned by the calling driver
	CreateTrip(ctx context.Context, identity *models.Identity, req *models.CreateTripRequest) (*models.Trip, error)

	// StartTrip moves a scheduled trip to IN_PROGRESS. The driver calls this
	// immediately before opening its publisher connection.
	StartTrip(ctx context.Context, identity *models.Identity, tripID int64) (*models.Trip, error)

	// CompleteTrip moves an in-progress trip to COMPLETED and announces it on
	// the event bus so the relay tears the trip's channel down.
	CompleteTrip(ctx context.Context, identity *models.Identity, tripID int64) (*models.Trip, error)

	// CancelTrip aborts a scheduled or in-progress trip and announces the
	// cancellation on the event bus.
	CancelTrip(ctx context.Context, identity *models.Identity, tripID int64) (*models.Trip, error)

	// GetTrip returns a trip by id
	GetTrip(ctx context.Context, tripID int64) (*models.Trip, error)

	// ListActiveTrips returns the trips a viewer may want to correlate with
	// incoming samples.
	ListActiveTrips(ctx context.Context) ([]*models.Trip, error)
}
