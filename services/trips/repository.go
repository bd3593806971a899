package trips

import (
	"context"
	"errors"

	"github.com/uwayapp/uway/internal/pkg/models"
)

// ErrTripNotFound indicates the trip does not exist
var ErrTripNotFound = errors.New("trip not found")

// TripRepo defines the trips persistence operations
type TripRepo interface {
	CreateTrip(ctx context.Context, trip *models.Trip) (*models.Trip, error)
	GetTrip(ctx context.Context, tripID int64) (*models.Trip, error)
	UpdateTripStatus(ctx context.Context, tripID int64, from, to models.TripStatus) (*models.Trip, error)
	ListActiveTrips(ctx context.Context) ([]*models.Trip, error)
}
