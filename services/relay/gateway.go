package relay

import (
	"context"

	"github.com/uwayapp/uway/internal/pkg/models"
)

// RelayGW defines the relay's outbound dependencies: the trip directory and
// the event bus.
type RelayGW interface {
	// GetTrip fetches a trip from the trips service. Returns ErrTripNotFound
	// when the trip does not exist.
	GetTrip(ctx context.Context, tripID int64) (*models.Trip, error)

	// PublishLocationUpdate mirrors a relayed sample onto the event bus for
	// services that do not hold a WebSocket. Best-effort.
	PublishLocationUpdate(ctx context.Context, sample *models.LocationSample) error
}
