package relay

import (
	"context"
	"errors"

	"github.com/uwayapp/uway/internal/pkg/models"
	"github.com/uwayapp/uway/services/relay/registry"
)

// Admission errors. All are terminal for the connection attempt; the server
// never retries on the client's behalf.
var (
	// ErrTripNotFound indicates the named trip does not exist
	ErrTripNotFound = errors.New("trip not found")
	// ErrNotTripDriver indicates the identity is not the trip's assigned driver
	ErrNotTripDriver = errors.New("identity is not the trip driver")
	// ErrTripNotActive indicates the trip is not in progress
	ErrTripNotActive = errors.New("trip is not in progress")
)

// RelayUC defines the relay's use case operations
type RelayUC interface {
	// AuthorizePublisher verifies that identity may stream locations for the
	// trip: it must be the assigned driver and the trip must be in progress.
	AuthorizePublisher(ctx context.Context, identity *models.Identity, tripID int64) error

	// RelaySample fans a decoded sample out to all subscribers and mirrors
	// it to the last-location store and the event bus.
	RelaySample(ctx context.Context, session registry.Publisher, sample *models.LocationSample) error

	// TripCompleted tears down the trip's broadcast channel
	TripCompleted(ctx context.Context, tripID int64)
}
