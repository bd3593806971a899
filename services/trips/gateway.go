package trips

import (
	"context"

	"github.com/uwayapp/uway/internal/pkg/models"
)

// TripGW publishes trip lifecycle events to the event bus
type TripGW interface {
	PublishTripEvent(ctx context.Context, event *models.TripEvent) error
}
