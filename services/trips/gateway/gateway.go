package gateway

import (
	"context"
	"fmt"

	"github.com/uwayapp/uway/internal/pkg/constants"
	"github.com/uwayapp/uway/internal/pkg/models"
	natspkg "github.com/uwayapp/uway/internal/pkg/nats"
)

// TripGW publishes trip lifecycle events over NATS
type TripGW struct {
	natsClient *natspkg.Client
}

// NewTripGW creates a new trip gateway
func NewTripGW(natsClient *natspkg.Client) *TripGW {
	return &TripGW{natsClient: natsClient}
}

// PublishTripEvent publishes the event on the subject matching its status
func (g *TripGW) PublishTripEvent(ctx context.Context, event *models.TripEvent) error {
	var subject string
	switch event.Status {
	case models.TripStatusInProgress:
		subject = constants.SubjectTripStarted
	case models.TripStatusCompleted:
		subject = constants.SubjectTripCompleted
	case models.TripStatusCancelled:
		subject = constants.SubjectTripCancelled
	default:
		return fmt.Errorf("no subject for trip status %s", event.Status)
	}

	return g.natsClient.PublishJSON(subject, event)
}
