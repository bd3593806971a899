package nats

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"

	"github.com/uwayapp/uway/internal/pkg/constants"
	"github.com/uwayapp/uway/internal/pkg/logger"
	"github.com/uwayapp/uway/internal/pkg/models"
	natspkg "github.com/uwayapp/uway/internal/pkg/nats"
	"github.com/uwayapp/uway/services/relay"
)

// NatsHandler consumes trip lifecycle events for the relay service
type NatsHandler struct {
	client  *natspkg.Client
	relayUC relay.RelayUC
	subs    []*nats.Subscription
}

// NewNatsHandler creates a new NATS handler
func NewNatsHandler(client *natspkg.Client, relayUC relay.RelayUC) *NatsHandler {
	return &NatsHandler{
		client:  client,
		relayUC: relayUC,
	}
}

// InitConsumers subscribes to the trip lifecycle subjects the relay reacts to
func (h *NatsHandler) InitConsumers() error {
	sub, err := h.client.Subscribe(constants.SubjectTripCompleted, h.handleTripCompleted)
	if err != nil {
		return err
	}
	h.subs = append(h.subs, sub)

	sub, err = h.client.Subscribe(constants.SubjectTripCancelled, h.handleTripCompleted)
	if err != nil {
		return err
	}
	h.subs = append(h.subs, sub)

	return nil
}

// handleTripCompleted tears down the trip's broadcast channel. Completion
// and cancellation both end the live feed for the trip.
func (h *NatsHandler) handleTripCompleted(msg *nats.Msg) {
	var event models.TripEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("Failed to parse trip event",
			logger.String("subject", msg.Subject),
			logger.Err(err))
		return
	}

	logger.Info("Trip ended, removing channel",
		logger.Int64("trip_id", event.TripID),
		logger.String("status", string(event.Status)))
	h.relayUC.TripCompleted(context.Background(), event.TripID)
}

// Close drains all subscriptions
func (h *NatsHandler) Close() {
	for _, sub := range h.subs {
		_ = sub.Unsubscribe()
	}
}
