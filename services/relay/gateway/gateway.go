package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/uwayapp/uway/internal/pkg/circuitbreaker"
	"github.com/uwayapp/uway/internal/pkg/constants"
	httppkg "github.com/uwayapp/uway/internal/pkg/http"
	"github.com/uwayapp/uway/internal/pkg/models"
	natspkg "github.com/uwayapp/uway/internal/pkg/nats"
	"github.com/uwayapp/uway/internal/pkg/retry"
	"github.com/uwayapp/uway/services/relay"
)

// RelayGW implements the relay.RelayGW interface against the trips service
// REST API and the NATS event bus.
type RelayGW struct {
	tripsClient *httppkg.Client
	natsClient  *natspkg.Client
	breaker     *circuitbreaker.Breaker
	retryCfg    retry.Config
}

// NewRelayGW creates the relay's outbound gateway
func NewRelayGW(natsClient *natspkg.Client, cfg *models.Config) *RelayGW {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = 2
	retryCfg.BaseDelay = 50 * time.Millisecond
	retryCfg.RetryableFunc = isRetryable

	return &RelayGW{
		tripsClient: httppkg.NewClient(cfg.Services.TripsServiceURL, cfg.Services.InternalAPIKey, 5*time.Second),
		natsClient:  natsClient,
		breaker:     circuitbreaker.New(circuitbreaker.DefaultConfig("trips-service")),
		retryCfg:    retryCfg,
	}
}

// GetTrip fetches a trip from the trips service. Transient failures are
// retried; repeated failure trips the breaker so publisher admission fails
// fast instead of piling up on a dead dependency.
func (g *RelayGW) GetTrip(ctx context.Context, tripID int64) (*models.Trip, error) {
	var trip models.Trip

	err := g.breaker.Execute(ctx, func(ctx context.Context) error {
		return retry.Do(ctx, g.retryCfg, func(ctx context.Context) error {
			return g.tripsClient.GetJSON(ctx, fmt.Sprintf("/internal/trips/%d", tripID), &trip)
		})
	})
	if err != nil {
		var statusErr *httppkg.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, relay.ErrTripNotFound
		}
		return nil, fmt.Errorf("failed to fetch trip %d: %w", tripID, err)
	}

	return &trip, nil
}

// PublishLocationUpdate mirrors a relayed sample onto the event bus
func (g *RelayGW) PublishLocationUpdate(ctx context.Context, sample *models.LocationSample) error {
	event := models.LocationUpdateEvent{
		TripID:     sample.TripID,
		DriverName: sample.DriverName,
		Latitude:   sample.Latitude,
		Longitude:  sample.Longitude,
		SpeedKmh:   sample.SpeedKmh,
	}
	return g.natsClient.PublishJSON(constants.SubjectLocationUpdate, event)
}

// isRetryable retries network errors and 5xx; a 4xx answer is final.
func isRetryable(err error) bool {
	var statusErr *httppkg.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return true
}
