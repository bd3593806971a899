package websocket

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/uwayapp/uway/internal/pkg/constants"
	"github.com/uwayapp/uway/internal/pkg/logger"
	"github.com/uwayapp/uway/internal/pkg/models"
	wspkg "github.com/uwayapp/uway/internal/pkg/websocket"
	"github.com/uwayapp/uway/services/relay"
	"github.com/uwayapp/uway/services/relay/registry"
)

// RelayHandler admits publisher and subscriber connections. Admission
// failures are refused before any session object is created.
type RelayHandler struct {
	manager  *wspkg.Manager
	relayUC  relay.RelayUC
	registry *registry.Registry
	cfg      *models.Config
}

// NewRelayHandler creates the WebSocket handler for the relay service
func NewRelayHandler(manager *wspkg.Manager, relayUC relay.RelayUC, reg *registry.Registry, cfg *models.Config) *RelayHandler {
	return &RelayHandler{
		manager:  manager,
		relayUC:  relayUC,
		registry: reg,
		cfg:      cfg,
	}
}

// HandlePublish admits a driver's trip-scoped publisher connection
func (h *RelayHandler) HandlePublish(c echo.Context) error {
	tripID, err := strconv.ParseInt(c.Param("trip_id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid trip id")
	}

	identity, err := h.manager.Authenticate(c)
	if err != nil {
		return err
	}

	if err := h.relayUC.AuthorizePublisher(c.Request().Context(), identity, tripID); err != nil {
		switch {
		case errors.Is(err, relay.ErrTripNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, relay.ErrNotTripDriver), errors.Is(err, relay.ErrTripNotActive):
			return echo.NewHTTPError(http.StatusForbidden, constants.ErrorForbidden)
		default:
			logger.Error("Publisher authorization failed",
				logger.Int64("trip_id", tripID),
				logger.Err(err))
			return echo.NewHTTPError(http.StatusServiceUnavailable, "authorization unavailable")
		}
	}

	conn, err := h.manager.Upgrade(c)
	if err != nil {
		return err
	}

	session := NewPublisherSession(tripID, identity, conn, h.relayUC, h.registry, h.writeTimeout())
	h.registry.RegisterPublisher(tripID, session)
	session.Run(c.Request().Context())
	return nil
}

// HandleSubscribe admits a viewer onto the global broadcast feed
func (h *RelayHandler) HandleSubscribe(c echo.Context) error {
	identity, err := h.manager.Authenticate(c)
	if err != nil {
		return err
	}

	conn, err := h.manager.Upgrade(c)
	if err != nil {
		return err
	}

	session := NewSubscriberSession(identity, conn, h.registry, h.cfg.Relay.SendBufferSize, h.writeTimeout())
	h.registry.RegisterSubscriber(session)
	session.Run()
	return nil
}

func (h *RelayHandler) writeTimeout() time.Duration {
	timeout := h.cfg.Relay.WriteTimeout
	if timeout <= 0 {
		timeout = 10
	}
	return time.Duration(timeout) * time.Second
}
