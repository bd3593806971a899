package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/uwayapp/uway/internal/pkg/models"
	natsHandler "github.com/uwayapp/uway/services/relay/handler/nats"
	wsHandler "github.com/uwayapp/uway/services/relay/handler/websocket"
)

// Handler coordinates the relay service's protocol handlers
type Handler struct {
	relayHandler *wsHandler.RelayHandler
	natsHandler  *natsHandler.NatsHandler
	cfg          *models.Config
}

// NewHandler creates and initializes all handlers
func NewHandler(relayHandler *wsHandler.RelayHandler, natsHandler *natsHandler.NatsHandler, cfg *models.Config) *Handler {
	return &Handler{
		relayHandler: relayHandler,
		natsHandler:  natsHandler,
		cfg:          cfg,
	}
}

// RegisterRoutes registers the relay's WebSocket endpoints. Authentication
// happens inside the handlers at connection-open time because the bearer
// token rides in the upgrade request's query string.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	ws := e.Group("/ws")
	ws.GET("/publish/:trip_id", h.relayHandler.HandlePublish)
	ws.GET("/subscribe", h.relayHandler.HandleSubscribe)
}
