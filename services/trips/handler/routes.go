package handler

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	jwtpkg "github.com/uwayapp/uway/internal/pkg/jwt"
	"github.com/uwayapp/uway/internal/pkg/middleware"
	"github.com/uwayapp/uway/internal/pkg/models"
	httpHandler "github.com/uwayapp/uway/services/trips/handler/http"
)

// Handler coordinates the trips service's HTTP handlers
type Handler struct {
	tripHandler *httpHandler.TripHandler
	cfg         *models.Config
}

// NewHandler creates the trips handler
func NewHandler(tripHandler *httpHandler.TripHandler, cfg *models.Config) *Handler {
	return &Handler{
		tripHandler: tripHandler,
		cfg:         cfg,
	}
}

// RegisterRoutes registers the trip lifecycle endpoints. Driver routes sit
// behind JWT auth, the internal lookup behind the shared API key.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	jwtMiddleware := echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(h.cfg.JWT.Secret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(jwtpkg.Claims)
		},
	})

	api := e.Group("/trips", jwtMiddleware)
	api.POST("", h.tripHandler.CreateTrip)
	api.GET("/active", h.tripHandler.ListActiveTrips)
	api.GET("/:trip_id", h.tripHandler.GetTrip)
	api.POST("/:trip_id/start", h.tripHandler.StartTrip)
	api.POST("/:trip_id/complete", h.tripHandler.CompleteTrip)
	api.POST("/:trip_id/cancel", h.tripHandler.CancelTrip)

	internal := e.Group("/internal", middleware.APIKeyMiddleware(h.cfg.Services.InternalAPIKey))
	internal.GET("/trips/:trip_id", h.tripHandler.GetTripInternal)
}
