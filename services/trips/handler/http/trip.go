package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	jwtpkg "github.com/uwayapp/uway/internal/pkg/jwt"
	"github.com/uwayapp/uway/internal/pkg/logger"
	"github.com/uwayapp/uway/internal/pkg/models"
	"github.com/uwayapp/uway/internal/utils"
	"github.com/uwayapp/uway/services/trips"
	"github.com/uwayapp/uway/services/trips/usecase"
)

// TripHandler exposes the trip lifecycle over HTTP
type TripHandler struct {
	tripUC trips.TripUC
}

// NewTripHandler creates a new trip HTTP handler
func NewTripHandler(tripUC trips.TripUC) *TripHandler {
	return &TripHandler{tripUC: tripUC}
}

// CreateTrip handles POST /trips
func (h *TripHandler) CreateTrip(c echo.Context) error {
	identity, err := identityFromContext(c)
	if err != nil {
		return utils.FailureResponse(c, http.StatusUnauthorized, "")
	}

	var req models.CreateTripRequest
	if err := c.Bind(&req); err != nil {
		return utils.FailureResponse(c, http.StatusBadRequest, "invalid request body")
	}
	if req.RouteName == "" {
		return utils.FailureResponse(c, http.StatusBadRequest, "route_name is required")
	}

	trip, err := h.tripUC.CreateTrip(c.Request().Context(), identity, &req)
	if err != nil {
		logger.Error("failed to create trip", logger.Err(err))
		return utils.FailureResponse(c, http.StatusInternalServerError, "")
	}

	return utils.SuccessResponse(c, http.StatusCreated, "Trip created", trip)
}

// StartTrip handles POST /trips/:trip_id/start
func (h *TripHandler) StartTrip(c echo.Context) error {
	return h.transition(c, h.tripUC.StartTrip, "Trip started")
}

// CompleteTrip handles POST /trips/:trip_id/complete
func (h *TripHandler) CompleteTrip(c echo.Context) error {
	return h.transition(c, h.tripUC.CompleteTrip, "Trip completed")
}

// CancelTrip handles POST /trips/:trip_id/cancel
func (h *TripHandler) CancelTrip(c echo.Context) error {
	return h.transition(c, h.tripUC.CancelTrip, "Trip cancelled")
}

// GetTrip handles GET /trips/:trip_id
func (h *TripHandler) GetTrip(c echo.Context) error {
	tripID, err := parseTripID(c)
	if err != nil {
		return utils.FailureResponse(c, http.StatusBadRequest, "invalid trip id")
	}

	trip, err := h.tripUC.GetTrip(c.Request().Context(), tripID)
	if err != nil {
		if errors.Is(err, trips.ErrTripNotFound) {
			return utils.FailureResponse(c, http.StatusNotFound, "trip not found")
		}
		logger.Error("failed to get trip", logger.Int64("trip_id", tripID), logger.Err(err))
		return utils.FailureResponse(c, http.StatusInternalServerError, "")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Trip retrieved", trip)
}

// ListActiveTrips handles GET /trips/active
func (h *TripHandler) ListActiveTrips(c echo.Context) error {
	result, err := h.tripUC.ListActiveTrips(c.Request().Context())
	if err != nil {
		logger.Error("failed to list active trips", logger.Err(err))
		return utils.FailureResponse(c, http.StatusInternalServerError, "")
	}

	return utils.SuccessResponse(c, http.StatusOK, "Active trips retrieved", result)
}

// GetTripInternal handles GET /internal/trips/:trip_id. It is guarded by the
// shared API key and returns the bare trip JSON the relay gateway decodes.
func (h *TripHandler) GetTripInternal(c echo.Context) error {
	tripID, err := parseTripID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid trip id")
	}

	trip, err := h.tripUC.GetTrip(c.Request().Context(), tripID)
	if err != nil {
		if errors.Is(err, trips.ErrTripNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "trip not found")
		}
		logger.Error("failed to get trip", logger.Int64("trip_id", tripID), logger.Err(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, trip)
}

func (h *TripHandler) transition(
	c echo.Context,
	fn func(ctx context.Context, identity *models.Identity, tripID int64) (*models.Trip, error),
	message string,
) error {
	identity, err := identityFromContext(c)
	if err != nil {
		return utils.FailureResponse(c, http.StatusUnauthorized, "")
	}

	tripID, err := parseTripID(c)
	if err != nil {
		return utils.FailureResponse(c, http.StatusBadRequest, "invalid trip id")
	}

	trip, err := fn(c.Request().Context(), identity, tripID)
	if err != nil {
		switch {
		case errors.Is(err, trips.ErrTripNotFound):
			return utils.FailureResponse(c, http.StatusNotFound, "trip not found")
		case errors.Is(err, usecase.ErrNotTripOwner):
			return utils.FailureResponse(c, http.StatusForbidden, "not the trip driver")
		case errors.Is(err, trips.ErrInvalidTransition):
			return utils.FailureResponse(c, http.StatusConflict, "trip is not in the required status")
		default:
			logger.Error("trip transition failed", logger.Int64("trip_id", tripID), logger.Err(err))
			return utils.FailureResponse(c, http.StatusInternalServerError, "")
		}
	}

	return utils.SuccessResponse(c, http.StatusOK, message, trip)
}

func parseTripID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("trip_id"), 10, 64)
}

// identityFromContext extracts the identity stored by the echo-jwt middleware
func identityFromContext(c echo.Context) (*models.Identity, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, jwtpkg.ErrInvalidToken
	}
	claims, ok := token.Claims.(*jwtpkg.Claims)
	if !ok {
		return nil, jwtpkg.ErrInvalidToken
	}
	return jwtpkg.IdentityFromClaims(claims), nil
}
