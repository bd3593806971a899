package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/uwayapp/uway/internal/pkg/models"
	"github.com/uwayapp/uway/services/trips"
)

// TripRepo implements the trips.TripRepo interface over PostgreSQL
type TripRepo struct {
	db *sqlx.DB
}

// NewTripRepo creates a new trip repository
func NewTripRepo(db *sqlx.DB) *TripRepo {
	return &TripRepo{db: db}
}

// CreateTrip inserts a new scheduled trip
func (r *TripRepo) CreateTrip(ctx context.Context, trip *models.Trip) (*models.Trip, error) {
	query := `
		INSERT INTO trips (driver_id, driver_name, route_name, vehicle_plate, seats, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	trip.Status = models.TripStatusScheduled
	trip.CreatedAt = time.Now()

	err := r.db.QueryRowxContext(ctx, query,
		trip.DriverID,
		trip.DriverName,
		trip.RouteName,
		trip.VehiclePlate,
		trip.Seats,
		trip.Status,
		trip.CreatedAt,
	).Scan(&trip.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create trip: %w", err)
	}

	return trip, nil
}

// GetTrip fetches a trip by id
func (r *TripRepo) GetTrip(ctx context.Context, tripID int64) (*models.Trip, error) {
	var trip models.Trip
	query := `
		SELECT id, driver_id, driver_name, route_name, vehicle_plate, seats, status, created_at, started_at, completed_at
		FROM trips
		WHERE id = $1`

	err := r.db.GetContext(ctx, &trip, query, tripID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trips.ErrTripNotFound
		}
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}

	return &trip, nil
}

// UpdateTripStatus transitions a trip from one status to another. The guard
// on the previous status makes concurrent transitions race-safe: only one
// caller observes a row change.
func (r *TripRepo) UpdateTripStatus(ctx context.Context, tripID int64, from, to models.TripStatus) (*models.Trip, error) {
	var stampColumn string
	switch to {
	case models.TripStatusInProgress:
		stampColumn = "started_at"
	case models.TripStatusCompleted, models.TripStatusCancelled:
		stampColumn = "completed_at"
	}

	query := `UPDATE trips SET status = $1`
	args := []interface{}{to}
	if stampColumn != "" {
		query += fmt.Sprintf(", %s = $2 WHERE id = $3 AND status = $4", stampColumn)
		args = append(args, time.Now(), tripID, from)
	} else {
		query += ` WHERE id = $2 AND status = $3`
		args = append(args, tripID, from)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update trip status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		// Either the trip is missing or its status changed under us.
		if _, err := r.GetTrip(ctx, tripID); err != nil {
			return nil, err
		}
		return nil, trips.ErrInvalidTransition
	}

	return r.GetTrip(ctx, tripID)
}

// ListActiveTrips returns all trips currently in progress
func (r *TripRepo) ListActiveTrips(ctx context.Context) ([]*models.Trip, error) {
	var result []*models.Trip
	query := `
		SELECT id, driver_id, driver_name, route_name, vehicle_plate, seats, status, created_at, started_at, completed_at
		FROM trips
		WHERE status = $1
		ORDER BY started_at DESC`

	if err := r.db.SelectContext(ctx, &result, query, models.TripStatusInProgress); err != nil {
		return nil, fmt.Errorf("failed to list active trips: %w", err)
	}

	return result, nil
}
