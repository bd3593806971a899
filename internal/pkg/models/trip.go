package models

import (
	"time"
)

// TripStatus represents the current status of a trip
type TripStatus string

const (
	TripStatusScheduled  TripStatus = "SCHEDULED"
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusCompleted  TripStatus = "COMPLETED"
	TripStatusCancelled  TripStatus = "CANCELLED"
)

// Trip represents one institutional ride-sharing trip
type Trip struct {
	ID           int64      `json:"id" db:"id"`
	DriverID     string     `json:"driver_id" db:"driver_id"`
	DriverName   string     `json:"driver_name" db:"driver_name"`
	RouteName    string     `json:"route_name" db:"route_name"`
	VehiclePlate string     `json:"vehicle_plate" db:"vehicle_plate"`
	Seats        int        `json:"seats" db:"seats"`
	Status       TripStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// TripEvent is the lifecycle event published on NATS when a trip changes
// state. The relay consumes trip.completed to tear down the trip's channel.
type TripEvent struct {
	TripID    int64      `json:"trip_id"`
	DriverID  string     `json:"driver_id"`
	Status    TripStatus `json:"status"`
	Timestamp time.Time  `json:"timestamp"`
}

// CreateTripRequest is the payload for registering a new trip
type CreateTripRequest struct {
	RouteName    string `json:"route_name"`
	VehiclePlate string `json:"vehicle_plate"`
	Seats        int    `json:"seats"`
}
