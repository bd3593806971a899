package models

// Identity is the authenticated principal behind a live connection,
// resolved from the bearer token at connection-open time.
type Identity struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"` // "driver" or "viewer"
}

// LocationUpdateEvent mirrors a relayed sample onto NATS so services that
// do not hold a WebSocket (billing, analytics) can consume the stream.
type LocationUpdateEvent struct {
	TripID     int64    `json:"trip_id"`
	DriverName string   `json:"driver_name"`
	Latitude   float64  `json:"lat"`
	Longitude  float64  `json:"lon"`
	SpeedKmh   *float64 `json:"speed,omitempty"`
}
