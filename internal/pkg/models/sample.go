package models

import (
	"encoding/json"
	"errors"
	"time"
)

// LocationSample is one instantaneous position report for an active trip.
// It is the wire unit of the relay: drivers produce them, subscribers
// consume them. The relay keeps only the most recent sample per trip.
type LocationSample struct {
	TripID     int64    `json:"trip_id"`
	DriverName string   `json:"driver_name"`
	Latitude   float64  `json:"lat"`
	Longitude  float64  `json:"lon"`
	SpeedKmh   *float64 `json:"speed,omitempty"`
}

// ErrorNotice is the error payload pushed over a live connection. Any
// message carrying an "error" key is a notice, never a sample.
type ErrorNotice struct {
	Error string `json:"error"`
}

var (
	// ErrMalformedSample indicates the payload is not valid JSON.
	ErrMalformedSample = errors.New("malformed location sample")
	// ErrMissingCoordinates indicates lat/lon are absent from the payload.
	ErrMissingCoordinates = errors.New("location sample missing coordinates")
)

// EncodeSample serializes a sample to its wire form.
func EncodeSample(s *LocationSample) ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSample parses a wire payload into a LocationSample. Callers must
// check IsErrorNotice first; an error notice is not a decode failure here,
// it is a different message kind.
func DecodeSample(data []byte) (*LocationSample, error) {
	var raw struct {
		TripID     *int64   `json:"trip_id"`
		TravelID   *int64   `json:"travel_id"`
		DriverName string   `json:"driver_name"`
		Latitude   *float64 `json:"lat"`
		Longitude  *float64 `json:"lon"`
		SpeedKmh   *float64 `json:"speed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, ErrMalformedSample
	}
	if raw.Latitude == nil || raw.Longitude == nil {
		return nil, ErrMissingCoordinates
	}

	sample := &LocationSample{
		DriverName: raw.DriverName,
		Latitude:   *raw.Latitude,
		Longitude:  *raw.Longitude,
		SpeedKmh:   raw.SpeedKmh,
	}
	// Older driver builds send travel_id instead of trip_id.
	switch {
	case raw.TripID != nil:
		sample.TripID = *raw.TripID
	case raw.TravelID != nil:
		sample.TripID = *raw.TravelID
	}
	return sample, nil
}

// DecodeErrorNotice extracts the server-pushed error notice, if the payload
// carries one.
func DecodeErrorNotice(data []byte) (*ErrorNotice, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, false
	}
	raw, ok := probe["error"]
	if !ok {
		return nil, false
	}
	var notice ErrorNotice
	if err := json.Unmarshal(raw, &notice.Error); err != nil {
		return nil, false
	}
	return &notice, true
}

// IsErrorNotice reports whether the payload is an error notice rather than
// a sample.
func IsErrorNotice(data []byte) bool {
	_, ok := DecodeErrorNotice(data)
	return ok
}

// VehicleRecord is a viewer-side cache entry for one observed trip.
type VehicleRecord struct {
	TripID     int64     `json:"trip_id"`
	DriverName string    `json:"driver_name"`
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lon"`
	SpeedKmh   *float64  `json:"speed,omitempty"`
	LastUpdate time.Time `json:"last_update"`
}
