package constants

// NATS Subjects
const (
	// Relay service
	SubjectLocationUpdate = "location.update"

	// Trip lifecycle
	SubjectTripStarted   = "trip.started"
	SubjectTripCompleted = "trip.completed"
	SubjectTripCancelled = "trip.cancelled"
)
