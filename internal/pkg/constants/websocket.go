package constants

// WebSocket connection status values reported by clients
const (
	StatusConnecting   = "connecting"
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
	StatusError        = "error"
)

// WebSocket admission error codes
const (
	ErrorMissingToken = "missing_token"
	ErrorInvalidToken = "invalid_token"
	ErrorForbidden    = "forbidden"
)

// WebSocket message error codes
const (
	ErrorInvalidFormat   = "invalid_format"
	ErrorInvalidLocation = "invalid_location"
	ErrorInternalError   = "internal_error"
)
