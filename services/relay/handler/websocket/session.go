package websocket

// SessionState is the lifecycle state of a live connection's server-side
// session. Transitions are driven by inbound events only: authentication
// outcome, inbound frames, and transport close.
type SessionState int32

const (
	// StateConnecting means authentication/upgrade is in flight
	StateConnecting SessionState = iota
	// StateOpen means the session accepts and relays messages
	StateOpen
	// StateClosed means the transport closed and the session deregistered
	StateClosed
	// StateError is the terminal state after an auth or transport failure
	StateError
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}
