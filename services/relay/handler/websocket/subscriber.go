package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/uwayapp/uway/internal/pkg/logger"
	"github.com/uwayapp/uway/internal/pkg/models"
	"github.com/uwayapp/uway/services/relay/registry"
)

// SubscriberSession is the server-side handle for one viewer's connection.
// Every subscriber receives every trip's samples; filtering happens on the
// client. Frames are pushed through a bounded queue drained by a single
// write pump so arrival order is preserved; when the queue is full the frame
// is dropped for this subscriber only.
type SubscriberSession struct {
	identity *models.Identity
	conn     *websocket.Conn
	registry *registry.Registry

	send         chan []byte
	done         chan struct{}
	writeTimeout time.Duration

	state     atomic.Int32
	closeOnce sync.Once
}

// NewSubscriberSession creates a session for an admitted subscriber connection
func NewSubscriberSession(identity *models.Identity, conn *websocket.Conn, reg *registry.Registry, bufferSize int, writeTimeout time.Duration) *SubscriberSession {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	s := &SubscriberSession{
		identity:     identity,
		conn:         conn,
		registry:     reg,
		send:         make(chan []byte, bufferSize),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
	}
	s.state.Store(int32(StateConnecting))
	return s
}

// State returns the session's current lifecycle state
func (s *SubscriberSession) State() SessionState {
	return SessionState(s.state.Load())
}

// TrySend queues a frame for delivery. Never blocks; reports false when the
// session is closed or its queue is full.
func (s *SubscriberSession) TrySend(frame []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}

	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

// Run pumps queued frames to the connection and watches the read side for
// close. Blocks until the transport closes, then deregisters. Deregistering
// twice is harmless.
func (s *SubscriberSession) Run() {
	s.state.Store(int32(StateOpen))
	logger.Info("Subscriber session open",
		logger.String("user_id", s.identity.UserID))

	go s.writePump()

	// Inbound frames from subscribers are not part of the protocol; the
	// read loop exists to observe transport close.
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			break
		}
	}

	s.registry.DeregisterSubscriber(s)
	s.Close()
	s.state.Store(int32(StateClosed))
	logger.Info("Subscriber session closed",
		logger.String("user_id", s.identity.UserID))
}

func (s *SubscriberSession) writePump() {
	for {
		select {
		case frame := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// Close terminates the connection and stops the write pump
func (s *SubscriberSession) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}
