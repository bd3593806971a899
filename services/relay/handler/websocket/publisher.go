package websocket

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/uwayapp/uway/internal/pkg/logger"
	"github.com/uwayapp/uway/internal/pkg/models"
	wspkg "github.com/uwayapp/uway/internal/pkg/websocket"
	"github.com/uwayapp/uway/services/relay"
	"github.com/uwayapp/uway/services/relay/registry"
)

// PublisherSession is the server-side handle for one driver's live,
// trip-scoped connection. The trip id is bound at admission; a trip id
// inside an inbound payload is never trusted over it.
type PublisherSession struct {
	tripID   int64
	identity *models.Identity
	conn     *websocket.Conn
	relayUC  relay.RelayUC
	registry *registry.Registry

	writeTimeout time.Duration

	state     atomic.Int32
	closeOnce sync.Once
	writeMu   sync.Mutex
}

// NewPublisherSession creates a session for an admitted publisher connection
func NewPublisherSession(tripID int64, identity *models.Identity, conn *websocket.Conn, relayUC relay.RelayUC, reg *registry.Registry, writeTimeout time.Duration) *PublisherSession {
	s := &PublisherSession{
		tripID:       tripID,
		identity:     identity,
		conn:         conn,
		relayUC:      relayUC,
		registry:     reg,
		writeTimeout: writeTimeout,
	}
	s.state.Store(int32(StateConnecting))
	return s
}

// TripID returns the trip this session publishes for
func (s *PublisherSession) TripID() int64 {
	return s.tripID
}

// State returns the session's current lifecycle state
func (s *PublisherSession) State() SessionState {
	return SessionState(s.state.Load())
}

// Run reads inbound samples until the transport closes, then clears the
// session from the registry if it is still the trip's current publisher.
func (s *PublisherSession) Run(ctx context.Context) {
	s.state.Store(int32(StateOpen))
	logger.Info("Publisher session open",
		logger.Int64("trip_id", s.tripID),
		logger.String("user_id", s.identity.UserID))

	defer func() {
		if s.registry.ClearPublisherIfCurrent(s.tripID, s) {
			logger.Info("Publisher session cleared",
				logger.Int64("trip_id", s.tripID))
		}
		s.Close()
		if SessionState(s.state.Load()) != StateError {
			s.state.Store(int32(StateClosed))
		}
	}()

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.Warn("Publisher read error",
					logger.Int64("trip_id", s.tripID),
					logger.Err(err))
				s.state.Store(int32(StateError))
			}
			return
		}

		if err := s.handleMessage(ctx, msg); err != nil {
			// Only a superseded publisher terminates the loop; a bad
			// payload never costs the connection.
			if errors.Is(err, registry.ErrSuperseded) {
				return
			}
		}
	}
}

func (s *PublisherSession) handleMessage(ctx context.Context, msg []byte) error {
	if models.IsErrorNotice(msg) {
		return nil
	}

	sample, err := models.DecodeSample(msg)
	if err != nil {
		logger.Warn("Dropping malformed sample",
			logger.Int64("trip_id", s.tripID),
			logger.Err(err))
		s.writeErrorNotice(err.Error())
		return nil
	}

	// The session-bound trip id is authoritative.
	sample.TripID = s.tripID
	if sample.DriverName == "" {
		sample.DriverName = s.identity.Name
	}

	if err := s.relayUC.RelaySample(ctx, s, sample); err != nil {
		if errors.Is(err, registry.ErrSuperseded) {
			logger.Info("Publisher superseded, closing session",
				logger.Int64("trip_id", s.tripID))
			return err
		}
		logger.Error("Failed to relay sample",
			logger.Int64("trip_id", s.tripID),
			logger.Err(err))
		return nil
	}

	// Echo the accepted sample back as an acknowledgement.
	s.writeSample(sample)
	return nil
}

func (s *PublisherSession) writeSample(sample *models.LocationSample) {
	frame, err := models.EncodeSample(sample)
	if err != nil {
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	_ = s.conn.WriteMessage(websocket.TextMessage, frame)
}

func (s *PublisherSession) writeErrorNotice(message string) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	_ = wspkg.WriteErrorNotice(s.conn, message)
}

// Close terminates the underlying connection. Called by the registry when a
// newer publisher takes over the trip; no error payload is sent because a
// takeover is an expected event, not a failure.
func (s *PublisherSession) Close() {
	s.closeOnce.Do(func() {
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
}
