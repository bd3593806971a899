package registry

import (
	"errors"
	"sync"

	"github.com/uwayapp/uway/internal/pkg/logger"
	"github.com/uwayapp/uway/internal/pkg/models"
)

// Publisher is the handle the registry keeps for a trip's active publisher.
// The registry closes a publisher when a newer one takes over its trip.
type Publisher interface {
	Close()
}

// Subscriber receives relayed frames. TrySend must never block: it reports
// false when the frame could not be queued (slow or closed subscriber) and
// the registry moves on.
type Subscriber interface {
	TrySend(frame []byte) bool
}

// ErrSuperseded is returned from Publish when the publishing session is no
// longer the trip's registered publisher. Not an error condition for the
// new publisher; the stale session must stop.
var ErrSuperseded = errors.New("publisher superseded for trip")

// tripChannel is the per-trip bookkeeping: the current publisher and the
// last relayed sample, kept for late-joining subscribers' initial paint.
type tripChannel struct {
	tripID int64

	mu        sync.Mutex
	publisher Publisher
	lastFrame []byte
	last      *models.LocationSample
}

// Registry is the process-wide fan-out state. Channel registration and the
// subscriber set use separate locks from per-trip relaying so a slow
// subscriber on one trip never stalls registration or other trips.
type Registry struct {
	mu       sync.RWMutex
	channels map[int64]*tripChannel

	subMu       sync.RWMutex
	subscribers map[Subscriber]struct{}
}

// New creates an empty registry
func New() *Registry {
	return &Registry{
		channels:    make(map[int64]*tripChannel),
		subscribers: make(map[Subscriber]struct{}),
	}
}

func (r *Registry) channel(tripID int64) *tripChannel {
	r.mu.RLock()
	ch, ok := r.channels[tripID]
	r.mu.RUnlock()
	if ok {
		return ch
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok = r.channels[tripID]; ok {
		return ch
	}
	ch = &tripChannel{tripID: tripID}
	r.channels[tripID] = ch
	return ch
}

// RegisterPublisher installs session as the trip's publisher. At most one
// publisher is live per trip: a previously registered session is closed and
// returned (last-writer-wins).
func (r *Registry) RegisterPublisher(tripID int64, session Publisher) Publisher {
	ch := r.channel(tripID)

	ch.mu.Lock()
	old := ch.publisher
	ch.publisher = session
	ch.mu.Unlock()

	if old != nil && old != session {
		logger.Info("Publisher superseded", logger.Int64("trip_id", tripID))
		old.Close()
	}
	return old
}

// ClearPublisherIfCurrent removes session from the trip's publisher slot only
// if it is still the registered one. A stale session tearing down must not
// clear a newer session's slot.
func (r *Registry) ClearPublisherIfCurrent(tripID int64, session Publisher) bool {
	r.mu.RLock()
	ch, ok := r.channels[tripID]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.publisher != session {
		return false
	}
	ch.publisher = nil
	return true
}

// CurrentPublisher returns the trip's registered publisher, if any
func (r *Registry) CurrentPublisher(tripID int64) Publisher {
	r.mu.RLock()
	ch, ok := r.channels[tripID]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.publisher
}

// Publish relays a sample from session to every connected subscriber.
// Delivery is best-effort, at-most-once per subscriber; failed sends are
// skipped, never retried. Samples for one trip are relayed in arrival order;
// no order is defined across trips. Returns ErrSuperseded when session is no
// longer the trip's publisher, in which case nothing is relayed.
func (r *Registry) Publish(session Publisher, sample *models.LocationSample) error {
	frame, err := models.EncodeSample(sample)
	if err != nil {
		return err
	}

	ch := r.channel(sample.TripID)

	// The channel lock is held across the fan-out so same-trip samples
	// reach each subscriber queue in FIFO order. TrySend never blocks, so
	// the hold time is bounded.
	ch.mu.Lock()
	defer ch.mu.Unlock()

	if ch.publisher != session {
		return ErrSuperseded
	}
	ch.last = sample
	ch.lastFrame = frame

	r.subMu.RLock()
	for sub := range r.subscribers {
		if !sub.TrySend(frame) {
			logger.Debug("Dropped sample for slow subscriber",
				logger.Int64("trip_id", sample.TripID))
		}
	}
	r.subMu.RUnlock()

	return nil
}

// RegisterSubscriber pushes the last known sample of every live trip so a
// late joiner can paint immediately, then adds session to the broadcast
// feed. The snapshot goes first: a frame the snapshot already captured has
// finished its fan-out, so session cannot receive it a second time from a
// concurrent Publish. A sample published in the gap is missed, which the
// best-effort delivery contract allows.
func (r *Registry) RegisterSubscriber(session Subscriber) {
	for _, frame := range r.snapshotFrames() {
		session.TrySend(frame)
	}

	r.subMu.Lock()
	r.subscribers[session] = struct{}{}
	r.subMu.Unlock()
}

// DeregisterSubscriber removes session from the feed. Deregistering a
// session that is not registered is a no-op.
func (r *Registry) DeregisterSubscriber(session Subscriber) {
	r.subMu.Lock()
	delete(r.subscribers, session)
	r.subMu.Unlock()
}

// RemoveChannel destroys a trip's channel, closing its publisher if one is
// still connected. Driven by the trip-completion event.
func (r *Registry) RemoveChannel(tripID int64) {
	r.mu.Lock()
	ch, ok := r.channels[tripID]
	if ok {
		delete(r.channels, tripID)
	}
	r.mu.Unlock()
	if !ok {
		return
	}

	ch.mu.Lock()
	pub := ch.publisher
	ch.publisher = nil
	ch.mu.Unlock()

	if pub != nil {
		pub.Close()
	}
	logger.Info("Trip channel removed", logger.Int64("trip_id", tripID))
}

// LastSample returns the most recently relayed sample for a trip
func (r *Registry) LastSample(tripID int64) (*models.LocationSample, bool) {
	r.mu.RLock()
	ch, ok := r.channels[tripID]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.last == nil {
		return nil, false
	}
	return ch.last, true
}

// SubscriberCount returns the number of connected subscribers
func (r *Registry) SubscriberCount() int {
	r.subMu.RLock()
	defer r.subMu.RUnlock()
	return len(r.subscribers)
}

func (r *Registry) snapshotFrames() [][]byte {
	r.mu.RLock()
	channels := make([]*tripChannel, 0, len(r.channels))
	for _, ch := range r.channels {
		channels = append(channels, ch)
	}
	r.mu.RUnlock()

	frames := make([][]byte, 0, len(channels))
	for _, ch := range channels {
		ch.mu.Lock()
		if ch.lastFrame != nil {
			frames = append(frames, ch.lastFrame)
		}
		ch.mu.Unlock()
	}
	return frames
}
