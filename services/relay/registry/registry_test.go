package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwayapp/uway/internal/pkg/models"
)

// fakePublisher records whether the registry closed it
type fakePublisher struct {
	mu     sync.Mutex
	closed bool
}

func (p *fakePublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *fakePublisher) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

// fakeSubscriber collects every frame it is offered
type fakeSubscriber struct {
	mu     sync.Mutex
	frames [][]byte
	full   bool
}

func (s *fakeSubscriber) TrySend(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return false
	}
	s.frames = append(s.frames, frame)
	return true
}

func (s *fakeSubscriber) received() []*models.LocationSample {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*models.LocationSample, 0, len(s.frames))
	for _, frame := range s.frames {
		sample, err := models.DecodeSample(frame)
		if err != nil {
			continue
		}
		result = append(result, sample)
	}
	return result
}

func sampleFor(tripID int64, lat float64) *models.LocationSample {
	return &models.LocationSample{
		TripID:     tripID,
		DriverName: "Budi",
		Latitude:   lat,
		Longitude:  106.8456,
	}
}

func TestPublish_DeliversToAllSubscribers(t *testing.T) {
	reg := New()
	pub := &fakePublisher{}
	reg.RegisterPublisher(1, pub)

	sub1 := &fakeSubscriber{}
	sub2 := &fakeSubscriber{}
	reg.RegisterSubscriber(sub1)
	reg.RegisterSubscriber(sub2)

	require.NoError(t, reg.Publish(pub, sampleFor(1, -6.20)))

	assert.Len(t, sub1.received(), 1)
	assert.Len(t, sub2.received(), 1)
}

func TestPublish_PreservesPerTripOrder(t *testing.T) {
	reg := New()
	pub := &fakePublisher{}
	reg.RegisterPublisher(1, pub)

	sub := &fakeSubscriber{}
	reg.RegisterSubscriber(sub)

	for i := 0; i < 50; i++ {
		require.NoError(t, reg.Publish(pub, sampleFor(1, float64(i))))
	}

	got := sub.received()
	require.Len(t, got, 50)
	for i, sample := range got {
		assert.Equal(t, float64(i), sample.Latitude, "sample %d out of order", i)
	}
}

func TestPublish_SlowSubscriberDoesNotAffectOthers(t *testing.T) {
	reg := New()
	pub := &fakePublisher{}
	reg.RegisterPublisher(1, pub)

	slow := &fakeSubscriber{full: true}
	healthy := &fakeSubscriber{}
	reg.RegisterSubscriber(slow)
	reg.RegisterSubscriber(healthy)

	require.NoError(t, reg.Publish(pub, sampleFor(1, -6.20)))
	require.NoError(t, reg.Publish(pub, sampleFor(1, -6.21)))

	assert.Empty(t, slow.received())
	assert.Len(t, healthy.received(), 2)
}

func TestRegisterPublisher_ReplacesAndClosesOld(t *testing.T) {
	reg := New()
	first := &fakePublisher{}
	second := &fakePublisher{}

	old := reg.RegisterPublisher(1, first)
	assert.Nil(t, old)

	old = reg.RegisterPublisher(1, second)
	assert.Same(t, first, old)
	assert.True(t, first.isClosed())
	assert.False(t, second.isClosed())
	assert.Same(t, second, reg.CurrentPublisher(1))
}

func TestPublish_SupersededPublisherIsRejected(t *testing.T) {
	reg := New()
	first := &fakePublisher{}
	second := &fakePublisher{}
	sub := &fakeSubscriber{}

	reg.RegisterPublisher(1, first)
	reg.RegisterSubscriber(sub)
	reg.RegisterPublisher(1, second)

	err := reg.Publish(first, sampleFor(1, -6.20))
	assert.ErrorIs(t, err, ErrSuperseded)
	assert.Empty(t, sub.received(), "frames from a stale publisher must not reach subscribers")

	require.NoError(t, reg.Publish(second, sampleFor(1, -6.21)))
	assert.Len(t, sub.received(), 1)
}

func TestClearPublisherIfCurrent(t *testing.T) {
	reg := New()
	first := &fakePublisher{}
	second := &fakePublisher{}

	reg.RegisterPublisher(1, first)
	reg.RegisterPublisher(1, second)

	// A stale session tearing down must not clear the new publisher.
	assert.False(t, reg.ClearPublisherIfCurrent(1, first))
	assert.Same(t, second, reg.CurrentPublisher(1))

	assert.True(t, reg.ClearPublisherIfCurrent(1, second))
	assert.Nil(t, reg.CurrentPublisher(1))
}

func TestDeregisterSubscriber_IsIdempotent(t *testing.T) {
	reg := New()
	sub := &fakeSubscriber{}

	reg.RegisterSubscriber(sub)
	assert.Equal(t, 1, reg.SubscriberCount())

	reg.DeregisterSubscriber(sub)
	reg.DeregisterSubscriber(sub)
	assert.Equal(t, 0, reg.SubscriberCount())

	// Deregistering a session that never registered is a no-op too.
	reg.DeregisterSubscriber(&fakeSubscriber{})
	assert.Equal(t, 0, reg.SubscriberCount())
}

func TestDeregisteredSubscriberReceivesNothing(t *testing.T) {
	reg := New()
	pub := &fakePublisher{}
	sub := &fakeSubscriber{}

	reg.RegisterPublisher(1, pub)
	reg.RegisterSubscriber(sub)
	reg.DeregisterSubscriber(sub)

	require.NoError(t, reg.Publish(pub, sampleFor(1, -6.20)))
	assert.Empty(t, sub.received())
}

func TestRegisterSubscriber_LateJoinerGetsSnapshot(t *testing.T) {
	reg := New()
	pub1 := &fakePublisher{}
	pub2 := &fakePublisher{}
	reg.RegisterPublisher(1, pub1)
	reg.RegisterPublisher(2, pub2)

	require.NoError(t, reg.Publish(pub1, sampleFor(1, -6.20)))
	require.NoError(t, reg.Publish(pub1, sampleFor(1, -6.25)))
	require.NoError(t, reg.Publish(pub2, sampleFor(2, -6.30)))

	late := &fakeSubscriber{}
	reg.RegisterSubscriber(late)

	got := late.received()
	require.Len(t, got, 2, "one frame per live trip, not the full history")

	byTrip := make(map[int64]*models.LocationSample)
	for _, sample := range got {
		byTrip[sample.TripID] = sample
	}
	assert.Equal(t, -6.25, byTrip[1].Latitude, "must be the latest sample")
	assert.Equal(t, -6.30, byTrip[2].Latitude)
}

func TestRegisterSubscriber_RacingPublishNeverDuplicates(t *testing.T) {
	reg := New()
	pub := &fakePublisher{}
	reg.RegisterPublisher(9, pub)
	require.NoError(t, reg.Publish(pub, sampleFor(9, 0)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 200; i++ {
			if err := reg.Publish(pub, sampleFor(9, float64(i))); err != nil {
				t.Errorf("publish %d: %v", i, err)
				return
			}
		}
	}()

	// Subscribers joining mid-stream get one snapshot frame plus the live
	// feed. Every latitude is unique, so a repeat or a step backwards means
	// a frame arrived twice.
	subs := make([]*fakeSubscriber, 10)
	for i := range subs {
		subs[i] = &fakeSubscriber{}
		reg.RegisterSubscriber(subs[i])
	}
	<-done

	for i, sub := range subs {
		prev := -1.0
		for _, sample := range sub.received() {
			require.Greater(t, sample.Latitude, prev, "subscriber %d saw a duplicate frame", i)
			prev = sample.Latitude
		}
	}
}

func TestRemoveChannel_ClosesPublisherAndDropsState(t *testing.T) {
	reg := New()
	pub := &fakePublisher{}
	reg.RegisterPublisher(1, pub)
	require.NoError(t, reg.Publish(pub, sampleFor(1, -6.20)))

	reg.RemoveChannel(1)

	assert.True(t, pub.isClosed())
	_, ok := reg.LastSample(1)
	assert.False(t, ok)

	// Removing an unknown trip is a no-op.
	reg.RemoveChannel(42)
}

func TestLastSample(t *testing.T) {
	reg := New()
	pub := &fakePublisher{}
	reg.RegisterPublisher(7, pub)

	_, ok := reg.LastSample(7)
	assert.False(t, ok)

	require.NoError(t, reg.Publish(pub, sampleFor(7, -6.20)))
	last, ok := reg.LastSample(7)
	require.True(t, ok)
	assert.Equal(t, int64(7), last.TripID)
	assert.Equal(t, -6.20, last.Latitude)
}

func TestPublish_ConcurrentTripsDoNotInterleaveState(t *testing.T) {
	reg := New()
	sub := &fakeSubscriber{}
	reg.RegisterSubscriber(sub)

	const trips = 8
	const samplesPerTrip = 25

	publishers := make([]*fakePublisher, trips)
	for i := range publishers {
		publishers[i] = &fakePublisher{}
		reg.RegisterPublisher(int64(i+1), publishers[i])
	}

	var wg sync.WaitGroup
	for i := 0; i < trips; i++ {
		wg.Add(1)
		go func(tripIdx int) {
			defer wg.Done()
			tripID := int64(tripIdx + 1)
			for j := 0; j < samplesPerTrip; j++ {
				err := reg.Publish(publishers[tripIdx], sampleFor(tripID, float64(j)))
				if err != nil {
					t.Errorf("publish trip %d: %v", tripID, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	got := sub.received()
	require.Len(t, got, trips*samplesPerTrip)

	// Per-trip order must hold even though trips interleave arbitrarily.
	perTrip := make(map[int64][]float64)
	for _, sample := range got {
		perTrip[sample.TripID] = append(perTrip[sample.TripID], sample.Latitude)
	}
	for tripID, lats := range perTrip {
		require.Len(t, lats, samplesPerTrip, "trip %d", tripID)
		for j, lat := range lats {
			assert.Equal(t, float64(j), lat, fmt.Sprintf("trip %d sample %d", tripID, j))
		}
	}
}
