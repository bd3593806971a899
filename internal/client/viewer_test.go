package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uwayapp/uway/internal/pkg/constants"
	"github.com/uwayapp/uway/internal/pkg/models"
)

// feedServer serves /ws/subscribe, pushes the configured frames on each new
// connection and then closes it.
type feedServer struct {
	server *httptest.Server
	frames [][]byte

	mu        sync.Mutex
	dials     int
	dialTimes []time.Time
}

func newFeedServer(t *testing.T, frames [][]byte) *feedServer {
	t.Helper()
	fs := &feedServer{frames: frames}
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

	fs.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/subscribe" {
			http.NotFound(w, r)
			return
		}
		fs.mu.Lock()
		fs.dials++
		fs.dialTimes = append(fs.dialTimes, time.Now())
		fs.mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for _, frame := range fs.frames {
			conn.WriteMessage(websocket.TextMessage, frame)
		}
		conn.Close()
	}))
	t.Cleanup(fs.server.Close)
	return fs
}

func (fs *feedServer) url() string {
	return "ws" + strings.TrimPrefix(fs.server.URL, "http")
}

func (fs *feedServer) dialCount() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.dials
}

func (fs *feedServer) dialTimestamps() []time.Time {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]time.Time(nil), fs.dialTimes...)
}

func mustEncode(t *testing.T, sample *models.LocationSample) []byte {
	t.Helper()
	data, err := models.EncodeSample(sample)
	require.NoError(t, err)
	return data
}

func TestViewerSubscriber_ConsumesSamplesIntoCache(t *testing.T) {
	server := newFeedServer(t, [][]byte{
		mustEncode(t, &models.LocationSample{TripID: 1, DriverName: "Budi", Latitude: -6.2, Longitude: 106.8}),
		mustEncode(t, &models.LocationSample{TripID: 2, DriverName: "Sari", Latitude: -6.3, Longitude: 106.9}),
	})

	cache := NewVehicleCache()
	viewer := NewViewerSubscriber(ViewerConfig{
		ServerURL:         server.url(),
		Token:             "test-token",
		ReconnectInterval: time.Hour,
	}, cache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go viewer.Run(ctx)

	waitFor(t, func() bool { return cache.Len() == 2 })

	record, ok := cache.Get(1)
	require.True(t, ok)
	assert.Equal(t, "Budi", record.DriverName)
}

func TestViewerSubscriber_ReconnectsAfterDrop(t *testing.T) {
	server := newFeedServer(t, [][]byte{
		mustEncode(t, &models.LocationSample{TripID: 1, Latitude: -6.2, Longitude: 106.8}),
	})

	var mu sync.Mutex
	var statuses []string

	viewer := NewViewerSubscriber(ViewerConfig{
		ServerURL:         server.url(),
		Token:             "test-token",
		ReconnectInterval: 20 * time.Millisecond,
		OnStatus: func(status string) {
			mu.Lock()
			statuses = append(statuses, status)
			mu.Unlock()
		},
	}, NewVehicleCache())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go viewer.Run(ctx)

	// The server closes every connection after pushing its frames, so the
	// viewer must come back on its own. One new connection per drop.
	waitFor(t, func() bool { return server.dialCount() >= 3 })

	// Each retry waits out the full interval first. No bursts: consecutive
	// dials are never closer together than the configured delay.
	times := server.dialTimestamps()
	require.GreaterOrEqual(t, len(times), 3)
	for i := 1; i < len(times); i++ {
		assert.GreaterOrEqual(t, times[i].Sub(times[i-1]), 20*time.Millisecond,
			"dial %d arrived before the reconnect delay elapsed", i+1)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, statuses, constants.StatusConnecting)
	assert.Contains(t, statuses, constants.StatusConnected)
	assert.Contains(t, statuses, constants.StatusDisconnected)
}

func TestViewerSubscriber_IgnoresBadFramesAndNotices(t *testing.T) {
	server := newFeedServer(t, [][]byte{
		[]byte(`{"error":"internal_error"}`),
		[]byte(`not json at all`),
		[]byte(`{"trip_id":1,"driver_name":"Budi"}`),
		mustEncode(t, &models.LocationSample{TripID: 5, DriverName: "Sari", Latitude: -6.3, Longitude: 106.9}),
	})

	cache := NewVehicleCache()
	viewer := NewViewerSubscriber(ViewerConfig{
		ServerURL:         server.url(),
		Token:             "test-token",
		ReconnectInterval: time.Hour,
	}, cache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go viewer.Run(ctx)

	waitFor(t, func() bool { return cache.Len() == 1 })

	_, ok := cache.Get(5)
	assert.True(t, ok, "only the well-formed sample lands in the cache")
}

func TestViewerSubscriber_StopsOnContextCancel(t *testing.T) {
	server := newFeedServer(t, nil)

	viewer := NewViewerSubscriber(ViewerConfig{
		ServerURL:         server.url(),
		Token:             "test-token",
		ReconnectInterval: 10 * time.Millisecond,
	}, NewVehicleCache())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		viewer.Run(ctx)
		close(done)
	}()

	waitFor(t, func() bool { return server.dialCount() >= 1 })
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("viewer did not stop after context cancellation")
	}
}
