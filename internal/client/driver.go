package client

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/uwayapp/uway/internal/pkg/logger"
	"github.com/uwayapp/uway/internal/pkg/models"
	"github.com/uwayapp/uway/internal/utils"
)

// DriverConfig configures a DriverPublisher
type DriverConfig struct {
	ServerURL string // ws://host:port
	Token     string
	TripID    int64

	// SampleInterval is the minimum time between transmitted samples unless
	// movement forces one out earlier.
	SampleInterval time.Duration
	// SampleDistanceM is the movement in meters that forces an immediate
	// sample regardless of the interval.
	SampleDistanceM float64

	// OnErrorNotice is invoked when the server pushes an error notice on the
	// publish connection. Optional.
	OnErrorNotice func(notice *models.ErrorNotice)
}

// DriverPublisher streams location samples for one trip over a publisher
// connection. Offer gives it raw GPS fixes; it decides which ones are worth
// sending.
type DriverPublisher struct {
	cfg    DriverConfig
	dialer *websocket.Dialer

	mu       sync.Mutex
	conn     *websocket.Conn
	lastSent time.Time
	lastPos  *utils.GeoPoint

	now func() time.Time
}

// NewDriverPublisher creates a driver client
func NewDriverPublisher(cfg DriverConfig) *DriverPublisher {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 3 * time.Second
	}
	if cfg.SampleDistanceM <= 0 {
		cfg.SampleDistanceM = 5.0
	}
	return &DriverPublisher{
		cfg:    cfg,
		dialer: websocket.DefaultDialer,
		now:    time.Now,
	}
}

// Connect opens the publisher connection and starts watching for server
// notices. The server decides admission; a rejected upgrade surfaces here as
// a dial error.
func (d *DriverPublisher) Connect(ctx context.Context) error {
	u, err := url.Parse(fmt.Sprintf("%s/ws/publish/%d", d.cfg.ServerURL, d.cfg.TripID))
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("token", d.cfg.Token)
	u.RawQuery = q.Encode()

	conn, _, err := d.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to open publisher connection: %w", err)
	}

	d.mu.Lock()
	d.conn = conn
	d.mu.Unlock()

	go d.readLoop(conn)
	return nil
}

// Offer submits a GPS fix. It is sent only when the sample interval has
// elapsed or the vehicle moved far enough since the last transmission; the
// return value reports whether it went out.
func (d *DriverPublisher) Offer(sample *models.LocationSample) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return false, fmt.Errorf("publisher is not connected")
	}

	pos := &utils.GeoPoint{Latitude: sample.Latitude, Longitude: sample.Longitude}
	if !d.shouldSendLocked(pos) {
		return false, nil
	}

	sample.TripID = d.cfg.TripID
	data, err := models.EncodeSample(sample)
	if err != nil {
		return false, err
	}
	if err := d.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return false, fmt.Errorf("failed to send sample: %w", err)
	}

	d.lastSent = d.now()
	d.lastPos = pos
	return true, nil
}

func (d *DriverPublisher) shouldSendLocked(pos *utils.GeoPoint) bool {
	if d.lastPos == nil {
		return true
	}
	if d.now().Sub(d.lastSent) >= d.cfg.SampleInterval {
		return true
	}
	return utils.DistanceMeters(*d.lastPos, *pos) >= d.cfg.SampleDistanceM
}

// readLoop drains the connection so server notices and close frames are
// seen. The connection is per-call state; a new Connect replaces it.
func (d *DriverPublisher) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if notice, ok := models.DecodeErrorNotice(data); ok {
			logger.Warn("publisher error notice",
				logger.Int64("trip_id", d.cfg.TripID),
				logger.String("error", notice.Error))
			if d.cfg.OnErrorNotice != nil {
				d.cfg.OnErrorNotice(notice)
			}
		}
	}
}

// Close shuts the publisher connection down
func (d *DriverPublisher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}
	d.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	err := d.conn.Close()
	d.conn = nil
	return err
}
