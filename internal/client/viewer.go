package client

import (
	"context"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/uwayapp/uway/internal/pkg/constants"
	"github.com/uwayapp/uway/internal/pkg/logger"
	"github.com/uwayapp/uway/internal/pkg/models"
)

// ViewerConfig configures a ViewerSubscriber
type ViewerConfig struct {
	ServerURL string // ws://host:port
	Token     string

	ReconnectInterval  time.Duration
	StalenessSweep     time.Duration
	StalenessThreshold time.Duration

	// OnStatus is invoked on every connection state change with one of the
	// constants.Status* values. Optional.
	OnStatus func(status string)
	// OnSample is invoked for every accepted sample. Optional.
	OnSample func(record *models.VehicleRecord)
	// OnEvict is invoked for every trip dropped by the staleness sweep.
	// Optional.
	OnEvict func(tripID int64)
}

// ViewerSubscriber maintains a subscriber connection to the relay and keeps
// the vehicle cache current. A dropped connection is retried at a fixed
// interval for as long as the context lives.
type ViewerSubscriber struct {
	cfg    ViewerConfig
	cache  *VehicleCache
	dialer *websocket.Dialer
}

// NewViewerSubscriber creates a viewer client around the given cache
func NewViewerSubscriber(cfg ViewerConfig, cache *VehicleCache) *ViewerSubscriber {
	if cfg.ReconnectInterval <= 0 {
		cfg.ReconnectInterval = 5 * time.Second
	}
	if cfg.StalenessSweep <= 0 {
		cfg.StalenessSweep = 30 * time.Second
	}
	if cfg.StalenessThreshold <= 0 {
		cfg.StalenessThreshold = 60 * time.Second
	}
	return &ViewerSubscriber{
		cfg:    cfg,
		cache:  cache,
		dialer: websocket.DefaultDialer,
	}
}

// Cache returns the vehicle cache the subscriber is feeding
func (v *ViewerSubscriber) Cache() *VehicleCache {
	return v.cache
}

// Run connects and consumes samples until the context is cancelled. It
// blocks; run it in its own goroutine.
func (v *ViewerSubscriber) Run(ctx context.Context) {
	sweeper := time.NewTicker(v.cfg.StalenessSweep)
	defer sweeper.Stop()
	go v.sweepLoop(ctx, sweeper)

	for {
		if ctx.Err() != nil {
			return
		}

		v.notifyStatus(constants.StatusConnecting)
		conn, err := v.dial(ctx)
		if err != nil {
			v.notifyStatus(constants.StatusError)
			logger.Warn("viewer connect failed", logger.Err(err))
			if !v.sleep(ctx) {
				return
			}
			continue
		}

		v.notifyStatus(constants.StatusConnected)
		v.readLoop(ctx, conn)
		conn.Close()
		v.notifyStatus(constants.StatusDisconnected)

		if !v.sleep(ctx) {
			return
		}
	}
}

func (v *ViewerSubscriber) dial(ctx context.Context) (*websocket.Conn, error) {
	u, err := url.Parse(v.cfg.ServerURL + "/ws/subscribe")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("token", v.cfg.Token)
	u.RawQuery = q.Encode()

	conn, _, err := v.dialer.DialContext(ctx, u.String(), nil)
	return conn, err
}

func (v *ViewerSubscriber) readLoop(ctx context.Context, conn *websocket.Conn) {
	// Unblock the read when the context dies.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		v.handleMessage(data)
	}
}

func (v *ViewerSubscriber) handleMessage(data []byte) {
	if notice, ok := models.DecodeErrorNotice(data); ok {
		logger.Warn("server error notice", logger.String("error", notice.Error))
		return
	}

	sample, err := models.DecodeSample(data)
	if err != nil {
		logger.Warn("dropping undecodable frame", logger.Err(err))
		return
	}

	v.cache.Upsert(sample)
	if v.cfg.OnSample != nil {
		record, ok := v.cache.Get(sample.TripID)
		if ok {
			v.cfg.OnSample(record)
		}
	}
}

func (v *ViewerSubscriber) sweepLoop(ctx context.Context, ticker *time.Ticker) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, tripID := range v.cache.Sweep(v.cfg.StalenessThreshold) {
				logger.Info("evicting stale vehicle", logger.Int64("trip_id", tripID))
				if v.cfg.OnEvict != nil {
					v.cfg.OnEvict(tripID)
				}
			}
		}
	}
}

func (v *ViewerSubscriber) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(v.cfg.ReconnectInterval):
		return true
	}
}

func (v *ViewerSubscriber) notifyStatus(status string) {
	if v.cfg.OnStatus != nil {
		v.cfg.OnStatus(status)
	}
}
