package main

import (
	"context"
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uwayapp/uway/internal/client"
	"github.com/uwayapp/uway/internal/pkg/config"
	"github.com/uwayapp/uway/internal/pkg/jwt"
	"github.com/uwayapp/uway/internal/pkg/logger"
	"github.com/uwayapp/uway/internal/pkg/models"
)

// Simulates a driver circling a route and streaming position samples.
func main() {
	var (
		serverURL  = flag.String("server", "ws://localhost:9990", "relay server base URL")
		tripID     = flag.Int64("trip", 1, "trip id to publish for")
		driverID   = flag.String("driver", "driver-1", "driver user id")
		driverName = flag.String("name", "Budi", "driver display name")
		token      = flag.String("token", "", "bearer token; generated locally when empty")
		lat        = flag.Float64("lat", -6.2088, "route center latitude")
		lon        = flag.Float64("lon", 106.8456, "route center longitude")
	)
	flag.Parse()

	configs := config.InitConfig(".env")
	configs.App.Name = "driver-sim"

	zapLogger, err := logger.InitFromConfig(configs, nil)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Close()

	bearerToken := *token
	if bearerToken == "" {
		bearerToken, _, err = jwt.GenerateToken(*driverID, *driverName, "driver", configs.JWT)
		if err != nil {
			zapLogger.Fatal("Failed to generate token", logger.Err(err))
		}
	}

	publisher := client.NewDriverPublisher(client.DriverConfig{
		ServerURL:       *serverURL,
		Token:           bearerToken,
		TripID:          *tripID,
		SampleInterval:  time.Duration(configs.Client.SampleInterval) * time.Second,
		SampleDistanceM: configs.Client.SampleDistanceM,
		OnErrorNotice: func(notice *models.ErrorNotice) {
			zapLogger.Warn("Server rejected a sample", logger.String("error", notice.Error))
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := publisher.Connect(ctx); err != nil {
		zapLogger.Fatal("Failed to connect publisher", logger.Err(err))
	}
	defer publisher.Close()

	zapLogger.Info("Driver simulator started",
		logger.Int64("trip_id", *tripID),
		logger.String("server", *serverURL))

	// Circle the route center at roughly 30 km/h.
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	speed := 30.0

	for step := 0; ; step++ {
		select {
		case <-ctx.Done():
			zapLogger.Info("Driver simulator stopping")
			return
		case <-ticker.C:
			angle := float64(step) * 0.05
			sample := &models.LocationSample{
				TripID:     *tripID,
				DriverName: *driverName,
				Latitude:   *lat + 0.005*math.Sin(angle),
				Longitude:  *lon + 0.005*math.Cos(angle),
				SpeedKmh:   &speed,
			}
			sent, err := publisher.Offer(sample)
			if err != nil {
				zapLogger.Error("Failed to send sample", logger.Err(err))
				return
			}
			if sent {
				zapLogger.Debug("Sample sent",
					logger.Float64("lat", sample.Latitude),
					logger.Float64("lon", sample.Longitude))
			}
		}
	}
}
