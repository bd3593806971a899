package main

import (
	"context"
	"flag"
	"log"
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

// Simulates a viewer following the live vehicle feed.
func main() {
	var (
		serverURL = flag.String("server", "ws://localhost:9990", "relay server base URL")
		userID    = flag.String("user", "viewer-1", "viewer user id")
		userName  = flag.String("name", "Viewer", "viewer display name")
		token     = flag.String("token", "", "bearer token; generated locally when empty")
	)
	flag.Parse()

	configs := config.InitConfig(".env")
	configs.App.Name = "viewer-sim"

	zapLogger, err := logger.InitFromConfig(configs, nil)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Close()

	bearerToken := *token
	if bearerToken == "" {
		bearerToken, _, err = jwt.GenerateToken(*userID, *userName, "viewer", configs.JWT)
		if err != nil {
			zapLogger.Fatal("Failed to generate token", logger.Err(err))
		}
	}

	cache := client.NewVehicleCache()
	viewer := client.NewViewerSubscriber(client.ViewerConfig{
		ServerURL:          *serverURL,
		Token:              bearerToken,
		ReconnectInterval:  time.Duration(configs.Client.ReconnectInterval) * time.Second,
		StalenessSweep:     time.Duration(configs.Client.StalenessSweep) * time.Second,
		StalenessThreshold: time.Duration(configs.Client.StalenessThreshold) * time.Second,
		OnStatus: func(status string) {
			zapLogger.Info("Connection status changed", logger.String("status", status))
		},
		OnSample: func(record *models.VehicleRecord) {
			zapLogger.Info("Vehicle update",
				logger.Int64("trip_id", record.TripID),
				logger.String("driver", record.DriverName),
				logger.Float64("lat", record.Latitude),
				logger.Float64("lon", record.Longitude))
		},
		OnEvict: func(tripID int64) {
			zapLogger.Info("Vehicle went stale", logger.Int64("trip_id", tripID))
		},
	}, cache)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zapLogger.Info("Viewer simulator started", logger.String("server", *serverURL))
	viewer.Run(ctx)
	zapLogger.Info("Viewer simulator stopped", logger.Int("vehicles", cache.Len()))
}
