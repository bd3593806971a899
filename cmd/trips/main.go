package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/uwayapp/uway/internal/pkg/config"
	"github.com/uwayapp/uway/internal/pkg/database"
	"github.com/uwayapp/uway/internal/pkg/health"
	"github.com/uwayapp/uway/internal/pkg/logger"
	"github.com/uwayapp/uway/internal/pkg/middleware"
	natspkg "github.com/uwayapp/uway/internal/pkg/nats"
	nrpkg "github.com/uwayapp/uway/internal/pkg/newrelic"
	"github.com/uwayapp/uway/internal/pkg/server"
	"github.com/uwayapp/uway/services/trips/gateway"
	tripsHandler "github.com/uwayapp/uway/services/trips/handler"
	httpHandler "github.com/uwayapp/uway/services/trips/handler/http"
	"github.com/uwayapp/uway/services/trips/repository"
	"github.com/uwayapp/uway/services/trips/usecase"
)

func main() {
	configs := config.InitConfig(".env")
	configs.App.Name = "trips-service"

	nrApp := nrpkg.InitNewRelic(configs)

	zapLogger, err := logger.InitFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Close()

	shutdownManager := server.NewShutdownManager(zapLogger)

	pgClient, err := database.NewPostgresClient(configs.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to PostgreSQL", logger.Err(err))
	}
	shutdownManager.Register(func(ctx context.Context) error {
		return pgClient.Close()
	})

	natsClient, err := natspkg.NewClient(configs.NATS.URL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
	}
	shutdownManager.Register(func(ctx context.Context) error {
		natsClient.Close()
		return nil
	})

	tripRepo := repository.NewTripRepo(pgClient.GetDB())
	tripGW := gateway.NewTripGW(natsClient)
	tripUC := usecase.NewTripUC(tripRepo, tripGW)
	tripH := httpHandler.NewTripHandler(tripUC)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.EchoMiddleware(zapLogger))

	health.RegisterHealthEndpoints(e, configs.App.Name)

	h := tripsHandler.NewHandler(tripH, configs)
	h.RegisterRoutes(e)

	gracefulServer := server.NewGracefulServer(e, zapLogger, configs.Server.Port)
	if err := gracefulServer.Start(); err != nil {
		zapLogger.Error("Server exited with error", logger.Err(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(configs.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	shutdownManager.Shutdown(shutdownCtx)
}
