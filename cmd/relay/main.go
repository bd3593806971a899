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
	wspkg "github.com/uwayapp/uway/internal/pkg/websocket"
	"github.com/uwayapp/uway/services/relay/gateway"
	relayHandler "github.com/uwayapp/uway/services/relay/handler"
	natsHandler "github.com/uwayapp/uway/services/relay/handler/nats"
	wsHandler "github.com/uwayapp/uway/services/relay/handler/websocket"
	"github.com/uwayapp/uway/services/relay/registry"
	"github.com/uwayapp/uway/services/relay/usecase"
)

func main() {
	configs := config.InitConfig(".env")
	configs.App.Name = "relay-service"

	nrApp := nrpkg.InitNewRelic(configs)

	zapLogger, err := logger.InitFromConfig(configs, nrApp)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Close()

	shutdownManager := server.NewShutdownManager(zapLogger)

	redisClient, err := database.NewRedisClient(configs.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to Redis", logger.Err(err))
	}
	shutdownManager.Register(func(ctx context.Context) error {
		return redisClient.Close()
	})

	natsClient, err := natspkg.NewClient(configs.NATS.URL)
	if err != nil {
		zapLogger.Fatal("Failed to connect to NATS", logger.Err(err))
	}
	shutdownManager.Register(func(ctx context.Context) error {
		natsClient.Close()
		return nil
	})

	reg := registry.New()
	relayGW := gateway.NewRelayGW(natsClient, configs)
	relayUC := usecase.NewRelayUC(relayGW, reg, redisClient, configs)

	wsManager := wspkg.NewManager(configs.JWT)
	relayWS := wsHandler.NewRelayHandler(wsManager, relayUC, reg, configs)

	natsH := natsHandler.NewNatsHandler(natsClient, relayUC)
	if err := natsH.InitConsumers(); err != nil {
		zapLogger.Fatal("Failed to initialize NATS consumers", logger.Err(err))
	}
	shutdownManager.Register(func(ctx context.Context) error {
		natsH.Close()
		return nil
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(middleware.RequestIDMiddleware())
	e.Use(logger.EchoMiddleware(zapLogger))

	health.RegisterHealthEndpoints(e, configs.App.Name)

	h := relayHandler.NewHandler(relayWS, natsH, configs)
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
