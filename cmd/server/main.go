package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trove-sync-go/internal/api"
	"trove-sync-go/internal/config"
	"trove-sync-go/internal/db"
	"trove-sync-go/internal/hierarchy"
	"trove-sync-go/internal/middleware"
	"trove-sync-go/internal/sync"
)

func main() {
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	var logger *zap.Logger
	if strings.ToLower(appConfig.GinMode) == "release" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	logger.Info("configuration loaded", zap.String("port", appConfig.Port), zap.String("ginMode", appConfig.GinMode))

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()
	clients, err := db.InitFirebase(initCtx, appConfig, logger)
	if err != nil {
		logger.Fatal("failed to initialize Firebase", zap.Error(err))
	}
	defer clients.Firestore.Close()
	logger.Info("Firebase Admin SDK initialized")

	remote := db.NewFirestoreStore(clients.Firestore, logger)
	// Subscriptions opened by the mirror live until process shutdown, not
	// until the request that opened them returns.
	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()
	mirror := hierarchy.NewStore(rootCtx, remote, logger)
	// nil connectivity gate: a server deployment is online by definition;
	// embedded deployments pass their own probe here.
	manager := sync.NewManager(remote, mirror, nil, logger)

	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(appConfig))

	api.SetupRoutes(router, logger, clients.Auth, manager, mirror)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", appConfig.Port),
		Handler: router,
	}

	go func() {
		logger.Info("starting HTTP server", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("forced shutdown", zap.Error(err))
	}
	logger.Info("server exited gracefully")
}
