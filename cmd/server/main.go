// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/api"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/app"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/config"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/repository"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/chicken-settlement/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	if cfg.App.LogFormat == "json" {
		logger.UseJSON(os.Stdout)
	}
	logger.SetLevel(logLevel(cfg.Server.Mode))
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Initialize database
	runs := repository.NewNoopReportRunRepository()
	if cfg.Database.Enabled {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		if err := db.EnsureSchema(ctx); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
		runs = postgres.NewReportRunRepository(db)
	}

	// Initialize services
	reportService, err := app.NewReportService(ctx, cfg, app.Options{Runs: runs})
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize report service")
	}

	// Initialize HTTP server
	router := api.NewRouter(&api.Services{
		ReportService: reportService,
		Location:      cfg.Settlement.Location(),
		PeriodDays:    cfg.Settlement.PeriodDays,
	}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

func logLevel(mode string) string {
	if mode == "debug" {
		return "debug"
	}
	return "info"
}
