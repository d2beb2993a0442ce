package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/andresuchdata/chicken-settlement/backend-go/internal/app"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/config"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/drive"
	"github.com/andresuchdata/chicken-settlement/backend-go/internal/sheets"
	"github.com/andresuchdata/chicken-settlement/backend-go/pkg/logger"
	"github.com/gorilla/mux"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger.SetLevel("info")

	ctx := context.Background()

	// Create router
	r := mux.NewRouter()

	// Order form spreadsheet
	source, err := app.NewSheetsSource(ctx, cfg)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to initialize Google Sheets source")
	}
	sheets.NewHandler(source, cfg.Settlement.Location()).RegisterRoutes(r)

	// Drive exports are optional
	if cfg.Drive.CredentialsJSON != "" {
		driveService, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize Google Drive service")
		}
		drive.NewHandler(driveService, drive.DownloadOptions{
			FolderID:    cfg.Drive.FolderID,
			DownloadDir: cfg.Drive.DownloadDir,
		}).RegisterRoutes(r)
	}

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}
	logger.Log.Info().Str("addr", addr).Msg("Admin API starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Log.Fatal().Err(err).Msg("Admin API stopped")
	}
}
