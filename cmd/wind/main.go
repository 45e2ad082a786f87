package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/wind-network/wind/internal/auth"
	"github.com/wind-network/wind/internal/config"
	"github.com/wind-network/wind/internal/logger"
	"github.com/wind-network/wind/internal/oracle"
	"github.com/wind-network/wind/internal/service"
	"github.com/wind-network/wind/internal/state"
	"github.com/wind-network/wind/internal/web"
)

// main is the entry point for the Wind backend.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Wind backend starting...")

	// --- 2. Store Backend Selection ---
	var stores state.Stores
	var healthCheck func() error

	switch config.StateBackend {
	case "postgres":
		dbCfg := state.DBConfig{
			Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
			User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
			DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
		}
		db, err := state.InitDB(dbCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer closeDB(db)
		if err := state.EnsureSchema(db); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}
		stores = state.NewPostgresStores(db)
		healthCheck = func() error { return state.CheckConnection(db) }
	case "memory":
		log.Warn().Msg("Running with in-memory stores. All state is lost on restart.")
		stores = state.NewMemoryStores()
	}

	// --- 3. Service Construction with Dependency Injection ---
	registry := auth.NewAdminRegistry(config.AdminPrincipals)
	guard := auth.NewGuard(registry)
	oracleClient := oracle.NewClient(config.OracleURL, config.OracleTimeout)

	svc, err := service.New(service.Config{
		Guard:    guard,
		Registry: registry,
		Stores:   stores,
		Oracle:   oracleClient,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create service instance")
	}

	// --- 4. Start Web Server ---
	webServer := web.NewWebServer(config.WebPort, svc, config.StateBackend, healthCheck)
	go func() {
		log.Info().
			Str("port", config.WebPort).
			Str("stateBackend", config.StateBackend).
			Msg("Starting Wind HTTP API")
		if err := webServer.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Web server failed")
		}
	}()

	// --- 5. Wait for Shutdown Signal ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}
	log.Info().Msg("Wind backend stopped")
}

func closeDB(db *sql.DB) {
	log.Info().Msg("Closing database connection...")
	if err := db.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database connection")
	}
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
