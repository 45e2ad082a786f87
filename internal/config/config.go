package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// AdminPrincipals is the set of caller identities allowed to mutate state.
	// At least one principal must be configured.
	AdminPrincipals []string

	// StateBackend selects the store implementation: "postgres" or "memory".
	StateBackend string

	// WebPort is the port the HTTP API listens on.
	WebPort string

	// OracleURL is the endpoint of the external SOL/BTC price oracle.
	OracleURL string
	// OracleTimeout bounds a single oracle fetch.
	OracleTimeout time.Duration
)

const (
	defaultOracleURL     = "https://api.coingecko.com/api/v3/simple/price?ids=solana,bitcoin&vs_currencies=usd"
	defaultOracleTimeout = 10 * time.Second
	defaultWebPort       = "8080"
	defaultStateBackend  = "postgres"
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	admins, err := getEnv("ADMIN_PRINCIPALS")
	if err != nil {
		return err
	}
	AdminPrincipals = splitPrincipals(admins)
	if len(AdminPrincipals) == 0 {
		return errors.New("ADMIN_PRINCIPALS must contain at least one principal")
	}

	StateBackend = getEnvOr("STATE_BACKEND", defaultStateBackend)
	if StateBackend != "postgres" && StateBackend != "memory" {
		return errors.New("STATE_BACKEND must be 'postgres' or 'memory', got: " + StateBackend)
	}

	WebPort = getEnvOr("WEB_PORT", defaultWebPort)
	OracleURL = getEnvOr("ORACLE_URL", defaultOracleURL)

	OracleTimeout = defaultOracleTimeout
	if raw, exists := os.LookupEnv("ORACLE_TIMEOUT_SECONDS"); exists {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return errors.New("ORACLE_TIMEOUT_SECONDS must be a positive integer, got: " + raw)
		}
		OracleTimeout = time.Duration(seconds) * time.Second
	}

	log.Debug().
		Int("adminCount", len(AdminPrincipals)).
		Str("stateBackend", StateBackend).
		Str("webPort", WebPort).
		Dur("oracleTimeout", OracleTimeout).
		Msg("Configuration loaded successfully.")

	return nil
}

// splitPrincipals parses a comma-separated principal list, dropping empties.
func splitPrincipals(raw string) []string {
	parts := strings.Split(raw, ",")
	principals := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			principals = append(principals, trimmed)
		}
	}
	return principals
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvOr retrieves a string environment variable with a fallback default.
func getEnvOr(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
