// Package config loads the application configuration from the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend string

	// Database
	SQLiteDBPath string

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Google Sheets backup
	GoogleSpreadsheetID string
}

func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", "8081"),
		DataBackend: getEnv("DATA_BACKEND", "sqlite"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/clubledger.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "clubledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "sync_records"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),

		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
	}
}

var validBackends = []string{"sqlite", "memory"}

// Validate checks the configuration, collecting every problem found.
func (c *Config) Validate() error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if port, err := strconv.Atoi(c.Port); err != nil {
		addf("invalid port '%s': must be a number", c.Port)
	} else if port < 1 || port > 65535 {
		addf("invalid port %d: must be between 1 and 65535", port)
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		addf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends)
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			addf("SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				addf("cannot create SQLite database directory '%s': %v", dir, err)
			}
		}
	}

	if c.AMQPURL != "" {
		switch u, err := url.Parse(c.AMQPURL); {
		case err != nil:
			addf("invalid AMQP URL '%s': %v", c.AMQPURL, err)
		case u.Scheme != "amqp" && u.Scheme != "amqps":
			addf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme)
		}
		if c.AMQPExchange == "" {
			addf("AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			addf("AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	switch {
	case c.JWTSecret == "":
		addf("JWT_SECRET must be set")
	case len(c.JWTSecret) < 16:
		addf("JWT_SECRET must be at least 16 characters")
	}

	if c.TokenTTL < time.Minute {
		addf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL)
	} else if c.TokenTTL > 30*24*time.Hour {
		addf("invalid token TTL %v: must be at most 30 days", c.TokenTTL)
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
