// Package config loads server configuration from the environment, with
// defaults matching an unconfigured local deployment.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kazip/minesweeper-server/internal/env"
)

// Config holds every tunable the server reads at startup.
type Config struct {
	BindAddr string

	CORSAllowedOrigins []string

	RateLimitGamesPerMinute uint32

	CleanupInterval     time.Duration
	InactiveGameTimeout time.Duration
	ActiveGameTimeout   time.Duration
	DefaultBoardWidth   uint16
	DefaultBoardHeight  uint16
	DefaultBombCount    uint16

	LogLevel             string
	ShutdownGraceSeconds time.Duration
}

// Load reads a .env file if present (missing is not an error) and then the
// process environment, applying defaults for everything unset.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		BindAddr:                env.String("BIND_ADDR", "0.0.0.0:8000"),
		CORSAllowedOrigins:      splitCSV(env.String("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		RateLimitGamesPerMinute: env.Uint32("RATE_LIMIT_GAMES_PER_MINUTE", 10),
		CleanupInterval:         env.Seconds("CLEANUP_INTERVAL_SECONDS", 60),
		InactiveGameTimeout:     env.Seconds("INACTIVE_GAME_TIMEOUT_SECONDS", 300),
		ActiveGameTimeout:       env.Seconds("ACTIVE_GAME_TIMEOUT_SECONDS", 3600),
		DefaultBoardWidth:       9,
		DefaultBoardHeight:      9,
		DefaultBombCount:        10,
		LogLevel:                env.String("LOG_LEVEL", "info"),
		ShutdownGraceSeconds:    env.Seconds("SHUTDOWN_GRACE_SECONDS", 10),
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
