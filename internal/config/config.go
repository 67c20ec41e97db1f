package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all server configuration, populated from the environment
type Config struct {
	// HTTP server
	ListenAddr      string        `env:"LISTEN_ADDR" envDefault:":8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Storage backend: "memory" or "redis"
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`

	// StoreTimeout bounds each individual read or conditional write
	StoreTimeout time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`

	// MaxPayloadBytes bounds the size of a pushed profile payload
	MaxPayloadBytes int `env:"MAX_PAYLOAD_BYTES" envDefault:"16384"`

	// Authentication
	TokenSecret      string        `env:"TOKEN_SECRET"`
	TokenTTL         time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
	SessionServerURL string        `env:"SESSION_SERVER_URL" envDefault:"https://sessionserver.mojang.com"`

	SilenceAccessLogs bool `env:"SILENCE_ACCESS_LOGS"`
}

// Load reads configuration from a .env file (if present) and the environment
func Load() (Config, error) {
	// A missing .env file is fine; real deployments set env vars directly
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.MaxPayloadBytes <= 0 {
		return Config{}, fmt.Errorf("MAX_PAYLOAD_BYTES must be positive, got %d", cfg.MaxPayloadBytes)
	}

	return cfg, nil
}
