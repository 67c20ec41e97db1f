package factory

import (
	"crypto/rand"
	"errors"
	"io"
	"log/slog"

	"github.com/wildfiresync/gendersync/internal/config"
	"github.com/wildfiresync/gendersync/internal/dependencies/clock"
	"github.com/wildfiresync/gendersync/internal/services/auth"
	syncsvc "github.com/wildfiresync/gendersync/internal/services/sync"
	"github.com/wildfiresync/gendersync/internal/storage"
	"github.com/wildfiresync/gendersync/internal/storage/memory"
	redisstorage "github.com/wildfiresync/gendersync/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Storage     storage.VersionStore
	Clock       clock.Clock
	AuthService *auth.Service
	Coordinator *syncsvc.Coordinator
}

// New creates a new application with all dependencies wired from config
func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	clk := clock.New()

	store, err := newStorage(cfg, clk)
	if err != nil {
		return nil, err
	}

	secret := []byte(cfg.TokenSecret)
	if len(secret) == 0 {
		// Tokens won't survive a restart without a configured secret;
		// fine for development, not for a real deployment
		logger.Warn("TOKEN_SECRET not set, generating an ephemeral signing key")
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return nil, err
		}
	}

	sessions := auth.NewMojangClient(cfg.SessionServerURL)
	authService := auth.New(sessions, clk, auth.Config{
		Secret:   secret,
		TokenTTL: cfg.TokenTTL,
	}, logger)

	coordinator := syncsvc.NewCoordinator(store, authService, clk, syncsvc.Config{
		MaxPayloadBytes: cfg.MaxPayloadBytes,
		StoreTimeout:    cfg.StoreTimeout,
	}, logger)

	return &App{
		Storage:     store,
		Clock:       clk,
		AuthService: authService,
		Coordinator: coordinator,
	}, nil
}

func newStorage(cfg config.Config, clk clock.Clock) (storage.VersionStore, error) {
	switch cfg.StorageType {
	case StorageTypeMemory, "":
		return memory.New(clk), nil
	case StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		return redisstorage.New(redisCfg, clk)
	default:
		return nil, errors.New("invalid STORAGE_TYPE: must be 'memory' or 'redis'")
	}
}
