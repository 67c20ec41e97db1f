package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wildfiresync/gendersync/internal/dependencies/clock"
	"github.com/wildfiresync/gendersync/internal/model"
	"github.com/wildfiresync/gendersync/internal/storage"
)

// Authenticator gates sync operations on a valid credential for the claimed
// player
type Authenticator interface {
	Authenticate(ctx context.Context, playerID uuid.UUID, token string) error
}

// Config holds configuration for the sync coordinator
type Config struct {
	// MaxPayloadBytes bounds the size of a pushed payload
	MaxPayloadBytes int
	// StoreTimeout bounds each individual store operation
	StoreTimeout time.Duration
	// CommitAttempts bounds the read-decide-commit retry loop that covers
	// the window between a read and a losing compare-and-swap
	CommitAttempts int
}

// DefaultConfig returns default coordinator configuration
func DefaultConfig() Config {
	return Config{
		MaxPayloadBytes: 16 * 1024,
		StoreTimeout:    5 * time.Second,
		CommitAttempts:  3,
	}
}

// Coordinator orchestrates a full sync request: authenticate, read the
// current snapshot, decide, commit. It holds no locks and no per-player
// state; the store's compare-and-swap is the only serialization point, so
// any number of coordinator instances can run side by side.
type Coordinator struct {
	store  storage.VersionStore
	auth   Authenticator
	clock  clock.Clock
	logger *slog.Logger
	cfg    Config
}

// NewCoordinator creates a sync coordinator
func NewCoordinator(store storage.VersionStore, auth Authenticator, clk clock.Clock, cfg Config, logger *slog.Logger) *Coordinator {
	def := DefaultConfig()
	if cfg.MaxPayloadBytes <= 0 {
		cfg.MaxPayloadBytes = def.MaxPayloadBytes
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = def.StoreTimeout
	}
	if cfg.CommitAttempts <= 0 {
		cfg.CommitAttempts = def.CommitAttempts
	}
	return &Coordinator{
		store:  store,
		auth:   auth,
		clock:  clk,
		logger: logger,
		cfg:    cfg,
	}
}

// Sync processes one client push. On acceptance it returns the newly
// committed snapshot. On rejection it returns the authoritative current
// snapshot alongside the error, so the client can re-base and retry without
// an extra round trip.
func (c *Coordinator) Sync(ctx context.Context, req model.SyncRequest) (*model.ProfileSnapshot, error) {
	if err := c.auth.Authenticate(ctx, req.PlayerID, req.Token); err != nil {
		return nil, err
	}

	if req.BaseVersion < 0 {
		current, err := c.read(ctx, req.PlayerID)
		if err != nil {
			return nil, err
		}
		c.logger.Warn("rejected push claiming a negative version",
			slog.String("player_id", req.PlayerID.String()),
			slog.Int64("base_version", req.BaseVersion),
			slog.Int64("store_version", current.Version),
		)
		return current, model.ErrInvalidBaseVersion
	}

	if len(req.Payload) > c.cfg.MaxPayloadBytes {
		current, err := c.read(ctx, req.PlayerID)
		if err != nil {
			return nil, err
		}
		return current, model.ErrPayloadTooLarge
	}

	var current *model.ProfileSnapshot
	for attempt := 0; attempt < c.cfg.CommitAttempts; attempt++ {
		var err error
		current, err = c.read(ctx, req.PlayerID)
		if err != nil {
			return nil, err
		}

		switch Decide(req.BaseVersion, current.Version) {
		case Conflict:
			return current, model.ErrVersionConflict
		case Invalid:
			c.logger.Warn("rejected push claiming a future version",
				slog.String("player_id", req.PlayerID.String()),
				slog.Int64("base_version", req.BaseVersion),
				slog.Int64("store_version", current.Version),
			)
			return current, model.ErrInvalidBaseVersion
		case Proceed:
		}

		committed, err := c.commit(ctx, req)
		if err == nil {
			c.logger.Info("accepted sync",
				slog.String("player_id", req.PlayerID.String()),
				slog.Int64("version", committed.Version),
				slog.Int("payload_bytes", len(committed.Payload)),
			)
			return committed, nil
		}
		if !errors.Is(err, model.ErrVersionConflict) {
			return nil, err
		}

		// A concurrent writer committed between our read and the swap.
		// Loop to re-read and re-decide; the fresh version almost always
		// turns this into a client-visible conflict.
		if committed != nil {
			current = committed
		}
	}

	return current, model.ErrVersionConflict
}

// Fetch returns the current snapshot for an authenticated player. A player
// that has never synced gets the zero-version empty snapshot.
func (c *Coordinator) Fetch(ctx context.Context, playerID uuid.UUID, token string) (*model.ProfileSnapshot, error) {
	if err := c.auth.Authenticate(ctx, playerID, token); err != nil {
		return nil, err
	}
	return c.read(ctx, playerID)
}

// BulkFetch returns snapshots for multiple players, omitting those that have
// never synced. Reads are unauthenticated, matching the lookup other players'
// clients perform when rendering nearby characters.
func (c *Coordinator) BulkFetch(ctx context.Context, playerIDs []uuid.UUID) (map[uuid.UUID]*model.ProfileSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()

	snaps, err := c.store.ReadProfiles(ctx, playerIDs)
	if err != nil {
		return nil, c.storeError(err)
	}
	return snaps, nil
}

// Stats reports how many players have synced at least once
func (c *Coordinator) Stats(ctx context.Context) (int64, time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()

	count, err := c.store.SyncedPlayerCount(ctx)
	if err != nil {
		return 0, time.Time{}, c.storeError(err)
	}
	return count, c.clock.Now().UTC(), nil
}

// Healthy verifies the store is reachable
func (c *Coordinator) Healthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		return c.storeError(err)
	}
	return nil
}

func (c *Coordinator) read(ctx context.Context, playerID uuid.UUID) (*model.ProfileSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()

	snap, err := c.store.ReadProfile(ctx, playerID)
	if err != nil {
		return nil, c.storeError(err)
	}
	return snap, nil
}

func (c *Coordinator) commit(ctx context.Context, req model.SyncRequest) (*model.ProfileSnapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.StoreTimeout)
	defer cancel()

	snap, err := c.store.CompareAndSwapProfile(ctx, req.PlayerID, req.BaseVersion, req.Payload, req.DeviceHint)
	if err != nil {
		if errors.Is(err, model.ErrVersionConflict) {
			return snap, err
		}
		return nil, c.storeError(err)
	}
	return snap, nil
}

// storeError maps transport and timeout failures to the retryable
// StoreUnavailable class; domain sentinels pass through untouched
func (c *Coordinator) storeError(err error) error {
	if errors.Is(err, model.ErrVersionConflict) || errors.Is(err, model.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
