package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/wildfiresync/gendersync/internal/model"
)

// VersionStore defines the interface for versioned profile persistence.
//
// Implementations must make CompareAndSwapProfile atomic with respect to
// concurrent callers for the same player; it is the sole serialization point
// in the system.
type VersionStore interface {
	// ReadProfile returns the current snapshot for a player. A player that
	// has never synced yields the zero-version empty snapshot, not an error.
	ReadProfile(ctx context.Context, playerID uuid.UUID) (*model.ProfileSnapshot, error)

	// CompareAndSwapProfile stores payload and bumps the version by exactly 1,
	// but only if the stored version still equals expectedVersion. On success
	// the new snapshot is returned. On a version mismatch it returns the
	// store's actual current snapshot along with model.ErrVersionConflict.
	CompareAndSwapProfile(ctx context.Context, playerID uuid.UUID, expectedVersion int64, payload []byte, deviceHint string) (*model.ProfileSnapshot, error)

	// ReadProfiles fetches snapshots for multiple players at once. Players
	// that have never synced are omitted from the result.
	ReadProfiles(ctx context.Context, playerIDs []uuid.UUID) (map[uuid.UUID]*model.ProfileSnapshot, error)

	// SyncedPlayerCount returns the number of players with at least one
	// accepted sync
	SyncedPlayerCount(ctx context.Context) (int64, error)

	// Ping verifies the store is reachable
	Ping(ctx context.Context) error

	// Close releases any underlying connections
	Close() error
}
