package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/wildfiresync/gendersync/internal/dependencies/clock"
	"github.com/wildfiresync/gendersync/internal/model"
	"github.com/wildfiresync/gendersync/internal/storage"
)

// Storage is a Redis-backed implementation of the version store. The
// compare-and-swap write runs as a WATCH/MULTI/EXEC optimistic transaction
// on the profile key, which makes it atomic with respect to concurrent
// writers on the same player.
type Storage struct {
	client *redis.Client
	clock  clock.Clock
	cfg    Config
}

// profileDocument is the persisted layout: one document per player
type profileDocument struct {
	Version    int64     `json:"version"`
	Payload    []byte    `json:"payload"`
	UpdatedAt  time.Time `json:"updated_at"`
	DeviceHint string    `json:"device_hint,omitempty"`
}

// New creates a new Redis storage instance
func New(cfg Config, clk clock.Clock) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		clock:  clk,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, clk clock.Clock) *Storage {
	return &Storage{
		client: client,
		clock:  clk,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.VersionStore = (*Storage)(nil)

func (s *Storage) ReadProfile(ctx context.Context, playerID uuid.UUID) (*model.ProfileSnapshot, error) {
	data, err := s.client.Get(ctx, profileKey(playerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.EmptySnapshot(playerID), nil
		}
		return nil, err
	}

	return decodeSnapshot(playerID, data)
}

func (s *Storage) CompareAndSwapProfile(ctx context.Context, playerID uuid.UUID, expectedVersion int64, payload []byte, deviceHint string) (*model.ProfileSnapshot, error) {
	key := profileKey(playerID)
	var result *model.ProfileSnapshot

	txf := func(tx *redis.Tx) error {
		current := model.EmptySnapshot(playerID)

		data, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			current, err = decodeSnapshot(playerID, data)
			if err != nil {
				return err
			}
		}

		if current.Version != expectedVersion {
			result = current
			return model.ErrVersionConflict
		}

		next := &model.ProfileSnapshot{
			PlayerID:   playerID,
			Version:    current.Version + 1,
			Payload:    payload,
			UpdatedAt:  s.clock.Now().UTC(),
			DeviceHint: deviceHint,
		}
		doc, err := json.Marshal(profileDocument{
			Version:    next.Version,
			Payload:    next.Payload,
			UpdatedAt:  next.UpdatedAt,
			DeviceHint: next.DeviceHint,
		})
		if err != nil {
			return err
		}

		// The pipelined commands only execute if the watched key is untouched
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, doc, 0)
			pipe.SAdd(ctx, profileIndexKey(), playerID.String())
			return nil
		})
		if err != nil {
			return err
		}

		result = next
		return nil
	}

	err := s.client.Watch(ctx, txf, key)
	if errors.Is(err, redis.TxFailedErr) {
		// Lost the race to a concurrent writer between GET and EXEC;
		// re-read so the caller sees the winner's state
		current, rerr := s.ReadProfile(ctx, playerID)
		if rerr != nil {
			return nil, rerr
		}
		return current, model.ErrVersionConflict
	}
	if err != nil {
		return result, err
	}

	return result, nil
}

func (s *Storage) ReadProfiles(ctx context.Context, playerIDs []uuid.UUID) (map[uuid.UUID]*model.ProfileSnapshot, error) {
	if len(playerIDs) == 0 {
		return map[uuid.UUID]*model.ProfileSnapshot{}, nil
	}

	keys := make([]string, len(playerIDs))
	for i, id := range playerIDs {
		keys[i] = profileKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	result := make(map[uuid.UUID]*model.ProfileSnapshot, len(playerIDs))
	for i, val := range values {
		if val == nil {
			continue // Never synced
		}
		snap, err := decodeSnapshot(playerIDs[i], []byte(val.(string)))
		if err != nil {
			continue // Skip invalid data
		}
		result[playerIDs[i]] = snap
	}

	return result, nil
}

func (s *Storage) SyncedPlayerCount(ctx context.Context) (int64, error) {
	return s.client.SCard(ctx, profileIndexKey()).Result()
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func decodeSnapshot(playerID uuid.UUID, data []byte) (*model.ProfileSnapshot, error) {
	var doc profileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &model.ProfileSnapshot{
		PlayerID:   playerID,
		Version:    doc.Version,
		Payload:    doc.Payload,
		UpdatedAt:  doc.UpdatedAt,
		DeviceHint: doc.DeviceHint,
	}, nil
}
