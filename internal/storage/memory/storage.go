package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/wildfiresync/gendersync/internal/dependencies/clock"
	"github.com/wildfiresync/gendersync/internal/model"
	"github.com/wildfiresync/gendersync/internal/storage"
)

// Storage is an in-memory implementation of the version store, used for
// tests and single-node development. The mutex stands in for the document
// store's single-document transaction.
type Storage struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*model.ProfileSnapshot
	clock    clock.Clock
}

// New creates a new in-memory storage instance
func New(clk clock.Clock) *Storage {
	return &Storage{
		profiles: make(map[uuid.UUID]*model.ProfileSnapshot),
		clock:    clk,
	}
}

// Ensure Storage implements the interface
var _ storage.VersionStore = (*Storage)(nil)

func (s *Storage) ReadProfile(ctx context.Context, playerID uuid.UUID) (*model.ProfileSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.profiles[playerID]
	if !ok {
		return model.EmptySnapshot(playerID), nil
	}
	return copySnapshot(snap), nil
}

func (s *Storage) CompareAndSwapProfile(ctx context.Context, playerID uuid.UUID, expectedVersion int64, payload []byte, deviceHint string) (*model.ProfileSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.profiles[playerID]
	currentVersion := int64(0)
	if ok {
		currentVersion = current.Version
	}

	if currentVersion != expectedVersion {
		if !ok {
			return model.EmptySnapshot(playerID), model.ErrVersionConflict
		}
		return copySnapshot(current), model.ErrVersionConflict
	}

	next := &model.ProfileSnapshot{
		PlayerID:   playerID,
		Version:    currentVersion + 1,
		Payload:    append([]byte(nil), payload...),
		UpdatedAt:  s.clock.Now(),
		DeviceHint: deviceHint,
	}
	s.profiles[playerID] = next

	return copySnapshot(next), nil
}

func (s *Storage) ReadProfiles(ctx context.Context, playerIDs []uuid.UUID) (map[uuid.UUID]*model.ProfileSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[uuid.UUID]*model.ProfileSnapshot, len(playerIDs))
	for _, id := range playerIDs {
		if snap, ok := s.profiles[id]; ok {
			result[id] = copySnapshot(snap)
		}
	}
	return result, nil
}

func (s *Storage) SyncedPlayerCount(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.profiles)), nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

func (s *Storage) Close() error {
	return nil
}

// copySnapshot returns a deep copy so callers never share payload slices
// with the stored state
func copySnapshot(snap *model.ProfileSnapshot) *model.ProfileSnapshot {
	cp := *snap
	cp.Payload = append([]byte(nil), snap.Payload...)
	return &cp
}
