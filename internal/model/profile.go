package model

import (
	"time"

	"github.com/google/uuid"
)

// ProfileSnapshot is one player's stored mod configuration as observed at a
// single point in time. Version 0 with an empty payload means the player has
// never synced.
type ProfileSnapshot struct {
	PlayerID   uuid.UUID `json:"player_id"`
	Version    int64     `json:"version"`
	Payload    []byte    `json:"payload"`
	UpdatedAt  time.Time `json:"updated_at"`
	DeviceHint string    `json:"device_hint,omitempty"`
}

// EmptySnapshot returns the canonical "never synced" snapshot for a player
func EmptySnapshot(playerID uuid.UUID) *ProfileSnapshot {
	return &ProfileSnapshot{
		PlayerID: playerID,
		Version:  0,
		Payload:  []byte{},
	}
}

// Exists reports whether the snapshot represents a profile that has been
// synced at least once
func (s *ProfileSnapshot) Exists() bool {
	return s.Version > 0
}

// SyncRequest is one client push, constructed per incoming call
type SyncRequest struct {
	PlayerID    uuid.UUID
	Token       string
	BaseVersion int64
	Payload     []byte
	DeviceHint  string
}
