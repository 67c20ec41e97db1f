package response

import (
	"time"

	"github.com/wildfiresync/gendersync/internal/api/apierr"
	"github.com/wildfiresync/gendersync/internal/model"
	"github.com/wildfiresync/gendersync/internal/services/auth"
)

// Profile is a profile snapshot in API responses. Version 0 with an empty
// payload means the player has never synced.
type Profile struct {
	Version   int64      `json:"version"`
	Payload   []byte     `json:"payload"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// ProfileFromSnapshot converts a model.ProfileSnapshot to a response Profile
func ProfileFromSnapshot(s *model.ProfileSnapshot) Profile {
	p := Profile{
		Version: s.Version,
		Payload: s.Payload,
	}
	if p.Payload == nil {
		p.Payload = []byte{}
	}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		p.UpdatedAt = &t
	}
	return p
}

// Rejection is the response for a rejected push. It carries the
// authoritative current snapshot so the client can re-base and retry.
type Rejection struct {
	Error     apierr.APIError `json:"error"`
	Version   int64           `json:"version"`
	Payload   []byte          `json:"payload"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// RejectionFromSnapshot builds a Rejection from an error and the current
// snapshot
func RejectionFromSnapshot(err error, s *model.ProfileSnapshot) Rejection {
	p := ProfileFromSnapshot(s)
	return Rejection{
		Error:     apierr.Body(err),
		Version:   p.Version,
		Payload:   p.Payload,
		UpdatedAt: p.UpdatedAt,
	}
}

// AuthResponse is the response for the token issuance endpoint
type AuthResponse struct {
	Success bool      `json:"success"`
	Token   string    `json:"token"`
	Account string    `json:"account"`
	Expires time.Time `json:"expires"`
}

// AuthResponseFromToken converts an issued token. The expiry is truncated to
// whole seconds because the game client parses ISO_INSTANT timestamps.
func AuthResponseFromToken(t *auth.Token) AuthResponse {
	return AuthResponse{
		Success: true,
		Token:   t.Value,
		Account: t.PlayerID.String(),
		Expires: t.ExpiresAt.UTC().Truncate(time.Second),
	}
}

// BulkQueryResponse maps player UUIDs to their profiles. Players with no
// stored profile are omitted.
type BulkQueryResponse struct {
	Success bool               `json:"success"`
	Users   map[string]Profile `json:"users"`
}

// StatsResponse reports sync server statistics
type StatsResponse struct {
	SyncedUsers int64     `json:"synced_users"`
	Timestamp   time.Time `json:"timestamp"`
}

// HealthResponse reports server liveness
type HealthResponse struct {
	Status string `json:"status"`
}
