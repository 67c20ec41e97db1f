package factory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wildfiresync/gendersync/internal/dependencies/mocks"
	"github.com/wildfiresync/gendersync/internal/services/auth"
	syncsvc "github.com/wildfiresync/gendersync/internal/services/sync"
	"github.com/wildfiresync/gendersync/internal/storage/memory"
	"github.com/wildfiresync/gendersync/internal/testutil"
)

// StubSessionValidator accepts any handshake and returns a fixed account,
// standing in for the Mojang session servers in tests
type StubSessionValidator struct {
	PlayerID uuid.UUID
	Err      error
}

// Validate returns the configured account or error
func (s *StubSessionValidator) Validate(_ context.Context, _, _ string) (uuid.UUID, error) {
	if s.Err != nil {
		return uuid.Nil, s.Err
	}
	return s.PlayerID, nil
}

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	MockClock *mocks.MockClock
	Sessions  *StubSessionValidator
}

// NewTestApp creates an App configured for testing: in-memory storage, a
// mocked clock, and a stubbed session validator
func NewTestApp() *TestApp {
	logger := testutil.NopLogger()
	mockClock := mocks.NewMockClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	store := memory.New(mockClock)
	sessions := &StubSessionValidator{PlayerID: uuid.New()}

	authService := auth.New(sessions, mockClock, auth.Config{
		Secret: []byte("test-secret"),
	}, logger)

	coordinator := syncsvc.NewCoordinator(store, authService, mockClock, syncsvc.Config{}, logger)

	return &TestApp{
		App: &App{
			Storage:     store,
			Clock:       mockClock,
			AuthService: authService,
			Coordinator: coordinator,
		},
		MockClock: mockClock,
		Sessions:  sessions,
	}
}

// IssueToken issues a token for the given player, bypassing the session
// server handshake
func (t *TestApp) IssueToken(playerID uuid.UUID) (*auth.Token, error) {
	t.Sessions.PlayerID = playerID
	return t.AuthService.Issue(context.Background(), "tester", "serverhash")
}
