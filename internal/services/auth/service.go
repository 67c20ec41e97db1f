package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/wildfiresync/gendersync/internal/dependencies/clock"
)

// Errors
var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrWrongAccount       = errors.New("token is not valid for the requested player")
	ErrSessionRejected    = errors.New("session server rejected the authentication")
	ErrSessionUnavailable = errors.New("session servers unreachable")
)

const tokenIssuer = "gendersync"

// SessionValidator verifies a (username, serverId) pair against an external
// session service and returns the account it belongs to
type SessionValidator interface {
	Validate(ctx context.Context, username, serverID string) (uuid.UUID, error)
}

// Token is an issued sync credential bound to one player
type Token struct {
	Value     string
	PlayerID  uuid.UUID
	ExpiresAt time.Time
}

// Service issues and validates sync tokens. Tokens are signed HS256 claims,
// so validation is stateless: nothing is persisted per token.
type Service struct {
	sessions SessionValidator
	clock    clock.Clock
	logger   *slog.Logger

	secret []byte
	ttl    time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	Secret   []byte
	TokenTTL time.Duration
}

// DefaultTokenTTL matches the game client's expectation of hourly re-auth
const DefaultTokenTTL = time.Hour

// New creates a new auth service
func New(sessions SessionValidator, clk clock.Clock, cfg Config, logger *slog.Logger) *Service {
	ttl := cfg.TokenTTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}
	return &Service{
		sessions: sessions,
		clock:    clk,
		logger:   logger,
		secret:   cfg.Secret,
		ttl:      ttl,
	}
}

// Issue validates the player's session-server handshake and returns a signed
// token bound to the resulting account UUID
func (s *Service) Issue(ctx context.Context, username, serverID string) (*Token, error) {
	playerID, err := s.sessions.Validate(ctx, username, serverID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   playerID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	s.logger.Info("issued sync token",
		slog.String("player_id", playerID.String()),
		slog.Time("expires_at", expiresAt),
	)

	return &Token{
		Value:     signed,
		PlayerID:  playerID,
		ExpiresAt: expiresAt,
	}, nil
}

// Authenticate checks that the presented token is valid and bound to the
// claimed player. It holds no state and is safe for concurrent use.
func (s *Service) Authenticate(ctx context.Context, playerID uuid.UUID, token string) error {
	if token == "" {
		return ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	if subject != playerID {
		return ErrWrongAccount
	}

	return nil
}

func (s *Service) keyFunc(_ *jwt.Token) (any, error) {
	return s.secret, nil
}
