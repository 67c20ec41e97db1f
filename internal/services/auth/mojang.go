package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const hasJoinedPath = "/session/minecraft/hasJoined"

// MojangClient validates client handshakes against the Mojang session
// servers. The game client performs the join-server step first, then hands
// us the username and server hash to verify.
type MojangClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewMojangClient creates a session-server client. baseURL is overridable
// for tests and proxies; pass "" for the official servers.
func NewMojangClient(baseURL string) *MojangClient {
	if baseURL == "" {
		baseURL = "https://sessionserver.mojang.com"
	}
	return &MojangClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 4 * time.Second,
		},
	}
}

// Ensure MojangClient implements SessionValidator
var _ SessionValidator = (*MojangClient)(nil)

// hasJoinedResponse is the subset of the session server response we use
type hasJoinedResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Validate checks the (username, serverId) pair with the session servers and
// returns the account UUID they vouch for
func (c *MojangClient) Validate(ctx context.Context, username, serverID string) (uuid.UUID, error) {
	if username == "" || serverID == "" {
		return uuid.Nil, fmt.Errorf("%w: username and serverId are both required", ErrSessionRejected)
	}

	query := url.Values{}
	query.Set("username", username)
	query.Set("serverId", serverID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+hasJoinedPath+"?"+query.Encode(), nil)
	if err != nil {
		return uuid.Nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", ErrSessionUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return uuid.Nil, fmt.Errorf("%w: unexpected status %d", ErrSessionUnavailable, resp.StatusCode)
	}

	// The session servers answer 204 with an empty body when the handshake
	// doesn't check out
	if resp.StatusCode == http.StatusNoContent {
		return uuid.Nil, fmt.Errorf("%w: no join request on record", ErrSessionRejected)
	}

	var body hasJoinedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.ID == "" {
		return uuid.Nil, fmt.Errorf("%w: no join request on record", ErrSessionRejected)
	}

	// Session servers return the UUID without dashes
	playerID, err := uuid.Parse(body.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed account id", ErrSessionRejected)
	}

	return playerID, nil
}
