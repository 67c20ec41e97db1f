package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildfiresync/gendersync/internal/api"
	"github.com/wildfiresync/gendersync/internal/api/request"
	"github.com/wildfiresync/gendersync/internal/api/response"
	"github.com/wildfiresync/gendersync/internal/factory"
	"github.com/wildfiresync/gendersync/internal/testutil"
)

// testServer wires the router against an in-memory app
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()

	router := api.NewRouter(api.RouterConfig{
		Logger:            testutil.NopLogger(),
		AuthService:       app.AuthService,
		Coordinator:       app.Coordinator,
		SilenceAccessLogs: true,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) token(t *testing.T, playerID uuid.UUID) string {
	t.Helper()

	token, err := ts.app.IssueToken(playerID)
	require.NoError(t, err)
	return token.Value
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(t, http.MethodGet, "/api/v2/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestFetchNeverSynced(t *testing.T) {
	ts := newTestServer(t)
	playerID := uuid.New()

	rr := ts.request(t, http.MethodGet, "/api/v2/sync/"+playerID.String(), nil, ts.token(t, playerID))
	assert.Equal(t, http.StatusOK, rr.Code)

	profile := decode[response.Profile](t, rr)
	assert.Equal(t, int64(0), profile.Version)
	assert.Empty(t, profile.Payload)
	assert.Nil(t, profile.UpdatedAt)
}

func TestPushAndFetch(t *testing.T) {
	ts := newTestServer(t)
	playerID := uuid.New()
	token := ts.token(t, playerID)

	rr := ts.request(t, http.MethodPost, "/api/v2/sync/"+playerID.String(), request.SyncRequest{
		BaseVersion: 0,
		Payload:     []byte(`{"gender":"fluid"}`),
		DeviceHint:  "desktop",
	}, token)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	pushed := decode[response.Profile](t, rr)
	assert.Equal(t, int64(1), pushed.Version)
	assert.Equal(t, []byte(`{"gender":"fluid"}`), pushed.Payload)
	require.NotNil(t, pushed.UpdatedAt)

	rr = ts.request(t, http.MethodGet, "/api/v2/sync/"+playerID.String(), nil, token)
	require.Equal(t, http.StatusOK, rr.Code)

	fetched := decode[response.Profile](t, rr)
	assert.Equal(t, pushed.Version, fetched.Version)
	assert.Equal(t, pushed.Payload, fetched.Payload)
}

// Two devices racing through the full rebase cycle
func TestTwoDeviceConflictAndRebase(t *testing.T) {
	ts := newTestServer(t)
	playerID := uuid.New()
	token := ts.token(t, playerID)
	path := "/api/v2/sync/" + playerID.String()

	// Device A pushes first
	rr := ts.request(t, http.MethodPost, path, request.SyncRequest{
		BaseVersion: 0,
		Payload:     []byte("A"),
		DeviceHint:  "device-a",
	}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	// Device B, still holding version 0, gets rejected with A's state
	rr = ts.request(t, http.MethodPost, path, request.SyncRequest{
		BaseVersion: 0,
		Payload:     []byte("B"),
		DeviceHint:  "device-b",
	}, token)
	require.Equal(t, http.StatusConflict, rr.Code)

	rejection := decode[response.Rejection](t, rr)
	assert.Equal(t, "VERSION_CONFLICT", rejection.Error.Code)
	assert.Equal(t, int64(1), rejection.Version)
	assert.Equal(t, []byte("A"), rejection.Payload)

	// Device B re-bases on the authoritative snapshot and retries
	rr = ts.request(t, http.MethodPost, path, request.SyncRequest{
		BaseVersion: rejection.Version,
		Payload:     []byte("B"),
		DeviceHint:  "device-b",
	}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	final := decode[response.Profile](t, rr)
	assert.Equal(t, int64(2), final.Version)
	assert.Equal(t, []byte("B"), final.Payload)
}

func TestPushFutureBaseVersion(t *testing.T) {
	ts := newTestServer(t)
	playerID := uuid.New()

	rr := ts.request(t, http.MethodPost, "/api/v2/sync/"+playerID.String(), request.SyncRequest{
		BaseVersion: 9,
		Payload:     []byte("x"),
	}, ts.token(t, playerID))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rejection := decode[response.Rejection](t, rr)
	assert.Equal(t, "INVALID_BASE_VERSION", rejection.Error.Code)
	assert.Equal(t, int64(0), rejection.Version)
}

func TestPushNegativeBaseVersion(t *testing.T) {
	ts := newTestServer(t)
	playerID := uuid.New()
	token := ts.token(t, playerID)

	rr := ts.request(t, http.MethodPost, "/api/v2/sync/"+playerID.String(), request.SyncRequest{
		BaseVersion: 0,
		Payload:     []byte("stored"),
	}, token)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(t, http.MethodPost, "/api/v2/sync/"+playerID.String(), request.SyncRequest{
		BaseVersion: -1,
		Payload:     []byte("x"),
	}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	// The rejection body carries the authoritative state for re-basing
	rejection := decode[response.Rejection](t, rr)
	assert.Equal(t, "INVALID_BASE_VERSION", rejection.Error.Code)
	assert.Equal(t, int64(1), rejection.Version)
	assert.Equal(t, []byte("stored"), rejection.Payload)
}

func TestPushOversizedPayload(t *testing.T) {
	ts := newTestServer(t)
	playerID := uuid.New()

	rr := ts.request(t, http.MethodPost, "/api/v2/sync/"+playerID.String(), request.SyncRequest{
		BaseVersion: 0,
		Payload:     bytes.Repeat([]byte("x"), 17*1024),
	}, ts.token(t, playerID))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)

	rejection := decode[response.Rejection](t, rr)
	assert.Equal(t, "PAYLOAD_TOO_LARGE", rejection.Error.Code)
}

func TestSyncRequiresToken(t *testing.T) {
	ts := newTestServer(t)
	playerID := uuid.New()

	rr := ts.request(t, http.MethodGet, "/api/v2/sync/"+playerID.String(), nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(t, http.MethodPost, "/api/v2/sync/"+playerID.String(), request.SyncRequest{}, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSyncRejectsTokenForOtherPlayer(t *testing.T) {
	ts := newTestServer(t)
	token := ts.token(t, uuid.New())
	otherPlayer := uuid.New()

	rr := ts.request(t, http.MethodGet, "/api/v2/sync/"+otherPlayer.String(), nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(t, http.MethodPost, "/api/v2/sync/"+otherPlayer.String(), request.SyncRequest{
		BaseVersion: 0,
		Payload:     []byte("x"),
	}, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSyncRejectsGarbageToken(t *testing.T) {
	ts := newTestServer(t)
	playerID := uuid.New()

	rr := ts.request(t, http.MethodGet, "/api/v2/sync/"+playerID.String(), nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestSyncAcceptsLegacyAuthTokenHeader(t *testing.T) {
	ts := newTestServer(t)
	playerID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/v2/sync/"+playerID.String(), nil)
	req.Header.Set("Auth-Token", ts.token(t, playerID))

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSyncRejectsBadUUID(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(t, http.MethodGet, "/api/v2/sync/not-a-uuid", nil, ts.token(t, uuid.New()))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPushRejectsMalformedBody(t *testing.T) {
	ts := newTestServer(t)
	playerID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v2/sync/"+playerID.String(), strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+ts.token(t, playerID))

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_REQUEST")
}

func TestAuthIssuesUsableToken(t *testing.T) {
	ts := newTestServer(t)
	playerID := uuid.New()
	ts.app.Sessions.PlayerID = playerID

	rr := ts.request(t, http.MethodGet, "/api/v2/auth?username=alice&serverId=hash", nil, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	authResp := decode[response.AuthResponse](t, rr)
	assert.True(t, authResp.Success)
	assert.Equal(t, playerID.String(), authResp.Account)
	assert.NotEmpty(t, authResp.Token)

	// The issued token must work on the sync routes
	rr = ts.request(t, http.MethodGet, "/api/v2/sync/"+playerID.String(), nil, authResp.Token)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthRequiresParams(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(t, http.MethodGet, "/api/v2/auth?username=alice", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = ts.request(t, http.MethodGet, "/api/v2/auth?serverId=hash", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBulkQuery(t *testing.T) {
	ts := newTestServer(t)

	synced := uuid.New()
	unsynced := uuid.New()

	rr := ts.request(t, http.MethodPost, "/api/v2/sync/"+synced.String(), request.SyncRequest{
		BaseVersion: 0,
		Payload:     []byte("stored"),
	}, ts.token(t, synced))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = ts.request(t, http.MethodPost, "/api/v2/bulk-query",
		[]string{synced.String(), unsynced.String()}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	bulk := decode[response.BulkQueryResponse](t, rr)
	assert.True(t, bulk.Success)
	assert.Len(t, bulk.Users, 1)
	assert.Equal(t, []byte("stored"), bulk.Users[synced.String()].Payload)
}

func TestBulkQueryLimits(t *testing.T) {
	ts := newTestServer(t)

	// Too few
	rr := ts.request(t, http.MethodPost, "/api/v2/bulk-query", []string{uuid.NewString()}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Too many
	many := make([]string, 21)
	for i := range many {
		many[i] = uuid.NewString()
	}
	rr = ts.request(t, http.MethodPost, "/api/v2/bulk-query", many, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Duplicates collapse below the minimum
	id := uuid.NewString()
	rr = ts.request(t, http.MethodPost, "/api/v2/bulk-query", []string{id, id}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// Invalid UUID anywhere in the list
	rr = ts.request(t, http.MethodPost, "/api/v2/bulk-query", []string{uuid.NewString(), "nope"}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)

	for i := 0; i < 3; i++ {
		playerID := uuid.New()
		rr := ts.request(t, http.MethodPost, "/api/v2/sync/"+playerID.String(), request.SyncRequest{
			BaseVersion: 0,
			Payload:     []byte("p"),
		}, ts.token(t, playerID))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr := ts.request(t, http.MethodGet, "/api/v2/stats", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	stats := decode[response.StatsResponse](t, rr)
	assert.Equal(t, int64(3), stats.SyncedUsers)
	assert.False(t, stats.Timestamp.IsZero())
}

func TestExpiredTokenRejected(t *testing.T) {
	ts := newTestServer(t)
	playerID := uuid.New()
	token := ts.token(t, playerID)

	ts.app.MockClock.Advance(2 * time.Hour)

	rr := ts.request(t, http.MethodGet, "/api/v2/sync/"+playerID.String(), nil, token)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
