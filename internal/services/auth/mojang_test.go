package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMojangValidateSucceeds(t *testing.T) {
	playerID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, hasJoinedPath, r.URL.Path)
		assert.Equal(t, "alice", r.URL.Query().Get("username"))
		assert.Equal(t, "serverhash", r.URL.Query().Get("serverId"))

		w.Header().Set("Content-Type", "application/json")
		// Session servers return the UUID without dashes
		_, _ = w.Write([]byte(`{"id":"` + undashed(playerID) + `","name":"alice"}`))
	}))
	defer srv.Close()

	client := NewMojangClient(srv.URL)
	got, err := client.Validate(context.Background(), "alice", "serverhash")
	require.NoError(t, err)
	assert.Equal(t, playerID, got)
}

func TestMojangValidateNoJoinOnRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewMojangClient(srv.URL)
	_, err := client.Validate(context.Background(), "alice", "serverhash")
	assert.ErrorIs(t, err, ErrSessionRejected)
}

func TestMojangValidateEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewMojangClient(srv.URL)
	_, err := client.Validate(context.Background(), "alice", "serverhash")
	assert.ErrorIs(t, err, ErrSessionRejected)
}

func TestMojangValidateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewMojangClient(srv.URL)
	_, err := client.Validate(context.Background(), "alice", "serverhash")
	assert.ErrorIs(t, err, ErrSessionUnavailable)
}

func TestMojangValidateUnreachable(t *testing.T) {
	// Grab an address nothing is listening on
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewMojangClient(srv.URL)
	_, err := client.Validate(context.Background(), "alice", "serverhash")
	assert.ErrorIs(t, err, ErrSessionUnavailable)
}

func TestMojangValidateMalformedAccountID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"not-a-uuid","name":"alice"}`))
	}))
	defer srv.Close()

	client := NewMojangClient(srv.URL)
	_, err := client.Validate(context.Background(), "alice", "serverhash")
	assert.ErrorIs(t, err, ErrSessionRejected)
}

func TestMojangValidateRequiresBothParams(t *testing.T) {
	client := NewMojangClient("http://example.invalid")

	_, err := client.Validate(context.Background(), "", "serverhash")
	assert.ErrorIs(t, err, ErrSessionRejected)

	_, err = client.Validate(context.Background(), "alice", "")
	assert.ErrorIs(t, err, ErrSessionRejected)
}

// undashed formats a UUID the way the session servers do
func undashed(id uuid.UUID) string {
	s := id.String()
	return s[0:8] + s[9:13] + s[14:18] + s[19:23] + s[24:]
}
