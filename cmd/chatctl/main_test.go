package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Tyrowin/relaychat/internal/chat"
	"github.com/stretchr/testify/require"
)

func adminServer(t *testing.T, status int, participants []chat.Participant) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/admin/users", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(participants)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRunRendersParticipants(t *testing.T) {
	req := require.New(t)
	srv := adminServer(t, http.StatusOK, []chat.Participant{
		{ID: "p1", DisplayName: "Alice", SourceAddress: "10.0.0.1", ClientAgent: "curl", JoinedAt: time.Now()},
		{ID: "p2", DisplayName: "Bob", SourceAddress: "10.0.0.2", ClientAgent: "firefox", JoinedAt: time.Now()},
	})
	var out bytes.Buffer

	err := run(srv.URL+"/", time.Second, &out)

	req.NoError(err)
	req.Contains(out.String(), "Alice")
	req.Contains(out.String(), "10.0.0.2")
	req.Contains(out.String(), "2 participant(s) online")
}

func TestRunWithNobodyOnline(t *testing.T) {
	srv := adminServer(t, http.StatusOK, []chat.Participant{})
	var out bytes.Buffer

	require.NoError(t, run(srv.URL, time.Second, &out))
	require.Contains(t, out.String(), "No participants online")
}

func TestRunFailsOnBadStatus(t *testing.T) {
	srv := adminServer(t, http.StatusInternalServerError, nil)
	var out bytes.Buffer

	err := run(srv.URL, time.Second, &out)

	require.ErrorContains(t, err, "unexpected status")
	require.Empty(t, out.String())
}
