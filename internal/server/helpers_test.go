package server_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Tyrowin/relaychat/internal/chat"
	"github.com/Tyrowin/relaychat/internal/server"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://localhost:5001"

// envelope mirrors the outbound frame with a typed view of common payloads.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// startTestServer runs a relay behind httptest and returns it with its
// websocket URL. Everything is torn down with the test.
func startTestServer(t *testing.T, cfg *server.Config) (*server.Server, *httptest.Server, string) {
	t.Helper()
	if cfg == nil {
		cfg = server.NewConfig()
	}
	cfg.ShutdownTimeout = 2 * time.Second

	srv := server.NewServer(cfg, logs.GetLoggerFromLevel(slog.LevelDebug))
	srv.StartHub()
	testServer := httptest.NewServer(srv.Routes())

	t.Cleanup(func() {
		testServer.Close()
		_ = srv.Hub().Shutdown(2 * time.Second)
	})

	wsURL := "ws" + strings.TrimPrefix(testServer.URL, "http") + "/ws"
	return srv, testServer, wsURL
}

// connect dials the relay with a proper origin header.
func connect(t *testing.T, wsURL string) *websocket.Conn {
	t.Helper()
	conn, err := dial(wsURL, testOrigin)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// connectForwarded dials the relay claiming to be forwarded for clientIP.
func connectForwarded(t *testing.T, wsURL, clientIP string) *websocket.Conn {
	t.Helper()
	headers := http.Header{}
	headers.Set("X-Forwarded-For", clientIP)
	conn, err := dialWithHeaders(wsURL, testOrigin, headers)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func dial(wsURL, origin string) (*websocket.Conn, error) {
	return dialWithHeaders(wsURL, origin, http.Header{})
}

func dialWithHeaders(wsURL, origin string, headers http.Header) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	if origin != "" {
		headers.Set("Origin", origin)
	}
	headers.Set("User-Agent", "relay-test/1.0")

	conn, resp, err := dialer.Dial(wsURL, headers)
	if resp != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

func sendJSON(t *testing.T, conn *websocket.Conn, msgType string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]any{"type": msgType, "data": data}))
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

// expect reads the next frame, asserts its type and decodes its data into out.
func expect(t *testing.T, conn *websocket.Conn, msgType string, out any) {
	t.Helper()
	env := readEnvelope(t, conn)
	require.Equal(t, msgType, env.Type, "unexpected frame: %s", string(env.Data))
	if out != nil {
		require.NoError(t, json.Unmarshal(env.Data, out))
	}
}

// expectNothing asserts no frame arrives within d. The connection cannot be
// read from afterwards.
func expectNothing(t *testing.T, conn *websocket.Conn, d time.Duration) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(d)))
	_, data, err := conn.ReadMessage()
	require.Error(t, err, "expected no frame, got %s", string(data))
}

// join sends a join and consumes the four frames the joiner receives.
func join(t *testing.T, conn *websocket.Conn, name string) (chat.Welcome, []chat.ChatEvent) {
	t.Helper()
	sendJSON(t, conn, "join", name)

	var welcome chat.Welcome
	expect(t, conn, "welcome", &welcome)
	var previous []chat.ChatEvent
	expect(t, conn, "previousMessages", &previous)

	var announcement chat.ChatEvent
	expect(t, conn, "message", &announcement)
	require.Equal(t, name+" has joined the chat", announcement.Content)
	expect(t, conn, "userList", nil)

	return welcome, previous
}

// drainJoin consumes the announcement and user list another client's join
// produces on conn.
func drainJoin(t *testing.T, conn *websocket.Conn, name string) []chat.Participant {
	t.Helper()
	var announcement chat.ChatEvent
	expect(t, conn, "message", &announcement)
	require.Equal(t, name+" has joined the chat", announcement.Content)
	var users []chat.Participant
	expect(t, conn, "userList", &users)
	return users
}
