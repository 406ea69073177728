package ws

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"pad-lab/observability"
	"pad-lab/runtime"
	"pad-lab/runtime/workers"
	"pad-lab/services"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	monitoring := observability.NewMonitoringManager()
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log),
		runtime.NewRegistry(), runtime.NewHub(log, monitoring), monitoring, 32)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, orchestrator.Start(ctx, time.Hour))
	t.Cleanup(cancel)

	server := NewServer(log, services.NewPadService(log, orchestrator),
		"127.0.0.1:0", 32, 1*time.Second)
	httpServer := httptest.NewServer(server.Handler())
	t.Cleanup(httpServer.Close)
	return httpServer
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil skips interleaved broadcasts until a message of the wanted type
// arrives. Per-connection ordering is stable but private replies and hub
// broadcasts may interleave.
func readUntil(req *require.Assertions, conn *websocket.Conn, msgType string) map[string]any {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var msg map[string]any
		if err := conn.ReadJSON(&msg); err != nil {
			req.FailNow("Read failed while waiting", "wanted %s: %v", msgType, err)
		}
		if msg["type"] == msgType {
			return msg
		}
	}
	req.FailNow("Message type never arrived", "wanted %s", msgType)
	return nil
}

func send(req *require.Assertions, conn *websocket.Conn, msg any) {
	req.NoError(conn.WriteJSON(msg))
}

func TestServer_ConnectReceivesFullState(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	// When a client connects
	conn := dial(t, server)

	// Then it receives the document snapshot, the roster, and the attribution
	document := readUntil(req, conn, TypeDocumentUpdate)
	req.Equal("", document["content"])

	roster := readUntil(req, conn, TypeUserListUpdate)
	req.Empty(roster["users"])

	attribution := readUntil(req, conn, TypeLineAttributionUpdate)
	req.Empty(attribution["lineEdits"])
}

func TestServer_ClaimReply(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)
	conn := dial(t, server)

	// When the client claims a free name
	send(req, conn, map[string]any{"type": TypeCheckUsername, "username": "alice"})

	// Then it is privately accepted with the trimmed identity
	accepted := readUntil(req, conn, TypeUsernameAccepted)
	req.Equal("alice", accepted["userId"])

	// When a second connection claims the same name
	conn2 := dial(t, server)
	send(req, conn2, map[string]any{"type": TypeCheckUsername, "username": "alice"})
	readUntil(req, conn2, TypeUsernameRejected)

	// And a whitespace-only name is always rejected
	send(req, conn2, map[string]any{"type": TypeCheckUsername, "username": "   "})
	readUntil(req, conn2, TypeUsernameRejected)
}

func TestServer_MalformedMessageKeepsConnectionAlive(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)
	conn := dial(t, server)
	readUntil(req, conn, TypeLineAttributionUpdate)

	// When the client sends garbage
	req.NoError(conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	// Then the session survives and processes the next message normally
	send(req, conn, map[string]any{"type": TypeCheckUsername, "username": "alice"})
	accepted := readUntil(req, conn, TypeUsernameAccepted)
	req.Equal("alice", accepted["userId"])
}

func TestServer_UnknownMessageTypeIsIgnored(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)
	conn := dial(t, server)
	readUntil(req, conn, TypeLineAttributionUpdate)

	// When the client sends an unrecognized type
	send(req, conn, map[string]any{"type": "dance", "moves": 3})

	// Then no reply comes back but the connection still works
	send(req, conn, map[string]any{"type": TypeCheckUsername, "username": "bob"})
	readUntil(req, conn, TypeUsernameAccepted)
}

func TestServer_InvalidEditIsDropped(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)
	conn := dial(t, server)
	readUntil(req, conn, TypeLineAttributionUpdate)

	send(req, conn, map[string]any{"type": TypeCheckUsername, "username": "alice"})
	readUntil(req, conn, TypeUsernameAccepted)

	// When an edit reports a negative line index
	send(req, conn, map[string]any{
		"type": TypeEdit, "userId": "alice",
		"content": "evil", "changedLines": []int{-1},
	})

	// Then no document update is broadcast for it
	send(req, conn, map[string]any{
		"type": TypeEdit, "userId": "alice",
		"content": "good", "changedLines": []int{0},
	})
	document := readUntil(req, conn, TypeDocumentUpdate)
	req.Equal("good", document["content"])
}

func TestServer_Healthz(t *testing.T) {
	req := require.New(t)
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)
}
