package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pad-lab/infrastructure/ws"
	"pad-lab/observability"
	"pad-lab/runtime"
	"pad-lab/runtime/workers"
	"pad-lab/services"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseWsSuite struct {
	suite.Suite
	Config  Config
	baseURL string
	cancel  context.CancelFunc
	server  *httptest.Server
	suiteT  *testing.T
}

// SetupSuite loads the environment configuration and, unless PAD_ADDR points
// at an external server, boots the full in-process stack.
func (s *BaseWsSuite) SetupSuite() {
	s.suiteT = s.T()

	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)

	if s.Config.PadAddr != "" {
		s.baseURL = "ws://" + s.Config.PadAddr
		return
	}

	log := logs.GetLoggerFromLevel(slog.LevelWarn)
	monitoring := observability.NewMonitoringManager()
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log),
		runtime.NewRegistry(), runtime.NewHub(log, monitoring), monitoring, 64)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.Require().NoError(orchestrator.Start(ctx, time.Hour))

	server := ws.NewServer(log, services.NewPadService(log, orchestrator),
		"127.0.0.1:0", 64, 2*time.Second)
	s.server = httptest.NewServer(server.Handler())
	s.baseURL = "ws" + strings.TrimPrefix(s.server.URL, "http")
}

func (s *BaseWsSuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// DialPad opens one editor connection with a colorized header in the logs.
func (s *BaseWsSuite) DialPad(name string) *websocket.Conn {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	conn, resp, err := websocket.DefaultDialer.Dial(s.baseURL+"/ws", nil)
	s.Require().NoError(err)
	if resp != nil {
		_ = resp.Body.Close()
	}
	// Cleanup must outlive the subtest DialPad is called from: inside
	// s.Run, s.T() is the subtest's T, which would close the connection
	// as soon as that step finishes.
	s.suiteT.Cleanup(func() { _ = conn.Close() })
	return conn
}

// ReadUntil skips interleaved broadcasts until msgType arrives.
func (s *BaseWsSuite) ReadUntil(conn *websocket.Conn, msgType string) map[string]any {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		var msg map[string]any
		s.Require().NoError(conn.ReadJSON(&msg), "waiting for %s", msgType)
		if msg["type"] == msgType {
			return msg
		}
	}
	s.Require().FailNowf("Message type never arrived", "wanted %s", msgType)
	return nil
}

// ExpectNoMessage asserts transport silence for a short window.
func (s *BaseWsSuite) ExpectNoMessage(conn *websocket.Conn, window time.Duration) {
	_ = conn.SetReadDeadline(time.Now().Add(window))
	var msg map[string]any
	err := conn.ReadJSON(&msg)
	s.Require().Error(err, "expected silence, got %v", msg)
}

func (s *BaseWsSuite) Send(conn *websocket.Conn, msg any) {
	s.Require().NoError(conn.WriteJSON(msg))
}
