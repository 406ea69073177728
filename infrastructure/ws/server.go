package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"pad-lab/contract"
	"pad-lab/domain"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Server upgrades HTTP requests to websocket sessions and runs one read loop
// per connection. It is the only place aware of transport framing; everything
// behind the IPadService facade is transport-agnostic.
type Server struct {
	log          *slog.Logger
	service      contract.IPadService
	upgrader     websocket.Upgrader
	httpServer   *http.Server
	bufferSize   int
	writeTimeout time.Duration
}

func NewServer(log *slog.Logger, service contract.IPadService,
	addr string, bufferSize int, writeTimeout time.Duration) *Server {
	s := &Server{
		log:     log,
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Editor clients are served from other origins; the pad itself
			// does not authenticate beyond the unique-name claim.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		bufferSize:   bufferSize,
		writeTimeout: writeTimeout,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleUpgrade)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Handler exposes the HTTP surface, used by tests to mount the server
// without binding a port.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is canceled, then drains with a graceful shutdown.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Websocket server listening", "addr", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("websocket server failed: %w", err)
		}
		return nil
	}
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("Upgrade failed", "error", err)
		return
	}

	connID := uuid.NewString()
	client := NewClient(s.log.With("conn_id", connID), conn, s.bufferSize, s.writeTimeout)
	go client.WritePump()

	s.service.Connect(r.Context(), connID, client)
	s.readLoop(r.Context(), connID, conn, client)
}

// readLoop drives the per-connection state machine: unnamed until a claim
// succeeds, then named until close. Cleanup runs on every exit path.
func (s *Server) readLoop(ctx context.Context, connID string, conn *websocket.Conn, client *Client) {
	defer func() {
		s.service.Disconnect(connID)
		client.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.log.Error("Read error", "conn_id", connID, "error", err)
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			// One bad payload must not tear the session down.
			s.log.Warn("Dropping unparseable message", "conn_id", connID, "error", err)
			continue
		}

		switch msg.Type {
		case TypeCheckUsername:
			s.handleClaim(ctx, connID, client, msg)
		case TypeEdit:
			s.handleEdit(connID, msg)
		default:
			s.log.Warn("Ignoring unknown message type", "conn_id", connID, "type", msg.Type)
		}
	}
}

// handleClaim delegates to the service, which replies privately through the
// client sink on success before announcing; only the rejection reply is sent
// from here.
func (s *Server) handleClaim(ctx context.Context, connID string, client *Client, msg ClientMessage) {
	if _, err := s.service.ClaimIdentity(ctx, connID, msg.Username, client); err != nil {
		s.log.Debug("Identity claim rejected",
			"conn_id", connID, "username", msg.Username, "error", err)
		if err := client.Enqueue(NewUsernameRejected()); err != nil {
			s.log.Warn("Failed to deliver rejection", "conn_id", connID, "error", err)
		}
	}
}

func (s *Server) handleEdit(connID string, msg ClientMessage) {
	if err := ValidateMessage(msg); err != nil {
		s.log.Warn("Dropping invalid edit", "conn_id", connID, "error", err)
		return
	}
	s.service.SubmitEdit(domain.EditCommand{
		UserID:       msg.UserID,
		Content:      msg.Content,
		ChangedLines: msg.ChangedLines,
	})
}
