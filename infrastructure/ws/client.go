package ws

import (
	"context"
	"log/slog"
	"pad-lab/domain/event"
	"pad-lab/errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is the per-connection event sink and write side.
// All writes to the underlying websocket go through a single pump goroutine
// fed by a buffered channel; a full buffer means the consumer is too slow and
// the message is skipped for this round. Full-state broadcasts make the
// client whole on the next round.
type Client struct {
	log          *slog.Logger
	conn         *websocket.Conn
	send         chan any
	done         chan struct{}
	closeOnce    sync.Once
	writeTimeout time.Duration
}

func NewClient(log *slog.Logger, conn *websocket.Conn,
	bufferSize int, writeTimeout time.Duration) *Client {
	return &Client{
		log:          log,
		conn:         conn,
		send:         make(chan any, bufferSize),
		done:         make(chan struct{}),
		writeTimeout: writeTimeout,
	}
}

// Consume is called by the hub's fan-out.
// It never blocks: backpressure is resolved by dropping for this round.
func (c *Client) Consume(ctx context.Context, e event.DomainEvent) error {
	msg, ok := FromEvent(e)
	if !ok {
		return nil
	}
	return c.Enqueue(msg)
}

// Enqueue queues one wire message for the pump.
func (c *Client) Enqueue(msg any) error {
	select {
	case <-c.done:
		return errors.ErrServiceClosed
	default:
	}

	select {
	case c.send <- msg:
		return nil
	default:
		return errors.ErrSlowConsumer
	}
}

// WritePump serializes queued messages onto the connection.
// A write failure closes the connection; the read loop notices and performs
// the session cleanup.
func (c *Client) WritePump() {
	defer c.conn.Close()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.log.Debug("Write failed, closing connection", "error", err)
				return
			}
		}
	}
}

// Close is idempotent and safe from any goroutine.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
