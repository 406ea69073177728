package runtime

import (
	"context"
	"log/slog"
	"pad-lab/contract"
	"pad-lab/domain/event"
	"pad-lab/observability"
	"sync"
)

// Hub fans events out to every registered connection sink.
// Delivery is fire-and-forget: a sink that cannot take the event right now is
// skipped for this round and catches up on the next full-state broadcast.
type Hub struct {
	mu         sync.RWMutex
	log        *slog.Logger
	sinks      map[string]contract.EventSink // map connection ID -> sink
	monitoring *observability.MonitoringManager
}

func NewHub(log *slog.Logger, monitoring *observability.MonitoringManager) *Hub {
	return &Hub{
		log:        log,
		sinks:      make(map[string]contract.EventSink),
		monitoring: monitoring,
	}
}

func (h *Hub) Register(connID string, sink contract.EventSink) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sinks[connID] = sink
	h.monitoring.ConnectionOpened()
}

func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sinks[connID]; ok {
		delete(h.sinks, connID)
		h.monitoring.ConnectionClosed()
	}
}

// Broadcast delivers e to a snapshot of the currently registered sinks.
// One failed recipient never aborts the loop or delays the others.
func (h *Hub) Broadcast(ctx context.Context, e event.DomainEvent) {
	h.mu.RLock()
	snapshot := make(map[string]contract.EventSink, len(h.sinks))
	for connID, sink := range h.sinks {
		snapshot[connID] = sink
	}
	h.mu.RUnlock()

	for connID, sink := range snapshot {
		if err := sink.Consume(ctx, e); err != nil {
			h.monitoring.DeliveryDropped()
			h.log.Debug("Skipping recipient for this round",
				"conn_id", connID, "event", e.EventName(), "error", err)
		}
	}
	h.monitoring.BroadcastSent()
}
