package observability

import (
	"sync/atomic"
)

// MonitoringStats aggregates the live counters for telemetry logs.
type MonitoringStats struct {
	OpenConnections   int64  `json:"open_connections"`
	EditsApplied      uint64 `json:"edits_applied"`
	BroadcastsSent    uint64 `json:"broadcasts_sent"`
	DeliveriesDropped uint64 `json:"deliveries_dropped"`
	CommandsDropped   uint64 `json:"commands_dropped"`
}

// MonitoringManager collects real-time counters from the hub and the
// pad worker. All methods are safe for concurrent use.
type MonitoringManager struct {
	openConnections   atomic.Int64
	editsApplied      atomic.Uint64
	broadcastsSent    atomic.Uint64
	deliveriesDropped atomic.Uint64
	commandsDropped   atomic.Uint64
}

func NewMonitoringManager() *MonitoringManager {
	return &MonitoringManager{}
}

func (m *MonitoringManager) ConnectionOpened() { m.openConnections.Add(1) }
func (m *MonitoringManager) ConnectionClosed() { m.openConnections.Add(-1) }
func (m *MonitoringManager) EditApplied()      { m.editsApplied.Add(1) }
func (m *MonitoringManager) BroadcastSent()    { m.broadcastsSent.Add(1) }
func (m *MonitoringManager) DeliveryDropped()  { m.deliveriesDropped.Add(1) }
func (m *MonitoringManager) CommandDropped()   { m.commandsDropped.Add(1) }

// GetLatest returns a point-in-time copy of every counter.
func (m *MonitoringManager) GetLatest() MonitoringStats {
	return MonitoringStats{
		OpenConnections:   m.openConnections.Load(),
		EditsApplied:      m.editsApplied.Load(),
		BroadcastsSent:    m.broadcastsSent.Load(),
		DeliveriesDropped: m.deliveriesDropped.Load(),
		CommandsDropped:   m.commandsDropped.Load(),
	}
}
