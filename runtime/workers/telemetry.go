package workers

import (
	"context"
	"log/slog"
	"os"
	"pad-lab/observability"
	"time"

	"github.com/shirou/gopsutil/process"
)

// TelemetryWorker periodically logs process self-stats (CPU, RSS) together
// with the pad counters. Observability only, no side effect on the session.
type TelemetryWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	interval   time.Duration
}

func NewTelemetryWorker(log *slog.Logger,
	monitoring *observability.MonitoringManager, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, monitoring: monitoring, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	w.log.Info("Starting telemetry worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			rss, cpu, err := getSelfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "err", err)
				continue
			}

			stats := w.monitoring.GetLatest()
			w.log.Info("telemetry: pad status",
				"open_connections", stats.OpenConnections,
				"edits_applied", stats.EditsApplied,
				"broadcasts_sent", stats.BroadcastsSent,
				"deliveries_dropped", stats.DeliveriesDropped,
				"commands_dropped", stats.CommandsDropped,
				"ram_bytes", rss,
				"cpu_percent", cpu,
			)
		}
	}
}

func getSelfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpu, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpu, nil
}
