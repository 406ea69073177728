package runtime

import (
	"context"
	"log/slog"
	"pad-lab/contract"
	"pad-lab/domain"
	"pad-lab/observability"
	"pad-lab/runtime/workers"
	"time"
)

// Orchestrator owns the shared pad state and the command pipeline.
// Every document mutation flows through a single buffered channel consumed by
// one PadWorker goroutine, so concurrent connections never observe a
// partially applied mutation and all broadcasts share one total order.
type Orchestrator struct {
	log        *slog.Logger
	document   *domain.Document
	registry   *Registry
	hub        *Hub
	supervisor contract.ISupervisor
	commands   chan domain.Command
	monitoring *observability.MonitoringManager
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor,
	registry *Registry, hub *Hub, monitoring *observability.MonitoringManager,
	bufferSize int) *Orchestrator {
	return &Orchestrator{
		log:        log,
		document:   domain.NewDocument(),
		registry:   registry,
		hub:        hub,
		supervisor: supervisor,
		commands:   make(chan domain.Command, bufferSize),
		monitoring: monitoring,
	}
}

func (o *Orchestrator) Document() *domain.Document { return o.document }

func (o *Orchestrator) Registry() *Registry { return o.registry }

func (o *Orchestrator) Hub() *Hub { return o.hub }

// Dispatch queues a command without ever blocking a connection handler.
// A full pipeline drops the command: the next full-state broadcast will
// resynchronize every client anyway.
func (o *Orchestrator) Dispatch(cmd domain.Command) {
	select {
	case o.commands <- cmd:
	default:
		o.monitoring.CommandDropped()
		o.log.Warn("Command channel full, dropping command", "command", cmd.Name())
	}
}

// Start wires the workers under supervision and runs them until ctx ends.
func (o *Orchestrator) Start(ctx context.Context, telemetryInterval time.Duration) error {
	padWorker := workers.NewPadWorker(o.log, o.document, o.registry, o.hub,
		o.commands, o.monitoring)
	telemetryWorker := workers.NewTelemetryWorker(o.log, o.monitoring, telemetryInterval)

	o.supervisor.Add(padWorker, telemetryWorker)
	go o.supervisor.Run(ctx)
	return nil
}

func (o *Orchestrator) Stop() {
	o.supervisor.Stop()
}
