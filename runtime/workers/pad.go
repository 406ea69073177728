package workers

import (
	"context"
	"log/slog"
	"pad-lab/contract"
	"pad-lab/domain"
	"pad-lab/domain/event"
	"pad-lab/observability"
)

// PadWorker is the single writer of the shared document.
// It drains the command channel in one goroutine: mutations from concurrent
// connections are applied one at a time and every broadcast leaves the hub in
// the same order the commands arrived.
type PadWorker struct {
	log        *slog.Logger
	document   *domain.Document
	registry   contract.IRegistry
	hub        contract.IHub
	commands   <-chan domain.Command
	monitoring *observability.MonitoringManager
}

func NewPadWorker(log *slog.Logger, document *domain.Document,
	registry contract.IRegistry, hub contract.IHub,
	commands <-chan domain.Command,
	monitoring *observability.MonitoringManager) *PadWorker {
	return &PadWorker{
		log:        log,
		document:   document,
		registry:   registry,
		hub:        hub,
		commands:   commands,
		monitoring: monitoring,
	}
}

func (w *PadWorker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping pad worker")
			return ctx.Err()
		case cmd, ok := <-w.commands:
			if !ok {
				return nil
			}
			switch c := cmd.(type) {
			case domain.EditCommand:
				w.applyEdit(ctx, c)
			case domain.AnnounceCommand:
				w.announce(ctx, c.Attribution)
			default:
				w.log.Warn("Unknown command type", "command", cmd.Name())
			}
		}
	}
}

// applyEdit replaces the document wholesale, then stamps the reported lines
// with the author's current color. The changed-line set is trusted as-is: a
// client reporting a wrong set desynchronizes attribution from content, and
// the server does not verify the sender owns the claimed identity.
func (w *PadWorker) applyEdit(ctx context.Context, cmd domain.EditCommand) {
	w.document.Replace(cmd.Content)

	if author, ok := w.registry.FindByIdentity(cmd.UserID); ok {
		for _, line := range cmd.ChangedLines {
			w.document.RecordAttribution(line, author)
		}
	} else {
		w.log.Debug("Edit attributed to unknown identity, content kept",
			"user_id", cmd.UserID)
	}
	w.monitoring.EditApplied()

	w.hub.Broadcast(ctx, event.DocumentReplaced{Content: w.document.Snapshot()})
	w.hub.Broadcast(ctx, event.AttributionChanged{Lines: w.document.AttributionSnapshot()})
}

// announce re-broadcasts the roster, plus the attribution mapping on joins
// and successful claims. Disconnects re-announce the roster only.
func (w *PadWorker) announce(ctx context.Context, withAttribution bool) {
	w.hub.Broadcast(ctx, event.RosterChanged{Participants: w.registry.Participants()})
	if withAttribution {
		w.hub.Broadcast(ctx, event.AttributionChanged{Lines: w.document.AttributionSnapshot()})
	}
}
