package services

import (
	"context"
	"log/slog"
	"pad-lab/contract"
	"pad-lab/domain"
	"pad-lab/domain/event"
	"pad-lab/runtime"
)

// PadService is the facade the transport layer drives.
// Identity claims are synchronous because the caller must reply privately;
// everything that broadcasts goes through the orchestrator's command pipeline
// so all connections observe updates in one order.
type PadService struct {
	log          *slog.Logger
	orchestrator *runtime.Orchestrator
}

func NewPadService(log *slog.Logger, o *runtime.Orchestrator) *PadService {
	return &PadService{log: log, orchestrator: o}
}

// Connect registers a freshly accepted, still unnamed connection.
// The new connection gets a private document snapshot right away, then the
// roster and attribution are re-announced to everyone, unnamed included.
func (s *PadService) Connect(ctx context.Context, connID string, sink contract.EventSink) {
	s.orchestrator.Hub().Register(connID, sink)

	snapshot := event.DocumentReplaced{Content: s.orchestrator.Document().Snapshot()}
	if err := sink.Consume(ctx, snapshot); err != nil {
		s.log.Warn("Failed to deliver initial snapshot", "conn_id", connID, "error", err)
	}
	s.orchestrator.Dispatch(domain.AnnounceCommand{Attribution: true})
}

// Disconnect releases the connection on every exit path, named or not.
// Attribution is deliberately not re-broadcast: departed participants keep
// their lines.
func (s *PadService) Disconnect(connID string) {
	s.orchestrator.Hub().Unregister(connID)

	if _, named := s.orchestrator.Registry().Release(connID); named {
		s.orchestrator.Dispatch(domain.AnnounceCommand{})
	}
}

// ClaimIdentity attempts the unique-name claim for connID.
// On success the acceptance is delivered privately through the sink before
// the roster announce is dispatched, so the claiming connection always sees
// its reply ahead of the broadcast. Rejections are left to the caller.
func (s *PadService) ClaimIdentity(ctx context.Context, connID string, desiredName string,
	sink contract.EventSink) (domain.Participant, error) {
	participant, err := s.orchestrator.Registry().Claim(connID, desiredName)
	if err != nil {
		return domain.Participant{}, err
	}

	if err := sink.Consume(ctx, event.IdentityAccepted{UserID: participant.ID}); err != nil {
		s.log.Warn("Failed to deliver acceptance", "conn_id", connID, "error", err)
	}
	s.orchestrator.Dispatch(domain.AnnounceCommand{Attribution: true})
	return participant, nil
}

// SubmitEdit queues a document replacement; no authorization check ties the
// claimed author to the submitting connection.
func (s *PadService) SubmitEdit(cmd domain.EditCommand) {
	s.orchestrator.Dispatch(cmd)
}
