package services

import (
	"context"
	"log/slog"
	"pad-lab/domain"
	"pad-lab/domain/event"
	"pad-lab/errors"
	"pad-lab/observability"
	"pad-lab/runtime"
	"pad-lab/runtime/workers"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// recordingSink captures every event a connection would receive.
type recordingSink struct {
	events chan event.DomainEvent
}

func newRecordingSink() *recordingSink {
	return &recordingSink{events: make(chan event.DomainEvent, 32)}
}

func (s *recordingSink) Consume(_ context.Context, e event.DomainEvent) error {
	select {
	case s.events <- e:
		return nil
	default:
		return errors.ErrSlowConsumer
	}
}

func (s *recordingSink) next(req *require.Assertions) event.DomainEvent {
	select {
	case e := <-s.events:
		return e
	case <-time.After(1 * time.Second):
		req.Fail("No event received in time")
		return nil
	}
}

func (s *recordingSink) expectSilence(req *require.Assertions) {
	select {
	case e := <-s.events:
		req.Fail("Unexpected event", "got %T", e)
	case <-time.After(100 * time.Millisecond):
	}
}

func newServiceFixture(t *testing.T) *PadService {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	monitoring := observability.NewMonitoringManager()
	orchestrator := runtime.NewOrchestrator(log, workers.NewSupervisor(log),
		runtime.NewRegistry(), runtime.NewHub(log, monitoring), monitoring, 32)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, orchestrator.Start(ctx, time.Hour))
	t.Cleanup(cancel)

	return NewPadService(log, orchestrator)
}

func TestPadService_Connect_SendsPrivateSnapshotThenAnnounces(t *testing.T) {
	req := require.New(t)
	service := newServiceFixture(t)
	sink := newRecordingSink()

	// When an unnamed connection arrives
	service.Connect(context.Background(), uuid.NewString(), sink)

	// Then it privately receives the current document first
	snapshot, ok := sink.next(req).(event.DocumentReplaced)
	req.True(ok)
	req.Equal("", snapshot.Content)

	// And the roster and attribution are announced to all connections
	roster, ok := sink.next(req).(event.RosterChanged)
	req.True(ok)
	req.Empty(roster.Participants)

	attribution, ok := sink.next(req).(event.AttributionChanged)
	req.True(ok)
	req.Empty(attribution.Lines)
}

func TestPadService_ClaimIdentity_AnnouncesOnSuccessOnly(t *testing.T) {
	req := require.New(t)
	service := newServiceFixture(t)
	connID := uuid.NewString()
	sink := newRecordingSink()

	service.Connect(context.Background(), connID, sink)
	drain(sink, 3, req) // connect snapshot + announce

	// When the claim is rejected, nothing is broadcast
	_, err := service.ClaimIdentity(context.Background(), connID, "   ", sink)
	req.ErrorIs(err, errors.ErrEmptyIdentity)
	sink.expectSilence(req)

	// When the claim succeeds, the private acceptance arrives before the
	// roster and attribution broadcasts
	participant, err := service.ClaimIdentity(context.Background(), connID, "alice", sink)
	req.NoError(err)
	req.Equal("alice", participant.ID)

	accepted, ok := sink.next(req).(event.IdentityAccepted)
	req.True(ok)
	req.Equal("alice", accepted.UserID)

	roster, ok := sink.next(req).(event.RosterChanged)
	req.True(ok)
	req.Equal([]domain.Participant{participant}, roster.Participants)
	_, ok = sink.next(req).(event.AttributionChanged)
	req.True(ok)
}

func TestPadService_SubmitEdit_PropagatesToAllConnections(t *testing.T) {
	req := require.New(t)
	service := newServiceFixture(t)
	aliceConn, bobConn := uuid.NewString(), uuid.NewString()
	aliceSink, bobSink := newRecordingSink(), newRecordingSink()

	service.Connect(context.Background(), aliceConn, aliceSink)
	drain(aliceSink, 3, req)
	service.Connect(context.Background(), bobConn, bobSink)
	drain(aliceSink, 2, req)
	drain(bobSink, 3, req)

	alice, err := service.ClaimIdentity(context.Background(), aliceConn, "alice", aliceSink)
	req.NoError(err)
	drain(aliceSink, 3, req)
	drain(bobSink, 2, req)

	// When alice edits two lines
	service.SubmitEdit(domain.EditCommand{
		UserID:       "alice",
		Content:      "hello\nworld",
		ChangedLines: []int{0, 1},
	})

	// Then both connections observe the same content and attribution
	for _, sink := range []*recordingSink{aliceSink, bobSink} {
		document, ok := sink.next(req).(event.DocumentReplaced)
		req.True(ok)
		req.Equal("hello\nworld", document.Content)

		attribution, ok := sink.next(req).(event.AttributionChanged)
		req.True(ok)
		expected := domain.LineAttribution{UserID: "alice", Color: alice.Color}
		req.Equal(expected, attribution.Lines[0])
		req.Equal(expected, attribution.Lines[1])
	}
}

func TestPadService_Disconnect_NamedAnnouncesRosterOnly(t *testing.T) {
	req := require.New(t)
	service := newServiceFixture(t)
	aliceConn, bobConn := uuid.NewString(), uuid.NewString()
	aliceSink, bobSink := newRecordingSink(), newRecordingSink()

	service.Connect(context.Background(), aliceConn, aliceSink)
	drain(aliceSink, 3, req)
	service.Connect(context.Background(), bobConn, bobSink)
	drain(aliceSink, 2, req)
	drain(bobSink, 3, req)

	_, err := service.ClaimIdentity(context.Background(), aliceConn, "alice", aliceSink)
	req.NoError(err)
	drain(aliceSink, 3, req)
	drain(bobSink, 2, req)

	// Given alice attributed a line before leaving
	service.SubmitEdit(domain.EditCommand{UserID: "alice", Content: "hello", ChangedLines: []int{0}})
	drain(aliceSink, 2, req)
	drain(bobSink, 2, req)

	// When alice disconnects
	service.Disconnect(aliceConn)

	// Then bob gets a roster without alice and no attribution re-send
	roster, ok := bobSink.next(req).(event.RosterChanged)
	req.True(ok)
	req.Empty(roster.Participants)
	bobSink.expectSilence(req)

	// And alice's identity is free to reclaim while her lines remain hers
	reclaimed, err := service.ClaimIdentity(context.Background(), bobConn, "alice", bobSink)
	req.NoError(err)
	req.Equal("alice", reclaimed.ID)
}

func TestPadService_Disconnect_UnnamedIsSilent(t *testing.T) {
	req := require.New(t)
	service := newServiceFixture(t)
	namedConn, unnamedConn := uuid.NewString(), uuid.NewString()
	namedSink := newRecordingSink()

	service.Connect(context.Background(), namedConn, namedSink)
	drain(namedSink, 3, req)
	service.Connect(context.Background(), unnamedConn, newRecordingSink())
	drain(namedSink, 2, req)

	// When a connection that never claimed a name goes away
	service.Disconnect(unnamedConn)

	// Then nobody is notified
	namedSink.expectSilence(req)
}

func drain(sink *recordingSink, n int, req *require.Assertions) {
	for i := 0; i < n; i++ {
		sink.next(req)
	}
}
