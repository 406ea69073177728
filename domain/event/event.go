package event

import "pad-lab/domain"

// DomainEvent is a full-state notification fanned out to connections.
// Every event carries a complete snapshot, never a delta: a connection
// that misses one round is made whole by the next.
type DomainEvent interface {
	EventName() string
}

// DocumentReplaced carries the full document content after an edit,
// and also serves as the private snapshot sent to a joining connection.
type DocumentReplaced struct {
	Content string
}

func (DocumentReplaced) EventName() string { return "document_replaced" }

// AttributionChanged carries the full line to last-editor mapping.
type AttributionChanged struct {
	Lines map[int]domain.LineAttribution
}

func (AttributionChanged) EventName() string { return "attribution_changed" }

// IdentityAccepted is delivered privately to the claiming connection only,
// before the roster broadcast its claim triggers.
type IdentityAccepted struct {
	UserID string
}

func (IdentityAccepted) EventName() string { return "identity_accepted" }

// RosterChanged carries the full list of named participants.
type RosterChanged struct {
	Participants []domain.Participant
}

func (RosterChanged) EventName() string { return "roster_changed" }
