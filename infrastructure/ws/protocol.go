// Package ws carries the websocket transport: the JSON wire protocol, the
// per-connection sink, and the HTTP upgrade server.
package ws

import (
	"pad-lab/domain"
	"pad-lab/domain/event"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// Message types exchanged with editor clients. One JSON object per message,
// dispatched on the "type" field.
const (
	TypeCheckUsername         = "checkUsername"
	TypeEdit                  = "edit"
	TypeUsernameAccepted      = "usernameAccepted"
	TypeUsernameRejected      = "usernameRejected"
	TypeDocumentUpdate        = "documentUpdate"
	TypeUserListUpdate        = "userListUpdate"
	TypeLineAttributionUpdate = "lineAttributionUpdate"
)

var validate = validator.New()

// ClientMessage is the inbound envelope. Only the fields matching the
// declared type are meaningful, the rest stay at their zero value.
type ClientMessage struct {
	Type         string `json:"type" validate:"required"`
	Username     string `json:"username"`
	UserID       string `json:"userId"`
	Content      string `json:"content"`
	ChangedLines []int  `json:"changedLines" validate:"dive,gte=0"`
}

func ValidateMessage(m ClientMessage) error {
	return validate.Struct(m)
}

type UserEntry struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

type LineEdit struct {
	UserID string `json:"userId"`
	Color  string `json:"color"`
}

type UsernameAccepted struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
}

type UsernameRejected struct {
	Type string `json:"type"`
}

type DocumentUpdate struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type UserListUpdate struct {
	Type  string      `json:"type"`
	Users []UserEntry `json:"users"`
}

type LineAttributionUpdate struct {
	Type      string           `json:"type"`
	LineEdits map[int]LineEdit `json:"lineEdits"`
}

func NewUsernameAccepted(userID string) UsernameAccepted {
	return UsernameAccepted{Type: TypeUsernameAccepted, UserID: userID}
}

func NewUsernameRejected() UsernameRejected {
	return UsernameRejected{Type: TypeUsernameRejected}
}

// FromEvent translates a broadcast event into its wire message.
// Every message is a full snapshot, never a delta.
func FromEvent(e event.DomainEvent) (any, bool) {
	switch evt := e.(type) {
	case event.IdentityAccepted:
		return NewUsernameAccepted(evt.UserID), true
	case event.DocumentReplaced:
		return DocumentUpdate{Type: TypeDocumentUpdate, Content: evt.Content}, true
	case event.AttributionChanged:
		lineEdits := make(map[int]LineEdit, len(evt.Lines))
		for line, entry := range evt.Lines {
			lineEdits[line] = LineEdit{UserID: entry.UserID, Color: entry.Color}
		}
		return LineAttributionUpdate{Type: TypeLineAttributionUpdate, LineEdits: lineEdits}, true
	case event.RosterChanged:
		users := lo.Map(evt.Participants, func(p domain.Participant, _ int) UserEntry {
			return UserEntry{ID: p.ID, Color: p.Color}
		})
		return UserListUpdate{Type: TypeUserListUpdate, Users: users}, true
	default:
		return nil, false
	}
}
