// Package runtime handles session tracking, command serialization, and
// broadcast propagation. It orchestrates the system without containing
// business logic or domain rules.
package runtime

import (
	"pad-lab/domain"
	"pad-lab/errors"
	"strings"
	"sync"
)

// Registry maps each live connection to its claimed participant identity.
// A connection stays unnamed until a claim succeeds; identity uniqueness is
// checked at claim time only and holds across all registered participants.
type Registry struct {
	mu       sync.RWMutex
	Sessions map[string]domain.Participant // map connection ID -> participant
}

func NewRegistry() *Registry {
	return &Registry{Sessions: make(map[string]domain.Participant)}
}

// Claim attempts to register desiredName for connID.
// The name is trimmed first; an empty result or an identity already held by
// any registered participant rejects the claim. On success the participant
// gets an arbitrary palette color, repeats with other participants allowed.
func (r *Registry) Claim(connID string, desiredName string) (domain.Participant, error) {
	identity := strings.TrimSpace(desiredName)
	if identity == "" {
		return domain.Participant{}, errors.ErrEmptyIdentity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.Sessions {
		if p.ID == identity {
			return domain.Participant{}, errors.ErrIdentityTaken
		}
	}

	participant := domain.Participant{ID: identity, Color: domain.PickColor()}
	r.Sessions[connID] = participant
	return participant, nil
}

// Release removes the mapping for connID if present.
// Safe to call for connections that never claimed a name; the returned flag
// tells the caller whether a roster re-announce is due.
func (r *Registry) Release(connID string) (domain.Participant, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	participant, ok := r.Sessions[connID]
	if ok {
		delete(r.Sessions, connID)
	}
	return participant, ok
}

// Participants returns a snapshot of the current roster.
// Iteration order carries no meaning for clients.
func (r *Registry) Participants() []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roster := make([]domain.Participant, 0, len(r.Sessions))
	for _, p := range r.Sessions {
		roster = append(roster, p)
	}
	return roster
}

// FindByIdentity resolves a claimed identity to its current participant,
// used to stamp an edit's lines with the author's current color.
func (r *Registry) FindByIdentity(identity string) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.Sessions {
		if p.ID == identity {
			return p, true
		}
	}
	return domain.Participant{}, false
}
