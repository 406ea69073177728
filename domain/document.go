package domain

import "sync"

// LineAttribution is a value copy of the participant who last touched a line.
// It deliberately carries no reference back to the live Participant: a later
// disconnect does not rewrite history.
type LineAttribution struct {
	UserID string
	Color  string
}

// Document is the single shared text blob plus per-line authorship.
// Writes come from one goroutine (the pad worker); the mutex exists so that
// snapshot reads from other goroutines stay consistent.
type Document struct {
	mu          sync.RWMutex
	content     string
	attribution map[int]LineAttribution
}

func NewDocument() *Document {
	return &Document{attribution: make(map[int]LineAttribution)}
}

func (d *Document) Snapshot() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content
}

// Replace overwrites the whole content. Last writer wins: no diff is computed
// here, the changed-line set is the sending client's responsibility.
func (d *Document) Replace(content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content = content
}

// RecordAttribution overwrites the attribution of one line.
// Indices beyond the current content are kept as-is: stale entries for lines
// that no longer exist are accepted.
func (d *Document) RecordAttribution(line int, p Participant) {
	if line < 0 {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.attribution[line] = LineAttribution{UserID: p.ID, Color: p.Color}
}

func (d *Document) AttributionSnapshot() map[int]LineAttribution {
	d.mu.RLock()
	defer d.mu.RUnlock()
	snapshot := make(map[int]LineAttribution, len(d.attribution))
	for line, entry := range d.attribution {
		snapshot[line] = entry
	}
	return snapshot
}
