// Package ledger keeps the in-memory scan history behind the analytics
// endpoint.
package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/straja-ai/rakshak/internal/detect"
	"github.com/straja-ai/rakshak/internal/safety"
)

// Entry is one recorded scan. It never holds the scanned content.
type Entry struct {
	ID        string        `json:"id"`
	Timestamp time.Time     `json:"timestamp"`
	Kind      detect.Kind   `json:"type"`
	Result    detect.Result `json:"result"`
	Tier      safety.Tier   `json:"risk_level"`
	Category  string        `json:"category"`
}

// Ledger is an append-only scan history. Appends are serialized; readers
// work on copies.
type Ledger struct {
	mu         sync.Mutex
	entries    []Entry
	maxEntries int
	now        func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithMaxEntries bounds the history; the oldest entries are evicted first.
// Zero keeps everything.
func WithMaxEntries(n int) Option {
	return func(l *Ledger) {
		if n > 0 {
			l.maxEntries = n
		}
	}
}

// WithClock overrides time.Now for analytics windows.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

func New(opts ...Option) *Ledger {
	l := &Ledger{now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RecordScan appends rec. It implements detect.Recorder.
func (l *Ledger) RecordScan(_ context.Context, rec detect.ScanRecord) {
	l.Append(Entry{
		Timestamp: rec.Timestamp,
		Kind:      rec.Kind,
		Result:    rec.Result,
		Tier:      rec.Tier,
		Category:  rec.Category,
	})
}

// Append stores e, assigning an ID and timestamp when missing, and returns
// the stored entry.
func (l *Ledger) Append(e Entry) Entry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = l.now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if l.maxEntries > 0 && len(l.entries) > l.maxEntries {
		drop := len(l.entries) - l.maxEntries
		l.entries = append(l.entries[:0:0], l.entries[drop:]...)
	}
	return e
}

// Snapshot returns a copy of the history, oldest first.
func (l *Ledger) Snapshot() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
