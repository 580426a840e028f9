// Package tracker keeps per-item mistake counts and last-seen times for one scope.
package tracker

import (
	"fmt"
	"io"

	"github.com/verte-zerg/lingua/internal/model"
)

// Tracker owns the TrackerState of a single scope. It is not safe for
// concurrent use; distinct scopes need distinct trackers.
type Tracker struct {
	scope string
	kv    KV
	clock Clock
	log   io.Writer

	state model.TrackerState

	// persistFailed suppresses repeated warnings once storage is unavailable.
	persistFailed bool
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock sets the time source used for last-seen stamps.
func WithClock(c Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithLog sets the writer for storage warnings.
func WithLog(w io.Writer) Option {
	return func(t *Tracker) { t.log = w }
}

// New builds a tracker for scope and loads its persisted state.
func New(scope string, kv KV, opts ...Option) *Tracker {
	t := &Tracker{
		scope: scope,
		kv:    kv,
		clock: SystemClock{},
		log:   io.Discard,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.state = t.Load()
	return t
}

// Scope returns the scope identifier.
func (t *Tracker) Scope() string {
	return t.scope
}

// Load reads the persisted state for the scope. Missing or malformed data
// yields an empty state.
func (t *Tracker) Load() model.TrackerState {
	if t.kv == nil {
		return model.TrackerState{}
	}
	raw, ok, err := t.kv.Get(t.scope)
	if err != nil {
		t.warnf("failed to read state for %s: %v\n", t.scope, err)
		return model.TrackerState{}
	}
	if !ok {
		return model.TrackerState{}
	}
	state, err := decodeState(raw)
	if err != nil {
		t.warnf("ignoring stored state for %s: %v\n", t.scope, err)
		return model.TrackerState{}
	}
	return state
}

// State returns a copy of the current mapping.
func (t *Tracker) State() model.TrackerState {
	return t.state.Clone()
}

// Stat returns the stat for itemID, zero when the item was never reported.
func (t *Tracker) Stat(itemID int) model.ItemStat {
	return t.state.Get(itemID)
}

// RecordOutcome updates the item's mistake count and last-seen time, then
// persists the whole mapping. Storage failures leave the in-memory update in
// place.
func (t *Tracker) RecordOutcome(itemID int, wasCorrect bool) {
	curr := t.state.Get(itemID)
	if wasCorrect {
		curr.Mistakes--
	} else {
		curr.Mistakes++
	}
	if curr.Mistakes < 0 {
		curr.Mistakes = 0
	}
	curr.LastSeenMillis = t.clock.Now().UnixMilli()
	t.state[itemID] = curr
	t.persist()
}

// Clear removes the persisted state and empties the mapping.
func (t *Tracker) Clear() {
	t.state = model.TrackerState{}
	if t.kv == nil {
		return
	}
	if err := t.kv.Remove(t.scope); err != nil {
		t.warnf("failed to remove state for %s: %v\n", t.scope, err)
	}
}

func (t *Tracker) persist() {
	if t.kv == nil {
		return
	}
	raw, err := encodeState(t.state)
	if err != nil {
		t.warnf("failed to encode state for %s: %v\n", t.scope, err)
		return
	}
	if err := t.kv.Set(t.scope, raw); err != nil {
		if !t.persistFailed {
			t.warnf("failed to save state for %s, continuing in memory: %v\n", t.scope, err)
			t.persistFailed = true
		}
		return
	}
	t.persistFailed = false
}

func (t *Tracker) warnf(format string, args ...any) {
	if _, err := fmt.Fprintf(t.log, format, args...); err != nil {
		// Best-effort warning output.
		_ = err
	}
}
