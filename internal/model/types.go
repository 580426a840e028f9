// Package model defines shared data structures.
package model

import "time"

// PracticeItem is a single prompt/answer pair supplied by a deck.
type PracticeItem struct {
	ID       int
	Prompt   string
	Expected string
	Level    string
	POS      string
}

// ItemStat tracks performance for one item. LastSeenMillis is 0 when never seen.
type ItemStat struct {
	Mistakes       int   `json:"mistakes"`
	LastSeenMillis int64 `json:"lastSeen"`
}

// TrackerState maps item ids to their stats for one scope.
type TrackerState map[int]ItemStat

// Get returns the stat for id, or the zero stat when absent.
func (s TrackerState) Get(id int) ItemStat {
	return s[id]
}

// Clone returns a copy that shares no storage with s.
func (s TrackerState) Clone() TrackerState {
	out := make(TrackerState, len(s))
	for id, st := range s {
		out[id] = st
	}
	return out
}

// Config defines practice settings.
type Config struct {
	Dataset    string
	DeckPath   string
	Level      string
	Direction  string
	Mode       string
	Options    int
	Seed       int64
	MemoryOnly bool
	RecencyCap float64
	MinElapsed float64
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Scope  string
	Since  *time.Time
	Last   int
	Window int
}

// Answer is one evaluated response stored in the answer log.
type Answer struct {
	RunID      string
	Scope      string
	ItemID     int
	Mode       string
	Given      string
	Correct    bool
	AnsweredAt time.Time
}

// Totals summarizes answers for a scope.
type Totals struct {
	Total   int
	Correct int
}

// RunAggregate summarizes one practice run for reporting.
type RunAggregate struct {
	RunID     string
	StartedAt time.Time
	EndedAt   time.Time
	Total     int
	Correct   int
}

// ItemAggregate summarizes answers for a single item across runs.
type ItemAggregate struct {
	ItemID    int
	Correct   int
	Incorrect int
}
