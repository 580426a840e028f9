// Package scheduler picks the next practice item.
package scheduler

import (
	"errors"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/verte-zerg/lingua/internal/model"
	"github.com/verte-zerg/lingua/internal/tracker"
)

// ErrNoItems is returned when PickNext is called without candidates.
var ErrNoItems = errors.New("scheduler: no items to pick from")

// Params are the tunable constants of the weight formula.
type Params struct {
	// RecencyCap bounds the time-decay multiplier.
	RecencyCap float64
	// MinElapsedSeconds floors the time since an item was last seen.
	MinElapsedSeconds float64
}

// DefaultParams returns the stock weighting constants.
func DefaultParams() Params {
	return Params{RecencyCap: 4, MinElapsedSeconds: 1}
}

// Scheduler performs weighted random selection over practice items.
type Scheduler struct {
	rnd    *rand.Rand
	clock  tracker.Clock
	params Params
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithRand sets the random source. Use a fixed seed for reproducible draws.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Scheduler) { s.rnd = rnd }
}

// WithClock sets the time source for recency.
func WithClock(c tracker.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithParams overrides the weighting constants.
func WithParams(p Params) Option {
	return func(s *Scheduler) { s.params = p }
}

// New returns a Scheduler seeded with the current time.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:  tracker.SystemClock{},
		params: DefaultParams(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Weight returns the selection weight of an item with the given stat. It is
// always positive for non-negative mistakes.
func Weight(stat model.ItemStat, now time.Time, p Params) float64 {
	elapsed := float64(now.UnixMilli()-stat.LastSeenMillis) / 1000
	elapsed = math.Max(p.MinElapsedSeconds, elapsed)
	recency := math.Min(p.RecencyCap, math.Log2(elapsed+1))
	base := 1 + float64(stat.Mistakes)
	return base * recency
}

// Weights computes the weight of every item in order.
func (s *Scheduler) Weights(items []model.PracticeItem, stats model.TrackerState) []float64 {
	now := s.clock.Now()
	weights := make([]float64, len(items))
	for i, it := range items {
		weights[i] = Weight(stats.Get(it.ID), now, s.params)
	}
	return weights
}

// PickNext selects an item with probability proportional to its weight,
// favoring items with more mistakes and items not seen for a while.
func (s *Scheduler) PickNext(items []model.PracticeItem, stats model.TrackerState) (model.PracticeItem, error) {
	if len(items) == 0 {
		return model.PracticeItem{}, ErrNoItems
	}
	weights := s.Weights(items, stats)
	total := 0.0
	for _, w := range weights {
		total += w
	}

	r := s.rnd.Float64() * total
	for i, w := range weights {
		r -= w
		if r <= 0 {
			return items[i], nil
		}
	}
	return items[s.rnd.Intn(len(items))], nil
}

// Options builds a shuffled multiple-choice set: correct plus up to n-1
// distinct distractors taken from answer(item) for the other items.
func (s *Scheduler) Options(items []model.PracticeItem, correct string, answer func(model.PracticeItem) string, n int) []string {
	seen := map[string]struct{}{strings.ToLower(strings.TrimSpace(correct)): {}}
	pool := make([]string, 0, len(items))
	for _, it := range items {
		candidate := answer(it)
		key := strings.ToLower(strings.TrimSpace(candidate))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		pool = append(pool, candidate)
	}
	s.shuffle(pool)
	if n < 1 {
		n = 1
	}
	if len(pool) > n-1 {
		pool = pool[:n-1]
	}
	out := append([]string{correct}, pool...)
	s.shuffle(out)
	return out
}

func (s *Scheduler) shuffle(values []string) {
	s.rnd.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})
}
