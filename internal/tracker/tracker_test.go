package tracker

import (
	"bytes"
	"errors"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/lingua/internal/model"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type failingKV struct {
	err error
}

func (f failingKV) Get(string) (string, bool, error) { return "", false, f.err }
func (f failingKV) Set(string, string) error         { return f.err }
func (f failingKV) Remove(string) error              { return f.err }

func TestRecordOutcomeMistakeArithmetic(t *testing.T) {
	kv := NewMemoryKV()
	tr := New("scope", kv)
	for i := 0; i < 3; i++ {
		tr.RecordOutcome(1, false)
	}
	for i := 0; i < 2; i++ {
		tr.RecordOutcome(1, true)
	}
	if got := tr.Stat(1).Mistakes; got != 1 {
		t.Fatalf("expected 1 mistake, got %d", got)
	}
}

func TestRecordOutcomeNeverNegative(t *testing.T) {
	tr := New("scope", NewMemoryKV())
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		tr.RecordOutcome(rnd.Intn(5), rnd.Intn(3) > 0)
		for id, st := range tr.State() {
			if st.Mistakes < 0 {
				t.Fatalf("item %d went negative after %d updates", id, i+1)
			}
		}
	}
}

func TestRecordOutcomeStampsClock(t *testing.T) {
	clock := &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
	tr := New("scope", NewMemoryKV(), WithClock(clock))
	tr.RecordOutcome(42, true)
	st := tr.Stat(42)
	if st.Mistakes != 0 {
		t.Fatalf("expected correct first answer to stay at 0, got %d", st.Mistakes)
	}
	if st.LastSeenMillis != 1_700_000_000_000 {
		t.Fatalf("unexpected last seen: %d", st.LastSeenMillis)
	}
	clock.advance(5 * time.Second)
	tr.RecordOutcome(42, false)
	if got := tr.Stat(42).LastSeenMillis; got != 1_700_000_005_000 {
		t.Fatalf("unexpected last seen after advance: %d", got)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	clock := &fakeClock{now: time.UnixMilli(1_000)}
	tr := New("lingua.srs.en_tr.forward", kv, WithClock(clock))
	tr.RecordOutcome(1, false)
	clock.advance(time.Second)
	tr.RecordOutcome(2, true)
	clock.advance(time.Second)
	tr.RecordOutcome(1, false)
	tr.RecordOutcome(-3, false)

	reloaded := New("lingua.srs.en_tr.forward", kv)
	if !reflect.DeepEqual(reloaded.State(), tr.State()) {
		t.Fatalf("state mismatch after reload:\n got %+v\nwant %+v", reloaded.State(), tr.State())
	}
	want := model.TrackerState{
		1:  {Mistakes: 2, LastSeenMillis: 3_000},
		2:  {Mistakes: 0, LastSeenMillis: 2_000},
		-3: {Mistakes: 1, LastSeenMillis: 3_000},
	}
	if !reflect.DeepEqual(reloaded.State(), want) {
		t.Fatalf("unexpected reloaded state: %+v", reloaded.State())
	}
}

func TestStoredLayout(t *testing.T) {
	kv := NewMemoryKV()
	clock := &fakeClock{now: time.UnixMilli(1234)}
	tr := New("s", kv, WithClock(clock))
	tr.RecordOutcome(2, false)
	tr.RecordOutcome(10, true)
	raw, ok, _ := kv.Get("s")
	if !ok {
		t.Fatalf("expected state to be persisted")
	}
	want := `{"10":{"mistakes":0,"lastSeen":1234},"2":{"mistakes":1,"lastSeen":1234}}`
	if raw != want {
		t.Fatalf("unexpected layout: %s", raw)
	}
}

func TestLoadRejectsMalformedState(t *testing.T) {
	cases := map[string]string{
		"not json":          `{oops`,
		"array":             `[1,2,3]`,
		"null":              `null`,
		"non-integer key":   `{"apple":{"mistakes":1,"lastSeen":0}}`,
		"negative mistakes": `{"1":{"mistakes":-1,"lastSeen":0}}`,
		"missing field":     `{"1":{"mistakes":1}}`,
		"string field":      `{"1":{"mistakes":"1","lastSeen":0}}`,
		"extra field":       `{"1":{"mistakes":1,"lastSeen":0,"x":true}}`,
		"fractional":        `{"1":{"mistakes":1.5,"lastSeen":0}}`,
	}
	for name, raw := range cases {
		kv := NewMemoryKV()
		if err := kv.Set("s", raw); err != nil {
			t.Fatalf("%s: set: %v", name, err)
		}
		var logBuf bytes.Buffer
		tr := New("s", kv, WithLog(&logBuf))
		if len(tr.State()) != 0 {
			t.Fatalf("%s: expected empty state, got %+v", name, tr.State())
		}
		if !strings.Contains(logBuf.String(), "ignoring stored state") {
			t.Fatalf("%s: expected warning, got %q", name, logBuf.String())
		}
	}
}

func TestLoadAcceptsLegacyLayout(t *testing.T) {
	kv := NewMemoryKV()
	if err := kv.Set("s", `{"3":{"mistakes":4,"lastSeen":1700000000000}}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	tr := New("s", kv)
	if got := tr.Stat(3); got.Mistakes != 4 || got.LastSeenMillis != 1700000000000 {
		t.Fatalf("unexpected stat: %+v", got)
	}
}

func TestClearRemovesPersistedState(t *testing.T) {
	kv := NewMemoryKV()
	tr := New("a", kv)
	other := New("b", kv)
	tr.RecordOutcome(1, false)
	other.RecordOutcome(1, false)

	tr.Clear()
	if len(tr.State()) != 0 {
		t.Fatalf("expected empty state after clear")
	}
	if _, ok, _ := kv.Get("a"); ok {
		t.Fatalf("expected persisted state to be removed")
	}
	if len(New("a", kv).State()) != 0 {
		t.Fatalf("expected reload after clear to be empty")
	}
	if New("b", kv).Stat(1).Mistakes != 1 {
		t.Fatalf("expected other scope to be untouched")
	}
}

func TestStorageFailureDegradesToMemory(t *testing.T) {
	var logBuf bytes.Buffer
	tr := New("s", failingKV{err: errors.New("disk gone")}, WithLog(&logBuf))
	tr.RecordOutcome(1, false)
	tr.RecordOutcome(1, false)
	if got := tr.Stat(1).Mistakes; got != 2 {
		t.Fatalf("expected in-memory updates to survive, got %d", got)
	}
	if n := strings.Count(logBuf.String(), "continuing in memory"); n != 1 {
		t.Fatalf("expected a single save warning, got %d: %q", n, logBuf.String())
	}
	tr.Clear()
	if len(tr.State()) != 0 {
		t.Fatalf("expected clear to empty state even when storage fails")
	}
}

func TestStateReturnsCopy(t *testing.T) {
	tr := New("s", NewMemoryKV())
	tr.RecordOutcome(1, false)
	st := tr.State()
	st[1] = model.ItemStat{Mistakes: 99}
	if tr.Stat(1).Mistakes != 1 {
		t.Fatalf("mutating State() result must not affect tracker")
	}
}
