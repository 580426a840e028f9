package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/lingua/internal/model"
)

func TestAccuracy(t *testing.T) {
	if Accuracy(0, 0) != 0 {
		t.Fatalf("expected zero accuracy without answers")
	}
	if Accuracy(3, 4) != 0.75 {
		t.Fatalf("unexpected accuracy")
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 0, 1, 1}, 2)
	want := []float64{1, 0.5, 0.5, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected moving average: %v", got)
		}
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline([]float64{0, 0.5, 1}); got != " +@" {
		t.Fatalf("unexpected sparkline: %q", got)
	}
	if Sparkline(nil) != "" {
		t.Fatalf("expected empty sparkline")
	}
}

func TestHardestItems(t *testing.T) {
	items := []model.PracticeItem{
		{ID: 1, Prompt: "apple", Expected: "elma"},
		{ID: 2, Prompt: "bread", Expected: "ekmek"},
		{ID: 3, Prompt: "water", Expected: "su"},
		{ID: 4, Prompt: "cat", Expected: "kedi"},
	}
	state := model.TrackerState{
		1: {Mistakes: 1},
		2: {Mistakes: 3},
		3: {Mistakes: 1},
	}
	aggs := []model.ItemAggregate{
		{ItemID: 1, Correct: 2, Incorrect: 1},
		{ItemID: 3, Correct: 0, Incorrect: 4},
	}
	recent := []model.ItemAggregate{{ItemID: 3, Correct: 1, Incorrect: 1}}
	rows := HardestItems(items, state, aggs, recent, 0)
	if len(rows) != 3 {
		t.Fatalf("expected untouched item to be skipped, got %d rows", len(rows))
	}
	order := []int{rows[0].Item.ID, rows[1].Item.ID, rows[2].Item.ID}
	if order[0] != 2 || order[1] != 3 || order[2] != 1 {
		t.Fatalf("unexpected order: %v", order)
	}
	if rows[1].RecentCorrect != 1 || rows[1].RecentIncorrect != 1 || rows[2].RecentCorrect+rows[2].RecentIncorrect != 0 {
		t.Fatalf("unexpected recent counts: %+v", rows)
	}
	if len(HardestItems(items, state, aggs, nil, 1)) != 1 {
		t.Fatalf("expected top limit to apply")
	}
}

func TestRenderSummaryAndTable(t *testing.T) {
	var buf bytes.Buffer
	runs := []model.RunAggregate{{Total: 4, Correct: 2}, {Total: 4, Correct: 4}}
	if err := RenderSummary(&buf, "lingua.srs.en_tr.forward", 16, model.Totals{Total: 8, Correct: 6}, runs); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	if err := RenderAccuracyCurve(&buf, runs, 1, 80); err != nil {
		t.Fatalf("render curve: %v", err)
	}
	rows := []ItemRow{
		{Item: model.PracticeItem{Prompt: "bread", Expected: "ekmek"}, Stat: model.ItemStat{Mistakes: 2}, Incorrect: 2, RecentCorrect: 1, RecentIncorrect: 3},
		{Item: model.PracticeItem{Prompt: "water", Expected: "su"}, Correct: 1},
	}
	if err := RenderItemTable(&buf, rows); err != nil {
		t.Fatalf("render table: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Items: 16", "Total: 8", "Accuracy: 75%", "Best run: 100%", "[+@] last 100%", "Hardest Items", "Recent", "ekmek"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(out, "\n")
	var breadLine, waterLine string
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "bread"):
			breadLine = line
		case strings.HasPrefix(line, "water"):
			waterLine = line
		}
	}
	if !strings.Contains(breadLine, "25%") {
		t.Fatalf("expected recent accuracy in row: %q", breadLine)
	}
	if !strings.Contains(waterLine, "-") {
		t.Fatalf("expected placeholder for items outside the window: %q", waterLine)
	}

	buf.Reset()
	if err := RenderItemTable(&buf, nil); err != nil {
		t.Fatalf("render empty table: %v", err)
	}
	if !strings.Contains(buf.String(), "No item stats found.") {
		t.Fatalf("unexpected empty table output: %q", buf.String())
	}
}
