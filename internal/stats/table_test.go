package stats

import (
	"strings"
	"testing"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Prompt", "Answer", "Mistakes"}
	rows := [][]string{
		{"dog", "köpek", "12"},
		{"small", "маленький", "3"},
	}
	rightAlign := map[int]bool{2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Prompt Answer    Mistakes" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "dog    köpek           12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "small  маленький        3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableTruncatesLongCells(t *testing.T) {
	long := strings.Repeat("a", 40)
	lines := formatTable([]string{"Prompt", "N"}, [][]string{{long, "1"}}, nil)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if strings.Contains(lines[1], long) {
		t.Fatalf("expected long cell to be truncated: %q", lines[1])
	}
	if !strings.HasSuffix(lines[1], "… 1") {
		t.Fatalf("expected ellipsis before next column: %q", lines[1])
	}
}
