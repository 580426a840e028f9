// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/lingua/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Accuracy returns correct/total, or 0 when nothing was answered.
func Accuracy(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for values in [0,1].
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	var b strings.Builder
	for _, v := range values {
		idx := int(math.Round(v * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints totals for a scope.
func RenderSummary(w io.Writer, scope string, itemCount int, totals model.Totals, runs []model.RunAggregate) error {
	if _, err := fmt.Fprintf(w, "Summary (%s)\n", scope); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Items: %d\n", itemCount); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Runs: %d\n", len(runs)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Total: %d\n", totals.Total); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Accuracy: %.0f%%\n", Accuracy(totals.Correct, totals.Total)*100); err != nil {
		return err
	}
	best := 0.0
	for _, r := range runs {
		if acc := Accuracy(r.Correct, r.Total); acc > best {
			best = acc
		}
	}
	if len(runs) > 0 {
		if _, err := fmt.Fprintf(w, "Best run: %.0f%%\n", best*100); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderAccuracyCurve prints per-run accuracy as a moving-average sparkline,
// keeping the most recent runs that fit in width.
func RenderAccuracyCurve(w io.Writer, runs []model.RunAggregate, window, width int) error {
	if len(runs) == 0 {
		return nil
	}
	accs := make([]float64, len(runs))
	for i, r := range runs {
		accs[i] = Accuracy(r.Correct, r.Total)
	}
	accs = MovingAverage(accs, window)
	if width > 0 && len(accs) > width {
		accs = accs[len(accs)-width:]
	}
	if _, err := fmt.Fprintln(w, "Accuracy by run"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "[%s] last %.0f%%\n\n", Sparkline(accs), accs[len(accs)-1]*100); err != nil {
		return err
	}
	return nil
}

// recentAccuracy formats accuracy over the recent window, "-" when the item
// was not answered there.
func recentAccuracy(r ItemRow) string {
	n := r.RecentCorrect + r.RecentIncorrect
	if n == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", Accuracy(r.RecentCorrect, n)*100)
}

// RenderItemTable prints the hardest items. The Recent column is accuracy
// over the runs of the moving-average window.
func RenderItemTable(w io.Writer, rows []ItemRow) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No item stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Hardest Items"); err != nil {
		return err
	}
	headers := []string{"Prompt", "Answer", "Mistakes", "Accuracy", "Recent", "Correct", "Incorrect"}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Item.Prompt,
			r.Item.Expected,
			fmt.Sprintf("%d", r.Stat.Mistakes),
			fmt.Sprintf("%.0f%%", Accuracy(r.Correct, r.Correct+r.Incorrect)*100),
			recentAccuracy(r),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
		})
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true, 5: true, 6: true}
	for _, line := range formatTable(headers, tableRows, rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
