package stats

import (
	"context"

	"github.com/verte-zerg/lingua/internal/model"
	"github.com/verte-zerg/lingua/internal/store"
)

// Report contains precomputed data for stats rendering. Totals and item
// aggregates cover the same runs as Runs.
type Report struct {
	Totals       model.Totals
	Runs         []model.RunAggregate
	WindowRunIDs []string
	Items        []model.ItemAggregate
	ItemsWindow  []model.ItemAggregate
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}
	if len(runs) == 0 {
		return Report{}, nil
	}

	var totals model.Totals
	for _, r := range runs {
		totals.Total += r.Total
		totals.Correct += r.Correct
	}

	// A nil id list means every run of the scope.
	var selected []string
	if cfg.Since != nil || cfg.Last > 0 {
		selected = runIDs(runs)
	}
	items, err := st.ItemTotals(ctx, cfg.Scope, selected)
	if err != nil {
		return Report{}, err
	}

	windowIDs := lastRunIDs(runs, cfg.Window)
	itemsWindow, err := st.ItemTotals(ctx, cfg.Scope, windowIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Totals:       totals,
		Runs:         runs,
		WindowRunIDs: windowIDs,
		Items:        items,
		ItemsWindow:  itemsWindow,
	}, nil
}

func runIDs(runs []model.RunAggregate) []string {
	ids := make([]string, len(runs))
	for i, r := range runs {
		ids[i] = r.RunID
	}
	return ids
}

func lastRunIDs(runs []model.RunAggregate, window int) []string {
	if window <= 0 || len(runs) <= window {
		return runIDs(runs)
	}
	return runIDs(runs[len(runs)-window:])
}
