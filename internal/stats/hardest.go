package stats

import (
	"sort"

	"github.com/verte-zerg/lingua/internal/model"
)

// ItemRow joins an item with its tracker stat and logged answers. Recent
// counts cover only the most recent runs.
type ItemRow struct {
	Item            model.PracticeItem
	Stat            model.ItemStat
	Correct         int
	Incorrect       int
	RecentCorrect   int
	RecentIncorrect int
}

// HardestItems ranks answered or tracked items by current mistakes, then by
// logged incorrect answers. Items with no history are skipped.
func HardestItems(items []model.PracticeItem, state model.TrackerState, aggs, recent []model.ItemAggregate, top int) []ItemRow {
	byID := make(map[int]model.ItemAggregate, len(aggs))
	for _, agg := range aggs {
		byID[agg.ItemID] = agg
	}
	recentByID := make(map[int]model.ItemAggregate, len(recent))
	for _, agg := range recent {
		recentByID[agg.ItemID] = agg
	}
	rows := make([]ItemRow, 0, len(items))
	for _, it := range items {
		agg, answered := byID[it.ID]
		st, tracked := state[it.ID]
		if !answered && !tracked {
			continue
		}
		r := recentByID[it.ID]
		rows = append(rows, ItemRow{
			Item:            it,
			Stat:            st,
			Correct:         agg.Correct,
			Incorrect:       agg.Incorrect,
			RecentCorrect:   r.Correct,
			RecentIncorrect: r.Incorrect,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Stat.Mistakes != rows[j].Stat.Mistakes {
			return rows[i].Stat.Mistakes > rows[j].Stat.Mistakes
		}
		if rows[i].Incorrect != rows[j].Incorrect {
			return rows[i].Incorrect > rows[j].Incorrect
		}
		return rows[i].Item.ID < rows[j].Item.ID
	})
	if top > 0 && top < len(rows) {
		rows = rows[:top]
	}
	return rows
}
