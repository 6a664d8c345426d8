// Package grouping folds the low-share rows of a categorical breakdown into a
// single "Otros" row so that charts stay readable.
package grouping

import (
	"sort"

	"github.com/iwvelando/sales-analytics/pkg/constants"
	"github.com/iwvelando/sales-analytics/pkg/mathutil"
)

// Slice is one row of a breakdown. Share is the row's percentage of the
// breakdown total and is filled in by Group.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Share float64 `json:"share"`
}

// Group computes every row's share of the column total and replaces the rows
// whose share is below thresholdPct with one synthetic "Otros" row carrying
// their summed value and share. When no row is below the threshold the input
// rows are returned unchanged. The result is sorted by value, descending.
//
// A zero total leaves every share at 0 and performs no grouping.
func Group(rows []Slice, thresholdPct float64) []Slice {
	if len(rows) == 0 {
		return []Slice{}
	}

	total := Total(rows)
	out := make([]Slice, 0, len(rows))
	if total == 0 {
		for _, row := range rows {
			row.Share = 0
			out = append(out, row)
		}
		sortByValue(out)
		return out
	}

	other := Slice{Label: constants.OtherLabel}
	small := 0
	for _, row := range rows {
		row.Share = mathutil.CalculatePercentage(row.Value, total)
		if row.Share < thresholdPct {
			other.Value += row.Value
			other.Share += row.Share
			small++
			continue
		}
		out = append(out, row)
	}
	if small > 0 {
		out = append(out, other)
	}

	sortByValue(out)
	return out
}

// Total sums the values of rows.
func Total(rows []Slice) float64 {
	var total float64
	for _, row := range rows {
		total += row.Value
	}
	return total
}

func sortByValue(rows []Slice) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Value != rows[j].Value {
			return rows[i].Value > rows[j].Value
		}
		return rows[i].Label < rows[j].Label
	})
}
