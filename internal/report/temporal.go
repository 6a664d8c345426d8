package report

import (
	"sort"
	"time"

	"github.com/iwvelando/sales-analytics/internal/dataset"
	"github.com/iwvelando/sales-analytics/pkg/datetime"
	"github.com/shopspring/decimal"
)

// GrowthPoint is one month of the growth section. Growth is nil for the
// first month present and after a month whose value is 0.
type GrowthPoint struct {
	Month     int      `json:"month"`
	MonthName string   `json:"monthName"`
	Value     float64  `json:"value"`
	Growth    *float64 `json:"growth"`
}

// MonthlyGrowth sums value per month of year over the full table and computes
// each month's change against the previous month present. Months without rows
// are absent.
func MonthlyGrowth(all []dataset.Sale, year int) []GrowthPoint {
	byMonth := make(map[int]decimal.Decimal)
	for _, s := range all {
		if s.Year != year {
			continue
		}
		byMonth[s.Month] = byMonth[s.Month].Add(s.Value)
	}

	months := sortedKeys(byMonth)
	points := make([]GrowthPoint, 0, len(months))
	for i, m := range months {
		p := GrowthPoint{Month: m, MonthName: datetime.MonthName(m), Value: byMonth[m].InexactFloat64()}
		if i > 0 {
			if g, ok := percentChange(byMonth[months[i-1]], byMonth[m]); ok {
				p.Growth = &g
			}
		}
		points = append(points, p)
	}
	return points
}

// TrendPoint is the value of one calendar month.
type TrendPoint struct {
	Period datetime.Period `json:"period"`
	Date   time.Time       `json:"date"`
	Value  float64         `json:"value"`
}

// MonthlyTrend sums value per (year, month), ascending by date.
func MonthlyTrend(sales []dataset.Sale) []TrendPoint {
	byPeriod := make(map[datetime.Period]decimal.Decimal)
	for _, s := range sales {
		byPeriod[s.Period()] = byPeriod[s.Period()].Add(s.Value)
	}

	periods := make([]datetime.Period, 0, len(byPeriod))
	for p := range byPeriod {
		periods = append(periods, p)
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	points := make([]TrendPoint, 0, len(periods))
	for _, p := range periods {
		points = append(points, TrendPoint{Period: p, Date: p.Date(), Value: byPeriod[p].InexactFloat64()})
	}
	return points
}

// Heatmap is a year by month grid of value sums. Only years and months that
// have data appear; Cells[i][j] is nil when Years[i] has no rows in Months[j].
type Heatmap struct {
	Years      []int        `json:"years"`
	Months     []int        `json:"months"`
	MonthNames []string     `json:"monthNames"`
	Cells      [][]*float64 `json:"cells"`
}

// Empty reports whether the grid has no cells.
func (h Heatmap) Empty() bool {
	return len(h.Years) == 0
}

// Value returns the cell for (year, month).
func (h Heatmap) Value(year, month int) (float64, bool) {
	for i, y := range h.Years {
		if y != year {
			continue
		}
		for j, m := range h.Months {
			if m == month && h.Cells[i][j] != nil {
				return *h.Cells[i][j], true
			}
		}
	}
	return 0, false
}

// BuildHeatmap pivots the value sums into a (year, month) grid.
func BuildHeatmap(sales []dataset.Sale) Heatmap {
	lookup := make(map[datetime.Period]decimal.Decimal)
	years := make(map[int]decimal.Decimal)
	months := make(map[int]decimal.Decimal)
	for _, s := range sales {
		lookup[s.Period()] = lookup[s.Period()].Add(s.Value)
		years[s.Year] = decimal.Zero
		months[s.Month] = decimal.Zero
	}

	h := Heatmap{
		Years:  sortedKeys(years),
		Months: sortedKeys(months),
	}
	h.MonthNames = make([]string, len(h.Months))
	for j, m := range h.Months {
		h.MonthNames[j] = datetime.MonthName(m)
	}
	h.Cells = make([][]*float64, len(h.Years))
	for i, y := range h.Years {
		h.Cells[i] = make([]*float64, len(h.Months))
		for j, m := range h.Months {
			if v, ok := lookup[datetime.Period{Year: y, Month: m}]; ok {
				f := v.InexactFloat64()
				h.Cells[i][j] = &f
			}
		}
	}
	return h
}

// SeasonalityPoint is one month's value relative to the average month.
type SeasonalityPoint struct {
	Month     int     `json:"month"`
	MonthName string  `json:"monthName"`
	Value     float64 `json:"value"`
	Index     float64 `json:"index"`
}

// Seasonality groups the full table by month of year and divides each month's
// value by the mean over the months present. An index above 1 marks an above
// average month. It ignores every filter.
func Seasonality(all []dataset.Sale) []SeasonalityPoint {
	byMonth := make(map[int]decimal.Decimal)
	total := decimal.Zero
	for _, s := range all {
		byMonth[s.Month] = byMonth[s.Month].Add(s.Value)
		total = total.Add(s.Value)
	}
	if len(byMonth) == 0 {
		return []SeasonalityPoint{}
	}

	mean := total.Div(decimal.NewFromInt(int64(len(byMonth))))
	months := sortedKeys(byMonth)
	points := make([]SeasonalityPoint, 0, len(months))
	for _, m := range months {
		p := SeasonalityPoint{Month: m, MonthName: datetime.MonthName(m), Value: byMonth[m].InexactFloat64()}
		if !mean.IsZero() {
			p.Index = byMonth[m].Div(mean).InexactFloat64()
		}
		points = append(points, p)
	}
	return points
}

func sortedKeys(m map[int]decimal.Decimal) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
