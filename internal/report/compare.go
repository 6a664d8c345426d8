package report

import (
	"github.com/iwvelando/sales-analytics/internal/dataset"
	"github.com/iwvelando/sales-analytics/pkg/datetime"
	"github.com/iwvelando/sales-analytics/pkg/grouping"
	"github.com/iwvelando/sales-analytics/pkg/mathutil"
)

// PeriodSummary is one side of a period comparison.
type PeriodSummary struct {
	Period     datetime.Period  `json:"period"`
	Label      string           `json:"label"`
	KPIs       KPISummary       `json:"kpis"`
	Categories []grouping.Slice `json:"categories"`
}

// PeriodComparison holds both sides and the percent differences of the
// second period against the first. A difference is 0 when the first period's
// figure is 0.
type PeriodComparison struct {
	First        PeriodSummary `json:"first"`
	Second       PeriodSummary `json:"second"`
	ValueDiff    float64       `json:"valueDiff"`
	QuantityDiff float64       `json:"quantityDiff"`
	CustomerDiff float64       `json:"customerDiff"`
}

// Empty reports whether neither period has rows.
func (c PeriodComparison) Empty() bool {
	return c.First.KPIs.Rows == 0 && c.Second.KPIs.Rows == 0
}

// ComparePeriods summarizes the exact (year, month) subsets of the full table.
func ComparePeriods(all []dataset.Sale, first, second datetime.Period, threshold float64) PeriodComparison {
	a := summarizePeriod(all, first, threshold)
	b := summarizePeriod(all, second, threshold)

	return PeriodComparison{
		First:        a,
		Second:       b,
		ValueDiff:    mathutil.PercentDiff(a.KPIs.ValueTotal, b.KPIs.ValueTotal),
		QuantityDiff: mathutil.PercentDiff(float64(a.KPIs.QuantityTotal), float64(b.KPIs.QuantityTotal)),
		CustomerDiff: mathutil.PercentDiff(float64(a.KPIs.DistinctCustomers), float64(b.KPIs.DistinctCustomers)),
	}
}

func summarizePeriod(all []dataset.Sale, p datetime.Period, threshold float64) PeriodSummary {
	var subset []dataset.Sale
	for _, s := range all {
		if s.Year == p.Year && s.Month == p.Month {
			subset = append(subset, s)
		}
	}
	return PeriodSummary{
		Period:     p,
		Label:      p.Label(),
		KPIs:       Summarize(subset),
		Categories: grouping.Group(breakdown(subset, byCategory), threshold),
	}
}
