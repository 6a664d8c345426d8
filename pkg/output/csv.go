package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/iwvelando/sales-analytics/internal/report"
	"github.com/iwvelando/sales-analytics/pkg/grouping"
)

// CSVHeader is the first record written by CSV.
var CSVHeader = []string{"section", "label", "metric", "value"}

// CSV outputs the report in long comma-separated value form: one record per
// (section, row label, metric). Notices are written as metric "notice".
func CSV(w io.Writer, r *report.Report) error {
	cw := csv.NewWriter(w)
	rec := func(section, label, metric, value string) {
		_ = cw.Write([]string{section, label, metric, value})
	}
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	integer := func(v int64) string { return strconv.FormatInt(v, 10) }
	slices := func(section, prefix string, rows []grouping.Slice) {
		for _, s := range rows {
			rec(section, prefix+s.Label, "value", num(s.Value))
			rec(section, prefix+s.Label, "share", num(s.Share))
		}
	}

	_ = cw.Write(CSVHeader)

	k := r.KPIs
	rec(report.SectionKPIs, "", "value_total", num(k.ValueTotal))
	rec(report.SectionKPIs, "", "quantity_total", integer(k.QuantityTotal))
	rec(report.SectionKPIs, "", "average_ticket", num(k.AverageTicket))
	rec(report.SectionKPIs, "", "distinct_customers", integer(int64(k.DistinctCustomers)))
	rec(report.SectionKPIs, "", "distinct_products", integer(int64(k.DistinctProducts)))

	for _, g := range r.Growth {
		label := strconv.Itoa(r.GrowthYear) + "-" + twoDigits(g.Month)
		rec(report.SectionGrowth, label, "value", num(g.Value))
		if g.Growth != nil {
			rec(report.SectionGrowth, label, "growth_pct", num(*g.Growth))
		}
	}

	for _, t := range r.Trend {
		rec(report.SectionTrend, t.Period.String(), "value", num(t.Value))
	}

	for i, year := range r.Heatmap.Years {
		for j, month := range r.Heatmap.Months {
			if cell := r.Heatmap.Cells[i][j]; cell != nil {
				rec(report.SectionHeatmap, strconv.Itoa(year)+"-"+twoDigits(month), "value", num(*cell))
			}
		}
	}

	for _, s := range r.Seasonality {
		rec(report.SectionSeasonality, strconv.Itoa(s.Month), "value", num(s.Value))
		rec(report.SectionSeasonality, strconv.Itoa(s.Month), "index", num(s.Index))
	}

	if c := r.Comparison; c != nil {
		for _, side := range []report.PeriodSummary{c.First, c.Second} {
			label := side.Period.String()
			rec(report.SectionComparison, label, "value_total", num(side.KPIs.ValueTotal))
			rec(report.SectionComparison, label, "quantity_total", integer(side.KPIs.QuantityTotal))
			rec(report.SectionComparison, label, "distinct_customers", integer(int64(side.KPIs.DistinctCustomers)))
			slices(report.SectionComparison, label+"/", side.Categories)
		}
		rec(report.SectionComparison, "", "value_diff_pct", num(c.ValueDiff))
		rec(report.SectionComparison, "", "quantity_diff_pct", num(c.QuantityDiff))
		rec(report.SectionComparison, "", "customer_diff_pct", num(c.CustomerDiff))
	}

	for _, c := range r.TopCustomers {
		rec(report.SectionCustomers, c.Label, "value", num(c.Value))
		rec(report.SectionCustomers, c.Label, "share", num(c.Share))
	}

	for _, f := range r.Frequency {
		rec(report.SectionFrequency, strconv.Itoa(f.Months), "customers", integer(int64(f.Customers)))
	}

	for _, s := range r.Segments {
		rec(report.SectionSegments, s.Label, "segment", s.Segment)
		rec(report.SectionSegments, s.Label, "value_score", num(s.ValueScore))
		rec(report.SectionSegments, s.Label, "frequency_score", num(s.FrequencyScore))
	}

	slices(report.SectionPenetration, "", r.Penetration)

	for _, p := range r.TopByQuantity {
		rec(report.SectionProducts, p.Code, "quantity", integer(p.Quantity))
	}
	for _, p := range r.TopByValue {
		rec(report.SectionProducts, p.Code, "value", num(p.Value))
	}

	slices(report.SectionDrilldown, "categoria/", r.Drilldown.Categories)
	slices(report.SectionDrilldown, "subcategoria/", r.Drilldown.Subcategories)
	for _, p := range r.Drilldown.Products {
		rec(report.SectionDrilldown, "producto/"+p.Description, "value", num(p.Value))
	}

	for _, n := range r.Notices {
		rec(n.Section, "", "notice", n.Message)
	}

	cw.Flush()
	return cw.Error()
}

func twoDigits(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
