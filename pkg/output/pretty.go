// Package output renders a report as text tables, csv or json.
package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/sales-analytics/internal/report"
	"github.com/iwvelando/sales-analytics/pkg/format"
	"github.com/iwvelando/sales-analytics/pkg/grouping"
	"github.com/olekukonko/tablewriter"
)

// Pretty outputs a human-readable rather than machine-readable report: one
// table per section, or the section's notice when it has no data.
func Pretty(w io.Writer, r *report.Report) error {
	p := &prettyPrinter{w: w, r: r}

	p.printf("--- Reporte %s (%s) ---\n", r.ID, r.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	p.printf("Filtros: %s\n", describeSelection(r.Selection))

	p.section(report.SectionKPIs, "KPIs Generales", []string{"Métrica", "Valor"}, [][]string{
		{"Valor Total", format.Abbreviate(r.KPIs.ValueTotal)},
		{"Cantidad Total", format.Count(r.KPIs.QuantityTotal)},
		{"Ticket Promedio", format.Abbreviate(r.KPIs.AverageTicket)},
		{"Clientes Únicos", format.Count(int64(r.KPIs.DistinctCustomers))},
		{"Productos Únicos", format.Count(int64(r.KPIs.DistinctProducts))},
	})

	var rows [][]string
	for _, g := range r.Growth {
		growth := "-"
		if g.Growth != nil {
			growth = format.Percent(*g.Growth)
		}
		rows = append(rows, []string{g.MonthName, format.Abbreviate(g.Value), growth})
	}
	p.section(report.SectionGrowth, fmt.Sprintf("Tasa de Crecimiento %d", r.GrowthYear),
		[]string{"Mes", "Ventas", "Crecimiento"}, rows)

	rows = nil
	for _, t := range r.Trend {
		rows = append(rows, []string{t.Period.Label(), format.Abbreviate(t.Value)})
	}
	p.section(report.SectionTrend, "Tendencia de Ventas por Mes", []string{"Período", "Ventas"}, rows)

	rows = nil
	for i, year := range r.Heatmap.Years {
		row := []string{strconv.Itoa(year)}
		for _, cell := range r.Heatmap.Cells[i] {
			if cell == nil {
				row = append(row, "")
				continue
			}
			row = append(row, format.Abbreviate(*cell))
		}
		rows = append(rows, row)
	}
	p.section(report.SectionHeatmap, "Mapa de Calor de Ventas por Mes y Año",
		append([]string{"Año"}, r.Heatmap.MonthNames...), rows)

	rows = nil
	for _, s := range r.Seasonality {
		rows = append(rows, []string{s.MonthName, format.Abbreviate(s.Value), fmt.Sprintf("%.2f", s.Index)})
	}
	p.section(report.SectionSeasonality, "Índice de Estacionalidad", []string{"Mes", "Ventas", "Índice"}, rows)

	if c := r.Comparison; c != nil {
		p.section(report.SectionComparison, "Comparación de Períodos",
			[]string{"Métrica", c.First.Label, c.Second.Label, "Diferencia"},
			[][]string{
				{"Valor Total", format.Abbreviate(c.First.KPIs.ValueTotal), format.Abbreviate(c.Second.KPIs.ValueTotal), format.Percent(c.ValueDiff)},
				{"Cantidad Total", format.Count(c.First.KPIs.QuantityTotal), format.Count(c.Second.KPIs.QuantityTotal), format.Percent(c.QuantityDiff)},
				{"Clientes Únicos", format.Count(int64(c.First.KPIs.DistinctCustomers)), format.Count(int64(c.Second.KPIs.DistinctCustomers)), format.Percent(c.CustomerDiff)},
			})
	}

	rows = nil
	for _, c := range r.TopCustomers {
		rows = append(rows, []string{c.Label, format.Abbreviate(c.Value), share(c.Share)})
	}
	p.section(report.SectionCustomers, "Top Clientes", []string{"Cliente", "Ventas", "Participación"}, rows)

	rows = nil
	for _, f := range r.Frequency {
		rows = append(rows, []string{strconv.Itoa(f.Months), format.Count(int64(f.Customers))})
	}
	p.section(report.SectionFrequency, "Frecuencia de Compra", []string{"Meses Activos", "Clientes"}, rows)

	rows = nil
	for _, s := range r.SegmentCounts {
		rows = append(rows, []string{s.Segment, format.Count(int64(s.Customers)), format.Abbreviate(s.Value)})
	}
	p.section(report.SectionSegments, "Segmentación de Clientes", []string{"Segmento", "Clientes", "Ventas"}, rows)

	rows = nil
	for _, s := range r.Penetration {
		rows = append(rows, []string{s.Label, share(s.Value), share(s.Share)})
	}
	p.section(report.SectionPenetration, "Tasa de Penetración por Categoría",
		[]string{"Categoría", "Penetración", "Participación"}, rows)

	rows = nil
	for _, pr := range r.TopByQuantity {
		rows = append(rows, []string{pr.Code, pr.Description, format.Count(pr.Quantity), share(pr.Share)})
	}
	p.section(report.SectionProducts, "Top Productos por Cantidad",
		[]string{"Código", "Producto", "Cantidad", "Participación"}, rows)

	rows = nil
	for _, pr := range r.TopByValue {
		rows = append(rows, []string{pr.Code, pr.Description, format.Abbreviate(pr.Value), share(pr.Share)})
	}
	p.section(report.SectionProducts, "Top Productos por Valor",
		[]string{"Código", "Producto", "Ventas", "Participación"}, rows)

	d := r.Drilldown
	if len(d.Categories) > 0 {
		p.section(report.SectionDrilldown, "Ventas por Categoría", sliceHeader("Categoría"), sliceRows(d.Categories))
	}
	p.section(report.SectionDrilldown, "Ventas por Subcategoría: "+d.Category, sliceHeader("Subcategoría"), sliceRows(d.Subcategories))
	if len(d.Products) > 0 {
		rows = nil
		for _, pr := range d.Products {
			rows = append(rows, []string{pr.Description, format.Abbreviate(pr.Value)})
		}
		p.section(report.SectionDrilldown, "Top Productos en Categoría: "+d.Category, []string{"Producto", "Ventas"}, rows)
	}

	return p.err
}

type prettyPrinter struct {
	w   io.Writer
	r   *report.Report
	err error
}

// Write records the first error of the underlying writer, so output from the
// table renderer is checked as well.
func (p *prettyPrinter) Write(b []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	n, err := p.w.Write(b)
	if err != nil {
		p.err = err
	}
	return n, err
}

func (p *prettyPrinter) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, _ = fmt.Fprintf(p, format, args...)
}

// section prints a titled table, or the section's notice in its place.
func (p *prettyPrinter) section(name, title string, header []string, rows [][]string) {
	p.printf("\n%s\n", title)
	if n, ok := p.r.Notice(name); ok {
		p.printf("  %s\n", n.Message)
		return
	}
	if p.err != nil {
		return
	}

	table := tablewriter.NewWriter(p)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func sliceHeader(label string) []string {
	return []string{label, "Ventas", "Participación"}
}

func sliceRows(slices []grouping.Slice) [][]string {
	rows := make([][]string, 0, len(slices))
	for _, s := range slices {
		rows = append(rows, []string{s.Label, format.Abbreviate(s.Value), share(s.Share)})
	}
	return rows
}

func share(pct float64) string {
	return fmt.Sprintf("%.1f%%", pct)
}

func describeSelection(sel report.Selection) string {
	var parts []string
	if len(sel.Years) > 0 {
		years := make([]string, len(sel.Years))
		for i, y := range sel.Years {
			years[i] = strconv.Itoa(y)
		}
		parts = append(parts, "años "+strings.Join(years, ", "))
	} else {
		parts = append(parts, "todos los años")
	}
	if len(sel.Categories) > 0 {
		parts = append(parts, "categorías "+strings.Join(sel.Categories, ", "))
	} else {
		parts = append(parts, "todas las categorías")
	}
	if sel.Compare != nil {
		parts = append(parts, fmt.Sprintf("comparación %s vs %s", sel.Compare.First.Label(), sel.Compare.Second.Label()))
	}
	if drill := sel.Drill(); drill != "" {
		parts = append(parts, "detalle "+drill)
	}
	return strings.Join(parts, "; ")
}
