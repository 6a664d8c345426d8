// Package report turns a Dataset and a Selection into every derived table of
// the dashboard.
//
// The aggregation functions are pure: they read fact rows and return fresh
// values. Build sequences them into one Report per pass. An empty result never
// fails a pass; the section carries a Notice instead.
package report

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/sales-analytics/internal/config"
	"github.com/iwvelando/sales-analytics/internal/dataset"
	"github.com/iwvelando/sales-analytics/pkg/constants"
	"github.com/iwvelando/sales-analytics/pkg/grouping"
	"go.uber.org/zap"
)

// Section names, used by notices and renderers.
const (
	SectionKPIs        = "kpis"
	SectionGrowth      = "growth"
	SectionTrend       = "trend"
	SectionHeatmap     = "heatmap"
	SectionSeasonality = "seasonality"
	SectionComparison  = "comparison"
	SectionCustomers   = "customers"
	SectionFrequency   = "frequency"
	SectionSegments    = "segments"
	SectionPenetration = "penetration"
	SectionProducts    = "products"
	SectionDrilldown   = "drilldown"
)

// Options tunes a report pass.
type Options struct {
	SmallShareThreshold float64
	SegmentThreshold    float64
	TopCustomers        int
	TopProducts         int
}

// DefaultOptions returns the dashboard defaults.
func DefaultOptions() Options {
	return Options{
		SmallShareThreshold: constants.DefaultSmallShareThreshold,
		SegmentThreshold:    constants.DefaultSegmentThreshold,
		TopCustomers:        constants.DefaultTopCustomers,
		TopProducts:         constants.DefaultTopProducts,
	}
}

// OptionsFromConfig maps the report configuration onto Options. Unset sizes
// and segment threshold fall back to the defaults; a zero share threshold
// disables grouping.
func OptionsFromConfig(cfg config.ReportConfig) Options {
	return Options{
		SmallShareThreshold: cfg.SmallShareThreshold,
		SegmentThreshold:    cfg.SegmentThreshold,
		TopCustomers:        cfg.TopCustomers,
		TopProducts:         cfg.TopProducts,
	}.withDefaults()
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.SmallShareThreshold < 0 {
		o.SmallShareThreshold = d.SmallShareThreshold
	}
	if o.SegmentThreshold <= 0 {
		o.SegmentThreshold = d.SegmentThreshold
	}
	if o.TopCustomers <= 0 {
		o.TopCustomers = d.TopCustomers
	}
	if o.TopProducts <= 0 {
		o.TopProducts = d.TopProducts
	}
	return o
}

// Notice replaces the content of a section that has no data.
type Notice struct {
	Section string `json:"section"`
	Message string `json:"message"`
}

// Report is the result of one pass.
type Report struct {
	ID          string    `json:"id"`
	GeneratedAt time.Time `json:"generatedAt"`
	Selection   Selection `json:"selection"`
	Filters     Filters   `json:"filters"`

	KPIs          KPISummary         `json:"kpis"`
	GrowthYear    int                `json:"growthYear"`
	Growth        []GrowthPoint      `json:"growth"`
	Trend         []TrendPoint       `json:"trend"`
	Heatmap       Heatmap            `json:"heatmap"`
	Seasonality   []SeasonalityPoint `json:"seasonality"`
	Comparison    *PeriodComparison  `json:"comparison,omitempty"`
	TopCustomers  []CustomerShare    `json:"topCustomers"`
	Frequency     []FrequencyBucket  `json:"frequency"`
	Segments      []CustomerSegment  `json:"segments"`
	SegmentCounts []SegmentCount     `json:"segmentCounts"`
	Penetration   []grouping.Slice   `json:"penetration"`
	TopByQuantity []ProductRank      `json:"topByQuantity"`
	TopByValue    []ProductRank      `json:"topByValue"`
	Drilldown     Drilldown          `json:"drilldown"`

	Notices []Notice `json:"notices"`
}

// Notice returns the notice of section, if any.
func (r *Report) Notice(section string) (Notice, bool) {
	for _, n := range r.Notices {
		if n.Section == section {
			return n, true
		}
	}
	return Notice{}, false
}

func (r *Report) notice(section, format string, args ...interface{}) {
	r.Notices = append(r.Notices, Notice{Section: section, Message: fmt.Sprintf(format, args...)})
}

// Build runs one report pass over ds. Only an invalid selection is an error.
func Build(logger *zap.Logger, ds *dataset.Dataset, sel Selection, opts Options) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	start := time.Now()

	all := ds.Sales()
	filtered := sel.Apply(ds)

	r := &Report{
		ID:          uuid.NewString(),
		GeneratedAt: start.UTC(),
		Selection:   sel,
		Filters:     FilterOptions(ds, filtered),
		Notices:     []Notice{},
	}
	log := logger.With(zap.String("op", "report.Build"), zap.String("report_id", r.ID))
	section := func(name string, rows int) {
		log.Debug("section computed", zap.String("section", name), zap.Int("rows", rows))
	}

	r.KPIs = Summarize(filtered)
	section(SectionKPIs, r.KPIs.Rows)
	if r.KPIs.Rows == 0 {
		r.notice(SectionKPIs, "No hay datos para los filtros seleccionados")
	}

	r.GrowthYear = sel.GrowthYear
	if r.GrowthYear == 0 {
		r.GrowthYear = ds.LatestYear()
	}
	r.Growth = MonthlyGrowth(all, r.GrowthYear)
	section(SectionGrowth, len(r.Growth))
	if len(r.Growth) == 0 {
		r.notice(SectionGrowth, "No hay datos para el año %d", r.GrowthYear)
	}

	r.Trend = MonthlyTrend(filtered)
	section(SectionTrend, len(r.Trend))
	if len(r.Trend) == 0 {
		r.notice(SectionTrend, "No hay datos para la tendencia de ventas")
	}

	r.Heatmap = BuildHeatmap(filtered)
	section(SectionHeatmap, len(r.Heatmap.Years))
	if r.Heatmap.Empty() {
		r.notice(SectionHeatmap, "No hay suficientes datos para generar el mapa de calor")
	}

	r.Seasonality = Seasonality(all)
	section(SectionSeasonality, len(r.Seasonality))
	if len(r.Seasonality) == 0 {
		r.notice(SectionSeasonality, "No hay datos para el índice de estacionalidad")
	}

	if sel.Compare != nil {
		cmp := ComparePeriods(all, sel.Compare.First, sel.Compare.Second, opts.SmallShareThreshold)
		r.Comparison = &cmp
		section(SectionComparison, cmp.First.KPIs.Rows+cmp.Second.KPIs.Rows)
		if cmp.Empty() {
			r.notice(SectionComparison, "No hay datos para %s ni %s", cmp.First.Label, cmp.Second.Label)
		}
	}

	r.TopCustomers = TopCustomers(filtered, ds, opts.TopCustomers)
	section(SectionCustomers, len(r.TopCustomers))
	if len(r.TopCustomers) == 0 {
		r.notice(SectionCustomers, "No hay datos de clientes para los filtros seleccionados")
	}

	r.Frequency = PurchaseFrequency(filtered)
	section(SectionFrequency, len(r.Frequency))
	if len(r.Frequency) == 0 {
		r.notice(SectionFrequency, "No hay datos de frecuencia de compra")
	}

	r.Segments = Segment(filtered, ds, opts.SegmentThreshold)
	r.SegmentCounts = SegmentCounts(r.Segments)
	section(SectionSegments, len(r.Segments))
	if len(r.Segments) == 0 {
		r.notice(SectionSegments, "No hay datos para la segmentación de clientes")
	}

	r.Penetration = CategoryPenetration(filtered, opts.SmallShareThreshold)
	section(SectionPenetration, len(r.Penetration))
	if len(r.Penetration) == 0 {
		r.notice(SectionPenetration, "No hay datos para la penetración por categoría")
	}

	r.TopByQuantity = TopProducts(filtered, ByQuantity, opts.TopProducts)
	r.TopByValue = TopProducts(filtered, ByValue, opts.TopProducts)
	section(SectionProducts, len(r.TopByValue))
	if len(r.TopByValue) == 0 {
		r.notice(SectionProducts, "No hay datos de productos para los filtros seleccionados")
	}

	r.Drilldown = DrillDown(filtered, sel.Drill(), opts.SmallShareThreshold, opts.TopProducts)
	section(SectionDrilldown, len(r.Drilldown.Subcategories))
	if r.Drilldown.Empty() {
		r.notice(SectionDrilldown, "No hay datos para la categoría %s", r.Drilldown.Category)
	}

	log.Info("report built",
		zap.Int("rows", len(filtered)),
		zap.Int("notices", len(r.Notices)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return r, nil
}
