package report

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/iwvelando/sales-analytics/internal/dataset"
	"github.com/iwvelando/sales-analytics/pkg/constants"
	"github.com/iwvelando/sales-analytics/pkg/datetime"
	"github.com/iwvelando/sales-analytics/pkg/validation"
)

// ErrInvalidSelection is wrapped by every Selection validation failure.
var ErrInvalidSelection = errors.New("invalid selection")

// Comparison is a pair of months to compare against each other.
type Comparison struct {
	First  datetime.Period `json:"first"`
	Second datetime.Period `json:"second"`
}

// Selection is the user-chosen filter state for one report pass.
type Selection struct {
	// Years restricts the filtered table; empty means all years.
	Years []int `json:"years,omitempty" validate:"dive,gt=0"`
	// Categories restricts the filtered table; empty means all categories.
	Categories []string `json:"categories,omitempty"`
	// GrowthYear picks the year of the growth section; 0 means the latest year.
	GrowthYear int `json:"growthYear,omitempty" validate:"gte=0"`
	// Compare enables the period comparison section when set.
	Compare *Comparison `json:"compare,omitempty"`
	// DrillCategory narrows the category section; "" or "Todas" disables it.
	DrillCategory string `json:"drillCategory,omitempty"`
}

// Validate checks the selection's field rules.
func (s Selection) Validate() error {
	if err := validation.StructError(s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	return nil
}

// Drill returns the drill-down category, or "" when no drill-down applies.
func (s Selection) Drill() string {
	if s.DrillCategory == constants.AllCategories {
		return ""
	}
	return strings.TrimSpace(s.DrillCategory)
}

// Apply returns the fact rows matching the year and category sets. The
// dataset is not modified.
func (s Selection) Apply(ds *dataset.Dataset) []dataset.Sale {
	years := make(map[int]struct{}, len(s.Years))
	for _, y := range s.Years {
		years[y] = struct{}{}
	}
	categories := make(map[string]struct{}, len(s.Categories))
	for _, c := range s.Categories {
		categories[c] = struct{}{}
	}

	filtered := make([]dataset.Sale, 0, ds.Len())
	for _, sale := range ds.Sales() {
		if len(years) > 0 {
			if _, ok := years[sale.Year]; !ok {
				continue
			}
		}
		if len(categories) > 0 {
			if _, ok := categories[sale.Category]; !ok {
				continue
			}
		}
		filtered = append(filtered, sale)
	}
	return filtered
}

// Key renders the selection canonically: two selections describing the same
// filter state produce the same key regardless of list order or duplicates.
func (s Selection) Key() string {
	years := make([]int, 0, len(s.Years))
	seenYears := make(map[int]bool, len(s.Years))
	for _, y := range s.Years {
		if !seenYears[y] {
			seenYears[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)

	categories := make([]string, 0, len(s.Categories))
	seenCategories := make(map[string]bool, len(s.Categories))
	for _, c := range s.Categories {
		if !seenCategories[c] {
			seenCategories[c] = true
			categories = append(categories, strconv.Quote(c))
		}
	}
	sort.Strings(categories)

	var b strings.Builder
	b.WriteString("y=")
	for i, y := range years {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(y))
	}
	b.WriteString("|c=")
	b.WriteString(strings.Join(categories, ","))
	b.WriteString("|g=")
	b.WriteString(strconv.Itoa(s.GrowthYear))
	b.WriteString("|p=")
	if s.Compare != nil {
		b.WriteString(s.Compare.First.String())
		b.WriteByte(':')
		b.WriteString(s.Compare.Second.String())
	}
	b.WriteString("|d=")
	b.WriteString(strconv.Quote(s.Drill()))
	return b.String()
}

// DefaultSelection is the state of a fresh session: the latest year only.
func DefaultSelection(ds *dataset.Dataset) Selection {
	var sel Selection
	if latest := ds.LatestYear(); latest > 0 {
		sel.Years = []int{latest}
	}
	return sel
}

// DefaultComparison compares January of the second latest year against
// January of the latest year. With a single year both sides are that year.
// It returns nil for an empty dataset.
func DefaultComparison(ds *dataset.Dataset) *Comparison {
	years := ds.Years()
	if len(years) == 0 {
		return nil
	}
	second := years[len(years)-1]
	first := second
	if len(years) > 1 {
		first = years[len(years)-2]
	}
	return &Comparison{
		First:  datetime.Period{Year: first, Month: 1},
		Second: datetime.Period{Year: second, Month: 1},
	}
}

// ParseYears parses a comma separated year list such as "2023,2024". Blank
// entries are skipped.
func ParseYears(s string) ([]int, error) {
	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid year %q", ErrInvalidSelection, part)
		}
		years = append(years, y)
	}
	return years, nil
}

// ParseList splits a comma separated list, trimming and skipping blanks.
func ParseList(s string) []string {
	var items []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// ParseComparison parses "2023-01,2024-01". An empty string yields nil.
func ParseComparison(s string) (*Comparison, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("%w: comparison must be two periods, e.g. 2023-01,2024-01", ErrInvalidSelection)
	}
	first, err := datetime.ParsePeriod(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	second, err := datetime.ParsePeriod(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	return &Comparison{First: first, Second: second}, nil
}
