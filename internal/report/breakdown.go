package report

import (
	"sort"

	"github.com/iwvelando/sales-analytics/internal/dataset"
	"github.com/iwvelando/sales-analytics/pkg/constants"
	"github.com/iwvelando/sales-analytics/pkg/grouping"
	"github.com/iwvelando/sales-analytics/pkg/mathutil"
	"github.com/shopspring/decimal"
)

func byCategory(s dataset.Sale) string    { return s.Category }
func bySubcategory(s dataset.Sale) string { return s.Subcategory }

// breakdown sums value per label, sorted by label. Shares are left for the
// grouper to fill.
func breakdown(sales []dataset.Sale, label func(dataset.Sale) string) []grouping.Slice {
	sums := make(map[string]decimal.Decimal)
	for _, s := range sales {
		sums[label(s)] = sums[label(s)].Add(s.Value)
	}

	rows := make([]grouping.Slice, 0, len(sums))
	for l, v := range sums {
		rows = append(rows, grouping.Slice{Label: l, Value: v.InexactFloat64()})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })
	return rows
}

// CategoryBreakdown is the value per category, grouped at threshold.
func CategoryBreakdown(sales []dataset.Sale, threshold float64) []grouping.Slice {
	return grouping.Group(breakdown(sales, byCategory), threshold)
}

// SubcategoryBreakdown is the value per subcategory, grouped at threshold.
func SubcategoryBreakdown(sales []dataset.Sale, threshold float64) []grouping.Slice {
	return grouping.Group(breakdown(sales, bySubcategory), threshold)
}

// CategoryPenetration computes, per category, the percentage of the filtered
// customers that bought it at least once, then groups the small rows. Value
// holds the penetration percentage.
func CategoryPenetration(sales []dataset.Sale, threshold float64) []grouping.Slice {
	all := make(map[string]struct{})
	perCategory := make(map[string]map[string]struct{})
	for _, s := range sales {
		all[s.CustomerCode] = struct{}{}
		buyers, ok := perCategory[s.Category]
		if !ok {
			buyers = make(map[string]struct{})
			perCategory[s.Category] = buyers
		}
		buyers[s.CustomerCode] = struct{}{}
	}

	rows := make([]grouping.Slice, 0, len(perCategory))
	for category, buyers := range perCategory {
		rows = append(rows, grouping.Slice{
			Label: category,
			Value: mathutil.CalculatePercentage(float64(len(buyers)), float64(len(all))),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Label < rows[j].Label })
	return grouping.Group(rows, threshold)
}

// Measure selects the figure a product ranking sorts by.
type Measure string

// Product ranking measures.
const (
	ByQuantity Measure = "quantity"
	ByValue    Measure = "value"
)

// ProductRank is one row of a product ranking. Share is the row's percentage
// of the ranked rows' total for the ranking measure.
type ProductRank struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Quantity    int64   `json:"quantity"`
	Value       float64 `json:"value"`
	Share       float64 `json:"share"`
}

type productKey struct {
	code, description string
}

type productTotals struct {
	key      productKey
	quantity int64
	value    decimal.Decimal
}

func byCodeAndDescription(s dataset.Sale) productKey {
	return productKey{s.ProductCode, s.ProductDescription}
}

// byDescription merges codes sharing a description. The code survives only
// when every merged row carries the same one.
func byDescription(s dataset.Sale) productKey {
	return productKey{description: s.ProductDescription}
}

// TopProducts groups by (code, description), ranks by the measure and keeps
// the first n.
func TopProducts(sales []dataset.Sale, by Measure, n int) []ProductRank {
	return rankProducts(sales, by, n, byCodeAndDescription)
}

func rankProducts(sales []dataset.Sale, by Measure, n int, key func(dataset.Sale) productKey) []ProductRank {
	index := make(map[productKey]*productTotals)
	codes := make(map[productKey]string)
	for _, s := range sales {
		k := key(s)
		p, ok := index[k]
		if !ok {
			p = &productTotals{key: k}
			index[k] = p
			codes[k] = s.ProductCode
		} else if codes[k] != s.ProductCode {
			codes[k] = ""
		}
		p.quantity += s.Quantity
		p.value = p.value.Add(s.Value)
	}
	for k, p := range index {
		p.key.code = codes[k]
	}

	products := make([]*productTotals, 0, len(index))
	for _, p := range index {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		a, b := products[i], products[j]
		var cmp int
		if by == ByQuantity {
			cmp = compareInt(a.quantity, b.quantity)
		} else {
			cmp = a.value.Cmp(b.value)
		}
		if cmp != 0 {
			return cmp > 0
		}
		if a.key.code != b.key.code {
			return a.key.code < b.key.code
		}
		return a.key.description < b.key.description
	})
	if n < len(products) {
		products = products[:n]
	}

	out := make([]ProductRank, 0, len(products))
	var total float64
	for _, p := range products {
		r := ProductRank{
			Code:        p.key.code,
			Description: p.key.description,
			Quantity:    p.quantity,
			Value:       p.value.InexactFloat64(),
		}
		total += r.measure(by)
		out = append(out, r)
	}
	for i := range out {
		out[i].Share = mathutil.CalculatePercentage(out[i].measure(by), total)
	}
	return out
}

func (r ProductRank) measure(by Measure) float64 {
	if by == ByQuantity {
		return float64(r.Quantity)
	}
	return r.Value
}

func compareInt(a, b int64) int {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	}
	return 0
}

// Drilldown is the category section. Without a drill category it carries the
// category and subcategory breakdowns; with one it carries that category's
// subcategories and its best selling products by value.
type Drilldown struct {
	Category      string           `json:"category"`
	Categories    []grouping.Slice `json:"categories,omitempty"`
	Subcategories []grouping.Slice `json:"subcategories"`
	Products      []ProductRank    `json:"products,omitempty"`
}

// Empty reports whether the section has nothing to show.
func (d Drilldown) Empty() bool {
	return len(d.Categories) == 0 && len(d.Subcategories) == 0 && len(d.Products) == 0
}

// DrillDown narrows the category section to category. "" and "Todas" mean
// no drill-down.
func DrillDown(sales []dataset.Sale, category string, threshold float64, n int) Drilldown {
	if category == "" || category == constants.AllCategories {
		return Drilldown{
			Category:      constants.AllCategories,
			Categories:    CategoryBreakdown(sales, threshold),
			Subcategories: SubcategoryBreakdown(sales, threshold),
		}
	}

	var scoped []dataset.Sale
	for _, s := range sales {
		if s.Category == category {
			scoped = append(scoped, s)
		}
	}
	return Drilldown{
		Category:      category,
		Subcategories: SubcategoryBreakdown(scoped, threshold),
		Products:      rankProducts(scoped, ByValue, n, byDescription),
	}
}

// Filters lists the choices a user can make: the years and categories of the
// whole dataset and the drill categories present in the filtered rows, led by
// "Todas".
type Filters struct {
	Years           []int    `json:"years"`
	Categories      []string `json:"categories"`
	DrillCategories []string `json:"drillCategories"`
}

// FilterOptions lists the selectable values for ds and its filtered rows.
func FilterOptions(ds *dataset.Dataset, filtered []dataset.Sale) Filters {
	present := make(map[string]struct{})
	for _, s := range filtered {
		present[s.Category] = struct{}{}
	}
	drill := make([]string, 0, len(present)+1)
	for c := range present {
		drill = append(drill, c)
	}
	sort.Strings(drill)

	return Filters{
		Years:           ds.Years(),
		Categories:      ds.Categories(),
		DrillCategories: append([]string{constants.AllCategories}, drill...),
	}
}
