// Package dataset defines the sales fact and customer dimension tables and
// loads them from csv, xlsx or sql sources.
//
// A Dataset is built once per session and never mutated afterwards; every
// report pass reads it concurrently without locking.
package dataset

import (
	"sort"
	"time"

	"github.com/iwvelando/sales-analytics/pkg/datetime"
	"github.com/shopspring/decimal"
)

// Sale is one pre-aggregated fact row: a customer's purchases of one product
// in one month.
type Sale struct {
	Year               int             `json:"year"`
	Month              int             `json:"month"`
	CustomerCode       string          `json:"customerCode"`
	ProductCode        string          `json:"productCode"`
	ProductDescription string          `json:"productDescription"`
	Category           string          `json:"category"`
	Subcategory        string          `json:"subcategory"`
	Value              decimal.Decimal `json:"value"`
	Quantity           int64           `json:"quantity"`
}

// Period returns the (year, month) of the sale.
func (s Sale) Period() datetime.Period {
	return datetime.Period{Year: s.Year, Month: s.Month}
}

// Date is the first day of the sale's month.
func (s Sale) Date() time.Time {
	return s.Period().Date()
}

// Customer is one row of the customer dimension.
type Customer struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type factKey struct {
	customer, product string
	year, month       int
}

// Dataset holds both base tables.
type Dataset struct {
	sales      []Sale
	names      map[string]string
	customers  int
	years      []int
	categories []string
	duplicates int
}

// New builds a Dataset from already parsed rows. The slices are copied. When
// a customer code appears more than once in the dimension, the first name wins.
func New(sales []Sale, customers []Customer) *Dataset {
	ds := &Dataset{
		sales: append([]Sale(nil), sales...),
		names: make(map[string]string, len(customers)),
	}

	for _, c := range customers {
		if _, exists := ds.names[c.Code]; !exists {
			ds.names[c.Code] = c.Name
		}
	}
	ds.customers = len(ds.names)

	years := make(map[int]struct{})
	categories := make(map[string]struct{})
	seen := make(map[factKey]struct{}, len(sales))
	for _, s := range ds.sales {
		years[s.Year] = struct{}{}
		categories[s.Category] = struct{}{}
		key := factKey{s.CustomerCode, s.ProductCode, s.Year, s.Month}
		if _, dup := seen[key]; dup {
			ds.duplicates++
			continue
		}
		seen[key] = struct{}{}
	}

	ds.years = make([]int, 0, len(years))
	for y := range years {
		ds.years = append(ds.years, y)
	}
	sort.Ints(ds.years)

	ds.categories = make([]string, 0, len(categories))
	for c := range categories {
		ds.categories = append(ds.categories, c)
	}
	sort.Strings(ds.categories)

	return ds
}

// Sales returns the fact rows. Callers must treat the slice as read-only.
func (ds *Dataset) Sales() []Sale {
	return ds.sales
}

// Len returns the number of fact rows.
func (ds *Dataset) Len() int {
	return len(ds.sales)
}

// CustomerCount returns the number of distinct customers in the dimension.
func (ds *Dataset) CustomerCount() int {
	return ds.customers
}

// CustomerName looks a customer up in the dimension. Unknown codes report
// false; fact rows are never dropped because of a missing name.
func (ds *Dataset) CustomerName(code string) (string, bool) {
	name, ok := ds.names[code]
	return name, ok
}

// Years returns the distinct years present in the facts, ascending.
func (ds *Dataset) Years() []int {
	return append([]int(nil), ds.years...)
}

// Categories returns the distinct categories present in the facts, sorted.
func (ds *Dataset) Categories() []string {
	return append([]string(nil), ds.categories...)
}

// LatestYear returns the most recent year in the facts, or 0 when empty.
func (ds *Dataset) LatestYear() int {
	if len(ds.years) == 0 {
		return 0
	}
	return ds.years[len(ds.years)-1]
}

// DuplicateKeys counts fact rows repeating an earlier
// (customer, product, year, month) combination.
func (ds *Dataset) DuplicateKeys() int {
	return ds.duplicates
}
