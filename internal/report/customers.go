package report

import (
	"sort"

	"github.com/iwvelando/sales-analytics/internal/dataset"
	"github.com/iwvelando/sales-analytics/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Customer segments of the value by frequency grid.
const (
	SegmentVIP        = "VIP"
	SegmentBigRare    = "Grandes Ocasionales"
	SegmentSmallOften = "Frecuentes Pequeños"
	SegmentSmall      = "Pequeños"
)

// segmentOrder is the display order of the segment summary.
var segmentOrder = []string{SegmentVIP, SegmentBigRare, SegmentSmallOften, SegmentSmall}

// customerTotals is the per-customer accumulation shared by the customer
// sections.
type customerTotals struct {
	code   string
	value  decimal.Decimal
	months map[int]struct{}
}

func totalsByCustomer(sales []dataset.Sale) []*customerTotals {
	index := make(map[string]*customerTotals)
	var order []*customerTotals
	for _, s := range sales {
		c, ok := index[s.CustomerCode]
		if !ok {
			c = &customerTotals{code: s.CustomerCode, months: make(map[int]struct{})}
			index[s.CustomerCode] = c
			order = append(order, c)
		}
		c.value = c.value.Add(s.Value)
		c.months[s.Month] = struct{}{}
	}

	sort.SliceStable(order, func(i, j int) bool {
		if cmp := order[i].value.Cmp(order[j].value); cmp != 0 {
			return cmp > 0
		}
		return order[i].code < order[j].code
	})
	return order
}

// CustomerLabel renders "Name (code)", or the code alone for a customer
// missing from the dimension.
func CustomerLabel(ds *dataset.Dataset, code string) (name, label string) {
	name, ok := ds.CustomerName(code)
	if !ok || name == "" {
		return "", code
	}
	return name, name + " (" + code + ")"
}

// CustomerShare is one row of the customer ranking.
type CustomerShare struct {
	Code  string  `json:"code"`
	Name  string  `json:"name,omitempty"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Share float64 `json:"share"`
}

// TopCustomers ranks customers by value and returns the first n with their
// share of the whole filtered total.
func TopCustomers(sales []dataset.Sale, ds *dataset.Dataset, n int) []CustomerShare {
	totals := totalsByCustomer(sales)
	grand := decimal.Zero
	for _, c := range totals {
		grand = grand.Add(c.value)
	}
	if n < len(totals) {
		totals = totals[:n]
	}

	out := make([]CustomerShare, 0, len(totals))
	for _, c := range totals {
		name, label := CustomerLabel(ds, c.code)
		value := c.value.InexactFloat64()
		out = append(out, CustomerShare{
			Code:  c.code,
			Name:  name,
			Label: label,
			Value: value,
			Share: mathutil.CalculatePercentage(value, grand.InexactFloat64()),
		})
	}
	return out
}

// FrequencyBucket counts the customers active in exactly Months distinct
// months of the year.
type FrequencyBucket struct {
	Months    int `json:"months"`
	Customers int `json:"customers"`
}

// PurchaseFrequency distributes customers by their number of distinct active
// months, ascending by month count. Months are months of the year, so the same
// month in two years counts once.
func PurchaseFrequency(sales []dataset.Sale) []FrequencyBucket {
	counts := make(map[int]int)
	for _, c := range totalsByCustomer(sales) {
		counts[len(c.months)]++
	}

	out := make([]FrequencyBucket, 0, len(counts))
	for months, customers := range counts {
		out = append(out, FrequencyBucket{Months: months, Customers: customers})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Months < out[j].Months })
	return out
}

// CustomerSegment is one customer placed on the value by frequency grid.
type CustomerSegment struct {
	Code           string  `json:"code"`
	Name           string  `json:"name,omitempty"`
	Label          string  `json:"label"`
	Value          float64 `json:"value"`
	Months         int     `json:"months"`
	ValueScore     float64 `json:"valueScore"`
	FrequencyScore float64 `json:"frequencyScore"`
	Segment        string  `json:"segment"`
}

// Classify places normalized scores on the 2x2 grid split at threshold.
func Classify(valueScore, frequencyScore, threshold float64) string {
	highValue := valueScore >= threshold
	highFrequency := frequencyScore >= threshold
	switch {
	case highValue && highFrequency:
		return SegmentVIP
	case highValue:
		return SegmentBigRare
	case highFrequency:
		return SegmentSmallOften
	default:
		return SegmentSmall
	}
}

// Segment scores every customer by value and by distinct active months, each
// divided by its column maximum, and classifies the scores. Customers come
// back ordered by value, descending.
func Segment(sales []dataset.Sale, ds *dataset.Dataset, threshold float64) []CustomerSegment {
	totals := totalsByCustomer(sales)

	var maxValue float64
	var maxMonths int
	for _, c := range totals {
		if v := c.value.InexactFloat64(); v > maxValue {
			maxValue = v
		}
		if len(c.months) > maxMonths {
			maxMonths = len(c.months)
		}
	}

	out := make([]CustomerSegment, 0, len(totals))
	for _, c := range totals {
		name, label := CustomerLabel(ds, c.code)
		seg := CustomerSegment{
			Code:           c.code,
			Name:           name,
			Label:          label,
			Value:          c.value.InexactFloat64(),
			Months:         len(c.months),
			FrequencyScore: mathutil.Normalize(float64(len(c.months)), float64(maxMonths)),
		}
		seg.ValueScore = mathutil.Normalize(seg.Value, maxValue)
		seg.Segment = Classify(seg.ValueScore, seg.FrequencyScore, threshold)
		out = append(out, seg)
	}
	return out
}

// SegmentCount summarizes one segment.
type SegmentCount struct {
	Segment   string  `json:"segment"`
	Customers int     `json:"customers"`
	Value     float64 `json:"value"`
}

// SegmentCounts totals the segmented customers per segment. Segments without
// customers are omitted.
func SegmentCounts(segments []CustomerSegment) []SegmentCount {
	counts := make(map[string]*SegmentCount, len(segmentOrder))
	for _, s := range segments {
		c, ok := counts[s.Segment]
		if !ok {
			c = &SegmentCount{Segment: s.Segment}
			counts[s.Segment] = c
		}
		c.Customers++
		c.Value += s.Value
	}

	out := make([]SegmentCount, 0, len(counts))
	for _, name := range segmentOrder {
		if c, ok := counts[name]; ok {
			out = append(out, *c)
		}
	}
	return out
}
