package report

import (
	"github.com/iwvelando/sales-analytics/internal/dataset"
	"github.com/shopspring/decimal"
)

// KPISummary holds the headline metrics of a set of fact rows.
type KPISummary struct {
	ValueTotal        float64 `json:"valueTotal"`
	QuantityTotal     int64   `json:"quantityTotal"`
	AverageTicket     float64 `json:"averageTicket"`
	DistinctCustomers int     `json:"distinctCustomers"`
	DistinctProducts  int     `json:"distinctProducts"`
	Rows              int     `json:"rows"`
}

// Summarize computes the KPI summary. The average ticket is the value total
// divided by the number of rows, 0 for no rows.
func Summarize(sales []dataset.Sale) KPISummary {
	value := decimal.Zero
	var quantity int64
	customers := make(map[string]struct{})
	products := make(map[string]struct{})

	for _, s := range sales {
		value = value.Add(s.Value)
		quantity += s.Quantity
		customers[s.CustomerCode] = struct{}{}
		products[s.ProductCode] = struct{}{}
	}

	summary := KPISummary{
		ValueTotal:        value.InexactFloat64(),
		QuantityTotal:     quantity,
		DistinctCustomers: len(customers),
		DistinctProducts:  len(products),
		Rows:              len(sales),
	}
	if len(sales) > 0 {
		summary.AverageTicket = value.Div(decimal.NewFromInt(int64(len(sales)))).InexactFloat64()
	}
	return summary
}

// percentChange is (current/previous - 1) * 100 computed in decimal. ok is
// false when previous is zero.
func percentChange(previous, current decimal.Decimal) (float64, bool) {
	if previous.IsZero() {
		return 0, false
	}
	return current.Div(previous).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100)).InexactFloat64(), true
}
