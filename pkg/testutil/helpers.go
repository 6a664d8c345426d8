// Package testutil provides common utility functions for testing.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/sales-analytics/internal/dataset"
	"github.com/iwvelando/sales-analytics/pkg/grouping"
	"github.com/shopspring/decimal"
)

// Sale builds a fact row. Description and subcategory are derived from the
// product code and category when the fixture does not care about them.
func Sale(year, month int, customer, product, category string, value float64, quantity int64) dataset.Sale {
	return dataset.Sale{
		Year:               year,
		Month:              month,
		CustomerCode:       customer,
		ProductCode:        product,
		ProductDescription: "Desc " + product,
		Category:           category,
		Subcategory:        "Sub " + category,
		Value:              decimal.NewFromFloat(value),
		Quantity:           quantity,
	}
}

// Dataset builds a Dataset from sales and a code to name map.
func Dataset(sales []dataset.Sale, names map[string]string) *dataset.Dataset {
	customers := make([]dataset.Customer, 0, len(names))
	for code, name := range names {
		customers = append(customers, dataset.Customer{Code: code, Name: name})
	}
	return dataset.New(sales, customers)
}

// SampleSales is a two year fixture with three customers and three categories.
func SampleSales() []dataset.Sale {
	return []dataset.Sale{
		Sale(2023, 1, "C1", "P1", "Bebidas", 100, 5),
		Sale(2023, 2, "C1", "P1", "Bebidas", 200, 10),
		Sale(2023, 2, "C2", "P2", "Snacks", 50, 2),
		Sale(2023, 3, "C3", "P3", "Limpieza", 10, 1),
		Sale(2024, 1, "C1", "P1", "Bebidas", 300, 12),
		Sale(2024, 1, "C2", "P3", "Limpieza", 40, 4),
		Sale(2024, 2, "C2", "P2", "Snacks", 60, 3),
		Sale(2024, 3, "C4", "P2", "Snacks", 20, 1),
	}
}

// SampleNames names every sample customer except C4.
func SampleNames() map[string]string {
	return map[string]string{"C1": "Acme", "C2": "Globex", "C3": "Initech"}
}

// SampleDataset is SampleSales joined with SampleNames.
func SampleDataset() *dataset.Dataset {
	return Dataset(SampleSales(), SampleNames())
}

// WriteSampleCSV writes the sample tables as csv files into dir and returns
// their paths.
func WriteSampleCSV(t testing.TB, dir string) (salesPath, customersPath string) {
	t.Helper()

	var b strings.Builder
	b.WriteString(strings.Join(dataset.SalesColumns, ",") + "\n")
	for _, s := range SampleSales() {
		fmt.Fprintf(&b, "%d,%d,%s,%s,%s,%s,%s,%s,%d\n",
			s.Year, s.Month, s.CustomerCode, s.ProductCode, s.ProductDescription,
			s.Category, s.Subcategory, s.Value.String(), s.Quantity)
	}
	salesPath = filepath.Join(dir, "ventas.csv")
	if err := os.WriteFile(salesPath, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write sales fixture: %v", err)
	}

	b.Reset()
	b.WriteString(strings.Join(dataset.CustomerColumns, ",") + "\n")
	for _, code := range []string{"C1", "C2", "C3"} {
		fmt.Fprintf(&b, "%s,%s\n", code, SampleNames()[code])
	}
	customersPath = filepath.Join(dir, "clientes.csv")
	if err := os.WriteFile(customersPath, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write customers fixture: %v", err)
	}
	return salesPath, customersPath
}

// FindSlice finds a breakdown row by label.
// Returns a pointer to the row if found, nil otherwise.
func FindSlice(rows []grouping.Slice, label string) *grouping.Slice {
	for i := range rows {
		if rows[i].Label == label {
			return &rows[i]
		}
	}
	return nil
}
