package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrLoad is wrapped by every error produced while reading a source.
var ErrLoad = errors.New("dataset load failed")

// Column names of the sales fact table.
const (
	ColYear               = "anio"
	ColMonth              = "mes"
	ColCustomerCode       = "cod_clte"
	ColProductCode        = "art_codi"
	ColProductDescription = "art_desc"
	ColCategory           = "categoria"
	ColSubcategory        = "subcategoria"
	ColValue              = "valor_total"
	ColQuantity           = "cantidad_total"

	ColCustomerName = "nom_clte"
)

// SalesColumns lists the required fact columns in canonical order.
var SalesColumns = []string{
	ColYear, ColMonth, ColCustomerCode, ColProductCode, ColProductDescription,
	ColCategory, ColSubcategory, ColValue, ColQuantity,
}

// CustomerColumns lists the required dimension columns.
var CustomerColumns = []string{ColCustomerCode, ColCustomerName}

// table is the source-neutral shape every loader produces: a header row and
// string cells. Row numbers in errors are 1-based and count the header.
type table struct {
	source string
	header []string
	rows   [][]string
}

func loadErr(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrLoad, fmt.Sprintf(format, args...))
}

// index maps each required column to its position, ignoring extra columns.
func (t *table) index(required []string) (map[string]int, error) {
	positions := make(map[string]int, len(t.header))
	for i, h := range t.header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, exists := positions[name]; !exists {
			positions[name] = i
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := positions[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, loadErr("%s: missing required column(s) %s", t.source, strings.Join(missing, ", "))
	}
	return positions, nil
}

// cell returns the trimmed value at column col, tolerating short rows.
func cell(row []string, pos int) string {
	if pos >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[pos])
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseSales(t *table) ([]Sale, error) {
	pos, err := t.index(SalesColumns)
	if err != nil {
		return nil, err
	}

	sales := make([]Sale, 0, len(t.rows))
	for i, row := range t.rows {
		if isBlank(row) {
			continue
		}
		line := i + 2
		fail := func(col string, cause error) error {
			return loadErr("%s: row %d, column %s: %v", t.source, line, col, cause)
		}

		year, err := parseInteger(cell(row, pos[ColYear]))
		if err != nil {
			return nil, fail(ColYear, err)
		}
		if year <= 0 {
			return nil, fail(ColYear, fmt.Errorf("year must be positive, got %d", year))
		}
		month, err := parseInteger(cell(row, pos[ColMonth]))
		if err != nil {
			return nil, fail(ColMonth, err)
		}
		if month < 1 || month > 12 {
			return nil, fail(ColMonth, fmt.Errorf("month must be between 1 and 12, got %d", month))
		}
		customer := normalizeCode(cell(row, pos[ColCustomerCode]))
		if customer == "" {
			return nil, fail(ColCustomerCode, errors.New("empty customer code"))
		}
		product := normalizeCode(cell(row, pos[ColProductCode]))
		if product == "" {
			return nil, fail(ColProductCode, errors.New("empty product code"))
		}
		value, err := decimal.NewFromString(cell(row, pos[ColValue]))
		if err != nil {
			return nil, fail(ColValue, err)
		}
		quantity, err := parseInteger(cell(row, pos[ColQuantity]))
		if err != nil {
			return nil, fail(ColQuantity, err)
		}

		sales = append(sales, Sale{
			Year:               int(year),
			Month:              int(month),
			CustomerCode:       customer,
			ProductCode:        product,
			ProductDescription: cell(row, pos[ColProductDescription]),
			Category:           cell(row, pos[ColCategory]),
			Subcategory:        cell(row, pos[ColSubcategory]),
			Value:              value,
			Quantity:           quantity,
		})
	}
	return sales, nil
}

func parseCustomers(t *table) ([]Customer, error) {
	pos, err := t.index(CustomerColumns)
	if err != nil {
		return nil, err
	}

	customers := make([]Customer, 0, len(t.rows))
	for i, row := range t.rows {
		if isBlank(row) {
			continue
		}
		code := normalizeCode(cell(row, pos[ColCustomerCode]))
		if code == "" {
			return nil, loadErr("%s: row %d, column %s: empty customer code", t.source, i+2, ColCustomerCode)
		}
		customers = append(customers, Customer{Code: code, Name: cell(row, pos[ColCustomerName])})
	}
	return customers, nil
}

// parseInteger accepts plain integers and integral decimals such as "5.0",
// which spreadsheet exports produce for numeric columns.
func parseInteger(s string) (int64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("invalid integer %q: has a fractional part", s)
	}
	return d.IntPart(), nil
}

// normalizeCode turns "123.0" into "123" so codes written by spreadsheets
// join with codes written as text. Anything else is kept verbatim.
func normalizeCode(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsInteger() {
		return s
	}
	return d.String()
}
