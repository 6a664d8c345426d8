package dataset

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/sales-analytics/internal/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const salesCSV = `anio,mes,cod_clte,art_codi,art_desc,categoria,subcategoria,valor_total,cantidad_total
2023,1,C1,P1,Widget,Cat1,Sub1,100,5
2023,2,C1,P1,Widget,Cat1,Sub1,200.50,10
2024,1,C2,P2,Gadget,Cat2,Sub2,50,1.0
`

const customersCSV = `cod_clte,nom_clte
C1,Acme
C2,Globex
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCSV(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DataConfig{
		Format:        "csv",
		SalesPath:     writeFile(t, dir, "ventas.csv", salesCSV),
		CustomersPath: writeFile(t, dir, "clientes.csv", customersCSV),
	}

	ds, err := Load(context.Background(), nil, cfg)
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []int{2023, 2024}, ds.Years())
	assert.Equal(t, []string{"Cat1", "Cat2"}, ds.Categories())
	assert.Equal(t, 2024, ds.LatestYear())
	assert.Equal(t, 2, ds.CustomerCount())

	first := ds.Sales()[1]
	assert.Equal(t, "C1", first.CustomerCode)
	assert.True(t, first.Value.Equal(decimal.RequireFromString("200.5")))
	assert.Equal(t, int64(10), first.Quantity)
	assert.Equal(t, "2023-02", first.Period().String())
	assert.Equal(t, int64(1), ds.Sales()[2].Quantity)

	name, ok := ds.CustomerName("C2")
	assert.True(t, ok)
	assert.Equal(t, "Globex", name)
	_, ok = ds.CustomerName("missing")
	assert.False(t, ok)
}

func TestLoadCSVErrors(t *testing.T) {
	tests := []struct {
		name    string
		sales   string
		wantMsg string
	}{
		{
			name:    "missing column",
			sales:   "anio,mes,cod_clte\n2023,1,C1\n",
			wantMsg: "missing required column(s) art_codi",
		},
		{
			name:    "bad month",
			sales:   "anio,mes,cod_clte,art_codi,art_desc,categoria,subcategoria,valor_total,cantidad_total\n2023,13,C1,P1,W,C,S,1,1\n",
			wantMsg: "row 2, column mes",
		},
		{
			name:    "bad value",
			sales:   "anio,mes,cod_clte,art_codi,art_desc,categoria,subcategoria,valor_total,cantidad_total\n2023,1,C1,P1,W,C,S,abc,1\n",
			wantMsg: "row 2, column valor_total",
		},
		{
			name:    "fractional quantity",
			sales:   "anio,mes,cod_clte,art_codi,art_desc,categoria,subcategoria,valor_total,cantidad_total\n2023,1,C1,P1,W,C,S,1,1.5\n",
			wantMsg: "row 2, column cantidad_total",
		},
		{
			name:    "empty file",
			sales:   "",
			wantMsg: "empty file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			cfg := config.DataConfig{
				Format:        "csv",
				SalesPath:     writeFile(t, dir, "ventas.csv", tt.sales),
				CustomersPath: writeFile(t, dir, "clientes.csv", customersCSV),
			}
			_, err := Load(context.Background(), nil, cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrLoad)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg := config.DataConfig{Format: "csv", SalesPath: filepath.Join(t.TempDir(), "nope.csv")}
	_, err := Load(context.Background(), nil, cfg)
	assert.ErrorIs(t, err, ErrLoad)
	assert.Contains(t, err.Error(), "nope.csv")
}

func TestLoadUnsupportedFormat(t *testing.T) {
	_, err := Load(context.Background(), nil, config.DataConfig{Format: "parquet"})
	assert.ErrorIs(t, err, ErrLoad)
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ventas.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "ventas"))
	_, err := f.NewSheet("clientes")
	require.NoError(t, err)

	require.NoError(t, f.SetSheetRow("ventas", "A1", &[]interface{}{
		"anio", "mes", "cod_clte", "art_codi", "art_desc", "categoria", "subcategoria", "valor_total", "cantidad_total",
	}))
	require.NoError(t, f.SetSheetRow("ventas", "A2", &[]interface{}{2023, 3, 123, "P1", "Widget", "Cat1", "Sub1", 99.5, 2}))
	require.NoError(t, f.SetSheetRow("ventas", "A3", &[]interface{}{2023, 4, 123, "P2", "Gadget", "Cat1", "Sub1", 1234.5, 1500}))
	thousands, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	require.NoError(t, err)
	require.NoError(t, f.SetCellStyle("ventas", "H3", "I3", thousands))
	require.NoError(t, f.SetSheetRow("clientes", "A1", &[]interface{}{"cod_clte", "nom_clte"}))
	require.NoError(t, f.SetSheetRow("clientes", "A2", &[]interface{}{123, "Acme"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	ds, err := Load(context.Background(), nil, config.DataConfig{
		Format:         "xlsx",
		SalesPath:      path,
		SalesSheet:     "ventas",
		CustomersSheet: "clientes",
	})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	s := ds.Sales()[0]
	assert.Equal(t, 2023, s.Year)
	assert.Equal(t, 3, s.Month)
	assert.Equal(t, "123", s.CustomerCode)
	assert.True(t, s.Value.Equal(decimal.RequireFromString("99.5")))

	formatted := ds.Sales()[1]
	assert.True(t, formatted.Value.Equal(decimal.RequireFromString("1234.5")), "got %s", formatted.Value)
	assert.Equal(t, int64(1500), formatted.Quantity)

	name, ok := ds.CustomerName("123")
	assert.True(t, ok)
	assert.Equal(t, "Acme", name)
}

func TestLoadSQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "ventas.db")

	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	stmts := []string{
		`CREATE TABLE hechos_ventas (anio INTEGER, mes INTEGER, cod_clte TEXT, art_codi TEXT, art_desc TEXT,
			categoria TEXT, subcategoria TEXT, valor_total REAL, cantidad_total INTEGER)`,
		`CREATE TABLE dim_cliente (cod_clte TEXT, nom_clte TEXT)`,
		`INSERT INTO hechos_ventas VALUES (2023, 1, 'C1', 'P1', 'Widget', 'Cat1', 'Sub1', 100.25, 5)`,
		`INSERT INTO hechos_ventas VALUES (2023, 2, 'C1', 'P1', 'Widget', 'Cat1', 'Sub1', 200, 10)`,
		`INSERT INTO dim_cliente VALUES ('C1', 'Acme')`,
	}
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	ds, err := Load(context.Background(), nil, config.DataConfig{Format: "sql", Driver: "sqlite", DSN: dsn})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())
	assert.True(t, ds.Sales()[0].Value.Equal(decimal.RequireFromString("100.25")))
	assert.Equal(t, int64(10), ds.Sales()[1].Quantity)

	_, err = Load(context.Background(), nil, config.DataConfig{
		Format:     "sql",
		Driver:     "sqlite",
		DSN:        dsn,
		SalesQuery: "SELECT anio FROM hechos_ventas",
	})
	assert.ErrorIs(t, err, ErrLoad)
	assert.Contains(t, err.Error(), "missing required column(s)")
}

func TestNormalizeCode(t *testing.T) {
	tests := map[string]string{
		"123.0": "123",
		"00123": "00123",
		"A.1":   "A.1",
		"12.5":  "12.5",
		"C1":    "C1",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeCode(in), in)
	}
}

func TestNewCountsDuplicatesAndKeepsFirstName(t *testing.T) {
	sale := Sale{Year: 2023, Month: 1, CustomerCode: "C1", ProductCode: "P1", Category: "A", Value: decimal.NewFromInt(1), Quantity: 1}
	ds := New([]Sale{sale, sale}, []Customer{{Code: "C1", Name: "First"}, {Code: "C1", Name: "Second"}})

	assert.Equal(t, 1, ds.DuplicateKeys())
	assert.Equal(t, 2, ds.Len())
	name, _ := ds.CustomerName("C1")
	assert.Equal(t, "First", name)
}

func TestEmptyDataset(t *testing.T) {
	ds := New(nil, nil)
	assert.Equal(t, 0, ds.LatestYear())
	assert.Empty(t, ds.Years())
	assert.Empty(t, ds.Categories())
	assert.True(t, strings.HasPrefix(DefaultSalesQuery, "SELECT anio, mes"))
}
