package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/iwvelando/sales-analytics/internal/report"
	"github.com/iwvelando/sales-analytics/pkg/datetime"
	"github.com/iwvelando/sales-analytics/pkg/testutil"
)

func buildReport(t *testing.T, sel report.Selection) *report.Report {
	t.Helper()
	r, err := report.Build(nil, testutil.SampleDataset(), sel, report.DefaultOptions())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return r
}

func TestPretty(t *testing.T) {
	r := buildReport(t, report.Selection{
		Years:   []int{2024},
		Compare: &report.Comparison{First: datetime.MustParsePeriod("2023-01"), Second: datetime.MustParsePeriod("2024-01")},
	})

	var buf bytes.Buffer
	if err := Pretty(&buf, r); err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"--- Reporte " + r.ID,
		"Filtros: años 2024; todas las categorías; comparación Enero 2023 vs Enero 2024",
		"KPIs Generales",
		"Valor Total",
		"$420.00",
		"Tasa de Crecimiento 2024",
		"Índice de Estacionalidad",
		"Comparación de Períodos",
		"+240.0%",
		"Acme (C1)",
		"Segmentación de Clientes",
		"Top Productos por Valor",
		"Ventas por Subcategoría: Todas",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Pretty output missing %q", want)
		}
	}
}

func TestPrettyNotices(t *testing.T) {
	r := buildReport(t, report.Selection{Years: []int{1999}})

	var buf bytes.Buffer
	if err := Pretty(&buf, r); err != nil {
		t.Fatalf("Pretty failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "No hay datos para los filtros seleccionados") {
		t.Errorf("Pretty output missing the KPI notice")
	}
	if !strings.Contains(out, "No hay suficientes datos para generar el mapa de calor") {
		t.Errorf("Pretty output missing the heatmap notice")
	}
}

// failOnceWriter fails the first write containing marker and accepts
// everything else.
type failOnceWriter struct {
	marker string
	failed bool
	buf    bytes.Buffer
}

func (w *failOnceWriter) Write(b []byte) (int, error) {
	if !w.failed && strings.Contains(string(b), w.marker) {
		w.failed = true
		return 0, errors.New("disk full")
	}
	return w.buf.Write(b)
}

func TestPrettyReportsTableWriteError(t *testing.T) {
	w := &failOnceWriter{marker: "Métrica"}
	err := Pretty(w, buildReport(t, report.Selection{}))
	if !w.failed {
		t.Fatal("expected the KPI table header to be written")
	}
	if err == nil || err.Error() != "disk full" {
		t.Fatalf("expected the table write error, got %v", err)
	}
	if strings.Contains(w.buf.String(), "Tasa de Crecimiento") {
		t.Error("expected output to stop after the failed write")
	}
}

func TestCSV(t *testing.T) {
	r := buildReport(t, report.Selection{})

	var buf bytes.Buffer
	if err := CSV(&buf, r); err != nil {
		t.Fatalf("CSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV output does not parse: %v", err)
	}
	if strings.Join(records[0], ",") != strings.Join(CSVHeader, ",") {
		t.Errorf("Unexpected header %v", records[0])
	}

	found := map[string]string{}
	for _, rec := range records[1:] {
		if len(rec) != 4 {
			t.Fatalf("Expected 4 fields, got %d: %v", len(rec), rec)
		}
		found[rec[0]+"|"+rec[1]+"|"+rec[2]] = rec[3]
	}

	tests := []struct {
		key      string
		expected string
	}{
		{"kpis||value_total", "780.00"},
		{"kpis||quantity_total", "38"},
		{"trend|2023-02|value", "250.00"},
		{"heatmap|2024-01|value", "340.00"},
		{"customers|Acme (C1)|value", "600.00"},
		{"frequency|2|customers", "2"},
		{"products|P1|quantity", "27"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := found[tt.key]; got != tt.expected {
				t.Errorf("Expected %s = %q, got %q", tt.key, tt.expected, got)
			}
		})
	}
}

func TestCSVNotices(t *testing.T) {
	r := buildReport(t, report.Selection{Years: []int{1999}})

	var buf bytes.Buffer
	if err := CSV(&buf, r); err != nil {
		t.Fatalf("CSV failed: %v", err)
	}
	if !strings.Contains(buf.String(), "kpis,,notice,No hay datos para los filtros seleccionados") {
		t.Errorf("CSV output missing the KPI notice:\n%s", buf.String())
	}
}

func TestJSON(t *testing.T) {
	r := buildReport(t, report.Selection{Years: []int{2023}})

	var buf bytes.Buffer
	if err := JSON(&buf, r); err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("JSON output does not parse: %v", err)
	}
	if decoded["id"] != r.ID {
		t.Errorf("Expected id %s, got %v", r.ID, decoded["id"])
	}
	kpis, ok := decoded["kpis"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected a kpis object")
	}
	if kpis["valueTotal"] != 360.0 {
		t.Errorf("Expected valueTotal 360, got %v", kpis["valueTotal"])
	}
	growth := decoded["growth"].([]interface{})
	if first := growth[0].(map[string]interface{}); first["growth"] != nil {
		t.Errorf("Expected null growth for the first month, got %v", first["growth"])
	}
}
