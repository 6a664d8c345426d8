package output

import (
	"encoding/json"
	"io"

	"github.com/iwvelando/sales-analytics/internal/report"
)

// JSON outputs the report as indented JSON.
func JSON(w io.Writer, r *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
