package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/sales-analytics/pkg/constants"
	"github.com/iwvelando/sales-analytics/pkg/validation"
)

var supportedDrivers = map[string]bool{
	"sqlite": true,
	"mysql":  true,
	"pgx":    true,
}

// Validate returns an error describing every setting that would prevent the
// data from loading or the report from being computed.
func (c *Configuration) Validate() error {
	problems := validation.Struct(c)
	if err := validation.ValidateDataFormat(c.Data.Format); err != nil {
		problems = append(problems, "data.format: "+err.Error())
	}

	switch c.Data.Format {
	case constants.DataFormatCSV, constants.DataFormatXLSX:
		if strings.TrimSpace(c.Data.SalesPath) == "" {
			problems = append(problems, "data.salesPath is required for "+c.Data.Format+" sources")
		}
		if c.Data.Format == constants.DataFormatCSV && strings.TrimSpace(c.Data.CustomersPath) == "" {
			problems = append(problems, "data.customersPath is required for csv sources")
		}
	case constants.DataFormatSQL:
		if !supportedDrivers[c.Data.Driver] {
			problems = append(problems, fmt.Sprintf("data.driver must be one of sqlite, mysql, pgx, got %q", c.Data.Driver))
		}
		if strings.TrimSpace(c.Data.DSN) == "" {
			problems = append(problems, "data.dsn is required for sql sources")
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.New("invalid configuration: " + strings.Join(problems, "; "))
}

// ValidateConfiguration performs general validation of the configuration and
// returns warnings for settings that are legal but probably unintended.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if c.Report.SmallShareThreshold == 0 {
		warnings = append(warnings, "report.smallShareThreshold is 0, breakdowns will never fold rows into \"Otros\"")
	}
	if c.Report.SmallShareThreshold > 25 {
		warnings = append(warnings, fmt.Sprintf("report.smallShareThreshold of %.1f%% folds most breakdowns into \"Otros\"", c.Report.SmallShareThreshold))
	}
	if c.Report.TopCustomers > 50 {
		warnings = append(warnings, fmt.Sprintf("report.topCustomers of %d is large for a share chart", c.Report.TopCustomers))
	}
	if c.Data.Format != constants.DataFormatXLSX && (c.Data.SalesSheet != "" || c.Data.CustomersSheet != "") {
		warnings = append(warnings, "data sheet names are only used by xlsx sources")
	}
	if c.Data.Format != constants.DataFormatSQL && (c.Data.SalesQuery != "" || c.Data.CustomersQuery != "") {
		warnings = append(warnings, "data queries are only used by sql sources")
	}

	return warnings
}
