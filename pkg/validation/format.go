// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/sales-analytics/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON:
		return nil
	}
	return fmt.Errorf("expected output format of %s, %s or %s, got %s",
		constants.OutputFormatPretty, constants.OutputFormatCSV, constants.OutputFormatJSON, format)
}

// ValidateDataFormat checks if the data source format is supported.
func ValidateDataFormat(format string) error {
	switch format {
	case constants.DataFormatCSV, constants.DataFormatXLSX, constants.DataFormatSQL:
		return nil
	}
	return fmt.Errorf("expected data format of %s, %s or %s, got %q",
		constants.DataFormatCSV, constants.DataFormatXLSX, constants.DataFormatSQL, format)
}
