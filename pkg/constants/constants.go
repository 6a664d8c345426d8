// Package constants provides shared constants for the sales-analytics application.
package constants

// DateTimeLayout is the format used for (year, month) periods on the command
// line, in query strings and in rendered output.
const DateTimeLayout = "2006-01"

// Calendar constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12
)

// Report defaults
const (
	// DefaultSmallShareThreshold is the share (in percent) below which a
	// breakdown row is folded into the "Otros" bucket.
	DefaultSmallShareThreshold = 4.0

	// DefaultSegmentThreshold splits normalized value and frequency scores
	// into high and low halves.
	DefaultSegmentThreshold = 0.5

	// DefaultTopCustomers is the size of the customer ranking.
	DefaultTopCustomers = 5

	// DefaultTopProducts is the size of each product ranking.
	DefaultTopProducts = 10

	// AllCategories is the drill-down sentinel meaning "no drill-down".
	AllCategories = "Todas"

	// OtherLabel is the label of the synthetic row holding grouped small shares.
	OtherLabel = "Otros"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Data source formats
const (
	DataFormatCSV  = "csv"
	DataFormatXLSX = "xlsx"
	DataFormatSQL  = "sql"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// EnvPrefix prefixes environment overrides, e.g. SALES_DATA_SALESPATH.
	EnvPrefix = "SALES"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes bounds JSON selection bodies (64 KB)
	DefaultMaxRequestSizeBytes int64 = 64 * 1024

	// DefaultRateLimitPerMinute is the per-IP request budget for the API
	DefaultRateLimitPerMinute = 120
)

// Validation constants
const (
	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)
