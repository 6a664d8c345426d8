package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/iwvelando/sales-analytics/internal/config"
	"github.com/iwvelando/sales-analytics/internal/dataset"
	"github.com/iwvelando/sales-analytics/internal/logging"
	"github.com/iwvelando/sales-analytics/internal/report"
	"github.com/iwvelando/sales-analytics/pkg/constants"
	"github.com/iwvelando/sales-analytics/pkg/output"
	"github.com/iwvelando/sales-analytics/pkg/validation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	yearsFlag := flag.String("years", "", "comma separated years to include (default: latest year)")
	categoriesFlag := flag.String("categories", "", "comma separated categories to include (default: all)")
	growthYear := flag.Int("growth-year", 0, "year for the monthly growth chart (default: latest year)")
	compareFlag := flag.String("compare", "", "two periods to compare, e.g. 2023-01,2024-01")
	drill := flag.String("drill", "", "category to drill down into")
	flag.Parse()

	// A .env file is optional; it only seeds SALES_* overrides.
	_ = godotenv.Load()

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	ds, err := dataset.Load(context.Background(), logger, conf.Data)
	if err != nil {
		logger.Fatal("failed to load sales data",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	sel, err := selectionFromFlags(ds, *yearsFlag, *categoriesFlag, *growthYear, *compareFlag, *drill)
	if err != nil {
		logger.Fatal("invalid selection",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	rep, err := report.Build(logger, ds, sel, report.OptionsFromConfig(conf.Report))
	if err != nil {
		logger.Fatal("failed to build report",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		err = output.Pretty(os.Stdout, rep)
	case constants.OutputFormatCSV:
		err = output.CSV(os.Stdout, rep)
	case constants.OutputFormatJSON:
		err = output.JSON(os.Stdout, rep)
	}
	if err != nil {
		logger.Fatal("failed to write report",
			zap.String("op", "main"),
			zap.String("format", outputFormat),
			zap.Error(err),
		)
	}
}

// selectionFromFlags starts from the default selection and comparison and
// replaces whatever the flags set.
func selectionFromFlags(ds *dataset.Dataset, years, categories string, growthYear int, compare, drill string) (report.Selection, error) {
	sel := report.DefaultSelection(ds)
	sel.Compare = report.DefaultComparison(ds)

	if strings.TrimSpace(years) != "" {
		parsed, err := report.ParseYears(years)
		if err != nil {
			return sel, err
		}
		sel.Years = parsed
	}
	sel.Categories = report.ParseList(categories)
	if growthYear != 0 {
		sel.GrowthYear = growthYear
	}
	if strings.TrimSpace(compare) != "" {
		cmp, err := report.ParseComparison(compare)
		if err != nil {
			return sel, err
		}
		sel.Compare = cmp
	}
	if drill != "" {
		sel.DrillCategory = drill
	}
	return sel, sel.Validate()
}
