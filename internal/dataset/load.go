package dataset

import (
	"context"
	"time"

	"github.com/iwvelando/sales-analytics/internal/config"
	"github.com/iwvelando/sales-analytics/pkg/constants"
	"go.uber.org/zap"
)

// Load reads both base tables from the source described by cfg.
func Load(ctx context.Context, logger *zap.Logger, cfg config.DataConfig) (*Dataset, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	var (
		salesTable, customersTable *table
		err                        error
	)

	switch cfg.Format {
	case constants.DataFormatCSV, "":
		if salesTable, err = readCSVFile(cfg.SalesPath); err != nil {
			return nil, err
		}
		if customersTable, err = readCSVFile(cfg.CustomersPath); err != nil {
			return nil, err
		}
	case constants.DataFormatXLSX:
		if salesTable, err = readXLSX(cfg.SalesPath, cfg.SalesSheet); err != nil {
			return nil, err
		}
		customersPath := cfg.CustomersPath
		if customersPath == "" {
			customersPath = cfg.SalesPath
		}
		if customersTable, err = readXLSX(customersPath, cfg.CustomersSheet); err != nil {
			return nil, err
		}
	case constants.DataFormatSQL:
		db, err := openDB(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		defer db.Close()

		salesQuery := cfg.SalesQuery
		if salesQuery == "" {
			salesQuery = DefaultSalesQuery
		}
		customersQuery := cfg.CustomersQuery
		if customersQuery == "" {
			customersQuery = DefaultCustomersQuery
		}
		if salesTable, err = queryTable(ctx, db, "sales", salesQuery); err != nil {
			return nil, err
		}
		if customersTable, err = queryTable(ctx, db, "customers", customersQuery); err != nil {
			return nil, err
		}
	default:
		return nil, loadErr("unsupported data format %q", cfg.Format)
	}

	ds, err := build(salesTable, customersTable)
	if err != nil {
		return nil, err
	}

	logger.Info("dataset loaded",
		zap.String("op", "dataset.Load"),
		zap.String("format", cfg.Format),
		zap.Int("sales_rows", ds.Len()),
		zap.Int("customers", ds.CustomerCount()),
		zap.Ints("years", ds.Years()),
		zap.Duration("elapsed", time.Since(start)),
	)
	if n := ds.DuplicateKeys(); n > 0 {
		logger.Warn("sales table repeats (customer, product, year, month) keys",
			zap.String("op", "dataset.Load"),
			zap.Int("duplicates", n),
		)
	}
	return ds, nil
}

func build(salesTable, customersTable *table) (*Dataset, error) {
	sales, err := parseSales(salesTable)
	if err != nil {
		return nil, err
	}
	customers, err := parseCustomers(customersTable)
	if err != nil {
		return nil, err
	}
	return New(sales, customers), nil
}
