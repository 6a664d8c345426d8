package dataset

import (
	"context"
	"database/sql"
	"strings"

	// Registered database/sql drivers, selected by data.driver.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Default queries used when the configuration leaves them empty.
var (
	DefaultSalesQuery = "SELECT " + strings.Join(SalesColumns, ", ") + " FROM hechos_ventas"

	DefaultCustomersQuery = "SELECT " + strings.Join(CustomerColumns, ", ") + " FROM dim_cliente"
)

func openDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, loadErr("open %s database: %v", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, loadErr("connect to %s database: %v", driver, err)
	}
	return db, nil
}

// queryTable runs query and renders every cell as text so that sql sources
// go through the same parser as files. NULL becomes the empty string.
func queryTable(ctx context.Context, db *sql.DB, name, query string) (*table, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, loadErr("%s query: %v", name, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, loadErr("%s query: %v", name, err)
	}

	t := &table{source: name + " query", header: columns}
	for rows.Next() {
		values := make([]sql.NullString, len(columns))
		ptrs := make([]interface{}, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, loadErr("%s query: row %d: %v", name, len(t.rows)+2, err)
		}
		record := make([]string, len(columns))
		for i, v := range values {
			record[i] = v.String
		}
		t.rows = append(t.rows, record)
	}
	if err := rows.Err(); err != nil {
		return nil, loadErr("%s query: %v", name, err)
	}
	return t, nil
}
