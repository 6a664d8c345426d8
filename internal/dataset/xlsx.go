package dataset

import (
	"github.com/xuri/excelize/v2"
)

// readXLSX reads one worksheet. An empty sheet name selects the first sheet
// of the workbook.
func readXLSX(path, sheet string) (*table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, loadErr("%s: %v", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, loadErr("%s: workbook has no sheets", path)
		}
		sheet = sheets[0]
	}

	// Raw values keep number formats such as "#,##0.00" out of the cells.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, loadErr("%s: sheet %q: %v", path, sheet, err)
	}
	if len(rows) == 0 {
		return nil, loadErr("%s: sheet %q is empty", path, sheet)
	}

	return &table{
		source: path + "[" + sheet + "]",
		header: rows[0],
		rows:   rows[1:],
	}, nil
}
