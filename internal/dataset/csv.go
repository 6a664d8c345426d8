package dataset

import (
	"encoding/csv"
	"io"
	"os"
)

func readCSVFile(path string) (*table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, loadErr("%s: %v", path, err)
	}
	defer f.Close()
	return readCSV(path, f)
}

func readCSV(source string, r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, loadErr("%s: empty file", source)
	}
	if err != nil {
		return nil, loadErr("%s: %v", source, err)
	}

	t := &table{source: source, header: header}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, loadErr("%s: %v", source, err)
		}
		t.rows = append(t.rows, record)
	}
	return t, nil
}
