package extract

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// ReadCSV parses a delimited extract file into raw records. The reader is
// deliberately tolerant: lazy quotes, ragged rows, variable field counts.
// Malformed data lands in the records as-is and is judged by the
// normalization pipeline, not silently repaired here.
func ReadCSV(path string, opts Options) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	rows, err := readCSVRows(f, opts)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: parse %s", path)
	}
	return rows, nil
}

func readCSVRows(r io.Reader, opts Options) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}

	var rows []Row
	skipped := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "read row")
		}
		if skipped < opts.SkipRows {
			skipped++
			continue
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// isXLSX reports whether a path looks like an XLSX workbook.
func isXLSX(path string) bool {
	return filepath.Ext(path) == ".xlsx"
}
