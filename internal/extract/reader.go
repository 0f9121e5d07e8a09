package extract

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/petroverse/ingest-cli/internal/model"
)

// Row is one raw line of an extract file.
type Row = []string

// Options configures extract parsing.
type Options struct {
	Delimiter  rune   // CSV delimiter, default ','
	SheetName  string // XLSX sheet by name; overrides SheetIndex
	SheetIndex int    // XLSX sheet by position, default 0
	SkipRows   int    // leading rows to drop before the header
}

// ReadFile parses a CSV or XLSX extract into raw records. The first
// surviving row must be a header naming at least the company, product,
// year, month, and volume columns.
func ReadFile(path string, opts Options) ([]model.RawRecord, error) {
	var rows []Row
	var err error
	if isXLSX(path) {
		rows, err = ReadXLSX(path, opts)
	} else {
		rows, err = ReadCSV(path, opts)
	}
	if err != nil {
		return nil, err
	}

	records, err := Records(rows, filepath.Base(path))
	if err != nil {
		return nil, eris.Wrapf(err, "extract: %s", path)
	}

	zap.L().Info("extract parsed",
		zap.String("file", filepath.Base(path)),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// Records converts header+data rows into raw records. Company and product
// cells keep their exact raw spelling; only numeric cells are parsed.
func Records(rows []Row, sourceFile string) ([]model.RawRecord, error) {
	if len(rows) == 0 {
		return nil, eris.New("no rows")
	}

	cols := mapColumns(rows[0])
	for _, required := range [][]string{companyAliases, productAliases, yearAliases, monthAliases, volumeAliases} {
		if !cols.has(required) {
			return nil, eris.Errorf("missing required column (one of %v)", required)
		}
	}

	records := make([]model.RawRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		records = append(records, model.RawRecord{
			SourceFile:  sourceFile,
			CompanyName: cols.col(row, companyAliases),
			CompanyType: cols.col(row, companyTypeAliases),
			Product:     cols.col(row, productAliases),
			Year:        parseIntOr(cols.col(row, yearAliases), 0),
			Month:       parseIntOr(cols.col(row, monthAliases), 0),
			Volume:      parseVolume(cols.col(row, volumeAliases)),
			UnitHint:    parseUnitHint(cols.col(row, unitAliases)),
		})
	}
	return records, nil
}
