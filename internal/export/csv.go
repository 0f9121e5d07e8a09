// Package export writes normalized batches to output files.
package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/petroverse/ingest-cli/internal/model"
)

// outputRow is the on-disk CSV shape of a normalized record.
type outputRow struct {
	SourceFile       string  `csv:"source_file"`
	CompanyName      string  `csv:"company_name"`
	CompanyType      string  `csv:"company_type"`
	Product          string  `csv:"product"`
	ProductCode      string  `csv:"product_code"`
	Year             int     `csv:"year"`
	Month            int     `csv:"month"`
	VolumeLiters     float64 `csv:"volume_liters"`
	VolumeKG         float64 `csv:"volume_kg"`
	VolumeMT         float64 `csv:"volume_mt"`
	DataQualityScore float64 `csv:"data_quality_score"`
	IsOutlier        bool    `csv:"is_outlier"`
	CreatedAt        string  `csv:"created_at"`
}

// WriteCSV writes the batch to path atomically: the rows go to a temp
// file in the destination directory which is renamed over the target only
// after a successful flush, so a failed run never leaves a partial file.
func WriteCSV(records []model.NormalizedRecord, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-")
	if err != nil {
		return eris.Wrapf(err, "export: create temp file in %s", dir)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck

	if err := writeRows(tmp, records); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return eris.Wrap(err, "export: close temp file")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return eris.Wrapf(err, "export: rename to %s", path)
	}

	zap.L().Info("output written",
		zap.String("path", path),
		zap.Int("records", len(records)),
	)
	return nil
}

func writeRows(f *os.File, records []model.NormalizedRecord) error {
	w := csv.NewWriter(f)
	enc := csvutil.NewEncoder(w)

	for _, rec := range records {
		row := outputRow{
			SourceFile:       rec.SourceFile,
			CompanyName:      rec.CompanyName,
			CompanyType:      rec.CompanyType,
			Product:          rec.Product,
			ProductCode:      rec.ProductCode,
			Year:             rec.Year,
			Month:            rec.Month,
			VolumeLiters:     rec.VolumeLiters,
			VolumeKG:         rec.VolumeKG,
			VolumeMT:         rec.VolumeMT,
			DataQualityScore: rec.DataQualityScore,
			IsOutlier:        rec.IsOutlier,
			CreatedAt:        rec.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := enc.Encode(row); err != nil {
			return eris.Wrap(err, "export: encode row")
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrap(err, "export: flush csv")
	}
	return nil
}

// SummaryLines renders the rejection summary for operator output.
func SummaryLines(summary model.RunSummary) []string {
	lines := []string{
		"input_records=" + strconv.Itoa(summary.InputRecords),
		"output_records=" + strconv.Itoa(summary.OutputRecords),
		"outliers=" + strconv.Itoa(summary.Outliers),
		"rejected=" + strconv.Itoa(summary.Rejected()),
	}
	for _, reason := range []model.RejectReason{
		model.ReasonUnmappedProduct,
		model.ReasonInvalidEntry,
		model.ReasonInvalidCompany,
		model.ReasonNonPositiveVolume,
	} {
		if n := summary.Rejections[reason]; n > 0 {
			lines = append(lines, string(reason)+"="+strconv.Itoa(n))
		}
	}
	return lines
}
