package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petroverse/ingest-cli/internal/model"
)

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "normalized.csv")
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	records := []model.NormalizedRecord{
		{
			SourceFile: "jan.csv", CompanyName: "Goil", CompanyType: "OMC",
			Product: "Gasoline", ProductCode: "PMS", Year: 2024, Month: 1,
			VolumeLiters: 1324.5, VolumeKG: 1000, VolumeMT: 1,
			DataQualityScore: 1.0, CreatedAt: created,
		},
	}

	require.NoError(t, WriteCSV(records, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{
		"source_file", "company_name", "company_type", "product", "product_code",
		"year", "month", "volume_liters", "volume_kg", "volume_mt",
		"data_quality_score", "is_outlier", "created_at",
	}, rows[0])
	assert.Equal(t, "Goil", rows[1][1])
	assert.Equal(t, "2024-06-01T12:00:00Z", rows[1][12])

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteCSV_EmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteCSV(nil, path))

	// File exists (a run that rejects everything still produces an
	// artifact), just with no rows.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestSummaryLines(t *testing.T) {
	lines := SummaryLines(model.RunSummary{
		InputRecords:  10,
		OutputRecords: 7,
		Outliers:      1,
		Rejections: map[model.RejectReason]int{
			model.ReasonInvalidEntry:    2,
			model.ReasonUnmappedProduct: 1,
		},
	})

	assert.Contains(t, lines, "input_records=10")
	assert.Contains(t, lines, "rejected=3")
	assert.Contains(t, lines, "INVALID_ENTRY=2")
	assert.Contains(t, lines, "UNMAPPED_PRODUCT=1")
}
