package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestZIP builds a zip archive with the given name -> content entries.
func writeTestZIP(t *testing.T, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "archive.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return path
}

func TestExtractZIP(t *testing.T) {
	zipPath := writeTestZIP(t, map[string]string{
		"extract.csv":  "company,product\n",
		"notes/README": "cover sheet",
	})

	destDir := t.TempDir()
	paths, err := ExtractZIP(zipPath, destDir)
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	data, err := os.ReadFile(filepath.Join(destDir, "extract.csv"))
	require.NoError(t, err)
	assert.Equal(t, "company,product\n", string(data))
}

func TestExtractTabular_FiltersNonData(t *testing.T) {
	zipPath := writeTestZIP(t, map[string]string{
		"2024-01.csv":     "company,product\n",
		"summary.pdf":     "%PDF-1.4",
		"workbook.xlsx":   "not really xlsx but filtered by name",
		"cover_sheet.doc": "cover",
	})

	destDir := t.TempDir()
	paths, err := ExtractTabular(zipPath, destDir)
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	for _, p := range paths {
		ext := filepath.Ext(p)
		assert.Contains(t, []string{".csv", ".xlsx"}, ext)
	}
}

func TestExtractTabular_NoDataEntries(t *testing.T) {
	zipPath := writeTestZIP(t, map[string]string{
		"summary.pdf": "%PDF-1.4",
	})

	_, err := ExtractTabular(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no csv or xlsx")
}

func TestExtractZIP_RejectsZipSlip(t *testing.T) {
	zipPath := writeTestZIP(t, map[string]string{
		"../escape.csv": "data",
	})

	// Rejected either by zip.OpenReader (ErrInsecurePath) or by the
	// extraction path guard, depending on GODEBUG settings.
	_, err := ExtractZIP(zipPath, t.TempDir())
	require.Error(t, err)
}

func TestExtractZIP_MissingArchive(t *testing.T) {
	_, err := ExtractZIP(filepath.Join(t.TempDir(), "nope.zip"), t.TempDir())
	require.Error(t, err)
}
