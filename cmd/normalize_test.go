//go:build !integration

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petroverse/ingest-cli/internal/config"
	"github.com/petroverse/ingest-cli/internal/model"
)

func setTestConfig(t *testing.T) {
	t.Helper()
	old := cfg
	cfg = &config.Config{}
	t.Cleanup(func() { cfg = old })
}

func writeExtract(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNormalizeFiles_SingleFile(t *testing.T) {
	setTestConfig(t)

	path := writeExtract(t, "extract.csv",
		"Company,Product,Year,Month,Volume\n"+
			"GOIL,Gasoline,2026,2,1324.50\n"+
			"TOTAL GHANA,Gasoil,2026,2,2000\n"+
			"Mystery Co,Rocket Fuel,2026,2,500\n")

	records, rejections, summary, err := normalizeFiles([]string{path})
	require.NoError(t, err)

	assert.Len(t, records, 2)
	assert.Len(t, rejections, 1)
	assert.Equal(t, model.ReasonUnmappedProduct, rejections[0].Reason)
	assert.Equal(t, 3, summary.InputRecords)
	assert.Equal(t, 2, summary.OutputRecords)
}

func TestNormalizeFiles_MergesOneBatch(t *testing.T) {
	setTestConfig(t)

	a := writeExtract(t, "a.csv",
		"Company,Product,Year,Month,Volume\n"+
			"GOIL,Gasoline,2026,1,1000\n")
	b := writeExtract(t, "b.csv",
		"Company,Product,Year,Month,Volume\n"+
			"GOIL,Gasoline,2026,2,2000\n")

	records, _, summary, err := normalizeFiles([]string{a, b})
	require.NoError(t, err)

	// Both files land in one batch with one shared summary.
	assert.Len(t, records, 2)
	assert.Equal(t, 2, summary.InputRecords)

	files := map[string]bool{}
	for _, r := range records {
		files[r.SourceFile] = true
	}
	assert.True(t, files["a.csv"])
	assert.True(t, files["b.csv"])
}

func TestNormalizeFiles_MissingFile(t *testing.T) {
	setTestConfig(t)

	_, _, _, err := normalizeFiles([]string{filepath.Join(t.TempDir(), "nope.csv")})
	require.Error(t, err)
}

func TestNormalizeFiles_TablesOverride(t *testing.T) {
	setTestConfig(t)

	tables := writeExtract(t, "tables.yaml", `
products:
  - name: Gasoline
    code: PMS
    category: Refined Fuels
    liters_per_mt: 1324.50
product_map:
  PETROL: Gasoline
invalid_products: []
company_overrides: {}
`)
	normalizeTables = tables
	t.Cleanup(func() { normalizeTables = "" })

	path := writeExtract(t, "extract.csv",
		"Company,Product,Year,Month,Volume\n"+
			"Acme Fuels,PETROL,2026,2,1000\n")

	records, _, _, err := normalizeFiles([]string{path})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Gasoline", records[0].Product)
}

func TestFileNameFromURL(t *testing.T) {
	assert.Equal(t, "2026-02.zip", fileNameFromURL("https://example.org/extracts/2026-02.zip"))
	assert.Equal(t, "data.csv", fileNameFromURL("ftp://mirror.example.org/pub/data.csv"))

	// No usable path falls back to a generated name.
	name := fileNameFromURL("https://example.org/")
	assert.NotEmpty(t, name)
	assert.Contains(t, name, "extract_")
}
