package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBuiltinTables(t *testing.T) {
	tables, err := LoadBuiltinTables()
	require.NoError(t, err)

	assert.NotEmpty(t, tables.Products)
	assert.NotEmpty(t, tables.ProductMap)
	assert.True(t, tables.InvalidProducts["NO."])
	assert.True(t, tables.InvalidProducts["Unnamed: 16"])

	// Every canonical product named by the mapping table exists in the
	// vocabulary, and every non-LPG product carries a positive factor.
	for raw, canonical := range tables.ProductMap {
		p, ok := tables.Products[canonical]
		require.True(t, ok, "product_map[%q] -> %q not in vocabulary", raw, canonical)
		if !isLPG(p.Name) {
			assert.Greater(t, p.LitersPerMT, 0.0, p.Name)
		}
	}
}

func TestLoadTablesFile_Override(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	yaml := `
products:
  - name: Gasoline
    code: PMS
    liters_per_mt: 1300
product_map:
  "PMS": Gasoline
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	tables, err := LoadTablesFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1300.0, tables.Products["Gasoline"].LitersPerMT)

	_, rej := tables.MapProduct("Gasoline")
	assert.NotNil(t, rej, "override tables replace the built-ins entirely")
}

func TestLoadTablesFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"missing_factor": `
products:
  - name: Gasoline
    code: PMS
`,
		"negative_factor": `
products:
  - name: Gasoil
    code: AGO
    liters_per_mt: -5
`,
		"empty_name": `
products:
  - code: AGO
    liters_per_mt: 1183.43
`,
		"empty_mapping": `
product_map:
  "Gasoil": ""
`,
	}

	for name, content := range cases {
		path := filepath.Join(dir, name+".yaml")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		_, err := LoadTablesFile(path)
		assert.Error(t, err, name)
	}

	_, err := LoadTablesFile(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}
