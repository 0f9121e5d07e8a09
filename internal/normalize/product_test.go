package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petroverse/ingest-cli/internal/model"
)

func TestMapProduct_ExactSpellings(t *testing.T) {
	tables := testTables(t)

	cases := map[string]string{
		"Gasoil (Mines)":  "Gasoil (Mines)",
		"Gasoil (Mines) ": "Gasoil (Mines)", // trailing space is its own table entry
		"Gasoil(Mines)":   "Gasoil (Mines)",
		"Gasoil Mines":    "Gasoil (Mines)",
		"PREMIUM":         "Gasoline",
		"Jet A1":          "Aviation Turbine Kerosene",
		"MGO (Local)":     "Marine Gasoil (Local)",
	}
	for raw, want := range cases {
		p, rej := tables.MapProduct(raw)
		require.Nil(t, rej, raw)
		assert.Equal(t, want, p.Name, raw)
	}
}

func TestMapProduct_NoFuzzyMatching(t *testing.T) {
	tables := testTables(t)

	// Unlisted spellings are rejected even when a human would recognize
	// them; the table is the only authority.
	for _, raw := range []string{"gasoil (mines)", " Gasoil", "Gasoline!!", "Petrol"} {
		_, rej := tables.MapProduct(raw)
		require.NotNil(t, rej, raw)
		assert.Equal(t, model.ReasonUnmappedProduct, rej.Reason, raw)
	}
}

func TestMapProduct_InvalidEntries(t *testing.T) {
	tables := testTables(t)

	for _, raw := range []string{"NO.", "Unnamed: 16"} {
		_, rej := tables.MapProduct(raw)
		require.NotNil(t, rej, raw)
		assert.Equal(t, model.ReasonInvalidEntry, rej.Reason, raw)
	}
}

func TestMapProduct_CarriesCode(t *testing.T) {
	tables := testTables(t)

	p, rej := tables.MapProduct("GASOIL")
	require.Nil(t, rej)
	assert.Equal(t, "AGO", p.Code)
	assert.Equal(t, 1183.43, p.LitersPerMT)
}
