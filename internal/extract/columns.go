// Package extract reads raw supply records out of delimited and XLSX
// extract files.
package extract

import (
	"strconv"
	"strings"

	"github.com/petroverse/ingest-cli/internal/model"
)

// Column aliases seen across extract vintages. Headers are matched after
// lowercasing and trimming; raw data VALUES are never normalized here.
var (
	companyAliases     = []string{"company_name", "company name", "company", "companies", "marketing companies", "bdc", "omc"}
	companyTypeAliases = []string{"company_type", "company type", "type"}
	productAliases     = []string{"product", "products", "product name"}
	yearAliases        = []string{"year"}
	monthAliases       = []string{"month"}
	volumeAliases      = []string{"volume", "quantity", "qty", "volume (litres)", "volume(litres)", "volume (kg)"}
	unitAliases        = []string{"unit", "unit_type", "units", "category"}
)

// columnMap resolves header names to indexes, lowercased and trimmed.
type columnMap map[string]int

func mapColumns(header []string) columnMap {
	m := make(columnMap, len(header))
	for i, col := range header {
		m[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return m
}

// col returns the value of the first matching alias, untrimmed: raw
// product and company spellings must reach the mappers exactly as they
// appear in the file.
func (m columnMap) col(row []string, aliases []string) string {
	for _, a := range aliases {
		if idx, ok := m[a]; ok && idx < len(row) {
			return row[idx]
		}
	}
	return ""
}

// has reports whether any alias resolves to a column.
func (m columnMap) has(aliases []string) bool {
	for _, a := range aliases {
		if _, ok := m[a]; ok {
			return true
		}
	}
	return false
}

// parseIntOr parses an integer cell, returning def on blanks or junk.
func parseIntOr(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}

// parseVolume parses a volume cell, tolerating thousands separators.
func parseVolume(s string) float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "-" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseUnitHint classifies the optional unit/category column.
func parseUnitHint(s string) model.UnitType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LITERS", "LITRES", "LT", "L":
		return model.UnitLiters
	case "KG", "KILOGRAMS", "KILOGRAMMES":
		return model.UnitKG
	default:
		return model.UnitUnknown
	}
}
