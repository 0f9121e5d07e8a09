// Package normalize implements the product/company standardization and
// unit-conversion pipeline for petroleum supply extracts.
package normalize

import (
	_ "embed"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var builtinTables []byte

// Product describes one member of the canonical product vocabulary.
type Product struct {
	Name        string  `yaml:"name"`
	Code        string  `yaml:"code"`
	Category    string  `yaml:"category"`
	LitersPerMT float64 `yaml:"liters_per_mt"` // zero for mass-denominated (LPG) products
}

// Tables holds the static lookup tables the pipeline runs on. A Tables
// value is immutable after Load; per-run overrides are modeled by loading
// a different file, never by mutating a live table.
type Tables struct {
	Products         map[string]Product // canonical name -> product
	ProductMap       map[string]string  // exact raw spelling -> canonical name
	InvalidProducts  map[string]bool    // raw spellings that are always rejected
	CompanyOverrides map[string]string  // cleaned uppercase name -> canonical name
}

// tablesFile is the on-disk YAML shape.
type tablesFile struct {
	Products         []Product         `yaml:"products"`
	ProductMap       map[string]string `yaml:"product_map"`
	InvalidProducts  []string          `yaml:"invalid_products"`
	CompanyOverrides map[string]string `yaml:"company_overrides"`
}

// LoadBuiltinTables parses the embedded mapping tables.
func LoadBuiltinTables() (*Tables, error) {
	return parseTables(builtinTables)
}

// LoadTablesFile parses mapping tables from an external YAML file,
// replacing the built-ins for the run.
func LoadTablesFile(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "tables: read %s", path)
	}
	return parseTables(data)
}

func parseTables(data []byte) (*Tables, error) {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "tables: unmarshal yaml")
	}

	t := &Tables{
		Products:         make(map[string]Product, len(f.Products)),
		ProductMap:       f.ProductMap,
		InvalidProducts:  make(map[string]bool, len(f.InvalidProducts)),
		CompanyOverrides: f.CompanyOverrides,
	}
	if t.ProductMap == nil {
		t.ProductMap = map[string]string{}
	}
	if t.CompanyOverrides == nil {
		t.CompanyOverrides = map[string]string{}
	}

	for _, p := range f.Products {
		if p.Name == "" {
			return nil, eris.New("tables: product with empty name")
		}
		if p.LitersPerMT < 0 {
			return nil, eris.Errorf("tables: product %s: negative liters_per_mt", p.Name)
		}
		if !isLPG(p.Name) && p.LitersPerMT == 0 {
			return nil, eris.Errorf("tables: product %s: missing liters_per_mt", p.Name)
		}
		t.Products[p.Name] = p
	}

	for raw, canonical := range t.ProductMap {
		if canonical == "" {
			return nil, eris.Errorf("tables: product_map entry %q maps to empty name", raw)
		}
	}

	for _, raw := range f.InvalidProducts {
		t.InvalidProducts[raw] = true
	}

	return t, nil
}
