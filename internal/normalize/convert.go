package normalize

import "github.com/petroverse/ingest-cli/internal/model"

const (
	// lpgLitersPerKG is the empirical density-derived liters-per-kilogram
	// approximation for LPG. Downstream consumers depend on this exact
	// historical value; do not re-derive it from a physical density.
	lpgLitersPerKG = 1.96

	// defaultLitersPerMT is the Gasoil factor, used as the fallback when a
	// product has no conversion-factor entry. Falling back (rather than
	// erroring) keeps recoverable rows flowing through the batch.
	defaultLitersPerMT = 1183.43
)

// Volumes holds the three mutually consistent volume representations of
// one record. VolumeMT is always VolumeKG/1000 by construction.
type Volumes struct {
	Liters float64
	KG     float64
	MT     float64
	Unit   model.UnitType
}

// Convert computes the liters/kg/mt representations for a raw quantity.
// LPG-family products are mass-denominated in kilograms; everything else
// is volume-denominated in liters and converted to mass through the
// product's liters-per-metric-ton factor. Zero and negative quantities
// are computed as-is; dropping them is batch filtering policy, not the
// engine's concern.
func Convert(product string, rawQuantity float64, t *Tables) Volumes {
	if isLPG(product) {
		kg := rawQuantity
		return Volumes{
			Liters: kg * lpgLitersPerKG,
			KG:     kg,
			MT:     kg / 1000,
			Unit:   model.UnitKG,
		}
	}

	liters := rawQuantity
	mt := liters / t.litersPerMT(product)
	return Volumes{
		Liters: liters,
		KG:     mt * 1000,
		MT:     mt,
		Unit:   model.UnitLiters,
	}
}

// litersPerMT returns the conversion factor for a product, defaulting to
// the Gasoil factor when the product has no entry.
func (t *Tables) litersPerMT(product string) float64 {
	if p, ok := t.Products[product]; ok && p.LitersPerMT > 0 {
		return p.LitersPerMT
	}
	return defaultLitersPerMT
}
