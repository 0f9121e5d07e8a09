package normalize

import (
	"strings"

	"github.com/petroverse/ingest-cli/internal/model"
)

// MapProduct resolves a raw product label against the static mapping table.
// Lookup is by exact string: every distinct raw spelling observed upstream
// has its own table entry, and anything else is rejected rather than
// guessed at. The two malformed-column remnants are rejected ahead of the
// mapping so they can never reach the output even if someone adds them to
// the table.
func (t *Tables) MapProduct(raw string) (Product, *model.Rejection) {
	if t.InvalidProducts[raw] {
		return Product{}, &model.Rejection{Reason: model.ReasonInvalidEntry, RawProduct: raw}
	}

	canonical, ok := t.ProductMap[raw]
	if !ok {
		return Product{}, &model.Rejection{Reason: model.ReasonUnmappedProduct, RawProduct: raw}
	}

	p, ok := t.Products[canonical]
	if !ok {
		// Mapped to a name outside the vocabulary: keep the name, the
		// conversion engine falls back to the Gasoil factor.
		p = Product{Name: canonical}
	}
	return p, nil
}

// isLPG reports whether a canonical product is mass-denominated.
func isLPG(product string) bool {
	return strings.Contains(product, "LPG")
}
