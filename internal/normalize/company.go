package normalize

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/petroverse/ingest-cli/internal/model"
)

// companyDenylist holds placeholder tokens that show up where a company
// name should be: sheet totals, repeated headers, pandas artifacts.
var companyDenylist = map[string]bool{
	"COMPANY": true,
	"TOTAL":   true,
	"GRAND":   true,
	"SUM":     true,
	"NO":      true,
	"NAN":     true,
	"UNNAMED": true,
}

// companySuffixes are trailing legal/descriptive tokens stripped by the
// grouping heuristic. At most one is removed.
var companySuffixes = map[string]bool{
	"LIMITED":   true,
	"LTD":       true,
	"LTD.":      true,
	"COMPANY":   true,
	"CO":        true,
	"CO.":       true,
	"GHANA":     true,
	"GH":        true,
	"GH.":       true,
	"SERVICES":  true,
	"SERVICE":   true,
	"PETROLEUM": true,
	"OIL":       true,
	"ENERGY":    true,
	"GROUP":     true,
}

var titleCaser = cases.Title(language.English)

// MapCompany standardizes a raw company name. The override table wins;
// otherwise a grouping heuristic strips one trailing suffix token and
// title-cases the rest. The heuristic is best-effort: two distinct
// companies sharing a root word will collapse into one group, which is
// the historical behavior downstream consumers expect.
func (t *Tables) MapCompany(raw string) (string, *model.Rejection) {
	cleaned := cleanCompanyName(raw)

	if cleaned == "" || len(cleaned) < 2 {
		return "", &model.Rejection{Reason: model.ReasonInvalidCompany, RawCompany: raw}
	}

	upper := strings.ToUpper(cleaned)
	if companyDenylist[upper] {
		return "", &model.Rejection{Reason: model.ReasonInvalidCompany, RawCompany: raw}
	}

	if canonical, ok := t.CompanyOverrides[upper]; ok {
		return canonical, nil
	}

	return groupCompanyName(upper), nil
}

// cleanCompanyName strips leading '*' markers and surrounding whitespace.
func cleanCompanyName(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "*")
	return strings.TrimSpace(s)
}

// groupCompanyName applies the fallback grouping heuristic: drop one
// trailing suffix token (never the whole name) and title-case the result.
func groupCompanyName(upper string) string {
	tokens := strings.Fields(upper)
	if len(tokens) > 1 && companySuffixes[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	return titleCaser.String(strings.ToLower(strings.Join(tokens, " ")))
}
