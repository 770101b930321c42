package extractor

import (
	"regexp"
	"strings"

	"gel-tracker/internal/features/tracking/domain"
)

var (
	sacoLabel  = regexp.MustCompile(`(?i)\bSACO\b`)
	cbLabel    = regexp.MustCompile(`(?i)\bCB\b`)
	fechaLabel = regexp.MustCompile(`(?i)FECHA\s+DE\s+INGRESO`)

	// bagCodeRE accepts either prefix; cbCodeRE only the CB# form.
	bagCodeRE = regexp.MustCompile(`(?i)\b(CB|SACO)\s*#\s*(\d+)`)
	cbCodeRE  = regexp.MustCompile(`(?i)\b(CB)\s*#\s*(\d+)`)
	dateRE    = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)

	bannerRE = regexp.MustCompile(`sin\s+resultados?\s+en\s+(la\s+)?busqueda`)

	markerREs = []*regexp.Regexp{
		fechaLabel,
		sacoLabel,
		regexp.MustCompile(`(?i)\bCB\s*#`),
	}
)

// codeRule is one step of the bag code precedence chain.
type codeRule struct {
	label   *regexp.Regexp // nil means the whole text
	pattern *regexp.Regexp
}

var codeRules = []codeRule{
	{label: sacoLabel, pattern: bagCodeRE},
	{label: cbLabel, pattern: cbCodeRE},
	{label: nil, pattern: cbCodeRE},
}

var dateRules = []*regexp.Regexp{fechaLabel, nil}

// ExtractFields parses the bag code and received date out of normalized page text.
// Label-local matches always win over matches found elsewhere in the text.
func ExtractFields(text string) domain.ExtractedFields {
	text = Normalize(text)
	return domain.ExtractedFields{
		Code:         extractCode(text),
		ReceivedDate: extractDate(text),
	}
}

func extractCode(text string) *string {
	for _, rule := range codeRules {
		scope, ok := scopeFor(text, rule.label)
		if !ok {
			continue
		}
		m := rule.pattern.FindStringSubmatch(scope)
		if m == nil {
			continue
		}
		code := canonicalCode(m[1], m[2])
		return &code
	}
	return nil
}

func extractDate(text string) *string {
	for _, label := range dateRules {
		scope, ok := scopeFor(text, label)
		if !ok {
			continue
		}
		m := dateRE.FindStringSubmatch(scope)
		if m == nil {
			continue
		}
		date := m[1]
		return &date
	}
	return nil
}

func scopeFor(text string, label *regexp.Regexp) (string, bool) {
	if label == nil {
		return text, true
	}
	return window(text, label, WindowSize)
}

func canonicalCode(prefix, digits string) string {
	return strings.ToUpper(prefix) + "#" + digits
}

// HasNegativeBanner reports whether the "Sin Resultado En Búsqueda" banner is present.
func HasNegativeBanner(text string) bool {
	folded := strings.ToLower(foldAccents(Normalize(text)))
	return bannerRE.MatchString(folded)
}

// HasTerminalMarker reports whether the page shows either a result or the negative banner.
func HasTerminalMarker(text string) bool {
	text = Normalize(text)
	if HasNegativeBanner(text) {
		return true
	}
	for _, re := range markerREs {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
