package matchers

import (
	"strings"
	"unicode/utf8"

	"shipping_schedule/internal/catalog"
	"shipping_schedule/internal/patterns"
)

// minSubstring is the shortest probe or alias the substring fallback will
// compare, so two-letter fragments cannot claim a port.
const minSubstring = 3

// Substring is the last resort: an English-name alias contained in the text,
// or the text contained in an alias. The longest alias wins; equal lengths
// keep the first alias in registry order. Code-like inputs are skipped so an
// unknown code is never mapped onto a port name that happens to contain it.
type Substring struct{}

func (m *Substring) Name() string  { return NameSubstring }
func (m *Substring) Priority() int { return 60 }

func (m *Substring) QuickCheck(text string) bool {
	probe := substringProbe(text)
	if utf8.RuneCountInString(probe) < minSubstring {
		return false
	}
	return !isCodeLike(probe)
}

func (m *Substring) Match(c *catalog.Catalog, text string) (string, bool) {
	probe := substringProbe(text)
	if probe == "" {
		return "", false
	}

	best, bestLen := "", 0
	for _, a := range c.EnglishAliases() {
		n := utf8.RuneCountInString(a.Key)
		if n < minSubstring || n <= bestLen {
			continue
		}
		if strings.Contains(probe, a.Key) || strings.Contains(a.Key, probe) {
			best, bestLen = a.Code, n
		}
	}
	return best, best != ""
}

func substringProbe(text string) string {
	return strings.ToUpper(catalog.NormaliseKey(text))
}

// isCodeLike reports whether text is a single short alphanumeric token.
func isCodeLike(text string) bool {
	comp, err := patterns.Shared()
	if err != nil {
		return false
	}
	return comp.ParseFormat(patterns.FormatCodeLike, text) != nil
}
