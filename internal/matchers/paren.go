package matchers

import (
	"strings"

	"shipping_schedule/internal/catalog"
)

// Paren splits "NAME(QUALIFIER)" and tries the part before the bracket, then
// the bracketed text, each whole and cut at its first comma.
// e.g. "LOS ANGELES,CA(洛杉矶,加利福尼亚州)" tries "LOS ANGELES,CA",
// "LOS ANGELES", "洛杉矶,加利福尼亚州", "洛杉矶".
type Paren struct{}

func (m *Paren) Name() string  { return NameParen }
func (m *Paren) Priority() int { return 20 }

func (m *Paren) QuickCheck(text string) bool {
	return strings.ContainsAny(text, "(（")
}

func (m *Paren) Match(c *catalog.Catalog, text string) (string, bool) {
	before, inside, ok := catalog.SplitParen(catalog.NormaliseKey(text))
	if !ok {
		return "", false
	}
	beforeHead, _ := catalog.FirstComma(before)
	insideHead, _ := catalog.FirstComma(inside)
	return lookupAny(c, before, beforeHead, inside, insideHead)
}
