package matchers

import (
	"strings"

	"shipping_schedule/internal/catalog"
)

// Dot tries the upper-cased text before the first dot, as in "VANCOUVER.BC".
type Dot struct{}

func (m *Dot) Name() string  { return NameDot }
func (m *Dot) Priority() int { return 40 }

func (m *Dot) QuickCheck(text string) bool {
	return strings.ContainsAny(text, ".．")
}

func (m *Dot) Match(c *catalog.Catalog, text string) (string, bool) {
	head, ok := catalog.DotPrefix(catalog.NormaliseKey(text))
	if !ok {
		return "", false
	}
	return lookupAny(c, strings.ToUpper(head))
}
