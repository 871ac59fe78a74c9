package matchers

import (
	"strings"

	"shipping_schedule/internal/catalog"
)

// Comma tries the leading segment of "NAME, QUALIFIER".
type Comma struct{}

func (m *Comma) Name() string  { return NameComma }
func (m *Comma) Priority() int { return 30 }

func (m *Comma) QuickCheck(text string) bool {
	return strings.ContainsAny(text, ",，")
}

func (m *Comma) Match(c *catalog.Catalog, text string) (string, bool) {
	head, ok := catalog.FirstComma(catalog.NormaliseKey(text))
	if !ok {
		return "", false
	}
	return lookupAny(c, head, strings.ToUpper(head))
}
