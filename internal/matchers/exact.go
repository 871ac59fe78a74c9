package matchers

import (
	"strings"

	"shipping_schedule/internal/catalog"
)

// Exact looks the text up in the alias index as written, upper- and
// lower-cased.
type Exact struct{}

func (m *Exact) Name() string  { return NameExact }
func (m *Exact) Priority() int { return 10 }

func (m *Exact) QuickCheck(text string) bool {
	return strings.TrimSpace(text) != ""
}

func (m *Exact) Match(c *catalog.Catalog, text string) (string, bool) {
	return c.Lookup(text)
}
