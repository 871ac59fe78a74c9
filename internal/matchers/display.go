package matchers

import (
	"strings"

	"shipping_schedule/internal/catalog"
)

// Display accepts text already in "[name|code|region]" form whose code is
// known. An unknown embedded code falls through to the other matchers.
type Display struct{}

func (m *Display) Name() string  { return NameDisplay }
func (m *Display) Priority() int { return 0 }

func (m *Display) QuickCheck(text string) bool {
	return strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") && strings.Count(text, "|") == 2
}

func (m *Display) Match(c *catalog.Catalog, text string) (string, bool) {
	parts, ok := catalog.ParseDisplay(text)
	if !ok {
		return "", false
	}
	id, ok := c.Identity(parts.Code)
	if !ok {
		return "", false
	}
	return id.Code, true
}
