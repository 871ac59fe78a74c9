// Package matchers holds the alias-resolution strategies, one per step of the
// cascade. Every matcher is a pure function of the catalog and the text.
package matchers

import (
	"shipping_schedule/internal/catalog"
	"shipping_schedule/internal/registry"
)

// Matcher names, also used as metric labels.
const (
	NameDisplay   = "display"
	NameExact     = "exact"
	NameParen     = "paren"
	NameComma     = "comma"
	NameDot       = "dot"
	NameDirection = "direction"
	NameSubstring = "substring"
)

// All returns the full cascade in dispatch order.
func All() []registry.Matcher {
	return []registry.Matcher{
		&Display{},
		&Exact{},
		&Paren{},
		&Comma{},
		&Dot{},
		&Direction{},
		&Substring{},
	}
}

// NewRegistry returns a sorted registry loaded with the full cascade.
func NewRegistry() *registry.Registry {
	r := registry.New()
	r.Register(All()...)
	r.Sort()
	return r
}

// decomposed runs the exact, parenthetical, comma and dot steps on text.
// The direction matcher reuses it on the stripped stem.
func decomposed(c *catalog.Catalog, text string) (string, bool) {
	steps := []registry.Matcher{&Exact{}, &Paren{}, &Comma{}, &Dot{}}
	for _, m := range steps {
		if !m.QuickCheck(text) {
			continue
		}
		if code, ok := m.Match(c, text); ok {
			return code, true
		}
	}
	return "", false
}

// lookupAny returns the code of the first candidate found in the alias index.
func lookupAny(c *catalog.Catalog, candidates ...string) (string, bool) {
	for _, cand := range candidates {
		if cand == "" {
			continue
		}
		if code, ok := c.Lookup(cand); ok {
			return code, true
		}
	}
	return "", false
}
