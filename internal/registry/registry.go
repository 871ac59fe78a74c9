// Package registry provides a priority-ordered registry of alias matchers
// that the resolver dispatches free text through.
package registry

import (
	"sort"
	"sync"

	"shipping_schedule/internal/catalog"
)

// Matcher is one strategy of the alias-resolution cascade.
type Matcher interface {
	// Name returns the matcher's unique identifier.
	Name() string

	// Priority determines the order of the cascade.
	// Lower number = tried first.
	Priority() int

	// QuickCheck performs a fast string check before the lookup.
	// Returns true if the text MIGHT match (false = definitely skip).
	QuickCheck(text string) bool

	// Match maps text to a canonical code. It must not modify the catalog.
	Match(c *catalog.Catalog, text string) (code string, ok bool)
}

// Registry holds matchers sorted for dispatch.
type Registry struct {
	mu sync.RWMutex

	matchers []Matcher

	// sorted tracks whether matchers have been sorted
	sorted bool
}

// New creates a new Registry instance.
func New() *Registry {
	return &Registry{}
}

// Register adds matchers to the registry.
func (r *Registry) Register(ms ...Matcher) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.matchers = append(r.matchers, ms...)
	r.sorted = false
}

// Sort orders matchers by priority. Equal priorities keep registration order.
func (r *Registry) Sort() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sorted {
		return
	}
	sort.SliceStable(r.matchers, func(i, j int) bool {
		return r.matchers[i].Priority() < r.matchers[j].Priority()
	})
	r.sorted = true
}

// DispatchFirst runs the cascade and returns the first code found together
// with the name of the matcher that found it.
// Note: Sort() should be called before DispatchFirst().
func (r *Registry) DispatchFirst(c *catalog.Catalog, text string) (code, matcher string, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.matchers {
		if !m.QuickCheck(text) {
			continue
		}
		if code, ok := m.Match(c, text); ok {
			return code, m.Name(), true
		}
	}
	return "", "", false
}

// Trace runs every matcher against the text and records each attempt,
// including the ones after the first hit.
func (r *Registry) Trace(c *catalog.Catalog, text string) []TraceResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make([]TraceResult, 0, len(r.matchers))
	for _, m := range r.matchers {
		tr := TraceResult{MatcherName: m.Name(), Priority: m.Priority()}
		tr.QuickCheck = m.QuickCheck(text)
		if tr.QuickCheck {
			tr.Code, tr.Matched = m.Match(c, text)
		}
		results = append(results, tr)
	}
	return results
}

// MatcherCount returns the number of registered matchers.
func (r *Registry) MatcherCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matchers)
}

// AllMatchers returns registered matchers in dispatch order.
func (r *Registry) AllMatchers() []Matcher {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Matcher, len(r.matchers))
	copy(out, r.matchers)
	return out
}
