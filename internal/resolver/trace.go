package resolver

import (
	"strings"

	"shipping_schedule/internal/registry"
)

// Trace explains how one input was resolved.
type Trace struct {
	Input    string                 `json:"input"`
	Resolved bool                   `json:"resolved"`
	Code     string                 `json:"code,omitempty"`
	Display  string                 `json:"display"`
	Matcher  string                 `json:"matcher,omitempty"`
	Attempts []registry.TraceResult `json:"attempts"`
}

// Trace runs every matcher on text and reports each attempt. The outcome is
// the same as Resolve and Standardize; observers are not notified.
func (r *Resolver) Trace(text string) Trace {
	t := Trace{Input: text, Display: text}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return t
	}

	c := r.Catalog()
	t.Attempts = r.reg.Trace(c, trimmed)
	if first, ok := registry.FirstMatch(t.Attempts); ok {
		t.Resolved = true
		t.Code = first.Code
		t.Matcher = first.MatcherName
		if display, ok := c.DisplayOf(first.Code); ok {
			t.Display = display
		}
	}
	return t
}
