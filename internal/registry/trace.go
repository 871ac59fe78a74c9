// Package registry provides tracing types for matcher debugging.
package registry

// TraceResult records one matcher's attempt on an input.
type TraceResult struct {
	MatcherName string `json:"matcher"`
	Priority    int    `json:"priority"`
	QuickCheck  bool   `json:"quick_check"` // Whether the quick check passed.
	Matched     bool   `json:"matched"`
	Code        string `json:"code,omitempty"`
}

// FirstMatch returns the winning attempt of a trace, if any.
func FirstMatch(trace []TraceResult) (TraceResult, bool) {
	for _, tr := range trace {
		if tr.Matched {
			return tr, true
		}
	}
	return TraceResult{}, false
}
