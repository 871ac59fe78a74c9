package registry

import (
	"testing"

	"shipping_schedule/internal/catalog"
)

type fakeMatcher struct {
	name     string
	priority int
	quick    bool
	code     string
	calls    int
}

func (f *fakeMatcher) Name() string            { return f.name }
func (f *fakeMatcher) Priority() int           { return f.priority }
func (f *fakeMatcher) QuickCheck(string) bool  { return f.quick }
func (f *fakeMatcher) Match(*catalog.Catalog, string) (string, bool) {
	f.calls++
	return f.code, f.code != ""
}

func TestRegistry_SortByPriority(t *testing.T) {
	r := New()
	r.Register(
		&fakeMatcher{name: "late", priority: 50},
		&fakeMatcher{name: "first", priority: 0},
		&fakeMatcher{name: "tie-a", priority: 10},
		&fakeMatcher{name: "tie-b", priority: 10},
	)
	r.Sort()

	want := []string{"first", "tie-a", "tie-b", "late"}
	got := r.AllMatchers()
	if len(got) != len(want) {
		t.Fatalf("AllMatchers() returned %d matchers, want %d", len(got), len(want))
	}
	for i, m := range got {
		if m.Name() != want[i] {
			t.Errorf("matcher[%d] = %q, want %q", i, m.Name(), want[i])
		}
	}
	if r.MatcherCount() != 4 {
		t.Errorf("MatcherCount() = %d, want 4", r.MatcherCount())
	}
}

func TestRegistry_DispatchFirst(t *testing.T) {
	skipped := &fakeMatcher{name: "skipped", priority: 0, quick: false, code: "AAAAA"}
	miss := &fakeMatcher{name: "miss", priority: 1, quick: true}
	hit := &fakeMatcher{name: "hit", priority: 2, quick: true, code: "BBBBB"}
	after := &fakeMatcher{name: "after", priority: 3, quick: true, code: "CCCCC"}

	r := New()
	r.Register(after, hit, miss, skipped)
	r.Sort()

	code, name, ok := r.DispatchFirst(nil, "text")
	if !ok {
		t.Fatal("DispatchFirst() found nothing")
	}
	if code != "BBBBB" || name != "hit" {
		t.Errorf("DispatchFirst() = (%q, %q), want (%q, %q)", code, name, "BBBBB", "hit")
	}
	if skipped.calls != 0 {
		t.Errorf("matcher failing QuickCheck was called %d times", skipped.calls)
	}
	if after.calls != 0 {
		t.Errorf("matcher after the hit was called %d times", after.calls)
	}
}

func TestRegistry_DispatchFirstNoMatch(t *testing.T) {
	r := New()
	r.Register(&fakeMatcher{name: "miss", quick: true})
	r.Sort()

	if code, name, ok := r.DispatchFirst(nil, "text"); ok {
		t.Errorf("DispatchFirst() = (%q, %q, true), want no match", code, name)
	}
}

func TestRegistry_Trace(t *testing.T) {
	r := New()
	r.Register(
		&fakeMatcher{name: "skipped", priority: 0, quick: false, code: "AAAAA"},
		&fakeMatcher{name: "hit", priority: 1, quick: true, code: "BBBBB"},
		&fakeMatcher{name: "also", priority: 2, quick: true, code: "CCCCC"},
	)
	r.Sort()

	trace := r.Trace(nil, "text")
	if len(trace) != 3 {
		t.Fatalf("Trace() returned %d results, want 3", len(trace))
	}
	if trace[0].QuickCheck || trace[0].Matched {
		t.Errorf("trace[0] = %+v, want quick check failure", trace[0])
	}
	if !trace[2].Matched || trace[2].Code != "CCCCC" {
		t.Errorf("trace[2] = %+v, want later matchers traced too", trace[2])
	}

	first, ok := FirstMatch(trace)
	if !ok || first.MatcherName != "hit" || first.Code != "BBBBB" {
		t.Errorf("FirstMatch() = %+v, %v, want hit/BBBBB", first, ok)
	}

	if _, ok := FirstMatch(nil); ok {
		t.Error("FirstMatch(nil) reported a match")
	}
}
