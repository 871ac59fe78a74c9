package matchers

import (
	"strings"
	"unicode/utf8"

	"shipping_schedule/internal/catalog"
	"shipping_schedule/internal/patterns"
)

// compass is one direction and all the spellings sources use for it.
type compass struct {
	english []string // Long form first.
	cjk     string
}

var compassPoints = []compass{
	{english: []string{"EAST", "E"}, cjk: "东"},
	{english: []string{"WEST", "W"}, cjk: "西"},
	{english: []string{"NORTH", "N"}, cjk: "北"},
	{english: []string{"SOUTH", "S"}, cjk: "南"},
}

// compassOf maps every spelling to its position in compassPoints.
var compassOf = func() map[string]int {
	m := make(map[string]int)
	for i, cp := range compassPoints {
		for _, e := range cp.english {
			m[e] = i
		}
		m[cp.cjk] = i
	}
	return m
}()

// minStem is the shortest stem left after stripping a qualifier.
const minStem = 2

// Direction handles sub-terminals named with a trailing compass qualifier.
// For "PORT KELANG N" it tries, in order: the other spellings of the same
// direction ("PORT KELANG NORTH"), the qualifier moved in front of the stem
// ("NORTH PORT KELANG"), the bare stem through the exact/paren/comma/dot
// steps, and finally the stem with every other qualifier appended.
type Direction struct{}

func (m *Direction) Name() string  { return NameDirection }
func (m *Direction) Priority() int { return 50 }

func (m *Direction) QuickCheck(text string) bool {
	_, _, ok := splitDirection(text)
	return ok
}

func (m *Direction) Match(c *catalog.Catalog, text string) (string, bool) {
	stem, dir, ok := splitDirection(text)
	if !ok {
		return "", false
	}

	if code, ok := lookupAny(c, suffixForms(stem, dir)...); ok {
		return code, true
	}
	if code, ok := lookupAny(c, prefixForms(stem, dir)...); ok {
		return code, true
	}
	if code, ok := decomposed(c, stem); ok {
		return code, true
	}
	for other := range compassPoints {
		if other == dir {
			continue
		}
		if code, ok := lookupAny(c, suffixForms(stem, other)...); ok {
			return code, true
		}
	}
	return "", false
}

// splitDirection separates a trailing compass qualifier from its stem.
func splitDirection(text string) (stem string, dir int, ok bool) {
	comp, err := patterns.Shared()
	if err != nil {
		return "", 0, false
	}
	key := catalog.NormaliseKey(text)

	match := comp.ParseFormat(patterns.FormatDirectionSuffix, strings.ToUpper(key))
	if match == nil {
		match = comp.ParseFormat(patterns.FormatDirectionSuffixCJK, key)
	}
	if match == nil {
		return "", 0, false
	}

	stem = strings.TrimSpace(match.Captures["stem"])
	if utf8.RuneCountInString(stem) < minStem {
		return "", 0, false
	}
	dir, ok = compassOf[match.Captures["dir"]]
	return stem, dir, ok
}

func suffixForms(stem string, dir int) []string {
	cp := compassPoints[dir]
	out := make([]string, 0, len(cp.english)+1)
	for _, e := range cp.english {
		out = append(out, stem+" "+e)
	}
	return append(out, stem+cp.cjk)
}

func prefixForms(stem string, dir int) []string {
	cp := compassPoints[dir]
	out := make([]string, 0, len(cp.english)+1)
	for _, e := range cp.english {
		out = append(out, e+" "+stem)
	}
	return append(out, cp.cjk+stem)
}
