package catalog

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// minDotPrefix is the shortest pre-dot prefix registered as an alias, so
// abbreviations like "ST.PETERSBURG" do not claim "ST".
const minDotPrefix = 3

// NormaliseKey is the single normal form for alias keys: full-width forms are
// folded to ASCII, whitespace runs collapse to one space and spaces next to
// ',', '(', ')' and '.' are dropped.
func NormaliseKey(s string) string {
	s = width.Fold.String(s)
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return s
	}
	for _, p := range []string{",", "(", ")", "."} {
		s = strings.ReplaceAll(s, " "+p, p)
		s = strings.ReplaceAll(s, p+" ", p)
	}
	return s
}

// SplitParen splits "NAME(QUALIFIER)" into the text before the first '(' and
// the parenthetical content. A missing closing ')' is tolerated.
func SplitParen(s string) (before, inside string, ok bool) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return "", "", false
	}
	before = strings.TrimSpace(s[:open])
	rest := s[open+1:]
	if end := strings.LastIndexByte(rest, ')'); end >= 0 {
		rest = rest[:end]
	}
	return before, strings.TrimSpace(rest), true
}

// FirstComma returns the text before the first comma, trimmed.
func FirstComma(s string) (string, bool) {
	head, _, found := strings.Cut(s, ",")
	return strings.TrimSpace(head), found
}

// DotPrefix returns the text before the first dot, trimmed.
func DotPrefix(s string) (string, bool) {
	head, _, found := strings.Cut(s, ".")
	return strings.TrimSpace(head), found
}

// deriveAliases expands one source field into every alias it contributes:
// the field itself, the parts around a parenthetical, leading comma
// segments and a pre-dot prefix.
func deriveAliases(field string) []string {
	v := NormaliseKey(strings.Trim(strings.TrimSpace(field), `"`))
	if v == "" {
		return nil
	}

	out := []string{v}
	if before, inside, ok := SplitParen(v); ok {
		out = append(out, before, inside)
		if head, ok := FirstComma(before); ok {
			out = append(out, head)
		}
		if head, ok := FirstComma(inside); ok {
			out = append(out, head)
		}
	}
	if head, ok := FirstComma(v); ok {
		out = append(out, head)
	}
	if head, ok := DotPrefix(v); ok && utf8.RuneCountInString(head) >= minDotPrefix {
		out = append(out, head)
	}

	seen := make(map[string]struct{}, len(out))
	result := out[:0]
	for _, a := range out {
		if a == "" {
			continue
		}
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		result = append(result, a)
	}
	return result
}
