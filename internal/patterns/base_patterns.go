// Package patterns provides the grok-style pattern compiler used to read the
// port alias asset, the canonical display form and resolver tokens.
// This file contains the base patterns and the shared formats.

package patterns

import "sync"

// BasePatterns defines reusable regex components for grok-style pattern composition.
// These are referenced in format patterns using {PATTERN_NAME} syntax.
var BasePatterns = map[string]string{
	// One free-form asset field (no brackets, no quotes, no comma).
	"FIELD": `[^,\[\]"]*?`,

	// Content of a bracketed identity, split on '|' by the caller.
	"BRACKET": `[^\[\]]*`,

	// One part of a canonical display triple.
	"PART": `[^|\[\]]*`,

	// Quoted source name, which may itself contain commas and parentheses.
	"QUOTED": `"[^"]*"`,

	// Short single-token codes (UN/LOCODE and carrier abbreviations).
	"CODE": `[A-Za-z0-9]{1,6}`,

	// Compass qualifiers naming a sub-terminal: "PORT KELANG N", "巴生北".
	"DIRECTION":     `EAST|WEST|NORTH|SOUTH|E|W|N|S`,
	"DIRECTION_CJK": `[东西南北]`,
}

// Format names.
const (
	FormatAssetLine = "asset_line"
	FormatDisplay   = "display"
	FormatCodeLike  = "code_like"

	FormatDirectionSuffix    = "direction_suffix"
	FormatDirectionSuffixCJK = "direction_suffix_cjk"
)

// Formats used by the catalog and the resolver.
//
// Asset line example:
//
//	LONG BEACH, [Long Beach|USLGB|美西], 长滩, "LONG BEACH,CA(长滩,加利福尼亚州)"
var Formats = []Format{
	{
		Name: FormatAssetLine,
		Pattern: `^\s*(?:(?P<source_a>[^\[]*?)\s*,\s*)?\[(?P<bracket>{BRACKET})\]` +
			`\s*(?:,\s*(?P<source_b>{FIELD})\s*)?(?:,\s*(?P<source_c>{QUOTED}|[^"]*?)\s*)?$`,
		Fields: []string{"source_a", "bracket", "source_b", "source_c"},
	},
	{
		Name:    FormatDisplay,
		Pattern: `^\[(?P<name>{PART})\|(?P<code>{PART})\|(?P<region>{PART})\]$`,
		Fields:  []string{"name", "code", "region"},
	},
	{
		Name:    FormatCodeLike,
		Pattern: `^(?P<code>{CODE})$`,
		Fields:  []string{"code"},
	},
	{
		// Matched against upper-cased text.
		Name:    FormatDirectionSuffix,
		Pattern: `^(?P<stem>.+?)\s+(?P<dir>{DIRECTION})$`,
		Fields:  []string{"stem", "dir"},
	},
	{
		Name:    FormatDirectionSuffixCJK,
		Pattern: `^(?P<stem>.{2,}?)\s*(?P<dir>{DIRECTION_CJK})$`,
		Fields:  []string{"stem", "dir"},
	},
}

// Shared compiler singleton.
var (
	shared     *Compiler
	sharedOnce sync.Once
	sharedErr  error
)

// Shared returns the compiled compiler for Formats.
func Shared() (*Compiler, error) {
	sharedOnce.Do(func() {
		shared = NewCompiler(Formats, nil)
		sharedErr = shared.Compile()
	})
	return shared, sharedErr
}
