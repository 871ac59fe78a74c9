package catalog

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"shipping_schedule/internal/patterns"
)

// Record is one parsed line of the alias asset:
//
//	<sourceAName>, [<englishName>|<code>|<region>], <sourceBName>, "<sourceCName>"
type Record struct {
	Line        int    `json:"line"`
	SourceA     string `json:"source_a,omitempty"` // Alphaliner-style name.
	EnglishName string `json:"english_name"`
	Code        string `json:"code"`
	Region      string `json:"region"`
	SourceB     string `json:"source_b,omitempty"`
	SourceC     string `json:"source_c,omitempty"` // Unquoted; may carry a parenthetical local label.
}

// Warning kinds recorded while loading.
const (
	WarnMalformed     = "malformed"
	WarnMissingCode   = "missing_code"
	WarnDuplicateCode = "duplicate_code"
	WarnAliasConflict = "alias_conflict"
	WarnUnknownRegion = "unknown_region"
	WarnSource        = "source"
)

// Warning is a non-fatal problem found while building the catalog.
type Warning struct {
	Line   int    `json:"line,omitempty"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s: %s", w.Line, w.Kind, w.Detail)
	}
	return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
}

// maxLineBytes bounds a single asset line.
const maxLineBytes = 1024 * 1024

// ParseAsset reads the alias asset. Blank lines and '#' comments are ignored;
// malformed lines are skipped with a warning and never abort the read.
func ParseAsset(r io.Reader) ([]Record, []Warning, error) {
	compiler, err := patterns.Shared()
	if err != nil {
		return nil, nil, fmt.Errorf("compile asset grammar: %w", err)
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var records []Record
	var warnings []Warning
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rec, warn := parseLine(compiler, lineNo, line)
		if warn != nil {
			warnings = append(warnings, *warn)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, warnings, fmt.Errorf("read asset: %w", err)
	}
	return records, warnings, nil
}

func parseLine(c *patterns.Compiler, lineNo int, line string) (Record, *Warning) {
	m := c.ParseFormat(patterns.FormatAssetLine, line)
	if m == nil {
		return Record{}, &Warning{Line: lineNo, Kind: WarnMalformed, Detail: "no bracketed identity field"}
	}

	parts := strings.Split(m.Captures["bracket"], "|")
	if len(parts) != 3 {
		return Record{}, &Warning{
			Line:   lineNo,
			Kind:   WarnMalformed,
			Detail: fmt.Sprintf("bracketed field has %d parts, want 3", len(parts)),
		}
	}

	rec := Record{
		Line:        lineNo,
		SourceA:     strings.TrimSpace(m.Captures["source_a"]),
		EnglishName: strings.TrimSpace(parts[0]),
		Code:        strings.TrimSpace(parts[1]),
		Region:      strings.TrimSpace(parts[2]),
		SourceB:     strings.TrimSpace(m.Captures["source_b"]),
		SourceC:     strings.Trim(strings.TrimSpace(m.Captures["source_c"]), `"`),
	}
	if rec.Code == "" {
		return Record{}, &Warning{Line: lineNo, Kind: WarnMissingCode, Detail: "empty code in bracketed field"}
	}
	return rec, nil
}
