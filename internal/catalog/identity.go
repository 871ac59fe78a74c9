package catalog

import (
	"math"
	"strings"

	"shipping_schedule/internal/patterns"
)

// UnknownIndex sorts after every real SortIndex.
const UnknownIndex = math.MaxInt32

// PortIdentity is the canonical representation of one physical port.
type PortIdentity struct {
	Code        string `json:"code"`
	EnglishName string `json:"english_name"`
	Region      string `json:"region"`
	SortIndex   int    `json:"sort_index"`
	LocalName   string `json:"local_name,omitempty"` // Second data-source name, usually Chinese.
}

// Display renders the identity as "[EnglishName|Code|Region]".
func (p PortIdentity) Display() string {
	return FormatDisplay(p.EnglishName, p.Code, p.Region)
}

// FormatDisplay builds a canonical display string.
func FormatDisplay(name, code, region string) string {
	var b strings.Builder
	b.Grow(len(name) + len(code) + len(region) + 4)
	b.WriteByte('[')
	b.WriteString(name)
	b.WriteByte('|')
	b.WriteString(code)
	b.WriteByte('|')
	b.WriteString(region)
	b.WriteByte(']')
	return b.String()
}

// DisplayParts is a parsed canonical display string.
type DisplayParts struct {
	Name   string
	Code   string
	Region string
}

// ParseDisplay reports whether text is in "[name|code|region]" form and
// returns its parts. It says nothing about whether the code is known.
func ParseDisplay(text string) (DisplayParts, bool) {
	if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
		return DisplayParts{}, false
	}
	c, err := patterns.Shared()
	if err != nil {
		return DisplayParts{}, false
	}
	m := c.ParseFormat(patterns.FormatDisplay, text)
	if m == nil {
		return DisplayParts{}, false
	}
	parts := DisplayParts{
		Name:   strings.TrimSpace(m.Captures["name"]),
		Code:   strings.TrimSpace(m.Captures["code"]),
		Region: strings.TrimSpace(m.Captures["region"]),
	}
	if parts.Code == "" {
		return DisplayParts{}, false
	}
	return parts, true
}
