// Package patterns provides the grok-style pattern compiler used to read the
// port alias asset and the canonical display form.

package patterns

import (
	"regexp"
	"strings"
)

// Format represents a line or token format with named capture groups.
type Format struct {
	Name     string         // Format name for identification
	Pattern  string         // Pattern with {PLACEHOLDER} syntax
	Compiled *regexp.Regexp // Compiled regex (populated by Compile)
	Fields   []string       // Field names in capture order (for documentation)
}

// Compiler manages pattern compilation and parsing for a set of formats.
type Compiler struct {
	basePatterns map[string]string
	formats      []Format
}

// NewCompiler creates a new pattern compiler with the given formats.
// Local patterns are overlaid on BasePatterns and win on name clashes.
func NewCompiler(formats []Format, localPatterns map[string]string) *Compiler {
	c := &Compiler{
		basePatterns: make(map[string]string, len(BasePatterns)+len(localPatterns)),
		formats:      make([]Format, len(formats)),
	}

	for k, v := range BasePatterns {
		c.basePatterns[k] = v
	}
	for k, v := range localPatterns {
		c.basePatterns[k] = v
	}

	copy(c.formats, formats)

	return c
}

// Compile expands all {PLACEHOLDER} references and compiles regexes.
func (c *Compiler) Compile() error {
	for i := range c.formats {
		expanded := c.expand(c.formats[i].Pattern)
		re, err := regexp.Compile(expanded)
		if err != nil {
			return err
		}
		c.formats[i].Compiled = re
	}
	return nil
}

// expand replaces {PLACEHOLDER} with actual regex patterns.
func (c *Compiler) expand(pattern string) string {
	result := pattern
	for name, regex := range c.basePatterns {
		result = strings.ReplaceAll(result, "{"+name+"}", regex)
	}
	return result
}

// Match represents a successful pattern match with extracted fields.
type Match struct {
	FormatName string            // Name of the matched format
	Captures   map[string]string // Named capture group values
}

// Parse tries every compiled format in order and returns the first match,
// or nil if no format matches. Text is matched as given; asset and display
// strings mix scripts, so no case folding happens here.
func (c *Compiler) Parse(text string) *Match {
	for _, format := range c.formats {
		if m := matchFormat(format, text); m != nil {
			return m
		}
	}
	return nil
}

// ParseFormat matches text against a single named format.
func (c *Compiler) ParseFormat(name, text string) *Match {
	for _, format := range c.formats {
		if format.Name == name {
			return matchFormat(format, text)
		}
	}
	return nil
}

func matchFormat(format Format, text string) *Match {
	if format.Compiled == nil {
		return nil
	}
	match := format.Compiled.FindStringSubmatch(text)
	if match == nil {
		return nil
	}

	result := &Match{
		FormatName: format.Name,
		Captures:   make(map[string]string),
	}
	for i, name := range format.Compiled.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		result.Captures[name] = match[i]
	}
	return result
}

// GetCapture is a helper to safely get a capture value with a default.
func (m *Match) GetCapture(name string, defaultVal string) string {
	if m == nil {
		return defaultVal
	}
	if val, ok := m.Captures[name]; ok && val != "" {
		return val
	}
	return defaultVal
}
