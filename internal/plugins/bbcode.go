// Package plugins provides the built-in recognizers: the generic bracketed
// BBCode tag, autolinks, emoticons, HTML entities, and line breaks. Each is
// a lexer.Recognizer registered under a plugin name, never reached via
// string-keyed dynamic dispatch.
package plugins

import (
	"regexp"
	"strings"

	"github.com/aledsdavies/tagforge/internal/events"
	"github.com/aledsdavies/tagforge/internal/lexer"
)

// BBCodeName is the plugin name the generic bracket-tag recognizer is
// registered under.
const BBCodeName = "BBCodes"

// BBCodePattern matches one bracketed tag occurrence: an optional leading
// slash (end tag), a name, an optional ":suffix", an optional
// "=value"/attribute tail, and an optional trailing slash (self-closing).
// Attribute parsing itself happens in Go, not in the pattern: the
// recognizer is responsible for any match-specific post-processing the
// regex alone can't express.
var BBCodePattern = `\[(/?)([A-Za-z][A-Za-z0-9_]*)(:[A-Za-z0-9_-]+)?((?:=|\s)[^\]]*)?(/?)\]`

// NewBBCode returns the generic bracketed-tag recognizer.
func NewBBCode() lexer.Recognizer {
	return lexer.RecognizerFunc(bbCodeGetTags)
}

func bbCodeGetTags(text string, matches []lexer.Match) []events.Tag {
	out := make([]events.Tag, 0, len(matches))
	for _, m := range matches {
		slash := m.Group(1).Text
		name := m.Group(2).Text
		suffix := strings.TrimPrefix(m.Group(3).Text, ":")
		tail := m.Group(4).Text
		closeSlash := m.Group(5).Text

		kind := events.Start
		if slash != "" {
			kind = events.End
		} else if closeSlash != "" {
			kind = events.SelfClosing
		}

		tag := events.Tag{
			Pos:  m.Pos(),
			Len:  len(m.Text()),
			Name: name,
			Kind: kind,
		}
		if suffix != "" {
			tag.Suffix = suffix
		}
		if kind&events.Start != 0 {
			tag.Attrs = parseAttrs(name, tail)
		}
		out = append(out, tag)
	}
	return out
}

// parseAttrs turns a tag's "=value"/"key=value key2=value2" tail into an
// attribute map. "[url=http://x]" maps to {"url": "http://x"} (value-less
// attribute name defaults to the tag name itself, matching how BBCode
// historically overloads "[tag=value]" as shorthand for a single default
// attribute); "[size=12 color=red]"-style space-separated pairs map
// normally.
func parseAttrs(tagName, tail string) map[string]string {
	attrs := map[string]string{}
	tail = strings.TrimSpace(tail)
	if tail == "" {
		return attrs
	}
	if strings.HasPrefix(tail, "=") {
		value := strings.TrimSpace(strings.TrimPrefix(tail, "="))
		// A space-separated tail after the leading "=value" still holds
		// further key=value pairs: [quote=author pid=123]
		if idx := strings.IndexAny(value, " \t"); idx >= 0 {
			attrs[strings.ToLower(tagName)] = unquote(value[:idx])
			parseKeyValuePairs(value[idx+1:], attrs)
			return attrs
		}
		attrs[strings.ToLower(tagName)] = unquote(value)
		return attrs
	}
	parseKeyValuePairs(tail, attrs)
	return attrs
}

var reAttrPair = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_-]*)\s*=\s*("([^"]*)"|'([^']*)'|[^\s]+)`)

func parseKeyValuePairs(s string, attrs map[string]string) {
	for _, m := range reAttrPair.FindAllStringSubmatch(s, -1) {
		key := strings.ToLower(m[1])
		switch {
		case m[3] != "" || strings.HasPrefix(m[2], `"`):
			attrs[key] = m[3]
		case m[4] != "" || strings.HasPrefix(m[2], `'`):
			attrs[key] = m[4]
		default:
			attrs[key] = m[2]
		}
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
