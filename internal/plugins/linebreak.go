package plugins

import (
	"github.com/aledsdavies/tagforge/internal/events"
	"github.com/aledsdavies/tagforge/internal/lexer"
)

// LineBreakName is the plugin name newline characters are recognized
// under.
const LineBreakName = "LineBreaks"

// LineBreakTagName is the schema tag name a newline expands into.
const LineBreakTagName = "BR"

// LineBreakPattern matches a single LF, optionally preceded by a CR, so
// CRLF input produces one break rather than two.
const LineBreakPattern = `\r?\n`

// NewLineBreak returns the recognizer turning each newline into a
// self-closing BR tag.
func NewLineBreak() lexer.Recognizer {
	return lexer.RecognizerFunc(func(text string, matches []lexer.Match) []events.Tag {
		out := make([]events.Tag, 0, len(matches))
		for _, m := range matches {
			out = append(out, events.Tag{
				Pos:  m.Pos(),
				Len:  len(m.Text()),
				Name: LineBreakTagName,
				Kind: events.SelfClosing,
			})
		}
		return out
	})
}
