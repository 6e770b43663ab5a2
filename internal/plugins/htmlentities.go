package plugins

import (
	"html"
	"strings"

	"github.com/aledsdavies/tagforge/internal/events"
	"github.com/aledsdavies/tagforge/internal/lexer"
)

// HTMLEntitiesName is the plugin name named/numeric HTML entities are
// recognized under.
const HTMLEntitiesName = "HTMLEntities"

// HTMLEntitiesTagName is the schema tag name an entity match expands
// into.
const HTMLEntitiesTagName = "E_HTML"

// HTMLEntitiesPattern matches a named or numeric HTML entity reference.
const HTMLEntitiesPattern = `&(?:[A-Za-z][A-Za-z0-9]*|#[0-9]+|#[xX][0-9A-Fa-f]+);`

// Disabled names entities this deployment does not want decoded (e.g.
// &amp; reserved for literal ampersand display); decoding those is
// skipped and the recognizer drops the match itself rather than relying
// on schema configuration to filter it downstream.
type Disabled map[string]bool

// NewHTMLEntities returns the recognizer, given the set of disabled
// entity names (without the leading "&" or trailing ";").
func NewHTMLEntities(disabled Disabled) lexer.Recognizer {
	return lexer.RecognizerFunc(func(text string, matches []lexer.Match) []events.Tag {
		out := make([]events.Tag, 0, len(matches))
		for _, m := range matches {
			raw := m.Text()
			name := strings.TrimSuffix(strings.TrimPrefix(raw, "&"), ";")
			if disabled[name] {
				continue
			}
			decoded := html.UnescapeString(raw)
			if decoded == raw {
				continue // not a recognized entity
			}
			out = append(out, events.Tag{
				Pos:  m.Pos(),
				Len:  len(raw),
				Name: HTMLEntitiesTagName,
				Kind: events.SelfClosing,
				Attrs: map[string]string{
					"char": decoded,
				},
			})
		}
		return out
	})
}
