package plugins

import (
	"strings"

	"github.com/aledsdavies/tagforge/internal/events"
	"github.com/aledsdavies/tagforge/internal/lexer"
)

// AutolinkName is the plugin name bare URLs are recognized under.
const AutolinkName = "Autolink"

// AutolinkPattern matches bare http(s) URLs. Trailing punctuation is
// stripped in Go rather than the pattern: for example
// "http://en.wikipedia.org/wiki/Mars_(disambiguation)." keeps the
// trailing ")" because a matching "(" exists earlier in the URL, and
// drops the trailing ".".
const AutolinkPattern = `https?://[^\s<>\[\]]+`

// AutolinkTagName is the schema tag name an autolink match expands into.
const AutolinkTagName = "URL"

// NewAutolink returns the bare-URL recognizer.
func NewAutolink() lexer.Recognizer {
	return lexer.RecognizerFunc(autolinkGetTags)
}

var trailingPunct = ".,;:!?)"

func autolinkGetTags(text string, matches []lexer.Match) []events.Tag {
	out := make([]events.Tag, 0, len(matches))
	for _, m := range matches {
		raw := m.Text()
		trimmed := stripTrailingPunctuation(raw)
		if trimmed == "" {
			continue
		}
		// The matched URL text is both the tag's whole textual span and
		// its body: a single SELF_CLOSING event, the same shape the
		// HTMLEntities recognizer uses for its decoded-character tags.
		out = append(out, events.Tag{
			Pos:  m.Pos(),
			Len:  len(trimmed),
			Name: AutolinkTagName,
			Kind: events.SelfClosing,
			Attrs: map[string]string{
				"url": trimmed,
			},
		})
	}
	return out
}

// stripTrailingPunctuation removes trailing punctuation that's more
// plausibly prose than URL, except a trailing ")" that balances an
// earlier "(" in the URL.
func stripTrailingPunctuation(raw string) string {
	for len(raw) > 0 {
		last := raw[len(raw)-1]
		if last == ')' {
			if strings.Count(raw, "(") >= strings.Count(raw, ")") {
				break
			}
			raw = raw[:len(raw)-1]
			continue
		}
		if strings.IndexByte(trailingPunct, last) >= 0 {
			raw = raw[:len(raw)-1]
			continue
		}
		break
	}
	return raw
}
