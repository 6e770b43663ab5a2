package plugins

import (
	"regexp"
	"sort"
	"strings"

	"github.com/aledsdavies/tagforge/internal/events"
	"github.com/aledsdavies/tagforge/internal/lexer"
)

// EmoticonName is the plugin name smiley tokens are recognized under.
const EmoticonName = "Emoticons"

// EmoticonTagName is the schema tag name an emoticon match expands into.
const EmoticonTagName = "E"

// Emoticons maps a literal token (e.g. ":)") to the image/code it renders.
type Emoticons map[string]string

// DefaultEmoticons is a small built-in table; callers wire their own via
// NewEmoticon for a real deployment.
var DefaultEmoticons = Emoticons{
	":)": "smile.png",
	":(": "sad.png",
	";)": "wink.png",
	":D": "biggrin.png",
}

// Pattern builds the alternation pattern matching any configured token,
// longest first so ":((" doesn't get shadowed by ":(".
func (e Emoticons) Pattern() string {
	tokens := make([]string, 0, len(e))
	for t := range e {
		tokens = append(tokens, t)
	}
	sort.Slice(tokens, func(i, j int) bool { return len(tokens[i]) > len(tokens[j]) })
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = regexp.QuoteMeta(t)
	}
	return strings.Join(parts, "|")
}

// NewEmoticon returns the recognizer for the given emoticon table.
func NewEmoticon(table Emoticons) lexer.Recognizer {
	return lexer.RecognizerFunc(func(text string, matches []lexer.Match) []events.Tag {
		out := make([]events.Tag, 0, len(matches))
		for _, m := range matches {
			code, ok := table[m.Text()]
			if !ok {
				continue
			}
			out = append(out, events.Tag{
				Pos:  m.Pos(),
				Len:  len(m.Text()),
				Name: EmoticonTagName,
				Kind: events.SelfClosing,
				Attrs: map[string]string{
					"token": m.Text(),
					"src":   code,
				},
			})
		}
		return out
	})
}
