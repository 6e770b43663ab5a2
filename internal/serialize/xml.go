// Package serialize implements the default XML emitter. It is
// deliberately small and exposed as a single Emitter capability so a
// downstream consumer can substitute another emission format entirely
// without touching resolution semantics.
package serialize

import (
	"bytes"
	"encoding/xml"
	"sort"

	"github.com/aledsdavies/tagforge/internal/events"
)

// Emitter turns a resolved tag list plus the original text into a
// structured tree representation.
type Emitter interface {
	Emit(text string, tags []events.Tag) string
}

// XML is the default Emitter, producing the <pt>/<rt>/<i>/<st>/<et>
// tree notation: plain text, tagged text, absorbed whitespace, start tags,
// and end tags, each carrying just enough markup to reconstruct the
// original bytes.
type XML struct{}

// Emit implements Emitter.
func (XML) Emit(text string, tags []events.Tag) string {
	if len(tags) == 0 {
		var buf bytes.Buffer
		buf.WriteString("<pt>")
		escapeText(&buf, text)
		buf.WriteString("</pt>")
		return buf.String()
	}

	var buf bytes.Buffer
	buf.WriteString("<rt>")

	cursor := 0
	for _, t := range tags {
		escapeText(&buf, text[cursor:t.Pos])

		slice := text[t.Pos : t.Pos+t.Len]
		wsBefore := slice[:t.TrimBefore]
		body := slice[t.TrimBefore : len(slice)-t.TrimAfter]
		wsAfter := slice[len(slice)-t.TrimAfter:]

		if wsBefore != "" {
			buf.WriteString("<i>")
			escapeText(&buf, wsBefore)
			buf.WriteString("</i>")
		}

		switch {
		case t.Kind == events.SelfClosing:
			writeOpenTag(&buf, t)
			escapeText(&buf, body)
			buf.WriteString("</")
			buf.WriteString(t.Name)
			buf.WriteString(">")
		case t.Kind&events.Start != 0:
			writeOpenTag(&buf, t)
			if body != "" {
				buf.WriteString("<st>")
				escapeText(&buf, body)
				buf.WriteString("</st>")
			}
		default: // END only
			if body != "" {
				buf.WriteString("<et>")
				escapeText(&buf, body)
				buf.WriteString("</et>")
			}
			buf.WriteString("</")
			buf.WriteString(t.Name)
			buf.WriteString(">")
		}

		if wsAfter != "" {
			buf.WriteString("<i>")
			escapeText(&buf, wsAfter)
			buf.WriteString("</i>")
		}

		cursor = t.Pos + t.Len
	}

	escapeText(&buf, text[cursor:])
	buf.WriteString("</rt>")
	return buf.String()
}

func writeOpenTag(buf *bytes.Buffer, t events.Tag) {
	buf.WriteString("<")
	buf.WriteString(t.Name)

	keys := make([]string, 0, len(t.Attrs))
	for k := range t.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		buf.WriteString(" ")
		buf.WriteString(k)
		buf.WriteString(`="`)
		escapeAttr(buf, t.Attrs[k])
		buf.WriteString(`"`)
	}
	buf.WriteString(">")
}

func escapeText(buf *bytes.Buffer, s string) {
	if s == "" {
		return
	}
	_ = xml.EscapeText(buf, []byte(s))
}

func escapeAttr(buf *bytes.Buffer, s string) {
	escapeText(buf, s)
}
