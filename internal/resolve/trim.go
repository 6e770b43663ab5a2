package resolve

import (
	"github.com/aledsdavies/tagforge/internal/events"
	"github.com/aledsdavies/tagforge/internal/schema"
)

// isWhitespaceByte reports whether b is in the fixed byte set absorbed
// around trimmed tags: space, LF, CR, tab, NUL, vertical tab. This is a
// byte classification, not a Unicode one: the engine operates in bytes
// throughout.
func isWhitespaceByte(b byte) bool {
	switch b {
	case ' ', '\n', '\r', '\t', 0, 0x0B:
		return true
	default:
		return false
	}
}

// applyTrim computes and applies the whitespace-absorption directives
// configured on a tag, given the tag's schema config and the left
// boundary (the right edge of the previously appended tag, so two
// adjacent tags can never claim the same whitespace).
func applyTrim(text string, t *events.Tag, cfg *schema.Tag, boundary int) {
	if cfg == nil {
		return
	}

	trimBefore := (t.Kind&events.Start != 0 && cfg.TrimBefore) || (t.Kind&events.End != 0 && cfg.RTrimContent)
	trimAfter := (t.Kind&events.Start != 0 && cfg.LTrimContent) || (t.Kind&events.End != 0 && cfg.TrimAfter)

	if trimBefore {
		i := t.Pos
		for i > boundary && isWhitespaceByte(text[i-1]) {
			i--
		}
		count := t.Pos - i
		t.TrimBefore += count
		t.Pos = i
		t.Len += count
	}
	if trimAfter {
		end := t.Pos + t.Len
		i := end
		for i < len(text) && isWhitespaceByte(text[i]) {
			i++
		}
		count := i - end
		t.TrimAfter += count
		t.Len += count
	}
}
