package plugins_test

import (
	"testing"

	"github.com/aledsdavies/tagforge/internal/plugins"
)

func TestLineBreakCollapsesCRLFIntoOneBreak(t *testing.T) {
	text := "a\r\nb\nc"
	tags := plugins.NewLineBreak().GetTags(text, matchesFor(t, plugins.LineBreakPattern, text))
	if len(tags) != 2 {
		t.Fatalf("expected 2 breaks (CRLF counted once), got %d: %+v", len(tags), tags)
	}
	if tags[0].Len != 2 {
		t.Fatalf("expected the CRLF match to span 2 bytes, got %d", tags[0].Len)
	}
	if tags[1].Len != 1 {
		t.Fatalf("expected the bare LF match to span 1 byte, got %d", tags[1].Len)
	}
}
