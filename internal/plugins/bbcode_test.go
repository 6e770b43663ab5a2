package plugins_test

import (
	"regexp"
	"testing"

	"github.com/aledsdavies/tagforge/internal/events"
	"github.com/aledsdavies/tagforge/internal/lexer"
	"github.com/aledsdavies/tagforge/internal/plugins"
)

// matchesFor compiles pattern and builds the []lexer.Match a Dispatcher
// would hand to a recognizer, without going through the unexported
// dispatch machinery.
func matchesFor(t *testing.T, pattern, text string) []lexer.Match {
	t.Helper()
	re := regexp.MustCompile(pattern)
	idxs := re.FindAllSubmatchIndex([]byte(text), -1)
	matches := make([]lexer.Match, 0, len(idxs))
	for _, idx := range idxs {
		groups := make([]lexer.Group, 0, len(idx)/2)
		for i := 0; i < len(idx); i += 2 {
			start, end := idx[i], idx[i+1]
			if start < 0 {
				groups = append(groups, lexer.Group{Offset: -1})
				continue
			}
			groups = append(groups, lexer.Group{Text: text[start:end], Offset: start})
		}
		matches = append(matches, lexer.Match{Groups: groups})
	}
	return matches
}

func TestBBCodeParsesStartEndAndSelfClosing(t *testing.T) {
	text := "[b]bold[/b][img/]"
	tags := plugins.NewBBCode().GetTags(text, matchesFor(t, plugins.BBCodePattern, text))
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d: %+v", len(tags), tags)
	}
	if tags[0].Kind != events.Start || tags[0].Name != "b" {
		t.Errorf("tag 0: got %+v", tags[0])
	}
	if tags[1].Kind != events.End || tags[1].Name != "b" {
		t.Errorf("tag 1: got %+v", tags[1])
	}
	if tags[2].Kind != events.SelfClosing || tags[2].Name != "img" {
		t.Errorf("tag 2: got %+v", tags[2])
	}
}

func TestBBCodeShorthandAttributeDefaultsToTagName(t *testing.T) {
	text := "[url=http://example.com]"
	tags := plugins.NewBBCode().GetTags(text, matchesFor(t, plugins.BBCodePattern, text))
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	if got := tags[0].Attrs["url"]; got != "http://example.com" {
		t.Fatalf("attrs = %+v, want url=http://example.com", tags[0].Attrs)
	}
}

func TestBBCodeSpaceSeparatedKeyValuePairs(t *testing.T) {
	text := `[quote=author pid=123]`
	tags := plugins.NewBBCode().GetTags(text, matchesFor(t, plugins.BBCodePattern, text))
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	attrs := tags[0].Attrs
	if attrs["quote"] != "author" || attrs["pid"] != "123" {
		t.Fatalf("unexpected attrs: %+v", attrs)
	}
}

func TestBBCodePluginSuffixFromColonSyntax(t *testing.T) {
	text := "[li:01234567]item[/li:01234567]"
	tags := plugins.NewBBCode().GetTags(text, matchesFor(t, plugins.BBCodePattern, text))
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags, got %d: %+v", len(tags), tags)
	}
	if tags[0].Suffix != "01234567" || tags[1].Suffix != "01234567" {
		t.Fatalf("expected matching suffixes, got %+v", tags)
	}
}
