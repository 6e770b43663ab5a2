package plugins_test

import (
	"testing"

	"github.com/aledsdavies/tagforge/internal/plugins"
)

func TestEmoticonLongestTokenWinsOverPrefix(t *testing.T) {
	table := plugins.Emoticons{
		":(":  "sad.png",
		":((": "crying.png",
	}
	text := "oh no :(("
	tags := plugins.NewEmoticon(table).GetTags(text, matchesFor(t, table.Pattern(), text))
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d: %+v", len(tags), tags)
	}
	if tags[0].Attrs["token"] != ":((" || tags[0].Attrs["src"] != "crying.png" {
		t.Fatalf("expected longest token to win, got %+v", tags[0].Attrs)
	}
}

func TestEmoticonKnownTokenProducesTag(t *testing.T) {
	table := plugins.Emoticons{":)": "smile.png"}
	text := ":)"
	tags := plugins.NewEmoticon(table).GetTags(text, matchesFor(t, table.Pattern(), text))
	if len(tags) != 1 || tags[0].Attrs["src"] != "smile.png" {
		t.Fatalf("got %+v", tags)
	}
}
