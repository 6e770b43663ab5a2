package events_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/aledsdavies/tagforge/internal/events"
)

func TestCanonicalizeUppercasesName(t *testing.T) {
	if got := events.Canonicalize("url"); got != "URL" {
		t.Fatalf("Canonicalize(url) = %q, want URL", got)
	}
}

func TestNormalizeAssignsDefaults(t *testing.T) {
	t1 := events.Normalize(events.Tag{Name: "quote", Kind: events.Start}, "BBCodes")

	if t1.Name != "QUOTE" {
		t.Errorf("name not canonicalized: %q", t1.Name)
	}
	if t1.Suffix != "-BBCodes" {
		t.Errorf("suffix = %q, want -BBCodes", t1.Suffix)
	}
	if t1.Attrs == nil {
		t.Error("attrs should default to an empty map, not nil")
	}
}

func TestSortKeyOrdersByPosThenKindThenPlugin(t *testing.T) {
	in := []events.Tag{
		{Pos: 5, Kind: events.End, PluginName: "B"},
		{Pos: 5, Kind: events.Start, PluginName: "A"},
		{Pos: 1, Kind: events.SelfClosing, PluginName: "Z"},
		{Pos: 5, Kind: events.Start, PluginName: "Z"},
	}
	events.SortKey(in)

	want := []events.Tag{
		{Pos: 1, Kind: events.SelfClosing, PluginName: "Z"},
		{Pos: 5, Kind: events.Start, PluginName: "A"},
		{Pos: 5, Kind: events.Start, PluginName: "Z"},
		{Pos: 5, Kind: events.End, PluginName: "B"},
	}
	if diff := cmp.Diff(want, in); diff != "" {
		t.Fatalf("sort order mismatch (-want +got):\n%s", diff)
	}
}

func TestKindBitwisePredicates(t *testing.T) {
	if events.SelfClosing&events.Start == 0 {
		t.Error("SELF_CLOSING should have the START bit set")
	}
	if events.SelfClosing&events.End == 0 {
		t.Error("SELF_CLOSING should have the END bit set")
	}
	if events.Start&events.End != 0 {
		t.Error("START and END must not overlap")
	}
}
