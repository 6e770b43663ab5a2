package resolve_test

import (
	"log/slog"
	"testing"

	"github.com/aledsdavies/tagforge/internal/events"
	"github.com/aledsdavies/tagforge/internal/logx"
	"github.com/aledsdavies/tagforge/internal/resolve"
	"github.com/aledsdavies/tagforge/internal/schema"
)

func newLog() *logx.Log { return logx.New(slog.Default()) }

func baseSchema() *schema.Schema {
	return &schema.Schema{
		Tags: map[string]*schema.Tag{
			"LIST": {Name: "LIST", NestingLimit: 10},
			"LI": {
				Name: "LI",
				Rules: schema.Rules{
					RequireParent: "LIST",
					CloseParent:   []string{"LI"},
				},
			},
			"QUOTE": {Name: "QUOTE", NestingLimit: 10},
			"B":     {Name: "B", NestingLimit: 1},
		},
		Filters: map[schema.AttrType]*schema.FilterConfig{},
	}
}

func starts(tags []events.Tag, kind events.Kind) (names []string) {
	for _, t := range tags {
		if t.Kind == kind {
			names = append(names, t.Name)
		}
	}
	return names
}

func TestRequireParentDropsOrphan(t *testing.T) {
	sch := baseSchema()
	text := "[*]x[/*]"
	candidates := []events.Tag{
		{Pos: 0, Len: 3, Name: "LI", Kind: events.Start, Suffix: "-BBCodes"},
		{Pos: 4, Len: 4, Name: "LI", Kind: events.End, Suffix: "-BBCodes"},
	}

	out := resolve.Resolve(text, candidates, sch, newLog())
	if len(out) != 0 {
		t.Fatalf("expected LI with no LIST parent to be dropped entirely, got %+v", out)
	}
}

func TestCloseParentAutoClosesSiblingListItem(t *testing.T) {
	sch := baseSchema()
	text := "[list][*]a[*]b[/list]"
	candidates := []events.Tag{
		{Pos: 0, Len: 6, Name: "LIST", Kind: events.Start, Suffix: "-BBCodes"},
		{Pos: 6, Len: 3, Name: "LI", Kind: events.Start, Suffix: "-BBCodes"},
		{Pos: 10, Len: 3, Name: "LI", Kind: events.Start, Suffix: "-BBCodes"},
		{Pos: 14, Len: 7, Name: "LIST", Kind: events.End, Suffix: "-BBCodes"},
	}

	out := resolve.Resolve(text, candidates, sch, newLog())

	// Expect: LIST start, LI start, synthesized LI end (closeParent),
	// LI start, synthesized LI end (auto-closed by LIST's end), LIST end.
	ends := 0
	for _, tg := range out {
		if tg.Kind == events.End && tg.Name == "LI" {
			ends++
		}
	}
	if ends != 2 {
		t.Fatalf("expected 2 LI end events (one synthesized by closeParent, one by the outer LIST close), got %d in %+v", ends, out)
	}

	starts := starts(out, events.Start)
	if len(starts) != 3 { // LIST, LI, LI
		t.Fatalf("expected 3 start events, got %v", starts)
	}
}

func TestNestingLimitDropsExcessInnerInstance(t *testing.T) {
	sch := baseSchema()
	sch.Tags["B"].NestingLimit = 1
	text := "[b][b]x[/b][/b]"
	candidates := []events.Tag{
		{Pos: 0, Len: 3, Name: "B", Kind: events.Start, Suffix: "-BBCodes"},
		{Pos: 3, Len: 3, Name: "B", Kind: events.Start, Suffix: "-BBCodes"},
		{Pos: 7, Len: 4, Name: "B", Kind: events.End, Suffix: "-BBCodes"},
		{Pos: 11, Len: 4, Name: "B", Kind: events.End, Suffix: "-BBCodes"},
	}

	out := resolve.Resolve(text, candidates, sch, newLog())
	startCount := 0
	for _, tg := range out {
		if tg.Kind == events.Start {
			startCount++
		}
	}
	if startCount != 1 {
		t.Fatalf("expected exactly one B start to survive the nesting limit, got %d: %+v", startCount, out)
	}
}

func TestUnmatchedEndIsDroppedAndLogged(t *testing.T) {
	sch := baseSchema()
	text := "[/quote]"
	candidates := []events.Tag{
		{Pos: 0, Len: 8, Name: "QUOTE", Kind: events.End, Suffix: "-BBCodes"},
	}

	log := newLog()
	out := resolve.Resolve(text, candidates, sch, log)
	if len(out) != 0 {
		t.Fatalf("expected unmatched end to be dropped, got %+v", out)
	}
	if len(log.Records(logx.Debug)) != 1 {
		t.Fatalf("expected one debug record for the unmatched end, got %v", log.Records(logx.Debug))
	}
}

func TestPluginIsolationSuffixPreventsCrossClose(t *testing.T) {
	sch := baseSchema()
	text := "[quote][/quote]"
	candidates := []events.Tag{
		{Pos: 0, Len: 7, Name: "QUOTE", Kind: events.Start, Suffix: "-PluginA"},
		{Pos: 7, Len: 8, Name: "QUOTE", Kind: events.End, Suffix: "-PluginB"},
	}

	out := resolve.Resolve(text, candidates, sch, newLog())
	// The end can't close the start (different suffixes): it's dropped as
	// unmatched, leaving the start open and un-emitted as an END pairing.
	endCount := 0
	for _, tg := range out {
		if tg.Kind == events.End {
			endCount++
		}
	}
	if endCount != 0 {
		t.Fatalf("end from a different plugin must not close the start, got %+v", out)
	}
}

func TestWellNestingAndMonotonicPositions(t *testing.T) {
	sch := baseSchema()
	text := "[quote][b]x[/b][/quote]"
	candidates := []events.Tag{
		{Pos: 0, Len: 7, Name: "QUOTE", Kind: events.Start, Suffix: "-BBCodes"},
		{Pos: 7, Len: 3, Name: "B", Kind: events.Start, Suffix: "-BBCodes"},
		{Pos: 11, Len: 4, Name: "B", Kind: events.End, Suffix: "-BBCodes"},
		{Pos: 15, Len: 8, Name: "QUOTE", Kind: events.End, Suffix: "-BBCodes"},
	}

	out := resolve.Resolve(text, candidates, sch, newLog())
	for i := 1; i < len(out); i++ {
		if out[i-1].Pos+out[i-1].Len > out[i].Pos {
			t.Fatalf("positions not monotonic/non-overlapping at %d: %+v vs %+v", i, out[i-1], out[i])
		}
	}

	var depth int
	for _, tg := range out {
		if tg.Kind == events.Start {
			depth++
		} else if tg.Kind == events.End {
			depth--
		}
		if depth < 0 {
			t.Fatalf("unbalanced nesting in %+v", out)
		}
	}
	if depth != 0 {
		t.Fatalf("tree not well-nested, ended at depth %d: %+v", depth, out)
	}
}
