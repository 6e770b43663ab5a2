package resolve

import (
	"github.com/aledsdavies/tagforge/internal/events"
	"github.com/aledsdavies/tagforge/internal/logx"
	"github.com/aledsdavies/tagforge/internal/schema"
)

// maxCloseParentDepth bounds the cascading closeParent restart: naively
// restarting the loop on every synthesized close can cascade arbitrarily
// deep for a pathological schema. This engine preserves the cascade but
// gives up and drops the offending start tag past the bound, logging an
// error, rather than looping forever.
const maxCloseParentDepth = 64

type openEntry struct {
	Name   string
	Suffix string
	Allow  map[string]bool
}

func openKey(name, suffix string) string { return name + "\x00" + suffix }

// Resolver holds the mutable state of one resolution pass. A Resolver is
// created fresh for every call to Resolve and discarded after; it is
// never reused across parses.
type Resolver struct {
	text   string
	schema *schema.Schema
	log    *logx.Log

	pending []events.Tag // synthesized/re-queued events, consumed before sorted
	sorted  []events.Tag
	idx     int

	openStack []openEntry
	openCount map[string]int
	cntOpen   map[string]int
	cntTotal  map[string]int
	allow     map[string]bool
	cursor    int

	out []events.Tag

	closeParentDepth int
}

// Resolve runs the tag-resolution stage over a normalized,
// schema-filtered candidate list and returns the processed tags in
// document order.
func Resolve(text string, candidates []events.Tag, sch *schema.Schema, log *logx.Log) []events.Tag {
	sorted := make([]events.Tag, len(candidates))
	copy(sorted, candidates)
	events.SortKey(sorted)

	r := &Resolver{
		text:      text,
		schema:    sch,
		log:       log,
		sorted:    sorted,
		openCount: make(map[string]int),
		cntOpen:   make(map[string]int),
		cntTotal:  make(map[string]int),
		allow:     sch.RootAllow,
	}
	r.run()
	return r.out
}

func (r *Resolver) pushFront(t events.Tag) {
	r.pending = append([]events.Tag{t}, r.pending...)
}

func (r *Resolver) next() (events.Tag, bool) {
	if len(r.pending) > 0 {
		t := r.pending[0]
		r.pending = r.pending[1:]
		return t, true
	}
	if r.idx < len(r.sorted) {
		t := r.sorted[r.idx]
		r.idx++
		return t, true
	}
	return events.Tag{}, false
}

func (r *Resolver) run() {
	for {
		t, ok := r.next()
		if !ok {
			return
		}

		if r.cursor > t.Pos {
			r.log.Debugf(ctxFor(t), "Tag skipped")
			continue
		}

		if t.Kind&events.Start != 0 {
			r.handleStart(t)
		} else {
			r.handleEnd(t)
		}
	}
}

func ctxFor(t events.Tag) logx.Context {
	return logx.Context{Pos: t.Pos, HasPos: true, TagName: t.Name}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func (r *Resolver) handleStart(t events.Tag) {
	cfg, ok := r.schema.Tags[t.Name]
	if !ok {
		// Normalize already dropped unknown tags; defensive only.
		return
	}
	ctx := ctxFor(t)

	// Step 1: closeParent preflight.
	if len(cfg.Rules.CloseParent) > 0 && len(r.openStack) > 0 {
		top := r.openStack[len(r.openStack)-1]
		if containsName(cfg.Rules.CloseParent, top.Name) {
			if r.closeParentDepth >= maxCloseParentDepth {
				r.log.Errorf(ctx, "closeParent cascade depth exceeded")
				r.closeParentDepth = 0
				return
			}
			r.closeParentDepth++
			synth := events.Tag{
				Pos:        t.Pos,
				Len:        0,
				Name:       top.Name,
				Kind:       events.End,
				Suffix:     top.Suffix,
				PluginName: t.PluginName,
			}
			r.pushFront(t)
			r.pushFront(synth)
			return
		}
	}
	r.closeParentDepth = 0

	// Step 2: limits.
	if cfg.NestingLimit > 0 && r.cntOpen[t.Name] >= cfg.NestingLimit {
		return
	}
	if cfg.TagLimit > 0 && r.cntTotal[t.Name] >= cfg.TagLimit {
		return
	}

	// Step 3: context check.
	if !schema.Allows(r.allow, t.Name) {
		r.log.Debugf(ctx, "Tag not allowed in this context")
		return
	}

	// Step 4: requireParent.
	if cfg.Rules.RequireParent != "" {
		if len(r.openStack) == 0 || r.openStack[len(r.openStack)-1].Name != cfg.Rules.RequireParent {
			r.log.Errorf(ctx, "Tag requires parent "+cfg.Rules.RequireParent)
			return
		}
	}

	// Step 5: requireAscendant.
	for _, anc := range cfg.Rules.RequireAscendant {
		if r.cntOpen[anc] <= 0 {
			r.log.Debugf(ctx, "Tag requires ascendant "+anc)
			return
		}
	}

	// Step 6: attributes.
	attrs, ok := FilterAttrs(cfg, t.Attrs, r.schema.Filters, r.log, ctx)
	if !ok {
		r.log.Errorf(ctx, "Required attribute missing, tag dropped")
		return
	}
	t.Attrs = attrs

	// Step 7: accept.
	applyTrim(r.text, &t, cfg, r.cursor)
	r.out = append(r.out, t)
	r.cursor = t.Pos + t.Len
	r.cntTotal[t.Name]++

	if t.Kind&events.End != 0 {
		return // self-closing: stop here
	}

	r.cntOpen[t.Name]++
	r.openCount[openKey(t.Name, t.Suffix)]++
	r.openStack = append(r.openStack, openEntry{Name: t.Name, Suffix: t.Suffix, Allow: r.allow})
	r.allow = schema.Intersect(r.allow, cfg.Allow)
}

func (r *Resolver) handleEnd(t events.Tag) {
	key := openKey(t.Name, t.Suffix)
	if r.openCount[key] <= 0 {
		r.log.Debugf(ctxFor(t), "Unmatched end tag")
		return
	}

	cfg := r.schema.Tags[t.Name]
	boundary := r.cursor
	origPos := t.Pos

	applyTrim(r.text, &t, cfg, boundary)
	r.cursor = t.Pos + t.Len

	for len(r.openStack) > 0 {
		top := r.openStack[len(r.openStack)-1]
		r.openStack = r.openStack[:len(r.openStack)-1]
		r.allow = top.Allow
		r.cntOpen[top.Name]--
		r.openCount[openKey(top.Name, top.Suffix)]--

		if top.Name != t.Name || top.Suffix != t.Suffix {
			r.out = append(r.out, events.Tag{
				Pos:        origPos,
				Len:        0,
				Name:       top.Name,
				Kind:       events.End,
				Suffix:     top.Suffix,
				PluginName: t.PluginName,
			})
			continue
		}
		break
	}

	r.out = append(r.out, t)
}
