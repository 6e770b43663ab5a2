// Package resolve implements the tag-resolution stage: normalization,
// the open-tag stack walk, attribute filtering, and whitespace trimming.
// This is the hard part of the pipeline, where most of the engine's
// structural decisions get made.
package resolve

import (
	"fmt"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/aledsdavies/tagforge/internal/events"
	"github.com/aledsdavies/tagforge/internal/logx"
	"github.com/aledsdavies/tagforge/internal/schema"
)

// Normalize drops candidate events whose name the schema doesn't know,
// logging each drop at debug with position and origin plugin. The debug
// message includes a fuzzy "did you mean" suggestion when a close schema
// name exists, turning a silent drop into something an operator
// debugging a misconfigured plugin can act on.
func Normalize(candidates []events.Tag, tags map[string]*schema.Tag, log *logx.Log) []events.Tag {
	names := make([]string, 0, len(tags))
	for n := range tags {
		names = append(names, n)
	}

	out := make([]events.Tag, 0, len(candidates))
	for _, t := range candidates {
		if _, ok := tags[t.Name]; ok {
			out = append(out, t)
			continue
		}
		pos := t.Pos
		msg := "Unknown tag removed"
		if best := closestName(t.Name, names); best != "" {
			msg = fmt.Sprintf("Unknown tag removed (did you mean %s?)", best)
		}
		log.Debugf(logx.Context{Pos: pos, HasPos: true, TagName: t.Name}, msg, "plugin", t.PluginName)
	}
	return out
}

// closestName returns the schema name fuzzy.RankFindNormalizedFold
// considers the best match for name, or "" if none ranks at all (it
// requires name's runes to appear, in order, within the candidate — a deliberately
// narrow bar so unrelated tag names don't produce a misleading suggestion).
func closestName(name string, candidates []string) string {
	ranks := fuzzy.RankFindNormalizedFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	return best.Target
}
