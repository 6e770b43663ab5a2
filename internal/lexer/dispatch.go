package lexer

import (
	"fmt"
	"regexp"

	"github.com/aledsdavies/tagforge/internal/events"
	"github.com/aledsdavies/tagforge/internal/logx"
	"github.com/aledsdavies/tagforge/internal/schema"
)

// AbortError is the one fatal condition this engine recognizes: a
// regexpLimit overrun under the "abort" policy. It unwinds the whole
// parse.
type AbortError struct {
	PluginName string
	Limit      int
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("tagforge: plugin %q exceeded its regexp match limit of %d", e.PluginName, e.Limit)
}

// normalizeLimitAction normalizes the three-way regexpLimit policy: an
// unrecognized action string falls back to "warn" so a misconfigured
// schema degrades to a loud parse rather than a failed one.
func normalizeLimitAction(action string) string {
	switch action {
	case "abort", "ignore":
		return action
	default:
		return "warn"
	}
}

// compiledPlugin caches a plugin's compiled patterns and recognizer
// across parses, since both are stateless between calls.
type compiledPlugin struct {
	name     string
	patterns []*regexp.Regexp
	cfg      *schema.Plugin
	rec      Recognizer
}

// Dispatcher runs every configured plugin against one input and returns
// the flat, normalized candidate event stream plugin dispatch produces.
type Dispatcher struct {
	plugins []compiledPlugin
}

// NewDispatcher compiles every plugin's patterns and resolves its
// recognizer from reg up front, in the order given by names; plugins run
// in that order. NewDispatcher does not sort names itself: callers pass
// the schema's PluginOrder or a sorted list of plugin names, since Go map
// iteration order is randomized and the schema's "plugins" mapping has no
// other intrinsic order.
func NewDispatcher(plugins map[string]*schema.Plugin, names []string, reg *Registry) (*Dispatcher, error) {
	d := &Dispatcher{}
	for _, name := range names {
		cfg, ok := plugins[name]
		if !ok {
			continue
		}
		cp := compiledPlugin{name: name, cfg: cfg}
		for _, pat := range cfg.Patterns {
			re, err := regexp.Compile(pat)
			if err != nil {
				return nil, fmt.Errorf("tagforge: plugin %q has invalid pattern %q: %w", name, pat, err)
			}
			cp.patterns = append(cp.patterns, re)
		}
		if rec, ok := reg.Get(name); ok {
			cp.rec = rec
		}
		d.plugins = append(d.plugins, cp)
	}
	return d, nil
}

// Dispatch runs every plugin against text and returns the merged,
// normalized candidate events. It returns *AbortError if a plugin's
// regexpLimit is exceeded under the "abort" policy, the only condition
// that aborts a parse.
func (d *Dispatcher) Dispatch(text string, log *logx.Log) ([]events.Tag, error) {
	var out []events.Tag
	for _, p := range d.plugins {
		tags, err := d.dispatchOne(p, text, log)
		if err != nil {
			return nil, err
		}
		out = append(out, tags...)
	}
	return out, nil
}

func (d *Dispatcher) dispatchOne(p compiledPlugin, text string, log *logx.Log) ([]events.Tag, error) {
	var allMatches []Match
	running := 0
	limit := p.cfg.RegexpLimit
	action := normalizeLimitAction(p.cfg.RegexpLimitAction)

	for _, re := range p.patterns {
		matches := findMatches(re, text)
		if limit > 0 {
			room := limit - running
			if room <= 0 {
				// The limit was already hit by an earlier pattern; the
				// matches of this and every later pattern of this plugin
				// are discarded.
				break
			}
			if len(matches) > room {
				switch action {
				case "abort":
					return nil, &AbortError{PluginName: p.name, Limit: limit}
				case "ignore":
					log.Debugf(logx.Context{}, "Regexp match limit exceeded, excess matches ignored", "plugin", p.name, "limit", limit)
				default:
					log.Warnf(logx.Context{}, "Regexp match limit exceeded, excess matches ignored", "plugin", p.name, "limit", limit)
				}
				matches = matches[:room]
			}
		}
		running += len(matches)
		allMatches = append(allMatches, matches...)
	}

	if len(allMatches) == 0 {
		// No pattern produced any match: the plugin is skipped and its
		// recognizer is never invoked.
		return nil, nil
	}
	if p.rec == nil {
		return nil, nil
	}

	raw := p.rec.GetTags(text, allMatches)
	out := make([]events.Tag, 0, len(raw))
	for _, t := range raw {
		out = append(out, events.Normalize(t, p.name))
	}
	return out, nil
}

// findMatches evaluates re against text with "global, set-ordered, with
// offsets" semantics: all non-overlapping matches, each exposing every
// capture group's text and byte offset.
func findMatches(re *regexp.Regexp, text string) []Match {
	idxs := re.FindAllSubmatchIndex([]byte(text), -1)
	matches := make([]Match, 0, len(idxs))
	for _, idx := range idxs {
		groups := make([]Group, 0, len(idx)/2)
		for i := 0; i < len(idx); i += 2 {
			start, end := idx[i], idx[i+1]
			if start < 0 {
				groups = append(groups, Group{Offset: -1})
				continue
			}
			groups = append(groups, Group{Text: text[start:end], Offset: start})
		}
		matches = append(matches, Match{Groups: groups})
	}
	return matches
}
