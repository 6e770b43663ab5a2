package schema

import (
	"fmt"
	"sort"

	"github.com/aledsdavies/tagforge/internal/events"
)

// rawTag/rawPlugin/rawFilter decode a schema document's nested bodies
// loosely; convert() turns them into the typed Tag/Plugin/FilterConfig the
// engine consumes. Keeping the decode and convert steps separate lets
// shape validation run against the loosely-typed form before any of it
// is trusted.
type rawTag struct {
	Allow        []string          `yaml:"allow" json:"allow"`
	NestingLimit int               `yaml:"nestingLimit" json:"nestingLimit"`
	TagLimit     int               `yaml:"tagLimit" json:"tagLimit"`
	Rules        rawRules          `yaml:"rules" json:"rules"`
	TrimBefore   bool              `yaml:"trimBefore" json:"trimBefore"`
	LTrimContent bool              `yaml:"ltrimContent" json:"ltrimContent"`
	RTrimContent bool              `yaml:"rtrimContent" json:"rtrimContent"`
	TrimAfter    bool              `yaml:"trimAfter" json:"trimAfter"`
	Attrs        map[string]rawAttr `yaml:"attrs" json:"attrs"`
}

type rawRules struct {
	CloseParent      []string `yaml:"closeParent" json:"closeParent"`
	RequireParent    string   `yaml:"requireParent" json:"requireParent"`
	RequireAscendant []string `yaml:"requireAscendant" json:"requireAscendant"`
}

type rawAttr struct {
	Type       string `yaml:"type" json:"type"`
	IsRequired bool   `yaml:"isRequired" json:"isRequired"`
	Default    *string `yaml:"default" json:"default"`
	Regexp     string  `yaml:"regexp" json:"regexp"`
	Replace    string  `yaml:"replace" json:"replace"`
	Min        int     `yaml:"min" json:"min"`
	Max        int     `yaml:"max" json:"max"`
}

type rawPlugin struct {
	Regexp            string   `yaml:"regexp" json:"regexp"`
	RegexpList        []string `yaml:"regexpList" json:"regexpList"`
	RegexpLimit       int      `yaml:"regexpLimit" json:"regexpLimit"`
	RegexpLimitAction string   `yaml:"regexpLimitAction" json:"regexpLimitAction"`
}

type rawFilter struct {
	AllowedSchemes  string `yaml:"allowedSchemes" json:"allowedSchemes"`
	DisallowedHosts string `yaml:"disallowedHosts" json:"disallowedHosts"`
}

func toSet(names []string) map[string]bool {
	if names == nil {
		return nil
	}
	out := make(map[string]bool, len(names))
	for _, n := range names {
		out[Canon(n)] = true
	}
	return out
}

// Canon upper-cases a schema-authored tag name the same way the engine
// canonicalizes events, so allow-sets and event names compare equal.
func Canon(name string) string {
	return events.Canonicalize(name)
}

func convert(doc rawDoc) (*Schema, error) {
	s := &Schema{
		SchemaVersion: doc.SchemaVersion,
		Tags:          make(map[string]*Tag, len(doc.Tags)),
		Plugins:       make(map[string]*Plugin, len(doc.Plugins)),
		Filters:       make(map[AttrType]*FilterConfig, len(doc.Filters)),
	}

	for name, rt := range doc.Tags {
		name = Canon(name)
		t := &Tag{
			Name:         name,
			Allow:        toSet(rt.Allow),
			NestingLimit: rt.NestingLimit,
			TagLimit:     rt.TagLimit,
			TrimBefore:   rt.TrimBefore,
			LTrimContent: rt.LTrimContent,
			RTrimContent: rt.RTrimContent,
			TrimAfter:    rt.TrimAfter,
			Rules: Rules{
				CloseParent:      canonAll(rt.Rules.CloseParent),
				RequireParent:    Canon(rt.Rules.RequireParent),
				RequireAscendant: canonAll(rt.Rules.RequireAscendant),
			},
			Attrs: make(map[string]*Attr, len(rt.Attrs)),
		}
		if rt.Rules.RequireParent == "" {
			t.Rules.RequireParent = ""
		}
		for aname, ra := range rt.Attrs {
			a := &Attr{
				Type:       AttrType(ra.Type),
				IsRequired: ra.IsRequired,
				Regexp:     ra.Regexp,
				Replace:    ra.Replace,
				Min:        ra.Min,
				Max:        ra.Max,
			}
			if ra.Default != nil {
				a.HasDefault = true
				a.Default = *ra.Default
			}
			t.Attrs[aname] = a
		}
		s.Tags[name] = t
	}

	for name, rp := range doc.Plugins {
		p := &Plugin{
			Name:              name,
			RegexpLimit:       rp.RegexpLimit,
			RegexpLimitAction: rp.RegexpLimitAction,
		}
		if rp.Regexp != "" {
			p.Patterns = append(p.Patterns, rp.Regexp)
		}
		p.Patterns = append(p.Patterns, rp.RegexpList...)
		if len(p.Patterns) == 0 {
			return nil, fmt.Errorf("tagforge: plugin %q declares no regexp pattern", name)
		}
		s.Plugins[name] = p
		s.PluginOrder = append(s.PluginOrder, name)
	}
	sort.Strings(s.PluginOrder)

	for typeName, rf := range doc.Filters {
		s.Filters[AttrType(typeName)] = &FilterConfig{
			AllowedSchemes:  rf.AllowedSchemes,
			DisallowedHosts: rf.DisallowedHosts,
		}
	}

	return s, nil
}

func canonAll(names []string) []string {
	if names == nil {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = Canon(n)
	}
	return out
}
