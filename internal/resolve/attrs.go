package resolve

import (
	"fmt"

	"github.com/aledsdavies/tagforge/internal/filters"
	"github.com/aledsdavies/tagforge/internal/logx"
	"github.com/aledsdavies/tagforge/internal/schema"
)

// FilterAttrs runs the attribute-filter chain for one tag occurrence:
// tag-level preFilter, per-attribute default/preFilter/typed
// filter/postFilter, then tag-level postFilter. It returns ok=false when
// an isRequired attribute is still absent after filtering, meaning the
// caller must drop the whole tag occurrence.
//
// Attributes present on the event but not declared in the tag's schema
// are dropped rather than passed through unfiltered: an attribute with
// no filter is an attribute the schema never promised to sanitize, and
// letting it through would undermine attribute canonicalization as a
// guarantee callers can rely on (decision recorded in DESIGN.md).
func FilterAttrs(cfg *schema.Tag, raw map[string]string, filterCfgs map[schema.AttrType]*schema.FilterConfig, log *logx.Log, ctx logx.Context) (map[string]string, bool) {
	working := make(map[string]string, len(raw))
	for k, v := range raw {
		working[k] = v
	}
	for _, pf := range cfg.PreFilter {
		working = pf(working)
	}

	result := make(map[string]string, len(cfg.Attrs))
	for name, attrCfg := range cfg.Attrs {
		value, present := working[name]
		if !present && attrCfg.HasDefault {
			value, present = attrCfg.Default, true
		}
		if !present {
			if attrCfg.IsRequired {
				return nil, false
			}
			continue
		}

		actx := ctx.WithAttr(name)
		original := value
		for _, pf := range attrCfg.PreFilter {
			value = pf(value)
		}

		filterCfg := filterCfgs[attrCfg.Type]
		canonical, ok := filters.Run(attrCfg.Type, value, attrCfg, filterCfg, log, actx)
		if !ok {
			log.Errorf(actx, fmt.Sprintf("Invalid value for attribute %s", name))
			if attrCfg.HasDefault {
				canonical = attrCfg.Default
				log.Debugf(actx, "Default value substituted")
			} else if attrCfg.IsRequired {
				return nil, false
			} else {
				continue
			}
		}
		for _, pf := range attrCfg.PostFilter {
			canonical = pf(canonical)
		}
		if canonical != original {
			log.Debugf(actx, "Attribute value altered by filter")
		}
		result[name] = canonical
	}

	for _, pf := range cfg.PostFilter {
		result = pf(result)
	}
	return result, true
}
