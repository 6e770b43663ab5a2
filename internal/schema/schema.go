// Package schema defines the read-only configuration the resolver and
// plugin-dispatch stages consume: the tag, plugin, and filter maps that
// drive a parse. An interactive builder for this configuration is
// explicitly out of scope; this package only models the resulting
// document and validates its shape.
package schema

// AttrType names one of the built-in typed attribute filters.
type AttrType string

const (
	TypeURL        AttrType = "url"
	TypeIdentifier AttrType = "identifier"
	TypeID         AttrType = "id"
	TypeSimpleText AttrType = "simpletext"
	TypeText       AttrType = "text"
	TypeEmail      AttrType = "email"
	TypeInt        AttrType = "int"
	TypeInteger    AttrType = "integer"
	TypeFloat      AttrType = "float"
	TypeNumber     AttrType = "number"
	TypeUint       AttrType = "uint"
	TypeRange      AttrType = "range"
	TypeColor      AttrType = "color"
	TypeRegexp     AttrType = "regexp"
)

// AttrFilterFunc is a unary string transform used for pre/post filter
// chains on a single attribute.
type AttrFilterFunc func(string) string

// TagFilterFunc is a whole-attribute-map transform used for tag-level
// pre/post filters.
type TagFilterFunc func(map[string]string) map[string]string

// FilterCallback lets a schema override the built-in semantics of an
// AttrType with custom logic. It receives the raw value and returns the
// canonical value plus whether it was valid.
type FilterCallback func(raw string) (canonical string, ok bool)

// Attr is one attribute's configuration on a Tag.
type Attr struct {
	Type       AttrType
	IsRequired bool
	Default    string
	HasDefault bool

	PreFilter  []AttrFilterFunc
	PostFilter []AttrFilterFunc

	// Callback overrides the built-in typed filter for Type, if set.
	Callback FilterCallback

	// Regexp-type configuration.
	Regexp  string
	Replace string

	// Range-type configuration.
	Min, Max int
}

// Rules bundles the structural constraints beyond the plain allow-set:
// which sibling tags a start auto-closes, and which ancestor a tag
// requires.
type Rules struct {
	CloseParent      []string
	RequireParent    string
	RequireAscendant []string
}

// Tag is one schema entry describing how a single tag name behaves
// during resolution.
type Tag struct {
	Name string

	Allow        map[string]bool
	NestingLimit int // 0 means unlimited
	TagLimit     int // 0 means unlimited

	Rules Rules

	TrimBefore   bool
	LTrimContent bool
	RTrimContent bool
	TrimAfter    bool

	Attrs map[string]*Attr

	PreFilter  []TagFilterFunc
	PostFilter []TagFilterFunc
}

// Plugin is one entry of the "plugins" mapping: the regular expressions
// and limits a recognizer is dispatched under.
type Plugin struct {
	Name string

	// Patterns holds one or more regular expressions; a plugin declares
	// either a single pattern or a list.
	Patterns []string

	RegexpLimit       int    // 0 means unlimited
	RegexpLimitAction string // "abort" | "ignore" | anything else treated as "warn"

	// Private is opaque plugin-specific configuration. The YAML loader
	// does not fill it, and the dispatcher does not hand it to the
	// recognizer.
	Private map[string]any
}

// FilterConfig is one entry of the "filters" mapping: global
// configuration for a built-in typed filter (e.g. URL scheme allow-list).
type FilterConfig struct {
	AllowedSchemes  string // regexp source; empty means no scheme restriction
	DisallowedHosts string // regexp source; empty means no host restriction
	Callback        FilterCallback
}

// Schema is the whole read-only configuration document consumed by one
// Engine.
type Schema struct {
	// SchemaVersion is an optional semver string validated at load time
	// (see internal/schema/load.go); purely informational to the engine.
	SchemaVersion string

	Tags    map[string]*Tag
	Plugins map[string]*Plugin
	Filters map[AttrType]*FilterConfig

	// PluginOrder fixes the order plugins run in. If empty, callers
	// should fall back to a deterministic order of their own (e.g.
	// sorted plugin names) since Go map iteration is randomized.
	PluginOrder []string

	// RootAllow is the allow-set active before any tag has opened. A nil
	// set is treated as "all tags allowed".
	RootAllow map[string]bool
}

// Allows reports whether name is permitted in the given allow-set, where a
// nil set means "everything is allowed" (the schema's default root
// context).
func Allows(allow map[string]bool, name string) bool {
	if allow == nil {
		return true
	}
	return allow[name]
}

// Intersect returns the intersection of the current allow-set with a
// tag's own allow-set, used when descending into a newly opened tag. A
// nil operand acts as the universal set.
func Intersect(current, tagAllow map[string]bool) map[string]bool {
	if current == nil {
		return tagAllow
	}
	if tagAllow == nil {
		return current
	}
	out := make(map[string]bool, len(current))
	for name := range current {
		if tagAllow[name] {
			out[name] = true
		}
	}
	return out
}
