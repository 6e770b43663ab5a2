// Package events defines the candidate and processed tag-event record that
// flows between the plugin-dispatch, sort, and resolution stages.
package events

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind is a bitwise tag-occurrence kind. SelfClosing is the union of Start
// and End so callers can test membership with Kind&Start / Kind&End rather
// than a three-way switch.
type Kind uint8

const (
	Start       Kind = 1 << 0
	End         Kind = 1 << 1
	SelfClosing      = Start | End
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "START"
	case End:
		return "END"
	case SelfClosing:
		return "SELF_CLOSING"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

var upper = cases.Upper(language.Und)

// Canonicalize upper-cases a tag name the way the schema expects it. Uses
// x/text rather than strings.ToUpper so non-ASCII tag names supplied by a
// localized schema fold correctly.
func Canonicalize(name string) string {
	return upper.String(name)
}

// Tag is one candidate (pre-resolution) or processed (post-resolution) tag
// occurrence. Pos and Len are byte offsets/lengths into the original input;
// this engine never operates on code points (see DESIGN.md).
type Tag struct {
	Pos  int
	Len  int
	Name string
	Kind Kind

	Attrs map[string]string

	// Suffix pairs a START with its END. Events from different plugins get
	// distinct default suffixes so they can never close one another.
	Suffix     string
	PluginName string

	// TrimBefore/TrimAfter are computed during resolution's whitespace
	// absorption step; zero until then.
	TrimBefore int
	TrimAfter  int
}

// DefaultSuffix is the pairing suffix assigned to a plugin-emitted event
// that did not specify its own.
func DefaultSuffix(pluginName string) string {
	return "-" + pluginName
}

// Normalize fills in the defaults the plugin-dispatch stage promises every
// emitted event will have, and canonicalizes the tag name.
func Normalize(t Tag, pluginName string) Tag {
	t.Name = Canonicalize(t.Name)
	t.PluginName = pluginName
	if t.Attrs == nil {
		t.Attrs = map[string]string{}
	}
	if t.Suffix == "" {
		t.Suffix = DefaultSuffix(pluginName)
	}
	return t
}

// InstanceID returns a short deterministic hex id for a (name, pos,
// pluginName) occurrence, used only to render a human-readable
// "[list:01234567]"-style debug form. The hash needs to be stable across
// runs of the same input so golden fixtures don't flap; BLAKE2b-256
// truncated to 4 bytes keeps the id short without inviting collisions in
// practice.
func InstanceID(name string, pos int, pluginName string) string {
	sum := blake2b.Sum256([]byte(fmt.Sprintf("%s:%d:%s", name, pos, pluginName)))
	return hex.EncodeToString(sum[:4])
}

// RandomSuffix returns a fresh random 4-byte hex suffix for schemas that
// want a fresh pairing id per occurrence rather than a content hash
// (e.g. a BBCode schema emulating phpBB's per-post tag suffixing).
func RandomSuffix() string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// SortKey orders candidate events deterministically: position ascending,
// then Kind ascending (START < END < SELF_CLOSING), then plugin name
// lexicographically.
func SortKey(events []Tag) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.Pos != b.Pos {
			return a.Pos < b.Pos
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.PluginName < b.PluginName
	})
}
