package lexer

import "github.com/aledsdavies/tagforge/internal/events"

// Recognizer is the external recognizer contract: given the matched text
// and the plugin's regex matches, return the tag events they denote. One
// Recognizer instance serves one plugin and is cached across parses,
// since plugin-parser instances are stateless between calls.
//
// The engine assumes nothing about a Recognizer's purity across calls but
// must tolerate duplicate or overlapping events; Recognizer implementations
// are themselves responsible for any pattern-specific post-processing
// (stripping trailing punctuation from autolinks, filtering disabled HTML
// entities) before returning.
type Recognizer interface {
	GetTags(text string, matches []Match) []events.Tag
}

// RecognizerFunc adapts a plain function to the Recognizer interface, the
// same lightweight adapter pattern Go's own http.HandlerFunc uses.
type RecognizerFunc func(text string, matches []Match) []events.Tag

// GetTags implements Recognizer.
func (f RecognizerFunc) GetTags(text string, matches []Match) []events.Tag { return f(text, matches) }

// Registry maps a plugin name to its Recognizer, constructed eagerly at
// engine-build time: recognizers are registered once, in Go, with no
// runtime class loading or reflection-based dispatch.
type Registry struct {
	recognizers map[string]Recognizer
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{recognizers: make(map[string]Recognizer)}
}

// Register adds or replaces the recognizer for pluginName.
func (r *Registry) Register(pluginName string, rec Recognizer) {
	r.recognizers[pluginName] = rec
}

// Get returns the recognizer registered for pluginName, if any.
func (r *Registry) Get(pluginName string) (Recognizer, bool) {
	rec, ok := r.recognizers[pluginName]
	return rec, ok
}
