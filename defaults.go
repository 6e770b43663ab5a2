package tagforge

import (
	"github.com/aledsdavies/tagforge/internal/lexer"
	"github.com/aledsdavies/tagforge/internal/plugins"
)

// DefaultRegistry returns a Registry with the built-in recognizers
// (generic bracketed tags, autolinks, emoticons, HTML entities, line
// breaks) registered under their conventional plugin names. Callers that
// need a custom emoticon table or a different disabled-entity set should
// build their own Registry with lexer.NewRegistry and the constructors in
// internal/plugins instead.
func DefaultRegistry() *lexer.Registry {
	reg := lexer.NewRegistry()
	reg.Register(plugins.BBCodeName, plugins.NewBBCode())
	reg.Register(plugins.AutolinkName, plugins.NewAutolink())
	reg.Register(plugins.EmoticonName, plugins.NewEmoticon(plugins.DefaultEmoticons))
	reg.Register(plugins.HTMLEntitiesName, plugins.NewHTMLEntities(nil))
	reg.Register(plugins.LineBreakName, plugins.NewLineBreak())
	return reg
}
