// Package tagforge wires the plugin-dispatch, normalization, sort,
// resolution, and serialization stages of the parse engine into a
// single Engine.
package tagforge

import (
	"context"
	"log/slog"
	"sort"

	"github.com/aledsdavies/tagforge/internal/events"
	"github.com/aledsdavies/tagforge/internal/lexer"
	"github.com/aledsdavies/tagforge/internal/logx"
	"github.com/aledsdavies/tagforge/internal/resolve"
	"github.com/aledsdavies/tagforge/internal/schema"
	"github.com/aledsdavies/tagforge/internal/serialize"
	"github.com/aledsdavies/tagforge/internal/trace"
)

// AbortError is the one fatal parse condition. It aliases lexer.AbortError
// so callers never need to import internal/lexer themselves to
// type-assert on it.
type AbortError = lexer.AbortError

// Result is the outcome of one successful Parse.
type Result struct {
	// Tree is the serialized output (XML by default).
	Tree string
	// Log is the severity-keyed diagnostic multimap for this parse.
	// A successful parse may still carry debug (and even warning/error)
	// entries; only a fatal AbortError fails the call outright.
	Log *logx.Log
}

// Engine is one configured, reusable parser: a schema plus the recognizer
// registry and emitter it was built with. An Engine's plugin recognizers
// are cached across calls to Parse, but Parse itself creates and
// discards fresh per-parse state every time, so one Engine may serve
// concurrent Parse calls over disjoint input as long as its Schema
// pointer is not swapped mid-call — see schema.Watcher for the pattern
// that makes that safe too.
type Engine struct {
	schema  *schema.Schema
	reg     *lexer.Registry
	emitter serialize.Emitter
	logger  *slog.Logger

	dispatcher *lexer.Dispatcher
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithEmitter overrides the default XML emitter.
func WithEmitter(e serialize.Emitter) Option {
	return func(eng *Engine) { eng.emitter = e }
}

// WithLogger attaches a *slog.Logger every parse's diagnostics are also
// forwarded to, in addition to being collected in Result.Log.
func WithLogger(l *slog.Logger) Option {
	return func(eng *Engine) { eng.logger = l }
}

// NewEngine builds an Engine from sch and reg. Plugin patterns are
// compiled once, here, not per parse.
func NewEngine(sch *schema.Schema, reg *lexer.Registry, opts ...Option) (*Engine, error) {
	eng := &Engine{
		schema:  sch,
		reg:     reg,
		emitter: serialize.XML{},
	}
	for _, opt := range opts {
		opt(eng)
	}

	order := sch.PluginOrder
	if len(order) == 0 {
		order = make([]string, 0, len(sch.Plugins))
		for name := range sch.Plugins {
			order = append(order, name)
		}
		sort.Strings(order)
	}

	d, err := lexer.NewDispatcher(sch.Plugins, order, reg)
	if err != nil {
		return nil, err
	}
	eng.dispatcher = d
	return eng, nil
}

// SetSchema atomically swaps the engine's active schema and recompiles its
// dispatcher, without disturbing any Parse already running against the
// previous schema value: the schema is read-only during a parse, so a
// Parse in flight keeps its own copy of the pointer. Intended to be
// called from a schema.Watcher's swap callback.
func (e *Engine) SetSchema(sch *schema.Schema) error {
	order := sch.PluginOrder
	if len(order) == 0 {
		order = make([]string, 0, len(sch.Plugins))
		for name := range sch.Plugins {
			order = append(order, name)
		}
		sort.Strings(order)
	}
	d, err := lexer.NewDispatcher(sch.Plugins, order, e.reg)
	if err != nil {
		return err
	}
	e.schema = sch
	e.dispatcher = d
	return nil
}

// Parse runs the full five-stage pipeline over text. It is total over
// valid schemas: any input string returns a well-formed tree unless the
// sole fatal condition — a regexpLimit overrun under the "abort" policy
// — is raised as *AbortError.
func (e *Engine) Parse(ctx context.Context, text string) (*Result, error) {
	sch := e.schema
	log := logx.New(e.logger)

	candidates, err := e.dispatcher.Dispatch(text, log)
	if err != nil {
		return nil, err
	}

	normalized := resolve.Normalize(candidates, sch.Tags, log)
	resolved := resolve.Resolve(text, normalized, sch, log)
	tree := e.emitter.Emit(text, resolved)

	return &Result{Tree: tree, Log: log}, nil
}

// Snapshot runs the same dispatch, normalization and resolution stages as
// Parse, without serializing, and returns a trace.Snapshot of the sorted
// candidates, the resolved tags and the log, for golden-fixture tests of
// the resolver.
func (e *Engine) Snapshot(ctx context.Context, text string) (trace.Snapshot, error) {
	sch := e.schema
	log := logx.New(e.logger)

	candidates, err := e.dispatcher.Dispatch(text, log)
	if err != nil {
		return trace.Snapshot{}, err
	}
	normalized := resolve.Normalize(candidates, sch.Tags, log)
	events.SortKey(normalized)
	resolved := resolve.Resolve(text, normalized, sch, log)
	return trace.New(text, normalized, resolved, log), nil
}
