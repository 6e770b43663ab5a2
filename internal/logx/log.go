// Package logx implements the parser's log multimap: a severity-keyed
// collection of structured records enriched with the current
// tag/attribute/position context, plus a thin log/slog sink for the same
// records, wired straight into the hot parsing path.
package logx

import (
	"context"
	"log/slog"
)

// Severity is one of the three non-fatal log levels the engine emits.
// Fatal conditions are not logged here; they abort the parse as a typed
// error (see the tagforge package).
type Severity string

const (
	Debug   Severity = "debug"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// Record is one structured log entry. Pos is a pointer so an absent
// position serializes as absent rather than as zero; an absent TagName or
// AttrName is the empty string.
type Record struct {
	Severity Severity
	Message  string
	Params   []any

	Pos      *int
	TagName  string
	AttrName string
}

// Log is the engine's per-parse multimap from severity to records. It is
// not safe for concurrent use; one Log belongs to exactly one parse.
type Log struct {
	records map[Severity][]Record
	slog    *slog.Logger
}

// New creates an empty Log. sink may be nil, in which case records are
// only collected in memory and never forwarded to log/slog.
func New(sink *slog.Logger) *Log {
	return &Log{records: make(map[Severity][]Record), slog: sink}
}

// Context carries the current tag/attribute references a log call needs,
// threaded explicitly through the filter chain instead of living as
// engine-wide mutable state.
type Context struct {
	Pos      int
	HasPos   bool
	TagName  string
	AttrName string
}

// WithTag returns a copy of c scoped to tagName at pos.
func (c Context) WithTag(tagName string, pos int) Context {
	c.TagName = tagName
	c.Pos = pos
	c.HasPos = true
	c.AttrName = ""
	return c
}

// WithAttr returns a copy of c additionally scoped to attrName.
func (c Context) WithAttr(attrName string) Context {
	c.AttrName = attrName
	return c
}

func (l *Log) emit(sev Severity, ctx Context, msg string, params ...any) {
	rec := Record{Severity: sev, Message: msg, Params: params, TagName: ctx.TagName, AttrName: ctx.AttrName}
	if ctx.HasPos {
		pos := ctx.Pos
		rec.Pos = &pos
	}
	l.records[sev] = append(l.records[sev], rec)

	if l.slog == nil {
		return
	}
	attrs := make([]any, 0, len(params)+6)
	attrs = append(attrs, "severity", string(sev))
	if ctx.TagName != "" {
		attrs = append(attrs, "tag", ctx.TagName)
	}
	if ctx.AttrName != "" {
		attrs = append(attrs, "attr", ctx.AttrName)
	}
	if ctx.HasPos {
		attrs = append(attrs, "pos", ctx.Pos)
	}
	attrs = append(attrs, params...)

	level := slog.LevelDebug
	switch sev {
	case Warning:
		level = slog.LevelWarn
	case Error:
		level = slog.LevelError
	}
	l.slog.Log(context.Background(), level, msg, attrs...)
}

// Debugf records a debug-severity entry.
func (l *Log) Debugf(ctx Context, msg string, params ...any) { l.emit(Debug, ctx, msg, params...) }

// Warnf records a warning-severity entry.
func (l *Log) Warnf(ctx Context, msg string, params ...any) { l.emit(Warning, ctx, msg, params...) }

// Errorf records an error-severity entry.
func (l *Log) Errorf(ctx Context, msg string, params ...any) { l.emit(Error, ctx, msg, params...) }

// Records returns every record logged at sev, in emission order.
func (l *Log) Records(sev Severity) []Record {
	return l.records[sev]
}

// All returns the full multimap, e.g. for the caller to inspect after
// Parse returns.
func (l *Log) All() map[Severity][]Record {
	return l.records
}
