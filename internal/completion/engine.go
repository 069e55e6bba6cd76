package completion

import (
	"time"

	"github.com/sadopc/sqlhint/internal/dialect"
	"github.com/sadopc/sqlhint/internal/namespace"
)

// Source names passed to an Observer.
const (
	SourceSchema  = "schema"
	SourceKeyword = "keyword"
)

// Observer is told about every source consulted by Engine.Complete: how
// long it took, how many candidates it offered and whether it applied.
type Observer func(source string, start time.Time, n int, ok bool)

// EngineConfig configures an Engine.
type EngineConfig struct {
	// Dialect defaults to dialect.StandardSQL.
	Dialect           *dialect.Dialect
	Schema            namespace.Description
	Options           Options
	UpperCaseKeywords bool
	Observer          Observer
}

// Engine combines schema and keyword completion and ranks the candidates
// against the typed text, the way editor front-ends present them. It is
// safe for concurrent use.
type Engine struct {
	d        *dialect.Dialect
	opts     Options
	source   *Source
	keywords *KeywordSource
	observe  Observer
}

// NewEngine creates a completion engine for cfg.
func NewEngine(cfg EngineConfig) *Engine {
	d := cfg.Dialect
	if d == nil {
		d = dialect.StandardSQL
	}
	return &Engine{
		d:        d,
		opts:     cfg.Options,
		source:   NewSource(d, cfg.Schema, cfg.Options),
		keywords: NewKeywordSource(d, cfg.UpperCaseKeywords, nil),
		observe:  cfg.Observer,
	}
}

// Dialect returns the engine's dialect.
func (e *Engine) Dialect() *dialect.Dialect { return e.d }

// Source returns the schema completion source.
func (e *Engine) Source() *Source { return e.source }

// UpdateSchema replaces the schema description, keeping the options.
func (e *Engine) UpdateSchema(desc namespace.Description) {
	e.source.Configure(desc, e.opts)
}

// Parse returns a snapshot of text in the engine's dialect.
func (e *Engine) Parse(text string) *Snapshot {
	return NewSnapshot(text, e.d)
}

// Complete returns the ranked completions for doc at pos, or nil when no
// source applies. The result's options are already filtered against the
// text typed between From and pos.
func (e *Engine) Complete(doc Document, pos int, explicit bool) *Result {
	if doc == nil {
		return nil
	}
	req := Request{Doc: doc, Pos: clamp(pos, 0, doc.Len()), Explicit: explicit}

	start := time.Now()
	names, ok := e.source.Complete(req)
	e.report(SourceSchema, start, names, ok)

	start = time.Now()
	words, ok := e.keywords.Complete(req)
	e.report(SourceKeyword, start, words, ok)

	res := Merge(names, words)
	if res == nil {
		return nil
	}
	res.Options = Filter(res.Typed(doc, req.Pos), res.Options)
	return res
}

// CompleteText parses text and completes it at pos.
func (e *Engine) CompleteText(text string, pos int, explicit bool) *Result {
	return e.Complete(e.Parse(text), pos, explicit)
}

func (e *Engine) report(source string, start time.Time, r *Result, ok bool) {
	if e.observe == nil {
		return
	}
	n := 0
	if r != nil {
		n = len(r.Options)
	}
	e.observe(source, start, n, ok)
}
