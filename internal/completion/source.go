// Package completion produces schema-aware completions for SQL text: it
// works out which dotted name the cursor is in, resolves table aliases of
// the statement and looks the name up in a namespace.Index.
package completion

import (
	"regexp"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/sadopc/sqlhint/internal/dialect"
	"github.com/sadopc/sqlhint/internal/namespace"
)

// Options configures a Source besides its description.
type Options struct {
	Tables        []namespace.Candidate
	Schemas       []namespace.Candidate
	DefaultTable  string
	DefaultSchema string
}

// Request asks for completions at Pos, a byte offset into Doc.
type Request struct {
	Doc Document
	Pos int
	// Explicit is set when the user asked for completion rather than it
	// being triggered by typing.
	Explicit bool
}

// Result is a set of completions replacing the text from From to the
// cursor, or to To when To is not zero.
type Result struct {
	From    int
	To      int
	Options []namespace.Candidate
	// ValidFor matches the typed text as long as the result stays valid.
	ValidFor *regexp.Regexp
}

// End returns the end of the replaced range for a request at pos.
func (r *Result) End(pos int) int {
	if r.To > 0 {
		return r.To
	}
	return pos
}

// Typed returns the text typed so far, without a leading quote.
func (r *Result) Typed(doc Text, pos int) string {
	s := doc.Slice(r.From, pos)
	if s != "" && isQuote(s[0]) {
		s = s[1:]
	}
	return s
}

func isQuote(c byte) bool {
	return c == '"' || c == '`' || c == '\'' || c == '['
}

// Source completes schema names. It is safe for concurrent use; Configure
// swaps the index atomically so a request sees either the old or the new
// one.
type Source struct {
	d     *dialect.Dialect
	index atomic.Pointer[namespace.Index]
}

// NewSource builds a source for d. A nil dialect means dialect.StandardSQL.
func NewSource(d *dialect.Dialect, desc namespace.Description, opts Options) *Source {
	if d == nil {
		d = dialect.StandardSQL
	}
	s := &Source{d: d}
	s.Configure(desc, opts)
	return s
}

// Configure rebuilds the index from desc.
func (s *Source) Configure(desc namespace.Description, opts Options) {
	s.index.Store(namespace.Build(desc, namespace.Config{
		Tables:        opts.Tables,
		Schemas:       opts.Schemas,
		DefaultTable:  opts.DefaultTable,
		DefaultSchema: opts.DefaultSchema,
		Quote:         s.d.QuoteChar(),
	}))
}

// Dialect returns the dialect names are quoted for.
func (s *Source) Dialect() *dialect.Dialect { return s.d }

// Index returns the current index.
func (s *Source) Index() *namespace.Index { return s.index.Load() }

// Complete returns the completions for req, or false when none apply.
func (s *Source) Complete(req Request) (*Result, bool) {
	idx := s.index.Load()
	if idx == nil || req.Doc == nil {
		return nil, false
	}
	pos := clamp(req.Pos, 0, req.Doc.Len())

	ctx := ResolveContext(req.Doc.Tree(), req.Doc, pos)
	if ctx.Empty && !req.Explicit {
		return nil, false
	}

	path := ctx.Path
	if len(path) == 1 && ctx.Aliases != nil {
		if target, ok := ctx.Aliases[path[0]]; ok {
			path = target
		}
	}
	node, ok := idx.Descend(path)
	if !ok {
		return nil, false
	}

	options := node.Candidates()
	if node == idx.Root() && len(ctx.Aliases) > 0 {
		names := make([]string, 0, len(ctx.Aliases))
		for name := range ctx.Aliases {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			options = append(options, namespace.Candidate{Label: name, Type: namespace.TypeConstant})
		}
	}

	res := &Result{From: ctx.Anchor, Options: options, ValidFor: span}
	if ctx.Quote != 0 {
		closing := closingQuote(ctx.Quote)
		res.Options = quoteCandidates(ctx.Quote, closing, options)
		res.ValidFor = quotedSpan(ctx.Quote, closing)
		if req.Doc.Slice(pos, pos+1) == string(closing) {
			res.To = pos + 1
		}
	}
	return res, true
}

func closingQuote(q rune) rune {
	if q == '[' {
		return ']'
	}
	return q
}

// quoteCandidates wraps every label in quotes and drops Apply so the quoted
// label is inserted as is.
func quoteCandidates(open, closing rune, options []namespace.Candidate) []namespace.Candidate {
	out := make([]namespace.Candidate, len(options))
	for i, c := range options {
		if c.Label == "" || rune(c.Label[0]) != open {
			c.Label = string(open) + c.Label + string(closing)
		}
		c.Apply = ""
		out[i] = c
	}
	return out
}

var (
	span = regexp.MustCompile(`^\w*$`)

	quotedSpansMu sync.Mutex
	quotedSpans   = map[rune]*regexp.Regexp{}
)

func quotedSpan(open, closing rune) *regexp.Regexp {
	quotedSpansMu.Lock()
	defer quotedSpansMu.Unlock()
	if re, ok := quotedSpans[open]; ok {
		return re
	}
	o := regexp.QuoteMeta(string(open))
	c := regexp.QuoteMeta(string(closing))
	re := regexp.MustCompile(`^` + o + `?\w*` + c + `?$`)
	quotedSpans[open] = re
	return re
}
