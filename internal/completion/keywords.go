package completion

import (
	"strings"

	"github.com/sadopc/sqlhint/internal/dialect"
	"github.com/sadopc/sqlhint/internal/namespace"
	"github.com/sadopc/sqlhint/internal/syntax"
)

// KeywordBoost ranks keywords below schema names.
const KeywordBoost = -1

// maxWordLookback bounds how far back the typed word is searched for.
const maxWordLookback = 256

// KeywordBuilder turns a dialect word into a candidate. typ is one of
// namespace.TypeKeyword, TypeType or TypeVariable.
type KeywordBuilder func(label, typ string) namespace.Candidate

// DefaultKeyword is the KeywordBuilder used when none is given.
func DefaultKeyword(label, typ string) namespace.Candidate {
	return namespace.Candidate{Label: label, Type: typ, Boost: KeywordBoost}
}

// KeywordSource completes the vocabulary of a dialect.
type KeywordSource struct {
	options []namespace.Candidate
}

// NewKeywordSource lists every word of d, upper-cased when upper is set.
// A nil build means DefaultKeyword.
func NewKeywordSource(d *dialect.Dialect, upper bool, build KeywordBuilder) *KeywordSource {
	if d == nil {
		d = dialect.StandardSQL
	}
	if build == nil {
		build = DefaultKeyword
	}
	words := d.Words()
	options := make([]namespace.Candidate, 0, len(words))
	for _, w := range words {
		label := w.Name
		if upper {
			label = strings.ToUpper(label)
		}
		typ := namespace.TypeVariable
		switch w.Category {
		case dialect.Type:
			typ = namespace.TypeType
		case dialect.Keyword:
			typ = namespace.TypeKeyword
		}
		options = append(options, build(label, typ))
	}
	return &KeywordSource{options: options}
}

// Options returns every keyword candidate.
func (k *KeywordSource) Options() []namespace.Candidate {
	out := make([]namespace.Candidate, len(k.options))
	copy(out, k.options)
	return out
}

// Complete offers keywords for the word before the cursor. It gives nothing
// inside quoted names, strings, special variables and comments, or right
// after a dot.
func (k *KeywordSource) Complete(req Request) (*Result, bool) {
	if req.Doc == nil {
		return nil, false
	}
	pos := clamp(req.Pos, 0, req.Doc.Len())
	for n := syntax.ResolveInner(req.Doc.Tree(), pos, -1); n != nil; n = n.Parent() {
		if keywordsExcluded(n.Kind()) {
			return nil, false
		}
	}

	before := req.Doc.Slice(pos-maxWordLookback, pos)
	start := len(before)
	for start > 0 && isWordByte(before[start-1]) {
		start--
	}
	if start == len(before) && !req.Explicit {
		return nil, false
	}
	return &Result{
		From:     pos - (len(before) - start),
		Options:  k.Options(),
		ValidFor: span,
	}, true
}

func keywordsExcluded(k syntax.Kind) bool {
	switch k {
	case syntax.QuotedIdentifier, syntax.SpecialVar, syntax.String,
		syntax.LineComment, syntax.BlockComment, syntax.Dot:
		return true
	}
	return false
}

func isWordByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
