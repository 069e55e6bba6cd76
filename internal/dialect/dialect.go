// Package dialect describes SQL dialects: their keyword, type and builtin
// vocabularies and the lexical rules the tokenizer in package syntax follows.
//
// A Dialect is built once with Define and never changes afterwards, so the
// presets declared in this package can be shared freely between goroutines.
package dialect

import (
	"sort"
	"strings"
)

// SQLKeywords is the keyword vocabulary shared by most dialects.
const SQLKeywords = "absolute action add after all allocate alter and any are as asc assertion at " +
	"authorization before begin between both breadth by call cascade cascaded case cast catalog " +
	"check close collate collation column commit condition connect connection constraint " +
	"constraints constructor continue corresponding count create cross cube current " +
	"current_date current_default_transform_group current_transform_group_for_type " +
	"current_path current_role current_time current_timestamp current_user cursor cycle data " +
	"day deallocate declare default deferrable deferred delete depth deref desc describe " +
	"descriptor deterministic diagnostics disconnect distinct do domain drop dynamic each else " +
	"elseif end end-exec equals escape except exception exec execute exists exit external fetch " +
	"first for foreign found from free full function general get global go goto grant group " +
	"grouping handle having hold hour identity if immediate in indicator initially inner inout " +
	"input insert intersect into is isolation join key language last lateral leading leave left " +
	"level like limit local localtime localtimestamp locator loop map match method minute " +
	"modifies module month names natural nesting new next no none not of old on only open " +
	"option or order ordinality out outer output overlaps pad parameter partial path prepare " +
	"preserve primary prior privileges procedure public read reads recursive redo ref " +
	"references referencing relative release repeat resignal restrict result return returns " +
	"revoke right role rollback rollup routine row rows savepoint schema scroll search second " +
	"section select session session_user set sets signal similar size some space specific " +
	"specifictype sql sqlexception sqlstate sqlwarning start state static system_user table " +
	"temporary then timezone_hour timezone_minute to trailing transaction translation treat " +
	"trigger under undo union unique unnest until update usage user using value values view " +
	"when whenever where while with without work write year zone "

// SQLTypes is the type-name vocabulary shared by most dialects.
const SQLTypes = "array binary bit boolean char character clob date decimal double float int " +
	"integer interval large national nchar nclob numeric object precision real smallint time " +
	"timestamp varchar varying zone "

// DefaultOperatorChars is used when a Spec leaves OperatorChars empty.
const DefaultOperatorChars = "*+-%<>!=&|~^/"

// Category classifies a word of a dialect vocabulary.
type Category int

const (
	// Keyword is a reserved or non-reserved keyword.
	Keyword Category = iota
	// Type is a data type name.
	Type
	// Builtin is a builtin function or client command.
	Builtin
	// Bool is one of the literals true and false.
	Bool
	// Null is one of the literals null and unknown.
	Null
)

// String returns the lower-case name of the category.
func (c Category) String() string {
	switch c {
	case Keyword:
		return "keyword"
	case Type:
		return "type"
	case Builtin:
		return "builtin"
	case Bool:
		return "bool"
	case Null:
		return "null"
	default:
		return "unknown"
	}
}

// Spec configures a dialect. The zero value describes standard SQL.
type Spec struct {
	// Name identifies the dialect in the registry.
	Name string
	// Keywords, Types and Builtin are space-separated word lists. When
	// Keywords is empty the shared SQLKeywords and SQLTypes are used and
	// Types and Builtin are ignored.
	Keywords string
	Types    string
	Builtin  string

	// BackslashEscapes enables backslash escapes in regular strings.
	BackslashEscapes bool
	// HashComments makes # start a line comment.
	HashComments bool
	// SlashComments makes // start a line comment.
	SlashComments bool
	// SpaceAfterDashes only recognizes -- comments followed by a space.
	SpaceAfterDashes bool
	// DoubleDollarQuotedStrings treats $$...$$ and $tag$...$tag$ as strings.
	DoubleDollarQuotedStrings bool
	// DoubleQuotedStrings treats "..." as a string instead of an identifier.
	DoubleQuotedStrings bool
	// CharSetCasts enables N'str' and _utf8'str'.
	CharSetCasts bool
	// PLSQLQuotingMechanism enables q'[str]' style literals.
	PLSQLQuotingMechanism bool
	// UnquotedBitLiterals enables 0b1010 bit literals.
	UnquotedBitLiterals bool
	// TreatBitsAsBytes lets b'...' hold arbitrary bytes.
	TreatBitsAsBytes bool

	// OperatorChars is the set of characters operators are made of.
	// Defaults to DefaultOperatorChars.
	OperatorChars string
	// SpecialVar is the set of characters that start a special variable.
	// Defaults to "?" unless NoSpecialVar is set.
	SpecialVar   string
	NoSpecialVar bool
	// IdentifierQuotes lists the characters that quote identifiers. The
	// first one is used when quoting completions. Defaults to `"`.
	IdentifierQuotes string
}

// Word is one entry of a dialect vocabulary.
type Word struct {
	Name     string
	Category Category
}

// Dialect is an immutable, resolved Spec.
type Dialect struct {
	spec  Spec
	words map[string]Category
}

// Define resolves spec into a Dialect, filling in defaults.
func Define(spec Spec) *Dialect {
	if spec.OperatorChars == "" {
		spec.OperatorChars = DefaultOperatorChars
	}
	if spec.SpecialVar == "" && !spec.NoSpecialVar {
		spec.SpecialVar = "?"
	}
	if spec.IdentifierQuotes == "" {
		spec.IdentifierQuotes = `"`
	}

	var words map[string]Category
	if spec.Keywords != "" {
		words = buildWords(spec.Keywords, spec.Types, spec.Builtin)
	} else {
		words = buildWords(SQLKeywords, SQLTypes, "")
	}
	return &Dialect{spec: spec, words: words}
}

func buildWords(keywords, types, builtin string) map[string]Category {
	words := map[string]Category{
		"true":    Bool,
		"false":   Bool,
		"null":    Null,
		"unknown": Null,
	}
	for _, w := range strings.Fields(keywords) {
		words[w] = Keyword
	}
	for _, w := range strings.Fields(types) {
		words[w] = Type
	}
	for _, w := range strings.Fields(builtin) {
		words[w] = Builtin
	}
	return words
}

// Name returns the registry name of the dialect.
func (d *Dialect) Name() string { return d.spec.Name }

// Spec returns a copy of the resolved spec.
func (d *Dialect) Spec() Spec { return d.spec }

// Word reports the category of a word. Lookups are exact; callers lower-case
// the word first.
func (d *Dialect) Word(word string) (Category, bool) {
	c, ok := d.words[word]
	return c, ok
}

// Words returns the vocabulary sorted by name.
func (d *Dialect) Words() []Word {
	out := make([]Word, 0, len(d.words))
	for name, c := range d.words {
		out = append(out, Word{Name: name, Category: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsOperatorChar reports whether ch may appear in an operator.
func (d *Dialect) IsOperatorChar(ch byte) bool {
	return strings.IndexByte(d.spec.OperatorChars, ch) >= 0
}

// IsSpecialVarChar reports whether ch starts a special variable.
func (d *Dialect) IsSpecialVarChar(ch byte) bool {
	return strings.IndexByte(d.spec.SpecialVar, ch) >= 0
}

// IsIdentifierQuote reports whether ch opens a quoted identifier.
func (d *Dialect) IsIdentifierQuote(ch byte) bool {
	return strings.IndexByte(d.spec.IdentifierQuotes, ch) >= 0
}

// QuoteChar is the character used to quote synthesized identifiers.
func (d *Dialect) QuoteChar() rune {
	return rune(d.spec.IdentifierQuotes[0])
}
