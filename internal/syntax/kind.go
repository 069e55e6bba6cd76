// Package syntax tokenizes SQL text for a dialect and groups the tokens into
// a shallow tree of statements, bracketed groups and composite identifiers.
//
// The tree does not try to understand SQL grammar. It only carries enough
// structure for completion to look at the tokens around the cursor.
package syntax

// Kind is the type of a token or tree node.
type Kind int

// Leaf kinds produced by the tokenizer.
const (
	Invalid Kind = iota
	Keyword
	Type
	Builtin
	Bool
	Null
	Identifier
	QuotedIdentifier
	SpecialVar
	String
	Number
	Bits
	Bytes
	Operator
	Punctuation
	Dot
	Semi
	ParenL
	ParenR
	BraceL
	BraceR
	BracketL
	BracketR
	LineComment
	BlockComment

	// Container kinds produced by the parser.
	Script
	Statement
	CompositeIdentifier
	Parens
	Braces
	Brackets
)

var kindNames = [...]string{
	Invalid:             "⚠",
	Keyword:             "Keyword",
	Type:                "Type",
	Builtin:             "Builtin",
	Bool:                "Bool",
	Null:                "Null",
	Identifier:          "Identifier",
	QuotedIdentifier:    "QuotedIdentifier",
	SpecialVar:          "SpecialVar",
	String:              "String",
	Number:              "Number",
	Bits:                "Bits",
	Bytes:               "Bytes",
	Operator:            "Operator",
	Punctuation:         "Punctuation",
	Dot:                 ".",
	Semi:                ";",
	ParenL:              "(",
	ParenR:              ")",
	BraceL:              "{",
	BraceR:              "}",
	BracketL:            "[",
	BracketR:            "]",
	LineComment:         "LineComment",
	BlockComment:        "BlockComment",
	Script:              "Script",
	Statement:           "Statement",
	CompositeIdentifier: "CompositeIdentifier",
	Parens:              "Parens",
	Braces:              "Braces",
	Brackets:            "Brackets",
}

// String returns the node name used by Format.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[Invalid]
}

// IsComment reports whether k is a line or block comment.
func (k Kind) IsComment() bool {
	return k == LineComment || k == BlockComment
}

// IsIdentifier reports whether k can stand in a dotted name.
func (k Kind) IsIdentifier() bool {
	return k == Identifier || k == QuotedIdentifier || k == SpecialVar
}

// closer returns the kind that closes an opening bracket and the container
// kind the pair forms.
func (k Kind) closer() (closing, group Kind, ok bool) {
	switch k {
	case ParenL:
		return ParenR, Parens, true
	case BraceL:
		return BraceR, Braces, true
	case BracketL:
		return BracketR, Brackets, true
	}
	return Invalid, Invalid, false
}
