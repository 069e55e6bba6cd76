// Package namespace compiles a schema description into a read-only
// schema → table → column index used to answer qualified completions.
package namespace

import "regexp"

// Candidate types.
const (
	TypeSchema   = "schema"
	TypeTable    = "table"
	TypeColumn   = "column"
	TypeKeyword  = "keyword"
	TypeConstant = "constant"
	TypeType     = "type"
	TypeVariable = "variable"
)

// Candidate is one completion suggestion.
type Candidate struct {
	Label string `yaml:"label" json:"label"`
	Type  string `yaml:"type,omitempty" json:"type,omitempty"`
	// Detail is extra text for front-ends, such as a column's data type.
	Detail string `yaml:"detail,omitempty" json:"detail,omitempty"`
	Boost  int    `yaml:"boost,omitempty" json:"boost,omitempty"`
	// Apply replaces Label as the inserted text when set.
	Apply string `yaml:"apply,omitempty" json:"apply,omitempty"`
}

// Text returns the text inserted when the candidate is accepted.
func (c Candidate) Text() string {
	if c.Apply != "" {
		return c.Apply
	}
	return c.Label
}

var plainName = regexp.MustCompile(`^[A-Za-z_\x{C0}-\x{FFFF}][A-Za-z0-9_\x{C0}-\x{FFFF}]*$`)

// NameCandidate builds a candidate for a schema object name. Names that are
// not plain identifiers get an Apply text wrapped in quote.
func NameCandidate(label, typ string, quote rune) Candidate {
	c := Candidate{Label: label, Type: typ}
	if !plainName.MatchString(label) {
		q := string(quote)
		c.Apply = q + label + q
	}
	return c
}

// Option is a column entry of a description: either a bare name or a
// candidate passed through as written.
type Option struct {
	name     string
	explicit *Candidate
}

// Name returns an option for a plain column name.
func Name(name string) Option { return Option{name: name} }

// Explicit returns an option that is used unchanged.
func Explicit(c Candidate) Option { return Option{explicit: &c} }

// IsExplicit reports whether the option carries its own candidate.
func (o Option) IsExplicit() bool { return o.explicit != nil }

// Label returns the option's name or its candidate's label.
func (o Option) Label() string {
	if o.explicit != nil {
		return o.explicit.Label
	}
	return o.name
}

// Candidate resolves the option. Plain names become column candidates.
func (o Option) Candidate(quote rune) Candidate {
	if o.explicit != nil {
		return *o.explicit
	}
	return NameCandidate(o.name, TypeColumn, quote)
}
