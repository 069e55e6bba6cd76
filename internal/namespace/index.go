package namespace

import "strings"

// Config holds the options of Build besides the description.
type Config struct {
	// Tables replaces the table list of the default schema.
	Tables []Candidate
	// Schemas replaces the schema part of the top-level list.
	Schemas []Candidate
	// DefaultTable names a table of the default schema whose columns are
	// offered unqualified.
	DefaultTable string
	// DefaultSchema names the schema unqualified tables belong to.
	DefaultSchema string
	// Quote wraps names that need quoting. Defaults to '"'.
	Quote rune
}

// Node is one level of an Index. Nodes are never modified after Build.
type Node struct {
	candidates []Candidate
	labels     map[string]int
	children   map[string]*Node
	order      []string
	selfs      map[string]Candidate
}

func newNode() *Node {
	return &Node{}
}

// Candidates returns the completions offered at this level.
func (n *Node) Candidates() []Candidate {
	out := make([]Candidate, len(n.candidates))
	copy(out, n.candidates)
	return out
}

// Len returns the number of candidates at this level.
func (n *Node) Len() int { return len(n.candidates) }

// Child returns a nested level by its literal name.
func (n *Node) Child(name string) (*Node, bool) {
	ch, ok := n.children[name]
	return ch, ok
}

// Children returns the names of nested levels in insertion order.
func (n *Node) Children() []string {
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out
}

func (n *Node) child(name string) *Node {
	if ch, ok := n.children[name]; ok {
		return ch
	}
	if n.children == nil {
		n.children = make(map[string]*Node)
	}
	ch := newNode()
	n.children[name] = ch
	n.order = append(n.order, name)
	return ch
}

// add appends c, replacing an earlier candidate with the same label in
// place.
func (n *Node) add(c Candidate) {
	if i, ok := n.labels[c.Label]; ok {
		n.candidates[i] = c
		return
	}
	if n.labels == nil {
		n.labels = make(map[string]int)
	}
	n.labels[c.Label] = len(n.candidates)
	n.candidates = append(n.candidates, c)
}

func (n *Node) addAll(cs []Candidate) {
	for _, c := range cs {
		n.add(c)
	}
}

// childCandidate is the candidate listing child name under n.
func (n *Node) childCandidate(name, typ string, quote rune) Candidate {
	if c, ok := n.selfs[name]; ok {
		return c
	}
	return NameCandidate(name, typ, quote)
}

// listChildren adds one candidate of type typ per nested level.
func (n *Node) listChildren(typ string, quote rune, skipEmpty bool) {
	for _, name := range n.order {
		if skipEmpty && name == "" {
			continue
		}
		n.add(n.childCandidate(name, typ, quote))
	}
}

// Index is a compiled description.
type Index struct {
	root          *Node
	defaultSchema *Node
	defaultTable  string
}

// Root returns the top level.
func (x *Index) Root() *Node { return x.root }

// DefaultSchema returns the level unqualified tables live in.
func (x *Index) DefaultSchema() *Node { return x.defaultSchema }

// Build compiles desc. The result is safe for concurrent use.
func Build(desc Description, cfg Config) *Index {
	quote := cfg.Quote
	if quote == 0 {
		quote = '"'
	}
	root := newNode()
	def := root.child(cfg.DefaultSchema)

	for _, e := range desc {
		base := root
		if !strings.Contains(unescapedDots(e.Name), ".") && len(e.Children) == 0 {
			base = def
		}
		insert(base, e, quote)
	}
	for _, name := range def.order {
		fill(def.children[name], TypeColumn, quote)
	}

	if cfg.Tables != nil {
		def.addAll(cfg.Tables)
	} else {
		def.listChildren(TypeTable, quote, false)
	}
	if cfg.DefaultTable != "" {
		if t, ok := def.children[cfg.DefaultTable]; ok {
			def.addAll(t.candidates)
		}
	}

	root.addAll(def.candidates)
	if cfg.Schemas != nil {
		root.addAll(cfg.Schemas)
	} else {
		root.listChildren(TypeSchema, quote, true)
	}

	for _, name := range root.order {
		if ch := root.children[name]; ch != def {
			fill(ch, TypeTable, quote)
		}
	}

	return &Index{root: root, defaultSchema: def, defaultTable: cfg.DefaultTable}
}

// insert files e under base.
func insert(base *Node, e Entry, quote rune) {
	parts := splitName(e.Name)
	parent := base
	for _, part := range parts[:len(parts)-1] {
		parent = parent.child(part)
	}
	last := parts[len(parts)-1]
	n := parent.child(last)
	if e.Self != nil {
		if parent.selfs == nil {
			parent.selfs = make(map[string]Candidate)
		}
		parent.selfs[last] = *e.Self
	}
	for _, opt := range e.Columns {
		n.add(opt.Candidate(quote))
	}
	for _, ch := range e.Children {
		insert(n, ch, quote)
	}
}

// fill lists the children of every level that has no candidates of its
// own, using typ at n and column below it.
func fill(n *Node, typ string, quote rune) {
	if len(n.candidates) == 0 {
		n.listChildren(typ, quote, false)
	}
	for _, name := range n.order {
		fill(n.children[name], TypeColumn, quote)
	}
}

// unescapedDots blanks out escaped dots so that the remaining dots separate
// parts.
func unescapedDots(name string) string {
	return strings.ReplaceAll(name, `\.`, "__")
}

// splitName splits a key on unescaped dots.
func splitName(name string) []string {
	var parts []string
	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		switch {
		case name[i] == '\\' && i+1 < len(name) && name[i+1] == '.':
			sb.WriteByte('.')
			i++
		case name[i] == '.':
			parts = append(parts, sb.String())
			sb.Reset()
		default:
			sb.WriteByte(name[i])
		}
	}
	return append(parts, sb.String())
}

// Descend walks path from the top level. A segment missing at the top level
// is retried in the default schema, and one missing there in the default
// table. It reports false when no level matches.
func (x *Index) Descend(path []string) (*Node, bool) {
	level := x.root
	for _, name := range path {
		for {
			if ch, ok := level.children[name]; ok {
				level = ch
				break
			}
			switch {
			case level == x.root:
				level = x.defaultSchema
				continue
			case level == x.defaultSchema && x.defaultTable != "":
				t, ok := x.defaultSchema.children[x.defaultTable]
				if !ok {
					return nil, false
				}
				level = t
				continue
			}
			return nil, false
		}
	}
	return level, true
}
