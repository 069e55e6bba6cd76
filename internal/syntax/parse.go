package syntax

import "github.com/sadopc/sqlhint/internal/dialect"

// Parse tokenizes text with d and builds its tree. Parsing never fails:
// unclosed groups and statements end at the last token, and stray closing
// brackets stay as plain tokens.
func Parse(text string, d *dialect.Dialect) *Tree {
	p := &parser{root: &node{kind: Script, to: len(text)}}
	for _, tok := range Tokenize(text, d) {
		p.push(tok)
	}
	p.endStatement()
	groupComposites(p.root)
	p.root.link()
	return &Tree{text: text, root: p.root}
}

type parser struct {
	root  *node
	stmt  *node
	open  []*node // unclosed bracket groups, innermost last
	close []Kind  // closing kind expected by each open group
}

// container is the innermost node new tokens go into.
func (p *parser) container() *node {
	if n := len(p.open); n > 0 {
		return p.open[n-1]
	}
	if p.stmt != nil {
		return p.stmt
	}
	return p.root
}

func (p *parser) push(tok Token) {
	leaf := &node{kind: tok.Kind, from: tok.From, to: tok.To}
	defer p.extend(tok.To)

	if tok.Kind.IsComment() {
		p.container().append(leaf)
		return
	}
	if p.stmt == nil {
		p.stmt = &node{kind: Statement, from: tok.From, to: tok.To}
		p.root.append(p.stmt)
	}

	if closing, group, ok := tok.Kind.closer(); ok {
		g := &node{kind: group, from: tok.From, to: tok.To}
		g.append(leaf)
		p.container().append(g)
		p.open = append(p.open, g)
		p.close = append(p.close, closing)
		return
	}

	switch tok.Kind {
	case Semi:
		p.closeGroups()
		p.stmt.append(leaf)
		p.endStatement()
		return
	case ParenR, BraceR, BracketR:
		if n := len(p.open); n > 0 && p.close[n-1] == tok.Kind {
			p.open[n-1].append(leaf)
			p.open, p.close = p.open[:n-1], p.close[:n-1]
			return
		}
	}
	p.container().append(leaf)
}

// extend stretches every open ancestor to end at or after to.
func (p *parser) extend(to int) {
	for _, g := range p.open {
		if g.to < to {
			g.to = to
		}
	}
	if p.stmt != nil && p.stmt.to < to {
		p.stmt.to = to
	}
}

func (p *parser) closeGroups() {
	p.open, p.close = p.open[:0], p.close[:0]
}

func (p *parser) endStatement() {
	p.closeGroups()
	p.stmt = nil
}

// groupComposites folds runs of name (. name)+ into CompositeIdentifier
// nodes, recursively.
func groupComposites(n *node) {
	for _, ch := range n.children {
		if len(ch.children) > 0 {
			groupComposites(ch)
		}
	}
	if len(n.children) < 3 {
		return
	}
	out := n.children[:0:0]
	for i := 0; i < len(n.children); {
		end := i + 1
		if n.children[i].kind.IsIdentifier() {
			for end+1 < len(n.children) &&
				n.children[end].kind == Dot && n.children[end+1].kind.IsIdentifier() {
				end += 2
			}
		}
		if end-i == 1 {
			out = append(out, n.children[i])
			i++
			continue
		}
		parts := n.children[i:end]
		comp := &node{kind: CompositeIdentifier, from: parts[0].from, to: parts[len(parts)-1].to}
		comp.children = append([]*node(nil), parts...)
		out = append(out, comp)
		i = end
	}
	n.children = out
}
