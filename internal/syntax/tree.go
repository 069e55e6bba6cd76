package syntax

import "strings"

// Node is a handle on a node of a parsed tree. Navigation methods return
// nil, never a typed nil, when the link does not exist.
type Node interface {
	Kind() Kind
	From() int
	To() int
	Parent() Node
	FirstChild() Node
	LastChild() Node
	NextSibling() Node
	PrevSibling() Node
}

// Tree is the result of Parse.
type Tree struct {
	text string
	root *node
}

// Root returns the Script node.
func (t *Tree) Root() Node { return t.root }

// Text returns the parsed text.
func (t *Tree) Text() string { return t.text }

// String formats the whole tree.
func (t *Tree) String() string { return Format(t.root) }

type node struct {
	kind     Kind
	from, to int
	parent   *node
	index    int
	children []*node
}

func wrap(n *node) Node {
	if n == nil {
		return nil
	}
	return n
}

func (n *node) Kind() Kind { return n.kind }
func (n *node) From() int  { return n.from }
func (n *node) To() int    { return n.to }

func (n *node) Parent() Node { return wrap(n.parent) }

func (n *node) FirstChild() Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[0]
}

func (n *node) LastChild() Node {
	if len(n.children) == 0 {
		return nil
	}
	return n.children[len(n.children)-1]
}

func (n *node) NextSibling() Node {
	if n.parent == nil || n.index+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[n.index+1]
}

func (n *node) PrevSibling() Node {
	if n.parent == nil || n.index == 0 {
		return nil
	}
	return n.parent.children[n.index-1]
}

func (n *node) append(child *node) {
	n.children = append(n.children, child)
	if child.to > n.to {
		n.to = child.to
	}
}

// link sets parent and index on every descendant of n.
func (n *node) link() {
	for i, ch := range n.children {
		ch.parent = n
		ch.index = i
		ch.link()
	}
}

// ResolveInner returns the innermost node around pos. With side < 0 a node
// must end at or after pos and start before it, with side > 0 it must start
// at or before pos and end after it, and with side == 0 either boundary
// counts. The root is returned when no child matches.
func ResolveInner(root Node, pos, side int) Node {
	if root == nil {
		return nil
	}
	cur := root
	for {
		var next Node
		for ch := cur.FirstChild(); ch != nil; ch = ch.NextSibling() {
			if ch.From() > pos {
				break
			}
			if covers(ch, pos, side) {
				next = ch
				break
			}
		}
		if next == nil {
			return cur
		}
		cur = next
	}
}

func covers(n Node, pos, side int) bool {
	switch {
	case side < 0:
		return n.From() < pos && pos <= n.To()
	case side > 0:
		return n.From() <= pos && pos < n.To()
	default:
		return n.From() <= pos && pos <= n.To()
	}
}

// Format renders a subtree as Kind(Child,Child(...)).
func Format(n Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	format(&sb, n)
	return sb.String()
}

func format(sb *strings.Builder, n Node) {
	sb.WriteString(n.Kind().String())
	ch := n.FirstChild()
	if ch == nil {
		return
	}
	sb.WriteByte('(')
	for first := true; ch != nil; ch = ch.NextSibling() {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		format(sb, ch)
	}
	sb.WriteByte(')')
}
