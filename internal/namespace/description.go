package namespace

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Description is an ordered schema description. In YAML or JSON form it is a
// mapping from names to either a list of columns (a table) or a nested
// mapping (a schema or other level):
//
//	public.users: [id, name]
//	other:
//	  users: [id, {label: email, type: column, detail: text}]
//	audit:
//	  self: {label: audit, type: schema, detail: archived}
//	  children:
//	    events: [id]
//
// Keys may contain dots to address a nested level directly; `\.` is a
// literal dot.
type Description []Entry

// Entry is one key of a Description.
type Entry struct {
	Name string
	// Self replaces the candidate generated for this entry in its
	// parent's list.
	Self     *Candidate
	Columns  []Option
	Children Description
}

// FromMap builds a description from a table → columns map, in key order.
func FromMap(tables map[string][]string) Description {
	keys := make([]string, 0, len(tables))
	for k := range tables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	desc := make(Description, 0, len(keys))
	for _, k := range keys {
		e := Entry{Name: k}
		for _, col := range tables[k] {
			e.Columns = append(e.Columns, Name(col))
		}
		desc = append(desc, e)
	}
	return desc
}

// UnmarshalYAML decodes a description keeping document order.
func (d *Description) UnmarshalYAML(value *yaml.Node) error {
	desc, err := decodeLevel(value)
	if err != nil {
		return err
	}
	*d = desc
	return nil
}

// UnmarshalJSON decodes a description keeping document order. JSON is read
// through the YAML decoder, which accepts it as a subset.
func (d *Description) UnmarshalJSON(data []byte) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("namespace: %w", err)
	}
	if doc.Kind == 0 {
		*d = nil
		return nil
	}
	return d.UnmarshalYAML(&doc)
}

func decodeLevel(n *yaml.Node) (Description, error) {
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil, nil
		}
		n = n.Content[0]
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("namespace: line %d: expected a mapping", n.Line)
	}

	desc := make(Description, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("namespace: line %d: expected a name", key.Line)
		}
		e, err := decodeEntry(key.Value, val)
		if err != nil {
			return nil, err
		}
		desc = append(desc, e)
	}
	return desc, nil
}

func decodeEntry(name string, val *yaml.Node) (Entry, error) {
	e := Entry{Name: name}
	switch {
	case val.Kind == yaml.ScalarNode && val.Tag == "!!null":
	case val.Kind == yaml.SequenceNode:
		cols, err := decodeColumns(val)
		if err != nil {
			return e, err
		}
		e.Columns = cols
	case val.Kind == yaml.MappingNode && isEntryForm(val):
		for i := 0; i+1 < len(val.Content); i += 2 {
			k, v := val.Content[i].Value, val.Content[i+1]
			var err error
			switch k {
			case "self":
				var c Candidate
				if err = v.Decode(&c); err == nil {
					e.Self = &c
				}
			case "children":
				e.Children, err = decodeLevel(v)
			case "columns":
				e.Columns, err = decodeColumns(v)
			}
			if err != nil {
				return e, fmt.Errorf("namespace: %s.%s: %w", name, k, err)
			}
		}
	case val.Kind == yaml.MappingNode:
		children, err := decodeLevel(val)
		if err != nil {
			return e, err
		}
		e.Children = children
	default:
		return e, fmt.Errorf("namespace: line %d: %s: expected a list or a mapping", val.Line, name)
	}
	return e, nil
}

// isEntryForm reports whether a mapping is {self, children, columns} rather
// than a nested level. The self key is required.
func isEntryForm(n *yaml.Node) bool {
	hasSelf := false
	for i := 0; i < len(n.Content); i += 2 {
		switch n.Content[i].Value {
		case "self":
			hasSelf = true
		case "children", "columns":
		default:
			return false
		}
	}
	return hasSelf
}

func decodeColumns(n *yaml.Node) ([]Option, error) {
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("namespace: line %d: expected a list of columns", n.Line)
	}
	opts := make([]Option, 0, len(n.Content))
	for _, item := range n.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			opts = append(opts, Name(item.Value))
		case yaml.MappingNode:
			var c Candidate
			if err := item.Decode(&c); err != nil {
				return nil, fmt.Errorf("namespace: line %d: %w", item.Line, err)
			}
			opts = append(opts, Explicit(c))
		default:
			return nil, fmt.Errorf("namespace: line %d: expected a column name or candidate", item.Line)
		}
	}
	return opts, nil
}
