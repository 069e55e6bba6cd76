package schema

import (
	"strings"

	"github.com/sadopc/sqlhint/internal/namespace"
)

// DescribeOptions controls how Describe lays out the description.
type DescribeOptions struct {
	// Database keeps only the database with this name. Empty keeps all.
	Database string
	// QualifyDatabase nests schemas under their database, giving
	// database.schema.table paths.
	QualifyDatabase bool
	// Quote wraps names that need quoting. Defaults to '"'.
	Quote rune
}

// Describe converts introspected databases into a description with one
// nested level per schema and one entry per table or view. Columns carry
// their data type and key flags as detail.
func Describe(dbs []Database, opts DescribeOptions) namespace.Description {
	quote := opts.Quote
	if quote == 0 {
		quote = '"'
	}

	var desc namespace.Description
	for _, db := range dbs {
		if opts.Database != "" && db.Name != opts.Database {
			continue
		}
		schemas := describeSchemas(db.Schemas, quote)
		if len(schemas) == 0 {
			continue
		}
		if opts.QualifyDatabase {
			desc = append(desc, namespace.Entry{Name: escapeName(db.Name), Children: schemas})
			continue
		}
		desc = append(desc, schemas...)
	}
	return desc
}

func describeSchemas(schemas []Schema, quote rune) namespace.Description {
	var out namespace.Description
	for _, s := range schemas {
		var tables namespace.Description
		for _, t := range s.Tables {
			tables = append(tables, describeTable(t.Name, t.Comment, t.Columns, quote))
		}
		for _, v := range s.Views {
			tables = append(tables, describeTable(v.Name, "view", v.Columns, quote))
		}
		if len(tables) == 0 {
			continue
		}
		out = append(out, namespace.Entry{Name: escapeName(s.Name), Children: tables})
	}
	return out
}

func describeTable(name, detail string, cols []Column, quote rune) namespace.Entry {
	e := namespace.Entry{Name: escapeName(name)}
	if detail != "" {
		self := namespace.NameCandidate(name, namespace.TypeTable, quote)
		self.Detail = detail
		e.Self = &self
	}
	for _, col := range cols {
		c := namespace.NameCandidate(col.Name, namespace.TypeColumn, quote)
		c.Detail = ColumnDetail(col)
		e.Columns = append(e.Columns, namespace.Explicit(c))
	}
	return e
}

// ColumnDetail renders the data type and flags of col, e.g.
// "integer PK NOT NULL".
func ColumnDetail(col Column) string {
	parts := make([]string, 0, 3)
	if col.Type != "" {
		parts = append(parts, col.Type)
	}
	if col.IsPK {
		parts = append(parts, "PK")
	}
	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	return strings.Join(parts, " ")
}

// escapeName keeps dots inside a name from splitting it into levels.
func escapeName(name string) string {
	return strings.ReplaceAll(name, ".", `\.`)
}
