// Package schema holds the database model produced by introspection and
// turns it, or a description file, into a namespace.Description.
package schema

// Database represents a database with its schemas.
type Database struct {
	Name    string
	Schemas []Schema
}

// Schema represents a database schema (e.g., "public" in PostgreSQL).
type Schema struct {
	Name   string
	Tables []Table
	Views  []View
}

// Table represents a database table.
type Table struct {
	Name    string
	Columns []Column
	Comment string
}

// Column represents a table column.
type Column struct {
	Name     string
	Type     string
	Nullable bool
	Default  string
	IsPK     bool
}

// View represents a database view.
type View struct {
	Name    string
	Columns []Column
}
