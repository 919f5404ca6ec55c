package sqlschema

import (
	"strings"
)

// Table represents a database table.
type Table struct {
	// Name of the table in the database schema.
	Name string
	// Columns of the table, in declaration order.
	Columns []*Column
	// PrimaryKey holds the primary-key column names, in key order.
	// If empty, it is derived at schema construction from the columns'
	// PrimaryKey flags.
	PrimaryKey []string
	// ForeignKeys of the table.
	ForeignKeys []*ForeignKey
	// Indexes of the table.
	Indexes []*Index
	// Comment of the table, if the source reports one.
	Comment string
}

// Column returns the column with the given name (case-insensitive).
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return nil, false
}

// HasColumn reports if the table has a column with the given name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// PrimaryKeyColumns returns the resolved primary-key columns.
// Names in the PrimaryKey list that do not resolve to a column are skipped.
func (t *Table) PrimaryKeyColumns() []*Column {
	pk := make([]*Column, 0, len(t.PrimaryKey))
	for _, name := range t.PrimaryKey {
		if c, ok := t.Column(name); ok {
			pk = append(pk, c)
		}
	}
	return pk
}

// ForeignKeyForColumn returns the foreign key whose first source column is
// the given column name, if any.
func (t *Table) ForeignKeyForColumn(name string) (*ForeignKey, bool) {
	for _, fk := range t.ForeignKeys {
		if strings.EqualFold(fk.Column(), name) {
			return fk, true
		}
	}
	return nil, false
}

// normalizePK reconciles the primary-key column list with the columns'
// PrimaryKey flags so both views agree. Called once at schema construction.
func (t *Table) normalizePK() {
	if len(t.PrimaryKey) == 0 {
		for _, c := range t.Columns {
			if c.PrimaryKey {
				t.PrimaryKey = append(t.PrimaryKey, c.Name)
			}
		}
		return
	}
	for _, name := range t.PrimaryKey {
		if c, ok := t.Column(name); ok {
			c.PrimaryKey = true
		}
	}
}

// pkSet returns the lower-cased set of primary-key column names.
func (t *Table) pkSet() map[string]struct{} {
	set := make(map[string]struct{}, len(t.PrimaryKey))
	for _, name := range t.PrimaryKey {
		set[strings.ToLower(name)] = struct{}{}
	}
	return set
}

// uniqueIndexOn reports if the table has a unique index covering exactly
// the given column names (order-insensitive).
func (t *Table) uniqueIndexOn(columns []string) bool {
	want := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		want[strings.ToLower(c)] = struct{}{}
	}
	for _, idx := range t.Indexes {
		if !idx.Unique || len(idx.Columns) != len(want) {
			continue
		}
		covered := true
		for _, c := range idx.Columns {
			if _, ok := want[strings.ToLower(c)]; !ok {
				covered = false
				break
			}
		}
		if covered {
			return true
		}
	}
	return false
}
