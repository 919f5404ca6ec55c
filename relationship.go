package sqlschema

import (
	"fmt"
	"strings"
)

// Rel is the relation kind of an inferred relationship.
type Rel int

// Relation kinds.
const (
	Unk Rel = iota // Unknown.
	O2O            // One to one / has one.
	O2M            // One to many / has many.
	M2O            // Many to one (inverse perspective for O2M).
	M2M            // Many to many.
)

// String returns the relation name.
func (r Rel) String() string {
	s := "Unknown"
	switch r {
	case O2O:
		s = "O2O"
	case O2M:
		s = "O2M"
	case M2O:
		s = "M2O"
	case M2M:
		s = "M2M"
	}
	return s
}

// Relationship is an inferred, typed, directed association between two
// tables, derived from a foreign key.
type Relationship struct {
	// Kind holds the relation kind of the association.
	Kind Rel
	// Source is the table the association is directed from.
	Source *Table
	// Target is the table the association is directed to.
	Target *Table
	// ForeignKey is the foreign key the association was derived from.
	// For M2M associations it is the junction-table foreign key pointing
	// at the source table's side.
	ForeignKey *ForeignKey
	// Junction is the association table of an M2M relationship.
	// Nil for all other kinds.
	Junction *Table
	// Inverse indicates a derived inverse side: the relationship does not
	// own the foreign key but mirrors one that does.
	Inverse bool
}

// M2M indicates if this is a many-to-many relationship.
func (r *Relationship) M2M() bool { return r.Kind == M2M }

// M2O indicates if this is a many-to-one relationship.
func (r *Relationship) M2O() bool { return r.Kind == M2O }

// O2M indicates if this is a one-to-many relationship.
func (r *Relationship) O2M() bool { return r.Kind == O2M }

// O2O indicates if this is a one-to-one relationship.
func (r *Relationship) O2O() bool { return r.Kind == O2O }

// SelfReferential reports if the relationship points back at its own table.
func (r *Relationship) SelfReferential() bool { return r.Source == r.Target }

// String returns a short description of the relationship, e.g.
// "posts -> users (M2O)".
func (r *Relationship) String() string {
	if r.Junction != nil {
		return fmt.Sprintf("%s -> %s (%s via %s)", r.Source.Name, r.Target.Name, r.Kind, r.Junction.Name)
	}
	return fmt.Sprintf("%s -> %s (%s)", r.Source.Name, r.Target.Name, r.Kind)
}

// Relationships returns the direct relationships implied by the schema's
// foreign keys: each foreign key of a non-junction table whose referenced
// table exists yields exactly one M2O relationship toward it. Junction
// tables are excluded; their semantics surface as M2M associations in
// RelationshipGraph. Foreign keys to non-existent tables are silently
// skipped and surface only through Validate.
func (s *Schema) Relationships() []*Relationship {
	var out []*Relationship
	for _, t := range s.tables {
		if s.junction[t] {
			continue
		}
		for _, fk := range t.ForeignKeys {
			ref, ok := s.lookup(fk.RefTable)
			if !ok {
				continue
			}
			out = append(out, &Relationship{
				Kind:       M2O,
				Source:     t,
				Target:     ref,
				ForeignKey: fk,
			})
		}
	}
	return out
}

// RelationshipGraph expands the direct relationships with the inverse
// sides the generator layer needs for bidirectional code emission:
//
//   - A foreign key covered by a uniqueness constraint yields O2O
//     relationships in both directions.
//   - Any other foreign key yields the owning M2O side plus a derived
//     inverse O2M side.
//   - Each junction table whose two foreign keys both resolve yields one
//     M2M pair, one relationship per direction, carrying the junction.
//
// Self-referential foreign keys yield both sides on the same table.
func (s *Schema) RelationshipGraph() []*Relationship {
	var out []*Relationship
	for _, t := range s.tables {
		if s.junction[t] {
			continue
		}
		for _, fk := range t.ForeignKeys {
			ref, ok := s.lookup(fk.RefTable)
			if !ok {
				continue
			}
			if s.uniqueForeignKey(t, fk) {
				out = append(out,
					&Relationship{Kind: O2O, Source: t, Target: ref, ForeignKey: fk},
					&Relationship{Kind: O2O, Source: ref, Target: t, ForeignKey: fk, Inverse: true},
				)
				continue
			}
			out = append(out,
				&Relationship{Kind: M2O, Source: t, Target: ref, ForeignKey: fk},
				&Relationship{Kind: O2M, Source: ref, Target: t, ForeignKey: fk, Inverse: true},
			)
		}
	}
	for _, t := range s.tables {
		if !s.junction[t] {
			continue
		}
		left, lok := s.lookup(t.ForeignKeys[0].RefTable)
		right, rok := s.lookup(t.ForeignKeys[1].RefTable)
		if !lok || !rok {
			// A dangling side disqualifies the association; Validate
			// reports the broken foreign key.
			continue
		}
		out = append(out,
			&Relationship{Kind: M2M, Source: left, Target: right, ForeignKey: t.ForeignKeys[0], Junction: t},
			&Relationship{Kind: M2M, Source: right, Target: left, ForeignKey: t.ForeignKeys[1], Junction: t, Inverse: true},
		)
	}
	return out
}

// uniqueForeignKey reports if the foreign key's source columns are covered
// by a uniqueness constraint, making the association one-to-one: either a
// single source column flagged unique, a unique index over exactly the
// source columns, or the source columns forming the entire primary key.
func (s *Schema) uniqueForeignKey(t *Table, fk *ForeignKey) bool {
	if len(fk.Columns) == 1 {
		if c, ok := t.Column(fk.Columns[0]); ok && c.Unique {
			return true
		}
	}
	if t.uniqueIndexOn(fk.Columns) {
		return true
	}
	pk := t.pkSet()
	if len(pk) == 0 || len(pk) != len(fk.Columns) {
		return false
	}
	for _, c := range fk.Columns {
		if _, ok := pk[strings.ToLower(c)]; !ok {
			return false
		}
	}
	return true
}
