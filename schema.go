package sqlschema

import (
	"sort"
	"strings"

	"github.com/go-openapi/inflect"
)

// defaultAuditSuffixes are the table-name suffixes recognized as audit
// (history/versioning) tables, e.g. Hibernate Envers revision tables.
var defaultAuditSuffixes = []string{"_aud", "_audit"}

// defaultAuditNames are literal table names recognized as audit tables.
var defaultAuditNames = []string{"revision_info"}

// config holds the construction-time configuration of a Schema.
type config struct {
	name          string
	dialect       string
	auditSuffixes []string
	auditNames    []string
	rules         *inflect.Ruleset
}

// Option configures schema construction.
type Option func(*config) error

// WithName sets the schema (database) name.
func WithName(name string) Option {
	return func(c *config) error {
		c.name = name
		return nil
	}
}

// WithDialect records the SQL dialect the schema was sourced from
// (e.g. "postgres", "mysql", "sqlite").
func WithDialect(dialect string) Option {
	return func(c *config) error {
		c.dialect = dialect
		return nil
	}
}

// WithAuditSuffixes adds table-name suffixes recognized as audit tables,
// on top of the defaults ("_aud", "_audit").
func WithAuditSuffixes(suffixes ...string) Option {
	return func(c *config) error {
		for _, s := range suffixes {
			if s == "" {
				return NewConfigError("AuditSuffixes", s, "suffix cannot be empty")
			}
			c.auditSuffixes = append(c.auditSuffixes, strings.ToLower(s))
		}
		return nil
	}
}

// WithAuditNames adds literal table names recognized as audit tables,
// on top of the default ("revision_info").
func WithAuditNames(names ...string) Option {
	return func(c *config) error {
		for _, n := range names {
			if n == "" {
				return NewConfigError("AuditNames", n, "name cannot be empty")
			}
			c.auditNames = append(c.auditNames, strings.ToLower(n))
		}
		return nil
	}
}

// WithNamingRules overrides the pluralization ruleset used when deriving
// entity names for collision detection.
func WithNamingRules(r *inflect.Ruleset) Option {
	return func(c *config) error {
		if r == nil {
			return NewConfigError("NamingRules", nil, "ruleset cannot be nil")
		}
		c.rules = r
		return nil
	}
}

// Schema is an immutable aggregate of tables with a classification of each
// table as entity, junction or audit. It is built once per generation run
// and holds no mutable state afterwards.
type Schema struct {
	cfg    *config
	tables []*Table
	// byName indexes tables by lower-cased name. With case-insensitive
	// duplicates, the first table wins; Validate flags the conflict.
	byName map[string]*Table
	// classification computed at construction.
	junction map[*Table]bool
	audit    map[*Table]bool
}

// New builds a schema from the given tables. The table list is captured
// as-is and must not be mutated by the caller afterwards.
func New(tables []*Table, opts ...Option) (*Schema, error) {
	cfg := &config{
		auditSuffixes: append([]string(nil), defaultAuditSuffixes...),
		auditNames:    append([]string(nil), defaultAuditNames...),
		rules:         rules,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	s := &Schema{
		cfg:      cfg,
		tables:   tables,
		byName:   make(map[string]*Table, len(tables)),
		junction: make(map[*Table]bool),
		audit:    make(map[*Table]bool),
	}
	for _, t := range tables {
		if t == nil {
			return nil, NewConfigError("Tables", nil, "table cannot be nil")
		}
		t.normalizePK()
		key := strings.ToLower(t.Name)
		if _, ok := s.byName[key]; !ok {
			s.byName[key] = t
		}
	}
	for _, t := range tables {
		switch {
		case s.isAudit(t):
			s.audit[t] = true
		case junctionShaped(t):
			s.junction[t] = true
		}
	}
	return s, nil
}

// Name returns the schema (database) name, if set.
func (s *Schema) Name() string { return s.cfg.name }

// Dialect returns the SQL dialect the schema was sourced from, if set.
func (s *Schema) Dialect() string { return s.cfg.dialect }

// Tables returns all tables of the schema, in construction order.
func (s *Schema) Tables() []*Table {
	return append([]*Table(nil), s.tables...)
}

// Table returns the table with the given name (case-insensitive).
// It returns a TableNotFoundError if no such table exists.
func (s *Schema) Table(name string) (*Table, error) {
	if t, ok := s.lookup(name); ok {
		return t, nil
	}
	return nil, NewTableNotFoundError(name)
}

// lookup resolves a table by case-insensitive name.
func (s *Schema) lookup(name string) (*Table, bool) {
	t, ok := s.byName[strings.ToLower(name)]
	return t, ok
}

// EntityTables returns the tables eligible for CRUD generation: all tables
// that are neither junction nor audit tables.
func (s *Schema) EntityTables() []*Table {
	out := make([]*Table, 0, len(s.tables))
	for _, t := range s.tables {
		if !s.junction[t] && !s.audit[t] {
			out = append(out, t)
		}
	}
	return out
}

// JunctionTables returns the pure many-to-many association tables: tables
// with exactly two foreign keys whose combined source columns form the
// entire primary key.
func (s *Schema) JunctionTables() []*Table {
	out := make([]*Table, 0, len(s.junction))
	for _, t := range s.tables {
		if s.junction[t] {
			out = append(out, t)
		}
	}
	return out
}

// AuditTables returns the tables recognized as audit/versioning tables by
// naming convention. Audit classification takes precedence over junction
// classification.
func (s *Schema) AuditTables() []*Table {
	out := make([]*Table, 0, len(s.audit))
	for _, t := range s.tables {
		if s.audit[t] {
			out = append(out, t)
		}
	}
	return out
}

// IsJunctionTable reports if the named table (case-insensitive) is
// classified as a junction table in this schema.
func (s *Schema) IsJunctionTable(name string) bool {
	t, ok := s.lookup(name)
	return ok && s.junction[t]
}

// IsAuditTable reports if the named table (case-insensitive) is classified
// as an audit table in this schema.
func (s *Schema) IsAuditTable(name string) bool {
	t, ok := s.lookup(name)
	return ok && s.audit[t]
}

// EntityName derives the entity (type) name for the given table name using
// the schema's naming rules (see WithNamingRules).
func (s *Schema) EntityName(table string) string {
	return entityName(s.cfg.rules, table)
}

// EntityNames returns the derived entity names of all entity tables,
// sorted alphabetically.
func (s *Schema) EntityNames() []string {
	tables := s.EntityTables()
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, s.EntityName(t.Name))
	}
	sort.Strings(names)
	return names
}

func (s *Schema) isAudit(t *Table) bool {
	name := strings.ToLower(t.Name)
	for _, n := range s.cfg.auditNames {
		if name == n {
			return true
		}
	}
	for _, suffix := range s.cfg.auditSuffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// junctionShaped reports if the table has the shape of a many-to-many
// association table: exactly two foreign keys whose combined source
// columns equal the table's full primary key.
func junctionShaped(t *Table) bool {
	if len(t.ForeignKeys) != 2 {
		return false
	}
	pk := t.pkSet()
	if len(pk) == 0 {
		return false
	}
	covered := make(map[string]struct{})
	for _, fk := range t.ForeignKeys {
		for _, c := range fk.Columns {
			covered[strings.ToLower(c)] = struct{}{}
		}
	}
	if len(covered) != len(pk) {
		return false
	}
	for c := range covered {
		if _, ok := pk[c]; !ok {
			return false
		}
	}
	return true
}
