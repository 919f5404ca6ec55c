package sqlschema

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError represents a single schema-consistency finding.
type ValidationError struct {
	Table   string
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Table != "" && e.Column != "":
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	case e.Table != "":
		return fmt.Sprintf("%s: %s", e.Table, e.Message)
	}
	return e.Message
}

// ValidationResult holds the results of schema validation. No finding is
// fatal to the model; the caller decides whether to abort generation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Issues flattens errors and warnings into human-readable issue strings,
// errors first.
func (r *ValidationResult) Issues() []string {
	out := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		out = append(out, e.Error())
	}
	for _, w := range r.Warnings {
		out = append(out, w.Error())
	}
	return out
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	if len(r.Errors) > 0 {
		sb.WriteString("Errors:\n")
		for _, e := range r.Errors {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			sb.WriteString("\n")
		}
	}
	if len(r.Warnings) > 0 {
		sb.WriteString("Warnings:\n")
		for _, w := range r.Warnings {
			sb.WriteString("  - ")
			sb.WriteString(w.Error())
			sb.WriteString("\n")
		}
	}
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

// Validate checks the schema for consistency problems that would break or
// skew code generation. It performs three independent scans over the table
// list:
//
//  1. every table must have at least one primary-key column;
//  2. every foreign key must reference an existing table and existing
//     source columns;
//  3. no two tables may resolve to the same derived entity name.
//
// Validate never fails; it accumulates findings into the result.
//
// Example:
//
//	result := s.Validate()
//	if result.HasErrors() {
//	    log.Fatal("schema is inconsistent:", result)
//	}
func (s *Schema) Validate() *ValidationResult {
	result := &ValidationResult{}
	for _, t := range s.tables {
		validateTable(t, result)
	}
	s.validateForeignKeys(result)
	s.validateEntityNames(result)
	return result
}

// validateTable checks a single table definition.
func validateTable(t *Table, result *ValidationResult) {
	if len(t.Columns) == 0 {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.Name,
			Message: "table has no columns",
		})
	}

	// Check for primary key.
	if len(t.PrimaryKey) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Table:   t.Name,
			Message: "table has no primary key",
		})
	}
	for _, c := range t.PrimaryKeyColumns() {
		if c.Nullable {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   t.Name,
				Column:  c.Name,
				Message: "primary-key column is nullable",
			})
		}
	}

	// Check for duplicate column names.
	colNames := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		key := strings.ToLower(c.Name)
		if colNames[key] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Column:  c.Name,
				Message: "duplicate column name",
			})
		}
		colNames[key] = true
	}

	// Check that index columns exist.
	for _, idx := range t.Indexes {
		for _, col := range idx.Columns {
			if !colNames[strings.ToLower(col)] {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("index %q references non-existent column %q", idx.Name, col),
				})
			}
		}
	}
}

// validateForeignKeys checks that every foreign key references an existing
// table and that its source columns exist in the owning table.
func (s *Schema) validateForeignKeys(result *ValidationResult) {
	for _, t := range s.tables {
		for _, fk := range t.ForeignKeys {
			if _, ok := s.lookup(fk.RefTable); !ok {
				result.Errors = append(result.Errors, &ValidationError{
					Table:   t.Name,
					Message: fmt.Sprintf("foreign key to non-existent table %q", fk.RefTable),
				})
			}
			for _, col := range fk.Columns {
				if !t.HasColumn(col) {
					result.Errors = append(result.Errors, &ValidationError{
						Table:   t.Name,
						Message: fmt.Sprintf("foreign key references non-existent column %q", col),
					})
				}
			}
		}
	}
}

// validateEntityNames groups tables by their pluralization-normalized
// entity name and flags groups with more than one member.
func (s *Schema) validateEntityNames(result *ValidationResult) {
	groups := make(map[string][]string)
	for _, t := range s.tables {
		key := normalizeEntity(s.cfg.rules, t.Name)
		groups[key] = append(groups[key], t.Name)
	}
	keys := make([]string, 0, len(groups))
	for key, members := range groups {
		if len(members) > 1 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		result.Errors = append(result.Errors, &ValidationError{
			Message: fmt.Sprintf("Multiple tables map to entity name %q: %s",
				s.EntityName(groups[key][0]), strings.Join(groups[key], ", ")),
		})
	}
}
