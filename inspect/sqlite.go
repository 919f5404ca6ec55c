package inspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/apigen-dev/sqlschema"
)

// sqliteInspector builds the schema model from sqlite_master and the
// table_info/foreign_key_list/index_list pragmas of a SQLite database.
type sqliteInspector struct {
	db  *sql.DB
	cfg *config
}

func (s *sqliteInspector) Inspect(ctx context.Context) (*sqlschema.Schema, error) {
	names, err := s.tableNames(ctx)
	if err != nil {
		return nil, err
	}
	tables, err := inspectTables(ctx, s.cfg, names, s.table)
	if err != nil {
		return nil, err
	}
	return sqlschema.New(tables, s.cfg.schemaOptions("sqlite", s.cfg.schema)...)
}

func (s *sqliteInspector) tableNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		if s.cfg.keep(name) {
			names = append(names, name)
		}
	}
	return names, rows.Err()
}

func (s *sqliteInspector) table(ctx context.Context, name string) (*sqlschema.Table, error) {
	t := &sqlschema.Table{Name: name}
	if err := s.columns(ctx, t); err != nil {
		return nil, err
	}
	if err := s.foreignKeys(ctx, t); err != nil {
		return nil, err
	}
	if err := s.indexes(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// quoteIdent quotes an identifier for interpolation into a PRAGMA
// statement, which does not accept bind parameters.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (s *sqliteInspector) columns(ctx context.Context, t *sqlschema.Table) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(t.Name)))
	if err != nil {
		return err
	}
	defer rows.Close()

	// pk position => column name, to restore primary-key order.
	pkOrder := make(map[int]string)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, rawType    string
			defaultValue     sql.NullString
		)
		if err := rows.Scan(&cid, &name, &rawType, &notNull, &defaultValue, &pk); err != nil {
			return err
		}
		c := &sqlschema.Column{
			Name:     name,
			RawType:  rawType,
			Type:     sqlschema.ParseColumnType(rawType),
			Nullable: notNull == 0,
		}
		if defaultValue.Valid {
			v := defaultValue.String
			c.Default = &v
		}
		if pk > 0 {
			c.PrimaryKey = true
			pkOrder[pk] = name
		}
		t.Columns = append(t.Columns, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for i := 1; i <= len(pkOrder); i++ {
		if name, ok := pkOrder[i]; ok {
			t.PrimaryKey = append(t.PrimaryKey, name)
		}
	}
	return nil
}

func (s *sqliteInspector) foreignKeys(ctx context.Context, t *sqlschema.Table) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", quoteIdent(t.Name)))
	if err != nil {
		return err
	}
	defer rows.Close()

	// Rows of a composite key share an id and are ordered by seq.
	byID := make(map[int]*sqlschema.ForeignKey)
	for rows.Next() {
		var (
			id, seq                  int
			refTable, from           string
			to                       sql.NullString
			onUpdate, onDelete, mtch string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &mtch); err != nil {
			return err
		}
		fk, ok := byID[id]
		if !ok {
			fk = &sqlschema.ForeignKey{
				RefTable: refTable,
				OnUpdate: onUpdate,
				OnDelete: onDelete,
			}
			byID[id] = fk
			t.ForeignKeys = append(t.ForeignKeys, fk)
		}
		fk.Columns = append(fk.Columns, from)
		if to.Valid {
			fk.RefColumns = append(fk.RefColumns, to.String)
		}
	}
	return rows.Err()
}

func (s *sqliteInspector) indexes(ctx context.Context, t *sqlschema.Table) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", quoteIdent(t.Name)))
	if err != nil {
		return err
	}
	type indexRow struct {
		name   string
		unique bool
	}
	var list []indexRow
	for rows.Next() {
		var (
			seq     int
			name    string
			unique  bool
			origin  string
			partial bool
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return err
		}
		// Skip the implicit primary-key index; the PK is modeled separately.
		if origin == "pk" {
			continue
		}
		list = append(list, indexRow{name: name, unique: unique})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, ir := range list {
		idx := &sqlschema.Index{Name: ir.name, Unique: ir.unique}
		if err := s.indexColumns(ctx, idx); err != nil {
			return err
		}
		t.Indexes = append(t.Indexes, idx)
	}
	markUniqueColumns(t)
	return nil
}

func (s *sqliteInspector) indexColumns(ctx context.Context, idx *sqlschema.Index) error {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", quoteIdent(idx.Name)))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			seqno, cid int
			name       sql.NullString
		)
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return err
		}
		if name.Valid {
			idx.Columns = append(idx.Columns, name.String)
		}
	}
	return rows.Err()
}
