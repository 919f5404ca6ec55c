package inspect

import (
	"context"
	"database/sql"

	"github.com/apigen-dev/sqlschema"
)

// mysqlInspector builds the schema model from the information_schema views
// of a MySQL/MariaDB database.
type mysqlInspector struct {
	db  *sql.DB
	cfg *config
}

func (m *mysqlInspector) Inspect(ctx context.Context) (*sqlschema.Schema, error) {
	schemaName := m.cfg.schema
	if schemaName == "" {
		if err := m.db.QueryRowContext(ctx, "SELECT DATABASE()").Scan(&schemaName); err != nil {
			return nil, err
		}
	}
	names, err := m.tableNames(ctx, schemaName)
	if err != nil {
		return nil, err
	}
	tables, err := inspectTables(ctx, m.cfg, names, func(ctx context.Context, name string) (*sqlschema.Table, error) {
		return m.table(ctx, schemaName, name)
	})
	if err != nil {
		return nil, err
	}
	return sqlschema.New(tables, m.cfg.schemaOptions("mysql", schemaName)...)
}

func (m *mysqlInspector) tableNames(ctx context.Context, schemaName string) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name`, schemaName)
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
		if m.cfg.keep(name) {
			names = append(names, name)
		}
	}
	return names, rows.Err()
}

func (m *mysqlInspector) table(ctx context.Context, schemaName, name string) (*sqlschema.Table, error) {
	t := &sqlschema.Table{Name: name}
	if err := m.columns(ctx, schemaName, t); err != nil {
		return nil, err
	}
	pk, err := m.primaryKey(ctx, schemaName, name)
	if err != nil {
		return nil, err
	}
	t.PrimaryKey = pk
	if err := m.foreignKeys(ctx, schemaName, t); err != nil {
		return nil, err
	}
	if err := m.indexes(ctx, schemaName, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (m *mysqlInspector) columns(ctx context.Context, schemaName string, t *sqlschema.Table) error {
	rows, err := m.db.QueryContext(ctx, `
		SELECT column_name, column_type,
		       character_maximum_length, numeric_precision, numeric_scale,
		       is_nullable = 'YES', column_default, column_key
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`, schemaName, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c                   sqlschema.Column
			length, prec, scale sql.NullInt64
			defaultValue        sql.NullString
			key                 string
		)
		if err := rows.Scan(&c.Name, &c.RawType, &length, &prec, &scale, &c.Nullable, &defaultValue, &key); err != nil {
			return err
		}
		c.Type = sqlschema.ParseColumnType(c.RawType)
		if length.Valid {
			c.Size = int(length.Int64)
		}
		if prec.Valid {
			c.Precision = int(prec.Int64)
		}
		if scale.Valid {
			c.Scale = int(scale.Int64)
		}
		if defaultValue.Valid {
			v := defaultValue.String
			c.Default = &v
		}
		// column_key: PRI for primary key, UNI for unique.
		switch key {
		case "PRI":
			c.PrimaryKey = true
		case "UNI":
			c.Unique = true
		}
		t.Columns = append(t.Columns, &c)
	}
	return rows.Err()
}

func (m *mysqlInspector) primaryKey(ctx context.Context, schemaName, name string) ([]string, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ? AND table_name = ? AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position`, schemaName, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pk []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, err
		}
		pk = append(pk, col)
	}
	return pk, rows.Err()
}

func (m *mysqlInspector) foreignKeys(ctx context.Context, schemaName string, t *sqlschema.Table) error {
	rows, err := m.db.QueryContext(ctx, `
		SELECT constraint_name, column_name, referenced_table_name, referenced_column_name
		FROM information_schema.key_column_usage
		WHERE table_schema = ? AND table_name = ? AND referenced_table_name IS NOT NULL
		ORDER BY constraint_name, ordinal_position`, schemaName, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	byName := make(map[string]*sqlschema.ForeignKey)
	for rows.Next() {
		var constraint, column, refTable, refColumn string
		if err := rows.Scan(&constraint, &column, &refTable, &refColumn); err != nil {
			return err
		}
		fk, ok := byName[constraint]
		if !ok {
			fk = &sqlschema.ForeignKey{Name: constraint, RefTable: refTable}
			byName[constraint] = fk
			t.ForeignKeys = append(t.ForeignKeys, fk)
		}
		fk.Columns = append(fk.Columns, column)
		fk.RefColumns = append(fk.RefColumns, refColumn)
	}
	return rows.Err()
}

func (m *mysqlInspector) indexes(ctx context.Context, schemaName string, t *sqlschema.Table) error {
	rows, err := m.db.QueryContext(ctx, `
		SELECT index_name, column_name, non_unique
		FROM information_schema.statistics
		WHERE table_schema = ? AND table_name = ? AND index_name <> 'PRIMARY'
		ORDER BY index_name, seq_in_index`, schemaName, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	byName := make(map[string]*sqlschema.Index)
	for rows.Next() {
		var (
			name, column string
			nonUnique    bool
		)
		if err := rows.Scan(&name, &column, &nonUnique); err != nil {
			return err
		}
		idx, ok := byName[name]
		if !ok {
			idx = &sqlschema.Index{Name: name, Unique: !nonUnique}
			byName[name] = idx
			t.Indexes = append(t.Indexes, idx)
		}
		idx.Columns = append(idx.Columns, column)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	markUniqueColumns(t)
	return nil
}
