package inspect

import (
	"context"
	"database/sql"

	"github.com/apigen-dev/sqlschema"
)

// postgresInspector builds the schema model from the information_schema
// views of a PostgreSQL database.
type postgresInspector struct {
	db  *sql.DB
	cfg *config
}

func (p *postgresInspector) Inspect(ctx context.Context) (*sqlschema.Schema, error) {
	schemaName := p.cfg.schema
	if schemaName == "" {
		schemaName = "public"
	}
	names, err := p.tableNames(ctx, schemaName)
	if err != nil {
		return nil, err
	}
	tables, err := inspectTables(ctx, p.cfg, names, func(ctx context.Context, name string) (*sqlschema.Table, error) {
		return p.table(ctx, schemaName, name)
	})
	if err != nil {
		return nil, err
	}
	return sqlschema.New(tables, p.cfg.schemaOptions("postgres", schemaName)...)
}

func (p *postgresInspector) tableNames(ctx context.Context, schemaName string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
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
		if p.cfg.keep(name) {
			names = append(names, name)
		}
	}
	return names, rows.Err()
}

func (p *postgresInspector) table(ctx context.Context, schemaName, name string) (*sqlschema.Table, error) {
	t := &sqlschema.Table{Name: name}
	if err := p.columns(ctx, schemaName, t); err != nil {
		return nil, err
	}
	pk, err := p.primaryKey(ctx, schemaName, name)
	if err != nil {
		return nil, err
	}
	t.PrimaryKey = pk
	if err := p.foreignKeys(ctx, schemaName, t); err != nil {
		return nil, err
	}
	if err := p.uniqueConstraints(ctx, schemaName, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (p *postgresInspector) columns(ctx context.Context, schemaName string, t *sqlschema.Table) error {
	rows, err := p.db.QueryContext(ctx, `
		SELECT column_name, data_type,
		       character_maximum_length, numeric_precision, numeric_scale,
		       is_nullable = 'YES', column_default
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
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
		)
		if err := rows.Scan(&c.Name, &c.RawType, &length, &prec, &scale, &c.Nullable, &defaultValue); err != nil {
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
		t.Columns = append(t.Columns, &c)
	}
	return rows.Err()
}

func (p *postgresInspector) primaryKey(ctx context.Context, schemaName, name string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		    ON tc.constraint_name = kcu.constraint_name
		WHERE tc.table_schema = $1
		    AND tc.table_name = $2
		    AND tc.constraint_type = 'PRIMARY KEY'
		ORDER BY kcu.ordinal_position`, schemaName, name)
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

func (p *postgresInspector) foreignKeys(ctx context.Context, schemaName string, t *sqlschema.Table) error {
	rows, err := p.db.QueryContext(ctx, `
		SELECT tc.constraint_name, kcu.column_name,
		       ccu.table_name AS foreign_table_name,
		       ccu.column_name AS foreign_column_name,
		       rc.update_rule, rc.delete_rule
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
		    ON tc.constraint_name = kcu.constraint_name
		JOIN information_schema.constraint_column_usage AS ccu
		    ON ccu.constraint_name = tc.constraint_name
		JOIN information_schema.referential_constraints AS rc
		    ON rc.constraint_name = tc.constraint_name
		WHERE tc.constraint_type = 'FOREIGN KEY'
		    AND tc.table_schema = $1
		    AND tc.table_name = $2
		ORDER BY tc.constraint_name, kcu.ordinal_position`, schemaName, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	byName := make(map[string]*sqlschema.ForeignKey)
	for rows.Next() {
		var constraint, column, refTable, refColumn, onUpdate, onDelete string
		if err := rows.Scan(&constraint, &column, &refTable, &refColumn, &onUpdate, &onDelete); err != nil {
			return err
		}
		fk, ok := byName[constraint]
		if !ok {
			fk = &sqlschema.ForeignKey{
				Name:     constraint,
				RefTable: refTable,
				OnUpdate: onUpdate,
				OnDelete: onDelete,
			}
			byName[constraint] = fk
			t.ForeignKeys = append(t.ForeignKeys, fk)
		}
		fk.Columns = append(fk.Columns, column)
		fk.RefColumns = append(fk.RefColumns, refColumn)
	}
	return rows.Err()
}

func (p *postgresInspector) uniqueConstraints(ctx context.Context, schemaName string, t *sqlschema.Table) error {
	rows, err := p.db.QueryContext(ctx, `
		SELECT tc.constraint_name, kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		    ON tc.constraint_name = kcu.constraint_name
		WHERE tc.table_schema = $1
		    AND tc.table_name = $2
		    AND tc.constraint_type = 'UNIQUE'
		ORDER BY tc.constraint_name, kcu.ordinal_position`, schemaName, t.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	byName := make(map[string]*sqlschema.Index)
	for rows.Next() {
		var constraint, column string
		if err := rows.Scan(&constraint, &column); err != nil {
			return err
		}
		idx, ok := byName[constraint]
		if !ok {
			idx = &sqlschema.Index{Name: constraint, Unique: true}
			byName[constraint] = idx
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

// markUniqueColumns flags columns covered by a single-column unique index.
func markUniqueColumns(t *sqlschema.Table) {
	for _, idx := range t.Indexes {
		if !idx.Unique || len(idx.Columns) != 1 {
			continue
		}
		if c, ok := t.Column(idx.Columns[0]); ok {
			c.Unique = true
		}
	}
}
