package inspect

import (
	atlas "ariga.io/atlas/sql/schema"

	"github.com/apigen-dev/sqlschema"
)

// FromAtlas adapts a schema inspected by Atlas into the sqlschema model.
// It lets callers that already use Atlas for migrations or HCL parsing
// feed its inspection result straight into classification and validation.
func FromAtlas(as *atlas.Schema, opts ...sqlschema.Option) (*sqlschema.Schema, error) {
	tables := make([]*sqlschema.Table, 0, len(as.Tables))
	for _, at := range as.Tables {
		tables = append(tables, fromAtlasTable(at))
	}
	all := make([]sqlschema.Option, 0, len(opts)+1)
	if as.Name != "" {
		all = append(all, sqlschema.WithName(as.Name))
	}
	all = append(all, opts...)
	return sqlschema.New(tables, all...)
}

func fromAtlasTable(at *atlas.Table) *sqlschema.Table {
	t := &sqlschema.Table{
		Name:    at.Name,
		Comment: atlasComment(at.Attrs),
	}
	for _, ac := range at.Columns {
		t.Columns = append(t.Columns, fromAtlasColumn(ac))
	}
	if at.PrimaryKey != nil {
		for _, part := range at.PrimaryKey.Parts {
			if part.C != nil {
				t.PrimaryKey = append(t.PrimaryKey, part.C.Name)
			}
		}
	}
	for _, afk := range at.ForeignKeys {
		fk := &sqlschema.ForeignKey{
			Name:     afk.Symbol,
			OnDelete: string(afk.OnDelete),
			OnUpdate: string(afk.OnUpdate),
		}
		if afk.RefTable != nil {
			fk.RefTable = afk.RefTable.Name
		}
		for _, c := range afk.Columns {
			fk.Columns = append(fk.Columns, c.Name)
		}
		for _, c := range afk.RefColumns {
			fk.RefColumns = append(fk.RefColumns, c.Name)
		}
		t.ForeignKeys = append(t.ForeignKeys, fk)
	}
	for _, ai := range at.Indexes {
		idx := &sqlschema.Index{Name: ai.Name, Unique: ai.Unique}
		for _, part := range ai.Parts {
			if part.C != nil {
				idx.Columns = append(idx.Columns, part.C.Name)
			}
		}
		t.Indexes = append(t.Indexes, idx)
	}
	markUniqueColumns(t)
	return t
}

func fromAtlasColumn(ac *atlas.Column) *sqlschema.Column {
	c := &sqlschema.Column{
		Name:    ac.Name,
		Comment: atlasComment(ac.Attrs),
	}
	if ac.Type != nil {
		c.RawType = ac.Type.Raw
		c.Nullable = ac.Type.Null
		c.Type = sqlschema.ParseColumnType(ac.Type.Raw)
		switch ct := ac.Type.Type.(type) {
		case *atlas.StringType:
			c.Size = ct.Size
		case *atlas.DecimalType:
			c.Precision = ct.Precision
			c.Scale = ct.Scale
		case *atlas.IntegerType:
			if ct.Unsigned {
				switch c.Type {
				case sqlschema.TypeInt:
					c.Type = sqlschema.TypeUint
				case sqlschema.TypeInt64:
					c.Type = sqlschema.TypeUint64
				}
			}
		}
	}
	if ac.Default != nil {
		switch d := ac.Default.(type) {
		case *atlas.Literal:
			v := d.V
			c.Default = &v
		case *atlas.RawExpr:
			v := d.X
			c.Default = &v
		}
	}
	return c
}

func atlasComment(attrs []atlas.Attr) string {
	for _, attr := range attrs {
		if c, ok := attr.(*atlas.Comment); ok {
			return c.Text
		}
	}
	return ""
}
