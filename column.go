package sqlschema

import (
	"strings"
)

// ColumnType is the semantic type of a column, derived from the raw SQL
// type the column was declared with. It drives the field types emitted by
// the generator layers sitting on top of this package.
type ColumnType int

// Column types.
const (
	TypeOther ColumnType = iota // Unrecognized or dialect-specific type.
	TypeBool
	TypeInt
	TypeInt64
	TypeUint
	TypeUint64
	TypeFloat32
	TypeFloat64
	TypeDecimal
	TypeString
	TypeText
	TypeBytes
	TypeTime
	TypeDate
	TypeUUID
	TypeJSON
	TypeEnum
	endTypes
)

var typeNames = [...]string{
	TypeOther:   "other",
	TypeBool:    "bool",
	TypeInt:     "int",
	TypeInt64:   "int64",
	TypeUint:    "uint",
	TypeUint64:  "uint64",
	TypeFloat32: "float32",
	TypeFloat64: "float64",
	TypeDecimal: "decimal",
	TypeString:  "string",
	TypeText:    "text",
	TypeBytes:   "bytes",
	TypeTime:    "time",
	TypeDate:    "date",
	TypeUUID:    "uuid",
	TypeJSON:    "json",
	TypeEnum:    "enum",
}

// String returns the name of the column type.
func (t ColumnType) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return typeNames[TypeOther]
	}
	return typeNames[t]
}

// Valid reports if the given type is a known column type.
func (t ColumnType) Valid() bool {
	return t >= TypeOther && t < endTypes
}

// Numeric reports if the type is an integer, float or decimal type.
func (t ColumnType) Numeric() bool {
	switch t {
	case TypeInt, TypeInt64, TypeUint, TypeUint64, TypeFloat32, TypeFloat64, TypeDecimal:
		return true
	}
	return false
}

// Textual reports if the type is a character type.
func (t ColumnType) Textual() bool {
	return t == TypeString || t == TypeText || t == TypeEnum
}

// columnTypeNames maps type names back to their ColumnType.
var columnTypeNames = func() map[string]ColumnType {
	m := make(map[string]ColumnType, len(typeNames))
	for t, name := range typeNames {
		m[name] = ColumnType(t)
	}
	return m
}()

// ColumnTypeByName returns the column type with the given name.
// Unknown names map to TypeOther.
func ColumnTypeByName(name string) ColumnType {
	if t, ok := columnTypeNames[strings.ToLower(name)]; ok {
		return t
	}
	return TypeOther
}

// ParseColumnType derives the semantic column type from a raw SQL type
// string, e.g. "varchar(255)" => TypeString, "timestamptz" => TypeTime.
// The mapping is dialect-tolerant: it recognizes the common spellings of
// PostgreSQL, MySQL and SQLite.
func ParseColumnType(raw string) ColumnType {
	s := strings.ToLower(strings.TrimSpace(raw))
	// MySQL convention: tinyint(1) is a boolean, any other tinyint is not.
	if s == "tinyint(1)" {
		return TypeBool
	}
	// Strip the size part, keeping modifiers: "int(10) unsigned" => "int unsigned".
	if i := strings.IndexByte(s, '('); i > 0 {
		rest := ""
		if j := strings.IndexByte(s, ')'); j > i {
			rest = strings.TrimSpace(s[j+1:])
		}
		s = strings.TrimSpace(s[:i])
		if rest != "" {
			s += " " + rest
		}
	}
	switch {
	case s == "":
		return TypeOther
	case s == "bool" || s == "boolean" || s == "bit":
		return TypeBool
	case s == "tinyint" || s == "smallint" || s == "mediumint" || s == "int" ||
		s == "integer" || s == "int2" || s == "int4" || s == "serial" || s == "smallserial":
		return TypeInt
	case s == "bigint" || s == "int8" || s == "bigserial":
		return TypeInt64
	case s == "tinyint unsigned" || s == "smallint unsigned" || s == "int unsigned" ||
		s == "integer unsigned" || s == "mediumint unsigned":
		return TypeUint
	case s == "bigint unsigned":
		return TypeUint64
	case s == "real" || s == "float4":
		return TypeFloat32
	case s == "float" || s == "double" || s == "double precision" || s == "float8":
		return TypeFloat64
	case s == "decimal" || s == "numeric" || s == "money":
		return TypeDecimal
	case s == "char" || s == "varchar" || s == "character" || s == "character varying" ||
		s == "nchar" || s == "nvarchar":
		return TypeString
	case s == "text" || s == "tinytext" || s == "mediumtext" || s == "longtext" || s == "clob" ||
		s == "citext":
		return TypeText
	case s == "blob" || s == "tinyblob" || s == "mediumblob" || s == "longblob" ||
		s == "bytea" || s == "binary" || s == "varbinary":
		return TypeBytes
	case s == "timestamp" || s == "timestamptz" || s == "timestamp with time zone" ||
		s == "timestamp without time zone" || s == "datetime" || s == "time" ||
		s == "timetz" || s == "time with time zone" || s == "time without time zone":
		return TypeTime
	case s == "date" || s == "year":
		return TypeDate
	case s == "uuid" || s == "uniqueidentifier":
		return TypeUUID
	case s == "json" || s == "jsonb":
		return TypeJSON
	case s == "enum" || s == "set":
		return TypeEnum
	default:
		return TypeOther
	}
}

// Column represents a table column.
type Column struct {
	// Name of the column in the database schema.
	Name string
	// Type holds the semantic type of the column.
	Type ColumnType
	// RawType is the SQL type the column was declared with, as reported
	// by the source (e.g. "varchar(255)"). Optional.
	RawType string
	// Nullable indicates that the column may hold NULL values.
	Nullable bool
	// Unique indicates that the column is covered by a single-column
	// unique constraint or unique index.
	Unique bool
	// PrimaryKey indicates that the column is part of the table's
	// primary key.
	PrimaryKey bool
	// Default holds the default expression of the column, if any.
	Default *string
	// Size is the character length for sized character types, 0 if not set.
	Size int
	// Precision and Scale of numeric types, 0 if not set.
	Precision int
	Scale     int
	// Comment of the column, if the source reports one.
	Comment string
}

// ForeignKey represents a foreign-key constraint. Composite keys carry
// multiple source and referenced columns in matching order.
type ForeignKey struct {
	// Name of the constraint. Optional; sources that do not report
	// constraint names leave it empty.
	Name string
	// Columns are the source column names in the owning table.
	Columns []string
	// RefTable is the name of the referenced table.
	RefTable string
	// RefColumns are the referenced column names.
	RefColumns []string
	// OnDelete and OnUpdate referential actions (e.g. "CASCADE"). Optional.
	OnDelete string
	OnUpdate string
}

// Column returns the first source column of the foreign key.
// Most foreign keys in practice are single-column.
func (fk *ForeignKey) Column() string {
	if len(fk.Columns) == 0 {
		return ""
	}
	return fk.Columns[0]
}

// Index represents a table index.
type Index struct {
	// Name of the index.
	Name string
	// Columns are the indexed column names, in index order.
	Columns []string
	// Unique indicates a uniqueness constraint.
	Unique bool
}
