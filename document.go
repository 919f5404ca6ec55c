package sqlschema

import (
	"errors"
	"os"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Document is the serializable form of a schema. It is the wire format the
// package reads and writes; the Schema model itself stays immutable and is
// never serialized directly.
type Document struct {
	Name    string           `yaml:"name,omitempty" msgpack:"name"`
	Dialect string           `yaml:"dialect,omitempty" msgpack:"dialect"`
	Tables  []*TableDocument `yaml:"tables" msgpack:"tables"`
}

// TableDocument is the serializable form of a table.
type TableDocument struct {
	Name        string                `yaml:"name" msgpack:"name"`
	Comment     string                `yaml:"comment,omitempty" msgpack:"comment"`
	Columns     []*ColumnDocument     `yaml:"columns" msgpack:"columns"`
	PrimaryKey  []string              `yaml:"primary_key,omitempty" msgpack:"primary_key"`
	ForeignKeys []*ForeignKeyDocument `yaml:"foreign_keys,omitempty" msgpack:"foreign_keys"`
	Indexes     []*IndexDocument      `yaml:"indexes,omitempty" msgpack:"indexes"`
}

// ColumnDocument is the serializable form of a column.
type ColumnDocument struct {
	Name       string  `yaml:"name" msgpack:"name"`
	Type       string  `yaml:"type,omitempty" msgpack:"type"`
	RawType    string  `yaml:"raw_type,omitempty" msgpack:"raw_type"`
	Nullable   bool    `yaml:"nullable,omitempty" msgpack:"nullable"`
	Unique     bool    `yaml:"unique,omitempty" msgpack:"unique"`
	PrimaryKey bool    `yaml:"primary_key,omitempty" msgpack:"primary_key"`
	Default    *string `yaml:"default,omitempty" msgpack:"default"`
	Size       int     `yaml:"size,omitempty" msgpack:"size"`
	Precision  int     `yaml:"precision,omitempty" msgpack:"precision"`
	Scale      int     `yaml:"scale,omitempty" msgpack:"scale"`
	Comment    string  `yaml:"comment,omitempty" msgpack:"comment"`
}

// ForeignKeyDocument is the serializable form of a foreign key.
type ForeignKeyDocument struct {
	Name       string   `yaml:"name,omitempty" msgpack:"name"`
	Columns    []string `yaml:"columns" msgpack:"columns"`
	RefTable   string   `yaml:"ref_table" msgpack:"ref_table"`
	RefColumns []string `yaml:"ref_columns,omitempty" msgpack:"ref_columns"`
	OnDelete   string   `yaml:"on_delete,omitempty" msgpack:"on_delete"`
	OnUpdate   string   `yaml:"on_update,omitempty" msgpack:"on_update"`
}

// IndexDocument is the serializable form of an index.
type IndexDocument struct {
	Name    string   `yaml:"name" msgpack:"name"`
	Columns []string `yaml:"columns" msgpack:"columns"`
	Unique  bool     `yaml:"unique,omitempty" msgpack:"unique"`
}

// Document returns the serializable form of the schema.
func (s *Schema) Document() *Document {
	doc := &Document{
		Name:    s.cfg.name,
		Dialect: s.cfg.dialect,
		Tables:  make([]*TableDocument, 0, len(s.tables)),
	}
	for _, t := range s.tables {
		doc.Tables = append(doc.Tables, tableDocument(t))
	}
	return doc
}

func tableDocument(t *Table) *TableDocument {
	td := &TableDocument{
		Name:       t.Name,
		Comment:    t.Comment,
		Columns:    make([]*ColumnDocument, 0, len(t.Columns)),
		PrimaryKey: append([]string(nil), t.PrimaryKey...),
	}
	for _, c := range t.Columns {
		td.Columns = append(td.Columns, &ColumnDocument{
			Name:       c.Name,
			Type:       c.Type.String(),
			RawType:    c.RawType,
			Nullable:   c.Nullable,
			Unique:     c.Unique,
			PrimaryKey: c.PrimaryKey,
			Default:    c.Default,
			Size:       c.Size,
			Precision:  c.Precision,
			Scale:      c.Scale,
			Comment:    c.Comment,
		})
	}
	for _, fk := range t.ForeignKeys {
		td.ForeignKeys = append(td.ForeignKeys, &ForeignKeyDocument{
			Name:       fk.Name,
			Columns:    append([]string(nil), fk.Columns...),
			RefTable:   fk.RefTable,
			RefColumns: append([]string(nil), fk.RefColumns...),
			OnDelete:   fk.OnDelete,
			OnUpdate:   fk.OnUpdate,
		})
	}
	for _, idx := range t.Indexes {
		td.Indexes = append(td.Indexes, &IndexDocument{
			Name:    idx.Name,
			Columns: append([]string(nil), idx.Columns...),
			Unique:  idx.Unique,
		})
	}
	return td
}

// Schema builds the schema model from the document. Options given here are
// applied after the document's own name and dialect.
func (d *Document) Schema(opts ...Option) (*Schema, error) {
	tables := make([]*Table, 0, len(d.Tables))
	for _, td := range d.Tables {
		tables = append(tables, td.table())
	}
	all := make([]Option, 0, len(opts)+2)
	if d.Name != "" {
		all = append(all, WithName(d.Name))
	}
	if d.Dialect != "" {
		all = append(all, WithDialect(d.Dialect))
	}
	all = append(all, opts...)
	return New(tables, all...)
}

func (td *TableDocument) table() *Table {
	t := &Table{
		Name:       td.Name,
		Comment:    td.Comment,
		Columns:    make([]*Column, 0, len(td.Columns)),
		PrimaryKey: append([]string(nil), td.PrimaryKey...),
	}
	for _, cd := range td.Columns {
		typ := ColumnTypeByName(cd.Type)
		if cd.Type == "" {
			typ = ParseColumnType(cd.RawType)
		}
		t.Columns = append(t.Columns, &Column{
			Name:       cd.Name,
			Type:       typ,
			RawType:    cd.RawType,
			Nullable:   cd.Nullable,
			Unique:     cd.Unique,
			PrimaryKey: cd.PrimaryKey,
			Default:    cd.Default,
			Size:       cd.Size,
			Precision:  cd.Precision,
			Scale:      cd.Scale,
			Comment:    cd.Comment,
		})
	}
	for _, fd := range td.ForeignKeys {
		t.ForeignKeys = append(t.ForeignKeys, &ForeignKey{
			Name:       fd.Name,
			Columns:    append([]string(nil), fd.Columns...),
			RefTable:   fd.RefTable,
			RefColumns: append([]string(nil), fd.RefColumns...),
			OnDelete:   fd.OnDelete,
			OnUpdate:   fd.OnUpdate,
		})
	}
	for _, id := range td.Indexes {
		t.Indexes = append(t.Indexes, &Index{
			Name:    id.Name,
			Columns: append([]string(nil), id.Columns...),
			Unique:  id.Unique,
		})
	}
	return t
}

// ParseDocument builds a schema from YAML document bytes.
func ParseDocument(data []byte, opts ...Option) (*Schema, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewDocumentError("", err)
	}
	return doc.Schema(opts...)
}

// ReadDocument builds a schema from a YAML schema document file.
func ReadDocument(path string, opts ...Option) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewDocumentError(path, err)
	}
	s, err := ParseDocument(data, opts...)
	if err != nil {
		var derr *DocumentError
		if errors.As(err, &derr) && derr.Path == "" {
			derr.Path = path
		}
		return nil, err
	}
	return s, nil
}

// WriteDocument writes the schema as a YAML document file.
func WriteDocument(path string, s *Schema) error {
	data, err := yaml.Marshal(s.Document())
	if err != nil {
		return NewDocumentError(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return NewDocumentError(path, err)
	}
	return nil
}

// EncodeSnapshot encodes the schema into a compact binary snapshot.
// The encoding is canonical: tables are sorted by name so two schemas with
// the same content produce identical bytes regardless of table order.
func EncodeSnapshot(s *Schema) ([]byte, error) {
	doc := s.Document()
	sort.Slice(doc.Tables, func(i, j int) bool {
		return strings.ToLower(doc.Tables[i].Name) < strings.ToLower(doc.Tables[j].Name)
	})
	data, err := msgpack.Marshal(doc)
	if err != nil {
		return nil, NewDocumentError("", err)
	}
	return data, nil
}

// DecodeSnapshot rebuilds a schema from a binary snapshot produced by
// EncodeSnapshot.
func DecodeSnapshot(data []byte, opts ...Option) (*Schema, error) {
	var doc Document
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return nil, NewDocumentError("", err)
	}
	return doc.Schema(opts...)
}

// Fingerprint returns a deterministic UUID identifying the schema revision,
// derived from the canonical snapshot bytes. Equal schemas produce equal
// fingerprints; any structural change produces a new one.
func (s *Schema) Fingerprint() (uuid.UUID, error) {
	data, err := EncodeSnapshot(s)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, data), nil
}
