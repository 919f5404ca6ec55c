package sqlschema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apigen-dev/sqlschema"
)

// TestDocumentRoundTrip verifies that a schema survives the YAML document
// form with classification and relationships intact.
func TestDocumentRoundTrip(t *testing.T) {
	t.Parallel()

	src, err := sqlschema.New(blogTables(),
		sqlschema.WithName("blog"),
		sqlschema.WithDialect("postgres"),
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, sqlschema.WriteDocument(path, src))

	got, err := sqlschema.ReadDocument(path)
	require.NoError(t, err)

	assert.Equal(t, "blog", got.Name())
	assert.Equal(t, "postgres", got.Dialect())
	assert.Equal(t, tableNames(src.Tables()), tableNames(got.Tables()))
	assert.Equal(t, tableNames(src.JunctionTables()), tableNames(got.JunctionTables()))
	assert.Equal(t, tableNames(src.AuditTables()), tableNames(got.AuditTables()))
	assert.Len(t, got.Relationships(), len(src.Relationships()))
}

// TestParseDocument verifies building a schema from YAML bytes, including
// type derivation from raw types.
func TestParseDocument(t *testing.T) {
	t.Parallel()

	data := []byte(`
name: shop
dialect: mysql
tables:
  - name: products
    columns:
      - name: id
        raw_type: bigint
        primary_key: true
      - name: title
        raw_type: varchar(255)
      - name: price
        raw_type: decimal(10,2)
`)
	s, err := sqlschema.ParseDocument(data)
	require.NoError(t, err)

	assert.Equal(t, "shop", s.Name())
	tbl, err := s.Table("products")
	require.NoError(t, err)

	id, ok := tbl.Column("id")
	require.True(t, ok)
	assert.Equal(t, sqlschema.TypeInt64, id.Type)
	assert.True(t, id.PrimaryKey)
	assert.Equal(t, []string{"id"}, tbl.PrimaryKey)

	price, ok := tbl.Column("price")
	require.True(t, ok)
	assert.Equal(t, sqlschema.TypeDecimal, price.Type)
}

// TestParseDocumentInvalid verifies that malformed YAML surfaces as a
// DocumentError.
func TestParseDocumentInvalid(t *testing.T) {
	t.Parallel()

	_, err := sqlschema.ParseDocument([]byte("tables: [what"))
	assert.True(t, sqlschema.IsDocumentError(err))
}

// TestReadDocumentMissing verifies that a missing file surfaces as a
// DocumentError carrying the path.
func TestReadDocumentMissing(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nope.yaml")
	_, err := sqlschema.ReadDocument(path)
	require.True(t, sqlschema.IsDocumentError(err))
	assert.Contains(t, err.Error(), path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestSnapshotRoundTrip verifies the binary snapshot form.
func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	src := blogSchema(t)
	data, err := sqlschema.EncodeSnapshot(src)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	got, err := sqlschema.DecodeSnapshot(data)
	require.NoError(t, err)
	assert.ElementsMatch(t, tableNames(src.Tables()), tableNames(got.Tables()))
	assert.Equal(t, src.EntityNames(), got.EntityNames())
}

// TestFingerprint verifies that fingerprints are deterministic, insensitive
// to table order and sensitive to structural change.
func TestFingerprint(t *testing.T) {
	t.Parallel()

	a, err := blogSchema(t).Fingerprint()
	require.NoError(t, err)
	b, err := blogSchema(t).Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	// Reversed table order still fingerprints identically.
	tables := blogTables()
	for i, j := 0, len(tables)-1; i < j; i, j = i+1, j-1 {
		tables[i], tables[j] = tables[j], tables[i]
	}
	reordered, err := sqlschema.New(tables)
	require.NoError(t, err)
	c, err := reordered.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, a, c)

	// A structural change produces a new fingerprint.
	changed := blogTables()
	changed[0].Columns = append(changed[0].Columns, &sqlschema.Column{
		Name: "created_at", Type: sqlschema.TypeTime,
	})
	mutated, err := sqlschema.New(changed)
	require.NoError(t, err)
	d, err := mutated.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, a, d)
}
