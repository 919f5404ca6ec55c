package inspect_test

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apigen-dev/sqlschema"
	"github.com/apigen-dev/sqlschema/inspect"
)

func mysqlColumnRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"column_name", "column_type",
		"character_maximum_length", "numeric_precision", "numeric_scale",
		"nullable", "column_default", "column_key",
	})
}

// expectMysqlTable queues the four per-table metadata queries in the order
// the inspector issues them.
func expectMysqlTable(mock sqlmock.Sqlmock, columns, pk, fks, indexes *sqlmock.Rows) {
	mock.ExpectQuery("information_schema.columns").WillReturnRows(columns)
	mock.ExpectQuery("constraint_name = 'PRIMARY'").WillReturnRows(pk)
	mock.ExpectQuery("referenced_table_name IS NOT NULL").WillReturnRows(fks)
	mock.ExpectQuery("information_schema.statistics").WillReturnRows(indexes)
}

// TestMysqlInspect verifies a full inspection round, including the MySQL
// column_type spellings and the column_key flags.
func TestMysqlInspect(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("information_schema.tables").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).
			AddRow("orders").
			AddRow("users"))

	expectMysqlTable(mock,
		mysqlColumnRows().
			AddRow("id", "bigint(20) unsigned", nil, 20, 0, false, nil, "PRI").
			AddRow("user_id", "bigint(20) unsigned", nil, 20, 0, false, nil, "MUL").
			AddRow("paid", "tinyint(1)", nil, 3, 0, false, "0", ""),
		sqlmock.NewRows([]string{"column_name"}).AddRow("id"),
		sqlmock.NewRows([]string{"constraint_name", "column_name", "referenced_table_name", "referenced_column_name"}).
			AddRow("orders_ibfk_1", "user_id", "users", "id"),
		sqlmock.NewRows([]string{"index_name", "column_name", "non_unique"}).
			AddRow("orders_user_id_idx", "user_id", true),
	)
	expectMysqlTable(mock,
		mysqlColumnRows().
			AddRow("id", "bigint(20) unsigned", nil, 20, 0, false, nil, "PRI").
			AddRow("email", "varchar(255)", 255, nil, nil, false, nil, "UNI"),
		sqlmock.NewRows([]string{"column_name"}).AddRow("id"),
		sqlmock.NewRows([]string{"constraint_name", "column_name", "referenced_table_name", "referenced_column_name"}),
		sqlmock.NewRows([]string{"index_name", "column_name", "non_unique"}).
			AddRow("email", "email", false),
	)

	ins, err := inspect.New("mysql", db,
		inspect.WithSchemaName("shop"),
		inspect.WithWorkers(1),
	)
	require.NoError(t, err)

	s, err := ins.Inspect(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "mysql", s.Dialect())
	assert.Equal(t, "shop", s.Name())

	orders, err := s.Table("orders")
	require.NoError(t, err)
	id, ok := orders.Column("id")
	require.True(t, ok)
	assert.Equal(t, sqlschema.TypeUint64, id.Type)
	assert.True(t, id.PrimaryKey)
	paid, ok := orders.Column("paid")
	require.True(t, ok)
	assert.Equal(t, sqlschema.TypeBool, paid.Type)
	require.NotNil(t, paid.Default)
	assert.Equal(t, "0", *paid.Default)
	require.Len(t, orders.ForeignKeys, 1)
	assert.Equal(t, []string{"user_id"}, orders.ForeignKeys[0].Columns)
	require.Len(t, orders.Indexes, 1)
	assert.False(t, orders.Indexes[0].Unique)

	users, err := s.Table("users")
	require.NoError(t, err)
	email, ok := users.Column("email")
	require.True(t, ok)
	assert.True(t, email.Unique)
	require.Len(t, users.Indexes, 1)
	assert.True(t, users.Indexes[0].Unique)

	rels := s.Relationships()
	require.Len(t, rels, 1)
	assert.Equal(t, "orders -> users (M2O)", rels[0].String())
}

// TestMysqlInspectDefaultSchema verifies that the connection's current
// database is used when no schema name is configured.
func TestMysqlInspectDefaultSchema(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT DATABASE").
		WillReturnRows(sqlmock.NewRows([]string{"database"}).AddRow("appdb"))
	mock.ExpectQuery("information_schema.tables").
		WithArgs("appdb").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}))

	ins, err := inspect.New("mysql", db, inspect.WithWorkers(1))
	require.NoError(t, err)

	s, err := ins.Inspect(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Equal(t, "appdb", s.Name())
	assert.Empty(t, s.Tables())
}
