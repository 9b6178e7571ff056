package db

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/sqldia/internal/schema"
)

func newMockMySQL(t *testing.T) (*MySQLExtractor, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMySQLExtractor(&MySQLClient{db: db}, "shop"), mock
}

func TestMySQLExtractSchema(t *testing.T) {
	ctx := context.Background()
	e, mock := newMockMySQL(t)

	mock.ExpectQuery("FROM information_schema.tables").
		WithArgs("shop").
		WillReturnRows(sqlmock.NewRows([]string{"table_name"}).AddRow("orders").AddRow("users"))
	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("shop", "orders").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "column_type", "is_nullable", "column_key"}).
			AddRow("id", "int(11)", "NO", "PRI").
			AddRow("total", "decimal(10,2)", "YES", ""))
	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("shop", "users").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "column_type", "is_nullable", "column_key"}).
			AddRow("id", "int(11)", "NO", "PRI").
			AddRow("email", "varchar(255)", "NO", "UNI"))

	s, err := e.ExtractSchema(ctx, nil)
	require.NoError(t, err)

	want := []schema.Table{
		{Name: "orders", Columns: []schema.Column{
			{Name: "id", Type: "int(11)", IsPrimary: true, IsNullable: false},
			{Name: "total", Type: "decimal(10,2)", IsPrimary: false, IsNullable: true},
		}},
		{Name: "users", Columns: []schema.Column{
			{Name: "id", Type: "int(11)", IsPrimary: true, IsNullable: false},
			{Name: "email", Type: "varchar(255)", IsPrimary: false, IsNullable: false},
		}},
	}
	assert.Equal(t, want, s.Tables)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLExtractSchemaRequestedTables(t *testing.T) {
	ctx := context.Background()
	e, mock := newMockMySQL(t)

	// requested tables skip the table listing
	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("shop", "users").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "column_type", "is_nullable", "column_key"}).
			AddRow("id", "int(11)", "NO", "PRI"))

	s, err := e.ExtractSchema(ctx, []string{"users"})
	require.NoError(t, err)
	require.Len(t, s.Tables, 1)
	assert.Equal(t, "users", s.Tables[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLExtractSchemaErrors(t *testing.T) {
	ctx := context.Background()

	e, mock := newMockMySQL(t)
	mock.ExpectQuery("FROM information_schema.tables").WillReturnError(assert.AnError)
	_, err := e.ExtractSchema(ctx, nil)
	assert.ErrorContains(t, err, "failed to get table names")

	e, mock = newMockMySQL(t)
	mock.ExpectQuery("FROM information_schema.columns").WillReturnError(assert.AnError)
	_, err = e.ExtractSchema(ctx, []string{"users"})
	assert.ErrorContains(t, err, "failed to extract table users")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestMySQLExtractSchemaUnknownTable(t *testing.T) {
	ctx := context.Background()
	e, mock := newMockMySQL(t)

	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("shop", "ghost").
		WillReturnRows(sqlmock.NewRows([]string{"column_name", "column_type", "is_nullable", "column_key"}))

	s, err := e.ExtractSchema(ctx, []string{"ghost"})
	assert.ErrorContains(t, err, "table ghost not found")
	assert.Nil(t, s)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteExtractSchema(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	e := NewSQLiteExtractor(&SQLiteClient{db: db})

	mock.ExpectQuery("FROM sqlite_master").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("memberships"))
	mock.ExpectQuery("FROM pragma_table_info").
		WithArgs("memberships").
		WillReturnRows(sqlmock.NewRows([]string{"name", "type", "notnull", "pk"}).
			AddRow("user_id", "INTEGER", 1, 1).
			AddRow("group_id", "INTEGER", 1, 2).
			AddRow("note", "TEXT", 0, 0))

	s, err := e.ExtractSchema(ctx, nil)
	require.NoError(t, err)
	require.Len(t, s.Tables, 1)
	assert.Equal(t, []string{"user_id", "group_id"}, s.Tables[0].PrimaryKey())
	assert.True(t, s.Tables[0].Columns[2].IsNullable)

	mock.ExpectQuery("FROM pragma_table_info").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"name", "type", "notnull", "pk"}))
	_, err = e.ExtractSchema(ctx, []string{"ghost"})
	assert.ErrorContains(t, err, "table ghost not found")

	assert.NoError(t, mock.ExpectationsWereMet())
}
