package sqldia

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tordrt/sqldia/internal/parser"
	"github.com/tordrt/sqldia/internal/schema"
	"github.com/tordrt/sqldia/internal/testutil"
)

const shopSQL = `
CREATE TABLE customers (
  id INT NOT NULL,
  email VARCHAR(255) NOT NULL,
  PRIMARY KEY (id)
);

CREATE TABLE orders (
  id INT NOT NULL,
  customer_id INT NOT NULL,
  total DECIMAL(10,2),
  PRIMARY KEY (id),
  KEY idx_customer (customer_id)
);

CREATE TABLE audit_log (
  id INT,
  message TEXT
);
`

func TestParseSchemaExample(t *testing.T) {
	s, issues, err := ParseSchema("CREATE TABLE users (id INT NOT NULL, name VARCHAR(50), PRIMARY KEY (id));", nil)
	require.NoError(t, err)
	assert.Empty(t, issues)

	want := []schema.Table{{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: "INT", IsPrimary: true, IsNullable: false},
			{Name: "name", Type: "VARCHAR(50)", IsPrimary: false, IsNullable: true},
		},
	}}
	assert.Equal(t, want, s.Tables)
}

func TestParseSchemaFilters(t *testing.T) {
	tests := []struct {
		name string
		opts *Options
		want []string
	}{
		{name: "all", opts: nil, want: []string{"customers", "orders", "audit_log"}},
		{name: "include keeps source order", opts: &Options{Tables: []string{"orders", "customers"}}, want: []string{"customers", "orders"}},
		{name: "exclude", opts: &Options{ExcludeTables: []string{"audit_log"}}, want: []string{"customers", "orders"}},
		{
			name: "include then exclude",
			opts: &Options{Tables: []string{"orders", "audit_log"}, ExcludeTables: []string{"audit_log"}},
			want: []string{"orders"},
		},
		{name: "unknown include", opts: &Options{Tables: []string{"missing"}}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.opts != nil {
				tt.opts.Logger = testutil.NewTestLogger(t)
			}
			s, _, err := ParseSchema(shopSQL, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, tableNames(s))
		})
	}
}

const brokenSQL = `
CREATE TABLE good (id INT NOT NULL, PRIMARY KEY (id));
CREATE TABLE broken (
  id INT,
  PRIMARY KEY,
  name VARCHAR(20)
);
`

func TestParseSchemaStrict(t *testing.T) {
	s, issues, err := ParseSchema(brokenSQL, &Options{Logger: testutil.NewTestLogger(t)})
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "broken", issues[0].Table)
	assert.Len(t, s.Tables, 2)

	_, issues, err = ParseSchema(brokenSQL, &Options{Strict: true, Logger: testutil.NewTestLogger(t)})
	assert.ErrorIs(t, err, parser.ErrStrict)
	assert.Len(t, issues, 1)

	// issues of filtered tables do not count
	_, issues, err = ParseSchema(brokenSQL, &Options{Strict: true, ExcludeTables: []string{"broken"}})
	assert.NoError(t, err)
	assert.Empty(t, issues)
}

func TestParseSchemaSkipDirectives(t *testing.T) {
	sql := "CREATE TABLE t (id INT, UNIQUE (id), PRIMARY KEY (id));"

	s, _, err := ParseSchema(sql, nil)
	require.NoError(t, err)
	assert.Len(t, s.Tables[0].Columns, 2)

	s, _, err = ParseSchema(sql, &Options{SkipDirectives: []string{"unique"}})
	require.NoError(t, err)
	require.Len(t, s.Tables[0].Columns, 1)
	assert.True(t, s.Tables[0].Columns[0].IsPrimary)
}

func TestConvertAndFormatNoTables(t *testing.T) {
	var buf bytes.Buffer
	err := ConvertAndFormat(strings.NewReader("-- nothing here\nSELECT 1;"), nil, &OutputOptions{Writer: &buf})
	require.NoError(t, err)

	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?>
<dia:diagram xmlns:dia="http://www.lysator.liu.se/~alla/dia/">
  <dia:layer name="Background" visible="true" active="true">

  </dia:layer>
</dia:diagram>
`, buf.String())
}

var (
	objectBlock = regexp.MustCompile(`(?s)    <dia:object .*?</dia:object>`)
	objectID    = regexp.MustCompile(`id="O\d+"`)
)

func TestConvertAndFormatSwapTables(t *testing.T) {
	first := "CREATE TABLE a (x INT NOT NULL, PRIMARY KEY (x));\n"
	second := "CREATE TABLE b (y VARCHAR(10), z TEXT);\n"

	render := func(sql string) string {
		var buf bytes.Buffer
		require.NoError(t, ConvertAndFormat(strings.NewReader(sql), nil, &OutputOptions{Writer: &buf}))
		// ids follow document order, not the table
		return objectID.ReplaceAllString(buf.String(), `id="O"`)
	}

	ab := render(first + second)
	ba := render(second + first)

	abBlocks := objectBlock.FindAllString(ab, -1)
	baBlocks := objectBlock.FindAllString(ba, -1)
	require.Len(t, abBlocks, 2)
	assert.Equal(t, []string{abBlocks[1], abBlocks[0]}, baBlocks)

	assert.Equal(t,
		objectBlock.ReplaceAllString(ab, "BLOCK"),
		objectBlock.ReplaceAllString(ba, "BLOCK"))
}

func TestConvertAndFormatStrictWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	err := ConvertAndFormat(strings.NewReader(brokenSQL), &Options{Strict: true}, &OutputOptions{Writer: &buf})
	assert.ErrorIs(t, err, parser.ErrStrict)
	assert.Zero(t, buf.Len())
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errors.New("stdin closed")
}

func TestConvertAndFormatReadError(t *testing.T) {
	var buf bytes.Buffer
	err := ConvertAndFormat(errReader{}, nil, &OutputOptions{Writer: &buf})
	assert.ErrorContains(t, err, "failed to read input")
	assert.Zero(t, buf.Len())
}

func TestFormatSchema(t *testing.T) {
	s, _, err := ParseSchema(shopSQL, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, FormatSchema(s, &OutputOptions{Writer: &buf, Format: "text"}))
	assert.Contains(t, buf.String(), "TABLE orders (PK: id)\n")
	assert.Contains(t, buf.String(), "  total: DECIMAL(10,2)\n")

	err = FormatSchema(s, &OutputOptions{Writer: &buf, Format: "svg"})
	assert.Error(t, err)
}

func TestFormatSchemaOutputDir(t *testing.T) {
	s, _, err := ParseSchema(shopSQL, nil)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "diagrams")
	require.NoError(t, FormatSchema(s, &OutputOptions{OutputDir: dir}))

	for _, name := range []string{"_overview.dia", "customers.dia", "orders.dia", "audit_log.dia"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestExtractSchemaInvalidURL(t *testing.T) {
	_, err := ExtractSchema(t.Context(), "oracle://scott@tiger", nil)
	assert.Error(t, err)

	_, err = ExtractSchema(t.Context(), "", nil)
	assert.Error(t, err)
}

func tablesNamed(names ...string) *schema.Schema {
	s := &schema.Schema{Tables: []schema.Table{}}
	for _, name := range names {
		s.Tables = append(s.Tables, schema.Table{Name: name})
	}
	return s
}

func tableNames(s *schema.Schema) []string {
	names := []string{}
	for _, table := range s.Tables {
		names = append(names, table.Name)
	}
	return names
}

func TestFilterExcludedTables(t *testing.T) {
	tests := []struct {
		name        string
		schema      *schema.Schema
		excludeList []string
		wantTables  []string
	}{
		{
			name:        "exclude single table",
			schema:      tablesNamed("users", "posts", "comments"),
			excludeList: []string{"posts"},
			wantTables:  []string{"users", "comments"},
		},
		{
			name:        "exclude multiple tables",
			schema:      tablesNamed("users", "posts", "comments", "likes"),
			excludeList: []string{"posts", "likes"},
			wantTables:  []string{"users", "comments"},
		},
		{
			name:        "exclude no tables",
			schema:      tablesNamed("users", "posts"),
			excludeList: []string{},
			wantTables:  []string{"users", "posts"},
		},
		{
			name:        "exclude non-existent table",
			schema:      tablesNamed("users", "posts"),
			excludeList: []string{"products"},
			wantTables:  []string{"users", "posts"},
		},
		{
			name:        "exclude all tables",
			schema:      tablesNamed("users", "posts"),
			excludeList: []string{"users", "posts"},
			wantTables:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filterExcludedTables(tt.schema, tt.excludeList)
			assert.Equal(t, tt.wantTables, tableNames(tt.schema))
		})
	}
}

func TestFilterTables(t *testing.T) {
	s := tablesNamed("users", "posts", "comments")

	missing := filterTables(s, []string{"comments", "tags", "users"})

	assert.Equal(t, []string{"users", "comments"}, tableNames(s))
	assert.Equal(t, []string{"tags"}, missing)
}
