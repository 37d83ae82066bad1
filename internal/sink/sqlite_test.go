package sink

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/me/sheetsync/pkg/model"
)

func readAll(t *testing.T, path, query string) [][]string {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query(query)
	require.NoError(t, err)
	defer rows.Close()

	cols, err := rows.Columns()
	require.NoError(t, err)

	var out [][]string
	for rows.Next() {
		vals := make([]string, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		require.NoError(t, rows.Scan(ptrs...))
		out = append(out, vals)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestSQLiteWriter_ReplacesTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sync.db")
	w := NewSQLiteWriter(dir, discardLogger())
	t.Cleanup(func() { w.Close() })
	cfg := model.DBConfig{DBType: "sqlite", Database: "sync.db", TableName: "leads"}
	ctx := context.Background()

	n, err := w.Write(ctx, sampleTable(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got := readAll(t, path, `SELECT name, email FROM leads ORDER BY name`)
	assert.Equal(t, [][]string{{"Ada", "ada@example.com"}, {"Bob", ""}}, got)

	// A second write with a different shape replaces the table entirely.
	next := &model.Table{Columns: []string{"id"}, Rows: [][]string{{"7"}}}
	n, err = w.Write(ctx, next, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, [][]string{{"7"}}, readAll(t, path, `SELECT * FROM leads`))
}

func TestSQLiteWriter_QuotesIdentifiers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sync.db")
	w := NewSQLiteWriter(dir, discardLogger())
	t.Cleanup(func() { w.Close() })

	table := &model.Table{
		Columns: []string{`first "name"`, "select"},
		Rows:    [][]string{{"x", "y"}},
	}
	_, err := w.Write(context.Background(), table, model.DBConfig{Database: "sync.db", TableName: "my table"})
	require.NoError(t, err)

	got := readAll(t, path, `SELECT "first ""name""", "select" FROM "my table"`)
	assert.Equal(t, [][]string{{"x", "y"}}, got)
}

func TestSQLiteWriter_EmptyTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sync.db")
	w := NewSQLiteWriter(dir, discardLogger())
	t.Cleanup(func() { w.Close() })

	n, err := w.Write(context.Background(), &model.Table{Columns: []string{"a"}}, model.DBConfig{Database: "sync.db", TableName: "t"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, readAll(t, path, `SELECT a FROM t`))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"plain"`, quoteIdent("plain"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}

func TestSQLiteWriter_StaysInsideDataDir(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "data")
	w := NewSQLiteWriter(dir, discardLogger())
	t.Cleanup(func() { w.Close() })
	ctx := context.Background()

	for _, name := range []string{
		filepath.Join(root, "outside.db"),
		"../outside.db",
		"nested/../../outside.db",
		"..",
		"",
	} {
		_, err := w.Write(ctx, sampleTable(), model.DBConfig{Database: name, TableName: "t"})
		assert.ErrorIs(t, err, ErrInvalidSQLiteName, "name %q", name)
	}
	_, err := os.Stat(filepath.Join(root, "outside.db"))
	assert.True(t, os.IsNotExist(err), "no file may be created outside the data directory")

	n, err := w.Write(ctx, sampleTable(), model.DBConfig{Database: "crm/leads.db", TableName: "t"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.FileExists(t, filepath.Join(dir, "crm", "leads.db"))
}

func TestCleanSQLiteName(t *testing.T) {
	got, err := CleanSQLiteName(" a/./b.db ")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("a", "b.db"), got)

	got, err = CleanSQLiteName("a/../b.db")
	require.NoError(t, err)
	assert.Equal(t, "b.db", got)

	for _, bad := range []string{"/etc/passwd", "../x.db", ".", "   "} {
		_, err := CleanSQLiteName(bad)
		assert.ErrorIs(t, err, ErrInvalidSQLiteName, "name %q", bad)
	}
}
