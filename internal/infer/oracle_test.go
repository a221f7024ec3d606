package infer

import (
	"database/sql"
	"testing"

	"github.com/jschaf/sqlnull/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const oracleSchema = `
CREATE TABLE foo (id INTEGER, name TEXT);
INSERT INTO foo VALUES (1, 'a'), (2, NULL), (NULL, 'c'), (NULL, NULL);
CREATE TABLE bar (id INTEGER, foo_id INTEGER);
INSERT INTO bar VALUES (1, 1), (NULL, 2), (3, NULL), (NULL, NULL);
CREATE TABLE kw ("offset" INTEGER, "left" TEXT, "match" TEXT);
INSERT INTO kw VALUES (1, 'a', NULL), (NULL, NULL, 'b'), (3, NULL, NULL);
`

func newOracleDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a new database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { errs.CaptureT(t, db.Close, "close oracle db") })
	_, err = db.Exec(oracleSchema)
	require.NoError(t, err)
	return db
}

// TestInfer_Oracle runs each query against SQLite and checks that every
// returned value agrees with the verdict. Each query selects only the column
// under test. Unknown cases return at least one null, so claiming NotNull
// for them would be wrong.
func TestInfer_Oracle(t *testing.T) {
	db := newOracleDB(t)
	tests := []inferTest{
		{"id", "foo", "SELECT id FROM foo WHERE id IS NOT NULL", NotNull},
		{"id", "foo", "SELECT id FROM foo WHERE id NOTNULL", NotNull},
		{"id", "foo", "SELECT f.id FROM foo f WHERE f.id NOT NULL", NotNull},
		{"id", "foo", "SELECT id FROM foo WHERE id IS NULL", Null},
		{"id", "foo", "SELECT id FROM foo WHERE NULL IS id", Null},
		{"id", "foo", "SELECT id FROM foo WHERE NULL IS NOT id", NotNull},
		{"id", "foo", "SELECT f.id FROM foo f WHERE f.id > 1 OR f.id < 2", NotNull},
		{"id", "foo", "SELECT id FROM foo WHERE 1 = 1 AND id <> 5", NotNull},
		{"id", "foo", "SELECT id FROM foo WHERE (id IS NULL) OR (id IS NULL)", Null},
		{"id", "foo", "SELECT id FROM foo WHERE id IN (1, 2)", NotNull},
		{"id", "foo", "SELECT id FROM foo WHERE id NOT IN (7, 8)", NotNull},
		{"id", "foo", "SELECT id FROM foo WHERE id IN (SELECT foo_id FROM bar)", NotNull},
		{"name", "foo", "SELECT name FROM foo WHERE name LIKE '%'", NotNull},
		{"name", "foo", "SELECT name FROM foo WHERE name NOT LIKE 'zzz'", NotNull},
		{"name", "foo", "SELECT name FROM foo WHERE name GLOB '*'", NotNull},
		{"name", "foo", "SELECT name FROM foo WHERE 'a' LIKE name", NotNull},
		{"id", "foo", "SELECT foo.id FROM foo INNER JOIN bar ON bar.foo_id = foo.id", NotNull},
		{"foo_id", "bar", "SELECT bar.foo_id FROM foo INNER JOIN bar ON bar.foo_id = foo.id", NotNull},
		{"id", "bar", "SELECT b.id FROM foo, bar b WHERE b.id IS NULL", Null},
		{"id", "bar", "SELECT bar.id FROM foo JOIN bar ON bar.id IS NULL", Null},
		{"id", "bar", "SELECT bar.id FROM foo CROSS JOIN bar WHERE bar.id = foo.id", NotNull},
		{"offset", "kw", "SELECT offset FROM kw WHERE offset IS NOT NULL", NotNull},
		{"left", "kw", "SELECT left FROM kw WHERE left IS NULL", Null},
		{"match", "kw", "SELECT k.match FROM kw k WHERE k.match LIKE '%'", NotNull},

		{"id", "foo", "SELECT id FROM foo", Unknown},
		{"id", "foo", "SELECT id FROM foo WHERE id IS NOT NULL OR name IS NOT NULL", Unknown},
		{"id", "foo", "SELECT id FROM foo WHERE id NOT IN ()", Unknown},
		{"id", "foo", "SELECT id FROM foo WHERE id NOT IN (SELECT id FROM bar WHERE 0)", Unknown},
		{"id", "foo", "SELECT foo.id FROM foo LEFT JOIN bar ON bar.foo_id = foo.id", Unknown},
		{"id", "bar", "SELECT bar.id FROM foo LEFT JOIN bar ON bar.id = foo.id", Unknown},
		{"id", "foo", "SELECT id FROM foo WHERE id IS NULL UNION ALL SELECT id FROM foo WHERE id = 1", Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Infer(tt.column, tt.table, tt.query)
			assert.Equal(t, tt.want, got)

			nulls, total := countNulls(t, db, tt.query)

			switch got {
			case NotNull:
				assert.Zero(t, nulls, "verdict NotNull but query returned nulls")
			case Null:
				assert.Equal(t, total, nulls, "verdict Null but query returned non-null values")
			case Unknown:
				assert.NotZero(t, nulls, "expected an Unknown case that returns nulls")
			}
		})
	}
}

// TestInfer_Oracle_NullExtendedAfterOn pins down a known gap: the first
// definite ON verdict is returned even when a later RIGHT or FULL join
// null-extends the column.
func TestInfer_Oracle_NullExtendedAfterOn(t *testing.T) {
	db := newOracleDB(t)
	query := "SELECT foo.id FROM foo JOIN bar ON bar.id = foo.id RIGHT JOIN bar AS b2 ON b2.id = 99"
	assert.Equal(t, NotNull, Infer("id", "foo", query))
	nulls, total := countNulls(t, db, query)
	assert.Equal(t, total, nulls, "every row is null-extended by the RIGHT JOIN")
}

// countNulls runs a single column query and counts the null values.
func countNulls(t *testing.T, db *sql.DB, query string) (nulls, total int) {
	t.Helper()
	rows, err := db.Query(query)
	require.NoError(t, err)
	defer errs.CaptureT(t, rows.Close, "close rows")
	for rows.Next() {
		var v interface{}
		require.NoError(t, rows.Scan(&v))
		total++
		if v == nil {
			nulls++
		}
	}
	require.NoError(t, rows.Err())
	require.NotZero(t, total, "oracle query returned no rows")
	return nulls, total
}
