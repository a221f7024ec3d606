package infer

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jschaf/sqlnull/internal/ast"
	"github.com/jschaf/sqlnull/internal/texts"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type inferTest struct {
	column string
	table  string
	query  string
	want   Verdict
}

func runInferTests(t *testing.T, tests []inferTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.table+"."+tt.column+" "+tt.query, func(t *testing.T) {
			got := Infer(tt.column, tt.table, tt.query)
			assert.Equal(t, tt.want, got, "Infer(%q, %q, %q)", tt.column, tt.table, tt.query)
		})
	}
}

func TestInfer_NothingProvable(t *testing.T) {
	runInferTests(t, []inferTest{
		{"id", "foo", "select * from foo", Unknown},
		{"id", "foo", "select * from foo where 1 = 1", Unknown},
		{"id", "foo", "select * from foo where name is not null", Unknown},
		{"id", "foo", "select * from foo where bar.id is not null", Unknown},
	})
}

func TestInfer_NotNull(t *testing.T) {
	runInferTests(t, []inferTest{
		{"id", "foo", "select * from foo where id is not null", NotNull},
		{"id", "foo", "select * from foo where id notnull", NotNull},
		{"id", "foo", "select * from foo where id not null", NotNull},
		{"id", "foo", "select * from foo where foo.id is not null", NotNull},
	})
}

func TestInfer_AliasedTable(t *testing.T) {
	runInferTests(t, []inferTest{
		{"id", "foo", "select * from foo f where id notnull", NotNull},
		{"id", "foo", "select * from foo f where f.id notnull", NotNull},
		{"id", "foo", "select * from foo f where foo.id notnull", Unknown},
		{"id", "foo", "select * from foo as f where id notnull", NotNull},
		{"id", "foo", "select * from foo as f where f.id notnull", NotNull},
		{"id", "foo", "select * from foo as f where foo.id notnull", Unknown},
		{"id", "foo", `select * from "foo" as "f" where "f"."id" notnull`, NotNull},
		{"id", "f", "select * from foo as f where f.id notnull", Unknown},
	})
}

func TestInfer_Comparisons(t *testing.T) {
	for _, op := range []string{"=", "==", "!=", "<>", ">", ">=", "<", "<="} {
		runInferTests(t, []inferTest{
			{"id", "foo", "select * from foo where id " + op + " 1", NotNull},
			{"id", "foo", "select * from foo where 1 " + op + " foo.id", NotNull},
			{"id", "foo", "select * from foo where id " + op + " id", NotNull},
		})
	}
	runInferTests(t, []inferTest{
		{"id", "foo", "select * from foo where id + 1 = 2", Unknown},
		{"id", "foo", "select * from foo where id is 1", Unknown},
		{"id", "foo", "select * from foo where id between 1 and 2", Unknown},
	})
}

func TestInfer_And(t *testing.T) {
	runInferTests(t, []inferTest{
		{"id", "foo", "select * from foo where 1=1 and id not null", NotNull},
		{"id", "foo", "select * from foo where id not null and 1=1", NotNull},
		{"id", "foo", "select * from foo where 1=1 and 2=2", Unknown},
		// Contradictions aren't detected: the left side wins.
		{"id", "foo", "select * from foo where id is not null and id is null", NotNull},
		{"id", "foo", "select * from foo where id is null and id is not null", Null},
		{"id", "foo", "select * from foo where 1=1 and id is null and id = 1", Null},
	})
}

func TestInfer_Or(t *testing.T) {
	runInferTests(t, []inferTest{
		{"id", "foo", "select * from foo where id is not null or id is not null and 1=1", NotNull},
		{"id", "foo", "select * from foo where id > 1 or id < 0", NotNull},
		{"id", "foo", "select * from foo where id is null or id is null", Null},
		{"id", "foo", "select * from foo where id is not null or id is null", Unknown},
		{"id", "foo", "select * from foo where id is null or id is not null", Unknown},
		{"id", "foo", "select * from foo where id is not null or 1=1", Unknown},
		{"id", "foo", "select * from foo where 1=1 or id is not null", Unknown},
	})
}

func TestInfer_Parens(t *testing.T) {
	runInferTests(t, []inferTest{
		{"id", "foo", "select * from foo f where (id not null)", NotNull},
		{"id", "foo", "select * from foo f where (id is null) or (id is null)", Null},
		{"id", "foo", "select * from foo f where (id is null) and (id is null)", Null},
		{"id", "foo", "select * from foo f where ((id is null))", Null},
		{"id", "foo", "select * from foo f where (id = 1, id = 2) = (1, 1)", Unknown},
		{"id", "foo", "select * from foo f where (id not null, 1 = 1)", Unknown},
	})
}

func TestInfer_IsNull(t *testing.T) {
	runInferTests(t, []inferTest{
		{"id", "foo", "select * from foo f where id is null", Null},
		{"id", "foo", "select * from foo f where null is id", Null},
		{"id", "foo", "select * from foo f where null is not id", NotNull},
		{"id", "foo", "select * from foo f where f.id is not distinct from null", Null},
		{"id", "foo", "select * from foo f where f.id is distinct from null", NotNull},
		// ISNULL is left opaque.
		{"id", "foo", "select * from foo f where id isnull", Unknown},
		{"id", "foo", "select * from foo f where null is null", Unknown},
	})
}

func TestInfer_Joins(t *testing.T) {
	runInferTests(t, []inferTest{
		{"id", "bar", "select * from foo join bar where bar.id is null", Null},
		{"id", "bar", "select * from foo join bar b where b.id is null", Null},
		{"id", "bar", "select * from foo, bar b where b.id is null", Null},
		{"id", "bar", "select * from foo inner join bar b where b.id is null", Null},
		{"id", "bar", "select * from foo cross join bar as b where b.id is null", Null},
		{"id", "bar", "select * from foo left join bar where bar.id is null", Unknown},
		{"id", "bar", "select * from foo left outer join bar where bar.id is null", Unknown},
		{"id", "bar", "select * from foo right join bar where bar.id is null", Unknown},
		{"id", "bar", "select * from foo full outer join bar where bar.id is null", Unknown},
		{"id", "bar", "select * from foo natural join bar where bar.id is null", Unknown},
		{"id", "bar", "select * from foo join (select id from bar) bar where bar.id is null", Unknown},
		{"id", "baz", "select * from foo join bar where bar.id is null", Unknown},
	})
}

func TestInfer_JoinConstraints(t *testing.T) {
	runInferTests(t, []inferTest{
		{"id", "foo", "SELECT foo.id FROM foo INNER JOIN bar ON bar.id = foo.id", NotNull},
		{"id", "bar", "SELECT foo.id FROM foo INNER JOIN bar ON bar.id = foo.id", NotNull},
		{"id", "bar", "SELECT * FROM foo JOIN bar b ON b.id IS NULL", Null},
		{"id", "bar", "SELECT * FROM foo, bar ON bar.id > 0", NotNull},
		{"id", "foo", "SELECT * FROM foo JOIN bar ON 1 = 1 JOIN baz ON baz.foo_id = foo.id", NotNull},
		// The WHERE clause is checked before join constraints.
		{"id", "foo", "SELECT * FROM foo JOIN bar ON bar.id = foo.id WHERE foo.id IS NULL", Null},
		{"id", "foo", "SELECT * FROM foo JOIN bar ON bar.id = foo.id WHERE 1 = 1", NotNull},
		{"id", "foo", "SELECT * FROM foo LEFT JOIN bar ON bar.id = foo.id", Unknown},
		{"id", "foo", "SELECT * FROM foo JOIN bar USING (id)", Unknown},
		// The first definite ON clause wins, even before a RIGHT or FULL join.
		{"id", "foo", "SELECT * FROM foo JOIN bar ON bar.id = foo.id RIGHT JOIN baz ON baz.id = 1", NotNull},
		{"id", "foo", "SELECT * FROM foo JOIN bar ON foo.id IS NULL RIGHT JOIN baz ON baz.id = 1", Null},
		{"id", "foo", "SELECT * FROM foo JOIN bar ON foo.id > 0 FULL JOIN baz ON 1 JOIN qux ON foo.id IS NULL", NotNull},
		{"id", "foo", "SELECT * FROM foo JOIN bar ON bar.id = foo.id LEFT JOIN baz ON baz.id = 1", NotNull},
	})
}

func TestInfer_KeywordColumns(t *testing.T) {
	runInferTests(t, []inferTest{
		{"offset", "kw", "select offset from kw where offset is not null", NotNull},
		{"left", "kw", "select * from kw where left is null", Null},
		{"match", "kw", "select * from kw k where k.match > 0", NotNull},
		{"like", "kw", "select * from kw where like like 'a%'", NotNull},
		{"true", "kw", "select * from kw where true notnull", NotNull},
		{"natural", "kw", "select * from foo join kw on kw.natural = foo.id", NotNull},
		{"raise", "kw", "select * from kw where raise in (1, 2)", NotNull},
		{"id", "kw", "select * from foo left join kw where kw.id is null", Unknown},
	})
}

func TestInfer_InList(t *testing.T) {
	runInferTests(t, []inferTest{
		{"id", "foo", "select * from foo f where id in (:bar)", NotNull},
		{"id", "foo", "select * from foo f where f.id in (1, 2, 3)", NotNull},
		{"id", "foo", "select * from foo f where id in (select foo_id from bar)", NotNull},
		{"id", "foo", "select * from foo f where id not in (1, 2)", NotNull},
		{"id", "foo", "select * from foo f where id not in ()", Unknown},
		{"id", "foo", "select * from foo f where id not in (select foo_id from bar)", Unknown},
		{"id", "foo", "select * from foo f where 1 in (id)", Unknown},
	})
}

func TestInfer_Like(t *testing.T) {
	runInferTests(t, []inferTest{
		{"id", "foo", "select * from foo f where id like ?", NotNull},
		{"id", "foo", "select * from foo f where id not like ?", NotNull},
		{"id", "foo", "select * from foo f where ? like id", NotNull},
		{"id", "foo", "select * from foo f where ? not like id", NotNull},
		{"id", "foo", "select * from foo f where id like 'a!%' escape '!'", NotNull},
		{"id", "foo", "select * from foo f where id glob 'a*'", NotNull},
		{"id", "foo", "select * from foo f where id regexp 'a.*'", Unknown},
		{"id", "foo", "select * from foo f where id match 'a'", Unknown},
		{"id", "foo", "select * from foo f where like('a', id)", Unknown},
	})
}

func TestInfer_OpaqueLeaves(t *testing.T) {
	runInferTests(t, []inferTest{
		{"id", "foo", "select * from foo where not id is null", Unknown},
		{"id", "foo", "select * from foo where coalesce(id, 1) = 1", Unknown},
		{"id", "foo", "select * from foo where case when id is null then 0 else 1 end", Unknown},
		{"id", "foo", "select * from foo where exists (select 1 from bar where id is not null)", Unknown},
		{"id", "foo", "select * from foo where (select id from bar) is not null", Unknown},
		{"id", "foo", "select * from foo where cast(id as text) is not null", Unknown},
		{"id", "foo", "select * from foo where id collate nocase = 'a'", Unknown},
		{"id", "foo", "select * from foo where -id > 0", Unknown},
	})
}

func TestInfer_UnsupportedStatements(t *testing.T) {
	runInferTests(t, []inferTest{
		{"id", "foo", "", Unknown},
		{"id", "foo", "select", Unknown},
		{"id", "foo", "select * from foo where id is not", Unknown},
		{"id", "foo", "select * from foo where id = 'unterminated", Unknown},
		{"id", "foo", "select 1 where 1 is not null", Unknown},
		{"id", "foo", "values (1)", Unknown},
		{"id", "foo", "update foo set id = 1 where id is not null", Unknown},
		{"id", "foo", "delete from foo where id is not null", Unknown},
		{"id", "foo", "select id from foo where id is not null union select id from foo", Unknown},
		{"id", "foo", "select id from foo where id is not null except select 1", Unknown},
	})
}

func TestInfer_FirstStatementOnly(t *testing.T) {
	runInferTests(t, []inferTest{
		{"id", "foo", "select * from foo where id is not null; select * from foo where id is null", NotNull},
		{"id", "foo", "select * from foo; select * from foo where id is null", Unknown},
		{"id", "foo", "select * from foo where id is null; this isn't sql", Null},
	})
}

func TestInfer_WithClauseAndClauses(t *testing.T) {
	q := texts.Dedent(`
		WITH recent AS (SELECT * FROM bar WHERE id > 10)
		SELECT f.id, count(*) AS n
		FROM foo f
		  JOIN recent r ON r.foo_id = f.id
		WHERE f.name LIKE :pattern
		GROUP BY f.id
		HAVING count(*) > 1
		ORDER BY n DESC NULLS LAST
		LIMIT 10 OFFSET 5`)
	runInferTests(t, []inferTest{
		{"name", "foo", q, NotNull},
		{"id", "foo", q, NotNull},
		{"foo_id", "recent", q, NotNull},
		{"id", "bar", q, Unknown},
	})
}

func TestInfer_Idempotent(t *testing.T) {
	const q = "select * from foo f where (id is null) or (id is null)"
	first := Infer("id", "foo", q)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, Infer("id", "foo", q))
	}
}

func TestInfer_Concurrent(t *testing.T) {
	tests := []inferTest{
		{"id", "foo", "select * from foo where id is not null", NotNull},
		{"id", "foo", "select * from foo where id is null", Null},
		{"id", "foo", "select * from foo", Unknown},
		{"id", "bar", "SELECT foo.id FROM foo INNER JOIN bar ON bar.id = foo.id", NotNull},
	}
	inf := NewInferrer()
	var wg sync.WaitGroup
	got := make([]Verdict, 64)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tt := tests[i%len(tests)]
			got[i] = inf.Infer(tt.column, tt.table, tt.query)
		}(i)
	}
	wg.Wait()
	for i, v := range got {
		assert.Equal(t, tests[i%len(tests)].want, v, "goroutine %d", i)
	}
}

type stubParser struct {
	stmt ast.Stmt
	err  error
}

func (p stubParser) ParseStmt(string) (ast.Stmt, error) { return p.stmt, p.err }

func TestInferrer_WithParser(t *testing.T) {
	stmt := &ast.SelectStmt{
		From: &ast.FromClause{
			Source: &ast.TableName{Name: &ast.Ident{Name: "foo"}},
		},
		Where: &ast.NotNullExpr{X: &ast.Ident{Name: "id"}},
	}
	inf := NewInferrer(WithParser(stubParser{stmt: stmt}))
	assert.Equal(t, NotNull, inf.Infer("id", "foo", "ignored"))

	inf = NewInferrer(WithParser(stubParser{stmt: stmt, err: errors.New("boom")}))
	assert.Equal(t, Unknown, inf.Infer("id", "foo", "ignored"))

	inf = NewInferrer(WithParser(stubParser{}))
	assert.Equal(t, Unknown, inf.Infer("id", "foo", "ignored"))
}

func TestInferrer_WithLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	inf := NewInferrer(WithLogger(zap.New(core).Sugar()))

	tests := []struct {
		query   string
		want    Verdict
		wantLog string
	}{
		{"select * from foo where id is null", Null, "infer foo.id: Null from WHERE clause"},
		{"select * from foo join bar on foo.id = bar.id", NotNull, "infer foo.id: NotNull from ON clause of join 0"},
		{"select 1", Unknown, "infer foo.id: select has no FROM clause"},
		{"select * from bar", Unknown, "infer foo.id: table not found outside of outer joins"},
		{"insert into foo values (1)", Unknown, "infer foo.id: statement *ast.UnsupportedStmt is not a select"},
		{"select * from foo union select * from foo", Unknown, "infer foo.id: compound select"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, inf.Infer("id", "foo", tt.query))
			entries := logs.TakeAll()
			if assert.Len(t, entries, 1) {
				assert.Equal(t, tt.wantLog, entries[0].Message)
			}
		})
	}
}

func TestVerdict_String(t *testing.T) {
	tests := []struct {
		v     Verdict
		want  string
		known bool
	}{
		{Unknown, "Unknown", false},
		{NotNull, "NotNull", true},
		{Null, "Null", true},
		{Verdict(7), "Verdict(7)", false},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.String())
			assert.Equal(t, tt.known, tt.v.Known())
			assert.Equal(t, tt.want, fmt.Sprint(tt.v))
		})
	}
}

func TestVerdict_Text(t *testing.T) {
	for _, v := range []Verdict{Unknown, NotNull, Null} {
		text, err := v.MarshalText()
		assert.NoError(t, err)
		var got Verdict
		assert.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, v, got)
	}
	_, err := Verdict(9).MarshalText()
	assert.Error(t, err)
	var v Verdict
	assert.Error(t, v.UnmarshalText([]byte("Maybe")))
}
