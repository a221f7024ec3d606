// Package infer proves whether a column of a SELECT statement is never null
// or always null, using only the shape of the WHERE clause and of the ON
// constraints of inner joins.
package infer

import (
	gotok "go/token"

	"github.com/jschaf/sqlnull/internal/ast"
	"github.com/jschaf/sqlnull/internal/parser"
	"go.uber.org/zap"
)

// Parser parses the first statement of a query. Any text after the statement
// is ignored.
type Parser interface {
	ParseStmt(query string) (ast.Stmt, error)
}

// sqliteParser parses queries with the SQLite grammar of internal/parser.
type sqliteParser struct{}

func (sqliteParser) ParseStmt(query string) (ast.Stmt, error) {
	return parser.ParseStmt(gotok.NewFileSet(), "", query, 0)
}

// Inferrer infers column nullability. An Inferrer is safe for concurrent use.
type Inferrer struct {
	parser Parser
	l      *zap.SugaredLogger
}

// Option configures an Inferrer.
type Option func(*Inferrer)

// WithLogger sets the logger used to explain verdicts at debug level.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(inf *Inferrer) { inf.l = l }
}

// WithParser replaces the SQLite parser.
func WithParser(p Parser) Option {
	return func(inf *Inferrer) { inf.parser = p }
}

func NewInferrer(opts ...Option) *Inferrer {
	inf := &Inferrer{
		parser: sqliteParser{},
		l:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(inf)
	}
	return inf
}

var defaultInferrer = NewInferrer()

// Infer returns the verdict for column of table in the first statement of
// query using the default Inferrer.
func Infer(column, table, query string) Verdict {
	return defaultInferrer.Infer(column, table, query)
}

// Infer parses query and returns the verdict for column of table, where table
// is the base name of a table in the FROM clause, not its alias. Every
// failure, including a syntax error, is Unknown.
func (inf *Inferrer) Infer(column, table, query string) Verdict {
	stmt, err := inf.parser.ParseStmt(query)
	if err != nil {
		inf.l.Debugf("parse query for %s.%s: %s", table, column, err)
		return Unknown
	}
	return inf.InferStmt(column, table, stmt)
}

// InferStmt returns the verdict for column of table in an already parsed
// statement.
func (inf *Inferrer) InferStmt(column, table string, stmt ast.Stmt) Verdict {
	sel, ok := stmt.(*ast.SelectStmt)
	switch {
	case !ok:
		inf.l.Debugf("infer %s.%s: statement %T is not a select", table, column, stmt)
		return Unknown
	case len(sel.Compound) > 0:
		inf.l.Debugf("infer %s.%s: compound select", table, column)
		return Unknown
	case sel.From == nil:
		inf.l.Debugf("infer %s.%s: select has no FROM clause", table, column)
		return Unknown
	}

	used, ok := resolveUsedName(table, sel.From)
	if !ok {
		inf.l.Debugf("infer %s.%s: table not found outside of outer joins", table, column)
		return Unknown
	}

	if sel.Where != nil {
		if v := evaluate(column, used, sel.Where); v.Known() {
			inf.l.Debugf("infer %s.%s: %s from WHERE clause", table, column, v)
			return v
		}
	}

	for i, join := range sel.From.Joins {
		on, ok := join.Constraint.(*ast.OnConstraint)
		if !ok || !isEligibleJoin(join) {
			continue
		}
		v := evaluate(column, used, on.X)
		if !v.Known() {
			continue
		}
		inf.l.Debugf("infer %s.%s: %s from ON clause of join %d", table, column, v, i)
		return v
	}
	return Unknown
}
