// Package sqlnull infers whether a column selected by a SQLite SELECT
// statement is provably never null, provably always null, or unknown, using
// only the shape of the statement.
package sqlnull

import (
	"github.com/jschaf/sqlnull/internal/infer"
	"go.uber.org/zap"
)

// Verdict is the nullability of a column: Unknown, NotNull or Null. Unknown
// is the zero value and means the column must be treated as nullable.
type Verdict = infer.Verdict

const (
	Unknown = infer.Unknown
	NotNull = infer.NotNull
	Null    = infer.Null
)

// Inferrer infers column nullability. It's safe for concurrent use.
type Inferrer = infer.Inferrer

// Option configures an Inferrer.
type Option = infer.Option

// NewInferrer returns an Inferrer that parses queries with the SQLite grammar.
func NewInferrer(opts ...Option) *Inferrer {
	return infer.NewInferrer(opts...)
}

// WithLogger sets the logger used to explain verdicts at debug level.
func WithLogger(l *zap.SugaredLogger) Option {
	return infer.WithLogger(l)
}

// InferNullability returns the verdict for column of table in the first
// statement of query. The table is the base table name; an alias in query is
// resolved. Any query that isn't a single SELECT with a FROM clause, including
// a query with syntax errors, is Unknown.
func InferNullability(column, table, query string) Verdict {
	return infer.Infer(column, table, query)
}
