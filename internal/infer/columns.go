package infer

import "github.com/jschaf/sqlnull/internal/ast"

// ResultColumn describes an output column of a select.
type ResultColumn struct {
	// Index of the column in the select list, starting at 0.
	Index int
	// Name of the output column: the alias if present, else the column name
	// of a column reference. Empty for other unaliased expressions.
	Name string
	// Table is the base name of the table the column reads from. Empty if the
	// result column isn't a column reference or the table is ambiguous.
	Table string
	// Column is the referenced column name. Empty if Table is empty.
	Column string
	// Expr is the result column expression.
	Expr ast.Expr
}

// ResultColumns returns the non-star result columns of sel and, for column
// references, the base table they read from. A qualifier resolves through
// every source in the FROM clause, including outer joins. An unqualified
// column resolves only if the FROM clause has exactly one source. A table
// that appears more than once is ambiguous and resolves to nothing.
func ResultColumns(sel *ast.SelectStmt) []ResultColumn {
	var srcs []*ast.TableName
	var nonTables int
	if sel.From != nil {
		srcs, nonTables = collectSources(sel.From, srcs, 0)
	}
	counts := make(map[string]int, len(srcs))
	for _, src := range srcs {
		counts[src.Name.Name]++
	}
	lookup := func(used string) string {
		for _, src := range srcs {
			if src.UsedName() == used && counts[src.Name.Name] == 1 {
				return src.Name.Name
			}
		}
		return ""
	}

	cols := make([]ResultColumn, 0, len(sel.Columns))
	for i, c := range sel.Columns {
		if c.Star {
			continue
		}
		col := ResultColumn{Index: i, Expr: c.X}
		switch x := c.X.(type) {
		case *ast.Ident:
			col.Name = x.Name
			if len(srcs) == 1 && nonTables == 0 {
				col.Table = lookup(srcs[0].UsedName())
			}
			col.Column = x.Name
		case *ast.QualifiedIdent:
			col.Name = x.Column.Name
			col.Table = lookup(x.Table.Name)
			col.Column = x.Column.Name
		}
		if col.Table == "" {
			col.Column = ""
		}
		if c.Alias != nil {
			col.Name = c.Alias.Name
		}
		cols = append(cols, col)
	}
	return cols
}

// collectSources appends the table names of from, descending into
// parenthesized joins, and counts the sources that aren't tables.
func collectSources(from *ast.FromClause, srcs []*ast.TableName, nonTables int) ([]*ast.TableName, int) {
	add := func(src ast.TableSource) {
		switch s := src.(type) {
		case *ast.TableName:
			srcs = append(srcs, s)
		case *ast.ParenSource:
			srcs, nonTables = collectSources(s.From, srcs, nonTables)
		case nil:
		default:
			nonTables++
		}
	}
	add(from.Source)
	for _, join := range from.Joins {
		add(join.Source)
	}
	return srcs, nonTables
}
