package infer

import "github.com/jschaf/sqlnull/internal/ast"

// evaluate returns the verdict for column of the table referenced as used in
// every row for which expr is true. Only the shapes below are understood;
// everything else is Unknown without looking inside it.
func evaluate(column, used string, expr ast.Expr) Verdict {
	switch x := expr.(type) {
	case *ast.BinaryExpr:
		return evaluateBinary(column, used, x)

	case *ast.InExpr:
		if !refersTo(column, used, x.X) {
			return Unknown
		}
		// NULL NOT IN () and NULL NOT IN (<empty select>) are both true.
		if x.Not && len(x.Values) == 0 {
			return Unknown
		}
		return NotNull

	case *ast.LikeExpr:
		// REGEXP and MATCH call user functions that may accept nulls.
		if x.Op != ast.LikeOpLike && x.Op != ast.LikeOpGlob {
			return Unknown
		}
		if refersTo(column, used, x.X) || refersTo(column, used, x.Pattern) {
			return NotNull
		}
		return Unknown

	case *ast.NotNullExpr:
		if refersTo(column, used, x.X) {
			return NotNull
		}
		return Unknown

	case *ast.ParenExpr:
		if len(x.List) == 0 {
			return Unknown
		}
		v := evaluate(column, used, x.List[0])
		for _, e := range x.List[1:] {
			if evaluate(column, used, e) != v {
				return Unknown
			}
		}
		return v

	default:
		return Unknown
	}
}

func evaluateBinary(column, used string, x *ast.BinaryExpr) Verdict {
	switch {
	case x.Op.IsComparison():
		if refersTo(column, used, x.X) || refersTo(column, used, x.Y) {
			return NotNull
		}
		return Unknown

	case x.Op == ast.OpIs || x.Op == ast.OpIsNot:
		if !isNullCheck(column, used, x) {
			return Unknown
		}
		if x.Op == ast.OpIs {
			return Null
		}
		return NotNull

	case x.Op == ast.OpAnd:
		// Both sides hold for every surviving row so either side is proof.
		if v := evaluate(column, used, x.X); v.Known() {
			return v
		}
		return evaluate(column, used, x.Y)

	case x.Op == ast.OpOr:
		left := evaluate(column, used, x.X)
		right := evaluate(column, used, x.Y)
		if left == right {
			return left
		}
		return Unknown

	default:
		return Unknown
	}
}

// isNullCheck reports whether x compares the column with NULL, as in
// col IS NULL or NULL IS col.
func isNullCheck(column, used string, x *ast.BinaryExpr) bool {
	_, leftNull := x.X.(*ast.NullLit)
	_, rightNull := x.Y.(*ast.NullLit)
	return rightNull && refersTo(column, used, x.X) ||
		leftNull && refersTo(column, used, x.Y)
}

// refersTo reports whether expr names the column. A bare identifier matches
// any table since the schema is unknown. A qualified identifier matches only
// if qualified by the used name.
func refersTo(column, used string, expr ast.Expr) bool {
	switch x := expr.(type) {
	case *ast.Ident:
		return x.Name == column
	case *ast.QualifiedIdent:
		return x.Table.Name == used && x.Column.Name == column
	default:
		return false
	}
}
