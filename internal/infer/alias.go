package infer

import "github.com/jschaf/sqlnull/internal/ast"

// isEligibleJoin reports whether a join behaves like a filtered cross product
// of its sources, meaning it never adds null-extended rows. Join kinds not
// listed here are not eligible.
func isEligibleJoin(join *ast.JoinedTable) bool {
	if join.Natural {
		return false
	}
	switch join.Op {
	case ast.JoinComma, ast.JoinPlain, ast.JoinInner, ast.JoinCross:
		return true
	default:
		return false
	}
}

// resolveUsedName returns the name used inside the statement to refer to the
// table with the base name table: its alias if it has one, otherwise the
// table name. Only the primary source and eligible joins are searched, so a
// table reachable only through an outer join doesn't resolve.
func resolveUsedName(table string, from *ast.FromClause) (string, bool) {
	if name, ok := from.Source.(*ast.TableName); ok && name.Name.Name == table {
		return name.UsedName(), true
	}
	for _, join := range from.Joins {
		if !isEligibleJoin(join) {
			continue
		}
		if name, ok := join.Source.(*ast.TableName); ok && name.Name.Name == table {
			return name.UsedName(), true
		}
	}
	return "", false
}
