// Package ast declares the types used to represent syntax trees for SQLite
// SELECT statements.
package ast

import gotok "go/token"

// Node is the super-type of all AST nodes.
type Node interface {
	Pos() gotok.Pos // position of first character belonging to the node
	End() gotok.Pos // position of first character immediately after the node
}

// Expr is the super-type of all expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the super-type of all statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// TableSource is a single entry in a FROM clause: a table, a subquery, a
// parenthesized join, or a table-valued function.
type TableSource interface {
	Node
	sourceNode()
}

// JoinConstraint is either an ON or a USING constraint.
type JoinConstraint interface {
	Node
	joinConstraint()
}

// ----------------------------------------------------------------------------
// Comments

// A LineComment node represents a single line comment.
type LineComment struct {
	Start gotok.Pos // position of the '--' starting the comment
	Text  string    // comment text excluding '\n'
}

func (c *LineComment) Pos() gotok.Pos { return c.Start }
func (c *LineComment) End() gotok.Pos { return gotok.Pos(int(c.Start) + len(c.Text)) }

// A CommentGroup represents a sequence of comments with no other tokens and
// no empty lines between.
type CommentGroup struct {
	List []*LineComment // len(List) > 0
}

func (g *CommentGroup) Pos() gotok.Pos { return g.List[0].Pos() }
func (g *CommentGroup) End() gotok.Pos { return g.List[len(g.List)-1].End() }

// ----------------------------------------------------------------------------
// Expressions

// BinaryOp is the operator of a BinaryExpr.
type BinaryOp int

const (
	OpEq      BinaryOp = iota + 1 // = or ==
	OpNotEq                       // != or <>
	OpGt                          // >
	OpGtEq                        // >=
	OpLt                          // <
	OpLtEq                        // <=
	OpIs                          // IS, IS NOT DISTINCT FROM
	OpIsNot                       // IS NOT, IS DISTINCT FROM
	OpAnd                         // AND
	OpOr                          // OR
	OpAdd                         // +
	OpSub                         // -
	OpMul                         // *
	OpDiv                         // /
	OpMod                         // %
	OpConcat                      // ||
	OpBitAnd                      // &
	OpBitOr                       // |
	OpShiftL                      // <<
	OpShiftR                      // >>
	OpJSONPtr                     // ->
	OpJSONText                    // ->>
)

var binaryOps = [...]string{
	OpEq:       "=",
	OpNotEq:    "!=",
	OpGt:       ">",
	OpGtEq:     ">=",
	OpLt:       "<",
	OpLtEq:     "<=",
	OpIs:       "IS",
	OpIsNot:    "IS NOT",
	OpAnd:      "AND",
	OpOr:       "OR",
	OpAdd:      "+",
	OpSub:      "-",
	OpMul:      "*",
	OpDiv:      "/",
	OpMod:      "%",
	OpConcat:   "||",
	OpBitAnd:   "&",
	OpBitOr:    "|",
	OpShiftL:   "<<",
	OpShiftR:   ">>",
	OpJSONPtr:  "->",
	OpJSONText: "->>",
}

func (op BinaryOp) String() string {
	if 0 < op && int(op) < len(binaryOps) {
		return binaryOps[op]
	}
	return "BinaryOp(?)"
}

// IsComparison reports whether op is one of =, !=, >, >=, <, <=.
func (op BinaryOp) IsComparison() bool { return OpEq <= op && op <= OpLtEq }

// UnaryOp is the operator of a UnaryExpr.
type UnaryOp int

const (
	UnaryNot    UnaryOp = iota + 1 // NOT
	UnaryNeg                       // -
	UnaryPlus                      // +
	UnaryBitNot                    // ~
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryNot:
		return "NOT"
	case UnaryNeg:
		return "-"
	case UnaryPlus:
		return "+"
	case UnaryBitNot:
		return "~"
	default:
		return "UnaryOp(?)"
	}
}

// LikeOp is the operator of a LikeExpr.
type LikeOp int

const (
	LikeOpLike   LikeOp = iota + 1 // LIKE
	LikeOpGlob                     // GLOB
	LikeOpRegexp                   // REGEXP
	LikeOpMatch                    // MATCH
)

func (op LikeOp) String() string {
	switch op {
	case LikeOpLike:
		return "LIKE"
	case LikeOpGlob:
		return "GLOB"
	case LikeOpRegexp:
		return "REGEXP"
	case LikeOpMatch:
		return "MATCH"
	default:
		return "LikeOp(?)"
	}
}

// An expression is represented by a tree consisting of one or more of the
// following concrete expression nodes.
type (
	// A BadExpr node is a placeholder for an expression containing syntax
	// errors for which a correct expression node cannot be created.
	BadExpr struct {
		From, To gotok.Pos // position range of bad expression
	}

	// An Ident node represents an identifier, quoted or not.
	Ident struct {
		NamePos gotok.Pos // identifier position
		Name    string    // identifier name with quotes removed
		Lit     string    // identifier as it appeared in the source
	}

	// A QualifiedIdent node represents a column reference qualified by a
	// table, like foo.id, or by a schema and table, like main.foo.id.
	QualifiedIdent struct {
		Schema *Ident // or nil
		Table  *Ident
		Column *Ident
	}

	// A NullLit node represents the NULL literal.
	NullLit struct {
		Null gotok.Pos
	}

	// A NumberLit node represents an integer, real or hex literal.
	NumberLit struct {
		ValuePos gotok.Pos
		Value    string // literal as it appeared in the source
	}

	// A StringLit node represents a single-quoted string literal.
	StringLit struct {
		ValuePos gotok.Pos
		Value    string // literal as it appeared in the source, including quotes
	}

	// A BlobLit node represents a blob literal like x'CAFE'.
	BlobLit struct {
		ValuePos gotok.Pos
		Value    string // literal as it appeared in the source
	}

	// A BindParam node represents a query parameter like ?, ?1, :name,
	// @name or $name.
	BindParam struct {
		NamePos gotok.Pos
		Name    string // parameter including its prefix character
	}

	// A ParenExpr node represents a parenthesized expression or a row value
	// like (a, b).
	ParenExpr struct {
		Lparen gotok.Pos
		List   []Expr // len(List) > 0
		Rparen gotok.Pos
	}

	// A UnaryExpr node represents a prefix operator expression.
	UnaryExpr struct {
		OpPos gotok.Pos
		Op    UnaryOp
		X     Expr
	}

	// A BinaryExpr node represents a binary expression.
	BinaryExpr struct {
		X     Expr
		OpPos gotok.Pos
		Op    BinaryOp
		Y     Expr
	}

	// An InExpr node represents x [NOT] IN (...). Exactly one of Values,
	// Select or Table is set.
	InExpr struct {
		X      Expr
		Not    bool
		Lparen gotok.Pos   // invalid for IN table
		Values []Expr      // IN (1, 2, 3); may be empty
		Select *SelectStmt // IN (SELECT ...)
		Table  Expr        // IN tbl or IN schema.tbl
		Rparen gotok.Pos   // invalid for IN table
	}

	// A LikeExpr node represents x [NOT] LIKE y [ESCAPE z] and the GLOB,
	// REGEXP and MATCH variants.
	LikeExpr struct {
		X       Expr
		Not     bool
		OpPos   gotok.Pos
		Op      LikeOp
		Pattern Expr
		Escape  Expr // or nil
	}

	// A BetweenExpr node represents x [NOT] BETWEEN lo AND hi.
	BetweenExpr struct {
		X   Expr
		Not bool
		Lo  Expr
		Hi  Expr
	}

	// A NotNullExpr node represents the postfix x NOTNULL or x NOT NULL.
	NotNullExpr struct {
		X     Expr
		OpEnd gotok.Pos // position after the NOTNULL or NULL keyword
	}

	// An IsNullExpr node represents the postfix x ISNULL.
	IsNullExpr struct {
		X     Expr
		OpEnd gotok.Pos // position after the ISNULL keyword
	}

	// A CollateExpr node represents x COLLATE name.
	CollateExpr struct {
		X         Expr
		Collation *Ident
	}

	// A CallExpr node represents a function call, including aggregates and
	// window functions.
	CallExpr struct {
		Name     *Ident
		Lparen   gotok.Pos
		Distinct bool
		Star     bool // count(*)
		Args     []Expr
		Rparen   gotok.Pos
		Filter   Expr        // FILTER (WHERE ...); or nil
		Over     *OverClause // or nil
	}

	// A CastExpr node represents CAST(x AS type).
	CastExpr struct {
		Cast   gotok.Pos
		X      Expr
		Type   string // type name, like "VARCHAR(10)"
		Rparen gotok.Pos
	}

	// A CaseExpr node represents CASE [operand] WHEN ... THEN ... [ELSE ...] END.
	CaseExpr struct {
		Case    gotok.Pos
		Operand Expr // or nil
		Whens   []*WhenClause
		Else    Expr // or nil
		EndPos  gotok.Pos
	}

	// An ExistsExpr node represents [NOT] EXISTS (SELECT ...).
	ExistsExpr struct {
		Start  gotok.Pos // position of NOT or EXISTS
		Not    bool
		Select *SelectStmt
		Rparen gotok.Pos
	}

	// A SubqueryExpr node represents a scalar subquery (SELECT ...).
	SubqueryExpr struct {
		Lparen gotok.Pos
		Select *SelectStmt
		Rparen gotok.Pos
	}
)

// WhenClause is a single WHEN ... THEN ... branch of a CaseExpr.
type WhenClause struct {
	When gotok.Pos
	Cond Expr
	Then Expr
}

// OverClause is the OVER part of a window function call. The window
// definition itself is not analyzed; only its extent is recorded.
type OverClause struct {
	Over   gotok.Pos
	Name   *Ident    // OVER name; or nil
	Lparen gotok.Pos // OVER (...); invalid when Name is set
	Rparen gotok.Pos
}

func (x *BadExpr) Pos() gotok.Pos        { return x.From }
func (x *Ident) Pos() gotok.Pos          { return x.NamePos }
func (x *QualifiedIdent) Pos() gotok.Pos { return x.first().Pos() }
func (x *NullLit) Pos() gotok.Pos        { return x.Null }
func (x *NumberLit) Pos() gotok.Pos      { return x.ValuePos }
func (x *StringLit) Pos() gotok.Pos      { return x.ValuePos }
func (x *BlobLit) Pos() gotok.Pos        { return x.ValuePos }
func (x *BindParam) Pos() gotok.Pos      { return x.NamePos }
func (x *ParenExpr) Pos() gotok.Pos      { return x.Lparen }
func (x *UnaryExpr) Pos() gotok.Pos      { return x.OpPos }
func (x *BinaryExpr) Pos() gotok.Pos     { return x.X.Pos() }
func (x *InExpr) Pos() gotok.Pos         { return x.X.Pos() }
func (x *LikeExpr) Pos() gotok.Pos       { return x.X.Pos() }
func (x *BetweenExpr) Pos() gotok.Pos    { return x.X.Pos() }
func (x *NotNullExpr) Pos() gotok.Pos    { return x.X.Pos() }
func (x *IsNullExpr) Pos() gotok.Pos     { return x.X.Pos() }
func (x *CollateExpr) Pos() gotok.Pos    { return x.X.Pos() }
func (x *CallExpr) Pos() gotok.Pos       { return x.Name.Pos() }
func (x *CastExpr) Pos() gotok.Pos       { return x.Cast }
func (x *CaseExpr) Pos() gotok.Pos       { return x.Case }
func (x *ExistsExpr) Pos() gotok.Pos     { return x.Start }
func (x *SubqueryExpr) Pos() gotok.Pos   { return x.Lparen }

func (x *BadExpr) End() gotok.Pos        { return x.To }
func (x *Ident) End() gotok.Pos          { return gotok.Pos(int(x.NamePos) + len(x.Lit)) }
func (x *QualifiedIdent) End() gotok.Pos { return x.Column.End() }
func (x *NullLit) End() gotok.Pos        { return gotok.Pos(int(x.Null) + len("null")) }
func (x *NumberLit) End() gotok.Pos      { return gotok.Pos(int(x.ValuePos) + len(x.Value)) }
func (x *StringLit) End() gotok.Pos      { return gotok.Pos(int(x.ValuePos) + len(x.Value)) }
func (x *BlobLit) End() gotok.Pos        { return gotok.Pos(int(x.ValuePos) + len(x.Value)) }
func (x *BindParam) End() gotok.Pos      { return gotok.Pos(int(x.NamePos) + len(x.Name)) }
func (x *ParenExpr) End() gotok.Pos      { return x.Rparen + 1 }
func (x *UnaryExpr) End() gotok.Pos      { return x.X.End() }
func (x *BinaryExpr) End() gotok.Pos     { return x.Y.End() }
func (x *BetweenExpr) End() gotok.Pos    { return x.Hi.End() }
func (x *NotNullExpr) End() gotok.Pos    { return x.OpEnd }
func (x *IsNullExpr) End() gotok.Pos     { return x.OpEnd }
func (x *CollateExpr) End() gotok.Pos    { return x.Collation.End() }
func (x *CastExpr) End() gotok.Pos       { return x.Rparen + 1 }
func (x *CaseExpr) End() gotok.Pos       { return x.EndPos + gotok.Pos(len("end")) }
func (x *ExistsExpr) End() gotok.Pos     { return x.Rparen + 1 }
func (x *SubqueryExpr) End() gotok.Pos   { return x.Rparen + 1 }

func (x *InExpr) End() gotok.Pos {
	if x.Table != nil {
		return x.Table.End()
	}
	return x.Rparen + 1
}

func (x *LikeExpr) End() gotok.Pos {
	if x.Escape != nil {
		return x.Escape.End()
	}
	return x.Pattern.End()
}

func (x *CallExpr) End() gotok.Pos {
	if x.Over != nil {
		if x.Over.Name != nil {
			return x.Over.Name.End()
		}
		return x.Over.Rparen + 1
	}
	return x.Rparen + 1
}

func (x *QualifiedIdent) first() *Ident {
	if x.Schema != nil {
		return x.Schema
	}
	return x.Table
}

func (*BadExpr) exprNode()        {}
func (*Ident) exprNode()          {}
func (*QualifiedIdent) exprNode() {}
func (*NullLit) exprNode()        {}
func (*NumberLit) exprNode()      {}
func (*StringLit) exprNode()      {}
func (*BlobLit) exprNode()        {}
func (*BindParam) exprNode()      {}
func (*ParenExpr) exprNode()      {}
func (*UnaryExpr) exprNode()      {}
func (*BinaryExpr) exprNode()     {}
func (*InExpr) exprNode()         {}
func (*LikeExpr) exprNode()       {}
func (*BetweenExpr) exprNode()    {}
func (*NotNullExpr) exprNode()    {}
func (*IsNullExpr) exprNode()     {}
func (*CollateExpr) exprNode()    {}
func (*CallExpr) exprNode()       {}
func (*CastExpr) exprNode()       {}
func (*CaseExpr) exprNode()       {}
func (*ExistsExpr) exprNode()     {}
func (*SubqueryExpr) exprNode()   {}

// ----------------------------------------------------------------------------
// FROM clause

// JoinOp is the operator joining a table to the sources before it.
type JoinOp int

const (
	JoinComma JoinOp = iota + 1 // a, b
	JoinPlain                   // a JOIN b
	JoinInner                   // a INNER JOIN b
	JoinCross                   // a CROSS JOIN b
	JoinLeft                    // a LEFT [OUTER] JOIN b
	JoinRight                   // a RIGHT [OUTER] JOIN b
	JoinFull                    // a FULL [OUTER] JOIN b
)

func (op JoinOp) String() string {
	switch op {
	case JoinComma:
		return ","
	case JoinPlain:
		return "JOIN"
	case JoinInner:
		return "INNER JOIN"
	case JoinCross:
		return "CROSS JOIN"
	case JoinLeft:
		return "LEFT JOIN"
	case JoinRight:
		return "RIGHT JOIN"
	case JoinFull:
		return "FULL JOIN"
	default:
		return "JoinOp(?)"
	}
}

// AliasKind records how a table alias was written.
type AliasKind int

const (
	AliasNone   AliasKind = iota // no alias
	AliasAs                      // foo AS f
	AliasElided                  // foo f
)

// A FromClause is the FROM part of a select: a primary source followed by
// zero or more joined sources in source order.
type FromClause struct {
	From   gotok.Pos
	Source TableSource // or nil
	Joins  []*JoinedTable
}

// A JoinedTable is a source joined onto the sources before it.
type JoinedTable struct {
	OpPos      gotok.Pos // position of the comma or first join keyword
	Op         JoinOp
	Natural    bool
	Source     TableSource
	Constraint JoinConstraint // or nil
}

type (
	// A TableName source names a table or view, like main.foo AS f.
	TableName struct {
		Schema     *Ident // or nil
		Name       *Ident
		AliasKind  AliasKind
		Alias      *Ident // nil iff AliasKind == AliasNone
		IndexedBy  *Ident // INDEXED BY name; or nil
		NotIndexed bool   // NOT INDEXED
		EndPos     gotok.Pos
	}

	// A SubquerySource is a parenthesized select used as a table.
	SubquerySource struct {
		Lparen    gotok.Pos
		Select    *SelectStmt
		Rparen    gotok.Pos
		AliasKind AliasKind
		Alias     *Ident // or nil
	}

	// A ParenSource is a parenthesized join, like (a JOIN b).
	ParenSource struct {
		Lparen    gotok.Pos
		From      *FromClause
		Rparen    gotok.Pos
		AliasKind AliasKind
		Alias     *Ident // or nil
	}

	// A FuncSource is a table-valued function, like json_each(x) AS j.
	FuncSource struct {
		Name      *Ident
		Args      []Expr
		Rparen    gotok.Pos
		AliasKind AliasKind
		Alias     *Ident // or nil
	}
)

// UsedName returns the name by which the table is referenced inside the
// statement: the alias if present, else the table name.
func (s *TableName) UsedName() string {
	if s.Alias != nil {
		return s.Alias.Name
	}
	return s.Name.Name
}

func (s *TableName) Pos() gotok.Pos {
	if s.Schema != nil {
		return s.Schema.Pos()
	}
	return s.Name.Pos()
}
func (s *SubquerySource) Pos() gotok.Pos { return s.Lparen }
func (s *ParenSource) Pos() gotok.Pos    { return s.Lparen }
func (s *FuncSource) Pos() gotok.Pos     { return s.Name.Pos() }

func (s *TableName) End() gotok.Pos { return s.EndPos }
func (s *SubquerySource) End() gotok.Pos {
	if s.Alias != nil {
		return s.Alias.End()
	}
	return s.Rparen + 1
}
func (s *ParenSource) End() gotok.Pos {
	if s.Alias != nil {
		return s.Alias.End()
	}
	return s.Rparen + 1
}
func (s *FuncSource) End() gotok.Pos {
	if s.Alias != nil {
		return s.Alias.End()
	}
	return s.Rparen + 1
}

func (*TableName) sourceNode()      {}
func (*SubquerySource) sourceNode() {}
func (*ParenSource) sourceNode()    {}
func (*FuncSource) sourceNode()     {}

type (
	// An OnConstraint is ON expr.
	OnConstraint struct {
		On gotok.Pos
		X  Expr
	}

	// A UsingConstraint is USING (col, ...).
	UsingConstraint struct {
		Using   gotok.Pos
		Columns []*Ident
		Rparen  gotok.Pos
	}
)

func (c *OnConstraint) Pos() gotok.Pos    { return c.On }
func (c *OnConstraint) End() gotok.Pos    { return c.X.End() }
func (c *UsingConstraint) Pos() gotok.Pos { return c.Using }
func (c *UsingConstraint) End() gotok.Pos { return c.Rparen + 1 }

func (*OnConstraint) joinConstraint()    {}
func (*UsingConstraint) joinConstraint() {}

// ----------------------------------------------------------------------------
// Statements

// CompoundOp is the set operator joining two selects.
type CompoundOp int

const (
	CompoundUnion CompoundOp = iota + 1
	CompoundUnionAll
	CompoundIntersect
	CompoundExcept
)

func (op CompoundOp) String() string {
	switch op {
	case CompoundUnion:
		return "UNION"
	case CompoundUnionAll:
		return "UNION ALL"
	case CompoundIntersect:
		return "INTERSECT"
	case CompoundExcept:
		return "EXCEPT"
	default:
		return "CompoundOp(?)"
	}
}

// A ResultColumn is one entry of the select list: *, tbl.*, or expr [AS alias].
type ResultColumn struct {
	Star      bool   // * or tbl.*
	StarTable *Ident // tbl in tbl.*; or nil
	StarPos   gotok.Pos
	X         Expr   // nil iff Star
	Alias     *Ident // or nil
}

// WithClause is WITH [RECURSIVE] cte, ...
type WithClause struct {
	With      gotok.Pos
	Recursive bool
	CTEs      []*CTE
}

// CTE is a single common table expression: name [(cols)] AS [[NOT] MATERIALIZED] (select).
type CTE struct {
	Name         *Ident
	Columns      []*Ident
	Materialized string // "", "MATERIALIZED" or "NOT MATERIALIZED"
	Select       *SelectStmt
	Rparen       gotok.Pos
}

// OrderingTerm is one entry of an ORDER BY list.
type OrderingTerm struct {
	X          Expr
	Desc       bool
	NullsFirst bool
	NullsLast  bool
}

// NamedWindow is an entry in the WINDOW clause. The definition is not
// analyzed.
type NamedWindow struct {
	Name   *Ident
	Lparen gotok.Pos
	Rparen gotok.Pos
}

// A CompoundSelect is a select joined to the statement with a set operator.
type CompoundSelect struct {
	OpPos  gotok.Pos
	Op     CompoundOp
	Select *SelectStmt // has no With, OrderBy, Limit or Offset
}

// A statement is represented by one of the following statement nodes.
type (
	// A BadStmt node is a placeholder for statements containing syntax errors
	// for which no correct statement nodes can be created.
	BadStmt struct {
		From, To gotok.Pos // position range of bad statement
	}

	// An UnsupportedStmt is a syntactically delimited statement that isn't a
	// select, like INSERT or CREATE TABLE. Its tokens are skipped.
	UnsupportedStmt struct {
		Doc     *CommentGroup // associated documentation; or nil
		Start   gotok.Pos
		Keyword string // first keyword, like "INSERT"
		EndPos  gotok.Pos
	}

	// A SelectStmt node represents a SELECT statement, possibly compound.
	// VALUES statements are represented with Values set and no Columns.
	SelectStmt struct {
		Doc      *CommentGroup // associated documentation; or nil
		With     *WithClause   // or nil
		Select   gotok.Pos     // position of SELECT or VALUES
		Distinct bool
		Columns  []*ResultColumn
		Values   [][]Expr    // VALUES (...), (...)
		From     *FromClause // or nil
		Where    Expr        // or nil
		GroupBy  []Expr
		Having   Expr // or nil
		Windows  []*NamedWindow
		Compound []*CompoundSelect
		OrderBy  []*OrderingTerm
		Limit    Expr // or nil
		Offset   Expr // or nil
		EndPos   gotok.Pos
	}
)

func (s *BadStmt) Pos() gotok.Pos         { return s.From }
func (s *UnsupportedStmt) Pos() gotok.Pos { return s.Start }
func (s *SelectStmt) Pos() gotok.Pos {
	if s.With != nil {
		return s.With.With
	}
	return s.Select
}

func (s *BadStmt) End() gotok.Pos         { return s.To }
func (s *UnsupportedStmt) End() gotok.Pos { return s.EndPos }
func (s *SelectStmt) End() gotok.Pos      { return s.EndPos }

func (*BadStmt) stmtNode()         {}
func (*UnsupportedStmt) stmtNode() {}
func (*SelectStmt) stmtNode()      {}

// ----------------------------------------------------------------------------
// Files

// A File node represents a SQL source file with one or more statements
// separated by semicolons.
//
// The Comments list contains all comments in the source file in order of
// appearance, including the comments that are pointed to from other nodes
// via Doc fields.
type File struct {
	Name     string
	Stmts    []Stmt          // top-level statements; or nil
	Comments []*CommentGroup // list of all comments in the source file
}

func (f *File) Pos() gotok.Pos { return gotok.Pos(1) }
func (f *File) End() gotok.Pos {
	if n := len(f.Stmts); n > 0 {
		return f.Stmts[n-1].End()
	}
	return gotok.Pos(1)
}
