package parser

import (
	"fmt"
	goscan "go/scanner"
	gotok "go/token"
	"strings"

	"github.com/jschaf/sqlnull/internal/ast"
	"github.com/jschaf/sqlnull/internal/scanner"
	"github.com/jschaf/sqlnull/internal/token"
)

type parser struct {
	file    *gotok.File
	errors  goscan.ErrorList
	scanner scanner.Scanner
	src     []byte // original source

	// Tracing and debugging
	mode   Mode // parsing mode
	trace  bool // == (mode & Trace != 0)
	indent int  // indentation used for tracing output

	// Comments
	comments    []*ast.CommentGroup
	leadComment *ast.CommentGroup // last lead comment

	// Next token
	pos gotok.Pos   // token position
	tok token.Token // one token look-ahead
	lit string      // token literal

	prevEnd  gotok.Pos // end position of the last consumed token
	errCount int       // errors seen, including discarded ones
}

func (p *parser) init(fset *gotok.FileSet, filename string, src []byte, mode Mode) {
	p.file = fset.AddFile(filename, -1, len(src))
	eh := func(pos gotok.Position, msg string) {
		p.errCount++
		p.errors.Add(pos, msg)
	}
	p.scanner.Init(p.file, src, eh)
	p.src = src

	p.mode = mode
	p.trace = mode&Trace != 0 // for convenience (p.trace is used frequently)

	p.next()
}

// ----------------------------------------------------------------------------
// Parsing support

func (p *parser) printTrace(a ...interface{}) {
	const dots = ". . . . . . . . . . . . . . . . . . . . . . . . . . . . . . . . "
	const n = len(dots)
	pos := p.file.Position(p.pos)
	fmt.Printf("%5d:%3d: ", pos.Line, pos.Column)
	i := 2 * p.indent
	for i > n {
		fmt.Print(dots)
		i -= n
	}
	// i <= n
	fmt.Print(dots[0:i])
	fmt.Println(a...)
}

func trace(p *parser, msg string) *parser {
	p.printTrace(msg, "(")
	p.indent++
	return p
}

// Usage pattern: defer un(trace(p, "..."))
func un(p *parser) {
	p.indent--
	p.printTrace(")")
}

// Advance to the next token, skipping block comments.
func (p *parser) next0() {
	// Because of one-token look-ahead, print the previous token when tracing as
	// it provides a more readable output. The very first token (!p.pos.IsValid())
	// is not initialized (it is token.Illegal), so don't print it.
	if p.trace && p.pos.IsValid() {
		s := p.tok.String()
		switch {
		case p.tok.IsLiteral():
			p.printTrace(s, `"`+p.lit+`"`)
		default:
			p.printTrace(s)
		}
	}

	p.pos, p.tok, p.lit = p.scanner.Scan()
	for p.tok == token.BlockComment {
		p.pos, p.tok, p.lit = p.scanner.Scan()
	}
}

// Consume a comment and return it and the line on which it ends.
func (p *parser) consumeComment() (comment *ast.LineComment, endLine int) {
	endLine = p.file.Line(p.pos)
	comment = &ast.LineComment{Start: p.pos, Text: p.lit}
	p.next0()
	return
}

// Consume a group of adjacent comments, add it to the parser's comments list,
// and return it together with the line at which the last comment in the group
// ends. A non-comment token or an empty lines terminate a comment group.
func (p *parser) consumeCommentGroup(n int) (comments *ast.CommentGroup, endLine int) {
	var list []*ast.LineComment
	endLine = p.file.Line(p.pos)
	for p.tok == token.LineComment && p.file.Line(p.pos) <= endLine+n {
		var comment *ast.LineComment
		comment, endLine = p.consumeComment()
		list = append(list, comment)
	}

	// Add comment group to the comments list.
	comments = &ast.CommentGroup{List: list}
	p.comments = append(p.comments, comments)

	return
}

// Advance to the next non-comment token. In the process, collect any comment
// groups encountered, and remember the last lead comment.
//
// A lead comment is a comment group that starts and ends in a line without any
// other tokens and that is followed by a non-comment token on the line
// immediately after the comment group.
//
// Lead comments are documentation for the statement that follows them.
func (p *parser) next() {
	p.leadComment = nil
	prev := p.pos
	if p.pos.IsValid() {
		p.prevEnd = p.pos + gotok.Pos(len(p.lit))
	}
	p.next0()

	if p.tok == token.LineComment {
		var comment *ast.CommentGroup
		var endLine int

		if p.file.Line(p.pos) == p.file.Line(prev) {
			// The comment is on same line as the previous token; it cannot be a
			// lead comment.
			comment, endLine = p.consumeCommentGroup(0)
		}

		// consume successor comments, if any
		for p.tok == token.LineComment {
			comment, endLine = p.consumeCommentGroup(1)
		}

		if endLine+1 == p.file.Line(p.pos) {
			// The next token is following on the line immediately after the
			// comment group, thus the last comment group is a lead comment.
			p.leadComment = comment
		}
	}
}

// peek returns the token after the current one.
func (p *parser) peek() token.Token {
	_, tok, _ := p.scanner.Peek()
	return tok
}

// A bailout panic is raised to indicate early termination.
type bailout struct{}

func (p *parser) error(pos gotok.Pos, msg string) {
	p.errCount++
	epos := p.file.Position(pos)

	// Discard errors reported on the same line as the last recorded error and
	// stop parsing if there are more than 10 errors.
	n := len(p.errors)
	if n > 0 && p.errors[n-1].Pos.Line == epos.Line {
		return // discard - likely a spurious error
	}
	if n > 10 {
		panic(bailout{})
	}

	p.errors.Add(epos, msg)
}

func (p *parser) errorExpected(pos gotok.Pos, msg string) {
	msg = "expected " + msg
	if pos == p.pos {
		// The error happened at the current position; make the error message more
		// specific.
		switch {
		case p.tok == token.EOF:
			msg += ", found EOF"
		case p.tok.IsLiteral():
			msg += ", found " + p.lit
		default:
			msg += ", found '" + p.tok.String() + "'"
		}
	}
	p.error(pos, msg)
}

func (p *parser) expect(tok token.Token) gotok.Pos {
	pos := p.pos
	if p.tok != tok {
		p.errorExpected(pos, "'"+tok.String()+"'")
	}
	p.next() // make progress
	return pos
}

// got consumes the current token if it is tok.
func (p *parser) got(tok token.Token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

// ----------------------------------------------------------------------------
// Identifiers

// isName reports whether the current token can be used as an identifier.
func (p *parser) isName() bool {
	return p.tok == token.Ident || p.tok.IsSoftKeyword()
}

func (p *parser) parseIdent() *ast.Ident {
	pos, lit := p.pos, p.lit
	if p.isName() {
		p.next()
	} else {
		p.errorExpected(pos, "identifier")
		lit = "_"
		if p.tok != token.EOF && p.tok != token.Semicolon && p.tok != token.RParen {
			p.next() // make progress
		}
	}
	return &ast.Ident{NamePos: pos, Name: unquoteIdent(lit), Lit: lit}
}

// unquoteIdent strips SQL identifier quoting: "foo""bar", `foo`, [foo].
func unquoteIdent(lit string) string {
	if len(lit) < 2 {
		return lit
	}
	switch first, last := lit[0], lit[len(lit)-1]; {
	case first == '"' && last == '"':
		return strings.ReplaceAll(lit[1:len(lit)-1], `""`, `"`)
	case first == '`' && last == '`':
		return strings.ReplaceAll(lit[1:len(lit)-1], "``", "`")
	case first == '[' && last == ']':
		return lit[1 : len(lit)-1]
	default:
		return lit
	}
}

func (p *parser) parseIdentList() []*ast.Ident {
	list := []*ast.Ident{p.parseIdent()}
	for p.got(token.Comma) {
		list = append(list, p.parseIdent())
	}
	return list
}

// ----------------------------------------------------------------------------
// Expressions

// Binding powers from https://www.sqlite.org/lang_expr.html#operators.
const (
	precLowest     = 1
	precOr         = 1
	precAnd        = 2
	precNot        = 3 // prefix NOT
	precEquality   = 4 // = == != <> IS IN LIKE GLOB MATCH REGEXP BETWEEN ISNULL NOTNULL
	precComparison = 5 // < <= > >=
	precBitwise    = 6 // & | << >>
	precAdditive   = 7 // + -
	precMultiply   = 8 // * / %
	precConcat     = 9 // || -> ->>
	precCollate    = 10
)

var binaryOps = map[token.Token]ast.BinaryOp{
	token.Or:      ast.OpOr,
	token.And:     ast.OpAnd,
	token.Eq:      ast.OpEq,
	token.EqEq:    ast.OpEq,
	token.NotEq:   ast.OpNotEq,
	token.LtGt:    ast.OpNotEq,
	token.Lt:      ast.OpLt,
	token.LtEq:    ast.OpLtEq,
	token.Gt:      ast.OpGt,
	token.GtEq:    ast.OpGtEq,
	token.BitAnd:  ast.OpBitAnd,
	token.BitOr:   ast.OpBitOr,
	token.ShiftL:  ast.OpShiftL,
	token.ShiftR:  ast.OpShiftR,
	token.Plus:    ast.OpAdd,
	token.Minus:   ast.OpSub,
	token.Star:    ast.OpMul,
	token.Slash:   ast.OpDiv,
	token.Percent: ast.OpMod,
	token.Concat:  ast.OpConcat,
	token.Arrow:   ast.OpJSONPtr,
	token.Arrow2:  ast.OpJSONText,
}

var likeOps = map[token.Token]ast.LikeOp{
	token.Like:   ast.LikeOpLike,
	token.Glob:   ast.LikeOpGlob,
	token.Regexp: ast.LikeOpRegexp,
	token.Match:  ast.LikeOpMatch,
}

// infixPrec returns the binding power of the current token as an infix or
// postfix operator, or 0 if it isn't one.
func (p *parser) infixPrec() int {
	switch p.tok {
	case token.Or:
		return precOr
	case token.And:
		return precAnd
	case token.Eq, token.EqEq, token.NotEq, token.LtGt, token.Is, token.In,
		token.Like, token.Glob, token.Regexp, token.Match, token.Between,
		token.Isnull, token.Notnull, token.Not:
		return precEquality
	case token.Lt, token.LtEq, token.Gt, token.GtEq:
		return precComparison
	case token.BitAnd, token.BitOr, token.ShiftL, token.ShiftR:
		return precBitwise
	case token.Plus, token.Minus:
		return precAdditive
	case token.Star, token.Slash, token.Percent:
		return precMultiply
	case token.Concat, token.Arrow, token.Arrow2:
		return precConcat
	case token.Collate:
		return precCollate
	default:
		return 0
	}
}

func (p *parser) parseExpr() ast.Expr {
	if p.trace {
		defer un(trace(p, "Expression"))
	}
	return p.parseBinaryExpr(precLowest)
}

func (p *parser) parseBinaryExpr(prec1 int) ast.Expr {
	return p.parseBinaryExprFrom(p.parseUnaryExpr(), prec1)
}

// parseBinaryExprFrom continues parsing a binary expression whose leftmost
// operand x is already parsed. Operators binding looser than prec1 are left
// for the caller.
func (p *parser) parseBinaryExprFrom(x ast.Expr, prec1 int) ast.Expr {
	for {
		oprec := p.infixPrec()
		if oprec < prec1 || oprec == 0 {
			return x
		}
		switch p.tok {
		case token.Not:
			p.next()
			switch p.tok {
			case token.Null:
				p.next()
				x = &ast.NotNullExpr{X: x, OpEnd: p.prevEnd}
			case token.In:
				x = p.parseInExpr(x, true)
			case token.Like, token.Glob, token.Regexp, token.Match:
				x = p.parseLikeExpr(x, true)
			case token.Between:
				x = p.parseBetweenExpr(x, true)
			default:
				p.errorExpected(p.pos, "NULL, IN, LIKE, GLOB, REGEXP, MATCH or BETWEEN after NOT")
				return &ast.BadExpr{From: x.Pos(), To: p.pos}
			}
		case token.Notnull:
			p.next()
			x = &ast.NotNullExpr{X: x, OpEnd: p.prevEnd}
		case token.Isnull:
			p.next()
			x = &ast.IsNullExpr{X: x, OpEnd: p.prevEnd}
		case token.Is:
			x = p.parseIsExpr(x)
		case token.In:
			x = p.parseInExpr(x, false)
		case token.Like, token.Glob, token.Regexp, token.Match:
			x = p.parseLikeExpr(x, false)
		case token.Between:
			x = p.parseBetweenExpr(x, false)
		case token.Collate:
			p.next()
			x = &ast.CollateExpr{X: x, Collation: p.parseIdent()}
		default:
			op, pos := binaryOps[p.tok], p.pos
			p.next()
			y := p.parseBinaryExpr(oprec + 1)
			x = &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
		}
	}
}

// parseIsExpr parses x IS [NOT] y and x IS [NOT] DISTINCT FROM y.
func (p *parser) parseIsExpr(x ast.Expr) ast.Expr {
	pos := p.expect(token.Is)
	not := p.got(token.Not)
	op := ast.OpIs
	if p.got(token.Distinct) {
		p.expect(token.From)
		not = !not // IS DISTINCT FROM is IS NOT
	}
	if not {
		op = ast.OpIsNot
	}
	y := p.parseBinaryExpr(precEquality + 1)
	return &ast.BinaryExpr{X: x, OpPos: pos, Op: op, Y: y}
}

func (p *parser) parseInExpr(x ast.Expr, not bool) ast.Expr {
	if p.trace {
		defer un(trace(p, "InExpr"))
	}
	p.expect(token.In)
	in := &ast.InExpr{X: x, Not: not}
	if p.tok != token.LParen {
		in.Table = p.parsePrimaryExpr()
		return in
	}
	in.Lparen = p.expect(token.LParen)
	switch p.tok {
	case token.Select, token.With, token.Values:
		in.Select = p.parseSelectStmt(nil)
	case token.RParen:
		// empty list
	default:
		in.Values = p.parseExprList()
	}
	in.Rparen = p.expect(token.RParen)
	return in
}

func (p *parser) parseLikeExpr(x ast.Expr, not bool) ast.Expr {
	like := &ast.LikeExpr{X: x, Not: not, OpPos: p.pos, Op: likeOps[p.tok]}
	p.next()
	like.Pattern = p.parseBinaryExpr(precEquality + 1)
	if like.Op == ast.LikeOpLike && p.got(token.Escape) {
		like.Escape = p.parseBinaryExpr(precEquality + 1)
	}
	return like
}

func (p *parser) parseBetweenExpr(x ast.Expr, not bool) ast.Expr {
	p.expect(token.Between)
	lo := p.parseBinaryExpr(precEquality + 1)
	p.expect(token.And)
	hi := p.parseBinaryExpr(precEquality + 1)
	return &ast.BetweenExpr{X: x, Not: not, Lo: lo, Hi: hi}
}

func (p *parser) parseUnaryExpr() ast.Expr {
	if p.trace {
		defer un(trace(p, "UnaryExpr"))
	}
	switch p.tok {
	case token.Not:
		if p.peek() == token.Exists {
			return p.parseExistsExpr()
		}
		pos := p.pos
		p.next()
		x := p.parseBinaryExpr(precNot + 1)
		return &ast.UnaryExpr{OpPos: pos, Op: ast.UnaryNot, X: x}
	case token.Minus, token.Plus, token.BitNot:
		pos, op := p.pos, ast.UnaryNeg
		switch p.tok {
		case token.Plus:
			op = ast.UnaryPlus
		case token.BitNot:
			op = ast.UnaryBitNot
		}
		p.next()
		x := p.parseUnaryExpr()
		return &ast.UnaryExpr{OpPos: pos, Op: op, X: x}
	default:
		return p.parsePrimaryExpr()
	}
}

func (p *parser) parsePrimaryExpr() ast.Expr {
	if p.trace {
		defer un(trace(p, "PrimaryExpr"))
	}
	pos, lit := p.pos, p.lit
	switch p.tok {
	case token.Ident:
		return p.parseNameExpr(p.parseIdent())
	case token.Number:
		p.next()
		return &ast.NumberLit{ValuePos: pos, Value: lit}
	case token.String:
		p.next()
		return &ast.StringLit{ValuePos: pos, Value: lit}
	case token.Blob:
		p.next()
		return &ast.BlobLit{ValuePos: pos, Value: lit}
	case token.BindParam:
		p.next()
		return &ast.BindParam{NamePos: pos, Name: lit}
	case token.Null:
		p.next()
		return &ast.NullLit{Null: pos}
	case token.LParen:
		return p.parseParenExpr()
	case token.Cast:
		return p.parseCastExpr()
	case token.Case:
		return p.parseCaseExpr()
	case token.Exists:
		return p.parseExistsExpr()
	default:
		// Operator keywords like LIKE can't start an expression, so here they
		// name a column or a function like like(x, y).
		if p.tok.IsSoftKeyword() {
			return p.parseNameExpr(p.parseIdent())
		}
	}
	p.errorExpected(pos, "expression")
	if p.tok != token.EOF && p.tok != token.Semicolon && p.tok != token.RParen {
		p.next() // make progress
	}
	return &ast.BadExpr{From: pos, To: p.pos}
}

// parseNameExpr parses what follows an identifier in expression position: a
// function call, a qualified column reference, or nothing.
func (p *parser) parseNameExpr(name *ast.Ident) ast.Expr {
	switch p.tok {
	case token.LParen:
		return p.parseCallExpr(name)
	case token.Dot:
		p.next()
		return p.parseQualifiedIdent(name, p.parseIdent())
	default:
		return name
	}
}

// parseQualifiedIdent parses an optional third part of a qualified column
// reference given the first two.
func (p *parser) parseQualifiedIdent(first, second *ast.Ident) *ast.QualifiedIdent {
	if p.got(token.Dot) {
		return &ast.QualifiedIdent{Schema: first, Table: second, Column: p.parseIdent()}
	}
	return &ast.QualifiedIdent{Table: first, Column: second}
}

func (p *parser) parseCallExpr(name *ast.Ident) *ast.CallExpr {
	if p.trace {
		defer un(trace(p, "CallExpr"))
	}
	call := &ast.CallExpr{Name: name}
	call.Lparen = p.expect(token.LParen)
	switch {
	case p.tok == token.Star:
		call.Star = true
		p.next()
	case p.tok == token.RParen:
		// no args
	default:
		if p.got(token.Distinct) {
			call.Distinct = true
		} else {
			p.got(token.All)
		}
		call.Args = p.parseExprList()
	}
	call.Rparen = p.expect(token.RParen)

	if p.tok == token.Filter {
		p.next()
		p.expect(token.LParen)
		p.expect(token.Where)
		call.Filter = p.parseExpr()
		p.expect(token.RParen)
	}
	if p.tok == token.Over {
		over := &ast.OverClause{Over: p.pos}
		p.next()
		if p.tok == token.LParen {
			over.Lparen, over.Rparen = p.skipParens()
		} else {
			over.Name = p.parseIdent()
		}
		call.Over = over
	}
	return call
}

// skipParens consumes a balanced parenthesized token sequence starting at the
// current '(' and returns the positions of the outer parens.
func (p *parser) skipParens() (lparen, rparen gotok.Pos) {
	lparen = p.expect(token.LParen)
	depth := 1
	for {
		switch p.tok {
		case token.EOF:
			p.errorExpected(p.pos, "')'")
			return lparen, p.pos
		case token.LParen:
			depth++
		case token.RParen:
			depth--
			if depth == 0 {
				rparen = p.pos
				p.next()
				return lparen, rparen
			}
		}
		p.next()
	}
}

func (p *parser) parseParenExpr() ast.Expr {
	lparen := p.expect(token.LParen)
	switch p.tok {
	case token.Select, token.With, token.Values:
		sel := p.parseSelectStmt(nil)
		rparen := p.expect(token.RParen)
		return &ast.SubqueryExpr{Lparen: lparen, Select: sel, Rparen: rparen}
	}
	list := p.parseExprList()
	rparen := p.expect(token.RParen)
	return &ast.ParenExpr{Lparen: lparen, List: list, Rparen: rparen}
}

func (p *parser) parseCastExpr() ast.Expr {
	cast := &ast.CastExpr{Cast: p.expect(token.Cast)}
	p.expect(token.LParen)
	cast.X = p.parseExpr()
	p.expect(token.As)
	cast.Type = p.parseTypeName()
	cast.Rparen = p.expect(token.RParen)
	return cast
}

// parseTypeName parses a type name like "INTEGER", "UNSIGNED BIG INT" or
// "VARCHAR(10)".
func (p *parser) parseTypeName() string {
	var sb strings.Builder
	for p.isName() {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(p.lit)
		p.next()
	}
	if sb.Len() == 0 {
		p.errorExpected(p.pos, "type name")
	}
	if p.tok == token.LParen {
		lparen, rparen := p.skipParens()
		sb.Write(p.src[p.file.Offset(lparen) : p.file.Offset(rparen)+1])
	}
	return sb.String()
}

func (p *parser) parseCaseExpr() ast.Expr {
	if p.trace {
		defer un(trace(p, "CaseExpr"))
	}
	c := &ast.CaseExpr{Case: p.expect(token.Case)}
	if p.tok != token.When {
		c.Operand = p.parseExpr()
	}
	for p.tok == token.When {
		w := &ast.WhenClause{When: p.pos}
		p.next()
		w.Cond = p.parseExpr()
		p.expect(token.Then)
		w.Then = p.parseExpr()
		c.Whens = append(c.Whens, w)
	}
	if len(c.Whens) == 0 {
		p.errorExpected(p.pos, "WHEN")
	}
	if p.got(token.Else) {
		c.Else = p.parseExpr()
	}
	c.EndPos = p.expect(token.End)
	return c
}

func (p *parser) parseExistsExpr() ast.Expr {
	e := &ast.ExistsExpr{Start: p.pos}
	e.Not = p.got(token.Not)
	p.expect(token.Exists)
	p.expect(token.LParen)
	e.Select = p.parseSelectStmt(nil)
	e.Rparen = p.expect(token.RParen)
	return e
}

func (p *parser) parseExprList() []ast.Expr {
	list := []ast.Expr{p.parseExpr()}
	for p.got(token.Comma) {
		list = append(list, p.parseExpr())
	}
	return list
}

// ----------------------------------------------------------------------------
// FROM clause

func (p *parser) parseFromClause() *ast.FromClause {
	if p.trace {
		defer un(trace(p, "FromClause"))
	}
	from := &ast.FromClause{From: p.expect(token.From)}
	from.Source = p.parseTableSource()
	for {
		join, ok := p.parseJoinOp()
		if !ok {
			break
		}
		join.Source = p.parseTableSource()
		join.Constraint = p.parseJoinConstraint()
		from.Joins = append(from.Joins, join)
	}
	return from
}

// parseJoinOp parses a join operator:
//
//	"," | [NATURAL] [LEFT [OUTER] | RIGHT [OUTER] | FULL [OUTER] | INNER | CROSS] JOIN
func (p *parser) parseJoinOp() (*ast.JoinedTable, bool) {
	join := &ast.JoinedTable{OpPos: p.pos}
	if p.got(token.Comma) {
		join.Op = ast.JoinComma
		return join, true
	}
	if p.got(token.Natural) {
		join.Natural = true
	}
	switch p.tok {
	case token.Join:
		join.Op = ast.JoinPlain
	case token.Inner:
		join.Op = ast.JoinInner
		p.next()
	case token.Cross:
		join.Op = ast.JoinCross
		p.next()
	case token.Left, token.Right, token.Full:
		join.Op = map[token.Token]ast.JoinOp{
			token.Left:  ast.JoinLeft,
			token.Right: ast.JoinRight,
			token.Full:  ast.JoinFull,
		}[p.tok]
		p.next()
		p.got(token.Outer)
	default:
		if join.Natural {
			p.errorExpected(p.pos, "JOIN after NATURAL")
		}
		return nil, false
	}
	p.expect(token.Join)
	return join, true
}

func (p *parser) parseJoinConstraint() ast.JoinConstraint {
	switch p.tok {
	case token.On:
		on := &ast.OnConstraint{On: p.pos}
		p.next()
		on.X = p.parseExpr()
		return on
	case token.Using:
		using := &ast.UsingConstraint{Using: p.pos}
		p.next()
		p.expect(token.LParen)
		using.Columns = p.parseIdentList()
		using.Rparen = p.expect(token.RParen)
		return using
	default:
		return nil
	}
}

// parseAlias parses an optional [AS] alias.
func (p *parser) parseAlias() (ast.AliasKind, *ast.Ident) {
	if p.got(token.As) {
		return ast.AliasAs, p.parseIdent()
	}
	if p.tok == token.Ident {
		return ast.AliasElided, p.parseIdent()
	}
	return ast.AliasNone, nil
}

func (p *parser) parseTableSource() ast.TableSource {
	if p.trace {
		defer un(trace(p, "TableSource"))
	}
	if p.tok == token.LParen {
		lparen := p.pos
		if next := p.peek(); next == token.Select || next == token.With || next == token.Values {
			p.next()
			src := &ast.SubquerySource{Lparen: lparen, Select: p.parseSelectStmt(nil)}
			src.Rparen = p.expect(token.RParen)
			src.AliasKind, src.Alias = p.parseAlias()
			return src
		}
		p.next()
		src := &ast.ParenSource{Lparen: lparen, From: &ast.FromClause{From: lparen}}
		src.From.Source = p.parseTableSource()
		for {
			join, ok := p.parseJoinOp()
			if !ok {
				break
			}
			join.Source = p.parseTableSource()
			join.Constraint = p.parseJoinConstraint()
			src.From.Joins = append(src.From.Joins, join)
		}
		src.Rparen = p.expect(token.RParen)
		src.AliasKind, src.Alias = p.parseAlias()
		return src
	}

	name := p.parseIdent()
	var schema *ast.Ident
	if p.got(token.Dot) {
		schema, name = name, p.parseIdent()
	}
	if p.tok == token.LParen {
		fn := &ast.FuncSource{Name: name}
		if schema != nil {
			fn.Name = &ast.Ident{NamePos: schema.NamePos, Name: schema.Name + "." + name.Name, Lit: schema.Lit + "." + name.Lit}
		}
		p.next()
		if p.tok != token.RParen {
			fn.Args = p.parseExprList()
		}
		fn.Rparen = p.expect(token.RParen)
		fn.AliasKind, fn.Alias = p.parseAlias()
		return fn
	}

	tbl := &ast.TableName{Schema: schema, Name: name}
	tbl.AliasKind, tbl.Alias = p.parseAlias()
	switch p.tok {
	case token.Indexed:
		p.next()
		p.expect(token.By)
		tbl.IndexedBy = p.parseIdent()
	case token.Not:
		p.next()
		p.expect(token.Indexed)
		tbl.NotIndexed = true
	}
	tbl.EndPos = p.prevEnd
	return tbl
}

// ----------------------------------------------------------------------------
// Statements

func (p *parser) parseWithClause() *ast.WithClause {
	if p.trace {
		defer un(trace(p, "WithClause"))
	}
	with := &ast.WithClause{With: p.expect(token.With)}
	with.Recursive = p.got(token.Recursive)
	for {
		cte := &ast.CTE{Name: p.parseIdent()}
		if p.tok == token.LParen {
			p.next()
			cte.Columns = p.parseIdentList()
			p.expect(token.RParen)
		}
		p.expect(token.As)
		switch {
		case p.got(token.Materialized):
			cte.Materialized = "MATERIALIZED"
		case p.tok == token.Not:
			p.next()
			p.expect(token.Materialized)
			cte.Materialized = "NOT MATERIALIZED"
		}
		p.expect(token.LParen)
		cte.Select = p.parseSelectStmt(nil)
		cte.Rparen = p.expect(token.RParen)
		with.CTEs = append(with.CTEs, cte)
		if !p.got(token.Comma) {
			return with
		}
	}
}

func (p *parser) parseResultColumn() *ast.ResultColumn {
	if p.tok == token.Star {
		col := &ast.ResultColumn{Star: true, StarPos: p.pos}
		p.next()
		return col
	}
	var x ast.Expr
	if p.isName() && p.peek() == token.Dot {
		first := p.parseIdent()
		p.next() // consume '.'
		if p.tok == token.Star {
			col := &ast.ResultColumn{Star: true, StarTable: first, StarPos: p.pos}
			p.next()
			return col
		}
		x = p.parseBinaryExprFrom(p.parseQualifiedIdent(first, p.parseIdent()), precLowest)
	} else {
		x = p.parseExpr()
	}
	col := &ast.ResultColumn{X: x}
	_, col.Alias = p.parseAlias()
	return col
}

// parseSelectCore parses a single SELECT ... or VALUES ... without compound
// operators, ORDER BY or LIMIT.
func (p *parser) parseSelectCore() *ast.SelectStmt {
	if p.trace {
		defer un(trace(p, "SelectCore"))
	}
	sel := &ast.SelectStmt{Select: p.pos}
	if p.got(token.Values) {
		for {
			p.expect(token.LParen)
			sel.Values = append(sel.Values, p.parseExprList())
			p.expect(token.RParen)
			if !p.got(token.Comma) {
				break
			}
		}
		sel.EndPos = p.prevEnd
		return sel
	}

	p.expect(token.Select)
	if p.got(token.Distinct) {
		sel.Distinct = true
	} else {
		p.got(token.All)
	}
	sel.Columns = []*ast.ResultColumn{p.parseResultColumn()}
	for p.got(token.Comma) {
		sel.Columns = append(sel.Columns, p.parseResultColumn())
	}
	if p.tok == token.From {
		sel.From = p.parseFromClause()
	}
	if p.got(token.Where) {
		sel.Where = p.parseExpr()
	}
	if p.got(token.Group) {
		p.expect(token.By)
		sel.GroupBy = p.parseExprList()
	}
	if p.got(token.Having) {
		sel.Having = p.parseExpr()
	}
	if p.got(token.Window) {
		for {
			w := &ast.NamedWindow{Name: p.parseIdent()}
			p.expect(token.As)
			w.Lparen, w.Rparen = p.skipParens()
			sel.Windows = append(sel.Windows, w)
			if !p.got(token.Comma) {
				break
			}
		}
	}
	sel.EndPos = p.prevEnd
	return sel
}

func (p *parser) parseCompoundOp() (ast.CompoundOp, bool) {
	switch p.tok {
	case token.Union:
		p.next()
		if p.got(token.All) {
			return ast.CompoundUnionAll, true
		}
		return ast.CompoundUnion, true
	case token.Intersect:
		p.next()
		return ast.CompoundIntersect, true
	case token.Except:
		p.next()
		return ast.CompoundExcept, true
	default:
		return 0, false
	}
}

// parseSelectStmt parses a full select statement, optionally preceded by a
// WITH clause. If with is nil and the current token is WITH, the WITH clause
// is parsed here.
func (p *parser) parseSelectStmt(with *ast.WithClause) *ast.SelectStmt {
	if p.trace {
		defer un(trace(p, "SelectStmt"))
	}
	if with == nil && p.tok == token.With {
		with = p.parseWithClause()
	}
	if p.tok != token.Select && p.tok != token.Values {
		p.errorExpected(p.pos, "SELECT or VALUES")
	}
	sel := p.parseSelectCore()
	sel.With = with
	for {
		opPos := p.pos
		op, ok := p.parseCompoundOp()
		if !ok {
			break
		}
		sel.Compound = append(sel.Compound, &ast.CompoundSelect{OpPos: opPos, Op: op, Select: p.parseSelectCore()})
	}
	if p.got(token.Order) {
		p.expect(token.By)
		sel.OrderBy = p.parseOrderingTerms()
	}
	if p.got(token.Limit) {
		sel.Limit = p.parseExpr()
		switch {
		case p.got(token.Offset):
			sel.Offset = p.parseExpr()
		case p.got(token.Comma):
			// LIMIT offset, count
			sel.Offset, sel.Limit = sel.Limit, p.parseExpr()
		}
	}
	sel.EndPos = p.prevEnd
	return sel
}

func (p *parser) parseOrderingTerms() []*ast.OrderingTerm {
	var terms []*ast.OrderingTerm
	for {
		term := &ast.OrderingTerm{X: p.parseExpr()}
		if !p.got(token.Asc) && p.got(token.Desc) {
			term.Desc = true
		}
		if p.got(token.Nulls) {
			switch {
			case p.got(token.First):
				term.NullsFirst = true
			case p.got(token.Last):
				term.NullsLast = true
			default:
				p.errorExpected(p.pos, "FIRST or LAST")
			}
		}
		terms = append(terms, term)
		if !p.got(token.Comma) {
			return terms
		}
	}
}

// skipStmt consumes tokens up to, but not including, the semicolon ending the
// current statement. The body of CREATE TRIGGER ... BEGIN ... END contains
// semicolons, so it's skipped as a unit.
func (p *parser) skipStmt() {
	sawTrigger, inBody := false, false
	for p.tok != token.EOF {
		switch {
		case p.tok == token.Semicolon && !inBody:
			return
		case p.tok == token.Ident && strings.EqualFold(p.lit, "trigger"):
			sawTrigger = true
		case p.tok == token.Ident && strings.EqualFold(p.lit, "begin") && sawTrigger:
			inBody = true
		case p.tok == token.Case:
			p.next()
			p.skipCase()
			continue
		case p.tok == token.End && inBody:
			inBody = false
		}
		p.next()
	}
}

// skipCase consumes tokens through the END matching an already consumed CASE.
func (p *parser) skipCase() {
	for p.tok != token.EOF {
		switch p.tok {
		case token.Case:
			p.next()
			p.skipCase()
			continue
		case token.End:
			p.next()
			return
		}
		p.next()
	}
}

// parseStmt parses a single statement. Statements with syntax errors are
// returned as *ast.BadStmt after skipping to the next semicolon.
func (p *parser) parseStmt() ast.Stmt {
	if p.trace {
		defer un(trace(p, "Statement"))
	}
	doc := p.leadComment
	start := p.pos
	errCount := p.errCount

	var stmt ast.Stmt
	switch p.tok {
	case token.Select, token.Values:
		sel := p.parseSelectStmt(nil)
		sel.Doc = doc
		stmt = sel
	case token.With:
		with := p.parseWithClause()
		if p.tok != token.Select && p.tok != token.Values {
			stmt = p.parseUnsupportedStmt(doc, start, p.lit)
			break
		}
		sel := p.parseSelectStmt(with)
		sel.Doc = doc
		stmt = sel
	case token.Ident, token.Illegal:
		stmt = p.parseUnsupportedStmt(doc, start, strings.ToUpper(p.lit))
	default:
		if p.tok.IsKeyword() {
			stmt = p.parseUnsupportedStmt(doc, start, strings.ToUpper(p.lit))
			break
		}
		p.errorExpected(p.pos, "statement")
	}

	if p.tok != token.Semicolon && p.tok != token.EOF {
		p.errorExpected(p.pos, "';' or end of input")
	}
	if p.errCount > errCount || stmt == nil {
		p.skipStmt()
		return &ast.BadStmt{From: start, To: p.pos}
	}
	return stmt
}

func (p *parser) parseUnsupportedStmt(doc *ast.CommentGroup, start gotok.Pos, keyword string) ast.Stmt {
	p.skipStmt()
	return &ast.UnsupportedStmt{
		Doc:     doc,
		Start:   start,
		Keyword: strings.ToUpper(keyword),
		EndPos:  p.prevEnd,
	}
}

// ----------------------------------------------------------------------------
// Source files

func (p *parser) parseFile() *ast.File {
	if p.trace {
		defer un(trace(p, "File"))
	}

	// Don't bother parsing the rest if we had errors scanning the first token.
	// Likely not a SQL file at all.
	if p.errors.Len() != 0 {
		return nil
	}

	var stmts []ast.Stmt
	for p.tok != token.EOF {
		if p.got(token.Semicolon) {
			continue // empty statement
		}
		stmts = append(stmts, p.parseStmt())
	}

	return &ast.File{
		Stmts:    stmts,
		Comments: p.comments,
	}
}
