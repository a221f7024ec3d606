// Package token defines the lexical tokens of the SQLite SELECT grammar
// understood by the scanner and parser.
package token

import (
	"strconv"
	"strings"
)

// Token is the set of lexical tokens for the SQL subset we parse.
type Token int

const (
	Illegal Token = iota
	EOF
	LineComment  // -- foo
	BlockComment // /* foo */

	literalBeg
	Ident     // foo, "foo", `foo`, [foo]
	Number    // 123, 1.5e3, 0x1F
	String    // 'foo'
	Blob      // x'CAFE'
	BindParam // ?, ?1, :foo, @foo, $foo
	literalEnd

	operatorBeg
	Semicolon // ;
	Comma     // ,
	Dot       // .
	LParen    // (
	RParen    // )
	Star      // *
	Plus      // +
	Minus     // -
	Slash     // /
	Percent   // %
	Concat    // ||
	Arrow     // ->
	Arrow2    // ->>
	Eq        // =
	EqEq      // ==
	NotEq     // !=
	LtGt      // <>
	Lt        // <
	LtEq      // <=
	Gt        // >
	GtEq      // >=
	BitAnd    // &
	BitOr     // |
	BitNot    // ~
	ShiftL    // <<
	ShiftR    // >>
	operatorEnd

	keywordBeg
	All
	And
	As
	Asc
	Between
	By
	Case
	Cast
	Collate
	Cross
	Current
	Desc
	Distinct
	Else
	End
	Escape
	Except
	Exists
	Filter
	First
	Following
	From
	Full
	Glob
	Group
	Groups
	Having
	In
	Indexed
	Inner
	Intersect
	Is
	Isnull
	Join
	Last
	Left
	Like
	Limit
	Match
	Materialized
	Natural
	Not
	Notnull
	Null
	Nulls
	Offset
	On
	Or
	Order
	Outer
	Over
	Partition
	Preceding
	Raise
	Range
	Recursive
	Regexp
	Right
	Row
	Rows
	Select
	Then
	Unbounded
	Union
	Using
	Values
	When
	Where
	Window
	With
	keywordEnd
)

var tokens = [...]string{
	Illegal:      "Illegal",
	EOF:          "EOF",
	LineComment:  "LineComment",
	BlockComment: "BlockComment",

	Ident:     "Ident",
	Number:    "Number",
	String:    "String",
	Blob:      "Blob",
	BindParam: "BindParam",

	Semicolon: ";",
	Comma:     ",",
	Dot:       ".",
	LParen:    "(",
	RParen:    ")",
	Star:      "*",
	Plus:      "+",
	Minus:     "-",
	Slash:     "/",
	Percent:   "%",
	Concat:    "||",
	Arrow:     "->",
	Arrow2:    "->>",
	Eq:        "=",
	EqEq:      "==",
	NotEq:     "!=",
	LtGt:      "<>",
	Lt:        "<",
	LtEq:      "<=",
	Gt:        ">",
	GtEq:      ">=",
	BitAnd:    "&",
	BitOr:     "|",
	BitNot:    "~",
	ShiftL:    "<<",
	ShiftR:    ">>",

	All:          "ALL",
	And:          "AND",
	As:           "AS",
	Asc:          "ASC",
	Between:      "BETWEEN",
	By:           "BY",
	Case:         "CASE",
	Cast:         "CAST",
	Collate:      "COLLATE",
	Cross:        "CROSS",
	Current:      "CURRENT",
	Desc:         "DESC",
	Distinct:     "DISTINCT",
	Else:         "ELSE",
	End:          "END",
	Escape:       "ESCAPE",
	Except:       "EXCEPT",
	Exists:       "EXISTS",
	Filter:       "FILTER",
	First:        "FIRST",
	Following:    "FOLLOWING",
	From:         "FROM",
	Full:         "FULL",
	Glob:         "GLOB",
	Group:        "GROUP",
	Groups:       "GROUPS",
	Having:       "HAVING",
	In:           "IN",
	Indexed:      "INDEXED",
	Inner:        "INNER",
	Intersect:    "INTERSECT",
	Is:           "IS",
	Isnull:       "ISNULL",
	Join:         "JOIN",
	Last:         "LAST",
	Left:         "LEFT",
	Like:         "LIKE",
	Limit:        "LIMIT",
	Match:        "MATCH",
	Materialized: "MATERIALIZED",
	Natural:      "NATURAL",
	Not:          "NOT",
	Notnull:      "NOTNULL",
	Null:         "NULL",
	Nulls:        "NULLS",
	Offset:       "OFFSET",
	On:           "ON",
	Or:           "OR",
	Order:        "ORDER",
	Outer:        "OUTER",
	Over:         "OVER",
	Partition:    "PARTITION",
	Preceding:    "PRECEDING",
	Raise:        "RAISE",
	Range:        "RANGE",
	Recursive:    "RECURSIVE",
	Regexp:       "REGEXP",
	Right:        "RIGHT",
	Row:          "ROW",
	Rows:         "ROWS",
	Select:       "SELECT",
	Then:         "THEN",
	Unbounded:    "UNBOUNDED",
	Union:        "UNION",
	Using:        "USING",
	Values:       "VALUES",
	When:         "WHEN",
	Where:        "WHERE",
	Window:       "WINDOW",
	With:         "WITH",
}

func (t Token) String() string {
	if 0 <= t && int(t) < len(tokens) && tokens[t] != "" {
		return tokens[t]
	}
	return "token(" + strconv.Itoa(int(t)) + ")"
}

var keywords map[string]Token

func init() {
	keywords = make(map[string]Token, keywordEnd-keywordBeg)
	for i := keywordBeg + 1; i < keywordEnd; i++ {
		keywords[tokens[i]] = i
	}
}

// Lookup maps an unquoted identifier to its keyword token, or Ident if the
// identifier is not a keyword. Keywords are case-insensitive. TRUE and FALSE
// are identifiers: SQLite reads them as booleans only when no column of that
// name is in scope.
func Lookup(ident string) Token {
	if tok, ok := keywords[strings.ToUpper(ident)]; ok {
		return tok
	}
	return Ident
}

// IsLiteral returns true for tokens corresponding to identifiers and basic
// type literals.
func (t Token) IsLiteral() bool { return literalBeg < t && t < literalEnd }

// IsKeyword returns true for tokens corresponding to keywords.
func (t Token) IsKeyword() bool { return keywordBeg < t && t < keywordEnd }

// IsSoftKeyword reports whether t is a keyword that SQLite also accepts as an
// identifier, like a column named "first", "offset" or "left". The join
// keywords are included: SQLite accepts them anywhere a name is expected.
func (t Token) IsSoftKeyword() bool {
	switch t {
	case Asc, Desc, First, Last, Nulls, Filter, Over, Partition, Range, Rows,
		Groups, Row, Current, Preceding, Following, Unbounded, Window,
		Materialized, Recursive, Offset, Raise,
		Like, Glob, Match, Regexp,
		Cross, Full, Inner, Left, Natural, Outer, Right:
		return true
	default:
		return false
	}
}
