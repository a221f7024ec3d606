package scanner

import (
	"fmt"
	gotok "go/token"
	"unicode"
	"unicode/utf8"

	"github.com/jschaf/sqlnull/internal/token"
)

const (
	eof = -1
	bom = 0xFEFF // byte order mark, only permitted as very first character
)

// An ErrorHandler may be provided to Scanner.Init. If a syntax error is
// encountered and a handler was installed, the handler is called with a
// position and an error message. The position points to the beginning of
// the offending token.
type ErrorHandler func(pos gotok.Position, msg string)

// A Scanner holds the scanner's internal state while processing a given text.
// It can be allocated as part of another data structure but must be initialized
// via Init before use.
type Scanner struct {
	// immutable state
	file *gotok.File  // source file handle
	src  []byte       // source code
	err  ErrorHandler // error reporting; or nil

	// scanning state
	ch       rune // current character
	offset   int  // character offset
	rdOffset int  // reading offset (position after current character)

	// public state - ok to modify
	ErrorCount int // number of errors encountered
}

// Read the next Unicode char into s.ch.
// s.ch < 0 means end-of-file.
func (s *Scanner) next() {
	if s.rdOffset < len(s.src) {
		s.offset = s.rdOffset
		if s.ch == '\n' {
			s.file.AddLine(s.offset)
		}
		r, w := rune(s.src[s.rdOffset]), 1
		switch {
		case r == 0:
			s.error(s.offset, "illegal character NUL")
		case r >= utf8.RuneSelf:
			// not ASCII
			r, w = utf8.DecodeRune(s.src[s.rdOffset:])
			if r == utf8.RuneError && w == 1 {
				s.error(s.offset, "illegal UTF-8 encoding")
			} else if r == bom && s.offset > 0 {
				s.error(s.offset, "illegal byte order mark")
			}
		}
		s.rdOffset += w
		s.ch = r
	} else {
		s.offset = len(s.src)
		if s.ch == '\n' {
			s.file.AddLine(s.offset)
		}
		s.ch = eof
	}
}

func (s *Scanner) error(offs int, msg string) {
	if s.err != nil {
		s.err(s.file.Position(s.file.Pos(offs)), msg)
	}
	s.ErrorCount++
}

func (s *Scanner) errorf(offset int, format string, args ...interface{}) {
	s.error(offset, fmt.Sprintf(format, args...))
}

// Init prepares the scanner s to tokenize the text src by setting the scanner
// at the beginning of src. The scanner uses the file set file for position
// information and it adds line information for each line. It is ok to re-use
// the same file when re-scanning the same file as line information which is
// already present is ignored. Init causes a panic if the file size does not
// match the src size.
//
// Calls to Scan will invoke the error handler err if they encounter a syntax
// error and err is not nil.
func (s *Scanner) Init(file *gotok.File, src []byte, err ErrorHandler) {
	// Explicitly initialize all fields since a scanner may be reused.
	if file.Size() != len(src) {
		panic(fmt.Sprintf("file size (%d) does not match src len (%d)", file.Size(), len(src)))
	}
	s.file = file
	s.src = src
	s.err = err

	s.ch = ' '
	s.offset = 0
	s.rdOffset = 0
	s.ErrorCount = 0

	s.next()
	if s.ch == bom {
		s.next() // ignore BOM at file beginning
	}
}

// peek returns the byte following the most recently read character without
// advancing the scanner. If the scanner is at EOF, peek returns 0.
func (s *Scanner) peek() byte {
	if s.rdOffset < len(s.src) {
		return s.src[s.rdOffset]
	}
	return 0
}

func (s *Scanner) skipWhitespace() {
	for isSpace(s.ch) {
		s.next()
	}
}

func lower(ch rune) rune     { return ('a' - 'A') | ch } // returns lower-case ch iff ch is ASCII letter
func isDecimal(ch rune) bool { return '0' <= ch && ch <= '9' }
func isHex(ch rune) bool     { return '0' <= ch && ch <= '9' || 'a' <= lower(ch) && lower(ch) <= 'f' }
func isSpace(ch rune) bool   { return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' }

func isLetter(ch rune) bool {
	return 'a' <= lower(ch) && lower(ch) <= 'z' || ch == '_' || ch >= utf8.RuneSelf && unicode.IsLetter(ch)
}

// isIdentChar reports whether ch may appear after the first character of an
// unquoted identifier. SQLite allows '$' inside identifiers.
func isIdentChar(ch rune) bool {
	return isLetter(ch) || isDecimal(ch) || ch == '$' || ch >= utf8.RuneSelf && unicode.IsDigit(ch)
}

func (s *Scanner) scanLineComment() string {
	offs := s.offset
	for s.ch != '\n' && s.ch >= 0 {
		s.next()
	}
	return string(s.src[offs:s.offset])
}

// scanBlockComment scans a /* */ comment. SQLite block comments don't nest.
func (s *Scanner) scanBlockComment() (token.Token, string) {
	offs := s.offset
	s.next() // consume '/'
	s.next() // consume '*'
	for {
		if s.ch == eof {
			s.error(offs, "unterminated block comment")
			return token.Illegal, string(s.src[offs:s.offset])
		}
		if s.ch == '*' && s.peek() == '/' {
			s.next()
			s.next()
			return token.BlockComment, string(s.src[offs:s.offset])
		}
		s.next()
	}
}

// scanQuoted scans text enclosed by open and close, where a doubled close
// character is a literal close character. Used for 'strings', "idents" and
// `idents`.
func (s *Scanner) scanQuoted(tok token.Token, close rune, what string) (token.Token, string) {
	offs := s.offset
	s.next() // consume the opening quote
	for s.ch != eof {
		if s.ch == close {
			if rune(s.peek()) == close {
				s.next()
				s.next()
				continue
			}
			s.next() // consume closing quote
			return tok, string(s.src[offs:s.offset])
		}
		s.next()
	}
	s.errorf(offs, "unterminated %s: %s", what, string(s.src[offs:s.offset]))
	return token.Illegal, string(s.src[offs:s.offset])
}

// scanBracketIdent scans an MS Access style [identifier], which SQLite
// supports for compatibility.
func (s *Scanner) scanBracketIdent() (token.Token, string) {
	offs := s.offset
	s.next() // consume '['
	for s.ch != ']' {
		if s.ch == eof {
			s.errorf(offs, "unterminated bracket identifier: %s", string(s.src[offs:s.offset]))
			return token.Illegal, string(s.src[offs:s.offset])
		}
		s.next()
	}
	s.next() // consume ']'
	return token.Ident, string(s.src[offs:s.offset])
}

func (s *Scanner) scanIdentifier() string {
	offs := s.offset
	for isIdentChar(s.ch) {
		s.next()
	}
	return string(s.src[offs:s.offset])
}

func (s *Scanner) scanDigits(hex bool) {
	for isDecimal(s.ch) || hex && isHex(s.ch) {
		s.next()
	}
}

// scanNumber scans integer, real and hex literals, like 12, 1.5, .5e-3, 0x1F.
func (s *Scanner) scanNumber() (token.Token, string) {
	offs := s.offset
	if s.ch == '0' && lower(rune(s.peek())) == 'x' {
		s.next()
		s.next()
		if !isHex(s.ch) {
			s.errorf(offs, "hexadecimal literal has no digits")
			return token.Illegal, string(s.src[offs:s.offset])
		}
		s.scanDigits(true)
		return token.Number, string(s.src[offs:s.offset])
	}
	s.scanDigits(false)
	if s.ch == '.' {
		s.next()
		s.scanDigits(false)
	}
	if lower(s.ch) == 'e' {
		s.next()
		if s.ch == '+' || s.ch == '-' {
			s.next()
		}
		if !isDecimal(s.ch) {
			s.errorf(offs, "exponent has no digits")
			return token.Illegal, string(s.src[offs:s.offset])
		}
		s.scanDigits(false)
	}
	if isLetter(s.ch) {
		s.errorf(offs, "unrecognized token: %s", string(s.src[offs:s.rdOffset]))
		return token.Illegal, string(s.src[offs:s.offset])
	}
	return token.Number, string(s.src[offs:s.offset])
}

// scanBindParam scans a parameter like ?, ?3, :name, @name or $name.
func (s *Scanner) scanBindParam() (token.Token, string) {
	offs := s.offset
	prefix := s.ch
	s.next() // consume prefix
	if prefix == '?' {
		s.scanDigits(false)
		return token.BindParam, string(s.src[offs:s.offset])
	}
	if !isIdentChar(s.ch) {
		s.errorf(offs, "expected parameter name after %q", prefix)
		return token.Illegal, string(s.src[offs:s.offset])
	}
	for isIdentChar(s.ch) {
		s.next()
	}
	return token.BindParam, string(s.src[offs:s.offset])
}

// switch2 returns tok1 if the next character is ch1, consuming it, and tok0
// otherwise.
func (s *Scanner) switch2(tok0 token.Token, ch1 rune, tok1 token.Token) token.Token {
	if s.ch == ch1 {
		s.next()
		return tok1
	}
	return tok0
}

// Scan scans the next token and returns the token position, the token, and its
// literal string if applicable. The source end is indicated by token.EOF.
//
// If the returned token is a literal (token.Ident, token.Number,
// token.String, token.Blob, token.BindParam) or a comment, the literal string
// has the corresponding source text. Keywords return their source spelling.
//
// If the returned token is token.Illegal, the literal string is the offending
// text.
//
// For more tolerant parsing, Scan will return a valid token if possible even
// if a syntax error was encountered. Thus, even if the resulting token sequence
// contains no illegal tokens, a client may not assume that no error has
// occurred. Instead, the client must check the scanner's ErrorCount or the
// number of calls of the error handler, if there was one installed.
//
// Token positions are relative to the file.
func (s *Scanner) Scan() (pos gotok.Pos, tok token.Token, lit string) {
	s.skipWhitespace()
	pos = s.file.Pos(s.offset)

	switch ch := s.ch; {
	case ch == eof:
		tok = token.EOF
	case (ch == 'x' || ch == 'X') && s.peek() == '\'':
		offs := s.offset
		s.next() // consume 'x'
		tok, lit = s.scanQuoted(token.Blob, '\'', "blob literal")
		if tok == token.Blob {
			lit = string(s.src[offs:s.offset])
		}
	case isLetter(ch):
		lit = s.scanIdentifier()
		tok = token.Lookup(lit)
	case isDecimal(ch) || ch == '.' && isDecimal(rune(s.peek())):
		tok, lit = s.scanNumber()
	case ch == '\'':
		tok, lit = s.scanQuoted(token.String, '\'', "string literal")
	case ch == '"':
		tok, lit = s.scanQuoted(token.Ident, '"', "quoted identifier")
	case ch == '`':
		tok, lit = s.scanQuoted(token.Ident, '`', "quoted identifier")
	case ch == '[':
		tok, lit = s.scanBracketIdent()
	case ch == '?' || ch == ':' || ch == '@' || ch == '$':
		tok, lit = s.scanBindParam()
	case ch == '-' && s.peek() == '-':
		tok = token.LineComment
		lit = s.scanLineComment()
	case ch == '/' && s.peek() == '*':
		tok, lit = s.scanBlockComment()
	default:
		offs := s.offset
		s.next() // always make progress
		switch ch {
		case ';':
			tok = token.Semicolon
		case ',':
			tok = token.Comma
		case '.':
			tok = token.Dot
		case '(':
			tok = token.LParen
		case ')':
			tok = token.RParen
		case '*':
			tok = token.Star
		case '+':
			tok = token.Plus
		case '-':
			tok = token.Minus
			if s.ch == '>' {
				s.next()
				tok = s.switch2(token.Arrow, '>', token.Arrow2)
			}
		case '/':
			tok = token.Slash
		case '%':
			tok = token.Percent
		case '~':
			tok = token.BitNot
		case '&':
			tok = token.BitAnd
		case '|':
			tok = s.switch2(token.BitOr, '|', token.Concat)
		case '=':
			tok = s.switch2(token.Eq, '=', token.EqEq)
		case '!':
			if s.ch == '=' {
				s.next()
				tok = token.NotEq
			} else {
				s.errorf(offs, "illegal character %#U", ch)
				tok = token.Illegal
			}
		case '<':
			switch s.ch {
			case '=':
				s.next()
				tok = token.LtEq
			case '>':
				s.next()
				tok = token.LtGt
			case '<':
				s.next()
				tok = token.ShiftL
			default:
				tok = token.Lt
			}
		case '>':
			switch s.ch {
			case '=':
				s.next()
				tok = token.GtEq
			case '>':
				s.next()
				tok = token.ShiftR
			default:
				tok = token.Gt
			}
		default:
			s.errorf(offs, "illegal character %#U", ch)
			tok = token.Illegal
		}
		lit = string(s.src[offs:s.offset])
	}
	return
}

// Peek returns the next non-comment token without advancing the scanner and
// without reporting errors.
func (s *Scanner) Peek() (pos gotok.Pos, tok token.Token, lit string) {
	saved := *s
	s.err = nil
	for {
		pos, tok, lit = s.Scan()
		if tok != token.LineComment && tok != token.BlockComment {
			break
		}
	}
	*s = saved
	return
}
