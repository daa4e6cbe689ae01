package rox

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type lexer struct {
	input string

	offset int
	width  int

	line   int
	column int

	ch rune
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, line: 1, column: 0}
	l.readRune()
	return l
}

func (l *lexer) readRune() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
	if l.offset >= len(l.input) {
		l.width = 0
		l.ch = 0
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.width = w
	l.offset += w
	l.column++
	l.ch = r
}

func (l *lexer) peekRune() rune {
	if l.offset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])
	return r
}

func (l *lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	tok := Token{Pos: Position{Line: l.line, Column: l.column}}

	switch l.ch {
	case 0:
		tok.Type = tokenEOF
		tok.Literal = ""
		return tok
	case '(':
		tok.Type = tokenLParen
	case ')':
		tok.Type = tokenRParen
	case '{':
		tok.Type = tokenLBrace
	case '}':
		tok.Type = tokenRBrace
	case ',':
		tok.Type = tokenComma
	case '.':
		tok.Type = tokenDot
	case '-':
		tok.Type = tokenMinus
	case '+':
		tok.Type = tokenPlus
	case ';':
		tok.Type = tokenSemicolon
	case '*':
		tok.Type = tokenStar
	case '/':
		tok.Type = tokenSlash
	case '!':
		tok.Type = l.either('=', tokenNotEQ, tokenBang)
	case '=':
		tok.Type = l.either('=', tokenEQ, tokenAssign)
	case '<':
		tok.Type = l.either('=', tokenLTE, tokenLT)
	case '>':
		tok.Type = l.either('=', tokenGTE, tokenGT)
	case '"':
		literal, err := l.readString()
		if err != "" {
			tok.Type = tokenIllegal
			tok.Literal = err
		} else {
			tok.Type = tokenString
			tok.Literal = literal
		}
		return tok
	default:
		switch {
		case isIdentifierStart(l.ch):
			literal := l.readIdentifier()
			tok.Type = lookupIdent(literal)
			tok.Literal = literal
			return tok
		case isDigit(l.ch):
			tok.Type = tokenNumber
			tok.Literal = l.readNumber()
			return tok
		default:
			tok.Type = tokenIllegal
			tok.Literal = fmt.Sprintf("unexpected character %q", l.ch)
			l.readRune()
			return tok
		}
	}

	tok.Literal = string(tok.Type)
	l.readRune()
	return tok
}

// either consumes the next rune when it equals want and returns matched,
// otherwise it leaves the input untouched and returns single.
func (l *lexer) either(want rune, matched, single TokenType) TokenType {
	if l.peekRune() == want {
		l.readRune()
		return matched
	}
	return single
}

func (l *lexer) currentOffset() int {
	return l.offset - l.width
}

func (l *lexer) skipWhitespaceAndComments() {
	for {
		switch l.ch {
		case ' ', '\t', '\r', '\n':
			l.readRune()
			continue
		case '/':
			if l.peekRune() != '/' {
				return
			}
			l.skipComment()
			continue
		default:
			return
		}
	}
}

func (l *lexer) skipComment() {
	for l.ch != 0 && l.ch != '\n' {
		l.readRune()
	}
}

func (l *lexer) readIdentifier() string {
	start := l.currentOffset()
	for isIdentifierRune(l.peekRune()) {
		l.readRune()
	}
	literal := l.input[start:l.offset]
	l.readRune()
	return literal
}

func (l *lexer) readNumber() string {
	start := l.currentOffset()
	for isDigit(l.peekRune()) {
		l.readRune()
	}
	if l.peekRune() == '.' && isDigit(l.peekRuneAfterNext()) {
		l.readRune()
		for isDigit(l.peekRune()) {
			l.readRune()
		}
	}
	literal := l.input[start:l.offset]
	l.readRune()
	return literal
}

func (l *lexer) peekRuneAfterNext() rune {
	if l.offset >= len(l.input) {
		return 0
	}
	_, w := utf8.DecodeRuneInString(l.input[l.offset:])
	if l.offset+w >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.offset+w:])
	return r
}

// readString consumes a double-quoted literal. Strings may span lines and
// have no escape sequences.
func (l *lexer) readString() (string, string) {
	start := l.offset
	for {
		l.readRune()
		switch l.ch {
		case 0:
			return "", "unterminated string"
		case '"':
			literal := l.input[start:l.currentOffset()]
			l.readRune()
			return literal, ""
		}
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentifierStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentifierRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
