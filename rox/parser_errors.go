package rox

import (
	"fmt"
	"strings"
)

// SyntaxError is a single problem found while parsing a source file.
type SyntaxError struct {
	Pos     Position
	Message string
	source  string
}

func (e *SyntaxError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parse error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	if frame := formatCodeFrame(e.source, e.Pos); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

// CompileError collects every syntax error of one compilation.
type CompileError struct {
	Errors []*SyntaxError
}

func (e *CompileError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = err.Error()
	}
	return strings.Join(parts, "\n")
}

func (p *parser) errorExpected(tok Token, expected string) {
	p.addParseError(tok.Pos, fmt.Sprintf("expected %s, got %s", expected, tokenLabel(tok)))
}

func (p *parser) errorUnexpected(tok Token) {
	if tok.Type == tokenIllegal {
		p.addParseError(tok.Pos, tok.Literal)
		return
	}
	p.addParseError(tok.Pos, fmt.Sprintf("unexpected token %s", tokenLabel(tok)))
}

func (p *parser) addParseError(pos Position, msg string) {
	p.errors = append(p.errors, &SyntaxError{Pos: pos, Message: msg, source: p.l.input})
}

func tokenLabel(tok Token) string {
	switch tok.Type {
	case tokenIllegal:
		return "invalid token"
	case tokenEOF:
		return "end of input"
	case tokenIdent:
		return fmt.Sprintf("identifier %q", tok.Literal)
	case tokenNumber:
		return "number"
	case tokenString:
		return "string"
	default:
		if _, ok := keywords[tok.Literal]; ok {
			return fmt.Sprintf("'%s'", tok.Literal)
		}
		return fmt.Sprintf("%q", string(tok.Type))
	}
}
