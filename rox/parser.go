package rox

import "fmt"

const maxArgs = 255

type (
	prefixParseFn func() Expression
	infixParseFn  func(Expression) Expression
)

type classContext struct {
	hasSuperclass bool
}

type parser struct {
	l *lexer

	curToken  Token
	peekToken Token

	errors []*SyntaxError

	prefixFns map[TokenType]prefixParseFn
	infixFns  map[TokenType]infixParseFn

	functionDepth int
	classes       []classContext
}

func newParser(input string) *parser {
	l := newLexer(input)
	p := &parser{l: l}

	p.prefixFns = make(map[TokenType]prefixParseFn)
	p.infixFns = make(map[TokenType]infixParseFn)

	p.registerPrefix(tokenIdent, p.parseIdentifier)
	p.registerPrefix(tokenNumber, p.parseNumberLiteral)
	p.registerPrefix(tokenString, p.parseStringLiteral)
	p.registerPrefix(tokenTrue, p.parseBooleanLiteral)
	p.registerPrefix(tokenFalse, p.parseBooleanLiteral)
	p.registerPrefix(tokenNil, p.parseNilLiteral)
	p.registerPrefix(tokenThis, p.parseThis)
	p.registerPrefix(tokenSuper, p.parseSuper)
	p.registerPrefix(tokenLParen, p.parseGroupedExpression)
	p.registerPrefix(tokenBang, p.parsePrefixExpression)
	p.registerPrefix(tokenMinus, p.parsePrefixExpression)

	p.infixFns[tokenPlus] = p.parseInfixExpression
	p.infixFns[tokenMinus] = p.parseInfixExpression
	p.infixFns[tokenSlash] = p.parseInfixExpression
	p.infixFns[tokenStar] = p.parseInfixExpression
	p.infixFns[tokenEQ] = p.parseInfixExpression
	p.infixFns[tokenNotEQ] = p.parseInfixExpression
	p.infixFns[tokenLT] = p.parseInfixExpression
	p.infixFns[tokenLTE] = p.parseInfixExpression
	p.infixFns[tokenGT] = p.parseInfixExpression
	p.infixFns[tokenGTE] = p.parseInfixExpression
	p.infixFns[tokenAnd] = p.parseLogicalExpression
	p.infixFns[tokenOr] = p.parseLogicalExpression
	p.infixFns[tokenAssign] = p.parseAssignExpression
	p.infixFns[tokenLParen] = p.parseCallExpression
	p.infixFns[tokenDot] = p.parseGetExpression

	p.nextToken()
	p.nextToken()

	return p
}

func (p *parser) registerPrefix(tt TokenType, fn prefixParseFn) {
	p.prefixFns[tt] = fn
}

func (p *parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *parser) expectPeek(tt TokenType, what string) bool {
	if p.peekToken.Type == tt {
		p.nextToken()
		return true
	}
	if p.peekToken.Type == tokenIllegal {
		p.errorUnexpected(p.peekToken)
		return false
	}
	p.errorExpected(p.peekToken, what)
	return false
}

// ParseProgram parses declarations until end of input. On a syntax error the
// parser skips to the next statement boundary and keeps going, so one pass
// reports every independent error.
func (p *parser) ParseProgram() (*Program, []*SyntaxError) {
	program := &Program{}

	for p.curToken.Type != tokenEOF {
		stmt := p.parseDeclaration()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
	}

	return program, p.errors
}

func (p *parser) parseDeclaration() Statement {
	var stmt Statement
	switch p.curToken.Type {
	case tokenClass:
		if class := p.parseClassDeclaration(); class != nil {
			stmt = class
		}
	case tokenFun:
		if !p.expectPeek(tokenIdent, "function name") {
			break
		}
		if fn := p.parseFunction(); fn != nil {
			stmt = fn
		}
	case tokenVar:
		stmt = p.parseVarDeclaration()
	default:
		stmt = p.parseStatement()
	}
	if stmt == nil {
		p.synchronize()
	}
	return stmt
}

// synchronize discards tokens until the current token ends a statement or
// the next one starts a new declaration.
func (p *parser) synchronize() {
	for p.curToken.Type != tokenEOF {
		if p.curToken.Type == tokenSemicolon {
			return
		}
		switch p.peekToken.Type {
		case tokenClass, tokenFun, tokenVar, tokenFor, tokenIf, tokenWhile,
			tokenPrint, tokenReturn, tokenRBrace, tokenEOF:
			return
		}
		p.nextToken()
	}
}

func (p *parser) parseClassDeclaration() *ClassStmt {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenIdent, "class name") {
		return nil
	}
	name := p.curToken.Literal

	var superclass *Identifier
	if p.peekToken.Type == tokenLT {
		p.nextToken()
		if !p.expectPeek(tokenIdent, "superclass name") {
			return nil
		}
		superclass = &Identifier{Name: p.curToken.Literal, position: p.curToken.Pos}
		if superclass.Name == name {
			p.addParseError(superclass.Pos(), "a class can't inherit from itself")
		}
	}

	if !p.expectPeek(tokenLBrace, "'{' before class body") {
		return nil
	}

	p.classes = append(p.classes, classContext{hasSuperclass: superclass != nil})
	defer func() { p.classes = p.classes[:len(p.classes)-1] }()

	methods := []*FunctionStmt{}
	seen := make(map[string]struct{})
	for p.peekToken.Type != tokenRBrace && p.peekToken.Type != tokenEOF {
		if !p.expectPeek(tokenIdent, "method name") {
			return nil
		}
		method := p.parseFunction()
		if method == nil {
			return nil
		}
		if _, dup := seen[method.Name]; dup {
			p.addParseError(method.Pos(), fmt.Sprintf("class %s already defines a method named %s", name, method.Name))
			continue
		}
		seen[method.Name] = struct{}{}
		methods = append(methods, method)
	}

	if !p.expectPeek(tokenRBrace, "'}' after class body") {
		return nil
	}

	return &ClassStmt{Name: name, Superclass: superclass, Methods: methods, position: pos}
}

// parseFunction parses a parameter list and body. The current token is the
// function or method name.
func (p *parser) parseFunction() *FunctionStmt {
	pos := p.curToken.Pos
	name := p.curToken.Literal

	if !p.expectPeek(tokenLParen, "'(' after function name") {
		return nil
	}

	params := []Param{}
	seen := make(map[string]struct{})
	if p.peekToken.Type != tokenRParen {
		for {
			if !p.expectPeek(tokenIdent, "parameter name") {
				return nil
			}
			if len(params) >= maxArgs {
				p.addParseError(p.curToken.Pos, fmt.Sprintf("can't have more than %d parameters", maxArgs))
			}
			if _, dup := seen[p.curToken.Literal]; dup {
				p.addParseError(p.curToken.Pos, fmt.Sprintf("duplicate parameter %s", p.curToken.Literal))
			}
			seen[p.curToken.Literal] = struct{}{}
			params = append(params, Param{Name: p.curToken.Literal, position: p.curToken.Pos})
			if p.peekToken.Type != tokenComma {
				break
			}
			p.nextToken()
		}
	}
	if !p.expectPeek(tokenRParen, "')' after parameters") {
		return nil
	}
	if !p.expectPeek(tokenLBrace, "'{' before function body") {
		return nil
	}

	p.functionDepth++
	body, ok := p.parseBlockBody()
	p.functionDepth--
	if !ok {
		return nil
	}

	return &FunctionStmt{Name: name, Params: params, Body: body, position: pos}
}

func (p *parser) parseVarDeclaration() Statement {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenIdent, "variable name") {
		return nil
	}
	name := p.curToken.Literal

	var init Expression
	if p.peekToken.Type == tokenAssign {
		p.nextToken()
		p.nextToken()
		init = p.parseExpression(lowestPrec)
		if init == nil {
			return nil
		}
	}
	if !p.expectPeek(tokenSemicolon, "';' after variable declaration") {
		return nil
	}
	return &VarStmt{Name: name, Init: init, position: pos}
}

func (p *parser) parseStatement() Statement {
	switch p.curToken.Type {
	case tokenPrint:
		return p.parsePrintStatement()
	case tokenReturn:
		return p.parseReturnStatement()
	case tokenIf:
		return p.parseIfStatement()
	case tokenWhile:
		return p.parseWhileStatement()
	case tokenFor:
		return p.parseForStatement()
	case tokenLBrace:
		pos := p.curToken.Pos
		body, ok := p.parseBlockBody()
		if !ok {
			return nil
		}
		return &BlockStmt{Statements: body, position: pos}
	default:
		return p.parseExpressionStatement()
	}
}

// parseBlockBody parses declarations up to the matching '}'. The current
// token is the opening brace; on return it is the closing one.
func (p *parser) parseBlockBody() ([]Statement, bool) {
	stmts := []Statement{}
	p.nextToken()
	for p.curToken.Type != tokenRBrace && p.curToken.Type != tokenEOF {
		if stmt := p.parseDeclaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
		p.nextToken()
	}
	if p.curToken.Type != tokenRBrace {
		p.errorExpected(p.curToken, "'}' after block")
		return stmts, false
	}
	return stmts, true
}

func (p *parser) parsePrintStatement() Statement {
	pos := p.curToken.Pos
	p.nextToken()
	value := p.parseExpression(lowestPrec)
	if value == nil {
		return nil
	}
	if !p.expectPeek(tokenSemicolon, "';' after value") {
		return nil
	}
	return &PrintStmt{Expr: value, position: pos}
}

func (p *parser) parseReturnStatement() Statement {
	pos := p.curToken.Pos
	if p.functionDepth == 0 {
		p.addParseError(pos, "can't return from top-level code")
	}
	if p.peekToken.Type == tokenSemicolon {
		p.nextToken()
		return &ReturnStmt{position: pos}
	}
	p.nextToken()
	value := p.parseExpression(lowestPrec)
	if value == nil {
		return nil
	}
	if !p.expectPeek(tokenSemicolon, "';' after return value") {
		return nil
	}
	return &ReturnStmt{Value: value, position: pos}
}

func (p *parser) parseIfStatement() Statement {
	pos := p.curToken.Pos
	condition := p.parseCondition("if")
	if condition == nil {
		return nil
	}

	p.nextToken()
	consequent := p.parseStatement()
	if consequent == nil {
		return nil
	}

	var alternate Statement
	if p.peekToken.Type == tokenElse {
		p.nextToken()
		p.nextToken()
		alternate = p.parseStatement()
		if alternate == nil {
			return nil
		}
	}

	return &IfStmt{Condition: condition, Then: consequent, Else: alternate, position: pos}
}

func (p *parser) parseWhileStatement() Statement {
	pos := p.curToken.Pos
	condition := p.parseCondition("while")
	if condition == nil {
		return nil
	}
	p.nextToken()
	body := p.parseStatement()
	if body == nil {
		return nil
	}
	return &WhileStmt{Condition: condition, Body: body, position: pos}
}

func (p *parser) parseCondition(keyword string) Expression {
	if !p.expectPeek(tokenLParen, fmt.Sprintf("'(' after '%s'", keyword)) {
		return nil
	}
	p.nextToken()
	condition := p.parseExpression(lowestPrec)
	if condition == nil {
		return nil
	}
	if !p.expectPeek(tokenRParen, "')' after condition") {
		return nil
	}
	return condition
}

// parseForStatement desugars `for (init; cond; incr) body` into a block
// holding the initializer and a while loop.
func (p *parser) parseForStatement() Statement {
	pos := p.curToken.Pos
	if !p.expectPeek(tokenLParen, "'(' after 'for'") {
		return nil
	}
	p.nextToken()

	var initializer Statement
	switch p.curToken.Type {
	case tokenSemicolon:
	case tokenVar:
		initializer = p.parseVarDeclaration()
		if initializer == nil {
			return nil
		}
	default:
		initializer = p.parseExpressionStatement()
		if initializer == nil {
			return nil
		}
	}
	p.nextToken()

	var condition Expression
	if p.curToken.Type != tokenSemicolon {
		condition = p.parseExpression(lowestPrec)
		if condition == nil {
			return nil
		}
		if !p.expectPeek(tokenSemicolon, "';' after loop condition") {
			return nil
		}
	}
	p.nextToken()

	var increment Expression
	if p.curToken.Type != tokenRParen {
		increment = p.parseExpression(lowestPrec)
		if increment == nil {
			return nil
		}
		if !p.expectPeek(tokenRParen, "')' after for clauses") {
			return nil
		}
	}
	p.nextToken()

	body := p.parseStatement()
	if body == nil {
		return nil
	}

	if increment != nil {
		body = &BlockStmt{
			Statements: []Statement{body, &ExprStmt{Expr: increment, position: increment.Pos()}},
			position:   body.Pos(),
		}
	}
	if condition == nil {
		condition = &BoolLiteral{Value: true, position: pos}
	}
	var loop Statement = &WhileStmt{Condition: condition, Body: body, position: pos}
	if initializer != nil {
		loop = &BlockStmt{Statements: []Statement{initializer, loop}, position: pos}
	}
	return loop
}

func (p *parser) parseExpressionStatement() Statement {
	expr := p.parseExpression(lowestPrec)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(tokenSemicolon, "';' after expression") {
		return nil
	}
	return &ExprStmt{Expr: expr, position: expr.Pos()}
}
