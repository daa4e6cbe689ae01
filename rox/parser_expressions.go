package rox

import (
	"fmt"
	"strconv"
)

func (p *parser) parseExpression(precedence int) Expression {
	prefix := p.prefixFns[p.curToken.Type]
	if prefix == nil {
		if p.curToken.Type == tokenIllegal {
			p.errorUnexpected(p.curToken)
		} else {
			p.errorExpected(p.curToken, "expression")
		}
		return nil
	}
	left := prefix()

	for left != nil && precedence < p.peekPrecedence() {
		infix := p.infixFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}

	return left
}

func (p *parser) parseIdentifier() Expression {
	return &Identifier{Name: p.curToken.Literal, position: p.curToken.Pos}
}

func (p *parser) parseNumberLiteral() Expression {
	value, err := strconv.ParseFloat(p.curToken.Literal, 64)
	if err != nil {
		p.addParseError(p.curToken.Pos, fmt.Sprintf("invalid number %s", p.curToken.Literal))
		return nil
	}
	return &NumberLiteral{Value: value, position: p.curToken.Pos}
}

func (p *parser) parseStringLiteral() Expression {
	return &StringLiteral{Value: p.curToken.Literal, position: p.curToken.Pos}
}

func (p *parser) parseBooleanLiteral() Expression {
	return &BoolLiteral{Value: p.curToken.Type == tokenTrue, position: p.curToken.Pos}
}

func (p *parser) parseNilLiteral() Expression {
	return &NilLiteral{position: p.curToken.Pos}
}

func (p *parser) parseThis() Expression {
	if len(p.classes) == 0 {
		p.addParseError(p.curToken.Pos, "can't use 'this' outside of a class")
	}
	return &ThisExpr{position: p.curToken.Pos}
}

func (p *parser) parseSuper() Expression {
	pos := p.curToken.Pos
	switch {
	case len(p.classes) == 0:
		p.addParseError(pos, "can't use 'super' outside of a class")
	case !p.classes[len(p.classes)-1].hasSuperclass:
		p.addParseError(pos, "can't use 'super' in a class with no superclass")
	}
	if !p.expectPeek(tokenDot, "'.' after 'super'") {
		return nil
	}
	if !p.expectPeek(tokenIdent, "superclass method name") {
		return nil
	}
	return &SuperExpr{Method: p.curToken.Literal, position: pos}
}

func (p *parser) parseGroupedExpression() Expression {
	pos := p.curToken.Pos
	p.nextToken()
	expr := p.parseExpression(lowestPrec)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(tokenRParen, "')' after expression") {
		return nil
	}
	return &GroupingExpr{Expr: expr, position: pos}
}

func (p *parser) parsePrefixExpression() Expression {
	pos := p.curToken.Pos
	operator := p.curToken.Type
	p.nextToken()
	right := p.parseExpression(precPrefix)
	if right == nil {
		return nil
	}
	return &UnaryExpr{Operator: operator, Right: right, position: pos}
}

func (p *parser) parseInfixExpression(left Expression) Expression {
	pos := p.curToken.Pos
	operator := p.curToken.Type
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &BinaryExpr{Left: left, Operator: operator, Right: right, position: pos}
}

func (p *parser) parseLogicalExpression(left Expression) Expression {
	pos := p.curToken.Pos
	operator := p.curToken.Type
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	if right == nil {
		return nil
	}
	return &LogicalExpr{Left: left, Operator: operator, Right: right, position: pos}
}

// parseAssignExpression is right-associative: the value is parsed at the
// lowest precedence so `a = b = c` assigns c to both.
func (p *parser) parseAssignExpression(target Expression) Expression {
	pos := p.curToken.Pos
	if !isAssignable(target) {
		p.addParseError(pos, "invalid assignment target")
	}
	p.nextToken()
	value := p.parseExpression(lowestPrec)
	if value == nil {
		return nil
	}
	switch t := target.(type) {
	case *Identifier:
		return &AssignExpr{Name: t.Name, Value: value, position: t.Pos()}
	case *GetExpr:
		return &SetExpr{Object: t.Object, Name: t.Name, Value: value, position: t.Pos()}
	default:
		return value
	}
}

func (p *parser) parseCallExpression(callee Expression) Expression {
	pos := p.curToken.Pos
	args := []Expression{}
	if p.peekToken.Type == tokenRParen {
		p.nextToken()
		return &CallExpr{Callee: callee, Args: args, position: pos}
	}
	for {
		p.nextToken()
		if len(args) >= maxArgs {
			p.addParseError(p.curToken.Pos, fmt.Sprintf("can't have more than %d arguments", maxArgs))
		}
		arg := p.parseExpression(lowestPrec)
		if arg == nil {
			return nil
		}
		args = append(args, arg)
		if p.peekToken.Type != tokenComma {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(tokenRParen, "')' after arguments") {
		return nil
	}
	return &CallExpr{Callee: callee, Args: args, position: pos}
}

func (p *parser) parseGetExpression(object Expression) Expression {
	if !p.expectPeek(tokenIdent, "property name after '.'") {
		return nil
	}
	return &GetExpr{Object: object, Name: p.curToken.Literal, position: p.curToken.Pos}
}
