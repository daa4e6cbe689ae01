package rox

func isAssignable(expr Expression) bool {
	switch expr.(type) {
	case *Identifier, *GetExpr:
		return true
	default:
		return false
	}
}

const (
	lowestPrec = iota
	precAssign
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precPrefix
	precCall
)

var precedences = map[TokenType]int{
	tokenAssign: precAssign,
	tokenOr:     precOr,
	tokenAnd:    precAnd,
	tokenEQ:     precEquality,
	tokenNotEQ:  precEquality,
	tokenLT:     precComparison,
	tokenLTE:    precComparison,
	tokenGT:     precComparison,
	tokenGTE:    precComparison,
	tokenPlus:   precTerm,
	tokenMinus:  precTerm,
	tokenSlash:  precFactor,
	tokenStar:   precFactor,
	tokenLParen: precCall,
	tokenDot:    precCall,
}

func (p *parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return lowestPrec
}

func (p *parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return lowestPrec
}
