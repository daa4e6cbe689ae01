package rox

func (exec *Execution) evalExpression(expr Expression, env *Env) (Value, error) {
	switch e := expr.(type) {
	case *NumberLiteral:
		return NewNumber(e.Value), nil
	case *StringLiteral:
		return NewString(e.Value), nil
	case *BoolLiteral:
		return NewBool(e.Value), nil
	case *NilLiteral:
		return NewNil(), nil
	case *GroupingExpr:
		return exec.evalExpression(e.Expr, env)
	case *Identifier:
		val, ok := env.Get(e.Name)
		if !ok {
			return NewNil(), exec.kindErrorAt(e.Pos(), ErrUndefinedVariable, "Undefined variable '%s'.", e.Name)
		}
		return val, nil
	case *AssignExpr:
		val, err := exec.evalExpression(e.Value, env)
		if err != nil {
			return NewNil(), err
		}
		if !env.Assign(e.Name, val) {
			return NewNil(), exec.kindErrorAt(e.Pos(), ErrUndefinedVariable, "Undefined variable '%s'.", e.Name)
		}
		return val, nil
	case *UnaryExpr:
		return exec.evalUnaryExpr(e, env)
	case *BinaryExpr:
		return exec.evalBinaryExpr(e, env)
	case *LogicalExpr:
		return exec.evalLogicalExpr(e, env)
	case *CallExpr:
		return exec.evalCallExpr(e, env)
	case *GetExpr:
		return exec.evalGetExpr(e, env)
	case *SetExpr:
		return exec.evalSetExpr(e, env)
	case *ThisExpr:
		val, ok := env.Get(receiverName)
		if !ok {
			return NewNil(), exec.errorAt(e.Pos(), "Can't use 'this' outside of a class.")
		}
		return val, nil
	case *SuperExpr:
		return exec.evalSuperExpr(e, env)
	default:
		return NewNil(), exec.errorAt(expr.Pos(), "unsupported expression")
	}
}

func (exec *Execution) evalUnaryExpr(e *UnaryExpr, env *Env) (Value, error) {
	right, err := exec.evalExpression(e.Right, env)
	if err != nil {
		return NewNil(), err
	}
	switch e.Operator {
	case tokenBang:
		return NewBool(!right.Truthy()), nil
	case tokenMinus:
		if right.Kind() != KindNumber {
			return NewNil(), exec.kindErrorAt(e.Pos(), errOperandType, "Operand must be a number.")
		}
		return NewNumber(-right.Number()), nil
	default:
		return NewNil(), exec.errorAt(e.Pos(), "unsupported unary operator %s", e.Operator)
	}
}

func (exec *Execution) evalBinaryExpr(e *BinaryExpr, env *Env) (Value, error) {
	left, err := exec.evalExpression(e.Left, env)
	if err != nil {
		return NewNil(), err
	}
	right, err := exec.evalExpression(e.Right, env)
	if err != nil {
		return NewNil(), err
	}

	switch e.Operator {
	case tokenEQ:
		return NewBool(left.Equal(right)), nil
	case tokenNotEQ:
		return NewBool(!left.Equal(right)), nil
	case tokenPlus:
		if left.Kind() == KindString && right.Kind() == KindString {
			return NewString(left.data.(string) + right.data.(string)), nil
		}
		if left.Kind() == KindNumber && right.Kind() == KindNumber {
			return NewNumber(left.Number() + right.Number()), nil
		}
		return NewNil(), exec.kindErrorAt(e.Pos(), errOperandType, "Operands must be two numbers or two strings.")
	}

	if left.Kind() != KindNumber || right.Kind() != KindNumber {
		return NewNil(), exec.kindErrorAt(e.Pos(), errOperandType, "Operands must be numbers.")
	}
	a, b := left.Number(), right.Number()
	switch e.Operator {
	case tokenMinus:
		return NewNumber(a - b), nil
	case tokenStar:
		return NewNumber(a * b), nil
	case tokenSlash:
		return NewNumber(a / b), nil
	case tokenGT:
		return NewBool(a > b), nil
	case tokenGTE:
		return NewBool(a >= b), nil
	case tokenLT:
		return NewBool(a < b), nil
	case tokenLTE:
		return NewBool(a <= b), nil
	default:
		return NewNil(), exec.errorAt(e.Pos(), "unsupported binary operator %s", e.Operator)
	}
}

// evalLogicalExpr short-circuits and yields the deciding operand itself,
// not a boolean.
func (exec *Execution) evalLogicalExpr(e *LogicalExpr, env *Env) (Value, error) {
	left, err := exec.evalExpression(e.Left, env)
	if err != nil {
		return NewNil(), err
	}
	if e.Operator == tokenOr {
		if left.Truthy() {
			return left, nil
		}
	} else if !left.Truthy() {
		return left, nil
	}
	return exec.evalExpression(e.Right, env)
}
