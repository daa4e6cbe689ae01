package rox

func (exec *Execution) evalCallExpr(e *CallExpr, env *Env) (Value, error) {
	callee, err := exec.evalExpression(e.Callee, env)
	if err != nil {
		return NewNil(), err
	}
	args := make([]Value, 0, len(e.Args))
	for _, arg := range e.Args {
		val, err := exec.evalExpression(arg, env)
		if err != nil {
			return NewNil(), err
		}
		args = append(args, val)
	}
	return exec.callValue(callee, args, e.Pos())
}

// callValue is the single dispatch point for every call: it checks that
// callee is callable and that the argument count matches before the callee
// runs.
func (exec *Execution) callValue(callee Value, args []Value, pos Position) (Value, error) {
	callable, ok := callee.Callable()
	if !ok {
		return NewNil(), exec.kindErrorAt(pos, errNotCallable, "Can only call functions and classes.")
	}
	if arity := callable.Arity(); len(args) != arity {
		return NewNil(), exec.kindErrorAt(pos, ErrArityMismatch, "Expected %d arguments but got %d.", arity, len(args))
	}

	if err := exec.pushFrame(callableName(callee), pos); err != nil {
		return NewNil(), err
	}
	result, err := callable.Call(exec, args)
	exec.popFrame()
	if err != nil {
		return NewNil(), exec.wrapError(err, pos)
	}
	return result, nil
}

func (exec *Execution) pushFrame(name string, pos Position) error {
	if exec.recursionCap > 0 && len(exec.callStack) >= exec.recursionCap {
		return exec.kindErrorAt(pos, ErrRecursionLimit, "recursion depth exceeded (limit %d)", exec.recursionCap)
	}
	exec.callStack = append(exec.callStack, callFrame{Function: name, Pos: pos})
	return nil
}

func (exec *Execution) popFrame() {
	exec.callStack = exec.callStack[:len(exec.callStack)-1]
}
