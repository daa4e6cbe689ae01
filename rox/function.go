package rox

import "fmt"

const receiverName = "this"

// Function is a script-defined function or method together with the
// environment it was declared in. A bound method is a Function whose closure
// has an extra scope defining `this`.
type Function struct {
	Decl          *FunctionStmt
	Closure       *Env
	IsInitializer bool
	receiver      *Instance
}

func DeclareFunction(decl *FunctionStmt, closure *Env, isInitializer bool) *Function {
	return &Function{Decl: decl, Closure: closure, IsInitializer: isInitializer}
}

func (fn *Function) Name() string { return fn.Decl.Name }

func (fn *Function) Arity() int { return len(fn.Decl.Params) }

// Bind returns a copy of fn whose closure defines `this` as instance. fn
// itself is left untouched, so one method can be bound to many instances.
func (fn *Function) Bind(instance *Instance) *Function {
	env := fn.Closure.Child()
	env.Define(receiverName, NewInstance(instance))
	return &Function{
		Decl:          fn.Decl,
		Closure:       env,
		IsInitializer: fn.IsInitializer,
		receiver:      instance,
	}
}

// Receiver returns the instance fn is bound to.
func (fn *Function) Receiver() (*Instance, bool) {
	return fn.receiver, fn.receiver != nil
}

// Call runs the body in a fresh scope whose parent is the closure.
// Initializers always produce their receiver unless they return a value
// explicitly.
func (fn *Function) Call(exec *Execution, args []Value) (Value, error) {
	env := fn.Closure.Child()
	for i, param := range fn.Decl.Params {
		env.Define(param.Name, args[i])
	}

	result, returned, err := exec.evalStatements(fn.Decl.Body, env)
	if err != nil {
		return NewNil(), err
	}
	if returned {
		bare := exec.takeBareReturn()
		if fn.IsInitializer && bare {
			return fn.this(), nil
		}
		return result, nil
	}
	if fn.IsInitializer {
		return fn.this(), nil
	}
	return NewNil(), nil
}

func (fn *Function) this() Value {
	if fn.receiver != nil {
		return NewInstance(fn.receiver)
	}
	val, _ := fn.Closure.Get(receiverName)
	return val
}

func (fn *Function) String() string {
	return fmt.Sprintf("<fn %s>", fn.Decl.Name)
}
