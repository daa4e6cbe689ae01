package rox

import "fmt"

// Callable is implemented by every value that can be invoked: script
// functions (bound or not), classes acting as constructors, and builtins.
//
// Call may assume len(args) == Arity(); the evaluator checks the count
// before invoking and reports ArityMismatch itself.
type Callable interface {
	Arity() int
	Call(exec *Execution, args []Value) (Value, error)
}

type BuiltinFunc func(exec *Execution, args []Value) (Value, error)

// Builtin is a native function exposed to scripts.
type Builtin struct {
	Name  string
	arity int
	Fn    BuiltinFunc
}

func (b *Builtin) Arity() int { return b.arity }

func (b *Builtin) Call(exec *Execution, args []Value) (Value, error) {
	return b.Fn(exec, args)
}

func (b *Builtin) String() string {
	return fmt.Sprintf("<native fn %s>", b.Name)
}

// Callable resolves v to its invocable variant. The second result is false
// for values that cannot be called.
func (v Value) Callable() (Callable, bool) {
	switch v.kind {
	case KindFunction:
		return v.data.(*Function), true
	case KindClass:
		return v.data.(*Class), true
	case KindBuiltin:
		return v.data.(*Builtin), true
	default:
		return nil, false
	}
}

func callableName(v Value) string {
	switch v.kind {
	case KindFunction:
		return v.data.(*Function).Name()
	case KindClass:
		return v.data.(*Class).Name
	case KindBuiltin:
		return v.data.(*Builtin).Name
	default:
		return v.kind.String()
	}
}
