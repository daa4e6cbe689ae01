package rox

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUndefinedProperty: a property is neither a field of the instance
	// nor a method anywhere on its class chain.
	ErrUndefinedProperty = errors.New("undefined property")
	// ErrArityMismatch: a callable received the wrong number of arguments.
	ErrArityMismatch       = errors.New("arity mismatch")
	ErrUndefinedVariable   = errors.New("undefined variable")
	ErrStepQuotaExceeded   = errors.New("step quota exceeded")
	ErrRecursionLimit      = errors.New("recursion limit exceeded")
	errNotCallable         = errors.New("not callable")
	errOperandType         = errors.New("operand type")
	errPropertyOnNonObject = errors.New("property access on non-instance")
)

const (
	runtimeErrorTypeBase              = "RuntimeError"
	runtimeErrorTypeUndefinedProperty = "UndefinedProperty"
	runtimeErrorTypeArityMismatch     = "ArityMismatch"
	runtimeErrorTypeUndefinedVariable = "UndefinedVariable"
	runtimeErrorTypeTypeError         = "TypeError"
	runtimeErrorTypeLimit             = "LimitError"
	runtimeErrorFrameHead             = 8
	runtimeErrorFrameTail             = 8
)

type StackFrame struct {
	Function string
	Pos      Position
}

// RuntimeError is the error surfaced to hosts for any failure during
// execution. Type names the error kind (UndefinedProperty, ArityMismatch,
// ...); errors.Is matches the kind's sentinel.
type RuntimeError struct {
	Type      string
	Message   string
	CodeFrame string
	Frames    []StackFrame
	cause     error
}

func (re *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(re.Message)
	if re.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(re.CodeFrame)
	}
	renderFrame := func(frame StackFrame) {
		if frame.Pos.Line > 0 && frame.Pos.Column > 0 {
			fmt.Fprintf(&b, "\n  at %s (%d:%d)", frame.Function, frame.Pos.Line, frame.Pos.Column)
		} else if frame.Pos.Line > 0 {
			fmt.Fprintf(&b, "\n  at %s (line %d)", frame.Function, frame.Pos.Line)
		} else {
			fmt.Fprintf(&b, "\n  at %s", frame.Function)
		}
	}

	if len(re.Frames) <= runtimeErrorFrameHead+runtimeErrorFrameTail {
		for _, frame := range re.Frames {
			renderFrame(frame)
		}
		return b.String()
	}

	for _, frame := range re.Frames[:runtimeErrorFrameHead] {
		renderFrame(frame)
	}
	omitted := len(re.Frames) - (runtimeErrorFrameHead + runtimeErrorFrameTail)
	fmt.Fprintf(&b, "\n  ... %d frames omitted ...", omitted)
	for _, frame := range re.Frames[len(re.Frames)-runtimeErrorFrameTail:] {
		renderFrame(frame)
	}

	return b.String()
}

func (re *RuntimeError) Unwrap() error {
	return re.cause
}

// PropertyError reports a failed property lookup on an instance or, for
// `super.name`, on a superclass.
type PropertyError struct {
	Class      string
	Property   string
	Superclass bool
}

func (e *PropertyError) Error() string {
	if e.Superclass {
		return fmt.Sprintf("Undefined property '%s' on superclass %s.", e.Property, e.Class)
	}
	return fmt.Sprintf("Undefined property '%s' on %s instance.", e.Property, e.Class)
}

func (e *PropertyError) Unwrap() error { return ErrUndefinedProperty }

func classifyRuntimeErrorType(err error) string {
	switch {
	case errors.Is(err, ErrUndefinedProperty):
		return runtimeErrorTypeUndefinedProperty
	case errors.Is(err, ErrArityMismatch):
		return runtimeErrorTypeArityMismatch
	case errors.Is(err, ErrUndefinedVariable):
		return runtimeErrorTypeUndefinedVariable
	case errors.Is(err, errOperandType), errors.Is(err, errNotCallable), errors.Is(err, errPropertyOnNonObject):
		return runtimeErrorTypeTypeError
	case errors.Is(err, ErrStepQuotaExceeded), errors.Is(err, ErrRecursionLimit):
		return runtimeErrorTypeLimit
	default:
		return runtimeErrorTypeBase
	}
}

func isHostControlSignal(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// kindError attaches a sentinel to a script-facing message.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

func newKindError(kind error, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf(format, args...)}
}
