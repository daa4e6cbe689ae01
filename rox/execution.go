package rox

import (
	"context"
	"fmt"
	"io"

	"github.com/tliron/commonlog"
)

// Execution is the evaluation engine for one run of a script or one session
// input. It is not safe for concurrent use.
type Execution struct {
	engine       *Engine
	source       string
	ctx          context.Context
	quota        int
	recursionCap int
	steps        int
	callStack    []callFrame
	globals      *Env
	out          io.Writer
	bareReturn   bool
	log          commonlog.Logger
}

type callFrame struct {
	Function string
	Pos      Position
}

// Context returns the context the execution observes for cancellation.
func (exec *Execution) Context() context.Context { return exec.ctx }

// Stdout is where `print` writes.
func (exec *Execution) Stdout() io.Writer { return exec.out }

func (exec *Execution) Globals() *Env { return exec.globals }

// Call invokes callee with host-supplied arguments, applying the same
// arity check as a call written in script code.
func (exec *Execution) Call(callee Value, args ...Value) (Value, error) {
	return exec.callValue(callee, args, Position{})
}

func (exec *Execution) step(pos Position) error {
	exec.steps++
	if exec.quota > 0 && exec.steps > exec.quota {
		return exec.kindErrorAt(pos, ErrStepQuotaExceeded, "step quota exceeded (%d)", exec.quota)
	}
	if exec.ctx != nil {
		select {
		case <-exec.ctx.Done():
			return exec.ctx.Err()
		default:
		}
	}
	return nil
}

func (exec *Execution) takeBareReturn() bool {
	bare := exec.bareReturn
	exec.bareReturn = false
	return bare
}

func (exec *Execution) errorAt(pos Position, format string, args ...any) error {
	return exec.newRuntimeError(runtimeErrorTypeBase, fmt.Sprintf(format, args...), pos, nil)
}

func (exec *Execution) kindErrorAt(pos Position, kind error, format string, args ...any) error {
	return exec.wrapError(newKindError(kind, format, args...), pos)
}

func (exec *Execution) newRuntimeError(kind string, message string, pos Position, cause error) error {
	frames := make([]StackFrame, 0, len(exec.callStack)+1)
	// Each frame reports where execution was inside that function: the error
	// position for the innermost, then the call site in every caller.
	for i := len(exec.callStack) - 1; i >= 0; i-- {
		frames = append(frames, StackFrame{Function: exec.callStack[i].Function, Pos: pos})
		pos = exec.callStack[i].Pos
	}
	frames = append(frames, StackFrame{Function: "<script>", Pos: pos})

	codeFrame := ""
	if len(frames) > 0 {
		codeFrame = formatCodeFrame(exec.source, frames[0].Pos)
	}
	return &RuntimeError{Type: kind, Message: message, CodeFrame: codeFrame, Frames: frames, cause: cause}
}

func (exec *Execution) wrapError(err error, pos Position) error {
	if err == nil {
		return nil
	}
	if isHostControlSignal(err) {
		return err
	}
	if _, ok := err.(*RuntimeError); ok {
		return err
	}
	return exec.newRuntimeError(classifyRuntimeErrorType(err), err.Error(), pos, err)
}

// evalStatements runs stmts in env. The boolean result is the return
// signal: true when a return statement ended execution early, in which case
// the value is the returned one.
func (exec *Execution) evalStatements(stmts []Statement, env *Env) (Value, bool, error) {
	result := NewNil()
	for _, stmt := range stmts {
		if err := exec.step(stmt.Pos()); err != nil {
			return NewNil(), false, err
		}
		val, returned, err := exec.evalStatement(stmt, env)
		if err != nil {
			return NewNil(), false, err
		}
		if returned {
			return val, true, nil
		}
		result = val
	}
	return result, false, nil
}

func (exec *Execution) evalStatement(stmt Statement, env *Env) (Value, bool, error) {
	switch s := stmt.(type) {
	case *ExprStmt:
		val, err := exec.evalExpression(s.Expr, env)
		return val, false, err
	case *PrintStmt:
		val, err := exec.evalExpression(s.Expr, env)
		if err != nil {
			return NewNil(), false, err
		}
		if _, err := fmt.Fprintln(exec.out, val.String()); err != nil {
			return NewNil(), false, exec.wrapError(err, s.Pos())
		}
		return NewNil(), false, nil
	case *VarStmt:
		val := NewNil()
		if s.Init != nil {
			var err error
			val, err = exec.evalExpression(s.Init, env)
			if err != nil {
				return NewNil(), false, err
			}
		}
		env.Define(s.Name, val)
		return NewNil(), false, nil
	case *BlockStmt:
		return exec.evalStatements(s.Statements, env.Child())
	case *IfStmt:
		cond, err := exec.evalExpression(s.Condition, env)
		if err != nil {
			return NewNil(), false, err
		}
		if cond.Truthy() {
			return exec.evalStatement(s.Then, env)
		}
		if s.Else != nil {
			return exec.evalStatement(s.Else, env)
		}
		return NewNil(), false, nil
	case *WhileStmt:
		return exec.evalWhileStatement(s, env)
	case *FunctionStmt:
		env.Define(s.Name, NewFunction(DeclareFunction(s, env, false)))
		return NewNil(), false, nil
	case *ReturnStmt:
		if s.Value == nil {
			exec.bareReturn = true
			return NewNil(), true, nil
		}
		val, err := exec.evalExpression(s.Value, env)
		if err != nil {
			return NewNil(), false, err
		}
		exec.bareReturn = false
		return val, true, nil
	case *ClassStmt:
		return NewNil(), false, exec.evalClassStatement(s, env)
	default:
		return NewNil(), false, exec.errorAt(stmt.Pos(), "unsupported statement")
	}
}

func (exec *Execution) evalWhileStatement(s *WhileStmt, env *Env) (Value, bool, error) {
	for {
		cond, err := exec.evalExpression(s.Condition, env)
		if err != nil {
			return NewNil(), false, err
		}
		if !cond.Truthy() {
			return NewNil(), false, nil
		}
		if err := exec.step(s.Body.Pos()); err != nil {
			return NewNil(), false, err
		}
		val, returned, err := exec.evalStatement(s.Body, env)
		if err != nil {
			return NewNil(), false, err
		}
		if returned {
			return val, true, nil
		}
	}
}
