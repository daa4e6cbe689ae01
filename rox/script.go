package rox

import (
	"context"
	"io"
)

// Script is a compiled program. Each Run starts from a fresh global scope,
// so a Script may be run any number of times, though not concurrently with
// itself sharing host-supplied instances.
type Script struct {
	engine  *Engine
	program *Program
	source  string
}

// RunOptions supplies per-run globals and output.
type RunOptions struct {
	Globals map[string]Value
	Stdout  io.Writer
}

func (s *Script) Program() *Program { return s.program }

func (s *Script) Source() string { return s.source }

// Run executes the top level and returns the value of the last statement
// that produced one.
func (s *Script) Run(ctx context.Context, opts RunOptions) (Value, error) {
	_, result, err := s.run(ctx, opts)
	return result, err
}

// Call runs the top level, then invokes the global callable named name
// with args. Classes may be called too, yielding a new instance.
func (s *Script) Call(ctx context.Context, name string, args []Value, opts RunOptions) (Value, error) {
	exec, _, err := s.run(ctx, opts)
	if err != nil {
		return NewNil(), err
	}
	callee, ok := exec.globals.Get(name)
	if !ok {
		return NewNil(), exec.kindErrorAt(Position{}, ErrUndefinedVariable, "Undefined variable '%s'.", name)
	}
	result, err := exec.callValue(callee, args, Position{})
	if err != nil {
		s.engine.logFailure(name, err)
		return NewNil(), err
	}
	return result, nil
}

func (s *Script) run(ctx context.Context, opts RunOptions) (*Execution, Value, error) {
	root := s.engine.rootEnv()
	for name, val := range opts.Globals {
		root.Define(name, val)
	}
	globals := root.Child()

	exec := s.engine.newExecution(ctx, s.source, globals, opts.Stdout)
	result, _, err := exec.evalStatements(s.program.Statements, globals)
	if err != nil {
		err = exec.wrapError(err, s.program.Pos())
		s.engine.logFailure("<script>", err)
		return exec, NewNil(), err
	}
	return exec, result, nil
}

func (e *Engine) logFailure(entry string, err error) {
	if re, ok := err.(*RuntimeError); ok {
		e.log.Debugf("%s failed: %s: %s", entry, re.Type, re.Message)
		return
	}
	e.log.Debugf("%s stopped: %s", entry, err)
}
