package rox

import (
	"context"
	"io"
)

// Session evaluates a sequence of inputs against one persistent global
// scope. It backs the REPL and hosts that feed a program piecemeal.
type Session struct {
	engine  *Engine
	opts    RunOptions
	root    *Env
	globals *Env
}

// NewSession starts a session with the engine's builtins plus opts.Globals
// in scope.
func (e *Engine) NewSession(opts RunOptions) *Session {
	s := &Session{engine: e, opts: opts}
	s.Reset()
	return s
}

// Eval compiles and runs source in the session scope. The result is the
// value of source's final statement when that is an expression statement,
// and nil otherwise. Declarations made before a runtime error stay defined.
func (s *Session) Eval(ctx context.Context, source string) (Value, error) {
	program, err := Parse(source)
	if err != nil {
		return NewNil(), err
	}

	exec := s.engine.newExecution(ctx, source, s.globals, s.opts.Stdout)
	result, _, err := exec.evalStatements(program.Statements, s.globals)
	if err != nil {
		err = exec.wrapError(err, program.Pos())
		s.engine.logFailure("<session>", err)
		return NewNil(), err
	}
	if n := len(program.Statements); n == 0 {
		return NewNil(), nil
	} else if _, ok := program.Statements[n-1].(*ExprStmt); !ok {
		return NewNil(), nil
	}
	return result, nil
}

// Globals is the session's global scope. Its parent holds the builtins.
func (s *Session) Globals() *Env { return s.globals }

func (s *Session) Lookup(name string) (Value, bool) { return s.globals.Get(name) }

// Names lists the names defined at the session's top level, excluding
// builtins and host globals.
func (s *Session) Names() []string { return s.globals.Names() }

// Reset drops every top-level definition.
func (s *Session) Reset() {
	s.root = s.engine.rootEnv()
	for name, val := range s.opts.Globals {
		s.root.Define(name, val)
	}
	s.globals = s.root.Child()
}

// SetOutput redirects `print` for subsequent inputs.
func (s *Session) SetOutput(w io.Writer) { s.opts.Stdout = w }
