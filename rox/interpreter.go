package rox

import (
	"context"
	"errors"
	"io"
	"maps"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/tliron/commonlog"
)

const (
	defaultStepQuota      = 1_000_000
	defaultRecursionLimit = 512
)

// Config controls execution bounds and the host-facing side effects of a
// script.
type Config struct {
	StepQuota      int
	RecursionLimit int
	// Stdout receives `print` output. Nil means os.Stdout at the time the
	// script runs.
	Stdout io.Writer
	Clock  func() time.Time
	Logger commonlog.Logger
}

// Engine compiles and runs rox programs. It is safe for concurrent use;
// the scripts and sessions it hands out are not.
type Engine struct {
	config   Config
	builtins map[string]Value
	mu       sync.RWMutex
	log      commonlog.Logger
}

// NewEngine constructs an Engine with defaults applied and the standard
// builtins registered.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.StepQuota < 0 {
		return nil, errors.New("rox: step quota must not be negative")
	}
	if cfg.RecursionLimit < 0 {
		return nil, errors.New("rox: recursion limit must not be negative")
	}
	if cfg.StepQuota == 0 {
		cfg.StepQuota = defaultStepQuota
	}
	if cfg.RecursionLimit == 0 {
		cfg.RecursionLimit = defaultRecursionLimit
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = commonlog.GetLogger("rox.engine")
	}

	engine := &Engine{
		config:   cfg,
		builtins: make(map[string]Value),
		log:      cfg.Logger,
	}
	engine.RegisterBuiltin("clock", 0, builtinClock)
	engine.RegisterBuiltin("str", 1, builtinStr)
	engine.RegisterBuiltin("len", 1, builtinLen)
	engine.RegisterBuiltin("fields", 1, builtinFields)
	engine.RegisterBuiltin("classOf", 1, builtinClassOf)
	return engine, nil
}

// MustNewEngine constructs an Engine or panics if the config is invalid.
func MustNewEngine(cfg Config) *Engine {
	engine, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return engine
}

// RegisterBuiltin registers a native global with a fixed arity. Registering
// an existing name replaces it for scripts and sessions created afterwards.
func (e *Engine) RegisterBuiltin(name string, arity int, fn BuiltinFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.builtins[name] = NewBuiltin(name, arity, fn)
}

// Builtins returns a copy of the registered builtin map.
func (e *Engine) Builtins() map[string]Value {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]Value, len(e.builtins))
	maps.Copy(out, e.builtins)
	return out
}

// BuiltinNames returns the registered builtin names in sorted order.
func (e *Engine) BuiltinNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Sorted(maps.Keys(e.builtins))
}

// Compile parses source into a runnable Script. All syntax errors are
// reported together as a *CompileError.
func (e *Engine) Compile(source string) (*Script, error) {
	program, err := Parse(source)
	if err != nil {
		return nil, err
	}
	return &Script{engine: e, program: program, source: source}, nil
}

// Parse parses source without an engine. The returned program is usable
// even when err is non-nil; it holds every declaration that parsed.
func Parse(source string) (*Program, error) {
	p := newParser(source)
	program, errs := p.ParseProgram()
	if len(errs) > 0 {
		return program, &CompileError{Errors: errs}
	}
	return program, nil
}

func (e *Engine) rootEnv() *Env {
	env := newEnv(nil)
	e.mu.RLock()
	defer e.mu.RUnlock()
	for name, val := range e.builtins {
		env.Define(name, val)
	}
	return env
}

func (e *Engine) newExecution(ctx context.Context, source string, globals *Env, out io.Writer) *Execution {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = e.config.Stdout
	}
	if out == nil {
		out = os.Stdout
	}
	return &Execution{
		engine:       e,
		source:       source,
		ctx:          ctx,
		quota:        e.config.StepQuota,
		recursionCap: e.config.RecursionLimit,
		callStack:    make([]callFrame, 0, 8),
		globals:      globals,
		out:          out,
		log:          e.log,
	}
}
