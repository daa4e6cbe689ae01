package rox

import (
	"maps"
	"slices"
)

// Env is one lexical scope. Lookups walk outward through parent scopes.
type Env struct {
	parent *Env
	values map[string]Value
}

func newEnv(parent *Env) *Env {
	return &Env{parent: parent, values: make(map[string]Value)}
}

// NewEnv returns an empty scope nested in parent, which may be nil.
func NewEnv(parent *Env) *Env {
	return newEnv(parent)
}

func (e *Env) Get(name string) (Value, bool) {
	if val, ok := e.values[name]; ok {
		return val, true
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return Value{}, false
}

// Define binds name in this scope, replacing any previous binding here.
func (e *Env) Define(name string, val Value) {
	e.values[name] = val
}

// Assign updates the nearest existing binding of name. It reports false
// when no scope defines the name.
func (e *Env) Assign(name string, val Value) bool {
	if _, ok := e.values[name]; ok {
		e.values[name] = val
		return true
	}
	if e.parent != nil {
		return e.parent.Assign(name, val)
	}
	return false
}

func (e *Env) Child() *Env {
	return newEnv(e)
}

// Names lists the names bound directly in this scope.
func (e *Env) Names() []string {
	return slices.Sorted(maps.Keys(e.values))
}
