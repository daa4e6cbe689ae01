package rox

import (
	"maps"
	"slices"
)

const initializerName = "init"

// Class is a named type with at most one superclass. Its method table holds
// only the methods declared on the class itself; inherited methods are found
// by walking the superclass chain. A class never changes once declared.
type Class struct {
	Name       string
	Superclass *Class
	methods    map[string]*Function
}

// DeclareClass builds a class from already constructed methods. The chain
// through superclass must be acyclic, which holds for any superclass that was
// declared before this class.
func DeclareClass(name string, superclass *Class, methods map[string]*Function) *Class {
	own := make(map[string]*Function, len(methods))
	maps.Copy(own, methods)
	return &Class{Name: name, Superclass: superclass, methods: own}
}

// FindMethod returns the nearest definition of name, starting with the
// class's own methods and continuing up the superclass chain.
func (c *Class) FindMethod(name string) (*Function, bool) {
	if fn, ok := c.methods[name]; ok {
		return fn, true
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil, false
}

// Arity is the arity of the initializer, wherever it lives in the chain.
func (c *Class) Arity() int {
	if init, ok := c.FindMethod(initializerName); ok {
		return init.Arity()
	}
	return 0
}

// Call constructs a new instance and runs the initializer on it, if any.
// The instance is the result no matter what the initializer returns.
func (c *Class) Call(exec *Execution, args []Value) (Value, error) {
	instance := newInstance(c)
	if init, ok := c.FindMethod(initializerName); ok {
		if _, err := init.Bind(instance).Call(exec, args); err != nil {
			return NewNil(), err
		}
	}
	return NewInstance(instance), nil
}

func (c *Class) String() string { return c.Name }

// Methods returns the names of the methods declared on c itself.
func (c *Class) Methods() []string {
	return slices.Sorted(maps.Keys(c.methods))
}

// Ancestors returns the superclass chain, nearest first.
func (c *Class) Ancestors() []*Class {
	var chain []*Class
	for super := c.Superclass; super != nil; super = super.Superclass {
		chain = append(chain, super)
	}
	return chain
}

// Instance is a live object. It owns its field table; its class is shared
// with every other instance of the same class and never changes.
type Instance struct {
	class  *Class
	fields map[string]Value
}

func newInstance(class *Class) *Instance {
	return &Instance{class: class, fields: make(map[string]Value)}
}

func (i *Instance) Class() *Class { return i.class }

// Get resolves a property. Fields shadow methods; a method found on the
// class chain comes back bound to this instance.
func (i *Instance) Get(name string) (Value, error) {
	if val, ok := i.fields[name]; ok {
		return val, nil
	}
	if method, ok := i.class.FindMethod(name); ok {
		return NewFunction(method.Bind(i)), nil
	}
	return NewNil(), &PropertyError{Class: i.class.Name, Property: name}
}

// Set creates or overwrites a field. Any name is accepted.
func (i *Instance) Set(name string, value Value) {
	i.fields[name] = value
}

// Field reads a field without falling back to methods.
func (i *Instance) Field(name string) (Value, bool) {
	val, ok := i.fields[name]
	return val, ok
}

// Fields returns the field names in sorted order.
func (i *Instance) Fields() []string {
	return slices.Sorted(maps.Keys(i.fields))
}

func (i *Instance) String() string {
	return i.class.Name + " instance"
}
