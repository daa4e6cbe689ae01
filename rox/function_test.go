package rox

import (
	"testing"
)

func TestBindLeavesOriginalUntouched(t *testing.T) {
	c := declareClass(t, `class Greeter { hello(name) { return name; } }`, nil)
	method := mustFind(t, c, "hello")
	a, b := newInstance(c), newInstance(c)

	boundA := method.Bind(a)
	boundB := method.Bind(b)

	if _, ok := method.Receiver(); ok {
		t.Fatalf("unbound method gained a receiver")
	}
	if _, ok := method.Closure.Get("this"); ok {
		t.Fatalf("unbound closure defines this")
	}
	if recv, _ := boundA.Receiver(); recv != a {
		t.Fatalf("boundA receiver mismatch")
	}
	if recv, _ := boundB.Receiver(); recv != b {
		t.Fatalf("boundB receiver mismatch")
	}
	if boundA.Decl != method.Decl || boundA.Arity() != 1 {
		t.Fatalf("bound method should share the declaration")
	}
	if this, _ := boundA.Closure.Get("this"); this.Instance() != a {
		t.Fatalf("bound closure should define this")
	}
	if boundA.String() != "<fn hello>" {
		t.Fatalf("display %q", boundA.String())
	}
}

func TestBindPreservesInitializerFlag(t *testing.T) {
	c := declareClass(t, `class Thing { init() {} other() {} }`, nil)
	inst := newInstance(c)
	if !mustFind(t, c, "init").Bind(inst).IsInitializer {
		t.Fatalf("bound init lost IsInitializer")
	}
	if mustFind(t, c, "other").Bind(inst).IsInitializer {
		t.Fatalf("only init is an initializer")
	}
}

func TestFunctionCallResults(t *testing.T) {
	c := declareClass(t, `class R {
  init(flag) { if (flag) return; this.done = true; }
  value() { return 7; }
  nothing() { var x = 1; }
}`, nil)
	inst := newInstance(c)
	exec := testExecution(t)

	got, err := mustFind(t, c, "value").Bind(inst).Call(exec, nil)
	if err != nil || !got.Equal(NewNumber(7)) {
		t.Fatalf("value() = %v, %v", got, err)
	}

	got, err = mustFind(t, c, "nothing").Bind(inst).Call(exec, nil)
	if err != nil || !got.IsNil() {
		t.Fatalf("nothing() = %v, %v", got, err)
	}

	got, err = mustFind(t, c, "init").Bind(inst).Call(exec, []Value{NewBool(true)})
	if err != nil || got.Instance() != inst {
		t.Fatalf("bare return in init should yield the receiver, got %v, %v", got, err)
	}
	if _, ok := inst.Field("done"); ok {
		t.Fatalf("init should have returned early")
	}

	got, err = mustFind(t, c, "init").Bind(inst).Call(exec, []Value{NewBool(false)})
	if err != nil || got.Instance() != inst {
		t.Fatalf("init should yield the receiver, got %v, %v", got, err)
	}
	if _, ok := inst.Field("done"); !ok {
		t.Fatalf("init should have set done")
	}
}

func TestCallableVariants(t *testing.T) {
	c := declareClass(t, `class V { init(a) {} m(a, b) {} }`, nil)
	cases := []struct {
		value Value
		arity int
	}{
		{NewClass(c), 1},
		{NewFunction(mustFind(t, c, "m")), 2},
		{NewBuiltin("noop", 3, func(*Execution, []Value) (Value, error) { return NewNil(), nil }), 3},
	}
	for _, tc := range cases {
		callable, ok := tc.value.Callable()
		if !ok {
			t.Fatalf("%v should be callable", tc.value)
		}
		if callable.Arity() != tc.arity {
			t.Fatalf("%v arity %d, want %d", tc.value, callable.Arity(), tc.arity)
		}
	}
	for _, v := range []Value{NewNil(), NewNumber(1), NewString("s"), NewBool(true), NewInstance(newInstance(c))} {
		if _, ok := v.Callable(); ok {
			t.Fatalf("%v should not be callable", v)
		}
	}
}
