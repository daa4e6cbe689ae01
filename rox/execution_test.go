package rox

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestClassSemantics(t *testing.T) {
	cases := []struct {
		name   string
		source string
		want   string
	}{
		{
			name: "initializer sets fields",
			source: `class Point {
  init(x, y) { this.x = x; this.y = y; }
  sum() { return this.x + this.y; }
}
var p = Point(1, 2);
print p.sum();
print p;
print Point;`,
			want: "3\nPoint instance\nPoint\n",
		},
		{
			name: "super resolves from the declaring class",
			source: `class A { method() { print "A method"; } }
class B < A {
  method() { print "B method"; }
  test() { super.method(); }
}
class C < B {}
C().test();`,
			want: "A method\n",
		},
		{
			name: "overriding and inherited methods",
			source: `class Animal {
  speak() { return this.sound(); }
  sound() { return "..."; }
}
class Dog < Animal { sound() { return "woof"; } }
print Animal().speak();
print Dog().speak();`,
			want: "...\nwoof\n",
		},
		{
			name: "fields shadow methods",
			source: `class Box { size() { return "method"; } }
var b = Box();
print b.size();
b.size = "field";
print b.size;`,
			want: "method\nfield\n",
		},
		{
			name: "bound method keeps its receiver",
			source: `class Counter {
  init() { this.n = 0; }
  inc() { this.n = this.n + 1; return this.n; }
}
var c = Counter();
var f = c.inc;
f();
f();
print c.n;`,
			want: "2\n",
		},
		{
			name: "methods bound to different instances",
			source: `class Named {
  init(name) { this.name = name; }
  hello() { return "hi " + this.name; }
}
var a = Named("a").hello;
var b = Named("b").hello;
print a();
print b();`,
			want: "hi a\nhi b\n",
		},
		{
			name: "calling init directly returns the receiver",
			source: `class Foo { init() { this.v = 1; } }
var foo = Foo();
print foo.init();`,
			want: "Foo instance\n",
		},
		{
			name: "bare return in init yields the receiver",
			source: `class Early {
  init(flag) {
    this.a = 1;
    if (flag) return;
    this.b = 2;
  }
}
var e = Early(true);
print fields(e);
print e.init(false);
print fields(e);`,
			want: "a\nEarly instance\na, b\n",
		},
		{
			name: "construction ignores a returned value",
			source: `class Weird { init() { return 42; } }
var w = Weird();
print w;
print w.init();`,
			want: "Weird instance\n42\n",
		},
		{
			name: "inherited initializer sets the arity",
			source: `class Base { init(a, b) { this.sum = a + b; } }
class Derived < Base {}
print Derived(2, 3).sum;`,
			want: "5\n",
		},
		{
			name: "super init chains",
			source: `class Shape { init(name) { this.name = name; } }
class Square < Shape {
  init(side) { super.init("square"); this.side = side; }
  area() { return this.side * this.side; }
}
var s = Square(3);
print s.name;
print s.area();`,
			want: "square\n9\n",
		},
		{
			name: "this inside a nested function",
			source: `class Thing {
  getCallback() {
    fun localFunction() { print this; }
    return localFunction;
  }
}
var callback = Thing().getCallback();
callback();`,
			want: "Thing instance\n",
		},
		{
			name: "instances compare by identity",
			source: `class K {}
var k1 = K();
var k2 = K();
print k1 == k1;
print k1 == k2;
print classOf(k1) == K;
print classOf(1);`,
			want: "true\nfalse\ntrue\nnil\n",
		},
		{
			name: "class name visible inside its methods",
			source: `class Node {
  init(depth) { if (depth > 0) this.child = Node(depth - 1); }
}
print fields(Node(2).child);`,
			want: "child\n",
		},
		{
			name: "functions without return produce nil",
			source: `fun nothing() {}
print nothing();
class M { m() {} }
print M().m();`,
			want: "nil\nnil\n",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, runOutput(t, tc.source)); diff != "" {
				t.Fatalf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCoreLanguage(t *testing.T) {
	source := `fun makeCounter() {
  var i = 0;
  fun count() { i = i + 1; return i; }
  return count;
}
var counter = makeCounter();
counter();
print counter();

fun fib(n) {
  if (n < 2) return n;
  return fib(n - 1) + fib(n - 2);
}
print fib(10);

var s = "";
for (var i = 0; i < 3; i = i + 1) s = s + str(i);
print s;

var n = 0;
while (n < 5) { n = n + 2; }
print n;

print nil or "default";
print false and 1;
print 1 == 1.0;
print "a" == "a";
print nil == false;
print !nil;
print 7 / 2;
print -3;
print 0 and "zero is truthy";
print len("héllo");

var scope = "global";
{
  var scope = "block";
  print scope;
}
print scope;
if (false) print "no"; else print "yes";
`
	want := []string{
		"2", "55", "012", "6", "default", "false", "true", "true", "false", "true",
		"3.5", "-3", "zero is truthy", "5", "block", "global", "yes",
	}
	got := strings.Split(strings.TrimSuffix(runOutput(t, source), "\n"), "\n")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestRuntimeErrors(t *testing.T) {
	cases := []struct {
		name     string
		source   string
		kind     string
		message  string
		sentinel error
	}{
		{
			name:     "undefined property",
			source:   "class P {}\nvar p = P();\nprint p.missing;",
			kind:     "UndefinedProperty",
			message:  "Undefined property 'missing' on P instance.",
			sentinel: ErrUndefinedProperty,
		},
		{
			name:     "undefined super method",
			source:   "class A {}\nclass B < A { m() { return super.nope(); } }\nB().m();",
			kind:     "UndefinedProperty",
			message:  "Undefined property 'nope' on superclass A.",
			sentinel: ErrUndefinedProperty,
		},
		{
			name:     "function arity",
			source:   "fun f(a, b) {}\nf(1);",
			kind:     "ArityMismatch",
			message:  "Expected 2 arguments but got 1.",
			sentinel: ErrArityMismatch,
		},
		{
			name:     "initializer arity",
			source:   "class P { init(x) {} }\nP();",
			kind:     "ArityMismatch",
			message:  "Expected 1 arguments but got 0.",
			sentinel: ErrArityMismatch,
		},
		{
			name:     "class without initializer",
			source:   "class Q {}\nQ(1);",
			kind:     "ArityMismatch",
			message:  "Expected 0 arguments but got 1.",
			sentinel: ErrArityMismatch,
		},
		{
			name:     "bound method arity",
			source:   "class R { m(a) {} }\nvar m = R().m;\nm(1, 2);",
			kind:     "ArityMismatch",
			message:  "Expected 1 arguments but got 2.",
			sentinel: ErrArityMismatch,
		},
		{
			name:     "builtin arity",
			source:   "str();",
			kind:     "ArityMismatch",
			message:  "Expected 1 arguments but got 0.",
			sentinel: ErrArityMismatch,
		},
		{
			name:    "calling a string",
			source:  `"text"();`,
			kind:    "TypeError",
			message: "Can only call functions and classes.",
		},
		{
			name:    "calling an instance",
			source:  "class I {}\nI()();",
			kind:    "TypeError",
			message: "Can only call functions and classes.",
		},
		{
			name:    "non-class superclass",
			source:  "var NotClass = 1;\nclass C < NotClass {}",
			kind:    "TypeError",
			message: "Superclass must be a class.",
		},
		{
			name:    "property on a number",
			source:  "var x = 1;\nprint x.y;",
			kind:    "TypeError",
			message: "Only instances have properties.",
		},
		{
			name:    "field on a number",
			source:  "var x = 1;\nx.y = 2;",
			kind:    "TypeError",
			message: "Only instances have fields.",
		},
		{
			name:    "mixed addition",
			source:  `print 1 + "a";`,
			kind:    "TypeError",
			message: "Operands must be two numbers or two strings.",
		},
		{
			name:    "negating a string",
			source:  `print -"a";`,
			kind:    "TypeError",
			message: "Operand must be a number.",
		},
		{
			name:    "comparing a string",
			source:  `print 1 < "a";`,
			kind:    "TypeError",
			message: "Operands must be numbers.",
		},
		{
			name:     "undefined variable",
			source:   "print nope;",
			kind:     "UndefinedVariable",
			message:  "Undefined variable 'nope'.",
			sentinel: ErrUndefinedVariable,
		},
		{
			name:     "assigning an undeclared variable",
			source:   "nope = 1;",
			kind:     "UndefinedVariable",
			message:  "Undefined variable 'nope'.",
			sentinel: ErrUndefinedVariable,
		},
		{
			name:     "initializer failure propagates",
			source:   "class Bad { init() { this.x = missing; } }\nBad();",
			kind:     "UndefinedVariable",
			message:  "Undefined variable 'missing'.",
			sentinel: ErrUndefinedVariable,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			re := runError(t, tc.source)
			if re.Type != tc.kind {
				t.Fatalf("type %q, want %q (%v)", re.Type, tc.kind, re)
			}
			if re.Message != tc.message {
				t.Fatalf("message %q, want %q", re.Message, tc.message)
			}
			if tc.sentinel != nil && !errors.Is(re, tc.sentinel) {
				t.Fatalf("expected errors.Is(%v) to hold", tc.sentinel)
			}
		})
	}
}

func TestPropertyErrorDetails(t *testing.T) {
	re := runError(t, "class Point {}\nPoint().z;")
	var pe *PropertyError
	if !errors.As(re, &pe) {
		t.Fatalf("expected PropertyError in chain, got %v", re)
	}
	if diff := cmp.Diff(PropertyError{Class: "Point", Property: "z"}, *pe); diff != "" {
		t.Fatalf("property error mismatch (-want +got):\n%s", diff)
	}
}

func TestRuntimeErrorFrames(t *testing.T) {
	re := runError(t, `fun inner() {
  return nope;
}
fun outer() {
  return inner();
}
outer();`)

	want := []StackFrame{
		{Function: "inner", Pos: Position{Line: 2, Column: 10}},
		{Function: "outer", Pos: Position{Line: 5, Column: 15}},
		{Function: "<script>", Pos: Position{Line: 7, Column: 6}},
	}
	if diff := cmp.Diff(want, re.Frames); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}
	msg := re.Error()
	for _, part := range []string{"Undefined variable 'nope'.", "return nope;", "at inner (2:10)", "at outer (5:15)", "at <script> (7:6)"} {
		if !strings.Contains(msg, part) {
			t.Fatalf("error output missing %q:\n%s", part, msg)
		}
	}
}

func TestRuntimeErrorFramesAreTruncated(t *testing.T) {
	script := compileScript(t, `fun down(n) {
  if (n == 0) return nope;
  return down(n - 1);
}`)
	_, err := script.Call(context.Background(), "down", []Value{NewNumber(30)}, RunOptions{})
	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("expected RuntimeError, got %v", err)
	}
	if len(re.Frames) != 32 {
		t.Fatalf("expected 32 frames, got %d", len(re.Frames))
	}
	if !strings.Contains(re.Error(), "... 16 frames omitted ...") {
		t.Fatalf("expected truncated trace:\n%s", re.Error())
	}
}

func TestRecursionLimitExceeded(t *testing.T) {
	engine := MustNewEngine(Config{RecursionLimit: 3})
	script, err := engine.Compile(`fun recurse(n) {
  if (n <= 0) return "done";
  return recurse(n - 1);
}`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	if _, err := script.Call(context.Background(), "recurse", []Value{NewNumber(2)}, RunOptions{}); err != nil {
		t.Fatalf("within bound: unexpected error: %v", err)
	}

	_, err = script.Call(context.Background(), "recurse", []Value{NewNumber(5)}, RunOptions{})
	if !errors.Is(err, ErrRecursionLimit) {
		t.Fatalf("expected recursion limit error, got %v", err)
	}
	if !strings.Contains(err.Error(), "recursion depth exceeded (limit 3)") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStepQuotaExceeded(t *testing.T) {
	engine := MustNewEngine(Config{StepQuota: 50})
	script, err := engine.Compile("while (true) {}")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	_, err = script.Run(context.Background(), RunOptions{})
	if !errors.Is(err, ErrStepQuotaExceeded) {
		t.Fatalf("expected step quota error, got %v", err)
	}
	var re *RuntimeError
	if !errors.As(err, &re) || re.Type != "LimitError" {
		t.Fatalf("expected LimitError, got %v", err)
	}
}

func TestRunHonorsCancellation(t *testing.T) {
	script := compileScript(t, "while (true) {}")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := script.Run(ctx, RunOptions{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScriptRunResult(t *testing.T) {
	script := compileScript(t, "var x = 1;\nx + 2;")
	result, err := script.Run(context.Background(), RunOptions{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Kind() != KindNumber || result.Number() != 3 {
		t.Fatalf("expected 3, got %v", result)
	}
}

func TestScriptCallClass(t *testing.T) {
	script := compileScript(t, `class Pair { init(a, b) { this.a = a; this.b = b; } }`)
	result, err := script.Call(context.Background(), "Pair", []Value{NewNumber(1), NewString("two")}, RunOptions{})
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if result.Kind() != KindInstance {
		t.Fatalf("expected instance, got %v", result.Kind())
	}
	inst := result.Instance()
	if diff := cmp.Diff([]string{"a", "b"}, inst.Fields()); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if b, _ := inst.Field("b"); !b.Equal(NewString("two")) {
		t.Fatalf("field b = %v", b)
	}
}

func TestScriptCallUnknownGlobal(t *testing.T) {
	script := compileScript(t, "var x = 1;")
	_, err := script.Call(context.Background(), "missing", nil, RunOptions{})
	if !errors.Is(err, ErrUndefinedVariable) {
		t.Fatalf("expected undefined variable, got %v", err)
	}
}

func TestScriptRunsAreIndependent(t *testing.T) {
	script := compileScript(t, "var n = 0;\nfun bump() { n = n + 1; return n; }")
	for range 2 {
		result, err := script.Call(context.Background(), "bump", nil, RunOptions{})
		if err != nil {
			t.Fatalf("call: %v", err)
		}
		if result.Number() != 1 {
			t.Fatalf("expected a fresh global scope, got %v", result)
		}
	}
}

func TestHostGlobalsAndOutput(t *testing.T) {
	var configured bytes.Buffer
	engine := MustNewEngine(Config{Stdout: &configured})
	script, err := engine.Compile("print greeting;")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	globals := map[string]Value{"greeting": NewString("hi")}

	if _, err := script.Run(context.Background(), RunOptions{Globals: globals}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if configured.String() != "hi\n" {
		t.Fatalf("configured stdout got %q", configured.String())
	}

	var override bytes.Buffer
	if _, err := script.Run(context.Background(), RunOptions{Globals: globals, Stdout: &override}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if override.String() != "hi\n" || configured.String() != "hi\n" {
		t.Fatalf("override not honored: %q / %q", override.String(), configured.String())
	}
}

func TestExecutionCallFromBuiltin(t *testing.T) {
	engine := MustNewEngine(Config{})
	engine.RegisterBuiltin("twice", 1, func(exec *Execution, args []Value) (Value, error) {
		if _, err := exec.Call(args[0]); err != nil {
			return NewNil(), err
		}
		return exec.Call(args[0])
	})
	script, err := engine.Compile(`var n = 0;
fun bump() { n = n + 1; return n; }
print twice(bump);
twice(fun_needs_arg);
fun fun_needs_arg(x) {}`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var out bytes.Buffer
	_, err = script.Run(context.Background(), RunOptions{Stdout: &out})
	if out.String() != "2\n" {
		t.Fatalf("output %q", out.String())
	}
	if !errors.Is(err, ErrUndefinedVariable) {
		t.Fatalf("expected undefined variable before declaration, got %v", err)
	}
}
