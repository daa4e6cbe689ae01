package main

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/roxlang/roxscript/rox"
)

func analyzeSource(t *testing.T, source string) []lintWarning {
	t.Helper()
	program, err := rox.Parse(source)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return analyzeProgram(program)
}

func TestAnalyzeProgramWarnings(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name: "clean program",
			source: `class A {
  init(x) { this.x = x; }
  get() { return this.x; }
}`,
			want: nil,
		},
		{
			name: "unreachable after return",
			source: `fun f() {
  return 1;
  print 2;
}`,
			want: []string{"f: unreachable statement"},
		},
		{
			name: "unreachable after if with both branches returning",
			source: `fun f(x) {
  if (x) { return 1; } else { return 2; }
  print 3;
}`,
			want: []string{"f: unreachable statement"},
		},
		{
			name: "if without else falls through",
			source: `fun f(x) {
  if (x) return 1;
  return 2;
}`,
			want: nil,
		},
		{
			name: "initializer returning a value",
			source: `class A {
  init() { return 1; }
}`,
			want: []string{"A.init: initializer returns a value; constructing the class ignores it"},
		},
		{
			name: "bare return in initializer",
			source: `class A {
  init() { return; }
}`,
			want: nil,
		},
		{
			name: "field shadows inherited method",
			source: `class A {
  name() { return "a"; }
}
class B < A {
  init() { this.name = "b"; }
}`,
			want: []string{"B.init: field name shadows method A.name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, warning := range analyzeSource(t, tt.source) {
				got = append(got, warning.Function+": "+warning.Message)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("warnings mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassIndexAncestors(t *testing.T) {
	program, err := rox.Parse(`class A { a() {} }
class B < A { b() {} }
class C < B { a() {} }`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	index := indexClasses(program)

	var chain []string
	for _, class := range index.ancestors(index["C"]) {
		chain = append(chain, class.Name)
	}
	if diff := cmp.Diff([]string{"B", "A"}, chain); diff != "" {
		t.Fatalf("ancestors mismatch (-want +got):\n%s", diff)
	}

	owners := index.methodOwners(index["C"])
	want := map[string]string{"a": "C", "b": "B"}
	if diff := cmp.Diff(want, owners); diff != "" {
		t.Fatalf("owners mismatch (-want +got):\n%s", diff)
	}
}

func TestClassIndexUnknownSuperclass(t *testing.T) {
	program, err := rox.Parse(`class B < Missing {}`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	index := indexClasses(program)
	if chain := index.ancestors(index["B"]); len(chain) != 0 {
		t.Fatalf("expected empty chain, got %d entries", len(chain))
	}
}

func TestAnalyzeCommandNoIssues(t *testing.T) {
	scriptPath := writeScript(t, `fun run() {
  var value = 1;
  return value;
}`)

	out, err := captureStdout(t, func() error {
		return analyzeCommand([]string{scriptPath})
	})
	if err != nil {
		t.Fatalf("analyzeCommand failed: %v", err)
	}
	if !strings.Contains(out, "No issues found") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestAnalyzeCommandReportsIssues(t *testing.T) {
	scriptPath := writeScript(t, `fun run() {
  return 1;
  print 2;
}`)

	out, err := captureStdout(t, func() error {
		return analyzeCommand([]string{scriptPath})
	})
	if err == nil {
		t.Fatalf("expected analysis error")
	}
	if !strings.Contains(err.Error(), "analysis found 1 issue(s)") {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, ":3:3: unreachable statement (run)") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestAnalyzeCommandRequiresScriptPath(t *testing.T) {
	err := analyzeCommand(nil)
	if err == nil || !strings.Contains(err.Error(), "script path required") {
		t.Fatalf("unexpected error: %v", err)
	}
}
