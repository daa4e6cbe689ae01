package rox

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func compileScript(t *testing.T, source string) *Script {
	t.Helper()
	engine := MustNewEngine(Config{})
	script, err := engine.Compile(source)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return script
}

// runOutput runs source and returns everything it printed.
func runOutput(t *testing.T, source string) string {
	t.Helper()
	script := compileScript(t, source)
	var out bytes.Buffer
	if _, err := script.Run(context.Background(), RunOptions{Stdout: &out}); err != nil {
		t.Fatalf("run error: %v", err)
	}
	return out.String()
}

func runError(t *testing.T, source string) *RuntimeError {
	t.Helper()
	script := compileScript(t, source)
	var out bytes.Buffer
	_, err := script.Run(context.Background(), RunOptions{Stdout: &out})
	if err == nil {
		t.Fatalf("expected runtime error, output was %q", out.String())
	}
	var re *RuntimeError
	if !errors.As(err, &re) {
		t.Fatalf("expected RuntimeError, got %T: %v", err, err)
	}
	return re
}

func compileErrors(t *testing.T, source string) []string {
	t.Helper()
	_, err := MustNewEngine(Config{}).Compile(source)
	if err == nil {
		t.Fatalf("expected compile error for %q", source)
	}
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CompileError, got %T", err)
	}
	messages := make([]string, len(ce.Errors))
	for i, se := range ce.Errors {
		messages[i] = se.Message
	}
	return messages
}
