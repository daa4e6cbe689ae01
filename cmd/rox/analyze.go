package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/roxlang/roxscript/rox"
)

type lintWarning struct {
	Function string
	Pos      rox.Position
	Message  string
}

func analyzeCommand(args []string) error {
	flags := flag.NewFlagSet("analyze", flag.ContinueOnError)
	flags.SetOutput(new(flagErrorSink))
	if err := flags.Parse(args); err != nil {
		return usagef("rox analyze: %v", err)
	}

	remaining := flags.Args()
	if len(remaining) == 0 {
		return usagef("rox analyze: script path required")
	}

	scriptPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve script path: %w", err)
	}
	input, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	engine := rox.MustNewEngine(rox.Config{})
	script, err := engine.Compile(string(input))
	if err != nil {
		return fmt.Errorf("analysis compile failed: %w", err)
	}

	warnings := analyzeProgram(script.Program())
	if len(warnings) == 0 {
		fmt.Println("No issues found")
		return nil
	}

	for _, warning := range warnings {
		line := max(warning.Pos.Line, 1)
		column := max(warning.Pos.Column, 1)
		fmt.Printf("%s:%d:%d: %s (%s)\n", scriptPath, line, column, warning.Message, warning.Function)
	}

	return fmt.Errorf("analysis found %d issue(s)", len(warnings))
}

// classIndex resolves top-level class declarations by name so superclass
// chains can be followed without running the program.
type classIndex map[string]*rox.ClassStmt

func indexClasses(program *rox.Program) classIndex {
	index := make(classIndex)
	for _, stmt := range program.Statements {
		if class, ok := stmt.(*rox.ClassStmt); ok {
			index[class.Name] = class
		}
	}
	return index
}

// ancestors returns the declared superclass chain of class, nearest first.
// It stops at names declared elsewhere and at cycles.
func (idx classIndex) ancestors(class *rox.ClassStmt) []*rox.ClassStmt {
	var chain []*rox.ClassStmt
	seen := map[string]bool{class.Name: true}
	for current := class; current.Superclass != nil; {
		next, ok := idx[current.Superclass.Name]
		if !ok || seen[next.Name] {
			break
		}
		seen[next.Name] = true
		chain = append(chain, next)
		current = next
	}
	return chain
}

// methodOwners maps every method visible on class to the nearest class
// declaring it.
func (idx classIndex) methodOwners(class *rox.ClassStmt) map[string]string {
	owners := make(map[string]string)
	for _, c := range append([]*rox.ClassStmt{class}, idx.ancestors(class)...) {
		for _, method := range c.Methods {
			if _, ok := owners[method.Name]; !ok {
				owners[method.Name] = c.Name
			}
		}
	}
	return owners
}

type analyzer struct {
	classes  classIndex
	warnings []lintWarning
}

func analyzeProgram(program *rox.Program) []lintWarning {
	a := &analyzer{classes: indexClasses(program), warnings: make([]lintWarning, 0)}
	a.lintStatements("<script>", program.Statements)

	sort.SliceStable(a.warnings, func(i, j int) bool {
		wi, wj := a.warnings[i], a.warnings[j]
		if wi.Pos.Line != wj.Pos.Line {
			return wi.Pos.Line < wj.Pos.Line
		}
		if wi.Pos.Column != wj.Pos.Column {
			return wi.Pos.Column < wj.Pos.Column
		}
		return wi.Function < wj.Function
	})
	return a.warnings
}

func (a *analyzer) warn(function string, pos rox.Position, format string, args ...any) {
	a.warnings = append(a.warnings, lintWarning{Function: function, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (a *analyzer) lintStatements(function string, statements []rox.Statement) bool {
	terminated := false
	for _, stmt := range statements {
		if terminated {
			a.warn(function, stmt.Pos(), "unreachable statement")
			continue
		}
		if a.statementTerminates(function, stmt) {
			terminated = true
		}
	}
	return terminated
}

func (a *analyzer) statementTerminates(function string, stmt rox.Statement) bool {
	switch typed := stmt.(type) {
	case *rox.ReturnStmt:
		return true
	case *rox.BlockStmt:
		return a.lintStatements(function, typed.Statements)
	case *rox.IfStmt:
		thenTerminated := a.statementTerminates(function, typed.Then)
		if typed.Else == nil {
			return false
		}
		elseTerminated := a.statementTerminates(function, typed.Else)
		return thenTerminated && elseTerminated
	case *rox.WhileStmt:
		a.statementTerminates(function, typed.Body)
		return false
	case *rox.FunctionStmt:
		a.lintStatements(typed.Name, typed.Body)
		return false
	case *rox.ClassStmt:
		a.lintClass(typed)
		return false
	default:
		return false
	}
}

func (a *analyzer) lintClass(class *rox.ClassStmt) {
	owners := a.classes.methodOwners(class)
	for _, method := range class.Methods {
		name := class.Name + "." + method.Name
		a.lintStatements(name, method.Body)
		if method.Name == "init" {
			a.lintInitializerReturns(name, method.Body)
		}
		a.lintFieldShadowing(name, method.Body, owners)
	}
}

// lintInitializerReturns flags `return value;` in init: constructing the
// class discards the value.
func (a *analyzer) lintInitializerReturns(function string, body []rox.Statement) {
	walkStatements(body, false, func(node rox.Node) {
		if ret, ok := node.(*rox.ReturnStmt); ok && ret.Value != nil {
			a.warn(function, ret.Pos(), "initializer returns a value; constructing the class ignores it")
		}
	})
}

// lintFieldShadowing flags `this.name = ...` where name is also a method
// of the class: once set, the field hides the method on that instance.
func (a *analyzer) lintFieldShadowing(function string, body []rox.Statement, owners map[string]string) {
	walkStatements(body, true, func(node rox.Node) {
		set, ok := node.(*rox.SetExpr)
		if !ok {
			return
		}
		if _, onThis := set.Object.(*rox.ThisExpr); !onThis {
			return
		}
		if owner, ok := owners[set.Name]; ok {
			a.warn(function, set.Pos(), "field %s shadows method %s.%s", set.Name, owner, set.Name)
		}
	})
}

// walkStatements visits every statement and expression under stmts. Nested
// function bodies are entered only when enterFunctions is set; class bodies
// never are.
func walkStatements(stmts []rox.Statement, enterFunctions bool, visit func(rox.Node)) {
	for _, stmt := range stmts {
		walkStatement(stmt, enterFunctions, visit)
	}
}

func walkStatement(stmt rox.Statement, enterFunctions bool, visit func(rox.Node)) {
	if stmt == nil {
		return
	}
	visit(stmt)
	switch s := stmt.(type) {
	case *rox.ExprStmt:
		walkExpression(s.Expr, visit)
	case *rox.PrintStmt:
		walkExpression(s.Expr, visit)
	case *rox.VarStmt:
		walkExpression(s.Init, visit)
	case *rox.ReturnStmt:
		walkExpression(s.Value, visit)
	case *rox.BlockStmt:
		walkStatements(s.Statements, enterFunctions, visit)
	case *rox.IfStmt:
		walkExpression(s.Condition, visit)
		walkStatement(s.Then, enterFunctions, visit)
		walkStatement(s.Else, enterFunctions, visit)
	case *rox.WhileStmt:
		walkExpression(s.Condition, visit)
		walkStatement(s.Body, enterFunctions, visit)
	case *rox.FunctionStmt:
		if enterFunctions {
			walkStatements(s.Body, enterFunctions, visit)
		}
	}
}

func walkExpression(expr rox.Expression, visit func(rox.Node)) {
	if expr == nil {
		return
	}
	visit(expr)
	switch e := expr.(type) {
	case *rox.GroupingExpr:
		walkExpression(e.Expr, visit)
	case *rox.UnaryExpr:
		walkExpression(e.Right, visit)
	case *rox.BinaryExpr:
		walkExpression(e.Left, visit)
		walkExpression(e.Right, visit)
	case *rox.LogicalExpr:
		walkExpression(e.Left, visit)
		walkExpression(e.Right, visit)
	case *rox.AssignExpr:
		walkExpression(e.Value, visit)
	case *rox.CallExpr:
		walkExpression(e.Callee, visit)
		for _, arg := range e.Args {
			walkExpression(arg, visit)
		}
	case *rox.GetExpr:
		walkExpression(e.Object, visit)
	case *rox.SetExpr:
		walkExpression(e.Object, visit)
		walkExpression(e.Value, visit)
	}
}
