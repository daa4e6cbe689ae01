// Package rox implements the rox scripting language: a dynamically typed,
// class-based language with Lox syntax, evaluated by walking the AST.
//
// The runtime object model is small:
//   - Every invocable value satisfies Callable: script functions, bound
//     methods, classes (which construct instances) and native builtins.
//   - A Class has a name, an optional single superclass and a fixed method
//     table. Method lookup walks the superclass chain.
//   - An Instance has an open set of fields. Fields shadow methods; methods
//     read through an instance come back bound to it.
//   - A method named `init` is the initializer. Calling a class runs it on
//     the new instance and yields the instance.
//
// Hosts compile source with an Engine and either Run the resulting Script
// or Call one of its globals. A Session keeps globals across inputs.
package rox
