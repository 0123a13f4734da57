// Package term is the surface layer around the reduction engine: named
// lambda-calculus terms, a parser for the Nix-style binder syntax, and
// the conversion to and from the De Bruijn core.Term the net operates on.
//
// Everything in this package is an interface-level collaborator rather
// than part of the reduction core: the engine only ever sees core.Term.
package term

import "fmt"

// Term is a named (not yet De Bruijn resolved) lambda-calculus term.
type Term interface {
	fmt.Stringer
	isTerm()
}

// Var is a named variable occurrence.
type Var struct {
	Name string
}

// Abs is an abstraction binding Arg in Body.
type Abs struct {
	Arg  string
	Body Term
}

// App is the application of Fun to Arg.
type App struct {
	Fun Term
	Arg Term
}

// Let is sugar for an immediate application: `let x = Val; in Body`
// desugars to `(x: Body) Val`.
type Let struct {
	Name string
	Val  Term
	Body Term
}

func (Var) isTerm() {}
func (Abs) isTerm() {}
func (App) isTerm() {}
func (Let) isTerm() {}

func (v Var) String() string { return v.Name }
func (a Abs) String() string { return fmt.Sprintf("(%s: %s)", a.Arg, a.Body) }
func (a App) String() string { return fmt.Sprintf("(%s %s)", a.Fun, a.Arg) }
func (l Let) String() string { return fmt.Sprintf("let %s = %s; in %s", l.Name, l.Val, l.Body) }

// Print renders a surface term as source text.
func Print(t Term) string { return t.String() }
