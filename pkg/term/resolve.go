package term

import (
	"fmt"

	"github.com/vic/optinet/pkg/core"
)

// FreeVariableError reports a variable with no enclosing binder. Section
// 6's parser/printer contract assumes closed terms; a free name reaching
// Resolve means the source itself was ill-formed, so it is surfaced to
// the caller rather than treated as an engine-internal precondition
// violation.
type FreeVariableError struct {
	Name string
}

func (e *FreeVariableError) Error() string {
	return fmt.Sprintf("free variable: %s", e.Name)
}

// Resolve converts a named surface term into a De Bruijn core.Term,
// desugaring Let along the way. It fails with a *FreeVariableError if
// any variable escapes every enclosing abstraction.
func Resolve(t Term) (core.Term, error) {
	return resolve(t, nil)
}

func resolve(t Term, scope []string) (core.Term, error) {
	switch v := t.(type) {
	case Var:
		for i := len(scope) - 1; i >= 0; i-- {
			if scope[i] == v.Name {
				return core.Var{Index: uint32(len(scope) - 1 - i)}, nil
			}
		}
		return nil, &FreeVariableError{Name: v.Name}

	case Abs:
		body, err := resolve(v.Body, append(scope, v.Arg))
		if err != nil {
			return nil, err
		}
		return core.Abs{Body: body}, nil

	case App:
		fn, err := resolve(v.Fun, scope)
		if err != nil {
			return nil, err
		}
		arg, err := resolve(v.Arg, scope)
		if err != nil {
			return nil, err
		}
		return core.App{Fun: fn, Arg: arg}, nil

	case Let:
		// let x = Val; Body -> (x: Body) Val
		return resolve(App{Fun: Abs{Arg: v.Name, Body: v.Body}, Arg: v.Val}, scope)

	default:
		return nil, fmt.Errorf("term: unknown term type %T", t)
	}
}
