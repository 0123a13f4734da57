package term

import (
	"fmt"

	"github.com/vic/optinet/pkg/core"
)

// FromCore names the De Bruijn binders of a core.Term in outside-in
// order (x0, x1, ...) so it can be printed as surface syntax. A Var
// whose index escapes every binder in t (only possible for a
// partially-reduced, not-actually-closed net) prints as a free
// placeholder rather than panicking, since decode is read-only and must
// not fail on a still-reducing net.
func FromCore(t core.Term) Term {
	var names []string
	counter := 0

	var convert func(core.Term) Term
	convert = func(ct core.Term) Term {
		switch v := ct.(type) {
		case core.Var:
			idx := len(names) - 1 - int(v.Index)
			if idx < 0 {
				return Var{Name: fmt.Sprintf("<free%d>", v.Index)}
			}
			return Var{Name: names[idx]}
		case core.Abs:
			name := fmt.Sprintf("x%d", counter)
			counter++
			names = append(names, name)
			body := convert(v.Body)
			names = names[:len(names)-1]
			return Abs{Arg: name, Body: body}
		case core.App:
			return App{Fun: convert(v.Fun), Arg: convert(v.Arg)}
		default:
			panic(fmt.Sprintf("term: unknown core term %T", ct))
		}
	}
	return convert(t)
}
