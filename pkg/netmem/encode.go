package netmem

import "github.com/vic/optinet/pkg/core"

// EncodeProgram translates a closed term into a net rooted at node 0's
// principal port, following spec.md §4.2 exactly (ported from the
// original abstract-algorithm encoder: a fresh-kind counter for
// duplicators starting at 1, an eraser placeholder standing in for an
// unused binder, first-use vs. subsequent-use at each variable
// occurrence).
func (n *Network) EncodeProgram(t core.Term) {
	scope := make([]NodeIdx, 0, 8)
	kind := uint32(1)
	body := n.encode(t, &scope, &kind)
	n.Link(MakePort(0, SlotPrincipal), body)
}

func (n *Network) encode(t core.Term, scope *[]NodeIdx, kind *uint32) Port {
	switch v := t.(type) {
	case core.App:
		app := n.NewNode(KindCombinator)
		fn := n.encode(v.Fun, scope, kind)
		n.Link(MakePort(app, SlotPrincipal), fn)
		arg := n.encode(v.Arg, scope, kind)
		n.Link(MakePort(app, SlotAux1), arg)
		return MakePort(app, SlotAux2)

	case core.Abs:
		fun := n.NewNode(KindCombinator)
		era := n.NewNode(KindEraser)
		n.Link(MakePort(fun, SlotAux1), MakePort(era, SlotPrincipal))
		// The placeholder eraser's own aux ports loop onto each other
		// rather than each onto itself, so that if a use of the bound
		// variable later pairs this eraser off (no use occurred), the
		// standard erasure-via-commutation rule splices cleanly.
		n.Link(MakePort(era, SlotAux1), MakePort(era, SlotAux2))

		*scope = append(*scope, fun)
		body := n.encode(v.Body, scope, kind)
		*scope = (*scope)[:len(*scope)-1]

		n.Link(MakePort(fun, SlotAux2), body)
		return MakePort(fun, SlotPrincipal)

	case core.Var:
		s := *scope
		if int(v.Index) >= len(s) {
			n.fatalf("free variable at index %d with scope depth %d", v.Index, len(s))
		}
		lam := s[len(s)-1-int(v.Index)]
		occupant := n.Enter(MakePort(lam, SlotAux1))
		if n.Kind(occupant.Node()) == KindEraser {
			// First use: the caller overwrites this port directly.
			return MakePort(lam, SlotAux1)
		}
		// Subsequent use: splice a duplicator of a fresh kind between
		// the binder and its previous occupant, and hand the new
		// occurrence the duplicator's second output.
		*kind++
		dup := n.NewNode(*kind)
		prevUse := n.Enter(MakePort(lam, SlotAux1))
		n.Link(MakePort(dup, SlotAux1), prevUse)
		n.Link(MakePort(dup, SlotPrincipal), MakePort(lam, SlotAux1))
		return MakePort(dup, SlotAux2)

	default:
		n.fatalf("encode: unknown term type %T", t)
		panic("unreachable")
	}
}
