package netmem

// Rewrite applies the interaction rule for the active pair (x, y) — two
// nodes whose principal ports are linked to each other — and returns
// which rule fired. It holds the net's exclusive lock across the whole
// rule application, as spec.md §5 requires, so the four neighbour reads
// and the rewiring that follows are atomic with respect to every other
// walker.
func (n *Network) Rewrite(x, y NodeIdx) RuleKind {
	n.mu.Lock()
	defer n.mu.Unlock()

	kx := n.kindLocked(x)
	ky := n.kindLocked(y)

	var rule RuleKind
	if kx == ky {
		rule = n.annihilateLocked(x, y, kx)
	} else {
		rule = n.commuteLocked(x, y, kx, ky)
	}

	n.recordTrace(rule, x, y)
	n.addRule(rule)
	return rule
}

// annihilateLocked handles the same-kind case: the two active nodes
// vanish and their neighbours are spliced directly together. All four
// neighbour ports are read before either link is written, since px1/px2
// are endpoints that link(px1, py1) and link(px2, py2) would otherwise
// clobber mid-read if x == y's own neighbour (a self-loop through the
// pair).
//
// A bare eta-identity (encode.go's placeholder for "x: x") links its own
// aux1 to its own aux2, so one side of the pair can arrive here with no
// real external neighbour at all: px1/px2 (or py1/py2) are just the two
// endpoints of that internal loop, not two distinct things to splice. The
// generic formula above treats them as if they were external anyway,
// producing two disjoint two-cycles instead of one connection, and the
// walker then re-enters the freed pair through a stale cycle and fires a
// second, bogus rewrite on already-freed nodes. xLoop/yLoop detect this
// shape and splice the OTHER side's two neighbours straight through
// instead, since a self-looped node carries nothing of its own to thread
// into the result.
func (n *Network) annihilateLocked(x, y NodeIdx, kind uint32) RuleKind {
	px1 := n.enterLocked(MakePort(x, SlotAux1))
	py1 := n.enterLocked(MakePort(y, SlotAux1))
	px2 := n.enterLocked(MakePort(x, SlotAux2))
	py2 := n.enterLocked(MakePort(y, SlotAux2))

	xLoop := px1 == MakePort(x, SlotAux2)
	yLoop := py1 == MakePort(y, SlotAux2)

	switch {
	case xLoop && yLoop:
		// Neither side has an external neighbour to carry over.
	case yLoop:
		n.linkLocked(px1, px2)
	case xLoop:
		n.linkLocked(py1, py2)
	default:
		n.linkLocked(px1, py1)
		n.linkLocked(px2, py2)
	}

	n.reuseLocked(x)
	n.reuseLocked(y)

	if kind == KindCombinator {
		return RuleBeta
	}
	return RuleAnnihilate
}

// commuteLocked handles the different-kind case: two fresh nodes a
// (kind(x)) and b (kind(y)) are introduced, and x, y are reused in place
// as the interior nodes of the commuted configuration. All four
// neighbour ports are captured up front because the new wirings
// reference them only after x's and y's own cells start changing.
//
// The same bare-eta self-loop described in annihilateLocked can arrive
// here too — duplicating an identity (e.g. "x: x x x" applied to
// "y: y") means propagating a duplicator through a combinator whose own
// aux1/aux2 only point at each other. The generic wiring below assumes
// py1/py2 (or px1/px2) are real external neighbours to thread a fresh
// copy through; when they're actually the two ends of a self-loop, two
// of its eight link calls end up overwriting each other's cells and
// leave one freshly allocated node orphaned. A self-looped node has no
// substructure to propagate a duplicator into, so xLoop/yLoop instead
// deliver two self-looped copies (one fresh node, plus the self-looped
// node itself) straight to the duplicator's own two neighbours and
// retire the duplicator outright.
func (n *Network) commuteLocked(x, y NodeIdx, kx, ky uint32) RuleKind {
	px1 := n.enterLocked(MakePort(x, SlotAux1))
	px2 := n.enterLocked(MakePort(x, SlotAux2))
	py1 := n.enterLocked(MakePort(y, SlotAux1))
	py2 := n.enterLocked(MakePort(y, SlotAux2))

	xLoop := px1 == MakePort(x, SlotAux2)
	yLoop := py1 == MakePort(y, SlotAux2)

	switch {
	case xLoop && yLoop:
		n.reuseLocked(x)
		n.reuseLocked(y)
	case yLoop:
		b := n.newNodeLocked(ky)
		n.linkLocked(MakePort(b, SlotPrincipal), px1)
		n.linkLocked(MakePort(b, SlotAux1), MakePort(b, SlotAux2))
		n.linkLocked(MakePort(y, SlotPrincipal), px2)
		n.setMetaLocked(y, 0)
		n.reuseLocked(x)
	case xLoop:
		a := n.newNodeLocked(kx)
		n.linkLocked(MakePort(a, SlotPrincipal), py1)
		n.linkLocked(MakePort(a, SlotAux1), MakePort(a, SlotAux2))
		n.linkLocked(MakePort(x, SlotPrincipal), py2)
		n.setMetaLocked(x, 0)
		n.reuseLocked(y)
	default:
		a := n.newNodeLocked(kx)
		b := n.newNodeLocked(ky)

		n.linkLocked(MakePort(b, SlotPrincipal), px1)
		n.linkLocked(MakePort(y, SlotPrincipal), px2)
		n.linkLocked(MakePort(a, SlotPrincipal), py1)
		n.linkLocked(MakePort(x, SlotPrincipal), py2)

		n.linkLocked(MakePort(a, SlotAux1), MakePort(b, SlotAux1))
		n.linkLocked(MakePort(a, SlotAux2), MakePort(y, SlotAux1))
		n.linkLocked(MakePort(x, SlotAux1), MakePort(b, SlotAux2))
		n.linkLocked(MakePort(x, SlotAux2), MakePort(y, SlotAux2))

		n.setMetaLocked(x, 0)
		n.setMetaLocked(y, 0)
	}

	return RuleCommute
}
