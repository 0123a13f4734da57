package netmem

import "github.com/vic/optinet/pkg/core"

// Decode reads the net back into a term, inverting EncodeProgram
// (spec.md §4.5 / the original readback algorithm). It never mutates
// the net and may be called on a partially-reduced graph, so it
// tolerates duplicator chains that a full normal-order reduction would
// otherwise have eliminated.
func (n *Network) Decode() core.Term {
	rd := &readback{depth: make(map[NodeIdx]uint32), exits: make(map[NodeIdx][]uint32)}
	root := n.Enter(MakePort(0, SlotPrincipal))
	return n.decode(root, rd, 0)
}

type readback struct {
	depth map[NodeIdx]uint32
	exits map[NodeIdx][]uint32
}

func (n *Network) decode(p Port, rd *readback, d uint32) core.Term {
	node := p.Node()
	slot := p.Slot()

	if n.Kind(node) != KindCombinator {
		return n.decodeOther(p, rd, d)
	}

	switch slot {
	case SlotPrincipal:
		// Entering a lambda/application combinator through its
		// principal port: it is a lambda. Record this node's depth and
		// recurse through port 2.
		rd.depth[node] = d
		body := n.decode(n.Enter(MakePort(node, SlotAux2)), rd, d+1)
		return core.Abs{Body: body}

	case SlotAux1:
		// Entering through port 1: a variable occurrence of the
		// enclosing binder.
		lamDepth, ok := rd.depth[node]
		if !ok {
			n.fatalf("decode: variable occurrence escaped its binder at node %d", node)
		}
		return core.Var{Index: d - lamDepth - 1}

	default: // SlotAux2
		fun := n.decode(n.Enter(MakePort(node, SlotPrincipal)), rd, d)
		arg := n.decode(n.Enter(MakePort(node, SlotAux1)), rd, d)
		return core.App{Fun: fun, Arg: arg}
	}
}

// decodeOther handles a duplicator or eraser left in the net (expected
// only while reduction is incomplete): entering through an auxiliary
// port pushes that slot and recurses through the principal port;
// entering through the principal port pops the slot most recently
// pushed for this node and recurses through it.
func (n *Network) decodeOther(p Port, rd *readback, d uint32) core.Term {
	node := p.Node()
	slot := p.Slot()

	if slot == SlotPrincipal {
		stack := rd.exits[node]
		if len(stack) == 0 {
			n.fatalf("decode: entered principal port of node %d with no recorded exit", node)
		}
		e := stack[len(stack)-1]
		rd.exits[node] = stack[:len(stack)-1]
		result := n.decode(n.Enter(MakePort(node, e)), rd, d)
		rd.exits[node] = append(rd.exits[node], e)
		return result
	}

	rd.exits[node] = append(rd.exits[node], slot)
	result := n.decode(n.Enter(MakePort(node, SlotPrincipal)), rd, d)
	stack := rd.exits[node]
	rd.exits[node] = stack[:len(stack)-1]
	return result
}
