package walker

import (
	"context"

	"github.com/vic/optinet/pkg/netmem"
)

// walkerState is the three ports a single walker carries between
// iterations (spec.md §4.4): next is the port under inspection, prev
// is what lies on the other side of it, and back is the return point
// remembered across a rewrite.
type walkerState struct {
	next netmem.Port
	prev netmem.Port
	back netmem.Port
}

// stepOnce performs one iteration of the traversal: read the
// neighbour, classify the local configuration, and advance next
// accordingly. next == 0 is both the idle sentinel and, not
// coincidentally, node 0's own principal port — the reserved root
// never takes part in an active pair, so the two meanings never
// conflict.
func (p *Pool) stepOnce(st *walkerState, cancel context.CancelFunc) {
	st.prev = p.net.Enter(st.next)
	nNode, nSlot := st.next.Node(), st.next.Slot()
	pNode, pSlot := st.prev.Node(), st.prev.Slot()

	switch {
	case nSlot == netmem.SlotPrincipal && pSlot == netmem.SlotPrincipal && pNode != 0:
		// Active pair: both endpoints are principal ports and the
		// neighbour isn't the reserved root.
		meta := p.net.Meta(pNode)
		st.back = p.net.Enter(netmem.MakePort(pNode, meta))
		p.net.Rewrite(pNode, nNode)
		p.onRewrite(cancel)
		st.next = p.net.Enter(st.back)

	case nSlot == netmem.SlotPrincipal:
		// Principal-to-auxiliary descent: defer the second branch and
		// explore the first.
		p.push(nNode)
		st.next = p.net.Enter(netmem.MakePort(nNode, netmem.SlotAux1))

	default:
		// Auxiliary return: remember which way we came in and head
		// back out through the principal port.
		p.net.SetMeta(nNode, nSlot)
		st.next = p.net.Enter(netmem.MakePort(nNode, netmem.SlotPrincipal))
	}

	p.net.IncrLoop()
}
