// Package netmem is the net memory: a dense array of 32-bit cells
// grouped four per node, plus a free list, implementing the
// interaction-combinator primitives (port, enter, link, kind, meta,
// new_node) and the two rewrite rules that act on them.
//
// Node 0 is reserved as the root container: after encoding, its
// principal port (port 0) holds the port of the encoded program's body.
package netmem

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"
)

// Port packs a node index and a slot (0, 1, 2 for graph connections, 3
// for the metadata cell) into one 32-bit word.
type Port uint32

// NodeIdx is a node's index into the cell array (cell range [4*i, 4*i+3]).
type NodeIdx uint32

const (
	SlotPrincipal uint32 = 0
	SlotAux1      uint32 = 1
	SlotAux2      uint32 = 2
	SlotMeta      uint32 = 3
)

// Node kinds. Kind 0 is the eraser, kind 1 is the lambda/application
// combinator (the two are distinguished structurally, not by kind), and
// every kind >= 2 is a distinct duplicator family assigned by the
// encoder's fresh-kind counter.
const (
	KindRoot       uint32 = 0 // node 0 only; excluded from pairing by index, not by kind
	KindEraser     uint32 = 0
	KindCombinator uint32 = 1
	KindDupBase    uint32 = 2
)

// MakePort packs a node index and slot into a Port.
func MakePort(n NodeIdx, slot uint32) Port { return Port(uint32(n)<<2 | slot) }

// Node unpacks the node index out of a Port.
func (p Port) Node() NodeIdx { return NodeIdx(p >> 2) }

// Slot unpacks the slot out of a Port.
func (p Port) Slot() uint32 { return uint32(p) & 3 }

// RuleKind distinguishes the three shapes of rewrite the engine performs
// for statistics and tracing purposes; the wire protocol (spec.md §4.3)
// only has two cases (same-kind vs. different-kind), but this splits
// same-kind further into beta (two lambda/app combinators) and true
// duplicator annihilation, matching the optional betas/dupls/annis
// breakdown in the Stats record.
type RuleKind int

const (
	RuleUnknown RuleKind = iota
	RuleBeta
	RuleAnnihilate
	RuleCommute
)

// TraceEvent records one rewrite for diagnostics; see EnableTrace.
type TraceEvent struct {
	Step uint64
	Rule RuleKind
	X    NodeIdx
	Y    NodeIdx
}

// Stats are the engine's running counters, as described in spec.md §4.4
// ("loops", "rules") and its optional per-rule breakdown.
type Stats struct {
	RunID uuid.UUID
	Loops uint64
	Rules uint64
	Betas uint64
	Dupls uint64
	Annis uint64
}

// Network owns the net's storage and the locks that guard it.
//
// Net storage is protected by a single readers-writer lock: enter/kind/
// meta take a shared lock, link/set_meta/new_node/rewrite take the
// exclusive lock for their whole body. Per spec.md §9's design notes,
// per-node locking is a known-but-unimplemented refinement; the global
// lock is correct, if pessimistic.
type Network struct {
	mu    sync.RWMutex
	cells []uint32
	reuse []NodeIdx

	RunID uuid.UUID

	statsMu sync.Mutex
	stats   Stats

	traceMu  sync.Mutex
	traceBuf []TraceEvent
	traceCap uint64
	traceIdx uint64
	traceOn  bool
}

// NewNetwork allocates an empty net with its reserved root node (node 0).
func NewNetwork() *Network {
	n := &Network{RunID: uuid.New()}
	n.stats.RunID = n.RunID
	n.newNodeLocked(KindRoot) // claims index 0
	return n
}

// NodeCount returns the number of node slots currently allocated
// (live + free).
func (n *Network) NodeCount() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.cells) / 4
}

// ReuseLen returns the number of node indices currently on the free list.
func (n *Network) ReuseLen() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.reuse)
}

// Enter reads the cell at port p: the port currently linked to p.
func (n *Network) Enter(p Port) Port {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enterLocked(p)
}

func (n *Network) enterLocked(p Port) Port {
	return Port(n.cells[p])
}

// Kind returns the upper 30 bits of node idx's meta cell.
func (n *Network) Kind(idx NodeIdx) uint32 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.kindLocked(idx)
}

func (n *Network) kindLocked(idx NodeIdx) uint32 {
	return n.cells[MakePort(idx, SlotMeta)] >> 2
}

// Meta returns the low 2 bits of node idx's meta cell: the walker's
// transient breadcrumb, meaningless outside a walker's own traversal.
func (n *Network) Meta(idx NodeIdx) uint32 {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.metaLocked(idx)
}

func (n *Network) metaLocked(idx NodeIdx) uint32 {
	return n.cells[MakePort(idx, SlotMeta)] & 3
}

// SetMeta replaces the low 2 bits of node idx's meta cell, leaving kind
// untouched.
func (n *Network) SetMeta(idx NodeIdx, meta uint32) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.setMetaLocked(idx, meta)
}

func (n *Network) setMetaLocked(idx NodeIdx, meta uint32) {
	p := MakePort(idx, SlotMeta)
	n.cells[p] = n.cells[p]&0xFFFFFFFC | meta
}

// Link connects ports a and b symmetrically: cell[a] <- b, cell[b] <- a.
func (n *Network) Link(a, b Port) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.linkLocked(a, b)
}

func (n *Network) linkLocked(a, b Port) {
	n.cells[a] = uint32(b)
	n.cells[b] = uint32(a)
}

// NewNode returns a fresh node index of the given kind, popping a freed
// index from the reuse list when one is available and growing the cell
// array by four otherwise. Every auxiliary slot of the new node points
// to itself, making it topologically inert until linked.
func (n *Network) NewNode(kind uint32) NodeIdx {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.newNodeLocked(kind)
}

func (n *Network) newNodeLocked(kind uint32) NodeIdx {
	var idx NodeIdx
	if l := len(n.reuse); l > 0 {
		idx = n.reuse[l-1]
		n.reuse = n.reuse[:l-1]
	} else {
		idx = NodeIdx(len(n.cells) / 4)
		n.cells = append(n.cells, 0, 0, 0, 0)
	}
	n.cells[MakePort(idx, 0)] = uint32(MakePort(idx, 0))
	n.cells[MakePort(idx, 1)] = uint32(MakePort(idx, 1))
	n.cells[MakePort(idx, 2)] = uint32(MakePort(idx, 2))
	n.cells[MakePort(idx, 3)] = kind << 2
	return idx
}

// reuseLocked retires idx onto the free list. It asserts the reuse
// disjointness invariant (spec.md §8): a node index must never be
// freed twice without an intervening NewNode claiming it back.
func (n *Network) reuseLocked(idx NodeIdx) {
	if slices.Contains(n.reuse, idx) {
		n.fatalf("node %d freed twice without being reclaimed", idx)
	}
	n.reuse = append(n.reuse, idx)
}

// GetStats returns a snapshot of the running counters.
func (n *Network) GetStats() Stats {
	n.statsMu.Lock()
	defer n.statsMu.Unlock()
	return n.stats
}

// IncrLoop records one walker iteration; called by pkg/walker at the end
// of every step regardless of what the step did.
func (n *Network) IncrLoop() {
	n.statsMu.Lock()
	n.stats.Loops++
	n.statsMu.Unlock()
}

func (n *Network) addRule(rule RuleKind) {
	n.statsMu.Lock()
	n.stats.Rules++
	switch rule {
	case RuleBeta:
		n.stats.Betas++
	case RuleAnnihilate:
		n.stats.Annis++
	case RuleCommute:
		n.stats.Dupls++
	}
	n.statsMu.Unlock()
}

// fatalf aborts the process on a programmer-precondition violation: an
// invariant the caller should have already guaranteed has been broken.
// Per spec.md §7 these have no recoverable failure mode.
func (n *Network) fatalf(format string, args ...any) {
	panic(fmt.Sprintf("netmem: run %s: %s", n.RunID, fmt.Sprintf(format, args...)))
}
