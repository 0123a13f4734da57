// Package walker is the concurrency substrate: a pool of goroutines
// that traverse a netmem.Network looking for active pairs, invoking
// its rewriter, and coordinating through a shared "warp" stack of
// deferred branches plus a counting semaphore.
package walker

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"github.com/vic/optinet/pkg/netmem"
)

// ErrBudgetExceeded is returned by Run when a non-zero Budget is
// reached before the net quiesces. It exists because the driver this
// traversal is ported from has no bound on non-terminating reductions
// (it sleeps a fixed interval and gives up); callers that need a hard
// cutoff on divergent terms should set Budget instead.
var ErrBudgetExceeded = errors.New("walker: rewrite budget exceeded")

// semCapacity bounds the warp semaphore; it only needs to be larger
// than any realistic warp depth since permits are acquired one at a
// time and released one per push.
const semCapacity = int64(1) << 40

// Pool owns the shared net, the warp stack, and the locks and counters
// that let several walkers reduce the same net concurrently.
type Pool struct {
	net *netmem.Network

	warpMu sync.Mutex
	warp   []netmem.NodeIdx
	sem    *semaphore.Weighted

	active atomic.Int64

	budget    uint64
	rules     atomic.Uint64
	budgetHit atomic.Bool
}

// NewPool prepares a pool over net. A budget of 0 means unlimited
// rewrites.
func NewPool(net *netmem.Network, budget uint64) *Pool {
	// A fresh Weighted has all of its capacity free; claim it up front so
	// the semaphore starts with no permits and each push releases one.
	sem := semaphore.NewWeighted(semCapacity)
	sem.TryAcquire(semCapacity)
	return &Pool{net: net, sem: sem, budget: budget}
}

// Run spawns workers-1 worker walkers and runs the primary walker on
// the calling goroutine, starting from the root of net, until every
// walker observes an empty warp and no active peers (spec.md §5's
// termination protocol). It returns ErrBudgetExceeded if the pool's
// budget was reached first, or ctx's own error if the caller cancelled
// it; otherwise nil.
//
// Termination and budget cutoff are both implemented the same way:
// cancelling a context derived from ctx. Every worker blocked on the
// warp semaphore wakes immediately on cancellation, closing the
// wakeup-loss race the source this is ported from leaves open — no
// separate shutdown flag or broadcast is needed.
func (p *Pool) Run(parent context.Context, workers int) error {
	if workers < 1 {
		workers = 1
	}
	runCtx, cancel := context.WithCancel(parent)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < workers-1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.runWorker(runCtx, cancel)
		}()
	}

	p.runPrimary(runCtx, cancel)
	wg.Wait()

	if p.budgetHit.Load() {
		return ErrBudgetExceeded
	}
	return parent.Err()
}

func (p *Pool) push(w netmem.NodeIdx) {
	p.warpMu.Lock()
	p.warp = append(p.warp, w)
	p.warpMu.Unlock()
	p.sem.Release(1)
}

// popBlocking waits for a signalled push and removes it from the warp.
// It returns false only when ctx is done (normal quiescence, a budget
// cutoff, or caller cancellation — see Run).
func (p *Pool) popBlocking(ctx context.Context) (netmem.NodeIdx, bool) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return 0, false
	}
	p.warpMu.Lock()
	w := p.warp[len(p.warp)-1]
	p.warp = p.warp[:len(p.warp)-1]
	p.warpMu.Unlock()
	return w, true
}

// popNonBlocking is the primary walker's idle-pull: the primary never
// waits on the semaphore, since it must remain free to notice
// quiescence (spec.md §5).
func (p *Pool) popNonBlocking() (netmem.NodeIdx, bool) {
	if !p.sem.TryAcquire(1) {
		return 0, false
	}
	p.warpMu.Lock()
	w := p.warp[len(p.warp)-1]
	p.warp = p.warp[:len(p.warp)-1]
	p.warpMu.Unlock()
	return w, true
}

// tryFinish observes, under the warp mutex, whether the warp is empty
// and no worker is active; if so it declares the reduction finished by
// cancelling cancel. Holding warpMu across both checks is what makes
// the observation consistent, per spec.md §5's requirement that the
// three termination conditions be read together.
func (p *Pool) tryFinish(cancel context.CancelFunc) bool {
	p.warpMu.Lock()
	defer p.warpMu.Unlock()
	if len(p.warp) != 0 || p.active.Load() != 0 {
		return false
	}
	cancel()
	return true
}

func (p *Pool) runPrimary(ctx context.Context, cancel context.CancelFunc) {
	var st walkerState
	st.next = p.net.Enter(netmem.MakePort(0, netmem.SlotPrincipal))
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if st.next == 0 {
			if w, ok := p.popNonBlocking(); ok {
				st.next = p.net.Enter(netmem.MakePort(w, netmem.SlotAux2))
				continue
			}
			if p.tryFinish(cancel) {
				return
			}
			runtime.Gosched()
			continue
		}

		p.stepOnce(&st, cancel)
	}
}

func (p *Pool) runWorker(ctx context.Context, cancel context.CancelFunc) {
	var st walkerState
	busy := false
	for {
		if st.next == 0 {
			if busy {
				p.active.Add(-1)
				busy = false
			}
			w, ok := p.popBlocking(ctx)
			if !ok {
				return
			}
			p.active.Add(1)
			busy = true
			st.next = p.net.Enter(netmem.MakePort(w, netmem.SlotAux2))
			continue
		}

		p.stepOnce(&st, cancel)
	}
}

func (p *Pool) onRewrite(cancel context.CancelFunc) {
	if p.budget == 0 {
		return
	}
	if p.rules.Add(1) >= p.budget {
		if !p.budgetHit.Swap(true) {
			cancel()
		}
	}
}
