// Package engine wires the parser, the net memory, and the walker
// pool into the single entry point a driver needs: source text in,
// reduced source text and statistics out.
package engine

import (
	"context"
	"fmt"
	"runtime"

	"github.com/vic/optinet/pkg/netmem"
	"github.com/vic/optinet/pkg/term"
	"github.com/vic/optinet/pkg/walker"
)

// Options configures a reduction.
type Options struct {
	// Workers is the number of OS-thread-backed goroutines sharing the
	// net: one primary walker plus Workers-1 worker walkers. Zero
	// selects runtime.NumCPU().
	Workers int

	// Budget caps the number of rewrites before Reduce gives up with
	// ErrBudgetExceeded. Zero means unlimited.
	Budget uint64

	// TraceCapacity, if non-zero, enables rewrite tracing with a ring
	// buffer of this size; Stats.Trace is populated from it.
	TraceCapacity int
}

// Stats reports what happened during a reduction.
type Stats struct {
	netmem.Stats
	Trace []netmem.TraceEvent
}

// ErrBudgetExceeded is walker.ErrBudgetExceeded, re-exported so callers
// don't need to import pkg/walker just to compare errors.
var ErrBudgetExceeded = walker.ErrBudgetExceeded

// Reduce parses source, reduces it to normal form (or until ctx is
// cancelled or opts.Budget is reached), and prints the result back out
// as surface syntax.
func Reduce(ctx context.Context, source string, opts Options) (string, Stats, error) {
	surface, err := term.Parse(source)
	if err != nil {
		return "", Stats{}, fmt.Errorf("engine: parse: %w", err)
	}

	coreTerm, err := term.Resolve(surface)
	if err != nil {
		return "", Stats{}, fmt.Errorf("engine: resolve: %w", err)
	}

	net := netmem.NewNetwork()
	if opts.TraceCapacity > 0 {
		net.EnableTrace(opts.TraceCapacity)
	}
	net.EncodeProgram(coreTerm)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	pool := walker.NewPool(net, opts.Budget)
	runErr := pool.Run(ctx, workers)

	stats := Stats{Stats: net.GetStats()}
	if opts.TraceCapacity > 0 {
		stats.Trace = net.TraceSnapshot()
	}
	if runErr != nil {
		return "", stats, fmt.Errorf("engine: reduce: %w", runErr)
	}

	decoded := net.Decode()
	result := term.Print(term.FromCore(decoded))
	return result, stats, nil
}
