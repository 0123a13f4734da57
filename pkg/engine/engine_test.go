package engine_test

import (
	"context"
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vic/optinet/pkg/engine"
	"github.com/vic/optinet/pkg/term"
)

// normalize renames bound variables to a canonical x0, x1, ... sequence
// and collapses every free variable to the placeholder "<free>", so two
// alpha-equivalent terms compare equal regardless of the names a
// particular reduction happened to produce.
func normalize(t term.Term) term.Term {
	bindings := make(map[string]string)
	idx := 0
	var walk func(term.Term) term.Term
	walk = func(tt term.Term) term.Term {
		switch v := tt.(type) {
		case term.Var:
			if name, ok := bindings[v.Name]; ok {
				return term.Var{Name: name}
			}
			return term.Var{Name: "<free>"}
		case term.Abs:
			canon := fmt.Sprintf("x%d", idx)
			idx++
			old, had := bindings[v.Arg]
			bindings[v.Arg] = canon
			body := walk(v.Body)
			if had {
				bindings[v.Arg] = old
			} else {
				delete(bindings, v.Arg)
			}
			return term.Abs{Arg: canon, Body: body}
		case term.App:
			return term.App{Fun: walk(v.Fun), Arg: walk(v.Arg)}
		default:
			return tt
		}
	}
	return walk(t)
}

func requireReduces(t *testing.T, input, expected string, workers int) {
	t.Helper()
	out, _, err := engine.Reduce(context.Background(), input, engine.Options{Workers: workers})
	require.NoError(t, err)

	actualTerm, err := term.Parse(out)
	require.NoError(t, err)
	expectedTerm, err := term.Parse(expected)
	require.NoError(t, err)

	require.Equal(t, term.Print(normalize(expectedTerm)), term.Print(normalize(actualTerm)))
}

func TestReduceIdentity(t *testing.T) {
	// no redex anywhere: the walker should find no active pair at all.
	_, stats, err := engine.Reduce(context.Background(), "x: x", engine.Options{Workers: 1})
	require.NoError(t, err)
	require.Zero(t, stats.Rules)
}

// (\x.x) (\y.y), spec.md §8 scenario 1: both sides of the redex are a
// bare eta-identity, which encodes to a self-looped combinator node
// (encode.go). This is the degenerate shape that used to crash the
// annihilation rule; routing it through the full engine (parse, encode,
// walker pool, decode) rather than Rewrite in isolation is what actually
// exercises the bug.
func TestReduceBareIdentityApplication(t *testing.T) {
	requireReduces(t, "(x: x) (y: y)", "y: y", 1)
}

// (\x. x x) (\y.y), spec.md §8 scenario 3: the bound variable is used
// twice, so the encoder splices a duplicator between the two
// occurrences, and that duplicator ends up commuting directly with the
// self-looped identity argument.
func TestReduceSelfApplicationOfIdentity(t *testing.T) {
	requireReduces(t, "(x: x x) (y: y)", "y: y", 1)
}

// (\x. \y. y x) (\z. z), spec.md §8 scenario 5.
func TestReduceFlippedApplicationOfIdentity(t *testing.T) {
	requireReduces(t, "(x: y: y x) (z: z)", "y: y (z: z)", 1)
}

func TestReduceKCombinator(t *testing.T) {
	// (\x. \y. x) A B, spec.md §8 scenario 2.
	requireReduces(t, "(x: y: x) (a: a) (b: c: b)", "a: a", 1)
}

func TestReduceChurchSucc(t *testing.T) {
	one := "f: x: f x"
	two := "f: x: f (f x)"
	succ := "n: f: x: f (n f x)"
	requireReduces(t, fmt.Sprintf("(%s) (%s)", succ, one), two, 1)
}

// Church numeral 2 applied to succ and 0, spec.md §8 scenario 4:
// normalizing "two succ zero" all the way through produces the same
// term as "two" itself, since 2's two applications of succ to 0 build
// exactly the numeral 2.
func TestReduceChurchNumeralTwoAppliedToSuccAndZero(t *testing.T) {
	zero := "f: x: x"
	succ := "n: f: x: f (n f x)"
	two := "f: x: f (f x)"
	requireReduces(t, fmt.Sprintf("(%s) (%s) (%s)", two, succ, zero), two, 1)
}

func TestReduceSharedArgument(t *testing.T) {
	// (\x. x x x) (\y.y), spec.md §8 scenario 6: forces the duplicator
	// chain built for three occurrences of the same binder to share
	// work, and (since the argument is itself a bare identity) to
	// duplicate a self-looped node via commutation.
	requireReduces(t, "(x: x x x) (y: y)", "y: y", 1)
}

func TestReduceSharedArgumentWithNonIdentityOperand(t *testing.T) {
	requireReduces(t, "(x: x x x) (a: b: a)", "a: b: a", 1)
}

func TestReduceLetSugar(t *testing.T) {
	requireReduces(t, "let k = x: y: x; in k (a: a) (b: c: b)", "a: a", 1)
}

func TestReduceEraseUnusedArgument(t *testing.T) {
	requireReduces(t, "(x: y: x) (a: a) (discarded: discarded discarded)", "a: a", 1)
}

func TestReduceConfluentAcrossWorkerCounts(t *testing.T) {
	one := "f: x: f x"
	succ := "n: f: x: f (n f x)"
	three := fmt.Sprintf("(%s) ((%s) ((%s) (%s)))", succ, succ, succ, one)

	outSeq, _, err := engine.Reduce(context.Background(), three, engine.Options{Workers: 1})
	require.NoError(t, err)

	outPar, _, err := engine.Reduce(context.Background(), three, engine.Options{Workers: runtime.NumCPU()})
	require.NoError(t, err)

	seqTerm, err := term.Parse(outSeq)
	require.NoError(t, err)
	parTerm, err := term.Parse(outPar)
	require.NoError(t, err)

	require.Equal(t, term.Print(normalize(seqTerm)), term.Print(normalize(parTerm)))
}

func TestReduceBudgetExceededOnDivergence(t *testing.T) {
	omega := "(x: x x) (x: x x)"
	_, stats, err := engine.Reduce(context.Background(), omega, engine.Options{Workers: 2, Budget: 1000})
	require.ErrorIs(t, err, engine.ErrBudgetExceeded)
	require.GreaterOrEqual(t, stats.Rules, uint64(1000))
}

func TestReduceFreeVariablePropagatesParseTimeError(t *testing.T) {
	_, _, err := engine.Reduce(context.Background(), "x", engine.Options{})
	require.Error(t, err)
}
