// Package transform implements the post-check rewrite pipeline: ordered
// blocks of transforms run to a local fixpoint over the differences a
// comparison produced, each transform able to keep, replace, or defer a
// decision on every difference it sees.
package transform

import (
	"github.com/viant/apidiff/diff"
	"github.com/viant/apidiff/element"
)

// Resolution is the outcome a Transform returns for one difference.
type Resolution int

const (
	// Keep leaves the difference unchanged.
	Keep Resolution = iota
	// Replace substitutes the difference with a new set (possibly empty,
	// which discards it; possibly several, which splits it).
	Replace
	// Undecided defers to any other transform in the block still to run
	// this pass; if every transform in a pass returns Undecided for a
	// difference, it is kept as-is once the block reaches fixpoint.
	Undecided
)

// Outcome is a Transform's verdict for a single difference.
type Outcome struct {
	Resolution Resolution
	Replaced   []diff.Difference // only meaningful when Resolution == Replace
}

// Keeping is the Keep outcome, provided as a convenience for Transform
// implementations.
func Keeping() Outcome { return Outcome{Resolution: Keep} }

// Replacing returns a Replace outcome substituting ds for the original
// difference.
func Replacing(ds ...diff.Difference) Outcome {
	return Outcome{Resolution: Replace, Replaced: ds}
}

// Deferring is the Undecided outcome.
func Deferring() Outcome { return Outcome{Resolution: Undecided} }

// Transform inspects one difference at a time, in the context of the pair
// it was raised against, and decides whether to keep, replace, or defer a
// decision on it.
type Transform interface {
	// Interested reports whether t wants a chance to rewrite differences
	// with this code at all; a pipeline may skip calling Apply for
	// differences no transform in the block subscribes to, but a block
	// still re-examines its full difference set for fixpoint regardless
	// of which codes were actually touched in a given pass.
	Interested(code string) bool
	Apply(pair element.Pair, d diff.Difference) (Outcome, error)
}

// TraversalAware is optionally implemented by a Transform that needs to
// track ancestor context across the forest walk (e.g. a matcher recipe
// that depends on an enclosing type's name). The walker/driver calls these
// hooks around the traversal regardless of whether any difference is being
// rewritten at that moment.
type TraversalAware interface {
	StartTraversal()
	StartElements(pair element.Pair)
	EndElements(pair element.Pair)
	EndTraversal()
}

// Func adapts a stateless predicate+apply pair of closures into a
// Transform.
type Func struct {
	InterestedFn func(code string) bool
	ApplyFn      func(pair element.Pair, d diff.Difference) (Outcome, error)
}

func (f *Func) Interested(code string) bool { return f.InterestedFn == nil || f.InterestedFn(code) }
func (f *Func) Apply(pair element.Pair, d diff.Difference) (Outcome, error) {
	if f.ApplyFn == nil {
		return Keeping(), nil
	}
	return f.ApplyFn(pair, d)
}
