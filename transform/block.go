package transform

import (
	"fmt"

	"github.com/viant/apidiff/diff"
	"github.com/viant/apidiff/element"
	"github.com/viant/apidiff/kerr"
)

// DefaultMaxIterations is the iteration cap applied to a Block whose
// MaxIterations is left at zero.
const DefaultMaxIterations = 10

// Block is an ordered set of transforms run together to a local fixpoint:
// each pass applies every transform in order to the current difference
// set, and the block repeats until a pass leaves the set's content hash
// unchanged or the iteration cap is reached. The cap is per block, not
// shared across the pipeline — a slow-converging early block does not
// erode the budget of a later one.
type Block struct {
	Name          string
	Transforms    []Transform
	MaxIterations int
}

// Run applies b to ds in the context of pair, returning the fixpoint
// result. It returns kerr.ErrTransformNonConvergence if no pass within the
// iteration cap leaves the set's content hash unchanged; an oscillating
// set and one still changing when the cap is reached are both reported
// this way. Confirming a fixpoint takes one pass beyond the last change.
func (b *Block) Run(pair element.Pair, ds []diff.Difference) ([]diff.Difference, error) {
	maxIter := b.MaxIterations
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	current := ds
	lastHash, err := diff.HashSet(current)
	if err != nil {
		return nil, err
	}
	for i := 0; i < maxIter; i++ {
		next, err := b.pass(pair, current)
		if err != nil {
			return nil, err
		}
		nextHash, err := diff.HashSet(next)
		if err != nil {
			return nil, err
		}
		if nextHash == lastHash {
			return next, nil
		}
		current = next
		lastHash = nextHash
	}
	return nil, fmt.Errorf("%w: block %q did not converge within %d iterations",
		kerr.ErrTransformNonConvergence, b.Name, maxIter)
}

// pass runs every transform in b once over ds, left to right, folding each
// transform's outcome into the set before the next transform sees it —
// transforms within a single pass observe each other's rewrites
// immediately, only the fixpoint test is deferred to the pass boundary.
func (b *Block) pass(pair element.Pair, ds []diff.Difference) ([]diff.Difference, error) {
	current := ds
	for _, t := range b.Transforms {
		var out []diff.Difference
		for _, d := range current {
			if !t.Interested(d.Code()) {
				out = append(out, d)
				continue
			}
			outcome, err := t.Apply(pair, d)
			if err != nil {
				return nil, fmt.Errorf("%w: transform failed on %q: %v", kerr.ErrTransformFailure, d.Code(), err)
			}
			switch outcome.Resolution {
			case Replace:
				out = append(out, outcome.Replaced...)
			default:
				out = append(out, d)
			}
		}
		current = out
	}
	return current, nil
}
