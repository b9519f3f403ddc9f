// Package walk implements the lock-step paired forest traversal: the two
// sides of a comparison are walked together, zipping each pair of sorted
// sibling sequences into matched pairs (both sides present), half-pairs
// (one side only), visiting checks and the transform pipeline at every
// step.
package walk

import (
	"github.com/viant/apidiff/check"
	"github.com/viant/apidiff/diff"
	"github.com/viant/apidiff/element"
	"github.com/viant/apidiff/filter"
	"github.com/viant/apidiff/forest"
	"github.com/viant/apidiff/transform"
)

// Walker drives a single paired traversal of an old/new forest, invoking a
// check dispatcher and a transform pipeline at each visited pair, subject
// to the admission decisions of an optional tree filter.
type Walker struct {
	Dispatcher *check.Dispatcher
	Pipeline   *transform.Pipeline
	Filter     filter.Filter // nil admits everything
}

// Pair walks old and new together, starting from their root sequences, and
// returns every difference the checks and transforms produced, in visit
// order. Traversal state lives on an explicit frame stack (see frame/run
// below) rather than the Go call stack, so a pathologically deep forest
// cannot exhaust goroutine stack space.
func (w *Walker) Pair(old, nw *forest.Forest) ([]diff.Difference, error) {
	var oldRoots, newRoots []*element.Node
	if old != nil {
		oldRoots = old.Roots
	}
	if nw != nil {
		newRoots = nw.Roots
	}
	if w.Pipeline != nil {
		w.Pipeline.StartTraversal()
		defer w.Pipeline.EndTraversal()
	}

	root := &frame{}
	pairs := zip(oldRoots, newRoots)
	stack := make([]*frame, 0, len(pairs))
	for i := len(pairs) - 1; i >= 0; i-- {
		stack = append(stack, &frame{pair: pairs[i], parent: root})
	}
	if err := w.run(stack); err != nil {
		return nil, err
	}
	return root.collected, nil
}

// frame is one pending or in-progress pair visit on the explicit traversal
// stack. expanded distinguishes a frame's first visit (pre-order: filter
// Start, Enter, StartElements, push children) from its second (post-order:
// Leave, Pipeline.Run, Finish), mirroring the two points a recursive
// visit(pair) would be suspended at across its own children's calls.
type frame struct {
	pair      element.Pair
	parent    *frame
	expanded  bool
	descend   filter.Tri
	excluded  bool // filter matched No but asked to descend: children only
	collected []diff.Difference
}

// run drains stack to empty, depth-first, reproducing exactly the
// Enter/descend/Leave order a recursive walk would produce: a frame is
// pushed back onto the stack after its pre-order step and its children
// pushed on top (in reverse, so they pop in original order), and only
// does its post-order step once every child has finished and folded its
// own result into frame.collected.
func (w *Walker) run(stack []*frame) error {
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !f.expanded {
			f.expanded = true
			f.descend = filter.Yes
			if w.Filter != nil {
				sr := w.Filter.Start(representative(f.pair))
				if sr.Match == filter.No && sr.Descend == filter.No {
					// contributes nothing: no Enter, no descent, no Leave.
					continue
				}
				f.descend = sr.Descend
				// Match No with descent: no Enter/Leave of its own, but its
				// children are still examined (and may be admitted).
				f.excluded = sr.Match == filter.No
			}
			if w.Dispatcher != nil && !f.excluded {
				w.Dispatcher.Enter(f.pair)
			}
			if w.Pipeline != nil && !f.excluded {
				w.Pipeline.StartElements(f.pair)
			}

			stack = append(stack, f)
			if f.descend != filter.No {
				childPairs := zip(childrenOf(f.pair.Old), childrenOf(f.pair.New))
				for i := len(childPairs) - 1; i >= 0; i-- {
					stack = append(stack, &frame{pair: childPairs[i], parent: f})
				}
			}
			continue
		}

		out := f.collected
		if w.Dispatcher != nil && !f.excluded {
			ds, err := w.Dispatcher.Leave(f.pair)
			if err != nil {
				return err
			}
			out = append(out, ds...)
		}
		if w.Pipeline != nil && !f.excluded {
			rewritten, err := w.Pipeline.Run(f.pair, out)
			if err != nil {
				return err
			}
			out = rewritten
			w.Pipeline.EndElements(f.pair)
		}
		if w.Filter != nil && f.descend != filter.No {
			fr := w.Filter.Finish(representative(f.pair))
			if fr.Match == filter.No && !f.excluded {
				out = nil
			}
		}
		f.parent.collected = append(f.parent.collected, out...)
	}
	return nil
}

func representative(pair element.Pair) *element.Node {
	if pair.Old != nil {
		return pair.Old
	}
	return pair.New
}

func childrenOf(n *element.Node) []*element.Node {
	if n == nil {
		return nil
	}
	return n.Children()
}

// zip merges two already-sorted (by element.Node.Compare) sibling
// sequences into pairs, matching an old element with a new one whenever
// their signatures (and kind) agree, and emitting a half-pair otherwise.
// Both inputs must already carry the forest's sibling ordering invariant.
func zip(old, nw []*element.Node) []element.Pair {
	var out []element.Pair
	i, j := 0, 0
	for i < len(old) && j < len(nw) {
		c := old[i].Compare(nw[j])
		switch {
		case c == 0:
			out = append(out, element.Pair{Old: old[i], New: nw[j]})
			i++
			j++
		case c < 0:
			out = append(out, element.Pair{Old: old[i], New: nil})
			i++
		default:
			out = append(out, element.Pair{Old: nil, New: nw[j]})
			j++
		}
	}
	for ; i < len(old); i++ {
		out = append(out, element.Pair{Old: old[i], New: nil})
	}
	for ; j < len(nw); j++ {
		out = append(out, element.Pair{Old: nil, New: nw[j]})
	}
	return out
}
