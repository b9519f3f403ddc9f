package transform

import (
	"github.com/viant/apidiff/diff"
	"github.com/viant/apidiff/element"
)

// Pipeline is an ordered sequence of blocks. Each block is run to its own
// fixpoint before the next block sees the result; there is no cross-block
// fixpoint — once a block settles, its output is final for this pair.
type Pipeline struct {
	Blocks []*Block
}

// Run threads ds through every block in order, returning the final
// difference set.
func (p *Pipeline) Run(pair element.Pair, ds []diff.Difference) ([]diff.Difference, error) {
	current := ds
	for _, b := range p.Blocks {
		out, err := b.Run(pair, current)
		if err != nil {
			return nil, err
		}
		current = out
	}
	return current, nil
}

// StartTraversal notifies every TraversalAware transform in the pipeline
// that a new comparison run is starting, before any element is visited.
func (p *Pipeline) StartTraversal() {
	p.forEachAware(func(ta TraversalAware) { ta.StartTraversal() })
}

// StartElements notifies every TraversalAware transform that pair is being
// entered, mirroring the check dispatcher's Enter.
func (p *Pipeline) StartElements(pair element.Pair) {
	p.forEachAware(func(ta TraversalAware) { ta.StartElements(pair) })
}

// EndElements notifies every TraversalAware transform that pair is being
// left, mirroring the check dispatcher's Leave. This is where Pipeline.Run
// is typically invoked for the pair's accumulated differences.
func (p *Pipeline) EndElements(pair element.Pair) {
	p.forEachAware(func(ta TraversalAware) { ta.EndElements(pair) })
}

// EndTraversal notifies every TraversalAware transform that the comparison
// run has finished.
func (p *Pipeline) EndTraversal() {
	p.forEachAware(func(ta TraversalAware) { ta.EndTraversal() })
}

func (p *Pipeline) forEachAware(fn func(TraversalAware)) {
	seen := make(map[TraversalAware]bool)
	for _, b := range p.Blocks {
		for _, t := range b.Transforms {
			if ta, ok := t.(TraversalAware); ok && !seen[ta] {
				seen[ta] = true
				fn(ta)
			}
		}
	}
}
