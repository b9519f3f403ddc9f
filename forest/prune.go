package forest

import "github.com/viant/apidiff/element"

// supplementary reports whether n's provenance is one of the supplementary
// archive names (anything not in primaries).
func supplementary(n *element.Node, primaries map[element.Archive]bool) bool {
	return !primaries[n.Archive()]
}

// Prune removes supplementary elements that are not reachable from a
// primary element through a "moving-to-api" use-site. It
// walks outward from every primary node along moves-to-api edges, marks
// everything it reaches, and then detaches any supplementary node that was
// never marked by removing it from its parent's child set. Pruning a
// forest that has already been pruned is a no-op (every remaining
// supplementary node is, by construction, already reachable).
func Prune(f *Forest, primaries map[element.Archive]bool) {
	if f == nil {
		return
	}
	reached := make(map[element.ID]bool)
	var stack []*element.Node

	markRoot := func(n *element.Node) {
		if !reached[n.ID()] {
			reached[n.ID()] = true
			stack = append(stack, n)
		}
	}

	for _, root := range f.Roots {
		if !supplementary(root, primaries) {
			markRoot(root)
		}
	}

	// BFS/DFS over moves-to-api edges (outgoing references and structural
	// children) starting from every reached primary node, propagating
	// archive ownership onto supplementary elements retained this way.
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, child := range n.Children() {
			visitEdge(n, child, element.EdgeContains, reached, &stack, primaries)
		}
		for _, ref := range n.References() {
			if !ref.Kind.MovesToAPI() {
				continue
			}
			target := f.Arena.ReferenceTarget(ref)
			if target == nil {
				continue
			}
			visitEdge(n, target, ref.Kind, reached, &stack, primaries)
		}
	}

	pruneUnreached(f, reached, primaries)
}

func visitEdge(owner, target *element.Node, kind element.EdgeKind, reached map[element.ID]bool, stack *[]*element.Node, primaries map[element.Archive]bool) {
	if !kind.MovesToAPI() {
		return
	}
	if reached[target.ID()] {
		return
	}
	reached[target.ID()] = true
	if supplementary(target, primaries) {
		// retained by inheritance from a primary (or already-retained
		// supplementary) owner: its recorded archive becomes the
		// owner's.
		target.SetArchive(owner.Archive())
		target.SetInAPIThroughUse(true)
	}
	*stack = append(*stack, target)
}

// pruneUnreached removes supplementary nodes that were never reached from
// the child sets of their parents, and from the forest's root list.
func pruneUnreached(f *Forest, reached map[element.ID]bool, primaries map[element.Archive]bool) {
	var keepRoots []*element.Node
	for _, root := range f.Roots {
		if keepNode(root, reached, primaries) {
			keepRoots = append(keepRoots, root)
		}
	}
	f.Roots = keepRoots
}

// keepNode reports whether n should survive pruning, and recursively
// detaches any unreached supplementary descendants in place. Children are
// always filtered first: a supplementary node that was never itself
// reached (a package or namespace node no reference ever points at
// directly) still survives as long as at least one of its descendants did,
// since it is the only attachment point that descendant has left once its
// own unreached siblings are gone.
func keepNode(n *element.Node, reached map[element.ID]bool, primaries map[element.Archive]bool) bool {
	anyChildKept := false
	n.FilterChildren(func(child *element.Node) bool {
		keep := keepNode(child, reached, primaries)
		if keep {
			anyChildKept = true
		}
		return keep
	})
	if !supplementary(n, primaries) || reached[n.ID()] {
		return true
	}
	return anyChildKept
}
