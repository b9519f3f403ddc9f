// Package forest models the ordered set of root elements produced by one
// archive analyzer for one side (old or new) of a comparison.
package forest

import "github.com/viant/apidiff/element"

// Forest is an ordered set of root elements for one API, plus the name of
// the archive analyzer that produced it, so a matcher can ask "give me a
// filter for this forest's back-end".
type Forest struct {
	Arena    *element.Arena
	Roots    []*element.Node
	Analyzer string
}

// New creates an empty forest backed by a fresh arena, for a given
// analyzer name.
func New(analyzerName string) *Forest {
	return &Forest{Arena: element.NewArena(), Analyzer: analyzerName}
}

// AddRoot appends a root element, keeping Roots sorted by the same
// comparator used for sibling ordering elsewhere.
func (f *Forest) AddRoot(n *element.Node) {
	f.Roots = append(f.Roots, n)
	sortNodes(f.Roots)
}

func sortNodes(nodes []*element.Node) {
	// insertion sort: root counts are small (one entry per top-level
	// package/module) and this keeps the dependency-free, stdlib-only
	// footprint consistent with the rest of the package.
	for i := 1; i < len(nodes); i++ {
		j := i
		for j > 0 && nodes[j-1].Compare(nodes[j]) > 0 {
			nodes[j-1], nodes[j] = nodes[j], nodes[j-1]
			j--
		}
	}
}

// Merge combines multiple forests produced by the same analyzer (e.g. one
// per detected project root) into a single forest, concatenating and
// re-sorting their root sets. Each input forest's arena must be the same
// instance — back-ends are expected to share one arena across all the
// partial forests they build for a single side (see backend.Analyzer).
func Merge(parts ...*Forest) *Forest {
	if len(parts) == 0 {
		return nil
	}
	merged := &Forest{Arena: parts[0].Arena, Analyzer: parts[0].Analyzer}
	for _, p := range parts {
		merged.Roots = append(merged.Roots, p.Roots...)
	}
	sortNodes(merged.Roots)
	return merged
}
