package filter

import "github.com/viant/apidiff/element"

// StartResult is returned by Filter.Start for one element.
type StartResult struct {
	Match   Tri
	Descend Tri
}

// FinishResult is returned by Filter.Finish for one element.
type FinishResult struct {
	Match Tri
}

// Filter is queried during traversal to decide whether an element (and its
// subtree) is admitted into the walk. Start is called on entry; Finish is
// called on leave, exactly once per Start that requested descent — paired
// and LIFO-nested, mirroring the dispatcher's own enter/leave discipline.
// FinishAll resolves any elements still undecided once the whole
// traversal is complete.
type Filter interface {
	Start(n *element.Node) StartResult
	Finish(n *element.Node) FinishResult
	// FinishAll returns the terminal resolution for every element whose
	// Start/Finish left it Undecided. Implementations that never produce
	// Undecided results may return nil.
	FinishAll() map[element.ID]Tri
}

// Always is a filter that admits every element and always descends,
// resolving nothing at FinishAll. Useful as the identity element of an
// Intersect chain and in tests.
type Always struct{}

func (Always) Start(*element.Node) StartResult   { return StartResult{Match: Yes, Descend: Yes} }
func (Always) Finish(*element.Node) FinishResult { return FinishResult{Match: Yes} }
func (Always) FinishAll() map[element.ID]Tri     { return nil }
