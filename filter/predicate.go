package filter

import "github.com/viant/apidiff/element"

// PredicateFn decides a single element's admission from its attributes
// alone. It never needs deferred resolution.
type PredicateFn func(n *element.Node) bool

// predicate adapts a plain boolean predicate into the Filter protocol: it
// always descends (so the predicate gets a chance to run on every
// descendant too) and never leaves anything Undecided.
type predicate struct{ fn PredicateFn }

// FromPredicate builds a Filter from a plain per-element boolean test.
func FromPredicate(fn PredicateFn) Filter { return predicate{fn: fn} }

func (p predicate) Start(n *element.Node) StartResult {
	return StartResult{Match: FromBool(p.fn(n)), Descend: Yes}
}

func (p predicate) Finish(n *element.Node) FinishResult {
	return FinishResult{Match: FromBool(p.fn(n))}
}
func (predicate) FinishAll() map[element.ID]Tri { return nil }

// deferred is a filter for the common "include a container iff any child
// is included" shape: it defers every element's match to Finish, resolving
// a node to Yes iff at least one of its children resolved to Yes (tracked
// in childYes, which an admitted child sets for its parent).
type deferred struct {
	leafMatch PredicateFn
	childYes  map[element.ID]bool
}

// IncludeContainerIfAnyChildIncluded builds a filter where leafMatch
// decides leaf admission directly and any ancestor is admitted iff it has
// at least one admitted descendant, resolved on Finish from the results
// its children reported: a leaf reports at Start (it does not request
// descent, so it gets no Finish), a container at its own Finish, and both
// happen before their parent's Finish.
func IncludeContainerIfAnyChildIncluded(leafMatch PredicateFn) Filter {
	return &deferred{leafMatch: leafMatch, childYes: make(map[element.ID]bool)}
}

func (d *deferred) Start(n *element.Node) StartResult {
	if len(n.Children()) == 0 {
		matched := d.leafMatch(n)
		if parent := n.Parent(); matched && parent != nil {
			d.childYes[parent.ID()] = true
		}
		return StartResult{Match: FromBool(matched), Descend: No}
	}
	return StartResult{Match: Undecided, Descend: Yes}
}

func (d *deferred) Finish(n *element.Node) FinishResult {
	var matched bool
	if len(n.Children()) == 0 {
		matched = d.leafMatch(n)
	} else {
		matched = d.childYes[n.ID()]
	}
	if matched {
		if parent := n.Parent(); parent != nil {
			d.childYes[parent.ID()] = true
		}
	}
	return FinishResult{Match: FromBool(matched)}
}

func (d *deferred) FinishAll() map[element.ID]Tri { return nil }
