package filter

import "github.com/viant/apidiff/element"

// combineFn folds two Tri match results into one.
type combineFn func(a, b Tri) Tri

// composite is the shared machinery behind Intersect and Union: it fans a
// single Start/Finish call out to every sub-filter and folds their results
// with combine. Descend is always folded with Or — if any sub-filter wants
// to see an element's children to make its own decision, the composite
// must descend too, even if the combined match is already settled No,
// because a later sub-filter's Finish still needs to run paired with its
// own Start.
type composite struct {
	subs    []Filter
	combine combineFn
	// per-node, per-sub last known match, kept so FinishAll can fold a
	// sub's own terminal resolution together with the matches the other
	// subs already settled during Start/Finish.
	last map[element.ID][]Tri
}

func newComposite(combine combineFn, subs ...Filter) *composite {
	return &composite{subs: subs, combine: combine, last: make(map[element.ID][]Tri)}
}

func (c *composite) Start(n *element.Node) StartResult {
	matches := make([]Tri, len(c.subs))
	descend := No
	for i, s := range c.subs {
		r := s.Start(n)
		matches[i] = r.Match
		descend = descend.Or(r.Descend)
	}
	c.last[n.ID()] = matches
	return StartResult{Match: c.fold(matches), Descend: descend}
}

func (c *composite) Finish(n *element.Node) FinishResult {
	matches := c.last[n.ID()]
	if matches == nil {
		matches = make([]Tri, len(c.subs))
		for i := range matches {
			matches[i] = Undecided
		}
	}
	for i, s := range c.subs {
		r := s.Finish(n)
		matches[i] = r.Match
	}
	c.last[n.ID()] = matches
	return FinishResult{Match: c.fold(matches)}
}

func (c *composite) FinishAll() map[element.ID]Tri {
	out := make(map[element.ID]Tri)
	subFinal := make([]map[element.ID]Tri, len(c.subs))
	for i, s := range c.subs {
		subFinal[i] = s.FinishAll()
	}
	for id, matches := range c.last {
		resolved := make([]Tri, len(matches))
		copy(resolved, matches)
		for i := range c.subs {
			if v, ok := subFinal[i][id]; ok {
				resolved[i] = v
			}
		}
		if v := c.fold(resolved); v != Undecided {
			out[id] = v
		}
	}
	return out
}

func (c *composite) fold(matches []Tri) Tri {
	if len(matches) == 0 {
		return Yes
	}
	acc := matches[0]
	for _, m := range matches[1:] {
		acc = c.combine(acc, m)
	}
	return acc
}

// Intersect returns a filter matching an element iff every sub-filter
// matches it.
func Intersect(subs ...Filter) Filter {
	return newComposite(func(a, b Tri) Tri { return a.And(b) }, subs...)
}

// Union returns a filter matching an element iff at least one sub-filter
// matches it.
func Union(subs ...Filter) Filter {
	return newComposite(func(a, b Tri) Tri { return a.Or(b) }, subs...)
}
