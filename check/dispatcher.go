package check

import (
	"fmt"

	"github.com/viant/apidiff/diff"
	"github.com/viant/apidiff/element"
	"github.com/viant/apidiff/kerr"
)

// frame tracks the checks active for one paired element visit, from Enter
// to its matching Leave, so Dispatcher can maintain balanced
// enter/leave lifecycles even though several checks may be interested in
// the same pair.
type frame struct {
	pair            element.Pair
	active          []Check
	isHalfOwner     bool
	pendingErrors   []error
	annotationDiffs []diff.Difference
}

// Dispatcher drives the lock-step traversal's per-pair check visits,
// switching into "non-existence mode" whenever either side of a pair is
// absent, and rolling annotation differences up into the
// containing element's report rather than emitting them as independent
// reports.
type Dispatcher struct {
	checksByKind map[element.Kind][]Check
	descending   map[element.Kind][]Check

	stack             []frame
	nonExistenceDepth int
}

// NewDispatcher indexes checks by interest kind: every check is indexed
// for full pairs, and those that also opted into descending on a
// non-existing side are indexed a second time as the only checks that
// fire inside a half-pair branch.
func NewDispatcher(checks []Check) *Dispatcher {
	d := &Dispatcher{
		checksByKind: make(map[element.Kind][]Check),
		descending:   make(map[element.Kind][]Check),
	}
	for _, c := range checks {
		for _, k := range c.Interest() {
			d.checksByKind[k] = append(d.checksByKind[k], c)
			if c.DescendOnNonExisting() {
				d.descending[k] = append(d.descending[k], c)
			}
		}
	}
	return d
}

// Enter activates every check interested in pair's kind (or, while in
// non-existence mode, only those that opted into descending on a missing
// side), calling each one's Enter hook.
func (d *Dispatcher) Enter(pair element.Pair) {
	kind := pair.Kind()
	inNonExistence := d.nonExistenceDepth > 0 || pair.IsHalf()

	var active []Check
	if inNonExistence {
		active = d.descending[kind]
	} else {
		active = d.checksByKind[kind]
	}

	f := frame{pair: pair, active: active, isHalfOwner: pair.IsHalf()}
	for _, c := range active {
		if err := c.Enter(pair); err != nil {
			f.pendingErrors = append(f.pendingErrors, fmt.Errorf("%w: check enter failed for %s: %v", kerr.ErrCheckFailure, pair.String(), err))
		}
	}
	if f.isHalfOwner {
		d.nonExistenceDepth++
	}
	d.stack = append(d.stack, f)
}

// Leave calls Leave on every check activated by the matching Enter,
// collects the raw differences they produce (plus any annotation
// differences bubbled up from children), and pops the frame. Annotation
// pairs never surface their own differences to the caller: they are
// folded into the parent frame's annotationDiffs instead.
func (d *Dispatcher) Leave(pair element.Pair) ([]diff.Difference, error) {
	if len(d.stack) == 0 {
		return nil, fmt.Errorf("check: Leave called with no matching Enter for %s", pair.String())
	}
	f := d.stack[len(d.stack)-1]
	d.stack = d.stack[:len(d.stack)-1]

	var out []diff.Difference
	for _, c := range f.active {
		ds, err := c.Leave(pair)
		if err != nil {
			out = append(out, diff.NewBuilder("check.failure").
				Named("check failure").
				Described(fmt.Sprintf("check failed while leaving %s: %v", pair.String(), err)).
				Classify(diff.Other, diff.Breaking).
				Attach("element", pair.String()).
				Build())
			continue
		}
		out = append(out, ds...)
	}
	for _, err := range f.pendingErrors {
		out = append(out, diff.NewBuilder("check.failure").
			Named("check failure").
			Described(err.Error()).
			Classify(diff.Other, diff.Breaking).
			Attach("element", pair.String()).
			Build())
	}
	out = append(out, f.annotationDiffs...)

	if f.isHalfOwner {
		d.nonExistenceDepth--
	}

	if pair.Kind().IsAnnotation() {
		if len(d.stack) > 0 {
			parent := &d.stack[len(d.stack)-1]
			parent.annotationDiffs = append(parent.annotationDiffs, out...)
		}
		return nil, nil
	}
	return out, nil
}

// Depth returns the current nesting depth of active frames, useful for
// tests asserting balanced lifecycles.
func (d *Dispatcher) Depth() int { return len(d.stack) }
