// Package check implements the lock-step check dispatcher:
// checks are stateful visitors with an interest set, invoked paired
// enter/leave on every element pair the walker visits.
package check

import (
	"github.com/viant/apidiff/diff"
	"github.com/viant/apidiff/element"
)

// Check is a stateful visitor that produces raw differences from paired
// element visits. Enter is called before any child of the pair is visited;
// Leave is called after, and returns the raw differences this check
// contributes for this pair.
type Check interface {
	// Interest lists the element kinds this check wants to visit.
	Interest() []element.Kind
	// DescendOnNonExisting reports whether this check should still fire
	// when one side of the pair is missing (a half-pair).
	DescendOnNonExisting() bool
	Enter(pair element.Pair) error
	Leave(pair element.Pair) ([]diff.Difference, error)
}

// Func adapts a stateless enter/leave pair of closures into a Check, for
// checks with no per-traversal state to hold (most format-agnostic
// structural checks fit this shape).
type Func struct {
	InterestKinds []element.Kind
	Descending    bool
	OnEnter       func(pair element.Pair) error
	OnLeave       func(pair element.Pair) ([]diff.Difference, error)
}

func (f *Func) Interest() []element.Kind   { return f.InterestKinds }
func (f *Func) DescendOnNonExisting() bool { return f.Descending }
func (f *Func) Enter(pair element.Pair) error {
	if f.OnEnter == nil {
		return nil
	}
	return f.OnEnter(pair)
}
func (f *Func) Leave(pair element.Pair) ([]diff.Difference, error) {
	if f.OnLeave == nil {
		return nil, nil
	}
	return f.OnLeave(pair)
}
