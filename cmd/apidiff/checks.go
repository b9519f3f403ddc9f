package main

import (
	"github.com/viant/apidiff/check"
	"github.com/viant/apidiff/diff"
	"github.com/viant/apidiff/element"
)

// defaultChecks returns the surface-comparison checks this binary runs
// when none are wired in some other way: a type, method or field present
// on only one side is a removal or an addition, classified breaking or
// non-breaking respectively on the source dimension. These are examples
// of the check.Check contract, not part of the comparison kernel itself,
// so a caller embedding the driver in a larger tool is free to supply an
// entirely different set.
func defaultChecks() []check.Check {
	return []check.Check{
		presenceCheck("type.removed", "type.added", element.KindType),
		presenceCheck("method.removed", "method.added", element.KindMethod),
		presenceCheck("field.removed", "field.added", element.KindField),
	}
}

// presenceCheck builds a check.Check that fires removedCode when a kind
// element exists only on the old side and addedCode when it exists only
// on the new side, leaving elements present on both sides to whatever
// finer-grained checks are configured alongside it.
func presenceCheck(removedCode, addedCode string, kind element.Kind) check.Check {
	return &check.Func{
		InterestKinds: []element.Kind{kind},
		Descending:    true,
		OnLeave: func(pair element.Pair) ([]diff.Difference, error) {
			if !pair.IsHalf() {
				return nil, nil
			}
			if pair.Old != nil {
				d := diff.NewBuilder(removedCode).
					Named(pair.Old.Name() + " removed").
					Classify(diff.Source, diff.Breaking).
					Build()
				return []diff.Difference{d}, nil
			}
			d := diff.NewBuilder(addedCode).
				Named(pair.New.Name() + " added").
				Classify(diff.Source, diff.NonBreaking).
				Build()
			return []diff.Difference{d}, nil
		},
	}
}
