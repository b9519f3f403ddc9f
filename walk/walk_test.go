package walk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/apidiff/check"
	"github.com/viant/apidiff/diff"
	"github.com/viant/apidiff/element"
	"github.com/viant/apidiff/filter"
	"github.com/viant/apidiff/forest"
)

func buildForest(analyzer string, names ...string) *forest.Forest {
	f := forest.New(analyzer)
	for _, name := range names {
		n := f.Arena.NewNode(element.KindType, name, element.NewSignature(name), "primary")
		f.AddRoot(n)
	}
	return f
}

func TestZipMatchesCommonSiblingsAndHalvesTheRest(t *testing.T) {
	old := buildForest("goapi", "A", "B", "C")
	nw := buildForest("goapi", "B", "C", "D")

	var trace []string
	c := &check.Func{
		InterestKinds: []element.Kind{element.KindType},
		OnEnter: func(pair element.Pair) error {
			switch {
			case pair.Old != nil && pair.New != nil:
				trace = append(trace, "matched:"+pair.String())
			case pair.Old != nil:
				trace = append(trace, "removed:"+pair.String())
			default:
				trace = append(trace, "added:"+pair.String())
			}
			return nil
		},
	}
	w := &Walker{Dispatcher: check.NewDispatcher([]check.Check{c})}
	_, err := w.Pair(old, nw)
	require.NoError(t, err)

	// Siblings are visited in signature (digest) order, not alphabetical
	// order: D's digest sorts between B's and C's.
	assert.Equal(t, []string{"removed:A", "matched:B", "added:D", "matched:C"}, trace)
}

func TestPairHandlesEmptyForests(t *testing.T) {
	w := &Walker{Dispatcher: check.NewDispatcher(nil)}
	out, err := w.Pair(forest.New("goapi"), forest.New("goapi"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPairHandlesOneSideNil(t *testing.T) {
	w := &Walker{Dispatcher: check.NewDispatcher(nil)}
	out, err := w.Pair(buildForest("goapi", "A"), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestFilterNoExcludesElementFromChecks(t *testing.T) {
	old := buildForest("goapi", "Hidden", "Visible")
	nw := buildForest("goapi", "Hidden", "Visible")

	var entered []string
	c := &check.Func{
		InterestKinds: []element.Kind{element.KindType},
		OnEnter: func(pair element.Pair) error {
			entered = append(entered, pair.String())
			return nil
		},
	}
	f := filter.FromPredicate(func(n *element.Node) bool { return n.Name() != "Hidden" })
	w := &Walker{Dispatcher: check.NewDispatcher([]check.Check{c}), Filter: f}
	_, err := w.Pair(old, nw)
	require.NoError(t, err)
	assert.Equal(t, []string{"Visible"}, entered)
}

func TestRemovedElementProducesDescendingCheckDifferences(t *testing.T) {
	old := buildForest("goapi", "Gone")
	nw := buildForest("goapi")

	c := &check.Func{
		InterestKinds: []element.Kind{element.KindType},
		Descending:    true,
		OnLeave: func(pair element.Pair) ([]diff.Difference, error) {
			return []diff.Difference{diff.NewBuilder("type.removed").Build()}, nil
		},
	}
	w := &Walker{Dispatcher: check.NewDispatcher([]check.Check{c})}
	out, err := w.Pair(old, nw)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "type.removed", out[0].Code())
}
