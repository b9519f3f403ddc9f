package transform

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/apidiff/diff"
	"github.com/viant/apidiff/element"
	"github.com/viant/apidiff/kerr"
)

func justBuild(code string) diff.Difference {
	return diff.NewBuilder(code).Classify(diff.Source, diff.Breaking).Build()
}

// escalate rewrites "method.removed" into "method.removed.escalated" once,
// then leaves it alone — a single-step fixpoint.
func escalate() *Func {
	done := false
	return &Func{
		InterestedFn: func(code string) bool { return code == "method.removed" },
		ApplyFn: func(pair element.Pair, d diff.Difference) (Outcome, error) {
			if done {
				return Keeping(), nil
			}
			done = true
			return Replacing(justBuild("method.removed.escalated")), nil
		},
	}
}

func TestBlockConvergesToFixpoint(t *testing.T) {
	b := &Block{Name: "escalation", Transforms: []Transform{escalate()}}
	out, err := b.Run(element.Pair{}, []diff.Difference{justBuild("method.removed")})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "method.removed.escalated", out[0].Code())
}

// oscillate swaps codeA and codeB back and forth forever: a genuine
// non-convergence.
func oscillate() *Func {
	return &Func{
		InterestedFn: func(code string) bool { return code == "a" || code == "b" },
		ApplyFn: func(pair element.Pair, d diff.Difference) (Outcome, error) {
			if d.Code() == "a" {
				return Replacing(justBuild("b")), nil
			}
			return Replacing(justBuild("a")), nil
		},
	}
}

func TestBlockNonConvergenceIsReported(t *testing.T) {
	b := &Block{Name: "oscillator", Transforms: []Transform{oscillate()}, MaxIterations: 4}
	_, err := b.Run(element.Pair{}, []diff.Difference{justBuild("a")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, kerr.ErrTransformNonConvergence))
}

func TestBlockDropsDifferenceOnReplaceWithNone(t *testing.T) {
	drop := &Func{
		InterestedFn: func(code string) bool { return code == "noise" },
		ApplyFn: func(element.Pair, diff.Difference) (Outcome, error) {
			return Replacing(), nil
		},
	}
	b := &Block{Name: "denoise", Transforms: []Transform{drop}}
	out, err := b.Run(element.Pair{}, []diff.Difference{justBuild("noise"), justBuild("kept")})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "kept", out[0].Code())
}

func TestBlockPerBlockCapIsIndependent(t *testing.T) {
	slow := &Block{Name: "slow", Transforms: []Transform{escalate()}, MaxIterations: 2}
	_, err := slow.Run(element.Pair{}, []diff.Difference{justBuild("method.removed")})
	require.NoError(t, err, "a single-step fixpoint must converge within a cap of 2: one pass rewrites, the next confirms")
}

func TestPipelineRunsBlocksInOrder(t *testing.T) {
	first := &Block{Name: "first", Transforms: []Transform{escalate()}}
	second := &Block{Name: "second", Transforms: []Transform{oscillate()}, MaxIterations: 2}
	p := &Pipeline{Blocks: []*Block{first}}
	out, err := p.Run(element.Pair{}, []diff.Difference{justBuild("method.removed")})
	require.NoError(t, err)
	assert.Equal(t, "method.removed.escalated", out[0].Code())

	p2 := &Pipeline{Blocks: []*Block{second}}
	_, err = p2.Run(element.Pair{}, []diff.Difference{justBuild("a")})
	assert.ErrorIs(t, err, kerr.ErrTransformNonConvergence)
}

type recordingTraversal struct {
	events []string
}

func (r *recordingTraversal) Interested(string) bool { return false }
func (r *recordingTraversal) Apply(element.Pair, diff.Difference) (Outcome, error) {
	return Keeping(), nil
}
func (r *recordingTraversal) StartTraversal()           { r.events = append(r.events, "start-traversal") }
func (r *recordingTraversal) StartElements(element.Pair) { r.events = append(r.events, "start-elements") }
func (r *recordingTraversal) EndElements(element.Pair)   { r.events = append(r.events, "end-elements") }
func (r *recordingTraversal) EndTraversal()              { r.events = append(r.events, "end-traversal") }

func TestPipelineNotifiesTraversalAwareTransformsOnce(t *testing.T) {
	rt := &recordingTraversal{}
	p := &Pipeline{Blocks: []*Block{
		{Name: "b1", Transforms: []Transform{rt}},
		{Name: "b2", Transforms: []Transform{rt}},
	}}
	p.StartTraversal()
	p.StartElements(element.Pair{})
	p.EndElements(element.Pair{})
	p.EndTraversal()
	assert.Equal(t, []string{"start-traversal", "start-elements", "end-elements", "end-traversal"}, rt.events)
}
