package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/apidiff/element"
)

func TestPresenceCheckFlagsRemovalAndAddition(t *testing.T) {
	arena := element.NewArena()
	oldNode := arena.NewNode(element.KindMethod, "Grow", element.NewSignature("Grow(int) error"), "primary")
	newNode := arena.NewNode(element.KindMethod, "Shrink", element.NewSignature("Shrink(int) error"), "primary")

	c := presenceCheck("method.removed", "method.added", element.KindMethod)
	require.Contains(t, c.Interest(), element.KindMethod)
	assert.True(t, c.DescendOnNonExisting())

	removed, err := c.Leave(element.Pair{Old: oldNode})
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "method.removed", removed[0].Code())

	added, err := c.Leave(element.Pair{New: newNode})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "method.added", added[0].Code())

	unchanged, err := c.Leave(element.Pair{Old: oldNode, New: newNode})
	require.NoError(t, err)
	assert.Empty(t, unchanged)
}

func TestDefaultChecksCoverTypeMethodAndField(t *testing.T) {
	checks := defaultChecks()
	require.Len(t, checks, 3)
	var kinds []element.Kind
	for _, c := range checks {
		kinds = append(kinds, c.Interest()...)
	}
	assert.Contains(t, kinds, element.KindType)
	assert.Contains(t, kinds, element.KindMethod)
	assert.Contains(t, kinds, element.KindField)
}
