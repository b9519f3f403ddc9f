package transform

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/apidiff/element"
)

func TestScopeTransformRegistered(t *testing.T) {
	factory := Lookup("scope")
	require.NotNil(t, factory)
}

func TestScopeDropsDifferencesOutsideMatcher(t *testing.T) {
	factory := Lookup("scope")
	require.NotNil(t, factory)
	opts, err := json.Marshal(scopeOptions{Old: `kind == "method"`})
	require.NoError(t, err)
	tr, err := factory(opts)
	require.NoError(t, err)

	arena := element.NewArena()
	method := arena.NewNode(element.KindMethod, "Grow", element.NewSignature("Grow"), "old")
	field := arena.NewNode(element.KindField, "Name", element.NewSignature("Name"), "old")

	d := justBuild("x")

	outcome, err := tr.Apply(element.Pair{Old: method, New: method}, d)
	require.NoError(t, err)
	assert.Equal(t, Keep, outcome.Resolution)

	outcome, err = tr.Apply(element.Pair{Old: field, New: field}, d)
	require.NoError(t, err)
	assert.Equal(t, Replace, outcome.Resolution)
	assert.Empty(t, outcome.Replaced)
}
