package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderRoundTrip(t *testing.T) {
	d := NewBuilder("method.removed").
		Named("Method removed").
		Described("a public method was removed").
		Classify(Source, Breaking).
		Classify(Binary, Breaking).
		Attach("method", "Foo.Bar()").
		Build()

	assert.Equal(t, "method.removed", d.Code())
	assert.Equal(t, Breaking, d.Classification().Max())
	v, ok := d.Attachment("method")
	require.True(t, ok)
	assert.Equal(t, "Foo.Bar()", v)
}

func TestResolveCriticalityUsesMaxSeverity(t *testing.T) {
	known := map[CriticalityName]Criticality{
		"error": {Name: "error", Level: 100},
		"info":  {Name: "info", Level: 10},
	}
	mapping := SeverityMapping{
		Equivalent:          "info",
		NonBreaking:         "info",
		PotentiallyBreaking: "error",
		Breaking:            "error",
	}
	d := NewBuilder("x").Classify(Source, NonBreaking).Classify(Binary, PotentiallyBreaking).Build()
	resolved := ResolveCriticality(d, mapping, known)
	assert.Equal(t, CriticalityName("error"), resolved.Criticality().Name)
}

func TestResolveCriticalityDoesNotOverrideTransformOverride(t *testing.T) {
	known := map[CriticalityName]Criticality{
		"ignore": {Name: "ignore", Level: 0},
		"error":  {Name: "error", Level: 100},
	}
	mapping := SeverityMapping{
		Equivalent: "ignore", NonBreaking: "ignore",
		PotentiallyBreaking: "error", Breaking: "error",
	}
	d := NewBuilder("x").Classify(Source, Breaking).WithCriticality(known["ignore"]).Build()
	resolved := ResolveCriticality(d, mapping, known)
	assert.Equal(t, CriticalityName("ignore"), resolved.Criticality().Name)
}

func TestSeverityMappingTotality(t *testing.T) {
	known := map[CriticalityName]Criticality{"error": {Name: "error", Level: 1}}
	incomplete := SeverityMapping{Equivalent: "error"}
	assert.False(t, incomplete.Total(known))

	complete := SeverityMapping{
		Equivalent: "error", NonBreaking: "error",
		PotentiallyBreaking: "error", Breaking: "error",
	}
	assert.True(t, complete.Total(known))
}

func TestHashIsStableAndContentSensitive(t *testing.T) {
	d1 := NewBuilder("x").Classify(Source, Breaking).Build()
	d2 := NewBuilder("x").Classify(Source, Breaking).Build()
	h1, err := d1.Hash()
	require.NoError(t, err)
	h2, err := d2.Hash()
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	d3 := NewBuilder("x").Classify(Source, NonBreaking).Build()
	h3, err := d3.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)
}

func TestHashSetOrderSensitive(t *testing.T) {
	a := NewBuilder("a").Build()
	b := NewBuilder("b").Build()
	h1, err := HashSet([]Difference{a, b})
	require.NoError(t, err)
	h2, err := HashSet([]Difference{b, a})
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
