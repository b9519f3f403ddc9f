package match

import (
	"github.com/viant/apidiff/element"
	"github.com/viant/apidiff/filter"
)

// Recipe is a compiled predicate expression, produced by Parse. It is
// stateless and safe to reuse across many filter instantiations and many
// runs.
type Recipe struct {
	source string
	root   node
}

// Parse compiles an expression string into a Recipe. The grammar supports
// "kind"/"name" comparisons against string literals using ==, != and the
// regular-expression operator =~, combined with &&, || and ! and grouped
// with parentheses. An empty expression compiles to a Recipe that matches
// every element.
func Parse(expr string) (*Recipe, error) {
	root, err := parse(expr)
	if err != nil {
		return nil, err
	}
	return &Recipe{source: expr, root: root}, nil
}

// MustParse is Parse, panicking on error. Meant for package-level recipe
// literals in tests and static pipeline wiring, not for user input.
func MustParse(expr string) *Recipe {
	r, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return r
}

// String returns the original expression text the recipe was compiled
// from.
func (r *Recipe) String() string { return r.source }

// Match evaluates the compiled predicate against a single element.
func (r *Recipe) Match(n *element.Node) bool {
	if n == nil {
		return false
	}
	return r.root.eval(n)
}

// FilterFor produces a tree filter that admits exactly the elements this
// recipe matches, for use against a forest produced by the named archive
// analyzer. The analyzer name is accepted so back-end specific recipes can
// be layered on in the future; the base recipe is analyzer-agnostic and
// ignores it.
func (r *Recipe) FilterFor(analyzerName string) filter.Filter {
	return filter.FromPredicate(func(n *element.Node) bool {
		return r.Match(n)
	})
}

// PairRecipe binds two recipes, one for each side of a comparison, used by
// the transform pipeline to decide whether a transform applies to a given
// (old, new) element pair. Either side may be nil, in which case that side
// of the pair is treated as automatically non-matching.
type PairRecipe struct {
	Old *Recipe
	New *Recipe
}

// NewPairRecipe builds a PairRecipe from old/new expression strings. An
// empty string compiles to a recipe that matches everything on that side.
func NewPairRecipe(oldExpr, newExpr string) (*PairRecipe, error) {
	oldRecipe, err := Parse(oldExpr)
	if err != nil {
		return nil, err
	}
	newRecipe, err := Parse(newExpr)
	if err != nil {
		return nil, err
	}
	return &PairRecipe{Old: oldRecipe, New: newRecipe}, nil
}

// Matches reports whether pr applies to the pair: each present side must
// match its own recipe, and at least one side must be present.
func (pr *PairRecipe) Matches(pair element.Pair) bool {
	if pair.IsEmpty() {
		return false
	}
	if pair.Old != nil && (pr.Old == nil || !pr.Old.Match(pair.Old)) {
		return false
	}
	if pair.New != nil && (pr.New == nil || !pr.New.Match(pair.New)) {
		return false
	}
	return true
}
