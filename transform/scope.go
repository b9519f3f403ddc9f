package transform

import (
	"encoding/json"
	"fmt"

	"github.com/viant/apidiff/diff"
	"github.com/viant/apidiff/element"
	"github.com/viant/apidiff/match"
)

// scopeOptions is the "scope" transform's options: an element matcher
// expression per side (new defaults to old when omitted), restricting
// every difference this transform sees to pairs that match.
type scopeOptions struct {
	Old string `json:"old"`
	New string `json:"new"`
}

func init() {
	Register("scope", func(options json.RawMessage) (Transform, error) {
		var opts scopeOptions
		if len(options) > 0 {
			if err := json.Unmarshal(options, &opts); err != nil {
				return nil, fmt.Errorf("transform: decoding scope options: %w", err)
			}
		}
		newExpr := opts.New
		if newExpr == "" {
			newExpr = opts.Old
		}
		recipe, err := match.NewPairRecipe(opts.Old, newExpr)
		if err != nil {
			return nil, err
		}
		return newScope(recipe), nil
	})
}

// scope drops every difference raised on a pair its recipe doesn't match,
// leaving every other difference untouched.
type scope struct {
	recipe *match.PairRecipe
}

func newScope(recipe *match.PairRecipe) *scope { return &scope{recipe: recipe} }

func (s *scope) Interested(string) bool { return true }

func (s *scope) Apply(pair element.Pair, d diff.Difference) (Outcome, error) {
	if s.recipe.Matches(pair) {
		return Keeping(), nil
	}
	return Replacing(), nil
}
