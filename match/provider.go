package match

import (
	"encoding/json"
	"fmt"

	"github.com/viant/apidiff/filter"
)

// recipeProviderOptions is the "recipe" filter provider's options shape: a
// single expression compiled by Parse and evaluated against every
// element, regardless of side.
type recipeProviderOptions struct {
	Expression string `json:"expression"`
}

func init() {
	filter.RegisterProvider("recipe", func(options []byte) (filter.Filter, error) {
		var opts recipeProviderOptions
		if len(options) > 0 {
			if err := json.Unmarshal(options, &opts); err != nil {
				return nil, fmt.Errorf("match: decoding recipe filter options: %w", err)
			}
		}
		r, err := Parse(opts.Expression)
		if err != nil {
			return nil, err
		}
		return r.FilterFor(""), nil
	})
}
