package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

func init() {
	Register("stdout", func(options json.RawMessage) (Reporter, error) {
		return &textReporter{w: os.Stdout}, nil
	})
}

// textReporter renders each difference as a single line naming its
// criticality, code and name, in visit order. Registered under "stdout"
// as this kernel's one concrete, always-available reporter; cmd/apidiff
// builds every other configured reporter through Lookup the same way.
type textReporter struct {
	w io.Writer
}

func (r *textReporter) Report(rep Report) error {
	for _, d := range rep.Differences {
		if _, err := fmt.Fprintf(r.w, "[%s] %s %s: %s\n", d.Criticality().Name, d.Classification().Max(), d.Code(), d.Name()); err != nil {
			return err
		}
	}
	return nil
}

func (r *textReporter) Close() error { return nil }
