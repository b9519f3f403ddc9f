package pipeline

import (
	"fmt"

	"github.com/viant/apidiff/diff"
)

// decodeSeverityMapping converts the wire representation (severity name ->
// criticality name) into a diff.SeverityMapping, rejecting any key that
// does not name one of the four known severities.
func decodeSeverityMapping(wire map[string]string) (diff.SeverityMapping, error) {
	out := make(diff.SeverityMapping, len(wire))
	for key, criticalityName := range wire {
		sev, ok := parseSeverity(key)
		if !ok {
			return nil, fmt.Errorf("unknown severity %q", key)
		}
		out[sev] = diff.CriticalityName(criticalityName)
	}
	return out, nil
}

func parseSeverity(name string) (diff.Severity, bool) {
	for _, s := range diff.AllSeverities {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}
