// Package pipeline loads and validates the declarative configuration a
// run is driven from: which extensions are admitted, how transforms are
// grouped into ordered blocks, and how severities map onto user-defined
// criticality levels.
package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/viant/apidiff/diff"
	"github.com/viant/apidiff/kerr"
)

// ExtensionConfig is one configured extension instance: its registered
// type name, an optional instance id (defaulting to the type name when
// omitted, so a single-instance extension need not name itself), and its
// own raw options subtree, deferred to the extension's own Initialize.
type ExtensionConfig struct {
	Type    string          `json:"type" yaml:"type"`
	ID      string          `json:"id,omitempty" yaml:"id,omitempty"`
	Options json.RawMessage `json:"configuration,omitempty" yaml:"configuration,omitempty"`
}

// effectiveID returns ID if set, else Type.
func (e ExtensionConfig) effectiveID() string {
	if e.ID != "" {
		return e.ID
	}
	return e.Type
}

// EffectiveID is the public form of effectiveID, used by the driver to key
// its per-analyzer source sets and by extension registries to name the
// instance they are constructing.
func (e ExtensionConfig) EffectiveID() string { return e.effectiveID() }

// Config is a fully loaded, but not yet validated, pipeline configuration.
type Config struct {
	Analyzers       []ExtensionConfig `json:"analyzers,omitempty" yaml:"analyzers,omitempty"`
	FilterProviders []ExtensionConfig `json:"filters,omitempty" yaml:"filters,omitempty"`
	Transforms      []ExtensionConfig `json:"transforms,omitempty" yaml:"transforms,omitempty"`
	Reporters       []ExtensionConfig `json:"reporters,omitempty" yaml:"reporters,omitempty"`
	Matchers        []ExtensionConfig `json:"matchers,omitempty" yaml:"matchers,omitempty"`

	// Blocks is the ordered list of transform blocks, each a list of
	// transform extension ids run together to a fixpoint.
	Blocks [][]string `json:"blocks,omitempty" yaml:"blocks,omitempty"`

	// CriticalitySet is the full set of user-defined criticality levels
	// a severity or a transform override may resolve to.
	CriticalitySet []diff.Criticality `json:"criticalities,omitempty" yaml:"criticalities,omitempty"`

	// SeverityMapping assigns each of the four severities a default
	// criticality name; must be Total against CriticalitySet.
	SeverityMapping diff.SeverityMapping `json:"severityMapping,omitempty" yaml:"severityMapping,omitempty"`
}

// Validate checks structural invariants that must hold before any
// analysis begins: the severity mapping must be total against the
// criticality set, and every id referenced from a transform block must
// name a configured transform.
func (c *Config) Validate() error {
	known := make(map[diff.CriticalityName]diff.Criticality, len(c.CriticalitySet))
	for _, crit := range c.CriticalitySet {
		known[crit.Name] = crit
	}
	if !c.SeverityMapping.Total(known) {
		return fmt.Errorf("%w: severity mapping is not total over the configured criticality set", kerr.ErrConfigurationInvalid)
	}

	transformIDs := make(map[string]bool, len(c.Transforms))
	for _, t := range c.Transforms {
		transformIDs[t.effectiveID()] = true
	}
	for bi, block := range c.Blocks {
		for _, id := range block {
			if !transformIDs[id] {
				return fmt.Errorf("%w: block %d references unknown transform id %q", kerr.ErrConfigurationInvalid, bi, id)
			}
		}
	}
	return nil
}
