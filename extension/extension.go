// Package extension defines the contract a pluggable pipeline component
// is configured through, so the driver can wire up a run from a single,
// declarative configuration document without knowing the concrete Go type
// of any one extension. In this repository the archive analyzers
// implement it; filters, checks and transforms are built directly.
package extension

import "github.com/viant/apidiff/match"

// Context carries the run-scoped values an extension's Initialize needs:
// its raw options subtree from the pipeline configuration, the element
// matchers it was configured with, and an optional logger. The driver
// fills in Options only.
type Context struct {
	// Options is the extension's own configuration block, already
	// decoded from the run's configuration document but not yet
	// interpreted — Initialize is expected to unmarshal it into whatever
	// shape the extension expects.
	Options []byte
	// Matchers are the element matcher recipes this extension was
	// configured with (a filter-provider's inclusion/exclusion recipes,
	// or a transform block member's pair-matching recipe).
	Matchers []*match.Recipe
	Logger   Logger
}

// Logger is the minimal logging surface an extension can be given; a
// *log.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Configurable is the contract a pluggable extension implements so the
// driver can wire it up from a declarative configuration document without
// knowing its concrete Go type. The driver configures archive analyzers
// through it.
type Configurable interface {
	// ID returns the extension's registered identifier, unique within
	// its kind for a single run, referenced from transform blocks and
	// per-category include/exclude lists.
	ID() string
	// Schema returns a JSON schema describing the shape Options must
	// conform to, used to validate configuration before a run starts.
	// Extensions with no configuration surface may return nil.
	Schema() []byte
	// Initialize prepares the extension for a run using ctx's options
	// and matchers.
	Initialize(ctx Context) error
	// Close releases any resource Initialize acquired. Called once per
	// run, even if the run failed.
	Close() error
}
