// Package backend defines the archive analyzer contract: the pluggable,
// per-format component that turns a raw artifact set into a forest of
// elements, under lazy evaluation hints from a tree filter, and the
// factory registry back-ends register themselves into.
package backend

import (
	"context"

	"github.com/viant/apidiff/element"
	"github.com/viant/apidiff/filter"
	"github.com/viant/apidiff/forest"
	"github.com/viant/apidiff/source"
)

// Analyzer builds a Forest from one side's artifacts. Analyze may consult
// hint to avoid doing work whose result would be discarded (e.g. skip
// parsing a file whose top-level declarations the hint has already
// resolved to No), but must still produce a structurally complete forest —
// hint is a lazy-evaluation optimization, never a correctness filter.
type Analyzer interface {
	// Name is the analyzer's registered identifier, used as forest.Analyzer
	// and to look up a match.Recipe's FilterFor target.
	Name() string
	// Analyze builds the forest for this analyzer's configured artifact
	// set.
	Analyze(ctx context.Context, hint filter.Filter) (*forest.Forest, error)
	// Prune removes supplementary elements f's own analysis never tied
	// back to a primary element through a moves-to-api reference,
	// applying whatever primary/supplementary archive convention this
	// analyzer tags its own elements with. Called once per side, after
	// Analyze and before the forest is walked.
	Prune(f *forest.Forest) error
	// Release frees any resource Analyze acquired (parsed ASTs, open file
	// handles). Called on every exit path, even on error, and possibly
	// more than once for the same instance (the driver also releases
	// through Close), so repeated calls must be safe.
	Release() error
}

// PrimaryArchiveTag is the archive tag convention every analyzer in this
// repository uses for its primary elements (see backend/goapi,
// backend/treetext); everything else is supplementary.
const PrimaryArchiveTag element.Archive = "primary"

// PruneDefault runs forest.Prune against the PrimaryArchiveTag convention.
// An Analyzer whose Prune method has nothing analyzer-specific to add can
// just return backend.PruneDefault(f).
func PruneDefault(f *forest.Forest) error {
	forest.Prune(f, map[element.Archive]bool{PrimaryArchiveTag: true})
	return nil
}

// Factory constructs a configured Analyzer instance reading from srcs.
// Registered under the analyzer's type name (distinct from its instance
// id) so the driver can build one from pipeline.ExtensionConfig.Type
// without a type switch.
type Factory func(srcs *source.Set) Analyzer

var registry = make(map[string]Factory)

// Register adds a Factory under name, for later lookup with Lookup. Called
// from each backend package's init, mirroring how the teacher's inspector
// factories are wired up by format.
func Register(name string, f Factory) { registry[name] = f }

// Lookup returns the Factory registered under name, or nil if none is.
func Lookup(name string) Factory { return registry[name] }
