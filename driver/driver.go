// Package driver wires the configured extensions, archive sources, and
// checks together into a single comparison run: it owns acquisition and
// release of whatever resources a run needs, mirroring the teacher's
// AnalyzeDir/AnalyzeAll resource-scoped orchestration.
package driver

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/apidiff/backend"
	"github.com/viant/apidiff/check"
	"github.com/viant/apidiff/diff"
	"github.com/viant/apidiff/element"
	"github.com/viant/apidiff/extension"
	"github.com/viant/apidiff/filter"
	"github.com/viant/apidiff/forest"
	"github.com/viant/apidiff/kerr"
	"github.com/viant/apidiff/pipeline"
	"github.com/viant/apidiff/report"
	"github.com/viant/apidiff/source"
	"github.com/viant/apidiff/transform"
	"github.com/viant/apidiff/walk"
)

// Sources pairs the old and new artifact sets a single configured analyzer
// reads from.
type Sources struct {
	Old *source.Set
	New *source.Set
}

// Result is the accumulated outcome of a Run: every difference produced
// across every configured analyzer, plus any fatal error that stopped one
// analyzer's comparison early without aborting the others.
type Result struct {
	Differences []diff.Difference
	Fatal       []error
}

// Driver runs one comparison: Open acquires whatever state a run needs,
// Run executes a configured pipeline against it, Close releases it.
// Open/Run/Close may be called at most once each; Close is idempotent.
type Driver struct {
	// Checks are the domain checks driving the comparison; unlike
	// filters, transforms and reporters, checks are compiled into the
	// binary rather than configured by id, since they encode the actual
	// comparison semantics rather than pluggable policy.
	Checks []check.Check
	// Sources maps an analyzer's configured id (ExtensionConfig.EffectiveID)
	// to the old/new artifact sets it should read from.
	Sources map[string]Sources

	mu     sync.Mutex
	opened bool
	once   sync.Once
}

// New builds a Driver ready for Open.
func New(checks []check.Check, sources map[string]Sources) *Driver {
	return &Driver{Checks: checks, Sources: sources}
}

// Open marks the driver ready to Run, failing if ctx is already done.
func (d *Driver) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", kerr.ErrRunCancelled, err)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.opened = true
	return nil
}

// Close releases the driver's state. Safe to call multiple times and from
// multiple goroutines; only the first call has effect.
func (d *Driver) Close() error {
	d.once.Do(func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.opened = false
	})
	return nil
}

// Run executes cfg's configured analyzers, check dispatcher, transform
// pipeline and tree filter, delivering the resulting report to reporters
// (isolating one reporter's failure from the rest) and returning every
// difference produced. An analyzer-level failure is recorded in
// Result.Fatal and does not stop the other configured analyzers from
// running.
func (d *Driver) Run(ctx context.Context, cfg *pipeline.Config, reporters []report.Reporter) (*Result, error) {
	d.mu.Lock()
	opened := d.opened
	d.mu.Unlock()
	if !opened {
		return nil, fmt.Errorf("driver: Run called before Open")
	}

	known := make(map[diff.CriticalityName]diff.Criticality, len(cfg.CriticalitySet))
	for _, c := range cfg.CriticalitySet {
		known[c.Name] = c
	}

	treeFilter, err := buildFilter(cfg)
	if err != nil {
		return nil, err
	}
	pipe, err := buildPipeline(cfg)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	for _, ac := range cfg.Analyzers {
		if err := ctx.Err(); err != nil {
			result.Fatal = append(result.Fatal, fmt.Errorf("%w: %v", kerr.ErrRunCancelled, err))
			break
		}

		id := ac.EffectiveID()
		srcs, ok := d.Sources[id]
		if !ok {
			result.Fatal = append(result.Fatal, fmt.Errorf("%w: no sources configured for analyzer %q", kerr.ErrArtifactUnresolved, id))
			continue
		}
		factory := backend.Lookup(ac.Type)
		if factory == nil {
			result.Fatal = append(result.Fatal, fmt.Errorf("%w: unknown analyzer type %q", kerr.ErrConfigurationInvalid, ac.Type))
			continue
		}

		oldForest, err := analyzeSide(ctx, factory, srcs.Old, ac.Options, treeFilter)
		if err != nil {
			result.Fatal = append(result.Fatal, fmt.Errorf("analyzer %q (old): %w", id, err))
			continue
		}
		newForest, err := analyzeSide(ctx, factory, srcs.New, ac.Options, treeFilter)
		if err != nil {
			result.Fatal = append(result.Fatal, fmt.Errorf("analyzer %q (new): %w", id, err))
			continue
		}

		w := &walk.Walker{
			Dispatcher: check.NewDispatcher(d.Checks),
			Pipeline:   pipe,
			Filter:     treeFilter,
		}
		ds, err := w.Pair(oldForest, newForest)
		if err != nil {
			result.Fatal = append(result.Fatal, fmt.Errorf("analyzer %q: %w", id, err))
			continue
		}
		for i, raw := range ds {
			ds[i] = diff.ResolveCriticality(raw, cfg.SeverityMapping, known)
		}
		result.Differences = append(result.Differences, ds...)

		rep := report.Report{Old: firstRoot(oldForest), New: firstRoot(newForest), Differences: ds}
		for _, r := range reporters {
			if err := r.Report(rep); err != nil {
				result.Fatal = append(result.Fatal, fmt.Errorf("analyzer %q: reporter failed: %w", id, err))
			}
		}
	}

	return result, nil
}

// analyzeSide constructs the analyzer, configuring it with options when it
// implements extension.Configurable, runs it, lets it prune its own
// forest under its own primary/supplementary convention, then releases it.
func analyzeSide(ctx context.Context, factory backend.Factory, srcs *source.Set, options []byte, hint filter.Filter) (*forest.Forest, error) {
	if srcs == nil {
		return forest.New(""), nil
	}
	a := factory(srcs)
	defer a.Release()
	if c, ok := a.(extension.Configurable); ok {
		if err := c.Initialize(extension.Context{Options: options}); err != nil {
			return nil, fmt.Errorf("%w: %v", kerr.ErrConfigurationInvalid, err)
		}
		defer c.Close()
	}
	f, err := a.Analyze(ctx, hint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerr.ErrArtifactUnresolved, err)
	}
	if err := a.Prune(f); err != nil {
		return nil, fmt.Errorf("%w: %v", kerr.ErrArtifactUnresolved, err)
	}
	return f, nil
}

func firstRoot(f *forest.Forest) *element.Node {
	if f == nil || len(f.Roots) == 0 {
		return nil
	}
	return f.Roots[0]
}

// buildFilter composes every configured filter-provider extension into a
// single admission filter, intersected together (an element must satisfy
// every configured provider). No providers configured means no filtering
// at all (a nil Filter, which Walker treats as admit-everything).
func buildFilter(cfg *pipeline.Config) (filter.Filter, error) {
	if len(cfg.FilterProviders) == 0 {
		return nil, nil
	}
	var filters []filter.Filter
	for _, fc := range cfg.FilterProviders {
		factory := filter.LookupProvider(fc.Type)
		if factory == nil {
			return nil, fmt.Errorf("%w: unknown filter provider type %q", kerr.ErrConfigurationInvalid, fc.Type)
		}
		f, err := factory(fc.Options)
		if err != nil {
			return nil, fmt.Errorf("%w: filter %q: %v", kerr.ErrConfigurationInvalid, fc.EffectiveID(), err)
		}
		filters = append(filters, f)
	}
	if len(filters) == 1 {
		return filters[0], nil
	}
	return filter.Intersect(filters...), nil
}

// buildPipeline instantiates every configured transform extension and
// groups them into blocks per cfg.Blocks, in configured order.
func buildPipeline(cfg *pipeline.Config) (*transform.Pipeline, error) {
	if len(cfg.Transforms) == 0 {
		return &transform.Pipeline{}, nil
	}
	byID := make(map[string]transform.Transform, len(cfg.Transforms))
	for _, tc := range cfg.Transforms {
		factory := transform.Lookup(tc.Type)
		if factory == nil {
			return nil, fmt.Errorf("%w: unknown transform type %q", kerr.ErrConfigurationInvalid, tc.Type)
		}
		t, err := factory(tc.Options)
		if err != nil {
			return nil, fmt.Errorf("%w: transform %q: %v", kerr.ErrConfigurationInvalid, tc.EffectiveID(), err)
		}
		byID[tc.EffectiveID()] = t
	}

	blocks := cfg.Blocks
	if len(blocks) == 0 {
		// no explicit grouping: every configured transform runs together
		// as a single block, in configured order.
		var ids []string
		for _, tc := range cfg.Transforms {
			ids = append(ids, tc.EffectiveID())
		}
		blocks = [][]string{ids}
	}

	pipe := &transform.Pipeline{}
	for _, blockIDs := range blocks {
		b := &transform.Block{}
		for _, id := range blockIDs {
			b.Transforms = append(b.Transforms, byID[id])
		}
		pipe.Blocks = append(pipe.Blocks, b)
	}
	return pipe, nil
}
