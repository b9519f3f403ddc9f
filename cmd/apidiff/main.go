// Command apidiff is a minimal wiring example for the comparison driver:
// it loads a pipeline configuration, points every configured analyzer at
// the same pair of old/new source roots, runs the comparison with the
// built-in presence checks, and renders the result through whichever
// reporters the configuration names (stdout if it names none).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/viant/apidiff/backend/goapi"
	_ "github.com/viant/apidiff/backend/treetext"
	"github.com/viant/apidiff/driver"
	"github.com/viant/apidiff/pipeline"
	"github.com/viant/apidiff/report"
	"github.com/viant/apidiff/source"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "apidiff:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("apidiff", flag.ContinueOnError)
	oldRoot := fs.String("old", "", "root URL of the old artifact set")
	newRoot := fs.String("new", "", "root URL of the new artifact set")
	configPath := fs.String("config", "", "path to the pipeline configuration document")
	failAt := fs.String("fail-at", "", "exit non-zero when any difference resolves to this criticality or higher")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *oldRoot == "" || *newRoot == "" || *configPath == "" {
		return fmt.Errorf("-old, -new and -config are all required")
	}

	cfgFile, err := os.Open(*configPath)
	if err != nil {
		return fmt.Errorf("opening configuration: %w", err)
	}
	defer cfgFile.Close()

	cfg, err := pipeline.Load(cfgFile, formatOf(*configPath))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	sources := make(map[string]driver.Sources, len(cfg.Analyzers))
	for _, ac := range cfg.Analyzers {
		sources[ac.EffectiveID()] = driver.Sources{
			Old: source.New(*oldRoot),
			New: source.New(*newRoot),
		}
	}

	reporters, err := buildReporters(cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, r := range reporters {
			r.Close()
		}
	}()

	d := driver.New(defaultChecks(), sources)
	ctx := context.Background()
	if err := d.Open(ctx); err != nil {
		return fmt.Errorf("opening driver: %w", err)
	}
	defer d.Close()

	result, err := d.Run(ctx, cfg, reporters)
	if err != nil {
		return fmt.Errorf("running comparison: %w", err)
	}
	for _, fatalErr := range result.Fatal {
		fmt.Fprintln(os.Stderr, "apidiff:", fatalErr)
	}
	if len(result.Fatal) > 0 {
		return fmt.Errorf("%d analyzer(s) failed", len(result.Fatal))
	}

	if *failAt != "" {
		known := make(map[string]int, len(cfg.CriticalitySet))
		for _, c := range cfg.CriticalitySet {
			known[string(c.Name)] = c.Level
		}
		threshold, ok := known[*failAt]
		if !ok {
			return fmt.Errorf("-fail-at %q is not a configured criticality name", *failAt)
		}
		for _, d := range result.Differences {
			if d.Criticality().Level >= threshold {
				os.Exit(2)
			}
		}
	}
	return nil
}

// buildReporters instantiates every reporter the configuration names
// through report.Lookup, falling back to the built-in "stdout" reporter
// when none are configured.
func buildReporters(cfg *pipeline.Config) ([]report.Reporter, error) {
	if len(cfg.Reporters) == 0 {
		factory := report.Lookup("stdout")
		r, err := factory(nil)
		if err != nil {
			return nil, fmt.Errorf("building default reporter: %w", err)
		}
		return []report.Reporter{r}, nil
	}
	reporters := make([]report.Reporter, 0, len(cfg.Reporters))
	for _, rc := range cfg.Reporters {
		factory := report.Lookup(rc.Type)
		if factory == nil {
			return nil, fmt.Errorf("unknown reporter type %q", rc.Type)
		}
		r, err := factory(rc.Options)
		if err != nil {
			return nil, fmt.Errorf("building reporter %q: %w", rc.EffectiveID(), err)
		}
		reporters = append(reporters, r)
	}
	return reporters, nil
}

// formatOf guesses the configuration document's encoding from its file
// extension, defaulting to JSON.
func formatOf(path string) pipeline.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return pipeline.FormatYAML
	default:
		return pipeline.FormatJSON
	}
}
