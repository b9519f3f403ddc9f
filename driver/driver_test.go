package driver

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/viant/apidiff/backend/goapi"
	"github.com/viant/apidiff/check"
	"github.com/viant/apidiff/diff"
	"github.com/viant/apidiff/element"
	"github.com/viant/apidiff/pipeline"
	"github.com/viant/apidiff/report"
	"github.com/viant/apidiff/source"
)

func writeModule(t *testing.T, dir, body string) *source.Set {
	t.Helper()
	require.NoError(t, os.WriteFile(dir+"/go.mod", []byte("module example.com/widget\n\ngo 1.21\n"), 0o644))
	require.NoError(t, os.WriteFile(dir+"/widget.go", []byte(body), 0o644))
	return source.New(dir)
}

func removedMethodCheck() check.Check {
	return &check.Func{
		InterestKinds: []element.Kind{element.KindMethod},
		Descending:    true,
		OnLeave: func(pair element.Pair) ([]diff.Difference, error) {
			if pair.New != nil {
				return nil, nil
			}
			d := diff.NewBuilder("method.removed").
				Named("method removed").
				Classify(diff.Source, diff.Breaking).
				Build()
			return []diff.Difference{d}, nil
		},
	}
}

func minimalConfig(t *testing.T) *pipeline.Config {
	cfg := &pipeline.Config{
		Analyzers: []pipeline.ExtensionConfig{{Type: "goapi", ID: "go"}},
		CriticalitySet: []diff.Criticality{
			{Name: "error", Level: 2},
			{Name: "ignore", Level: 0},
		},
		SeverityMapping: diff.SeverityMapping{
			diff.Equivalent:          "ignore",
			diff.NonBreaking:         "ignore",
			diff.PotentiallyBreaking: "error",
			diff.Breaking:            "error",
		},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestRunDetectsRemovedMethod(t *testing.T) {
	oldDir, newDir := t.TempDir(), t.TempDir()
	oldSrc := writeModule(t, oldDir, `package widget

type Widget struct{}

func (w *Widget) Grow(by int) error { return nil }
`)
	newSrc := writeModule(t, newDir, `package widget

type Widget struct{}
`)

	d := New([]check.Check{removedMethodCheck()}, map[string]Sources{
		"go": {Old: oldSrc, New: newSrc},
	})
	require.NoError(t, d.Open(context.Background()))
	defer d.Close()

	collector := &report.Collector{}
	result, err := d.Run(context.Background(), minimalConfig(t), []report.Reporter{collector})
	require.NoError(t, err)
	assert.Empty(t, result.Fatal)

	var found bool
	for _, dd := range result.Differences {
		if dd.Code() == "method.removed" {
			found = true
			assert.Equal(t, diff.CriticalityName("error"), dd.Criticality().Name)
		}
	}
	assert.True(t, found, "expected a method.removed difference")
	require.Len(t, collector.Reports, 1)
}

func TestRunFailsAnalyzerGracefullyOnUnknownSources(t *testing.T) {
	d := New(nil, map[string]Sources{})
	require.NoError(t, d.Open(context.Background()))
	defer d.Close()

	cfg := minimalConfig(t)
	result, err := d.Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, result.Fatal, 1)
}

func TestRunAppliesAnalyzerOptionsFromConfig(t *testing.T) {
	oldDir, newDir := t.TempDir(), t.TempDir()
	oldSrc := writeModule(t, oldDir, `package widget

type widget struct{}
`)
	newSrc := writeModule(t, newDir, `package widget

type widget struct{}
`)

	d := New(nil, map[string]Sources{"go": {Old: oldSrc, New: newSrc}})
	require.NoError(t, d.Open(context.Background()))
	defer d.Close()

	cfg := minimalConfig(t)
	cfg.Analyzers[0].Options = []byte(`{"includeUnexported":true}`)

	result, err := d.Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Fatal)
}

func TestRunBeforeOpenFails(t *testing.T) {
	d := New(nil, nil)
	_, err := d.Run(context.Background(), minimalConfig(t), nil)
	require.Error(t, err)
}
