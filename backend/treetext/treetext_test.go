package treetext

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/apidiff/element"
	"github.com/viant/apidiff/extension"
	"github.com/viant/apidiff/source"
)

func setupSources(t *testing.T, dir string, files map[string]string) *source.Set {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(dir+"/"+name, []byte(content), 0o644))
	}
	return source.New(dir)
}

func TestAnalyzeExtractsExportedTypeWithFieldAndMethod(t *testing.T) {
	dir := t.TempDir()
	srcs := setupSources(t, dir, map[string]string{
		"widget.api.yaml": `package: widget
types:
  - name: Widget
    annotations:
      - "@stable"
    fields:
      - name: Name
        type: string
      - name: size
        type: int
    methods:
      - name: Grow
        parameters:
          - name: by
            type: int
`,
	})

	a := New(srcs)
	f, err := a.Analyze(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, f.Roots, 1)

	pkg := f.Roots[0]
	assert.Equal(t, kindPackage, pkg.Kind())
	assert.Equal(t, "widget", pkg.Name())

	types := pkg.Stream(element.KindType, true)
	require.Len(t, types, 1)
	widget := types[0]
	assert.Equal(t, "Widget", widget.Name())

	fields := widget.Stream(element.KindField, false)
	require.Len(t, fields, 1, "unexported field must be skipped by default")
	assert.Equal(t, "Name", fields[0].Name())

	methods := widget.Stream(element.KindMethod, false)
	require.Len(t, methods, 1)
	assert.Equal(t, "Grow", methods[0].Name())

	params := methods[0].Stream(element.KindParameter, false)
	require.Len(t, params, 1)
	assert.Equal(t, "by", params[0].Name())

	anns := widget.Stream(element.KindAnnotation, false)
	require.Len(t, anns, 1)
	assert.Equal(t, "@stable", anns[0].Name())
}

func TestAnalyzeIncludesUnexportedWhenConfigured(t *testing.T) {
	dir := t.TempDir()
	srcs := setupSources(t, dir, map[string]string{
		"widget.api.yaml": `package: widget
types:
  - name: widget
    fields:
      - name: name
        type: string
`,
	})
	a := New(srcs)
	a.IncludeUnexported = true
	f, err := a.Analyze(context.Background(), nil)
	require.NoError(t, err)

	types := f.Roots[0].Stream(element.KindType, true)
	require.Len(t, types, 1)
	assert.Equal(t, "widget", types[0].Name())
}

func TestAnalyzeHonorsExplicitExportedOverride(t *testing.T) {
	dir := t.TempDir()
	srcs := setupSources(t, dir, map[string]string{
		"widget.api.yaml": `package: widget
types:
  - name: internalHelper
    exported: true
`,
	})
	a := New(srcs)
	f, err := a.Analyze(context.Background(), nil)
	require.NoError(t, err)

	types := f.Roots[0].Stream(element.KindType, true)
	require.Len(t, types, 1, "explicit exported:true must override the lowercase-name heuristic")
	assert.Equal(t, "internalHelper", types[0].Name())
}

func TestAnalyzeWiresReturnAndFieldTypeReferencesAcrossManifests(t *testing.T) {
	primaryDir := t.TempDir()
	depDir := t.TempDir()
	require.NoError(t, os.WriteFile(primaryDir+"/widget.api.yaml", []byte(`package: widget
types:
  - name: Widget
    fields:
      - name: Engine
        type: Engine
    methods:
      - name: Build
        returns:
          - Result
`), 0o644))
	require.NoError(t, os.WriteFile(depDir+"/dep.api.yaml", []byte(`package: dep
types:
  - name: Engine
  - name: Result
  - name: Unused
`), 0o644))

	srcs := source.New(primaryDir, depDir)
	a := New(srcs)
	f, err := a.Analyze(context.Background(), nil)
	require.NoError(t, err)

	// Roots sort by signature digest, not by name, so look the package up.
	var widgetPkg *element.Node
	for _, root := range f.Roots {
		if root.Signature().String() == "widget" {
			widgetPkg = root
		}
	}
	require.NotNil(t, widgetPkg)
	widget := widgetPkg.Stream(element.KindType, false)[0]
	field := widget.Stream(element.KindField, false)[0]
	method := widget.Stream(element.KindMethod, false)[0]

	refs := field.References()
	require.Len(t, refs, 1)
	assert.Equal(t, element.EdgeHasType, refs[0].Kind)
	assert.Equal(t, "Engine", f.Arena.ReferenceTarget(refs[0]).Name())

	methodRefs := method.References()
	require.Len(t, methodRefs, 1)
	assert.Equal(t, element.EdgeReturnType, methodRefs[0].Kind)
	assert.Equal(t, "Result", f.Arena.ReferenceTarget(methodRefs[0]).Name())

	require.NoError(t, a.Prune(f))

	var depPkg *element.Node
	for _, root := range f.Roots {
		if root != widgetPkg {
			depPkg = root
		}
	}
	require.NotNil(t, depPkg, "dep manifest must survive pruning: it is reached through Engine/Result references")

	depTypes := depPkg.Stream(element.KindType, false)
	names := make([]string, 0, len(depTypes))
	for _, tn := range depTypes {
		names = append(names, tn.Name())
	}
	assert.ElementsMatch(t, []string{"Engine", "Result"}, names, "Unused must be pruned: nothing references it")
}

func TestInitializeAppliesConfiguredOptions(t *testing.T) {
	dir := t.TempDir()
	srcs := setupSources(t, dir, map[string]string{
		"widget.api.yaml": `package: widget
types:
  - name: widget
`,
	})
	a := New(srcs)
	var c extension.Configurable = a
	require.NoError(t, c.Initialize(extension.Context{Options: []byte(`{"includeUnexported":true,"concurrency":3}`)}))
	assert.True(t, a.IncludeUnexported)
	assert.Equal(t, 3, a.Concurrency)

	f, err := a.Analyze(context.Background(), nil)
	require.NoError(t, err)
	types := f.Roots[0].Stream(element.KindType, true)
	require.Len(t, types, 1)
	assert.Equal(t, "widget", types[0].Name())
}

func TestAnalyzeSkipsNonManifestFiles(t *testing.T) {
	dir := t.TempDir()
	srcs := setupSources(t, dir, map[string]string{
		"widget.api.yaml": `package: widget
types:
  - name: Widget
`,
		"notes.txt": "this is not a manifest",
	})
	a := New(srcs)
	f, err := a.Analyze(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, f.Roots, 1)
	assert.Equal(t, "widget", f.Roots[0].Name())
}
