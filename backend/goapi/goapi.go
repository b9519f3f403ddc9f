// Package goapi is an archive analyzer for Go source trees: it parses
// every .go file under an artifact set with go/parser, and builds a forest
// of exported types, their methods and fields, parameters, and doc-comment
// derived annotations.
package goapi

import (
	"context"
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strings"
	"sync"

	"golang.org/x/mod/modfile"
	"golang.org/x/tools/go/ast/astutil"

	"github.com/viant/apidiff/backend"
	"github.com/viant/apidiff/element"
	"github.com/viant/apidiff/extension"
	"github.com/viant/apidiff/filter"
	"github.com/viant/apidiff/forest"
	"github.com/viant/apidiff/source"
)

func init() {
	backend.Register("goapi", func(srcs *source.Set) backend.Analyzer { return New(srcs) })
}

var (
	kindPackage = element.RegisterKind("package")
)

// Analyzer parses a Go source tree and builds its element forest.
type Analyzer struct {
	Sources           *source.Set
	IncludeUnexported bool
	Concurrency       int

	fset *token.FileSet
}

// New builds a goapi analyzer reading from srcs. A nil srcs is only valid
// for backend.Register's zero-value construction; callers must assign
// Sources before calling Analyze.
func New(srcs *source.Set) *Analyzer {
	return &Analyzer{Sources: srcs, fset: token.NewFileSet(), Concurrency: 8}
}

func (a *Analyzer) Name() string { return "goapi" }

// Analyze parses every .go file the configured source set enumerates,
// fanning files out to a bounded worker pool (a plain WaitGroup and
// buffered channel, not an external concurrency helper), and assembles the
// per-file results into a single forest keyed by module path.
func (a *Analyzer) Analyze(ctx context.Context, hint filter.Filter) (*forest.Forest, error) {
	primary, err := a.Sources.Primary(ctx)
	if err != nil {
		return nil, fmt.Errorf("goapi: %w", err)
	}
	supplementary, err := a.Sources.Supplementary(ctx)
	if err != nil {
		return nil, fmt.Errorf("goapi: %w", err)
	}

	modulePath := a.detectModulePath(append(append([]source.Artifact{}, primary...), supplementary...))

	f := forest.New(a.Name())
	res := newTypeResolver()
	if err := a.parseInto(f, primary, modulePath, "primary", res); err != nil {
		return nil, err
	}
	if err := a.parseInto(f, supplementary, modulePath, "supplementary", res); err != nil {
		return nil, err
	}
	res.resolve(f)
	return f, nil
}

// Prune delegates to the shared primary/supplementary convention every
// analyzer in this repository tags its elements with. A supplementary
// package node that is itself never referenced but still has a reachable
// declaration underneath it (forest.Prune retains a container exactly to
// the extent something inside it survives) is kept as the surviving
// declaration's attachment point.
func (a *Analyzer) Prune(f *forest.Forest) error { return backend.PruneDefault(f) }

func (a *Analyzer) Release() error { return nil }

// goapiOptions is the "configuration" subtree pipeline.ExtensionConfig
// carries for a goapi analyzer, consumed by Initialize.
type goapiOptions struct {
	IncludeUnexported bool `json:"includeUnexported"`
	Concurrency       int  `json:"concurrency"`
}

// ID satisfies extension.Configurable, mirroring Name so both contracts
// agree on how this analyzer identifies itself.
func (a *Analyzer) ID() string { return a.Name() }

// Schema describes goapiOptions's shape.
func (a *Analyzer) Schema() []byte {
	return []byte(`{"type":"object","properties":{"includeUnexported":{"type":"boolean"},"concurrency":{"type":"integer","minimum":1}}}`)
}

// Initialize decodes ctx.Options into a's tunables, satisfying
// extension.Configurable so a driver can configure this analyzer from a
// pipeline.ExtensionConfig the same way it configures filters and
// transforms.
func (a *Analyzer) Initialize(ctx extension.Context) error {
	if len(ctx.Options) == 0 {
		return nil
	}
	var opts goapiOptions
	if err := json.Unmarshal(ctx.Options, &opts); err != nil {
		return fmt.Errorf("goapi: decoding options: %w", err)
	}
	a.IncludeUnexported = opts.IncludeUnexported
	if opts.Concurrency > 0 {
		a.Concurrency = opts.Concurrency
	}
	return nil
}

// Close satisfies extension.Configurable by delegating to Release.
func (a *Analyzer) Close() error { return a.Release() }

// detectModulePath looks for go.mod among the artifacts and extracts its
// module path, falling back to "unknown" when none is found (e.g. a
// single-file artifact set).
func (a *Analyzer) detectModulePath(artifacts []source.Artifact) string {
	for _, art := range artifacts {
		if strings.HasSuffix(art.Name, "go.mod") {
			mf, err := modfile.Parse(art.Name, art.Data, nil)
			if err == nil && mf.Module != nil {
				return mf.Module.Mod.Path
			}
		}
	}
	return "unknown"
}

// parseInto parses every .go file in artifacts concurrently and adds a
// package node (tagged archive) per package name encountered, with its
// types nested underneath. res accumulates the type/parameter/return-type
// references declarations record, resolved once every artifact (primary
// and supplementary) has been added.
func (a *Analyzer) parseInto(f *forest.Forest, artifacts []source.Artifact, modulePath string, archive element.Archive, res *typeResolver) error {
	goFiles := make([]source.Artifact, 0, len(artifacts))
	for _, art := range artifacts {
		if strings.HasSuffix(art.Name, ".go") && !strings.HasSuffix(art.Name, "_test.go") {
			goFiles = append(goFiles, art)
		}
	}
	if len(goFiles) == 0 {
		return nil
	}

	concurrency := a.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	results := make(chan *ast.File, len(goFiles))
	errs := make(chan error, len(goFiles))

	var wg sync.WaitGroup
	for _, art := range goFiles {
		art := art
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			file, err := parser.ParseFile(a.fset, art.Name, art.Data, parser.ParseComments)
			if err != nil {
				errs <- fmt.Errorf("goapi: parsing %s: %w", art.Name, err)
				return
			}
			results <- file
		}()
	}
	wg.Wait()
	close(results)
	close(errs)
	for err := range errs {
		return err
	}

	packages := make(map[string]*element.Node)
	for file := range results {
		pkgName := file.Name.Name
		pkgNode, ok := packages[pkgName]
		if !ok {
			pkgNode = f.Arena.NewNode(kindPackage, modulePath+"/"+pkgName, element.NewSignature(pkgName), archive)
			packages[pkgName] = pkgNode
			f.AddRoot(pkgNode)
		}
		a.addDeclarations(f, pkgNode, file, archive, res)
	}
	return nil
}

// addDeclarations adds every exported (or all, if IncludeUnexported) type
// declaration in file as a child of pkgNode, descending into its methods,
// fields, and parameters, indexing each type node in res so fields,
// parameters and return types elsewhere can resolve a reference to it.
func (a *Analyzer) addDeclarations(f *forest.Forest, pkgNode *element.Node, file *ast.File, archive element.Archive, res *typeResolver) {
	aliases := a.importAliases(file)
	methodsByType := make(map[string][]*ast.FuncDecl)
	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
			continue
		}
		recvType := receiverTypeName(fn.Recv.List[0].Type)
		methodsByType[recvType] = append(methodsByType[recvType], fn)
	}

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.TYPE {
			continue
		}
		for _, spec := range genDecl.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			if !a.IncludeUnexported && !ts.Name.IsExported() {
				continue
			}
			typeNode := f.Arena.NewNode(element.KindType, ts.Name.Name, element.NewSignature(ts.Name.Name), archive)
			pkgNode.AddChild(typeNode)
			res.indexType(pkgNode, ts.Name.Name, typeNode)

			a.addAnnotations(f, typeNode, genDecl.Doc, archive)
			a.addFields(f, typeNode, ts, archive, aliases, pkgNode, res)
			a.addMethods(f, typeNode, methodsByType[ts.Name.Name], archive, aliases, pkgNode, res)
		}
	}
}

// importAliases maps each import's local name (its alias, or the final
// path segment when unaliased) to its full import path, built via
// astutil's grouped import view rather than a hand-rolled scan of
// file.Imports.
func (a *Analyzer) importAliases(file *ast.File) map[string]string {
	out := make(map[string]string)
	for _, group := range astutil.Imports(a.fset, file) {
		for _, spec := range group {
			path := strings.Trim(spec.Path, `"`)
			local := path[strings.LastIndex(path, "/")+1:]
			if spec.Name != nil {
				local = spec.Name.Name
			}
			out[local] = path
		}
	}
	return out
}

func (a *Analyzer) addFields(f *forest.Forest, typeNode *element.Node, ts *ast.TypeSpec, archive element.Archive, aliases map[string]string, pkgNode *element.Node, res *typeResolver) {
	st, ok := ts.Type.(*ast.StructType)
	if !ok || st.Fields == nil {
		return
	}
	for _, field := range st.Fields.List {
		typeText := qualifiedExprString(field.Type, aliases)
		if len(field.Names) == 0 {
			// embedded field: the type name doubles as the field name.
			name := typeText
			if !a.IncludeUnexported && !ast.IsExported(name) {
				continue
			}
			fieldNode := f.Arena.NewNode(element.KindField, name, element.NewSignature(name+" "+typeText), archive)
			typeNode.AddChild(fieldNode)
			res.addPending(fieldNode, pkgNode, element.EdgeHasType, typeText)
			continue
		}
		for _, fname := range field.Names {
			if !a.IncludeUnexported && !fname.IsExported() {
				continue
			}
			fieldNode := f.Arena.NewNode(element.KindField, fname.Name, element.NewSignature(fname.Name+" "+typeText), archive)
			typeNode.AddChild(fieldNode)
			res.addPending(fieldNode, pkgNode, element.EdgeHasType, typeText)
		}
	}
}

func (a *Analyzer) addMethods(f *forest.Forest, typeNode *element.Node, methods []*ast.FuncDecl, archive element.Archive, aliases map[string]string, pkgNode *element.Node, res *typeResolver) {
	for _, fn := range methods {
		if !a.IncludeUnexported && !fn.Name.IsExported() {
			continue
		}
		sig := methodSignature(fn, aliases)
		methodNode := f.Arena.NewNode(element.KindMethod, fn.Name.Name, element.NewSignature(sig), archive)
		typeNode.AddChild(methodNode)
		a.addAnnotations(f, methodNode, fn.Doc, archive)
		a.addParameters(f, methodNode, fn.Type, archive, aliases, pkgNode, res)
		a.addReturnTypes(methodNode, fn.Type, aliases, pkgNode, res)
	}
}

func (a *Analyzer) addParameters(f *forest.Forest, methodNode *element.Node, ft *ast.FuncType, archive element.Archive, aliases map[string]string, pkgNode *element.Node, res *typeResolver) {
	if ft.Params == nil {
		return
	}
	idx := 0
	for _, field := range ft.Params.List {
		typeText := qualifiedExprString(field.Type, aliases)
		names := field.Names
		if len(names) == 0 {
			names = []*ast.Ident{{Name: fmt.Sprintf("arg%d", idx)}}
		}
		for _, name := range names {
			paramNode := f.Arena.NewNode(element.KindParameter, name.Name, element.NewSignature(fmt.Sprintf("%d:%s", idx, typeText)), archive)
			methodNode.AddChild(paramNode)
			res.addPending(paramNode, pkgNode, element.EdgeParameterType, typeText)
			idx++
		}
	}
}

// addReturnTypes records a pending reference from methodNode to each of
// its declared result types; unlike fields and parameters, return types
// have no node of their own to hang off, so the edge is recorded directly
// against the method.
func (a *Analyzer) addReturnTypes(methodNode *element.Node, ft *ast.FuncType, aliases map[string]string, pkgNode *element.Node, res *typeResolver) {
	if ft.Results == nil {
		return
	}
	for _, field := range ft.Results.List {
		typeText := qualifiedExprString(field.Type, aliases)
		res.addPending(methodNode, pkgNode, element.EdgeReturnType, typeText)
	}
}

// addAnnotations turns each line of a Go doc comment starting with "@"
// (a convention several Go documentation generators use for structured
// metadata) into a KindAnnotation child, so annotation-aware checks have
// something to visit even on a Go backend.
func (a *Analyzer) addAnnotations(f *forest.Forest, owner *element.Node, doc *ast.CommentGroup, archive element.Archive) {
	if doc == nil {
		return
	}
	for _, line := range strings.Split(doc.Text(), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "@") {
			continue
		}
		annNode := f.Arena.NewNode(element.KindAnnotation, line, element.NewSignature(line), archive)
		owner.AddChild(annNode)
		f.Arena.AddReference(owner, annNode, element.EdgeAnnotates)
	}
}

// pendingRef is a not-yet-resolved reference from owner to whatever type
// typeKey names, recorded while a field, parameter or method is built and
// resolved once every declaration (primary and supplementary) has been
// indexed.
type pendingRef struct {
	owner   *element.Node
	pkg     *element.Node
	kind    element.EdgeKind
	typeKey string
}

// typeResolver indexes every type declaration goapi builds, by name within
// its declaring package and by full import-path-qualified name, and
// accumulates pendingRefs against that index until resolve wires them into
// real element.Reference edges. This is what lets forest.Prune's
// reference-based retention actually reach a supplementary type: a field
// or parameter whose declared type lives in a dependency package only
// survives pruning once its EdgeHasType/EdgeParameterType/EdgeReturnType
// edge points back at that type's node.
type typeResolver struct {
	pending     []pendingRef
	byQualified map[string]*element.Node
	byLocal     map[*element.Node]map[string]*element.Node
}

func newTypeResolver() *typeResolver {
	return &typeResolver{
		byQualified: make(map[string]*element.Node),
		byLocal:     make(map[*element.Node]map[string]*element.Node),
	}
}

// indexType records node as pkgNode's declaration of typeName, reachable
// either by its bare name from within pkgNode, or by pkgNode.Name()
// (modulePath/pkgName) qualified name from anywhere.
func (r *typeResolver) indexType(pkgNode *element.Node, typeName string, node *element.Node) {
	r.byQualified[pkgNode.Name()+"."+typeName] = node
	local := r.byLocal[pkgNode]
	if local == nil {
		local = make(map[string]*element.Node)
		r.byLocal[pkgNode] = local
	}
	local[typeName] = node
}

// addPending records a reference owner should carry to whatever
// declaration typeKey resolves to, once resolve runs.
func (r *typeResolver) addPending(owner, pkg *element.Node, kind element.EdgeKind, typeKey string) {
	r.pending = append(r.pending, pendingRef{owner: owner, pkg: pkg, kind: kind, typeKey: typeKey})
}

// resolve wires every pending reference into a real element.Reference
// edge, trying pkg's own local declarations first (the common case: a
// field typed with another struct from the same package), then the fully
// qualified index, then, for a selector rendered as importPath.Type, the
// first parsed package whose name is importPath's last element (a field
// typed with an imported package's struct). A typeKey resolving to
// nothing — a builtin like string or int, or a type from a package this
// analyzer never parsed — contributes no edge; goapi only resolves the
// types its own AST can see.
func (r *typeResolver) resolve(f *forest.Forest) {
	for _, p := range r.pending {
		key := baseTypeKey(p.typeKey)
		var target *element.Node
		if local := r.byLocal[p.pkg]; local != nil {
			target = local[key]
		}
		if target == nil {
			target = r.byQualified[key]
		}
		if dot := strings.LastIndex(key, "."); target == nil && dot > 0 {
			pkgPath, typeName := key[:dot], key[dot+1:]
			pkgName := pkgPath[strings.LastIndex(pkgPath, "/")+1:]
			for _, root := range f.Roots {
				if n := r.byLocal[root][typeName]; n != nil && root.Signature().String() == pkgName {
					target = n
					break
				}
			}
		}
		if target == nil || target == p.owner {
			continue
		}
		f.Arena.AddReference(p.owner, target, p.kind)
	}
}

// baseTypeKey strips the pointer/slice/map-value/variadic wrapping
// qualifiedExprString renders around a bare type name, down to the key a
// declared type would be indexed under (e.g. "*[]pkg.Widget" -> "pkg.Widget").
func baseTypeKey(s string) string {
	for {
		switch {
		case strings.HasPrefix(s, "*"):
			s = s[1:]
		case strings.HasPrefix(s, "..."):
			s = s[3:]
		case strings.HasPrefix(s, "[]"):
			s = s[2:]
		case strings.HasPrefix(s, "map["):
			if end := mapValueStart(s); end >= 0 {
				s = s[end:]
				continue
			}
			return s
		default:
			return s
		}
	}
}

// mapValueStart returns the index where a "map[K]V" string's value type
// begins, accounting for K itself containing brackets (a nested map key).
// Returns -1 if s's brackets never close.
func mapValueStart(s string) int {
	depth := 0
	for i := 3; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

func receiverTypeName(expr ast.Expr) string {
	if star, ok := expr.(*ast.StarExpr); ok {
		expr = star.X
	}
	if ident, ok := expr.(*ast.Ident); ok {
		return ident.Name
	}
	return ""
}

func methodSignature(fn *ast.FuncDecl, aliases map[string]string) string {
	var sb strings.Builder
	sb.WriteString(fn.Name.Name)
	sb.WriteString("(")
	if fn.Type.Params != nil {
		for i, field := range fn.Type.Params.List {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(qualifiedExprString(field.Type, aliases))
		}
	}
	sb.WriteString(")")
	return sb.String()
}

func exprString(expr ast.Expr) string {
	return qualifiedExprString(expr, nil)
}

// qualifiedExprString renders a type expression, resolving a selector's
// package alias to its full import path via aliases (when available) so
// two identically-aliased-but-different packages don't collide in a
// signature.
func qualifiedExprString(expr ast.Expr, aliases map[string]string) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return "*" + qualifiedExprString(t.X, aliases)
	case *ast.SelectorExpr:
		pkg := exprString(t.X)
		if path, ok := aliases[pkg]; ok {
			pkg = path
		}
		return pkg + "." + t.Sel.Name
	case *ast.ArrayType:
		return "[]" + qualifiedExprString(t.Elt, aliases)
	case *ast.MapType:
		return "map[" + qualifiedExprString(t.Key, aliases) + "]" + qualifiedExprString(t.Value, aliases)
	case *ast.Ellipsis:
		return "..." + qualifiedExprString(t.Elt, aliases)
	case *ast.InterfaceType:
		return "interface{}"
	default:
		return "?"
	}
}
