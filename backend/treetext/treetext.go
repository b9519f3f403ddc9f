// Package treetext is an archive analyzer for a lightweight tagged-block
// text format: a YAML manifest describing a package's exported types,
// fields, methods and annotations. It parses with go-tree-sitter's
// generic grammar facilities rather than a schema-bound YAML library,
// demonstrating that the element forest model and the backend.Analyzer
// contract are not tied to Go source at all.
package treetext

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/yaml"

	"github.com/viant/apidiff/backend"
	"github.com/viant/apidiff/element"
	"github.com/viant/apidiff/extension"
	"github.com/viant/apidiff/filter"
	"github.com/viant/apidiff/forest"
	"github.com/viant/apidiff/source"
)

func init() {
	backend.Register("treetext", func(srcs *source.Set) backend.Analyzer { return New(srcs) })
}

var kindPackage = element.RegisterKind("package")

// annotationRe matches a "@key" or "@key=value" tag inside an annotation
// string, the same convention goapi reads from doc comments.
var annotationRe = regexp.MustCompile(`@([\w:.-]+)(?:[=:]([^\s]+))?`)

// Analyzer parses every *.yaml/*.yml manifest in an artifact set and builds
// its element forest.
type Analyzer struct {
	Sources           *source.Set
	IncludeUnexported bool
	Concurrency       int
}

// New builds a treetext analyzer reading from srcs. A nil srcs is only
// valid for backend.Register's zero-value construction.
func New(srcs *source.Set) *Analyzer {
	return &Analyzer{Sources: srcs, Concurrency: 8}
}

func (a *Analyzer) Name() string { return "treetext" }

// Analyze parses every manifest file the configured source set enumerates,
// fanning files out to a bounded worker pool mirroring goapi's, and
// assembles the per-file results into a single forest.
func (a *Analyzer) Analyze(ctx context.Context, hint filter.Filter) (*forest.Forest, error) {
	primary, err := a.Sources.Primary(ctx)
	if err != nil {
		return nil, fmt.Errorf("treetext: %w", err)
	}
	supplementary, err := a.Sources.Supplementary(ctx)
	if err != nil {
		return nil, fmt.Errorf("treetext: %w", err)
	}

	f := forest.New(a.Name())
	res := newTypeResolver()
	if err := a.parseInto(f, primary, "primary", res); err != nil {
		return nil, err
	}
	if err := a.parseInto(f, supplementary, "supplementary", res); err != nil {
		return nil, err
	}
	res.resolve(f)
	return f, nil
}

// Prune delegates to the shared primary/supplementary convention every
// analyzer in this repository tags its elements with.
func (a *Analyzer) Prune(f *forest.Forest) error { return backend.PruneDefault(f) }

func (a *Analyzer) Release() error { return nil }

// treetextOptions is the "configuration" subtree pipeline.ExtensionConfig
// carries for a treetext analyzer, consumed by Initialize.
type treetextOptions struct {
	IncludeUnexported bool `json:"includeUnexported"`
	Concurrency       int  `json:"concurrency"`
}

// ID satisfies extension.Configurable, mirroring Name.
func (a *Analyzer) ID() string { return a.Name() }

// Schema describes treetextOptions's shape.
func (a *Analyzer) Schema() []byte {
	return []byte(`{"type":"object","properties":{"includeUnexported":{"type":"boolean"},"concurrency":{"type":"integer","minimum":1}}}`)
}

// Initialize decodes ctx.Options into a's tunables, satisfying
// extension.Configurable.
func (a *Analyzer) Initialize(ctx extension.Context) error {
	if len(ctx.Options) == 0 {
		return nil
	}
	var opts treetextOptions
	if err := json.Unmarshal(ctx.Options, &opts); err != nil {
		return fmt.Errorf("treetext: decoding options: %w", err)
	}
	a.IncludeUnexported = opts.IncludeUnexported
	if opts.Concurrency > 0 {
		a.Concurrency = opts.Concurrency
	}
	return nil
}

// Close satisfies extension.Configurable by delegating to Release.
func (a *Analyzer) Close() error { return a.Release() }

func isManifest(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// parseInto parses every manifest in artifacts concurrently and adds one
// package node per "package:" key encountered, with its types nested
// underneath. res accumulates the field/parameter/return-type references
// declarations record, resolved once every artifact has been added.
func (a *Analyzer) parseInto(f *forest.Forest, artifacts []source.Artifact, archive element.Archive, res *typeResolver) error {
	manifests := make([]source.Artifact, 0, len(artifacts))
	for _, art := range artifacts {
		if isManifest(art.Name) {
			manifests = append(manifests, art)
		}
	}
	if len(manifests) == 0 {
		return nil
	}

	concurrency := a.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	sem := make(chan struct{}, concurrency)
	type parsed struct {
		name string
		doc  map[string]interface{}
	}
	results := make(chan parsed, len(manifests))
	errs := make(chan error, len(manifests))

	var wg sync.WaitGroup
	for _, art := range manifests {
		art := art
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			doc, err := parseManifest(art.Data)
			if err != nil {
				errs <- fmt.Errorf("treetext: parsing %s: %w", art.Name, err)
				return
			}
			results <- parsed{name: art.Name, doc: doc}
		}()
	}
	wg.Wait()
	close(results)
	close(errs)
	for err := range errs {
		return err
	}

	for p := range results {
		a.addPackage(f, p.doc, archive, res)
	}
	return nil
}

// parseManifest parses a YAML manifest with tree-sitter's yaml grammar and
// decodes its single document into a plain Go value tree (map/slice/string),
// the same shape a schema-bound decoder would produce.
func parseManifest(data []byte) (map[string]interface{}, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(yaml.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, data)
	if err != nil {
		return nil, err
	}
	root := tree.RootNode()
	if root == nil || root.NamedChildCount() == 0 {
		return map[string]interface{}{}, nil
	}
	doc := root.NamedChild(0)
	value := decodeValue(firstBlockChild(doc), data)
	m, _ := value.(map[string]interface{})
	if m == nil {
		m = map[string]interface{}{}
	}
	return m, nil
}

// firstBlockChild unwraps a "document" node down to the block node holding
// its actual content.
func firstBlockChild(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "document" && n.NamedChildCount() > 0 {
		return n.NamedChild(0)
	}
	return n
}

// decodeValue turns a tree-sitter YAML node into a map[string]interface{},
// []interface{}, or string, recursively. Unrecognized node kinds fall back
// to their raw source text, so a manifest author's exact formatting never
// causes a parse failure.
func decodeValue(n *sitter.Node, src []byte) interface{} {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "block_node", "flow_node":
		if n.NamedChildCount() == 0 {
			return scalarText(n, src)
		}
		return decodeValue(n.NamedChild(0), src)
	case "block_mapping", "flow_mapping":
		out := make(map[string]interface{})
		for i := 0; i < int(n.NamedChildCount()); i++ {
			decodePair(n.NamedChild(i), src, out)
		}
		return out
	case "block_sequence", "flow_sequence":
		var out []interface{}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			item := n.NamedChild(i)
			if item.NamedChildCount() == 0 {
				continue
			}
			out = append(out, decodeValue(item.NamedChild(0), src))
		}
		return out
	default:
		return scalarText(n, src)
	}
}

// decodePair decodes a single block_mapping_pair/flow_pair into out,
// keyed by its rendered key text.
func decodePair(n *sitter.Node, src []byte, out map[string]interface{}) {
	if n == nil {
		return
	}
	keyNode := n.ChildByFieldName("key")
	valNode := n.ChildByFieldName("value")
	if keyNode == nil {
		return
	}
	key := strings.TrimSpace(scalarText(keyNode, src))
	out[key] = decodeValue(valNode, src)
}

// scalarText renders a leaf node's content, stripping surrounding quotes.
func scalarText(n *sitter.Node, src []byte) string {
	if n == nil {
		return ""
	}
	text := n.Content(src)
	text = strings.TrimSpace(text)
	if len(text) >= 2 {
		if (text[0] == '"' && text[len(text)-1] == '"') || (text[0] == '\'' && text[len(text)-1] == '\'') {
			text = text[1 : len(text)-1]
		}
	}
	return text
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asBool(v interface{}) bool {
	s := asString(v)
	return s == "true" || s == "yes"
}

func isExported(name string) bool {
	return name != "" && strings.ToUpper(name[:1]) == name[:1]
}

// exportedOf reports whether an element counts as exported: an explicit
// "exported" key wins, falling back to the name-based convention when the
// manifest author left it out.
func exportedOf(m map[string]interface{}, name string) bool {
	if _, ok := m["exported"]; ok {
		return asBool(m["exported"])
	}
	return isExported(name)
}

func (a *Analyzer) addPackage(f *forest.Forest, doc map[string]interface{}, archive element.Archive, res *typeResolver) {
	pkgName := asString(doc["package"])
	if pkgName == "" {
		return
	}
	pkgNode := f.Arena.NewNode(kindPackage, pkgName, element.NewSignature(pkgName), archive)
	f.AddRoot(pkgNode)

	for _, rawType := range asSlice(doc["types"]) {
		t := asMap(rawType)
		name := asString(t["name"])
		if name == "" {
			continue
		}
		if !a.IncludeUnexported && !exportedOf(t, name) {
			continue
		}
		typeNode := f.Arena.NewNode(element.KindType, name, element.NewSignature(name), archive)
		pkgNode.AddChild(typeNode)
		res.indexType(pkgNode, name, typeNode)

		a.addAnnotations(f, typeNode, t["annotations"], archive)
		a.addFields(f, typeNode, t["fields"], archive, pkgNode, res)
		a.addMethods(f, typeNode, t["methods"], archive, pkgNode, res)
	}
}

func (a *Analyzer) addFields(f *forest.Forest, typeNode *element.Node, rawFields interface{}, archive element.Archive, pkgNode *element.Node, res *typeResolver) {
	for _, raw := range asSlice(rawFields) {
		field := asMap(raw)
		name := asString(field["name"])
		if name == "" {
			continue
		}
		if !a.IncludeUnexported && !exportedOf(field, name) {
			continue
		}
		fieldType := asString(field["type"])
		fieldNode := f.Arena.NewNode(element.KindField, name, element.NewSignature(name+" "+fieldType), archive)
		typeNode.AddChild(fieldNode)
		res.addPending(fieldNode, pkgNode, element.EdgeHasType, fieldType)
		a.addAnnotations(f, fieldNode, field["annotations"], archive)
	}
}

func (a *Analyzer) addMethods(f *forest.Forest, typeNode *element.Node, rawMethods interface{}, archive element.Archive, pkgNode *element.Node, res *typeResolver) {
	for _, raw := range asSlice(rawMethods) {
		method := asMap(raw)
		name := asString(method["name"])
		if name == "" {
			continue
		}
		if !a.IncludeUnexported && !exportedOf(method, name) {
			continue
		}
		sig := methodSignature(name, asSlice(method["parameters"]))
		methodNode := f.Arena.NewNode(element.KindMethod, name, element.NewSignature(sig), archive)
		typeNode.AddChild(methodNode)
		a.addAnnotations(f, methodNode, method["annotations"], archive)
		a.addParameters(f, methodNode, asSlice(method["parameters"]), archive, pkgNode, res)
		a.addReturnTypes(methodNode, asSlice(method["returns"]), pkgNode, res)
	}
}

func (a *Analyzer) addParameters(f *forest.Forest, methodNode *element.Node, rawParams []interface{}, archive element.Archive, pkgNode *element.Node, res *typeResolver) {
	for idx, raw := range rawParams {
		param := asMap(raw)
		name := asString(param["name"])
		if name == "" {
			name = fmt.Sprintf("arg%d", idx)
		}
		paramType := asString(param["type"])
		paramNode := f.Arena.NewNode(element.KindParameter, name, element.NewSignature(fmt.Sprintf("%d:%s", idx, paramType)), archive)
		methodNode.AddChild(paramNode)
		res.addPending(paramNode, pkgNode, element.EdgeParameterType, paramType)
	}
}

// addReturnTypes records a pending reference from methodNode to each type
// named in a method's "returns" list. Like goapi, a return type has no
// node of its own to hang off, so the edge is recorded directly against
// the method.
func (a *Analyzer) addReturnTypes(methodNode *element.Node, rawReturns []interface{}, pkgNode *element.Node, res *typeResolver) {
	for _, raw := range rawReturns {
		returnType := asString(raw)
		if returnType == "" {
			continue
		}
		res.addPending(methodNode, pkgNode, element.EdgeReturnType, returnType)
	}
}

// addAnnotations turns each "@key" / "@key=value" entry of an
// "annotations" list into a KindAnnotation child, the same convention
// goapi reads from Go doc comments.
func (a *Analyzer) addAnnotations(f *forest.Forest, owner *element.Node, rawAnnotations interface{}, archive element.Archive) {
	for _, raw := range asSlice(rawAnnotations) {
		text := asString(raw)
		if !annotationRe.MatchString(text) {
			continue
		}
		annNode := f.Arena.NewNode(element.KindAnnotation, text, element.NewSignature(text), archive)
		owner.AddChild(annNode)
		f.Arena.AddReference(owner, annNode, element.EdgeAnnotates)
	}
}

// pendingRef is a not-yet-resolved reference from owner to whatever type
// typeKey names, recorded while a field, parameter or method is built and
// resolved once every manifest (primary and supplementary) has been
// indexed.
type pendingRef struct {
	owner   *element.Node
	pkg     *element.Node
	kind    element.EdgeKind
	typeKey string
}

// typeResolver indexes every type declaration treetext builds, by name
// within its declaring package and by package-qualified name, and
// accumulates pendingRefs against that index until resolve wires them into
// real element.Reference edges — the same two-pass scheme goapi uses, so
// forest.Prune's reference-based retention reaches a supplementary
// manifest's types here too.
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

func (r *typeResolver) indexType(pkgNode *element.Node, typeName string, node *element.Node) {
	r.byQualified[pkgNode.Name()+"."+typeName] = node
	local := r.byLocal[pkgNode]
	if local == nil {
		local = make(map[string]*element.Node)
		r.byLocal[pkgNode] = local
	}
	local[typeName] = node
}

func (r *typeResolver) addPending(owner, pkg *element.Node, kind element.EdgeKind, typeKey string) {
	if typeKey == "" {
		return
	}
	r.pending = append(r.pending, pendingRef{owner: owner, pkg: pkg, kind: kind, typeKey: typeKey})
}

// resolve wires every pending reference into a real element.Reference
// edge, trying pkg's own local declarations first, then the
// package-qualified index, then a bare name declared in any other parsed
// manifest (the first one in root order). A typeKey resolving to nothing
// (a primitive like "string", or a type from a manifest this analyzer
// never parsed) contributes no edge.
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
		for _, root := range f.Roots {
			if target != nil {
				break
			}
			target = r.byLocal[root][key]
		}
		if target == nil || target == p.owner {
			continue
		}
		f.Arena.AddReference(p.owner, target, p.kind)
	}
}

// baseTypeKey strips the pointer/slice wrapping a manifest author may
// write around a type name (e.g. "[]Engine", "*Engine") down to the bare
// key a declared type is indexed under.
func baseTypeKey(s string) string {
	for {
		switch {
		case strings.HasPrefix(s, "*"):
			s = s[1:]
		case strings.HasPrefix(s, "[]"):
			s = s[2:]
		default:
			return s
		}
	}
}

func methodSignature(name string, rawParams []interface{}) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString("(")
	for i, raw := range rawParams {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(asString(asMap(raw)["type"]))
	}
	sb.WriteString(")")
	return sb.String()
}
