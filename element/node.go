package element

import "sort"

// ID is an arena-local identifier. Ownership of a Node is strictly through
// its parent link; reference edges (see reference.go) are a separate
// adjacency map keyed by ID and never own, which keeps a cyclic reference
// graph from fighting Go's GC or requiring weak pointers.
type ID int

// noParent marks a root element.
const noParent ID = -1

// Archive identifies which input artifact (primary or supplementary) an
// element came from. It is a plain string so back-ends can use whatever
// naming scheme fits their artifact model (a jar path, a module name, a
// logical source name).
type Archive string

// Node is a single element of a forest: a typed, ordered tree node with a
// stable identity key and a cross-reference graph (see reference.go). No
// back-end specific payload is modeled here — everything downstream works
// off this shared header.
type Node struct {
	id     ID
	arena  *Arena
	parent ID // noParent for roots

	kind      Kind
	signature Signature
	name      string // human-readable string; stable identity key for matchers/reporters

	children   []ID
	childIndex map[string]ID // bytesKey(kind,signature) -> child id, lazily built

	archive Archive

	inAPI           bool
	inAPIThroughUse bool
}

// Arena owns every Node allocated for a single run (both the old and the
// new forest together, so comparator code never has to special-case which
// side a node came from). A fresh Arena must be created per run; nothing in
// this package keeps state across runs.
type Arena struct {
	nodes       []*Node
	edges       []Reference
	referencing map[ID][]Reference
}

// NewArena creates an empty, run-scoped node arena.
func NewArena() *Arena { return &Arena{referencing: make(map[ID][]Reference)} }

// NewNode allocates a new node, with no parent until AddChild attaches it,
// with the given kind, identity string, signature and archive. The
// caller is responsible for calling AddChild on the intended parent (or
// leaving it a root) and for wiring references separately.
func (a *Arena) NewNode(kind Kind, name string, sig Signature, archive Archive) *Node {
	n := &Node{
		id:      ID(len(a.nodes)),
		arena:   a,
		parent:  noParent,
		kind:    kind,
		name:    name,
		signature: sig,
		archive: archive,
	}
	a.nodes = append(a.nodes, n)
	return n
}

func (a *Arena) node(id ID) *Node {
	if id == noParent || int(id) >= len(a.nodes) {
		return nil
	}
	return a.nodes[id]
}

// AddChild appends child to parent's ordered child set and sets child's
// parent link, maintaining the sorted-by-signature invariant.
// It also records the structural "contains" reference (see reference.go).
func (parent *Node) AddChild(child *Node) {
	child.parent = parent.id
	parent.children = append(parent.children, child.id)
	sort.SliceStable(parent.children, func(i, j int) bool {
		return parent.arena.node(parent.children[i]).Compare(parent.arena.node(parent.children[j])) < 0
	})
	if parent.childIndex == nil {
		parent.childIndex = make(map[string]ID, len(parent.children))
	}
	parent.childIndex[bytesKey(child.kind, child.signature)] = child.id
	parent.arena.addReference(parent.id, child.id, EdgeContains)
}

// ID returns the node's arena-local identity.
func (n *Node) ID() ID { return n.id }

// Kind returns the node's kind tag.
func (n *Node) Kind() Kind { return n.kind }

// Name returns the node's human-readable, stable identity string.
func (n *Node) Name() string { return n.name }

// Signature returns the node's comparable per-kind equality key.
func (n *Node) Signature() Signature { return n.signature }

// Archive returns the provenance artifact this node came from.
func (n *Node) Archive() Archive { return n.archive }

// SetArchive updates the node's recorded provenance. Used by Prune when a
// supplementary element is retained through inheritance from a primary
// owner.
func (n *Node) SetArchive(a Archive) { n.archive = a }

// InAPI reports whether the node is itself part of the compared API.
func (n *Node) InAPI() bool { return n.inAPI }

// SetInAPI marks the node as part of the compared API surface.
func (n *Node) SetInAPI(v bool) { n.inAPI = v }

// InAPIThroughUse reports whether the node is reachable from the API only
// via a use-site (e.g. a parameter type pulled in from a supplementary
// archive), not part of the API itself.
func (n *Node) InAPIThroughUse() bool { return n.inAPIThroughUse }

// SetInAPIThroughUse records that the node is reachable only via use-site.
func (n *Node) SetInAPIThroughUse(v bool) { n.inAPIThroughUse = v }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.arena.node(n.parent) }

// Children returns the node's ordered child sequence (already sorted by
// signature per the class invariant; see AddChild).
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	for i, id := range n.children {
		out[i] = n.arena.node(id)
	}
	return out
}

// ChildBySignature locates a child by (kind, signature) in O(1).
func (n *Node) ChildBySignature(kind Kind, sig Signature) *Node {
	if n.childIndex == nil {
		return nil
	}
	id, ok := n.childIndex[bytesKey(kind, sig)]
	if !ok {
		return nil
	}
	return n.arena.node(id)
}

// FilterChildren removes n's children for which keep returns false,
// preserving the relative order and sorted-by-signature invariant of the
// rest. Used by forest.Prune to detach unreachable supplementary elements.
func (n *Node) FilterChildren(keep func(*Node) bool) {
	var kept []ID
	for _, id := range n.children {
		if keep(n.arena.node(id)) {
			kept = append(kept, id)
		}
	}
	n.children = kept
	if n.childIndex != nil {
		n.childIndex = make(map[string]ID, len(kept))
		for _, id := range kept {
			c := n.arena.node(id)
			n.childIndex[bytesKey(c.kind, c.signature)] = id
		}
	}
}

// Stream returns a lazy depth-first enumeration of n's descendants (n
// itself is not included), optionally restricted to a single kind. "Lazy" here means the slice is
// built on demand rather than cached on the node; call sites that need
// true streaming can range over StreamFunc instead.
func (n *Node) Stream(kind Kind, recursive bool) []*Node {
	var out []*Node
	n.StreamFunc(kind, recursive, func(m *Node) bool {
		out = append(out, m)
		return true
	})
	return out
}

// StreamFunc walks n's subtree depth-first, calling visit for every node
// matching kind (or every node, if kind is KindUnspecified), stopping early
// if visit returns false. When recursive is false, only direct children of
// n are visited (n itself is not).
func (n *Node) StreamFunc(kind Kind, recursive bool, visit func(*Node) bool) {
	var walk func(*Node) bool
	walk = func(cur *Node) bool {
		if cur != n && (kind == KindUnspecified || cur.kind == kind) {
			if !visit(cur) {
				return false
			}
		}
		if cur != n && !recursive {
			return true
		}
		for _, childID := range cur.children {
			if !walk(cur.arena.node(childID)) {
				return false
			}
		}
		return true
	}
	walk(n)
}

// Compare defines the total order used to sort siblings: by kind's
// registration order first (with KindAnnotation always sorting last among
// any siblings, so annotation differences can be rolled up into their
// container's report without the walker special-casing them), then by
// signature.
func (n *Node) Compare(other *Node) int {
	if n.kind.IsAnnotation() != other.kind.IsAnnotation() {
		if n.kind.IsAnnotation() {
			return 1
		}
		return -1
	}
	if n.kind != other.kind {
		if n.kind < other.kind {
			return -1
		}
		return 1
	}
	return n.signature.Compare(other.signature)
}
