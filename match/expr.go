// Package match compiles a user-supplied predicate expression into a
// Recipe that can produce a tree filter for a given archive analyzer, and
// binds predicates separately to the old/new side of a pair for transform
// matching.
package match

import (
	"regexp"

	"github.com/viant/apidiff/element"
)

// node is the compiled expression AST. Kept unexported: callers only see
// the compiled Recipe.
type node interface {
	eval(n *element.Node) bool
}

type andNode struct{ left, right node }

func (a andNode) eval(n *element.Node) bool { return a.left.eval(n) && a.right.eval(n) }

type orNode struct{ left, right node }

func (o orNode) eval(n *element.Node) bool { return o.left.eval(n) || o.right.eval(n) }

type notNode struct{ inner node }

func (nn notNode) eval(n *element.Node) bool { return !nn.inner.eval(n) }

// comparisonOp is one of ==, != or =~ (regular-expression match).
type comparisonOp int

const (
	opEquals comparisonOp = iota
	opNotEquals
	opMatches
)

type comparisonNode struct {
	field   string // "kind" or "name"
	op      comparisonOp
	literal string
	re      *regexp.Regexp // compiled, only for opMatches
}

func (c comparisonNode) fieldValue(n *element.Node) string {
	switch c.field {
	case "kind":
		return n.Kind().String()
	case "name":
		return n.Name()
	default:
		return ""
	}
}

func (c comparisonNode) eval(n *element.Node) bool {
	v := c.fieldValue(n)
	switch c.op {
	case opEquals:
		return v == c.literal
	case opNotEquals:
		return v != c.literal
	case opMatches:
		return c.re != nil && c.re.MatchString(v)
	default:
		return false
	}
}

// alwaysNode matches every element; used for the empty expression.
type alwaysNode struct{}

func (alwaysNode) eval(*element.Node) bool { return true }
