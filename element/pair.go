package element

// Pair is an (old, new) element pair as produced by the forest walker. One
// side may be nil — a "half-pair" — when an element exists on only one side
// of the comparison.
type Pair struct {
	Old *Node
	New *Node
}

// IsHalf reports whether exactly one side of the pair is present.
func (p Pair) IsHalf() bool { return (p.Old == nil) != (p.New == nil) }

// IsEmpty reports whether neither side is present (never produced by the
// walker, but useful as a zero-value check).
func (p Pair) IsEmpty() bool { return p.Old == nil && p.New == nil }

// Kind returns the kind shared by whichever side(s) are present.
func (p Pair) Kind() Kind {
	if p.Old != nil {
		return p.Old.Kind()
	}
	if p.New != nil {
		return p.New.Kind()
	}
	return KindUnspecified
}

// String returns the identity string of whichever side(s) are present,
// useful for error messages and fatal-difference attachment.
func (p Pair) String() string {
	if p.Old != nil {
		return p.Old.Name()
	}
	if p.New != nil {
		return p.New.Name()
	}
	return "<empty pair>"
}
