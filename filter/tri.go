// Package filter implements the tree filter protocol: a three-valued
// predicate over elements with deferred resolution, composed via
// intersection and union.
package filter

// Tri is a three-valued logic value. Kept as a small closed enum with an
// explicit truth table rather than a pair of booleans.
type Tri int

const (
	No Tri = iota
	Yes
	Undecided
)

func (t Tri) String() string {
	switch t {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "undecided"
	}
}

// And implements the lattice meet: undecided ∧ no = no, undecided ∧ yes =
// undecided, yes ∧ yes = yes, no ∧ anything = no.
func (t Tri) And(other Tri) Tri {
	if t == No || other == No {
		return No
	}
	if t == Undecided || other == Undecided {
		return Undecided
	}
	return Yes
}

// Or implements the lattice join: undecided ∨ yes = yes, undecided ∨ no =
// undecided, no ∨ no = no, yes ∨ anything = yes.
func (t Tri) Or(other Tri) Tri {
	if t == Yes || other == Yes {
		return Yes
	}
	if t == Undecided || other == Undecided {
		return Undecided
	}
	return No
}

// FromBool lifts a plain boolean into the three-valued lattice.
func FromBool(b bool) Tri {
	if b {
		return Yes
	}
	return No
}
