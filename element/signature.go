package element

import (
	"bytes"
	"encoding/binary"

	"github.com/minio/highwayhash"
)

// sigKey is a fixed, arbitrary 32-byte key. The signature only needs to be
// stable within a single process/run, so a fixed key is
// sufficient and keeps hashing allocation-free at call sites.
var sigKey = func() []byte {
	var k [32]byte
	copy(k[:], "apidiff-element-signature-key!!!")
	return k[:]
}()

// Signature is the comparable, per-kind equality key used to order an
// element's siblings and to locate a matching child across the old/new
// forests. It pairs a highwayhash
// digest (for fast, total-ordered comparison) with the original textual
// form so mismatches are debuggable.
type Signature struct {
	digest [highwayhash.Size]byte
	text   string
}

// NewSignature builds a Signature from a back-end supplied comparable key,
// typically the element's declared name plus enough disambiguating detail
// (parameter types, arity) to be unique among its siblings.
func NewSignature(text string) Signature {
	sum := highwayhash.Sum([]byte(text), sigKey)
	return Signature{digest: sum, text: text}
}

// String returns the original textual form the signature was built from.
func (s Signature) String() string { return s.text }

// Compare returns -1, 0, or 1 following the digest order, falling back to
// the textual form on digest equality (two distinct texts are vanishingly
// unlikely to collide, but the fallback keeps Compare a true total order).
func (s Signature) Compare(other Signature) int {
	if c := bytes.Compare(s.digest[:], other.digest[:]); c != 0 {
		return c
	}
	if s.text < other.text {
		return -1
	}
	if s.text > other.text {
		return 1
	}
	return 0
}

// Equal reports whether two signatures are the same equality key.
func (s Signature) Equal(other Signature) bool { return s.Compare(other) == 0 }

// IsZero reports whether s was never assigned (the Node zero value).
func (s Signature) IsZero() bool { return s.text == "" }

// bytesKey returns a byte-comparable encoding combining the kind and the
// signature, used as the key of a Node's child index (Node.childIndex).
func bytesKey(k Kind, s Signature) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(k))
	return string(buf[:]) + string(s.digest[:]) + s.text
}
