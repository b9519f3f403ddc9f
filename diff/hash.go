package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/minio/highwayhash"
)

// hashKey is a fixed highwayhash key, giving the transform pipeline a
// cheap, stable fingerprint of a whole difference set for fixpoint
// comparison.
var hashKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// Hash returns a stable 64-bit fingerprint of a single difference's
// observable content (code, classification, criticality, justification,
// attachments) — not its identity, so two differences built independently
// but with identical content hash equal.
func (d Difference) Hash() (uint64, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}
	fmt.Fprintf(h, "%s\x00%s\x00", d.code, d.criticality.Name)

	dims := make([]string, 0, len(d.classification))
	for dim := range d.classification {
		dims = append(dims, string(dim))
	}
	sort.Strings(dims)
	for _, dim := range dims {
		fmt.Fprintf(h, "%s=%d\x00", dim, d.classification[Dimension(dim)])
	}

	keys := make([]string, 0, len(d.attachments))
	for k := range d.attachments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%s\x00", k, d.attachments[k])
	}
	fmt.Fprintf(h, "%s", d.justification)
	return h.Sum64(), nil
}

// HashSet returns a stable fingerprint of an ordered slice of differences,
// used by transform.Block to detect a fixpoint or an oscillation within
// its iteration cap.
func HashSet(ds []Difference) (uint64, error) {
	h, err := highwayhash.New64(hashKey)
	if err != nil {
		return 0, err
	}
	var b strings.Builder
	for _, d := range ds {
		dh, err := d.Hash()
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(&b, "%d\x00", dh)
	}
	h.Write([]byte(b.String()))
	return h.Sum64(), nil
}
