// Package rid generates record identifiers.
//
// An identifier is a short type prefix followed by an underscore and a
// time-sortable ksid, e.g. "post_Bv3Q0q2u0W0". Identifiers are unique with
// overwhelming probability and never require a round-trip to the store.
package rid

import (
	"fmt"
	"strings"
	"sync"

	"github.com/maruel/ksid"
)

// Generator creates identifiers for new records.
type Generator interface {
	New(prefix string) string
}

// KSID generates identifiers backed by ksid.
type KSID struct{}

// New implements Generator.
func (KSID) New(prefix string) string {
	return New(prefix)
}

// New returns prefix + "_" + a fresh time-sortable ID.
func New(prefix string) string {
	return prefix + "_" + ksid.NewID().String()
}

// Prefix returns the type prefix of an identifier, or "" if it has none.
func Prefix(id string) string {
	p, _, ok := strings.Cut(id, "_")
	if !ok {
		return ""
	}
	return p
}

// Sequence is a deterministic Generator for tests: prefix_1, prefix_2, ...
type Sequence struct {
	mu sync.Mutex
	n  int
}

// New implements Generator.
func (s *Sequence) New(prefix string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s_%d", prefix, s.n)
}
