// Package index provides the build-once bounding-box index used to find
// candidate segments near a point.
package index

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
)

// ErrUnknownBackend is returned for an index backend name that is not known.
var ErrUnknownBackend = errors.New("unknown index backend")

// Index maps positions 0..Len()-1 to bounding boxes. It is read-only once
// built, so concurrent queries are safe.
type Index interface {
	// Query returns the positions whose box intersects b. Boxes that only
	// touch b count. The order of the result is unspecified.
	Query(b orb.Bound) []int
	Len() int
}

type Backend string

const (
	BackendRTree   Backend = "rtreego"
	BackendTidwall Backend = "tidwall"
)

func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendRTree, "rtree":
		return BackendRTree, nil
	case BackendTidwall:
		return BackendTidwall, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

// Build indexes bounds[i] under position i.
func Build(backend Backend, bounds []orb.Bound) (Index, error) {
	switch backend {
	case "", BackendRTree:
		return buildRTree(bounds)
	case BackendTidwall:
		return buildTidwall(bounds), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
