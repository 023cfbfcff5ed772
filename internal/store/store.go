// Package store holds the immutable, ordered collection of segments that the
// spatial index is built over.
package store

import (
	"context"
	"math"

	"github.com/paulmach/orb"

	"github.com/thomhuang/NearestSegment/internal/feature"
	"github.com/thomhuang/NearestSegment/internal/logging"
)

// Store is read-only after Load. The segment at position i keeps that
// position for the lifetime of the store.
type Store struct {
	segments []feature.Segment
}

// Load reads every source in order and concatenates their segments. Any
// unreadable source, empty geometry, missing id or repeated id aborts the
// load and no store is returned. Each segment's bound is computed here.
func Load(ctx context.Context, log *logging.Logger, sources ...Source) (*Store, error) {
	if log == nil {
		log = logging.Noop()
	}

	var segments []feature.Segment
	seen := make(map[string]string)

	for _, src := range sources {
		items, err := src.Segments()
		if err != nil {
			log.LogLoad(ctx, src.Name(), 0, err)
			return nil, &LoadError{Source: src.Name(), Position: -1, cause: err}
		}

		for i, seg := range items {
			if seg.Geometry == nil {
				return nil, &LoadError{Source: src.Name(), Position: i, cause: ErrNoGeometry}
			}
			b := seg.Geometry.Bound()
			if isEmpty(b) {
				return nil, &LoadError{Source: src.Name(), Position: i, cause: ErrEmptyGeometry}
			}
			seg.Bound = b
			id, ok := seg.ID()
			if !ok {
				return nil, &LoadError{Source: src.Name(), Position: i, cause: ErrMissingID}
			}
			if prev, dup := seen[id]; dup {
				return nil, &LoadError{
					Source:   src.Name(),
					Position: i,
					cause:    wrapDuplicate(id, prev),
				}
			}
			seen[id] = src.Name()
			segments = append(segments, seg)
		}
		log.LogLoad(ctx, src.Name(), len(items), nil)
	}

	return &Store{segments: segments}, nil
}

// isEmpty reports an inverted or non-finite bound, which is what orb returns
// for geometries without points.
func isEmpty(b orb.Bound) bool {
	for _, v := range []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return true
		}
	}
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1]
}

// New wraps already validated segments without reading any source.
func New(segments []feature.Segment) *Store {
	return &Store{segments: segments}
}

func (s *Store) Len() int {
	return len(s.segments)
}

// Segment returns the segment at position i.
func (s *Store) Segment(i int) feature.Segment {
	return s.segments[i]
}

// Segments returns the backing slice; callers must not modify it.
func (s *Store) Segments() []feature.Segment {
	return s.segments
}

// Bounds returns the cached bounding box of every segment, by position.
func (s *Store) Bounds() []orb.Bound {
	out := make([]orb.Bound, len(s.segments))
	for i, seg := range s.segments {
		out[i] = seg.Bound
	}
	return out
}
