// Package match assigns each point record the id of its nearest segment.
package match

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"golang.org/x/sync/errgroup"

	"github.com/thomhuang/NearestSegment/internal/feature"
	"github.com/thomhuang/NearestSegment/internal/index"
	"github.com/thomhuang/NearestSegment/internal/logging"
	"github.com/thomhuang/NearestSegment/internal/project"
	"github.com/thomhuang/NearestSegment/internal/store"
)

var (
	// ErrInvalidTolerance is returned for a tolerance that is not a positive,
	// finite number.
	ErrInvalidTolerance = errors.New("tolerance must be positive and finite")
	// ErrIndexMismatch is returned when the index was not built over the store.
	ErrIndexMismatch = errors.New("index size does not match store size")
)

// Result describes the outcome for one point.
type Result struct {
	Position   int // store position of the nearest segment, -1 if none
	ID         string
	Distance   float64 // planar distance, +Inf if none
	Candidates int     // number of segments returned by the box query
}

func (r Result) Matched() bool {
	return r.Position >= 0
}

// Stats summarizes a match pass.
type Stats struct {
	Records int
	Matched int
}

func (s Stats) Unmatched() int {
	return s.Records - s.Matched
}

type Option func(*Matcher)

// WithDistanceField also writes the planar distance to the matched segment
// under name. Unmatched records get nil.
func WithDistanceField(name string) Option {
	return func(m *Matcher) { m.distanceField = name }
}

// WithGeodesicField also writes the great-circle distance in kilometers
// between the record and the closest point of the matched segment. Points
// are read in crs.
func WithGeodesicField(name string, crs project.CRS) Option {
	return func(m *Matcher) {
		m.geodesicField = name
		m.crs = crs
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(m *Matcher) { m.log = l }
}

// Matcher reads the store and index but never modifies them, so one Matcher
// can serve any number of goroutines.
type Matcher struct {
	store     *store.Store
	index     index.Index
	tolerance float64

	distanceField string
	geodesicField string
	crs           project.CRS
	log           *logging.Logger
}

func New(st *store.Store, idx index.Index, tolerance float64, opts ...Option) (*Matcher, error) {
	if !(tolerance > 0) || math.IsInf(tolerance, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTolerance, tolerance)
	}
	if idx.Len() != st.Len() {
		return nil, fmt.Errorf("%w: index %d, store %d", ErrIndexMismatch, idx.Len(), st.Len())
	}

	m := &Matcher{
		store:     st,
		index:     idx,
		tolerance: tolerance,
		log:       logging.Noop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Matcher) Tolerance() float64 {
	return m.tolerance
}

// Nearest finds the segment closest to p among those whose bounding box
// intersects the bounding square of the tolerance disk around p.
//
// Candidates are not re-checked against the tolerance: a segment farther
// than the tolerance can still be chosen when its box reaches into the query
// square. Equal distances keep the candidate the index returned first.
func (m *Matcher) Nearest(p orb.Point) Result {
	candidates := m.index.Query(p.Bound().Pad(m.tolerance))

	res := Result{Position: -1, Distance: math.Inf(1), Candidates: len(candidates)}
	for _, pos := range candidates {
		d := planar.DistanceFrom(m.store.Segment(pos).Geometry, p)
		if res.Position < 0 || d < res.Distance {
			res.Position = pos
			res.Distance = d
		}
	}

	if res.Matched() {
		res.ID, _ = m.store.Segment(res.Position).ID()
	}
	return res
}

// Match sets near_id on r, plus the optional distance fields.
func (m *Matcher) Match(r *feature.Record) Result {
	res := m.Nearest(r.Point)
	r.Properties.SetNearID(res.ID)

	if m.distanceField != "" {
		if res.Matched() {
			r.Properties.Set(m.distanceField, res.Distance)
		} else {
			r.Properties.Set(m.distanceField, nil)
		}
	}
	if m.geodesicField != "" {
		r.Properties.Set(m.geodesicField, m.geodesicKm(r.Point, res))
	}
	return res
}

func (m *Matcher) geodesicKm(p orb.Point, res Result) any {
	if !res.Matched() {
		return nil
	}
	snapped := closestPoint(m.store.Segment(res.Position).Geometry, p)
	km, err := project.GeodesicKm(p, snapped, m.crs)
	if err != nil {
		m.log.Debug("geodesic distance unavailable", "near_id", res.ID, "error", err)
		return nil
	}
	return km
}

// MatchAll matches every record in order.
func (m *Matcher) MatchAll(records []*feature.Record) Stats {
	start := time.Now()
	stats := Stats{Records: len(records)}
	for _, r := range records {
		if m.Match(r).Matched() {
			stats.Matched++
		}
	}
	m.log.LogMatch(context.Background(), m.tolerance, stats.Records, stats.Matched, time.Since(start))
	return stats
}

// MatchAllParallel splits records into contiguous chunks, one per worker.
// Records are independent and the store and index are read-only, so the
// result equals MatchAll's whenever each minimum is unique. A cancelled ctx
// stops further matching and is returned; records not yet reached keep their
// previous attributes.
func (m *Matcher) MatchAllParallel(ctx context.Context, records []*feature.Record, workers int) (Stats, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers == 1 || len(records) < 2 {
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}
		return m.MatchAll(records), nil
	}

	start := time.Now()
	// determines # of records for a single worker, rounding up
	chunkSize := (len(records) + workers - 1) / workers

	var matched atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for lo := 0; lo < len(records); lo += chunkSize {
		hi := min(lo+chunkSize, len(records))
		g.Go(func() error {
			n := 0
			for i, r := range records[lo:hi] {
				if i%256 == 0 {
					if err := gctx.Err(); err != nil {
						matched.Add(int64(n))
						return err
					}
				}
				if m.Match(r).Matched() {
					n++
				}
			}
			matched.Add(int64(n))
			return nil
		})
	}

	err := g.Wait()
	stats := Stats{Records: len(records), Matched: int(matched.Load())}
	if err != nil {
		return stats, err
	}
	m.log.LogMatch(ctx, m.tolerance, stats.Records, stats.Matched, time.Since(start))
	return stats, nil
}
