// Package feature holds the geometry and attribute types shared by the store,
// the matcher and the writers.
package feature

import "github.com/paulmach/orb"

const (
	// IDField is the attribute that identifies a segment.
	IDField = "id"
	// NearIDField receives the matched segment id.
	NearIDField = "near_id"
	// NoMatch is the near_id value of a record without candidates.
	NoMatch = ""
)

// Segment pairs a geometry with its attributes. Bound is computed once when
// the segment is created.
type Segment struct {
	Geometry   orb.Geometry
	Bound      orb.Bound
	Properties *Properties
}

func NewSegment(g orb.Geometry, props *Properties) Segment {
	if props == nil {
		props = NewProperties()
	}
	return Segment{
		Geometry:   g,
		Bound:      g.Bound(),
		Properties: props,
	}
}

// ID is shorthand for s.Properties.ID().
func (s Segment) ID() (string, bool) {
	return s.Properties.ID()
}

// Record is one input observation: a point in the working coordinate system
// plus the raw fields it was read from.
type Record struct {
	Point      orb.Point
	Properties *Properties
}

func NewRecord(p orb.Point, props *Properties) *Record {
	if props == nil {
		props = NewProperties()
	}
	return &Record{Point: p, Properties: props}
}
