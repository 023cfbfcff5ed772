package match

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// closestPoint returns the point of g nearest to p. Polygons are measured to
// their rings.
func closestPoint(g orb.Geometry, p orb.Point) orb.Point {
	c := closest{target: p, dist: math.Inf(1), best: p}
	c.visit(g)
	return c.best
}

type closest struct {
	target orb.Point
	best   orb.Point
	dist   float64
}

func (c *closest) visit(g orb.Geometry) {
	switch g := g.(type) {
	case orb.Point:
		c.offer(g)
	case orb.MultiPoint:
		for _, pt := range g {
			c.offer(pt)
		}
	case orb.LineString:
		c.line(g)
	case orb.MultiLineString:
		for _, ls := range g {
			c.line(ls)
		}
	case orb.Ring:
		c.line(orb.LineString(g))
	case orb.Polygon:
		for _, r := range g {
			c.line(orb.LineString(r))
		}
	case orb.MultiPolygon:
		for _, poly := range g {
			c.visit(poly)
		}
	case orb.Collection:
		for _, sub := range g {
			c.visit(sub)
		}
	case orb.Bound:
		c.visit(g.ToPolygon())
	}
}

func (c *closest) line(ls orb.LineString) {
	if len(ls) == 1 {
		c.offer(ls[0])
		return
	}
	for i := 1; i < len(ls); i++ {
		c.offer(onSegment(ls[i-1], ls[i], c.target))
	}
}

func (c *closest) offer(pt orb.Point) {
	if d := planar.DistanceSquared(pt, c.target); d < c.dist {
		c.dist = d
		c.best = pt
	}
}

// onSegment projects p onto segment ab, clamped to the endpoints.
func onSegment(a, b, p orb.Point) orb.Point {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return a
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return orb.Point{a[0] + t*dx, a[1] + t*dy}
}
