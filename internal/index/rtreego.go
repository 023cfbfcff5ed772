package index

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

const (
	minChildren = 25
	maxChildren = 50
)

// rtreego rejects zero-length sides and treats touching rectangles as
// disjoint, so stored and query rectangles are widened by a small margin and
// results are re-checked against the exact bounds.
const relMargin = 1e-9

type rtreeItem struct {
	pos   int
	bound orb.Bound
	rect  rtreego.Rect
}

func (it *rtreeItem) Bounds() rtreego.Rect {
	return it.rect
}

type rtreegoTree struct {
	tree *rtreego.Rtree
	size int
}

func buildRTree(bounds []orb.Bound) (*rtreegoTree, error) {
	items := make([]rtreego.Spatial, 0, len(bounds))
	for i, b := range bounds {
		rect, err := toRect(b)
		if err != nil {
			return nil, fmt.Errorf("position %d: %w", i, err)
		}
		items = append(items, &rtreeItem{pos: i, bound: b, rect: rect})
	}

	// bulk load: the tree is never modified afterwards
	return &rtreegoTree{
		tree: rtreego.NewTree(2, minChildren, maxChildren, items...),
		size: len(bounds),
	}, nil
}

func (t *rtreegoTree) Query(b orb.Bound) []int {
	if t.size == 0 {
		return nil
	}
	rect, err := toRect(b)
	if err != nil {
		return nil
	}

	var out []int
	for _, s := range t.tree.SearchIntersect(rect) {
		it := s.(*rtreeItem)
		if it.bound.Intersects(b) {
			out = append(out, it.pos)
		}
	}
	return out
}

func (t *rtreegoTree) Len() int {
	return t.size
}

func toRect(b orb.Bound) (rtreego.Rect, error) {
	m := margin(b)
	p := rtreego.Point{b.Min[0] - m, b.Min[1] - m}
	lengths := []float64{
		b.Max[0] - b.Min[0] + 2*m,
		b.Max[1] - b.Min[1] + 2*m,
	}
	return rtreego.NewRect(p, lengths)
}

func margin(b orb.Bound) float64 {
	scale := 1.0
	for _, v := range []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]} {
		scale = math.Max(scale, math.Abs(v))
	}
	return scale * relMargin
}
