package index

import (
	"github.com/paulmach/orb"
	"github.com/tidwall/rtree"
)

type tidwallTree struct {
	tree rtree.RTreeG[int]
}

func buildTidwall(bounds []orb.Bound) *tidwallTree {
	t := &tidwallTree{}
	for i, b := range bounds {
		t.tree.Insert(b.Min, b.Max, i)
	}
	return t
}

// Query relies on tidwall/rtree comparing with closed intervals.
func (t *tidwallTree) Query(b orb.Bound) []int {
	var out []int
	t.tree.Search(b.Min, b.Max, func(_, _ [2]float64, pos int) bool {
		out = append(out, pos)
		return true
	})
	return out
}

func (t *tidwallTree) Len() int {
	return t.tree.Len()
}
