package index

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var backends = []Backend{BackendRTree, BackendTidwall}

func box(minX, minY, maxX, maxY float64) orb.Bound {
	return orb.Bound{Min: orb.Point{minX, minY}, Max: orb.Point{maxX, maxY}}
}

func sorted(xs []int) []int {
	out := append([]int(nil), xs...)
	sort.Ints(out)
	return out
}

func TestBuild_Empty(t *testing.T) {
	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			idx, err := Build(b, nil)
			require.NoError(t, err)
			assert.Equal(t, 0, idx.Len())
			assert.Empty(t, idx.Query(box(-1e9, -1e9, 1e9, 1e9)))
		})
	}
}

func TestQuery_ClosedIntervals(t *testing.T) {
	bounds := []orb.Bound{
		box(0, 0, 10, 0),  // horizontal line
		box(0, 5, 10, 5),  // horizontal line
		box(20, 0, 20, 8), // vertical line
		box(3, 3, 3, 3),   // point
	}

	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			idx, err := Build(b, bounds)
			require.NoError(t, err)
			assert.Equal(t, 4, idx.Len())

			// rests on the line at y=5
			assert.Equal(t, []int{1}, sorted(idx.Query(box(4, 5, 6, 7))))
			// touches the line at y=0 exactly along its length
			assert.Equal(t, []int{0}, sorted(idx.Query(box(-1, -2, 1, 0))))
			// corner contact with the vertical line
			assert.Equal(t, []int{2}, sorted(idx.Query(box(20, 8, 21, 9))))
			// degenerate query box on a point entry
			assert.Equal(t, []int{3}, sorted(idx.Query(box(3, 3, 3, 3))))
			// covers everything
			assert.Equal(t, []int{0, 1, 2, 3}, sorted(idx.Query(box(-1, -1, 21, 9))))
			// gap between lines
			assert.Empty(t, idx.Query(box(11, 1, 19, 4)))
		})
	}
}

func TestQuery_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	bounds := make([]orb.Bound, 500)
	for i := range bounds {
		x, y := rng.Float64()*1000, rng.Float64()*1000
		bounds[i] = box(x, y, x+rng.Float64()*30, y+rng.Float64()*30)
	}

	for _, b := range backends {
		t.Run(string(b), func(t *testing.T) {
			idx, err := Build(b, bounds)
			require.NoError(t, err)

			for q := 0; q < 100; q++ {
				x, y := rng.Float64()*1000, rng.Float64()*1000
				query := box(x-25, y-25, x+25, y+25)

				var want []int
				for i, bb := range bounds {
					if bb.Intersects(query) {
						want = append(want, i)
					}
				}
				assert.Equal(t, want, sorted(idx.Query(query)))
			}
		})
	}
}

func TestQuery_LargeProjectedCoordinates(t *testing.T) {
	// web mercator around Boston
	bounds := []orb.Bound{box(-7910000, 5210000, -7909000, 5210000)}
	for _, b := range backends {
		idx, err := Build(b, bounds)
		require.NoError(t, err)
		assert.Equal(t, []int{0}, idx.Query(box(-7909500, 5209990, -7909480, 5210000)))
		assert.Empty(t, idx.Query(box(-7909500, 5210001, -7909480, 5210020)))
	}
}

func TestParseBackend(t *testing.T) {
	b, err := ParseBackend("")
	require.NoError(t, err)
	assert.Equal(t, BackendRTree, b)

	b, err = ParseBackend("Tidwall")
	require.NoError(t, err)
	assert.Equal(t, BackendTidwall, b)

	_, err = ParseBackend("kdtree")
	assert.ErrorIs(t, err, ErrUnknownBackend)

	_, err = Build("kdtree", nil)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
