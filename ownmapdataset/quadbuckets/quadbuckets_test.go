package quadbuckets

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

func pointBound(lon, lat float64) orb.Bound {
	return orb.Point{lon, lat}.Bound()
}

func sortedInts(items []int) []int {
	sort.Ints(items)
	return items
}

func TestQuadBuckets_Search(t *testing.T) {
	qb := New[int]()
	qb.Insert(1, pointBound(0.5, 0.5), true)
	qb.Insert(2, pointBound(10, 10), true)
	qb.Insert(3, orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{1, 1}}, true)
	qb.Insert(4, orb.Bound{}, false)

	tests := []struct {
		name string
		bbox orb.Bound
		want []int
	}{
		{"around the origin", orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2, 2}}, []int{1, 3}},
		{"whole world", worldBound, []int{1, 2, 3}},
		{"empty area", orb.Bound{Min: orb.Point{50, 50}, Max: orb.Point{60, 60}}, nil},
		{"inverted bbox", orb.Bound{Min: orb.Point{2, 2}, Max: orb.Point{0, 0}}, nil},
		{"zero-area bbox", pointBound(0.5, 0.5), nil},
		{"NaN bbox", orb.Bound{Min: orb.Point{math.NaN(), 0}, Max: orb.Point{2, 2}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := qb.Search(tt.bbox)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, sortedInts(got))
		})
	}

	assert.Equal(t, []int{1, 2, 3, 4}, sortedInts(qb.All()))
}

func TestQuadBuckets_matchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	qb := New[int]()
	bounds := make(map[int]orb.Bound)

	for i := 0; i < 2000; i++ {
		lon := r.Float64()*20 - 10
		lat := r.Float64()*20 - 10
		bound := pointBound(lon, lat)
		if i%5 == 0 {
			bound = bound.Extend(orb.Point{lon + r.Float64(), lat + r.Float64()})
		}
		bounds[i] = bound
		qb.Insert(i, bound, true)
	}

	// remove some of them again
	for i := 0; i < 2000; i += 7 {
		assert.True(t, qb.Remove(i))
		delete(bounds, i)
	}
	assert.False(t, qb.Remove(7))
	assert.Equal(t, len(bounds), qb.Len())

	for i := 0; i < 50; i++ {
		lon := r.Float64()*20 - 10
		lat := r.Float64()*20 - 10
		bbox := orb.Bound{Min: orb.Point{lon, lat}, Max: orb.Point{lon + r.Float64()*5, lat + r.Float64()*5}}

		var want []int
		for item, bound := range bounds {
			if bound.Intersects(bbox) {
				want = append(want, item)
			}
		}

		got := qb.Search(bbox)
		assert.Equal(t, sortedInts(want), sortedInts(got))
	}
}

func TestQuadBuckets_InsertMoves(t *testing.T) {
	qb := New[string]()
	qb.Insert("a", pointBound(1, 1), true)
	qb.Insert("a", pointBound(30, 30), true)

	assert.Equal(t, 1, qb.Len())
	assert.Empty(t, qb.Search(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{2, 2}}))
	assert.Equal(t, []string{"a"}, qb.Search(orb.Bound{Min: orb.Point{29, 29}, Max: orb.Point{31, 31}}))

	qb.Clear()
	assert.Equal(t, 0, qb.Len())
	assert.False(t, qb.Contains("a"))
}
