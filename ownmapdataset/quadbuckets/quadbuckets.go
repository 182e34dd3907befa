// Package quadbuckets is a spatial index over lon/lat bounds.
//
// The world rectangle is split recursively into four quadrants. A bucket holds up to
// MaxBucketItems before it splits; items that straddle a split line stay in the bucket
// above. Items without a usable bound are kept aside: they are never returned by
// Search, but are part of All.
package quadbuckets

import (
	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/paulmach/orb"
)

const (
	MaxBucketItems = 48
	MaxDepth       = 16
)

var worldBound = ownmap.BoundsToBound(ownmap.GetWholeWorldBounds())

type entry[T comparable] struct {
	item  T
	bound orb.Bound
}

type bucket[T comparable] struct {
	bound    orb.Bound
	depth    int
	entries  []entry[T]
	children *[4]*bucket[T]
}

type QuadBuckets[T comparable] struct {
	root     *bucket[T]
	location map[T]*bucket[T]
	unplaced map[T]struct{}
}

func New[T comparable]() *QuadBuckets[T] {
	return &QuadBuckets[T]{
		root:     &bucket[T]{bound: worldBound},
		location: make(map[T]*bucket[T]),
		unplaced: make(map[T]struct{}),
	}
}

// Insert adds an item with the given bound. Inserting an item that is already present moves it.
// With hasBound false the item has no position and never turns up in searches.
func (qb *QuadBuckets[T]) Insert(item T, bound orb.Bound, hasBound bool) {
	qb.Remove(item)

	if !hasBound {
		qb.unplaced[item] = struct{}{}
		return
	}

	qb.root.insert(entry[T]{item, bound}, qb.location)
}

// Remove takes the item out of the index. Returns false if it wasn't there.
func (qb *QuadBuckets[T]) Remove(item T) bool {
	if _, ok := qb.unplaced[item]; ok {
		delete(qb.unplaced, item)
		return true
	}

	b, ok := qb.location[item]
	if !ok {
		return false
	}

	for i, e := range b.entries {
		if e.item == item {
			last := len(b.entries) - 1
			b.entries[i] = b.entries[last]
			b.entries = b.entries[:last]
			break
		}
	}
	delete(qb.location, item)
	return true
}

func (qb *QuadBuckets[T]) Contains(item T) bool {
	if _, ok := qb.unplaced[item]; ok {
		return true
	}
	_, ok := qb.location[item]
	return ok
}

func (qb *QuadBuckets[T]) Len() int {
	return len(qb.location) + len(qb.unplaced)
}

func (qb *QuadBuckets[T]) Clear() {
	qb.root = &bucket[T]{bound: worldBound}
	qb.location = make(map[T]*bucket[T])
	qb.unplaced = make(map[T]struct{})
}

// All returns every item, placed or not
func (qb *QuadBuckets[T]) All() []T {
	items := make([]T, 0, qb.Len())
	qb.root.walk(func(e entry[T]) {
		items = append(items, e.item)
	})
	for item := range qb.unplaced {
		items = append(items, item)
	}
	return items
}

// Search returns the items whose bound intersects bbox. A degenerate bbox gives an empty result.
func (qb *QuadBuckets[T]) Search(bbox orb.Bound) []T {
	if ownmap.IsDegenerateBound(bbox) {
		return nil
	}

	var items []T
	qb.root.search(bbox, &items)
	return items
}

func (b *bucket[T]) walk(fn func(e entry[T])) {
	for _, e := range b.entries {
		fn(e)
	}
	if b.children == nil {
		return
	}
	for _, child := range b.children {
		if child != nil {
			child.walk(fn)
		}
	}
}

func (b *bucket[T]) search(bbox orb.Bound, items *[]T) {
	for _, e := range b.entries {
		if e.bound.Intersects(bbox) {
			*items = append(*items, e.item)
		}
	}
	if b.children == nil {
		return
	}
	for _, child := range b.children {
		if child != nil && child.bound.Intersects(bbox) {
			child.search(bbox, items)
		}
	}
}

// insert places the entry, recording the bucket it ends up in
func (b *bucket[T]) insert(e entry[T], location map[T]*bucket[T]) {
	if b.children != nil {
		quadrant := b.quadrantFor(e.bound)
		if quadrant >= 0 {
			b.child(quadrant).insert(e, location)
			return
		}
	}

	b.entries = append(b.entries, e)
	location[e.item] = b

	if b.children == nil && len(b.entries) > MaxBucketItems && b.depth < MaxDepth {
		b.split(location)
	}
}

func (b *bucket[T]) split(location map[T]*bucket[T]) {
	b.children = &[4]*bucket[T]{}
	entries := b.entries
	b.entries = nil
	for _, e := range entries {
		b.insert(e, location)
	}
}

func (b *bucket[T]) child(quadrant int) *bucket[T] {
	if b.children[quadrant] == nil {
		center := b.bound.Center()
		var bound orb.Bound
		switch quadrant {
		case 0: // south west
			bound = orb.Bound{Min: b.bound.Min, Max: center}
		case 1: // south east
			bound = orb.Bound{Min: orb.Point{center[0], b.bound.Min[1]}, Max: orb.Point{b.bound.Max[0], center[1]}}
		case 2: // north west
			bound = orb.Bound{Min: orb.Point{b.bound.Min[0], center[1]}, Max: orb.Point{center[0], b.bound.Max[1]}}
		case 3: // north east
			bound = orb.Bound{Min: center, Max: b.bound.Max}
		}
		b.children[quadrant] = &bucket[T]{bound: bound, depth: b.depth + 1}
	}
	return b.children[quadrant]
}

// quadrantFor returns the child quadrant wholly containing the bound, or -1 if it straddles a split line
func (b *bucket[T]) quadrantFor(bound orb.Bound) int {
	center := b.bound.Center()

	var east, north bool
	switch {
	case bound.Min[0] >= center[0]:
		east = true
	case bound.Max[0] < center[0]:
		east = false
	default:
		return -1
	}

	switch {
	case bound.Min[1] >= center[1]:
		north = true
	case bound.Max[1] < center[1]:
		north = false
	default:
		return -1
	}

	quadrant := 0
	if east {
		quadrant++
	}
	if north {
		quadrant += 2
	}
	return quadrant
}
