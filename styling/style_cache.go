package styling

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jamesrr39/ownmap-editor/ownmap"
)

const DefaultStyleCacheSize = 10000

type cacheEntry struct {
	graph               Graph
	primitiveGeneration uint64
	graphGeneration     uint64
	// results for the scales resolved so far, each valid in its ValidRange
	results []*StyleResult
}

func (e *cacheEntry) get(scale float64) *StyleResult {
	for _, result := range e.results {
		if result.ValidRange.Contains(scale) {
			return result
		}
	}
	return nil
}

// StyleCache memoizes the resolved styles of a style. An entry is only used while neither the
// primitive nor the graph it was resolved in has changed since, and only for scales inside the
// range it was resolved for.
type StyleCache struct {
	style Style
	lru   *lru.Cache[ownmap.PrimitiveID, *cacheEntry]
}

func NewStyleCache(style Style, size int) *StyleCache {
	if size <= 0 {
		size = DefaultStyleCacheSize
	}
	c, _ := lru.New[ownmap.PrimitiveID, *cacheEntry](size)
	return &StyleCache{style, c}
}

func (sc *StyleCache) Style() Style {
	return sc.style
}

// Resolve returns the cached result for env.Primitive at env.Scale or resolves and caches it.
// graphGeneration is the generation of env.Graph.
func (sc *StyleCache) Resolve(env *Environment, graphGeneration uint64) *StyleResult {
	p := env.Primitive
	id := p.PrimitiveID()

	entry, ok := sc.lru.Get(id)
	if !ok ||
		entry.graph != env.Graph ||
		entry.primitiveGeneration != p.Generation() ||
		entry.graphGeneration != graphGeneration {
		entry = &cacheEntry{
			graph:               env.Graph,
			primitiveGeneration: p.Generation(),
			graphGeneration:     graphGeneration,
		}
		sc.lru.Add(id, entry)
	}

	result := entry.get(env.Scale)
	if result != nil {
		return result
	}

	result = sc.style.Resolve(env)
	entry.results = append(entry.results, result)
	return result
}

func (sc *StyleCache) Purge() {
	sc.lru.Purge()
}

func (sc *StyleCache) Len() int {
	return sc.lru.Len()
}
