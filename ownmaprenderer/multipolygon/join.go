package multipolygon

import (
	"github.com/jamesrr39/ownmap-editor/ownmap"
	"github.com/paulmach/osm"
)

// JoinedWay is a chain of ways sharing end nodes
type JoinedWay struct {
	// Way is the first fragment of the chain
	Way      *ownmap.Way
	NodeIDs  []osm.NodeID
	Selected bool
}

func (jw *JoinedWay) IsClosed() bool {
	return len(jw.NodeIDs) >= 2 && jw.NodeIDs[0] == jw.NodeIDs[len(jw.NodeIDs)-1]
}

type joinMode int

const (
	joinNone joinMode = iota
	// append the fragment to the end of the chain
	joinEndToStart
	// append the reversed fragment to the end of the chain
	joinEndToEnd
	// prepend the reversed fragment to the start of the chain
	joinStartToStart
	// prepend the fragment to the start of the chain
	joinStartToEnd
)

// JoinWays chains the ways into as few node lists as possible. A fragment is joined when one of its
// end nodes is an end node of the chain being built; passes repeat until nothing more joins.
// Chains that don't close are reported on errTarget, unless errTarget is nil. They are returned either way.
func (a *Assembler) JoinWays(ways []*ownmap.Way, errTarget ownmap.Primitive) []*JoinedWay {
	remaining := make([]*ownmap.Way, 0, len(ways))
	for _, way := range ways {
		if way.NodeCount() == 0 {
			continue
		}
		remaining = append(remaining, way)
	}
	left := len(remaining)

	var joinedWays []*JoinedWay
	for left != 0 {
		var first *ownmap.Way
		var chain []osm.NodeID
		selected := false

		joined := true
		for joined && left != 0 {
			joined = false
			for i := 0; i < len(remaining) && left != 0; i++ {
				fragment := remaining[i]
				if fragment == nil {
					continue
				}

				if first == nil {
					first = fragment
					selected = a.graph.IsSelected(fragment)
					remaining[i] = nil
					left--
					continue
				}

				current := chain
				if current == nil {
					current = first.NodeIDs()
				}

				fragmentNodeIDs := fragment.NodeIDs()
				mode := findJoinMode(current, fragmentNodeIDs, chain == nil)
				if mode == joinNone {
					continue
				}

				remaining[i] = nil
				left--
				joined = true
				if a.graph.IsSelected(fragment) {
					selected = true
				}

				chain = splice(current, fragmentNodeIDs, mode)
			}
		}

		if chain == nil {
			chain = first.NodeIDs()
		}

		joinedWay := &JoinedWay{first, chain, selected}
		if !joinedWay.IsClosed() && errTarget != nil {
			a.reporter.Errorf(errTarget, "multipolygon way '%s' is not closed.", ownmap.DisplayName(first))
		}

		joinedWays = append(joinedWays, joinedWay)
	}

	return joinedWays
}

// findJoinMode tries the end of the chain first. A chain of a single way prefers end-to-end over
// start-to-start, a longer chain the other way round.
func findJoinMode(chain, fragment []osm.NodeID, singleWay bool) joinMode {
	chainFirst, chainLast := chain[0], chain[len(chain)-1]
	fragmentFirst, fragmentLast := fragment[0], fragment[len(fragment)-1]

	if singleWay {
		switch {
		case chainLast == fragmentFirst:
			return joinEndToStart
		case chainLast == fragmentLast:
			return joinEndToEnd
		case chainFirst == fragmentFirst:
			return joinStartToStart
		case chainFirst == fragmentLast:
			return joinStartToEnd
		}
		return joinNone
	}

	switch {
	case chainLast == fragmentFirst:
		return joinEndToStart
	case chainFirst == fragmentLast:
		return joinStartToEnd
	case chainFirst == fragmentFirst:
		return joinStartToStart
	case chainLast == fragmentLast:
		return joinEndToEnd
	}
	return joinNone
}

// splice joins the fragment onto the chain, keeping the shared node once
func splice(chain, fragment []osm.NodeID, mode joinMode) []osm.NodeID {
	joined := make([]osm.NodeID, 0, len(chain)+len(fragment)-1)

	switch mode {
	case joinEndToStart:
		joined = append(joined, chain[:len(chain)-1]...)
		joined = append(joined, fragment...)
	case joinEndToEnd:
		joined = append(joined, chain[:len(chain)-1]...)
		joined = append(joined, reversed(fragment)...)
	case joinStartToStart:
		joined = append(joined, reversed(fragment)...)
		joined = append(joined, chain[1:]...)
	case joinStartToEnd:
		joined = append(joined, fragment...)
		joined = append(joined, chain[1:]...)
	}

	return joined
}

func reversed(nodeIDs []osm.NodeID) []osm.NodeID {
	r := make([]osm.NodeID, len(nodeIDs))
	for i, nodeID := range nodeIDs {
		r[len(nodeIDs)-1-i] = nodeID
	}
	return r
}
