package ownmap

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/osm"
)

// Overlaps checks whether an item is at least partially inside a container
func Overlaps(container osm.Bounds, item osm.Bounds) bool {
	if container.MinLat > item.MaxLat {
		// container is wholly above item
		return false
	}

	if container.MaxLat < item.MinLat {
		// container is wholly below item
		return false
	}

	if container.MinLon > item.MaxLon {
		// container is wholly to the right of item
		return false
	}

	if container.MaxLon < item.MinLon {
		// container is wholly to the left of item
		return false
	}

	return true
}

func IsTotallyInside(container osm.Bounds, item osm.Bounds) bool {
	return item.MaxLat <= container.MaxLat && item.MaxLon <= container.MaxLon && item.MinLat >= container.MinLat && item.MinLon >= container.MinLon
}

func GetWholeWorldBounds() osm.Bounds {
	return osm.Bounds{
		MaxLat: 90,
		MinLat: -90,
		MaxLon: 180,
		MinLon: -180,
	}
}

// IsInBounds tests if a point is inside a container
func IsInBounds(bounds osm.Bounds, pointLat, pointLon float64) bool {
	isInLatBounds := pointLat < bounds.MaxLat && pointLat > bounds.MinLat
	if !isInLatBounds {
		return false
	}

	isInLonBounds := pointLon < bounds.MaxLon && pointLon > bounds.MinLon
	if !isInLonBounds {
		return false
	}

	return true
}

type TagMap map[string]string

func (m TagMap) Clone() TagMap {
	if len(m) == 0 {
		return nil
	}

	c := make(TagMap, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// NewTagMapFromOSMTags converts OSM tags. OSM tag lists with duplicate keys keep the last value.
func NewTagMapFromOSMTags(osmTags osm.Tags) TagMap {
	if len(osmTags) == 0 {
		return nil
	}

	m := make(TagMap, len(osmTags))
	for _, tag := range osmTags {
		m[tag.Key] = tag.Value
	}
	return m
}

func primitiveIDFromOSMMember(member osm.Member) (PrimitiveID, errorsx.Error) {
	memberType, err := ObjectTypeFromOSMType(member.Type)
	if err != nil {
		return PrimitiveID{}, errorsx.Wrap(err)
	}

	return PrimitiveID{memberType, member.Ref}, nil
}

func NewRelationFromOSMRelation(osmRelation *osm.Relation) (*Relation, errorsx.Error) {
	var members []RelationMember
	for _, member := range osmRelation.Members {
		ref, err := primitiveIDFromOSMMember(member)
		if err != nil {
			return nil, errorsx.Wrap(err, "relation id", osmRelation.ID)
		}

		members = append(members, RelationMember{
			Role: member.Role,
			Ref:  ref,
		})
	}

	relation := NewRelation(osmRelation.ID, members, NewTagMapFromOSMTags(osmRelation.Tags))
	relation.version = osmRelation.Version
	relation.visible = osmRelation.Visible || osmRelation.Version == 0
	return relation, nil
}

func NewNodeFromOSMNode(obj *osm.Node) *Node {
	node := NewNode(obj.ID, obj.Lat, obj.Lon, NewTagMapFromOSMTags(obj.Tags))
	node.version = obj.Version
	node.visible = obj.Visible || obj.Version == 0
	return node
}

func NewWayFromOSMWay(obj *osm.Way) *Way {
	nodeIDs := make([]osm.NodeID, 0, len(obj.Nodes))
	for _, wayNode := range obj.Nodes {
		nodeIDs = append(nodeIDs, wayNode.ID)
	}

	way := NewWay(obj.ID, nodeIDs, NewTagMapFromOSMTags(obj.Tags))
	way.version = obj.Version
	way.visible = obj.Visible || obj.Version == 0
	return way
}
