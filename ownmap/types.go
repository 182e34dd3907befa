package ownmap

import (
	"fmt"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/paulmach/osm"
)

type ObjectType int

const (
	ObjectTypeUnknown  ObjectType = 0
	ObjectTypeNode     ObjectType = 1
	ObjectTypeWay      ObjectType = 2
	ObjectTypeRelation ObjectType = 3
)

// APIName returns the name used for the type in OSM files and style selectors
func (t ObjectType) APIName() string {
	switch t {
	case ObjectTypeNode:
		return "node"
	case ObjectTypeWay:
		return "way"
	case ObjectTypeRelation:
		return "relation"
	default:
		return "unknown"
	}
}

func (t ObjectType) String() string {
	return t.APIName()
}

func ObjectTypeFromOSMType(osmType osm.Type) (ObjectType, errorsx.Error) {
	switch osmType {
	case osm.TypeNode:
		return ObjectTypeNode, nil
	case osm.TypeWay:
		return ObjectTypeWay, nil
	case osm.TypeRelation:
		return ObjectTypeRelation, nil
	default:
		return ObjectTypeUnknown, errorsx.Errorf("couldn't understand OSM type: %q", osmType)
	}
}

func ObjectTypeFromAPIName(name string) (ObjectType, errorsx.Error) {
	for _, objectType := range []ObjectType{ObjectTypeNode, ObjectTypeWay, ObjectTypeRelation} {
		if objectType.APIName() == name {
			return objectType, nil
		}
	}
	return ObjectTypeUnknown, errorsx.Errorf("couldn't understand object type: %q", name)
}

type ZoomLevel float64

const (
	MinZoomLevel ZoomLevel = 0
	MaxZoomLevel ZoomLevel = 24
)

// PrimitiveID identifies a primitive inside a data set. IDs <= 0 belong to primitives created locally.
type PrimitiveID struct {
	Type ObjectType `json:"type"`
	ID   int64      `json:"id"`
}

func NodeID(id osm.NodeID) PrimitiveID {
	return PrimitiveID{ObjectTypeNode, int64(id)}
}

func WayID(id osm.WayID) PrimitiveID {
	return PrimitiveID{ObjectTypeWay, int64(id)}
}

func RelationID(id osm.RelationID) PrimitiveID {
	return PrimitiveID{ObjectTypeRelation, int64(id)}
}

func (id PrimitiveID) IsNew() bool {
	return id.ID <= 0
}

func (id PrimitiveID) String() string {
	return fmt.Sprintf("%s/%d", id.Type.APIName(), id.ID)
}

// Less gives a total order: by type first (node, way, relation), then by id
func (id PrimitiveID) Less(other PrimitiveID) bool {
	if id.Type != other.Type {
		return id.Type < other.Type
	}
	return id.ID < other.ID
}
