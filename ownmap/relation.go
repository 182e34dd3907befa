package ownmap

import (
	"github.com/paulmach/osm"
)

type RelationMember struct {
	Role string      `json:"role"`
	Ref  PrimitiveID `json:"ref"`
}

type Relation struct {
	primitiveBase
	members []RelationMember
}

func NewRelation(id osm.RelationID, members []RelationMember, tags TagMap) *Relation {
	r := &Relation{
		primitiveBase: newPrimitiveBase(int64(id), tags),
		members:       copyMembers(members),
	}
	r.self = r
	return r
}

func NewIncompleteRelation(id osm.RelationID) *Relation {
	r := &Relation{primitiveBase: newPrimitiveBase(int64(id), nil)}
	r.self = r
	r.incomplete = true
	return r
}

func (r *Relation) PrimitiveID() PrimitiveID {
	return PrimitiveID{ObjectTypeRelation, r.id}
}

func (r *Relation) GetType() ObjectType {
	return ObjectTypeRelation
}

func (r *Relation) RelationID() osm.RelationID {
	return osm.RelationID(r.id)
}

// Members returns a copy of the members, in order
func (r *Relation) Members() []RelationMember {
	return copyMembers(r.members)
}

func (r *Relation) MemberCount() int {
	return len(r.members)
}

func (r *Relation) HasMember(id PrimitiveID) bool {
	for _, member := range r.members {
		if member.Ref == id {
			return true
		}
	}
	return false
}

func (r *Relation) SetMembers(members []RelationMember) {
	r.members = copyMembers(members)
	r.modified = true
	r.changed(ChangeKindMembership)
}

// RemoveMembersReferring drops every member pointing at id. Returns whether anything was removed.
func (r *Relation) RemoveMembersReferring(id PrimitiveID) bool {
	var kept []RelationMember
	for _, member := range r.members {
		if member.Ref != id {
			kept = append(kept, member)
		}
	}

	if len(kept) == len(r.members) {
		return false
	}

	r.members = kept
	r.modified = true
	r.changed(ChangeKindMembership)
	return true
}

func (r *Relation) IsMultipolygon() bool {
	relationType, _ := r.GetTag("type")
	return relationType == "multipolygon"
}

func (r *Relation) IsRestriction() bool {
	relationType, _ := r.GetTag("type")
	return relationType == "restriction"
}

func (r *Relation) Load(other *Relation) {
	r.tags = other.tags.Clone()
	r.version = other.version
	r.visible = other.visible
	r.deleted = other.deleted
	r.members = copyMembers(other.members)
	r.incomplete = false
	r.changed(ChangeKindMembership)
}

func (r *Relation) Clone() *Relation {
	clone := &Relation{members: copyMembers(r.members)}
	clone.primitiveBase = r.cloneBase(clone)
	return clone
}

func copyMembers(members []RelationMember) []RelationMember {
	if members == nil {
		return nil
	}
	c := make([]RelationMember, len(members))
	copy(c, members)
	return c
}
