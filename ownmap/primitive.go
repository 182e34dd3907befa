package ownmap

import (
	"sort"
)

type ChangeKind int

const (
	ChangeKindTags ChangeKind = iota + 1
	ChangeKindGeometry
	ChangeKindMembership
	ChangeKindFlags
)

// ChangeListener is told about every mutation of a primitive, after it has happened.
type ChangeListener func(p Primitive, kind ChangeKind)

// Primitive is implemented by exactly *Node, *Way and *Relation.
// Callers that need type specific behaviour use a type switch over these three.
type Primitive interface {
	PrimitiveID() PrimitiveID
	GetType() ObjectType
	GetID() int64
	SetID(id int64)

	GetTag(key string) (string, bool)
	HasTag(key string) bool
	HasTags() bool
	GetTags() TagMap
	TagKeys() []string
	SetTag(key, value string)
	RemoveTag(key string)
	SetTags(tags TagMap)

	Version() int
	SetVersion(version int)
	IsVisible() bool
	SetVisible(visible bool)
	IsDeleted() bool
	SetDeleted(deleted bool)
	IsModified() bool
	SetModified(modified bool)
	IsModifiedProperties() bool
	IsFiltered() bool
	SetFiltered(filtered bool)
	IsDisabled() bool
	SetDisabled(disabled bool)
	IsIncomplete() bool
	SetIncomplete(incomplete bool)
	IsNew() bool
	IsUsable() bool
	IsDrawable() bool

	Generation() uint64
	SetChangeListener(listener ChangeListener)

	isPrimitive()
}

type primitiveBase struct {
	self Primitive

	id                 int64
	tags               TagMap
	version            int
	visible            bool
	deleted            bool
	modified           bool
	modifiedProperties bool
	filtered           bool
	disabled           bool
	incomplete         bool

	generation     uint64
	changeListener ChangeListener
}

func newPrimitiveBase(id int64, tags TagMap) primitiveBase {
	return primitiveBase{
		id:      id,
		tags:    tags.Clone(),
		visible: true,
	}
}

func (p *primitiveBase) isPrimitive() {}

func (p *primitiveBase) GetID() int64 {
	return p.id
}

// SetID changes the id of the primitive. Only valid before the primitive is added to a data set.
func (p *primitiveBase) SetID(id int64) {
	p.id = id
}

func (p *primitiveBase) IsNew() bool {
	return p.id <= 0
}

func (p *primitiveBase) changed(kind ChangeKind) {
	p.generation++
	if p.changeListener != nil {
		p.changeListener(p.self, kind)
	}
}

func (p *primitiveBase) Generation() uint64 {
	return p.generation
}

func (p *primitiveBase) SetChangeListener(listener ChangeListener) {
	p.changeListener = listener
}

func (p *primitiveBase) GetTag(key string) (string, bool) {
	value, ok := p.tags[key]
	return value, ok
}

func (p *primitiveBase) HasTag(key string) bool {
	_, ok := p.tags[key]
	return ok
}

func (p *primitiveBase) HasTags() bool {
	return len(p.tags) != 0
}

// GetTags returns a copy of the tags
func (p *primitiveBase) GetTags() TagMap {
	return p.tags.Clone()
}

// TagKeys returns the tag keys, sorted
func (p *primitiveBase) TagKeys() []string {
	keys := make([]string, 0, len(p.tags))
	for key := range p.tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (p *primitiveBase) SetTag(key, value string) {
	if p.tags == nil {
		p.tags = make(TagMap)
	}
	p.tags[key] = value
	p.modifiedProperties = true
	p.modified = true
	p.changed(ChangeKindTags)
}

func (p *primitiveBase) RemoveTag(key string) {
	if _, ok := p.tags[key]; !ok {
		return
	}
	delete(p.tags, key)
	p.modifiedProperties = true
	p.modified = true
	p.changed(ChangeKindTags)
}

func (p *primitiveBase) SetTags(tags TagMap) {
	p.tags = tags.Clone()
	p.modifiedProperties = true
	p.modified = true
	p.changed(ChangeKindTags)
}

func (p *primitiveBase) Version() int {
	return p.version
}

func (p *primitiveBase) SetVersion(version int) {
	p.version = version
}

func (p *primitiveBase) IsVisible() bool {
	return p.visible
}

func (p *primitiveBase) SetVisible(visible bool) {
	p.visible = visible
	p.changed(ChangeKindFlags)
}

func (p *primitiveBase) IsDeleted() bool {
	return p.deleted
}

func (p *primitiveBase) SetDeleted(deleted bool) {
	p.deleted = deleted
	p.modified = true
	p.changed(ChangeKindFlags)
}

func (p *primitiveBase) IsModified() bool {
	return p.modified
}

func (p *primitiveBase) SetModified(modified bool) {
	p.modified = modified
	if !modified {
		p.modifiedProperties = false
	}
	p.changed(ChangeKindFlags)
}

func (p *primitiveBase) IsModifiedProperties() bool {
	return p.modifiedProperties
}

func (p *primitiveBase) IsFiltered() bool {
	return p.filtered
}

func (p *primitiveBase) SetFiltered(filtered bool) {
	p.filtered = filtered
	p.changed(ChangeKindFlags)
}

func (p *primitiveBase) IsDisabled() bool {
	return p.disabled
}

func (p *primitiveBase) SetDisabled(disabled bool) {
	p.disabled = disabled
	p.changed(ChangeKindFlags)
}

func (p *primitiveBase) IsIncomplete() bool {
	return p.incomplete
}

func (p *primitiveBase) SetIncomplete(incomplete bool) {
	p.incomplete = incomplete
	p.changed(ChangeKindFlags)
}

// IsUsable reports whether the primitive takes part in editing operations
func (p *primitiveBase) IsUsable() bool {
	return p.visible && !p.deleted && !p.incomplete
}

// IsDrawable reports whether the primitive should be painted
func (p *primitiveBase) IsDrawable() bool {
	return p.IsUsable() && !p.filtered
}

func (p *primitiveBase) cloneBase(self Primitive) primitiveBase {
	return primitiveBase{
		self:               self,
		id:                 p.id,
		tags:               p.tags.Clone(),
		version:            p.version,
		visible:            p.visible,
		deleted:            p.deleted,
		modified:           p.modified,
		modifiedProperties: p.modifiedProperties,
		filtered:           p.filtered,
		disabled:           p.disabled,
		incomplete:         p.incomplete,
		generation:         p.generation,
	}
}

// Equal compares primitives by type and id. Primitives with id 0 are only equal to themselves.
func Equal(a, b Primitive) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.GetID() == 0 || b.GetID() == 0 {
		return a == b
	}
	return a.PrimitiveID() == b.PrimitiveID()
}

// SortPrimitives sorts by type then id, giving a deterministic order for set-like collections
func SortPrimitives(primitives []Primitive) {
	sort.Slice(primitives, func(i, j int) bool {
		return primitives[i].PrimitiveID().Less(primitives[j].PrimitiveID())
	})
}

// DisplayName names the primitive in messages: its name tag, or its type and id
func DisplayName(p Primitive) string {
	if name, ok := p.GetTag("name"); ok && name != "" {
		return name
	}
	return p.PrimitiveID().String()
}
