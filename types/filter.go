package types

import (
	"errors"
	"fmt"
)

// Filter type discriminators of EntityIteratorFilter.
const (
	FilterTypeSystemType = "SystemType"
	FilterTypeEntityType = "EntityType"
	FilterTypeBlueprint  = "Blueprint"
)

// ErrInvalidFilter is returned by EntityIteratorFilter.Decode.
var ErrInvalidFilter = errors.New("invalid filter")

// EntityIteratorFilter is the wire form of an entity iterator filter:
// a tagged union discriminated by Type.
type EntityIteratorFilter struct {
	Type       string     `json:"type" cramberry:"1"`
	SystemType    SystemType `json:"system_type,omitempty" cramberry:"2"`
	EntityType    EntityType `json:"entity_type,omitempty" cramberry:"3"`
	BlueprintName string     `json:"blueprint_name,omitempty" cramberry:"4"`
}

// Decode validates the wire filter and returns its typed variant. A
// nil filter decodes to NoFilter.
func (f *EntityIteratorFilter) Decode() (EntityFilter, error) {
	if f == nil {
		return NoFilter{}, nil
	}
	switch f.Type {
	case FilterTypeSystemType:
		if !f.SystemType.Valid() {
			return nil, fmt.Errorf("%w: unknown system type %q", ErrInvalidFilter, string(f.SystemType))
		}
		return SystemTypeFilter{SystemType: f.SystemType}, nil
	case FilterTypeEntityType:
		if !f.EntityType.Valid() {
			return nil, fmt.Errorf("%w: unknown entity type %q", ErrInvalidFilter, string(f.EntityType))
		}
		return EntityTypeFilter{EntityType: f.EntityType}, nil
	case FilterTypeBlueprint:
		if f.BlueprintName == "" {
			return nil, fmt.Errorf("%w: missing blueprint name", ErrInvalidFilter)
		}
		return BlueprintFilter{BlueprintName: f.BlueprintName}, nil
	default:
		return nil, fmt.Errorf("%w: unknown filter type %q", ErrInvalidFilter, f.Type)
	}
}

// EntityFilter selects entities by type or blueprint. The set of
// variants is closed: NoFilter, SystemTypeFilter, EntityTypeFilter and
// BlueprintFilter.
type EntityFilter interface {
	Matches(t EntityType, blueprintName string) bool
	isEntityFilter()
}

// NoFilter matches every entity.
type NoFilter struct{}

// SystemTypeFilter matches entities of one system type.
type SystemTypeFilter struct {
	SystemType SystemType
}

// EntityTypeFilter matches entities of one entity type.
type EntityTypeFilter struct {
	EntityType EntityType
}

// BlueprintFilter matches objects instantiated from one blueprint.
// Key-value stores have no blueprint and never match.
type BlueprintFilter struct {
	BlueprintName string
}

func (NoFilter) Matches(EntityType, string) bool { return true }

func (f SystemTypeFilter) Matches(t EntityType, _ string) bool { return t.SystemType() == f.SystemType }

func (f EntityTypeFilter) Matches(t EntityType, _ string) bool { return t == f.EntityType }

func (f BlueprintFilter) Matches(_ EntityType, blueprintName string) bool {
	return blueprintName == f.BlueprintName
}

func (NoFilter) isEntityFilter()         {}
func (SystemTypeFilter) isEntityFilter() {}
func (EntityTypeFilter) isEntityFilter() {}
func (BlueprintFilter) isEntityFilter()  {}

// Wire converts a typed filter back to its wire form; NoFilter maps to
// nil.
func Wire(f EntityFilter) *EntityIteratorFilter {
	switch f := f.(type) {
	case NoFilter:
		return nil
	case SystemTypeFilter:
		return &EntityIteratorFilter{Type: FilterTypeSystemType, SystemType: f.SystemType}
	case EntityTypeFilter:
		return &EntityIteratorFilter{Type: FilterTypeEntityType, EntityType: f.EntityType}
	case BlueprintFilter:
		return &EntityIteratorFilter{Type: FilterTypeBlueprint, BlueprintName: f.BlueprintName}
	default:
		panic(fmt.Sprintf("types: unhandled entity filter %T", f))
	}
}
