package dynquery

import (
	"slices"

	"github.com/oliverbestmann/dynquery/spoke"
)

type container uint8

const (
	containerAll container = iota
	containerAny
)

// selectElement is a single selected component together with its operator chain.
// The chain always starts with With.
type selectElement struct {
	id        spoke.ComponentId
	name      string
	mutable   bool
	fetchable bool

	operators []Operator
	container container

	// bound for the duration of a cycle
	storage spoke.ErasedStorage

	changed spoke.ChangeSet

	// storage the change set is registered with
	listeningTo spoke.ErasedStorage
}

func newSelectElement(id spoke.ComponentId, name string, mutable bool) *selectElement {
	return &selectElement{
		id:        id,
		name:      name,
		mutable:   mutable,
		fetchable: true,
		operators: []Operator{With},
	}
}

func (e *selectElement) lastOperator() Operator {
	return e.operators[len(e.operators)-1]
}

func (e *selectElement) isFilterDeterminant() bool {
	return e.lastOperator().IsDeterminant()
}

func (e *selectElement) tracksChanges() bool {
	return slices.Contains(e.operators, Changed)
}

func (e *selectElement) filterSatisfied(entity spoke.EntityId) bool {
	return e.satisfiedUpTo(entity, len(e.operators)-1)
}

// satisfiedUpTo evaluates the chain from operator idx to the left. Without a
// storage only Maybe is satisfied.
func (e *selectElement) satisfiedUpTo(entity spoke.EntityId, idx int) bool {
	if idx < 0 {
		return true
	}

	switch e.operators[idx] {
	case With:
		return e.storage != nil && e.storage.Has(entity)

	case Without:
		return e.storage != nil && !e.satisfiedUpTo(entity, idx-1)

	case Changed:
		return e.storage != nil && e.changed.Has(entity)

	case Maybe:
		return true
	}

	return true
}

// candidateEntities is unbounded if the world has no storage for the component.
func (e *selectElement) candidateEntities() spoke.EntitiesBuffer {
	if e.storage == nil {
		return spoke.Unbounded()
	}

	switch e.lastOperator() {
	case With:
		return e.storage.Entities()

	case Changed:
		return e.changed.Buffer()

	default:
		return spoke.Unbounded()
	}
}

// bindToWorld registers the change set with the storage of the component.
// It returns false if the element needs change tracking but the world
// has no storage for it.
func (e *selectElement) bindToWorld(world World) bool {
	e.fetchable = e.lastOperator() != Without

	if !e.tracksChanges() {
		return true
	}

	storage := world.Storage(e.id)
	if storage == nil {
		return false
	}

	storage.AddChangeListener(&e.changed)
	e.listeningTo = storage

	return true
}

func (e *selectElement) release() {
	if e.listeningTo != nil {
		e.listeningTo.RemoveChangeListener(&e.changed)
		e.listeningTo = nil
	}

	e.storage = nil
	e.changed.Clear()
	e.changed.Unfreeze()
	e.changed.Clear()
}

func (e *selectElement) beginCycle(world World) {
	e.changed.Freeze()
	e.storage = world.Storage(e.id)
}

func (e *selectElement) endCycle() {
	e.storage = nil
	e.changed.Clear()
	e.changed.Unfreeze()
}

func (e *selectElement) fetch(entity spoke.EntityId, space spoke.Space, accessor *Accessor) {
	if !e.fetchable || e.storage == nil || !e.storage.Has(entity) {
		accessor.setTarget(nil)
		return
	}

	if accessor.IsMutable() {
		accessor.setTarget(e.storage.SlotMut(entity, space))
	} else {
		accessor.setTarget(e.storage.Slot(entity, space))
	}
}
