package spoke

import (
	"slices"
)

// ErasedStorage is the type erased view on the storage of a single component.
// Slot returns a pointer to the stored value, or nil if the entity is not stored.
// SlotMut does the same but notifies the change listeners, as the caller may
// write through the returned pointer.
type ErasedStorage interface {
	Has(entity EntityId) bool
	Slot(entity EntityId, space Space) any
	SlotMut(entity EntityId, space Space) any
	Entities() EntitiesBuffer
	AddChangeListener(listener *ChangeSet)
	RemoveChangeListener(listener *ChangeSet)
	Remove(entity EntityId) bool
	Len() int
}

var _ ErasedStorage = &Storage[struct{}]{}

// Storage stores values of one component type in a sparse set. Values are kept
// densely packed in insertion order, removal moves the last value into the gap.
//
// Pointers returned by Get, Slot or SlotMut stay valid until the next Insert or Remove.
type Storage[T any] struct {
	index     map[EntityId]int
	entities  []EntityId
	values    []T
	listeners []*ChangeSet
}

func NewStorage[T any]() *Storage[T] {
	return &Storage[T]{index: map[EntityId]int{}}
}

// Insert adds or replaces the value of the entity.
func (s *Storage[T]) Insert(entity EntityId, value T) {
	if s.index == nil {
		s.index = map[EntityId]int{}
	}

	if idx, ok := s.index[entity]; ok {
		s.values[idx] = value
	} else {
		s.index[entity] = len(s.entities)
		s.entities = append(s.entities, entity)
		s.values = append(s.values, value)
	}

	s.notify(entity)
}

func (s *Storage[T]) Remove(entity EntityId) bool {
	idx, ok := s.index[entity]
	if !ok {
		return false
	}

	last := len(s.entities) - 1
	moved := s.entities[last]

	s.entities[idx] = moved
	s.values[idx] = s.values[last]
	s.index[moved] = idx

	var zero T
	s.values[last] = zero

	s.entities = s.entities[:last]
	s.values = s.values[:last]
	delete(s.index, entity)

	return true
}

func (s *Storage[T]) Has(entity EntityId) bool {
	_, ok := s.index[entity]
	return ok
}

// Get returns a pointer to the value. Writes through it are not tracked,
// use Mutate for that.
func (s *Storage[T]) Get(entity EntityId) (*T, bool) {
	idx, ok := s.index[entity]
	if !ok {
		return nil, false
	}

	return &s.values[idx], true
}

// Mutate calls fn with a pointer to the value of the entity and publishes the change.
func (s *Storage[T]) Mutate(entity EntityId, fn func(value *T)) bool {
	value, ok := s.Get(entity)
	if !ok {
		return false
	}

	fn(value)
	s.notify(entity)

	return true
}

// MarkChanged publishes a change of the entity without touching its value.
func (s *Storage[T]) MarkChanged(entity EntityId) bool {
	if !s.Has(entity) {
		return false
	}

	s.notify(entity)
	return true
}

func (s *Storage[T]) Slot(entity EntityId, _ Space) any {
	value, ok := s.Get(entity)
	if !ok {
		return nil
	}

	return value
}

func (s *Storage[T]) SlotMut(entity EntityId, space Space) any {
	slot := s.Slot(entity, space)
	if slot != nil {
		s.notify(entity)
	}

	return slot
}

func (s *Storage[T]) Entities() EntitiesBuffer {
	return BufferOf(s.entities)
}

func (s *Storage[T]) Len() int {
	return len(s.entities)
}

func (s *Storage[T]) AddChangeListener(listener *ChangeSet) {
	if slices.Contains(s.listeners, listener) {
		return
	}

	s.listeners = append(s.listeners, listener)
}

func (s *Storage[T]) RemoveChangeListener(listener *ChangeSet) {
	s.listeners = slices.DeleteFunc(s.listeners, func(l *ChangeSet) bool { return l == listener })
}

func (s *Storage[T]) notify(entity EntityId) {
	for _, listener := range s.listeners {
		listener.Notify(entity)
	}
}
