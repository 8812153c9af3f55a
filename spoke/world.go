package spoke

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// World is an in memory collection of component storages.
type World struct {
	registry *Registry
	storages map[ComponentId]ErasedStorage
	entities EntityList
	nextId   EntityId
}

func NewWorld(registry *Registry) *World {
	if registry == nil {
		registry = NewRegistry()
	}

	return &World{
		registry: registry,
		storages: map[ComponentId]ErasedStorage{},
	}
}

func (w *World) Registry() *Registry {
	return w.registry
}

// Storage returns the storage of the component, or nil if the world has no
// storage for it.
func (w *World) Storage(id ComponentId) ErasedStorage {
	return w.storages[id]
}

// SetStorage installs the storage of a registered component.
func (w *World) SetStorage(id ComponentId, storage ErasedStorage) {
	if !w.registry.Verify(id) {
		panic(fmt.Sprintf("component %s is not registered", id))
	}

	w.storages[id] = storage
}

// Spawn reserves a new entity id.
func (w *World) Spawn() EntityId {
	for w.entities.Has(w.nextId) {
		w.nextId += 1
	}

	entity := w.nextId
	w.nextId += 1

	w.entities.Insert(entity)
	return entity
}

// SpawnWithId registers a caller chosen entity id. It returns false if the
// id is already alive.
func (w *World) SpawnWithId(entity EntityId) bool {
	return w.entities.Insert(entity)
}

func (w *World) IsAlive(entity EntityId) bool {
	return w.entities.Has(entity)
}

// Despawn removes the entity and all its components.
func (w *World) Despawn(entity EntityId) bool {
	if !w.entities.Remove(entity) {
		return false
	}

	for _, id := range slices.Sorted(maps.Keys(w.storages)) {
		w.storages[id].Remove(entity)
	}

	return true
}

func (w *World) Entities() EntitiesBuffer {
	return w.entities.Buffer()
}

// StorageOf returns the typed storage of component T, creating it on first use.
func StorageOf[T any](w *World) *Storage[T] {
	id := RegisterComponent[T](w.registry)

	if existing, ok := w.storages[id]; ok {
		typed, ok := existing.(*Storage[T])
		if !ok {
			panic(fmt.Sprintf("storage of %s has unexpected type %T", reflect.TypeFor[T](), existing))
		}

		return typed
	}

	storage := NewStorage[T]()
	w.storages[id] = storage
	return storage
}

// Insert adds the component value to the entity.
func Insert[T any](w *World, entity EntityId, value T) {
	if !w.entities.Has(entity) {
		panic(fmt.Sprintf("entity %s does not exist", entity))
	}

	StorageOf[T](w).Insert(entity, value)
}

func Get[T any](w *World, entity EntityId) (*T, bool) {
	return StorageOf[T](w).Get(entity)
}

// Remove removes a component from the entity.
func (w *World) Remove(entity EntityId, id ComponentId) bool {
	storage, ok := w.storages[id]
	if !ok {
		return false
	}

	return storage.Remove(entity)
}
