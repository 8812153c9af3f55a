package spoke

import (
	"github.com/jakecoffman/cp/v2"
)

// Transform is a rigid 2d transformation. Stored values are relative to
// the parent entity, if any.
type Transform struct {
	Position cp.Vector
	Angle    float64
}

// Matrix returns the transform as a cp.Transform.
func (t Transform) Matrix() cp.Transform {
	return cp.NewTransformRigid(t.Position, t.Angle)
}

// TransformStorage is a spatial storage. In Local space it behaves exactly like
// a Storage[Transform]. In Global space the slot holds the transform composed
// with the transforms of all parents. Global slots are derived values: they are
// recomputed on each fetch and writes through them are discarded.
type TransformStorage struct {
	Storage[Transform]

	parents map[EntityId]EntityId
	globals map[EntityId]*Transform
}

var _ ErasedStorage = &TransformStorage{}

func NewTransformStorage() *TransformStorage {
	return &TransformStorage{
		Storage: Storage[Transform]{index: map[EntityId]int{}},
		parents: map[EntityId]EntityId{},
		globals: map[EntityId]*Transform{},
	}
}

// SetParent makes the transform of child relative to the one of parent.
func (s *TransformStorage) SetParent(child, parent EntityId) {
	if s.parents == nil {
		s.parents = map[EntityId]EntityId{}
	}

	s.parents[child] = parent
	s.MarkChanged(child)
}

func (s *TransformStorage) ClearParent(child EntityId) {
	delete(s.parents, child)
	s.MarkChanged(child)
}

func (s *TransformStorage) Parent(child EntityId) (EntityId, bool) {
	parent, ok := s.parents[child]
	return parent, ok
}

func (s *TransformStorage) Remove(entity EntityId) bool {
	delete(s.parents, entity)
	delete(s.globals, entity)
	return s.Storage.Remove(entity)
}

// GlobalOf computes the global transform of the entity. A broken or cyclic
// parent chain ends at the last entity that could be resolved.
func (s *TransformStorage) GlobalOf(entity EntityId) (Transform, bool) {
	local, ok := s.Get(entity)
	if !ok {
		return Transform{}, false
	}

	matrix := local.Matrix()
	angle := local.Angle

	current := entity
	for range s.Len() {
		parentId, ok := s.parents[current]
		if !ok {
			break
		}

		parent, ok := s.Get(parentId)
		if !ok {
			break
		}

		matrix = parent.Matrix().Mult(matrix)
		angle += parent.Angle
		current = parentId
	}

	return Transform{
		Position: matrix.Point(cp.Vector{}),
		Angle:    angle,
	}, true
}

func (s *TransformStorage) Slot(entity EntityId, space Space) any {
	if space == Local {
		return s.Storage.Slot(entity, space)
	}

	global, ok := s.GlobalOf(entity)
	if !ok {
		return nil
	}

	if s.globals == nil {
		s.globals = map[EntityId]*Transform{}
	}

	slot, ok := s.globals[entity]
	if !ok {
		slot = new(Transform)
		s.globals[entity] = slot
	}

	*slot = global
	return slot
}

func (s *TransformStorage) SlotMut(entity EntityId, space Space) any {
	slot := s.Slot(entity, space)
	if slot != nil {
		s.notify(entity)
	}

	return slot
}
