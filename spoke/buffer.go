package spoke

import (
	"iter"
	"math"
)

// UnboundedCount is the count of an unbounded EntitiesBuffer. It compares
// larger than the count of every finite buffer.
const UnboundedCount = math.MaxUint32

// EntitiesBuffer is a read only view over a sequence of entities. A buffer is
// either finite or unbounded. An unbounded buffer describes a candidate set that
// can not be enumerated, e.g. "every entity without component X".
//
// The zero value is an empty, finite buffer.
type EntitiesBuffer struct {
	entities []EntityId
	count    uint32
}

// Unbounded returns the unbounded buffer.
func Unbounded() EntitiesBuffer {
	return EntitiesBuffer{count: UnboundedCount}
}

// BufferOf returns a finite buffer viewing the given entities. The slice is not copied.
func BufferOf(entities []EntityId) EntitiesBuffer {
	return EntitiesBuffer{entities: entities, count: uint32(len(entities))}
}

func (b EntitiesBuffer) IsUnbounded() bool {
	return b.count == UnboundedCount
}

// Count returns the number of entities, or UnboundedCount.
func (b EntitiesBuffer) Count() uint32 {
	return b.count
}

// Len returns the number of entities that can be enumerated. This is zero
// for an unbounded buffer.
func (b EntitiesBuffer) Len() int {
	if b.IsUnbounded() {
		return 0
	}

	return int(b.count)
}

func (b EntitiesBuffer) At(idx int) EntityId {
	return b.entities[idx]
}

// Smaller reports whether b holds strictly fewer entities than other.
// Unbounded buffers are never smaller than anything.
func (b EntitiesBuffer) Smaller(other EntitiesBuffer) bool {
	return b.count < other.count
}

// Entities returns the viewed slice. It must not be modified.
func (b EntitiesBuffer) Entities() []EntityId {
	if b.IsUnbounded() {
		return nil
	}

	return b.entities[:b.count]
}

func (b EntitiesBuffer) All() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for idx := range b.Len() {
			if !yield(b.entities[idx]) {
				return
			}
		}
	}
}
