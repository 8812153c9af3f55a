package spoke

// EntityList is a set of entities that keeps insertion order. Removing an
// entity moves the last entity into its place.
type EntityList struct {
	dense []EntityId
	index map[EntityId]int
}

func (l *EntityList) Insert(entity EntityId) bool {
	if l.index == nil {
		l.index = make(map[EntityId]int)
	}

	if _, exists := l.index[entity]; exists {
		return false
	}

	l.index[entity] = len(l.dense)
	l.dense = append(l.dense, entity)
	return true
}

func (l *EntityList) Remove(entity EntityId) bool {
	idx, ok := l.index[entity]
	if !ok {
		return false
	}

	last := len(l.dense) - 1
	moved := l.dense[last]

	l.dense[idx] = moved
	l.index[moved] = idx

	l.dense = l.dense[:last]
	delete(l.index, entity)

	return true
}

func (l *EntityList) Has(entity EntityId) bool {
	_, ok := l.index[entity]
	return ok
}

func (l *EntityList) Len() int {
	return len(l.dense)
}

// Entities returns the entities in insertion order. The slice must not be modified.
func (l *EntityList) Entities() []EntityId {
	return l.dense
}

func (l *EntityList) Buffer() EntitiesBuffer {
	return BufferOf(l.dense)
}

// Clear removes all entities but keeps the allocated memory.
func (l *EntityList) Clear() {
	l.dense = l.dense[:0]
	clear(l.index)
}
