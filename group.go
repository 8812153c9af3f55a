package dynquery

import (
	"github.com/oliverbestmann/dynquery/spoke"
)

// selectGroup combines the filters of its members. Implemented by allGroup and anyGroup.
type selectGroup interface {
	members() []*selectElement
	add(element *selectElement)

	// candidateEntities returns a superset of the entities accepted by the group.
	candidateEntities() spoke.EntitiesBuffer
	filterSatisfied(entity spoke.EntityId) bool
}

type groupMembers struct {
	elements []*selectElement
}

func (g *groupMembers) members() []*selectElement {
	return g.elements
}

func (g *groupMembers) add(element *selectElement) {
	g.elements = append(g.elements, element)
}

func (g *groupMembers) anyDeterminant() bool {
	for _, element := range g.elements {
		if element.isFilterDeterminant() {
			return true
		}
	}

	return false
}

func (g *groupMembers) allDeterminant() bool {
	for _, element := range g.elements {
		if !element.isFilterDeterminant() {
			return false
		}
	}

	return true
}

// allGroup accepts an entity if every member accepts it.
type allGroup struct {
	groupMembers
}

func (g *allGroup) candidateEntities() spoke.EntitiesBuffer {
	// a conjunction never holds more entities than its smallest determinant member
	candidates := spoke.Unbounded()

	for _, element := range g.elements {
		if !element.isFilterDeterminant() {
			continue
		}

		if entities := element.candidateEntities(); entities.Smaller(candidates) {
			candidates = entities
		}
	}

	return candidates
}

func (g *allGroup) filterSatisfied(entity spoke.EntityId) bool {
	for _, element := range g.elements {
		if !element.filterSatisfied(entity) {
			return false
		}
	}

	return true
}

// anyGroup accepts an entity if at least one member accepts it.
type anyGroup struct {
	groupMembers

	union spoke.EntityList

	// true once union holds the candidates of the current cycle
	unionReady bool
}

// candidateEntities returns the union of the candidates of all determinant
// members. It is unbounded if no member is determinant. Members with an
// unbounded buffer do not contribute.
func (g *anyGroup) candidateEntities() spoke.EntitiesBuffer {
	g.union.Clear()
	g.unionReady = false

	if !g.anyDeterminant() {
		return spoke.Unbounded()
	}

	for _, element := range g.elements {
		if !element.isFilterDeterminant() {
			continue
		}

		for entity := range element.candidateEntities().All() {
			g.union.Insert(entity)
		}
	}

	// membership in the union equals the disjunction only if every member enumerates its matches
	g.unionReady = g.allDeterminant()

	return g.union.Buffer()
}

func (g *anyGroup) filterSatisfied(entity spoke.EntityId) bool {
	if g.unionReady {
		return g.union.Has(entity)
	}

	for _, element := range g.elements {
		if element.filterSatisfied(entity) {
			return true
		}
	}

	return false
}

// reset drops the union built for the last cycle.
func (g *anyGroup) reset() {
	g.union.Clear()
	g.unionReady = false
}
