package dynquery

import (
	"testing"

	"github.com/oliverbestmann/dynquery/spoke"
	"github.com/stretchr/testify/require"
)

func elementOf(storage spoke.ErasedStorage, operators ...Operator) *selectElement {
	element := newSelectElement(1, "Position", false)
	element.operators = append(element.operators, operators...)
	element.storage = storage
	return element
}

func TestElementFilterSatisfied(t *testing.T) {
	storage := spoke.NewStorage[Position]()
	storage.Insert(2, Position{})
	storage.Insert(4, Position{})

	t.Run("With", func(t *testing.T) {
		element := elementOf(storage)
		for entity := range spoke.EntityId(8) {
			require.Equal(t, storage.Has(entity), element.filterSatisfied(entity), "entity %s", entity)
		}
	})

	t.Run("Without", func(t *testing.T) {
		element := elementOf(storage, Without)
		for entity := range spoke.EntityId(8) {
			require.Equal(t, !storage.Has(entity), element.filterSatisfied(entity), "entity %s", entity)
		}
	})

	t.Run("Maybe", func(t *testing.T) {
		element := elementOf(storage, Maybe)
		for entity := range spoke.EntityId(8) {
			require.True(t, element.filterSatisfied(entity), "entity %s", entity)
		}
	})

	t.Run("Changed", func(t *testing.T) {
		element := elementOf(storage, Changed)
		element.changed.Notify(4)
		element.changed.Notify(6)

		require.True(t, element.filterSatisfied(4))
		require.True(t, element.filterSatisfied(6))
		require.False(t, element.filterSatisfied(2))
	})

	t.Run("chain evaluates right to left", func(t *testing.T) {
		element := elementOf(storage, Changed, Without)
		element.changed.Notify(4)

		require.False(t, element.filterSatisfied(4))
		require.True(t, element.filterSatisfied(2))

		double := elementOf(storage, Without, Without)
		require.True(t, double.filterSatisfied(2))
		require.False(t, double.filterSatisfied(3))
	})

	t.Run("missing storage", func(t *testing.T) {
		require.False(t, elementOf(nil).filterSatisfied(2))
		require.False(t, elementOf(nil, Without).filterSatisfied(2))
		require.True(t, elementOf(nil, Maybe).filterSatisfied(2))

		changed := elementOf(nil, Changed)
		changed.changed.Notify(2)
		require.False(t, changed.filterSatisfied(2))

		require.True(t, elementOf(nil).candidateEntities().IsUnbounded())
		require.True(t, changed.candidateEntities().IsUnbounded())
	})
}

func TestElementCandidates(t *testing.T) {
	storage := spoke.NewStorage[Position]()
	storage.Insert(1, Position{})
	storage.Insert(3, Position{})

	with := elementOf(storage)
	require.True(t, with.isFilterDeterminant())
	require.Equal(t, []spoke.EntityId{1, 3}, with.candidateEntities().Entities())

	changed := elementOf(storage, Changed)
	changed.changed.Notify(3)
	require.True(t, changed.isFilterDeterminant())
	require.Equal(t, []spoke.EntityId{3}, changed.candidateEntities().Entities())

	for _, operator := range []Operator{Without, Maybe} {
		element := elementOf(storage, operator)
		require.False(t, element.isFilterDeterminant(), operator.String())
		require.True(t, element.candidateEntities().IsUnbounded(), operator.String())
	}
}

func TestElementFetch(t *testing.T) {
	storage := spoke.NewStorage[Position]()
	storage.Insert(1, Position{X: 5})

	element := elementOf(storage)

	var accessor Accessor
	accessor.init(1, "Position", false)

	element.fetch(1, spoke.Local, &accessor)
	value, ok := Get[Position](&accessor)
	require.True(t, ok)
	require.Equal(t, 5, value.X)

	element.fetch(2, spoke.Local, &accessor)
	require.False(t, accessor.HasValue())

	element.fetchable = false
	element.fetch(1, spoke.Local, &accessor)
	require.False(t, accessor.HasValue())
}
