package dynquery

import (
	"reflect"
	"testing"

	"github.com/oliverbestmann/dynquery/spoke"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/require"
)

func fetchSingle(t *testing.T, f *fixture, id spoke.ComponentId, mutable bool, entity spoke.EntityId) (*Query, *Accessor) {
	t.Helper()

	q := NewQuery(f.registry)
	require.NoError(t, q.Select(id, mutable))
	require.NoError(t, q.BeginCycle(f.world))
	t.Cleanup(q.EndCycle)

	require.NoError(t, q.Fetch(entity))

	accessor, err := q.AccessorAt(0)
	require.NoError(t, err)

	return q, accessor
}

func TestAccessorReadOnly(t *testing.T) {
	f := newFixture(t)
	f.positions(3)

	_, accessor := fetchSingle(t, f, f.position, false, 3)

	value, err := accessor.Value()
	require.NoError(t, err)
	require.Equal(t, Position{X: 3}, value)

	x, err := accessor.Get("X")
	require.NoError(t, err)
	require.Equal(t, 3, x)

	require.True(t, eris.Is(accessor.Set("X", 5), ErrReadOnly))

	_, err = accessor.Mut()
	require.True(t, eris.Is(err, ErrReadOnly))

	_, err = GetMut[Position](accessor)
	require.True(t, eris.Is(err, ErrReadOnly))

	position, _ := spoke.Get[Position](f.world, 3)
	require.Equal(t, Position{X: 3}, *position)
}

func TestAccessorMutable(t *testing.T) {
	f := newFixture(t)
	f.positions(3)

	_, accessor := fetchSingle(t, f, f.position, true, 3)

	require.NoError(t, accessor.Set("y", int64(7)))

	position, err := GetMut[Position](accessor)
	require.NoError(t, err)
	position.X += 10

	stored, _ := spoke.Get[Position](f.world, 3)
	require.Equal(t, Position{X: 13, Y: 7}, *stored)

	require.True(t, eris.Is(accessor.Set("Z", 1), ErrUnknownField))
	require.True(t, eris.Is(accessor.Set("X", "text"), ErrFieldType))

	_, err = accessor.Get("Z")
	require.True(t, eris.Is(err, ErrUnknownField))

	_, err = GetMut[Velocity](accessor)
	require.Error(t, err)
}

func TestAccessorNoValue(t *testing.T) {
	f := newFixture(t)
	f.positions(1)

	q := NewQuery(f.registry)
	require.NoError(t, q.Select(f.position, false))
	require.NoError(t, q.SelectMaybe(f.velocity, true))

	require.NoError(t, q.BeginCycle(f.world))
	defer q.EndCycle()

	require.True(t, q.Next())

	accessor, err := q.AccessorByName("Velocity")
	require.NoError(t, err)
	require.False(t, accessor.HasValue())

	_, err = accessor.Value()
	require.True(t, eris.Is(err, ErrNoValue))

	_, err = accessor.Get("X")
	require.True(t, eris.Is(err, ErrNoValue))

	require.True(t, eris.Is(accessor.Set("X", 1), ErrNoValue))

	_, ok := Get[Velocity](accessor)
	require.False(t, ok)
}

func TestAccessorRecordComponent(t *testing.T) {
	f := newFixture(t)

	stats, err := f.registry.Register("Stats", reflect.TypeFor[map[string]any]())
	require.NoError(t, err)

	storage := spoke.NewStorage[map[string]any]()
	f.world.SetStorage(stats, storage)

	f.spawn(4)
	storage.Insert(4, map[string]any{"hp": 10})

	_, accessor := fetchSingle(t, f, stats, true, 4)

	hp, err := accessor.Get("hp")
	require.NoError(t, err)
	require.Equal(t, 10, hp)

	require.NoError(t, accessor.Set("mana", 3))

	// values are copies
	value, err := accessor.Value()
	require.NoError(t, err)
	value.(map[string]any)["hp"] = 0

	stored, _ := storage.Get(4)
	require.Equal(t, map[string]any{"hp": 10, "mana": 3}, *stored)

	_, err = accessor.Get("armor")
	require.True(t, eris.Is(err, ErrUnknownField))
}

func TestAccessorWithoutIsNotFetched(t *testing.T) {
	f := newFixture(t)
	f.positions(1)

	q := NewQuery(f.registry)
	require.NoError(t, q.Select(f.position, false))
	require.NoError(t, q.SelectWithout(f.frozen))

	require.NoError(t, q.BeginCycle(f.world))
	defer q.EndCycle()

	require.True(t, q.Next())

	frozen, err := q.AccessorAt(1)
	require.NoError(t, err)
	require.False(t, frozen.HasValue())
}
