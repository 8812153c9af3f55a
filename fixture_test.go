package dynquery

import (
	"testing"

	"github.com/oliverbestmann/dynquery/spoke"
	"github.com/stretchr/testify/require"
)

type Position struct {
	X, Y int
}

type Velocity struct {
	X, Y int
}

type Frozen struct{}

type Health struct {
	Value int
}

type fixture struct {
	registry *spoke.Registry
	world    *spoke.World

	position spoke.ComponentId
	velocity spoke.ComponentId
	frozen   spoke.ComponentId
	health   spoke.ComponentId
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	registry := spoke.NewRegistry()
	world := spoke.NewWorld(registry)

	f := &fixture{
		registry: registry,
		world:    world,
		position: spoke.RegisterComponent[Position](registry),
		velocity: spoke.RegisterComponent[Velocity](registry),
		frozen:   spoke.RegisterComponent[Frozen](registry),
		health:   spoke.RegisterComponent[Health](registry),
	}

	// make sure every storage exists, even if empty
	spoke.StorageOf[Position](world)
	spoke.StorageOf[Velocity](world)
	spoke.StorageOf[Frozen](world)
	spoke.StorageOf[Health](world)

	return f
}

func (f *fixture) spawn(entities ...spoke.EntityId) {
	for _, entity := range entities {
		f.world.SpawnWithId(entity)
	}
}

func (f *fixture) positions(entities ...spoke.EntityId) {
	f.spawn(entities...)
	for _, entity := range entities {
		spoke.Insert(f.world, entity, Position{X: int(entity)})
	}
}

func (f *fixture) velocities(entities ...spoke.EntityId) {
	f.spawn(entities...)
	for _, entity := range entities {
		spoke.Insert(f.world, entity, Velocity{X: int(entity)})
	}
}

func (f *fixture) frozens(entities ...spoke.EntityId) {
	f.spawn(entities...)
	for _, entity := range entities {
		spoke.Insert(f.world, entity, Frozen{})
	}
}

// collect runs a full cycle and returns the entities yielded by Next.
func collect(t *testing.T, q *Query, world World) []spoke.EntityId {
	t.Helper()

	require.NoError(t, q.BeginCycle(world))
	defer q.EndCycle()

	var entities []spoke.EntityId
	for q.Next() {
		entities = append(entities, q.CurrentEntity())
	}

	return entities
}
