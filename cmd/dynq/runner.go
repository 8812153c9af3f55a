package main

import (
	"maps"
	"reflect"
	"slices"

	"github.com/jakecoffman/cp/v2"
	"github.com/oliverbestmann/dynquery"
	"github.com/oliverbestmann/dynquery/spoke"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

var (
	ErrUnknownComponent = eris.New("component is not declared in the scene")
	ErrDuplicateEntity  = eris.New("entity is declared twice")
	ErrUnknownEntity    = eris.New("entity is not declared in the scene")
)

type record = map[string]any

// Runner owns the world built from a scene and runs its queries.
type Runner struct {
	scene  *Scene
	logger zerolog.Logger

	registry *spoke.Registry
	world    *spoke.World

	records    map[string]*spoke.Storage[record]
	transforms map[string]*spoke.TransformStorage

	queries []*dynquery.Query
}

// CycleResult lists the entities a query matched in one cycle.
type CycleResult struct {
	Cycle    int
	Query    string
	Entities []spoke.EntityId
	Err      error
}

func NewRunner(scene *Scene, space spoke.Space, logger zerolog.Logger) (*Runner, error) {
	registry := spoke.NewRegistry()

	r := &Runner{
		scene:      scene,
		logger:     logger,
		registry:   registry,
		world:      spoke.NewWorld(registry),
		records:    map[string]*spoke.Storage[record]{},
		transforms: map[string]*spoke.TransformStorage{},
	}

	if err := r.registerComponents(); err != nil {
		return nil, err
	}

	if err := r.spawnEntities(); err != nil {
		return nil, err
	}

	for _, spec := range scene.Queries {
		query, err := r.buildQuery(spec, space)
		if err != nil {
			r.Close()
			return nil, eris.Wrapf(err, "query %q", spec.Name)
		}

		r.queries = append(r.queries, query)
	}

	return r, nil
}

func (r *Runner) registerComponents() error {
	for _, name := range r.scene.Components {
		id, err := r.registry.Register(name, reflect.TypeFor[record]())
		if err != nil {
			return eris.Wrapf(err, "component %q", name)
		}

		storage := spoke.NewStorage[record]()
		r.world.SetStorage(id, storage)
		r.records[name] = storage
	}

	for _, name := range r.scene.Spatial {
		id, err := r.registry.Register(name, reflect.TypeFor[spoke.Transform]())
		if err != nil {
			return eris.Wrapf(err, "spatial component %q", name)
		}

		storage := spoke.NewTransformStorage()
		r.world.SetStorage(id, storage)
		r.transforms[name] = storage
	}

	return nil
}

func (r *Runner) spawnEntities() error {
	for _, spec := range r.scene.Entities {
		if !r.world.SpawnWithId(spec.Id) {
			return eris.Wrapf(ErrDuplicateEntity, "entity %s", spec.Id)
		}

		for _, name := range slices.Sorted(maps.Keys(spec.Components)) {
			storage, ok := r.records[name]
			if !ok {
				return eris.Wrapf(ErrUnknownComponent, "entity %s, component %q", spec.Id, name)
			}

			value := spec.Components[name]
			if value == nil {
				value = record{}
			}

			storage.Insert(spec.Id, value)
		}

		if spec.Transform != nil {
			storage, ok := r.transforms[spec.Transform.Component]
			if !ok {
				return eris.Wrapf(ErrUnknownComponent, "entity %s, spatial component %q", spec.Id, spec.Transform.Component)
			}

			storage.Insert(spec.Id, spoke.Transform{
				Position: cp.Vector{X: spec.Transform.X, Y: spec.Transform.Y},
				Angle:    spec.Transform.Angle,
			})
		}
	}

	// parents are linked once all transforms exist
	for _, spec := range r.scene.Entities {
		if spec.Transform == nil || spec.Transform.Parent == nil {
			continue
		}

		parent := *spec.Transform.Parent
		if !r.world.IsAlive(parent) {
			return eris.Wrapf(ErrUnknownEntity, "parent %s of entity %s", parent, spec.Id)
		}

		r.transforms[spec.Transform.Component].SetParent(spec.Id, parent)
	}

	return nil
}

func (r *Runner) lookup(name string) (spoke.ComponentId, error) {
	id, ok := r.registry.Lookup(name)
	if !ok {
		return 0, eris.Wrapf(ErrUnknownComponent, "component %q", name)
	}

	return id, nil
}

func (r *Runner) buildQuery(spec QuerySpec, space spoke.Space) (*dynquery.Query, error) {
	query := dynquery.AcquireQuery(r.registry)
	query.SetLogger(r.logger)
	query.SetName(spec.Name)
	query.SetSpace(space)

	if spec.Space != "" {
		parsed, ok := spoke.ParseSpace(spec.Space)
		if !ok {
			dynquery.ReleaseQuery(query)
			return nil, eris.Errorf("unknown space %q", spec.Space)
		}

		query.SetSpace(parsed)
	}

	if err := r.configureQuery(query, spec); err != nil {
		dynquery.ReleaseQuery(query)
		return nil, err
	}

	return query, nil
}

func (r *Runner) configureQuery(query *dynquery.Query, spec QuerySpec) error {
	for _, sel := range spec.Select {
		id, err := r.lookup(sel.Component)
		if err != nil {
			return err
		}

		if err := query.Select(id, sel.Mutable); err != nil {
			return err
		}
	}

	// modifiers select the component first if needed
	modifiers := []struct {
		names   []string
		modify  func(spoke.ComponentId) error
		include func(spoke.ComponentId) error
	}{
		{spec.Without, query.Without, query.SelectWithout},
		{spec.Maybe, query.Maybe, func(id spoke.ComponentId) error { return query.SelectMaybe(id, false) }},
		{spec.Changed, query.Changed, func(id spoke.ComponentId) error { return query.SelectChanged(id, false) }},
	}

	for _, modifier := range modifiers {
		for _, name := range modifier.names {
			id, err := r.lookup(name)
			if err != nil {
				return err
			}

			apply := modifier.modify
			if query.FindIndexByComponentId(id) == -1 {
				apply = modifier.include
			}

			if err := apply(id); err != nil {
				return err
			}
		}
	}

	for _, group := range spec.Any {
		var ids []spoke.ComponentId
		for _, name := range group {
			id, err := r.lookup(name)
			if err != nil {
				return err
			}

			ids = append(ids, id)
		}

		if err := query.Any(ids...); err != nil {
			return err
		}
	}

	return query.Prepare(r.world)
}

// Run executes the given number of cycles. Queries that fail a cycle are
// reported and the remaining queries still run. The returned error wraps
// the first failure.
func (r *Runner) Run(cycles int) ([]CycleResult, error) {
	var results []CycleResult

	var failed int
	var firstErr error

	for cycle := 1; cycle <= cycles; cycle++ {
		for _, query := range r.queries {
			result := r.runQuery(cycle, query)
			if result.Err != nil {
				r.logger.Error().
					Err(result.Err).
					Int("cycle", cycle).
					Str("query", query.Name()).
					Msg("Query failed")

				if firstErr == nil {
					firstErr = eris.Wrapf(result.Err, "cycle %d, query %q", cycle, query.Name())
				}

				failed += 1
			}

			results = append(results, result)
		}

		if err := r.applyMutations(cycle); err != nil {
			return results, err
		}
	}

	if firstErr != nil {
		return results, eris.Wrapf(firstErr, "%d query cycles failed", failed)
	}

	return results, nil
}

func (r *Runner) runQuery(cycle int, query *dynquery.Query) CycleResult {
	result := CycleResult{Cycle: cycle, Query: query.Name()}

	defer query.EndCycle()

	if err := query.BeginCycle(r.world); err != nil {
		result.Err = err
		return result
	}

	for query.Next() {
		entity := query.CurrentEntity()
		result.Entities = append(result.Entities, entity)

		values := zerolog.Dict()
		for idx := range query.AccessCount() {
			accessor, err := query.AccessorAt(idx)
			if err != nil {
				result.Err = err
				return result
			}

			if !accessor.HasValue() {
				continue
			}

			value, err := accessor.Value()
			if err != nil {
				result.Err = err
				return result
			}

			values = values.Interface(accessor.Name(), value)
		}

		r.logger.Info().
			Int("cycle", cycle).
			Str("query", query.Name()).
			Stringer("entity", entity).
			Dict("components", values).
			Msg("Matched")
	}

	stats := query.Stats()
	r.logger.Debug().
		Int("cycle", cycle).
		Str("query", query.Name()).
		Int("driver", stats.DriverCount).
		Int("visited", stats.Visited).
		Int("matched", stats.Matched).
		Msg("Cycle done")

	return result
}

func (r *Runner) applyMutations(cycle int) error {
	for _, mutation := range r.scene.Mutations {
		if mutation.Cycle != cycle {
			continue
		}

		if err := r.applyMutation(mutation); err != nil {
			return eris.Wrapf(err, "mutation in cycle %d", cycle)
		}

		r.logger.Debug().
			Int("cycle", cycle).
			Stringer("entity", mutation.Entity).
			Str("component", mutation.Component).
			Bool("remove", mutation.Remove).
			Msg("Mutation applied")
	}

	return nil
}

func (r *Runner) applyMutation(mutation MutationSpec) error {
	if !r.world.IsAlive(mutation.Entity) {
		return eris.Wrapf(ErrUnknownEntity, "entity %s", mutation.Entity)
	}

	id, err := r.lookup(mutation.Component)
	if err != nil {
		return err
	}

	if mutation.Remove {
		r.world.Remove(mutation.Entity, id)
		return nil
	}

	if storage, ok := r.records[mutation.Component]; ok {
		if !storage.Has(mutation.Entity) {
			value := maps.Clone(mutation.Set)
			if value == nil {
				value = record{}
			}

			storage.Insert(mutation.Entity, value)
			return nil
		}

		storage.Mutate(mutation.Entity, func(value *record) {
			if *value == nil {
				*value = record{}
			}

			maps.Copy(*value, mutation.Set)
		})

		return nil
	}

	storage := r.transforms[mutation.Component]

	var transform spoke.Transform
	if current, ok := storage.Get(mutation.Entity); ok {
		transform = *current
	}

	for field, value := range mutation.Set {
		number, ok := toFloat(value)
		if !ok {
			return eris.Errorf("field %q of %q needs a number, got %T", field, mutation.Component, value)
		}

		switch field {
		case "x":
			transform.Position.X = number
		case "y":
			transform.Position.Y = number
		case "angle":
			transform.Angle = number
		default:
			return eris.Errorf("unknown transform field %q", field)
		}
	}

	storage.Insert(mutation.Entity, transform)
	return nil
}

func toFloat(value any) (float64, bool) {
	switch value := value.(type) {
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case uint64:
		return float64(value), true
	case float64:
		return value, true
	default:
		return 0, false
	}
}

// AccessConflicts returns the pairs of queries that may not run at the same time.
func (r *Runner) AccessConflicts() ([][2]string, error) {
	infos := make([]dynquery.AccessInfo, len(r.queries))
	for idx, query := range r.queries {
		if err := query.ReportAccessSets(&infos[idx]); err != nil {
			return nil, eris.Wrapf(err, "query %q", query.Name())
		}
	}

	var conflicts [][2]string
	for i := range infos {
		for j := i + 1; j < len(infos); j++ {
			if infos[i].Conflicts(&infos[j]) {
				conflicts = append(conflicts, [2]string{r.queries[i].Name(), r.queries[j].Name()})
			}
		}
	}

	return conflicts, nil
}

// Close returns the queries to the pool.
func (r *Runner) Close() {
	for _, query := range r.queries {
		dynquery.ReleaseQuery(query)
	}

	r.queries = nil
}
