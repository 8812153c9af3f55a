package dynquery

import (
	"time"

	"github.com/oliverbestmann/dynquery/internal/assert"
	"github.com/oliverbestmann/dynquery/spoke"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// State is the lifecycle state of a Query.
type State uint8

const (
	// StateBuilding accepts structural changes until the query is prepared.
	StateBuilding State = iota

	// StateBound is entered by BeginCycle: storages are bound, the driver is known.
	StateBound

	// StateIterating is entered by the first call to Next.
	StateIterating

	// StateConcluded is entered by EndCycle.
	StateConcluded
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "building"
	case StateBound:
		return "bound"
	case StateIterating:
		return "iterating"
	case StateConcluded:
		return "concluded"
	default:
		return "unknown"
	}
}

// Query selects entities by a filter that is assembled at runtime.
//
// Components are added with Select and refined with Without, Maybe and
// Changed. Any groups components into a disjunction. Once prepared, the
// structure of the query is fixed and it can be run in cycles:
//
//	if err := q.BeginCycle(world); err != nil { ... }
//	for q.Next() {
//	    position := q.AccessorAt(0)
//	}
//	q.EndCycle()
//
// A Query must not be used by multiple goroutines at the same time.
type Query struct {
	_ noCopy

	registry Registry
	name     string
	logger   zerolog.Logger
	space    spoke.Space

	err    error
	locked bool
	state  State

	elements  []*selectElement
	accessors []Accessor
	groups    []selectGroup

	// world the change listeners are registered with
	world World

	driver  spoke.EntitiesBuffer
	cursor  int
	current spoke.EntityId

	stats      CycleStats
	cycleStart time.Time
}

// NewQuery creates an empty query. Component ids are verified against the registry.
func NewQuery(registry Registry) *Query {
	q := &Query{}
	q.init(registry)
	return q
}

func (q *Query) init(registry Registry) {
	q.registry = registry
	q.logger = log.Logger
	q.current = spoke.NoEntity
}

// SetName names the query in log output.
func (q *Query) SetName(name string) {
	q.name = name
	q.logger = q.logger.With().Str("query", name).Logger()
}

func (q *Query) Name() string {
	return q.name
}

// SetLogger replaces the logger of the query.
func (q *Query) SetLogger(logger zerolog.Logger) {
	q.logger = logger
	if q.name != "" {
		q.logger = q.logger.With().Str("query", q.name).Logger()
	}
}

// SetSpace sets the space spatial components are fetched in.
func (q *Query) SetSpace(space spoke.Space) {
	q.space = space
}

func (q *Query) Space() spoke.Space {
	return q.space
}

// IsValid reports whether the query can be used. Results of an invalid
// query must not be trusted.
func (q *Query) IsValid() bool {
	return q.err == nil
}

// Err returns the error that made the query invalid.
func (q *Query) Err() error {
	return q.err
}

func (q *Query) State() State {
	return q.state
}

// IsLocked reports whether the structure of the query is fixed.
func (q *Query) IsLocked() bool {
	return q.locked
}

func (q *Query) invalidate(err error, id spoke.ComponentId) error {
	if q.err == nil {
		q.err = err
	}

	event := q.logger.Error()

	// zero is never a registered id, the error is about the query as a whole
	if id != 0 {
		event = event.
			Uint32("component_id", uint32(id)).
			Str("component", q.registry.Name(id))
	}

	event.Msg(err.Error())

	return err
}

func (q *Query) checkMutable() error {
	if q.err != nil {
		return eris.Wrap(ErrInvalidQuery, q.err.Error())
	}

	if q.locked {
		return ErrLocked
	}

	return nil
}

// Select adds the component to the query. Entities must store the component
// to be matched, unless a modifier is added.
func (q *Query) Select(id spoke.ComponentId, mutable bool) error {
	if err := q.checkMutable(); err != nil {
		return err
	}

	if !q.registry.Verify(id) {
		return q.invalidate(eris.Wrapf(ErrInvalidComponent, "component %s", id), id)
	}

	if q.FindIndexByComponentId(id) != -1 {
		return q.invalidate(eris.Wrapf(ErrAlreadySelected, "component %s", id), id)
	}

	q.elements = append(q.elements, newSelectElement(id, q.registry.Name(id), mutable))

	return nil
}

// Without excludes entities storing the selected component.
func (q *Query) Without(id spoke.ComponentId) error {
	return q.insertOperator(id, Without)
}

// Maybe matches entities whether or not they store the selected component.
func (q *Query) Maybe(id spoke.ComponentId) error {
	return q.insertOperator(id, Maybe)
}

// Changed only matches entities whose selected component changed since the previous cycle.
func (q *Query) Changed(id spoke.ComponentId) error {
	return q.insertOperator(id, Changed)
}

// SelectWithout selects the component and excludes entities storing it.
func (q *Query) SelectWithout(id spoke.ComponentId) error {
	if err := q.Select(id, false); err != nil {
		return err
	}

	return q.Without(id)
}

// SelectMaybe selects the component as optional.
func (q *Query) SelectMaybe(id spoke.ComponentId, mutable bool) error {
	if err := q.Select(id, mutable); err != nil {
		return err
	}

	return q.Maybe(id)
}

// SelectChanged selects the component and only matches changed entities.
func (q *Query) SelectChanged(id spoke.ComponentId, mutable bool) error {
	if err := q.Select(id, mutable); err != nil {
		return err
	}

	return q.Changed(id)
}

func (q *Query) insertOperator(id spoke.ComponentId, operator Operator) error {
	if err := q.checkMutable(); err != nil {
		return err
	}

	idx := q.FindIndexByComponentId(id)
	if idx == -1 {
		return q.invalidate(eris.Wrapf(ErrNotSelected, "component %s, operator %s", id, operator), id)
	}

	element := q.elements[idx]
	element.operators = append(element.operators, operator)

	return nil
}

// Any moves the selected components into a new group that matches an
// entity if any of the components filters matches.
func (q *Query) Any(ids ...spoke.ComponentId) error {
	if err := q.checkMutable(); err != nil {
		return err
	}

	if len(ids) == 0 {
		return q.invalidate(ErrEmptyGroup, 0)
	}

	group := &anyGroup{}

	for _, id := range ids {
		idx := q.FindIndexByComponentId(id)
		if idx == -1 {
			return q.invalidate(eris.Wrapf(ErrNotSelected, "component %s", id), id)
		}

		element := q.elements[idx]
		if element.container != containerAll || containsElement(group, element) {
			return q.invalidate(eris.Wrapf(ErrAlreadyGrouped, "component %s", id), id)
		}

		group.add(element)
	}

	for _, element := range group.members() {
		element.container = containerAny
	}

	q.groups = append(q.groups, group)

	return nil
}

func containsElement(group selectGroup, element *selectElement) bool {
	for _, member := range group.members() {
		if member == element {
			return true
		}
	}

	return false
}

// Prepare fixes the structure of the query and registers the change tracking
// with the world. It is called by BeginCycle if needed.
func (q *Query) Prepare(world World) error {
	if q.err != nil {
		return eris.Wrap(ErrInvalidQuery, q.err.Error())
	}

	if !q.locked {
		q.locked = true

		q.accessors = make([]Accessor, len(q.elements))

		all := &allGroup{}
		for idx, element := range q.elements {
			q.accessors[idx].init(element.id, element.name, element.mutable)

			if element.container == containerAll {
				all.add(element)
			}
		}

		q.groups = append([]selectGroup{all}, q.groups...)
	}

	if q.world == nil {
		q.world = world

		for _, element := range q.elements {
			if !element.bindToWorld(world) {
				q.logger.Warn().
					Uint32("component_id", uint32(element.id)).
					Str("component", element.name).
					Msg("No storage to track changes of component")
			}
		}
	}

	return nil
}

// BeginCycle binds the storages of the world and computes the candidate
// entities that drive the iteration. The query must not be in a cycle already.
func (q *Query) BeginCycle(world World) error {
	if q.state == StateBound || q.state == StateIterating {
		return eris.Wrapf(ErrWrongState, "begin cycle in state %s", q.state)
	}

	if err := q.Prepare(world); err != nil {
		return err
	}

	q.current = spoke.NoEntity
	q.cursor = 0
	q.driver = spoke.Unbounded()
	q.stats.Visited = 0
	q.stats.Matched = 0
	q.cycleStart = time.Now()
	q.state = StateBound

	cyclesTotal.Inc()

	for _, group := range q.groups {
		for _, element := range group.members() {
			element.beginCycle(world)
		}

		if candidates := group.candidateEntities(); candidates.Smaller(q.driver) {
			q.driver = candidates
		}
	}

	if q.driver.IsUnbounded() {
		q.driver = spoke.EntitiesBuffer{}
		invalidCyclesTotal.Inc()
		return q.invalidate(ErrNoDeterminantFilter, 0)
	}

	q.stats.DriverCount = q.driver.Len()
	driverEntities.Observe(float64(q.driver.Len()))

	q.logger.Trace().
		Int("driver", q.driver.Len()).
		Msg("Cycle started")

	return nil
}

func (q *Query) inCycle() bool {
	return q.state == StateBound || q.state == StateIterating
}

// Next advances to the next matching entity and fetches its components.
// It returns false once all candidates are visited, or if the query is
// invalid or not in a cycle.
func (q *Query) Next() bool {
	if q.err != nil {
		return false
	}

	if !q.inCycle() {
		assert.That(false, "Next called in state %s", q.state)
		return false
	}

	q.state = StateIterating

	for q.cursor < q.driver.Len() {
		entity := q.driver.At(q.cursor)
		q.cursor += 1
		q.stats.Visited += 1

		if q.has(entity) {
			q.fetch(entity)
			q.stats.Matched += 1
			return true
		}
	}

	return false
}

// Has reports whether the entity is matched by the query. It does not
// move the iteration.
func (q *Query) Has(entity spoke.EntityId) bool {
	if !q.inCycle() || q.err != nil {
		return false
	}

	return q.has(entity)
}

func (q *Query) has(entity spoke.EntityId) bool {
	for _, group := range q.groups {
		if !group.filterSatisfied(entity) {
			return false
		}
	}

	return true
}

// Fetch points the accessors to the components of an entity. The entity
// must be matched by the query, check it using Has. In debug builds a
// mismatch is fatal, otherwise all accessors hold no value afterwards.
func (q *Query) Fetch(entity spoke.EntityId) error {
	if !q.inCycle() {
		return eris.Wrapf(ErrWrongState, "fetch in state %s", q.state)
	}

	if q.err != nil {
		return eris.Wrap(ErrInvalidQuery, q.err.Error())
	}

	if !q.has(entity) {
		assert.That(false, "entity %s can not be fetched by this query, check it using Has", entity)

		for idx := range q.accessors {
			q.accessors[idx].setTarget(nil)
		}

		q.current = spoke.NoEntity

		return eris.Wrapf(ErrEntityNotMatched, "entity %s", entity)
	}

	q.fetch(entity)
	return nil
}

func (q *Query) fetch(entity spoke.EntityId) {
	for idx, element := range q.elements {
		element.fetch(entity, q.space, &q.accessors[idx])
	}

	q.current = entity
}

// Count returns the number of matched entities without moving the iteration.
func (q *Query) Count() int {
	if !q.inCycle() || q.err != nil {
		return 0
	}

	var count int
	for entity := range q.driver.All() {
		if q.has(entity) {
			count += 1
		}
	}

	return count
}

// CurrentEntity returns the entity fetched last, or spoke.NoEntity.
func (q *Query) CurrentEntity() spoke.EntityId {
	return q.current
}

// EndCycle releases the storages bound by BeginCycle and resets the change
// tracking. It must be called even if the iteration stopped early.
func (q *Query) EndCycle() {
	if !q.inCycle() {
		return
	}

	for _, group := range q.groups {
		for _, element := range group.members() {
			element.endCycle()
		}

		if disjunction, ok := group.(*anyGroup); ok {
			disjunction.reset()
		}
	}

	for idx := range q.accessors {
		q.accessors[idx].setTarget(nil)
	}

	q.driver = spoke.EntitiesBuffer{}
	q.cursor = 0
	q.current = spoke.NoEntity
	q.state = StateConcluded

	q.stats.Cycles = q.stats.Cycles.Add(time.Since(q.cycleStart))

	candidatesVisitedTotal.Add(float64(q.stats.Visited))
	entitiesMatchedTotal.Add(float64(q.stats.Matched))

	q.logger.Trace().
		Int("visited", q.stats.Visited).
		Int("matched", q.stats.Matched).
		Msg("Cycle concluded")
}

// Release ends a running cycle and unregisters the change tracking from
// the world. The query can be prepared again for another world.
func (q *Query) Release() {
	q.EndCycle()

	for _, element := range q.elements {
		element.release()
	}

	q.world = nil
}

// Reset drops all selected components so the query can be built again.
func (q *Query) Reset() {
	q.Release()

	q.err = nil
	q.locked = false
	q.state = StateBuilding
	q.elements = nil
	q.accessors = nil
	q.groups = nil
	q.driver = spoke.EntitiesBuffer{}
	q.cursor = 0
	q.current = spoke.NoEntity
	q.stats = CycleStats{}
}

// Stats returns statistics about the cycles of this query.
func (q *Query) Stats() CycleStats {
	return q.stats
}

// AccessCount returns the number of selected components.
func (q *Query) AccessCount() int {
	return len(q.elements)
}

// AccessorAt returns the accessor of the component selected at idx.
// Accessors exist once the query is prepared.
func (q *Query) AccessorAt(idx int) (*Accessor, error) {
	if q.err != nil {
		return nil, eris.Wrap(ErrInvalidQuery, q.err.Error())
	}

	if idx < 0 || idx >= len(q.accessors) {
		return nil, eris.Wrapf(ErrIndexOutOfRange, "index %d of %d", idx, len(q.accessors))
	}

	return &q.accessors[idx], nil
}

// AccessorByName returns the accessor of the component with the given name.
func (q *Query) AccessorByName(name string) (*Accessor, error) {
	idx := q.FindIndexByName(name)
	if idx == -1 {
		return nil, eris.Wrapf(ErrUnknownName, "component %q", name)
	}

	return q.AccessorAt(idx)
}

// FindIndexByName returns the index of the selected component with the name, or -1.
func (q *Query) FindIndexByName(name string) int {
	for idx, element := range q.elements {
		if element.name == name {
			return idx
		}
	}

	return -1
}

// FindIndexByComponentId returns the index of the selected component, or -1.
func (q *Query) FindIndexByComponentId(id spoke.ComponentId) int {
	for idx, element := range q.elements {
		if element.id == id {
			return idx
		}
	}

	return -1
}

// ReportAccessSets adds the selected components to the mutable or immutable set of out.
func (q *Query) ReportAccessSets(out *AccessInfo) error {
	if q.err != nil {
		return eris.Wrap(ErrInvalidQuery, q.err.Error())
	}

	for _, element := range q.elements {
		if element.mutable {
			out.Mutable.Insert(element.id)
		} else {
			out.Immutable.Insert(element.id)
		}
	}

	return nil
}
