package dynquery

import (
	"maps"
	"reflect"

	"github.com/oliverbestmann/dynquery/internal/refl"
	"github.com/oliverbestmann/dynquery/spoke"
	"github.com/rotisserie/eris"
)

// Accessor exposes the component value of the current entity for one
// selected component. It checks the access mode on every use: a component
// selected as immutable can be read but never written through its Accessor.
//
// The target is only valid until the query moves to the next entity or
// ends the cycle.
type Accessor struct {
	componentId spoke.ComponentId
	name        string
	mutable     bool

	// pointer to the storage slot, nil if there is no value
	target any
}

func (a *Accessor) init(componentId spoke.ComponentId, name string, mutable bool) {
	a.componentId = componentId
	a.name = name
	a.mutable = mutable
	a.target = nil
}

func (a *Accessor) setTarget(target any) {
	a.target = target
}

func (a *Accessor) ComponentId() spoke.ComponentId {
	return a.componentId
}

func (a *Accessor) Name() string {
	return a.name
}

func (a *Accessor) IsMutable() bool {
	return a.mutable
}

func (a *Accessor) HasValue() bool {
	return a.target != nil
}

// Value returns a copy of the component value.
func (a *Accessor) Value() (any, error) {
	if a.target == nil {
		return nil, eris.Wrapf(ErrNoValue, "component %q", a.name)
	}

	value := reflect.ValueOf(a.target).Elem().Interface()
	if record, ok := value.(map[string]any); ok {
		return maps.Clone(record), nil
	}

	return value, nil
}

// Mut returns the pointer to the stored component value.
func (a *Accessor) Mut() (any, error) {
	if err := a.checkWritable(); err != nil {
		return nil, err
	}

	return a.target, nil
}

// Get reads a single field of the component. Struct components are looked up
// by exported field name, map[string]any components by key.
func (a *Accessor) Get(field string) (any, error) {
	if a.target == nil {
		return nil, eris.Wrapf(ErrNoValue, "component %q", a.name)
	}

	if record, ok := a.target.(*map[string]any); ok {
		value, ok := (*record)[field]
		if !ok {
			return nil, eris.Wrapf(ErrUnknownField, "component %q, field %q", a.name, field)
		}

		return value, nil
	}

	value, ok := refl.FieldByName(reflect.ValueOf(a.target), field)
	if !ok {
		return nil, eris.Wrapf(ErrUnknownField, "component %q, field %q", a.name, field)
	}

	return value.Interface(), nil
}

// Set writes a single field of the component.
func (a *Accessor) Set(field string, value any) error {
	if err := a.checkWritable(); err != nil {
		return err
	}

	if record, ok := a.target.(*map[string]any); ok {
		if *record == nil {
			*record = map[string]any{}
		}

		(*record)[field] = value
		return nil
	}

	target, ok := refl.FieldByName(reflect.ValueOf(a.target), field)
	if !ok {
		return eris.Wrapf(ErrUnknownField, "component %q, field %q", a.name, field)
	}

	if !refl.Assign(target, value) {
		return eris.Wrapf(ErrFieldType, "component %q, field %q: %T", a.name, field, value)
	}

	return nil
}

func (a *Accessor) checkWritable() error {
	if a.target == nil {
		return eris.Wrapf(ErrNoValue, "component %q", a.name)
	}

	if !a.mutable {
		return eris.Wrapf(ErrReadOnly, "component %q", a.name)
	}

	return nil
}

// Get returns a copy of the component value held by the accessor.
func Get[T any](a *Accessor) (T, bool) {
	ptr, ok := a.target.(*T)
	if !ok || ptr == nil {
		var zero T
		return zero, false
	}

	return *ptr, true
}

// GetMut returns a pointer to the component value held by the accessor. It fails
// if the component was not selected as mutable.
func GetMut[T any](a *Accessor) (*T, error) {
	if err := a.checkWritable(); err != nil {
		return nil, err
	}

	ptr, ok := a.target.(*T)
	if !ok {
		return nil, eris.Errorf("component %q is a %T, not a %s", a.name, a.target, reflect.TypeFor[T]())
	}

	return ptr, nil
}
