package spoke

import (
	"reflect"
	"strconv"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

var (
	ErrComponentTypeMismatch = eris.New("component already registered with a different type")
	ErrEmptyComponentName    = eris.New("component name must not be empty")
)

// ComponentId identifies a registered component. The zero value is never a valid id.
type ComponentId uint32

func (c ComponentId) String() string {
	return strconv.Itoa(int(c))
}

type ComponentInfo struct {
	Id   ComponentId
	Name string
	Type reflect.Type
}

type registryTable struct {
	components []*ComponentInfo
	byName     map[string]*ComponentInfo
}

// Registry maps component ids to names and types. Lookups are lock free,
// registration clones the table and swaps it in.
type Registry struct {
	table atomic.Pointer[registryTable]
}

func NewRegistry() *Registry {
	var r Registry
	r.table.Store(&registryTable{byName: map[string]*ComponentInfo{}})
	return &r
}

func (r *Registry) load() *registryTable {
	table := r.table.Load()
	if table == nil {
		r.table.CompareAndSwap(nil, &registryTable{byName: map[string]*ComponentInfo{}})
		table = r.table.Load()
	}

	return table
}

// Register adds a component with the given name. Registering a name a second
// time with the same type returns the existing id.
func (r *Registry) Register(name string, ty reflect.Type) (ComponentId, error) {
	if name == "" {
		return 0, ErrEmptyComponentName
	}

	for {
		previous := r.load()
		if existing, ok := previous.byName[name]; ok {
			if existing.Type != ty {
				return 0, eris.Wrapf(ErrComponentTypeMismatch, "component %q: %s != %s", name, existing.Type, ty)
			}

			return existing.Id, nil
		}

		info := &ComponentInfo{
			Id:   ComponentId(len(previous.components) + 1),
			Name: name,
			Type: ty,
		}

		next := &registryTable{
			components: append(previous.components[:len(previous.components):len(previous.components)], info),
			byName:     make(map[string]*ComponentInfo, len(previous.byName)+1),
		}

		for key, value := range previous.byName {
			next.byName[key] = value
		}

		next.byName[name] = info

		if r.table.CompareAndSwap(previous, next) {
			log.Debug().
				Str("component", info.Name).
				Uint32("component_id", uint32(info.Id)).
				Msg("New component registered")

			return info.Id, nil
		}
	}
}

// RegisterComponent registers T using its type name.
func RegisterComponent[T any](r *Registry) ComponentId {
	ty := reflect.TypeFor[T]()

	name := ty.Name()
	if name == "" {
		name = ty.String()
	}

	id, err := r.Register(name, ty)
	if err != nil {
		panic(eris.ToString(err, true))
	}

	return id
}

func (r *Registry) info(id ComponentId) (*ComponentInfo, bool) {
	components := r.load().components
	if id == 0 || int(id) > len(components) {
		return nil, false
	}

	return components[id-1], true
}

// Verify reports whether id belongs to a registered component.
func (r *Registry) Verify(id ComponentId) bool {
	_, ok := r.info(id)
	return ok
}

// Name returns the name of the component, or an empty string.
func (r *Registry) Name(id ComponentId) string {
	info, ok := r.info(id)
	if !ok {
		return ""
	}

	return info.Name
}

func (r *Registry) Type(id ComponentId) reflect.Type {
	info, ok := r.info(id)
	if !ok {
		return nil
	}

	return info.Type
}

func (r *Registry) Lookup(name string) (ComponentId, bool) {
	info, ok := r.load().byName[name]
	if !ok {
		return 0, false
	}

	return info.Id, true
}

func (r *Registry) Components() []ComponentInfo {
	components := r.load().components

	result := make([]ComponentInfo, 0, len(components))
	for _, info := range components {
		result = append(result, *info)
	}

	return result
}
