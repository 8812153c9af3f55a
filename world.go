package dynquery

import "github.com/oliverbestmann/dynquery/spoke"

// World provides the storages a Query reads from. Storage returns nil if
// the world has no storage for the component.
type World interface {
	Storage(id spoke.ComponentId) spoke.ErasedStorage
}

// Registry knows all valid component ids.
type Registry interface {
	Verify(id spoke.ComponentId) bool
	Name(id spoke.ComponentId) string
}

var _ World = &spoke.World{}
var _ Registry = &spoke.Registry{}
