package dynquery

import (
	"github.com/oliverbestmann/dynquery/internal/set"
	"github.com/oliverbestmann/dynquery/spoke"
)

// AccessInfo describes which components a query reads and writes. A scheduler
// uses it to decide which queries may run at the same time.
type AccessInfo struct {
	Mutable   set.Set[spoke.ComponentId]
	Immutable set.Set[spoke.ComponentId]
}

// Conflicts reports whether a and other may not be active concurrently:
// one of them writes a component the other reads or writes.
func (a *AccessInfo) Conflicts(other *AccessInfo) bool {
	return a.Mutable.Intersects(&other.Mutable) ||
		a.Mutable.Intersects(&other.Immutable) ||
		other.Mutable.Intersects(&a.Immutable)
}

// MutableIds returns the written components in ascending order.
func (a *AccessInfo) MutableIds() []spoke.ComponentId {
	return set.Sorted(&a.Mutable)
}

// ImmutableIds returns the read only components in ascending order.
func (a *AccessInfo) ImmutableIds() []spoke.ComponentId {
	return set.Sorted(&a.Immutable)
}
