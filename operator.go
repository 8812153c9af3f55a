package dynquery

import "strconv"

// Operator is one step in the filter chain of a selected component.
type Operator uint8

const (
	// With requires the entity to store the component.
	With Operator = iota

	// Without negates the chain evaluated so far.
	Without

	// Maybe is always satisfied. The component is fetched if present.
	Maybe

	// Changed requires the component of the entity to have changed since the last cycle.
	Changed
)

func (o Operator) String() string {
	switch o {
	case With:
		return "With"
	case Without:
		return "Without"
	case Maybe:
		return "Maybe"
	case Changed:
		return "Changed"
	default:
		return "Operator(" + strconv.Itoa(int(o)) + ")"
	}
}

// IsDeterminant reports whether a chain ending in this operator can enumerate
// the entities that satisfy it.
func (o Operator) IsDeterminant() bool {
	return o == With || o == Changed
}
