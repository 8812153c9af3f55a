package spoke

import (
	"math"
	"strconv"
)

type EntityId uint32

// NoEntity is the id reported when no entity is currently selected.
const NoEntity EntityId = math.MaxUint32

func (e EntityId) String() string {
	if e == NoEntity {
		return "none"
	}

	return strconv.Itoa(int(e))
}

// Space selects the coordinate space a spatial component is fetched in.
// Non spatial storages ignore it.
type Space uint8

const (
	Local Space = iota
	Global
)

func (s Space) String() string {
	switch s {
	case Local:
		return "local"
	case Global:
		return "global"
	default:
		return "space(" + strconv.Itoa(int(s)) + ")"
	}
}

// ParseSpace parses the textual representation of a Space.
func ParseSpace(value string) (Space, bool) {
	switch value {
	case "", "local":
		return Local, true
	case "global":
		return Global, true
	default:
		return Local, false
	}
}
