package dynquery

import "github.com/rotisserie/eris"

// Build errors. The query is invalid after any of these.
var (
	ErrInvalidComponent = eris.New("component id is not registered")
	ErrAlreadySelected  = eris.New("component is already part of this query")
	ErrNotSelected      = eris.New("component needs to be selected first")
	ErrAlreadyGrouped   = eris.New("component is already part of another group")
	ErrEmptyGroup       = eris.New("group needs at least one component")
)

// Cycle usability error.
var ErrNoDeterminantFilter = eris.New("query can not be used with only non determinant filters (like Without and Maybe)")

// Misuse errors.
var (
	ErrInvalidQuery     = eris.New("query is not valid")
	ErrLocked           = eris.New("query can not change at this point, it needs to be reset")
	ErrWrongState       = eris.New("operation not allowed in the current query state")
	ErrEntityNotMatched = eris.New("entity is not matched by this query")
	ErrIndexOutOfRange  = eris.New("accessor index out of range")
	ErrUnknownName      = eris.New("no component with this name in the query")
)

// Accessor errors.
var (
	ErrNoValue      = eris.New("accessor holds no value")
	ErrReadOnly     = eris.New("component was fetched read only")
	ErrUnknownField = eris.New("component has no such field")
	ErrFieldType    = eris.New("value can not be assigned to field")
)
