package bracket

import "errors"

var (
	// Malformed input: bad player count, ID count mismatch, bad slot or delta.
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	// An ID that is still live, or a write racing a delete.
	ErrConflictingState   = errors.New("conflicting state")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type ErrorKind string

const (
	KindInvalidArgument    ErrorKind = "invalid_argument"
	KindNotFound           ErrorKind = "not_found"
	KindConflictingState   ErrorKind = "conflicting_state"
	KindStorageUnavailable ErrorKind = "storage_unavailable"
	KindInternal           ErrorKind = "internal"
)

// Kind maps an error onto the taxonomy exposed to clients.
func Kind(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return KindInvalidArgument
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflictingState):
		return KindConflictingState
	case errors.Is(err, ErrStorageUnavailable):
		return KindStorageUnavailable
	default:
		return KindInternal
	}
}
