package circlist

import "errors"

var (
	// ErrInvalidPosition is returned when an index falls outside the valid range for the current size.
	ErrInvalidPosition = errors.New("invalid position")
	// ErrEmptyList is returned when removing an end element from an empty list.
	ErrEmptyList = errors.New("list is empty")
	// ErrOutOfMemory is returned when the node budget of the list is exhausted.
	ErrOutOfMemory = errors.New("insufficient memory for a new node")
	// ErrInvalidState is returned by every operation on a list that is not in the Created state.
	ErrInvalidState = errors.New("invalid list state")
	// ErrCorruptRing is returned by Validate when the ring links disagree with each other or with the size.
	ErrCorruptRing = errors.New("corrupt ring")
)

// Process exit codes for callers that terminate on a list error.
const (
	ExitSuccess            = 0
	ExitFailure            = 1
	ExitInvalidPosition    = 2
	ExitInsufficientMemory = 3
)

// ExitCode maps err to the process exit code a driver should terminate with.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrInvalidPosition):
		return ExitInvalidPosition
	case errors.Is(err, ErrOutOfMemory):
		return ExitInsufficientMemory
	default:
		return ExitFailure
	}
}

// errorKind is the short label of err used in metrics and wire replies.
func errorKind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidPosition):
		return "invalid_position"
	case errors.Is(err, ErrEmptyList):
		return "empty_list"
	case errors.Is(err, ErrOutOfMemory):
		return "out_of_memory"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrCorruptRing):
		return "corrupt_ring"
	default:
		return "error"
	}
}

// ErrorKind returns the short label of err: "ok", "invalid_position", "empty_list", "out_of_memory",
// "invalid_state", "corrupt_ring" or "error" for anything that didn't come from this package.
func ErrorKind(err error) string {
	return errorKind(err)
}
