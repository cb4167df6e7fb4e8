package task

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this package wraps exactly one of them,
// so callers can branch with errors.Is on the kind or on the specific error.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrDependencyFailure = errors.New("dependency failure")
)

// Specific errors.
var (
	// ErrInvalidTitle is returned when a title is empty after trimming.
	ErrInvalidTitle = fmt.Errorf("%w: title must not be empty", ErrInvalidInput)

	// ErrInvalidDays is returned when a postponement is not a positive number of days.
	ErrInvalidDays = fmt.Errorf("%w: days must be positive", ErrInvalidInput)

	// ErrInvalidPriority is returned for a priority outside low, medium and high.
	ErrInvalidPriority = fmt.Errorf("%w: priority must be low, medium or high", ErrInvalidInput)

	// ErrInvalidTag is returned when a tag is empty after trimming.
	ErrInvalidTag = fmt.Errorf("%w: tag must not be empty", ErrInvalidInput)

	// ErrCorruptSnapshot is returned by Restore when stored state breaks a Task invariant.
	ErrCorruptSnapshot = fmt.Errorf("%w: corrupt task snapshot", ErrInvalidInput)

	// ErrTaskNotFound is returned when no task matches a title or identifier.
	ErrTaskNotFound = fmt.Errorf("task %w", ErrNotFound)

	// ErrDuplicateTask is returned when a task with the same title already exists.
	ErrDuplicateTask = fmt.Errorf("%w: task already exists", ErrConflict)

	// ErrAlreadyCompleted is returned when a finished task is completed or postponed again.
	ErrAlreadyCompleted = fmt.Errorf("%w: task already completed", ErrConflict)
)

// DependencyError wraps an error returned by a repository, notifier or tag store.
// It unwraps to the original error, so errors.Is against the adapter's own
// sentinels keeps working, and it also matches ErrDependencyFailure.
type DependencyError struct {
	Dependency string
	Op         string
	Err        error
}

// NewDependencyError wraps err, returning nil when err is nil.
func NewDependencyError(dependency, op string, err error) error {
	if err == nil {
		return nil
	}
	return &DependencyError{Dependency: dependency, Op: op, Err: err}
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Dependency, e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDependencyFailure.
func (e *DependencyError) Is(target error) bool {
	return target == ErrDependencyFailure
}

// Kind returns the kind sentinel err belongs to, or nil when it matches none.
func Kind(err error) error {
	for _, kind := range []error{
		ErrDependencyFailure,
		ErrInvalidInput,
		ErrNotFound,
		ErrConflict,
		ErrCapacityExceeded,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
