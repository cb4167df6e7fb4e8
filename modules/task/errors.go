package task

import (
	"errors"

	domain "github.com/isw2-unileon/go-tdd-kata/domain/task"
)

// Error codes carried in Result.Code.
const (
	CodeInvalidInput      = "invalid_input"
	CodeNotFound          = "not_found"
	CodeConflict          = "conflict"
	CodeCapacityExceeded  = "capacity_exceeded"
	CodeDependencyFailure = "dependency_failure"
	CodeInternal          = "internal"
)

var kindByCode = map[string]error{
	CodeInvalidInput:      domain.ErrInvalidInput,
	CodeNotFound:          domain.ErrNotFound,
	CodeConflict:          domain.ErrConflict,
	CodeCapacityExceeded:  domain.ErrCapacityExceeded,
	CodeDependencyFailure: domain.ErrDependencyFailure,
}

// ErrorCode returns the wire code for err's kind.
func ErrorCode(err error) string {
	switch domain.Kind(err) {
	case domain.ErrDependencyFailure:
		return CodeDependencyFailure
	case domain.ErrInvalidInput:
		return CodeInvalidInput
	case domain.ErrNotFound:
		return CodeNotFound
	case domain.ErrConflict:
		return CodeConflict
	case domain.ErrCapacityExceeded:
		return CodeCapacityExceeded
	default:
		return CodeInternal
	}
}

func failure(err error) Result {
	return Result{Error: err.Error(), Code: ErrorCode(err)}
}

// remoteError is a failure reported by the task service. It keeps the
// original message and unwraps to the error kind named by its code.
type remoteError struct {
	kind error
	msg  string
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.kind }

// Err returns nil on success, or an error matching the kind the service reported.
func (r Result) Err() error {
	if r.Error == "" && r.Code == "" {
		return nil
	}
	msg := r.Error
	if msg == "" {
		msg = r.Code
	}
	kind, ok := kindByCode[r.Code]
	if !ok {
		return errors.New(msg)
	}
	return &remoteError{kind: kind, msg: msg}
}
