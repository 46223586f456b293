package result

import (
	"github.com/abhissng/synapse/blame"
	"github.com/abhissng/synapse/utils/constant"
)

// Result is a generic interface that can represent either a success or an error.
type Result[T any] interface {
	// IsSuccess returns true if the result is a success, false otherwise.
	IsSuccess() bool
	// IsError returns true if the result is an error, false otherwise.
	IsError() bool
	// Value returns the success value and error value if there is error any.
	Value() (*T, blame.Blame)
	// Error returns the error value.
	Error() blame.Blame
	// ToValue returns the success value if the result is a success, nil otherwise.
	ToValue() *T
}

// Success represents a successful result.
type Success[T any] struct {
	Val *T
}

// NewSuccess creates a new success result.
func NewSuccess[T any](value *T) Result[T] {
	return &Success[T]{Val: value}
}

// IsSuccess implements Result.
func (s Success[T]) IsSuccess() bool {
	return true
}

// Value implements Result.
func (s Success[T]) Value() (*T, blame.Blame) {
	return s.Val, nil
}

// IsError implements Result.
func (s Success[T]) IsError() bool {
	return false
}

// Error implements Result.
func (s Success[T]) Error() blame.Blame {
	return blame.NewBasicBlame("success-cannot-be-error").WithComponent(constant.ErrLibrary)
}

// ToValue returns the success value if the result is a success, nil otherwise.
func (s Success[T]) ToValue() *T {
	return s.Val
}

// Failure represents an error result.
type Failure[T any] struct {
	Val *T
	Err blame.Blame
}

// NewFailure creates a new Failure result.
func NewFailure[T any](err blame.Blame) Result[T] {
	return &Failure[T]{Err: err}
}

// NewFailureWithValue keeps a partial value alongside the error.
func NewFailureWithValue[T any](value *T, err blame.Blame) Result[T] {
	return &Failure[T]{Val: value, Err: err}
}

// IsSuccess implements Result.
func (f Failure[T]) IsSuccess() bool {
	return false
}

// IsError implements Result.
func (f Failure[T]) IsError() bool {
	return true
}

// Value implements Result.
func (f Failure[T]) Value() (*T, blame.Blame) {
	return f.Val, f.Err
}

// Error implements Result.
func (f Failure[T]) Error() blame.Blame {
	return f.Err
}

// Failure[T] implements ToValue
func (f Failure[T]) ToValue() *T {
	return nil
}

// ToResult cast the value or error to Result
func ToResult[T any](value *T, err blame.Blame) Result[T] {
	if err != nil {
		return NewFailure[T](err)
	}
	return NewSuccess(value)
}

// CastFailure attempts to cast the failure to a specific type E and returns a new Result.
func CastFailure[T, E any](r Result[T]) Result[E] {
	if r.IsSuccess() {
		return NewFailure[E](blame.NewBasicBlame("success-cannot-produce-error"))
	}
	return NewFailure[E](r.Error())
}

// MapError maps the error of a Result to a new Result with a different type.
func MapError[T, R any](r Result[T], mapFn func(blame.Blame) blame.Blame) Result[R] {
	if r.IsSuccess() {
		return NewFailure[R](blame.NewBasicBlame("success-cannot-map-with-error"))
	}
	return NewFailure[R](mapFn(r.Error()))
}

// Map converts a success value with fn; failures are carried over unchanged.
func Map[T, R any](r Result[T], fn func(*T) (*R, blame.Blame)) Result[R] {
	if r.IsError() {
		return NewFailure[R](r.Error())
	}
	v, err := fn(r.ToValue())
	return ToResult(v, err)
}
