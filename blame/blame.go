// Package blame provides a custom error type that adds additional information and functionality to standard errors.
package blame

import (
	"errors"

	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/types"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// Blame represents a custom error type that provides additional information and functionality.
type Blame interface {
	// error is embedded to ensure Blame implements the error interface.
	error

	// FetchReasonCode returns the reason code associated with the error.
	FetchReasonCode() string

	// FetchErrCode returns the error code associated with the error.
	FetchErrCode() types.ErrorCode

	// FetchMessage returns the error message.
	FetchMessage() string

	// FetchDescription returns the error description.
	FetchDescription() string

	// FetchFields returns a map of additional error fields.
	FetchFields() map[string]any

	// FetchSource returns the source of the error.
	FetchSource() string

	// FetchComponent returns the component associated with the error.
	FetchComponent() types.ComponentErrorType

	// FetchResponseType returns the response type associated with the error.
	FetchResponseType() types.ResponseErrorType

	// FetchStatusCode returns the numeric status mirrored into reply bodies.
	FetchStatusCode() int

	// FetchCauses returns a slice of underlying errors that caused this error.
	FetchCauses() []error

	// FetchLanguageTag returns a types.LanguageTag for the error instance
	FetchLanguageTag() types.LanguageTag

	// WithMessage sets the error message and returns the updated Blame instance.
	WithMessage(string) *Error

	// WithDescription sets the error description and returns the updated Blame instance.
	WithDescription(string) *Error

	// WithField adds a new field to the error and returns the updated Blame instance.
	WithField(key string, value any) *Error

	// WithFields adds multiple fields to the error and returns the updated Blame instance.
	WithFields(fields map[string]any) *Error

	// WithCause adds a new underlying error to the error and returns the updated Blame instance.
	WithCause(err error) *Error

	// WithComponent sets the component associated with the error and returns the updated Blame instance.
	WithComponent(component types.ComponentErrorType) *Error

	// WithResponseType sets the response type associated with the error and returns the updated Blame instance.
	WithResponseType(responseType types.ResponseErrorType) *Error

	// WithStatusCode overrides the status derived from the response type.
	WithStatusCode(code int) *Error

	// WithBundle adds a new bundle to the error and returns the updated Blame instance.
	WithBundle(bundle *i18n.Bundle) *Error

	// WithLanguageTag adds a new language to the error and returns the updated Blame instance.
	WithLanguageTag(language types.LanguageTag) *Error

	// Translate translates the error message and description using the i18n bundle and language of the error.
	Translate() (string, string)

	// Wrap applies fields and causes to the error.
	Wrap(opts ...BlameOption) Blame

	// EmptyCause sets the causes of the error to an empty slice and returns the updated Error instance.
	EmptyCause() Blame

	// ErrorFromBlame creates a new error string from the causes of a Blame instance.
	ErrorFromBlame() error

	// Unwrap exposes the causes to errors.Is and errors.As.
	Unwrap() []error
}

// NewBlame creates a new instance of Blame with the provided reason code, error code, and message. It captures the source of the error at the point of instantiation.
func NewBlame(
	reasonCode string,
	errCode types.ErrorCode,
	message, description string,
) Blame {
	return NewError(reasonCode, errCode, message, description)
}

// NewBasicBlame creates a new instance of Blame with the provided error code. It captures the source of the error at the point of instantiation.
func NewBasicBlame(
	errCode types.ErrorCode,
) Blame {
	return NewBasicError(errCode)
}

// NilBlame returns a nil blame
func NilBlame() Blame {
	return nil
}

// AsBlame reports whether err is (or wraps) a Blame.
func AsBlame(err error) (Blame, bool) {
	if err == nil {
		return nil, false
	}
	var b Blame
	if errors.As(err, &b) {
		return b, true
	}
	return nil, false
}

// FromError converts any error to a Blame, wrapping foreign errors as internal server errors.
func FromError(err error) Blame {
	if err == nil {
		return nil
	}
	if b, ok := AsBlame(err); ok {
		return b
	}
	return InternalServerError(err)
}

// StatusCode returns the status carried by err, 0 for nil and 500 for foreign errors.
func StatusCode(err error) int {
	if err == nil {
		return 0
	}
	if b, ok := AsBlame(err); ok {
		return b.FetchStatusCode()
	}
	return constant.StatusInternalError
}

// HasCode reports whether err is a Blame with the given error code.
func HasCode(err error, code types.ErrorCode) bool {
	b, ok := AsBlame(err)
	return ok && b.FetchErrCode() == code
}

// Message returns the human readable message carried by err: the rendered
// message for a Blame, err.Error() otherwise.
func Message(err error) string {
	if err == nil {
		return ""
	}
	b, ok := AsBlame(err)
	if !ok {
		return err.Error()
	}
	if e, ok := b.(*Error); ok {
		message, _ := e.Translate()
		return message
	}
	return b.FetchMessage()
}
