package blame

import (
	"errors"
	"fmt"
	"maps"
	"runtime"
	"strings"

	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/helpers"
	"github.com/abhissng/synapse/utils/types"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

// Error struct holds the error information
type Error struct {
	reasonCode   string          // SYN-100003
	errCode      types.ErrorCode // error-request-timeout
	component    types.ComponentErrorType
	responseType types.ResponseErrorType
	statusCode   int
	message      string
	description  string
	fields       map[string]any
	causes       []error
	source       string
	bundle       *i18n.Bundle
	language     types.LanguageTag
}

// NewError creates a new Error instance
func NewError(
	reasonCode string,
	errorCode types.ErrorCode,
	message, description string,
) *Error {
	if helpers.IsEmpty(reasonCode) {
		reasonCode = string(errorCode)
	}
	return &Error{
		reasonCode:  reasonCode,
		errCode:     errorCode,
		message:     message,
		description: description,
		language:    helpers.GetDefaultLanguageTag(),
		fields:      map[string]any{},
		causes:      make([]error, 0),
		source:      findSource(),
	}
}

// NewBasicError creates a new Error instance with the given error code
func NewBasicError(
	errorCode types.ErrorCode,
) *Error {
	return &Error{
		reasonCode: errorCode.String(),
		errCode:    errorCode,
		language:   helpers.GetDefaultLanguageTag(),
		fields:     map[string]any{},
		causes:     make([]error, 0),
		source:     findSource(),
	}
}

// clone copies a definition so callers never mutate the shared template.
func (e *Error) clone() *Error {
	c := *e
	c.fields = maps.Clone(e.fields)
	if c.fields == nil {
		c.fields = map[string]any{}
	}
	c.causes = append(make([]error, 0, len(e.causes)), e.causes...)
	c.source = findSource()
	return &c
}

// FetchReasonCode returns the reason code of the error as a string
func (e *Error) FetchReasonCode() string {
	return e.reasonCode
}

// FetchErrCode returns the error code of the error as a ErrorCode
func (e *Error) FetchErrCode() types.ErrorCode {
	return e.errCode
}

// FetchMessage returns the message of the error as a string
func (e *Error) FetchMessage() string {
	return e.message
}

// FetchDescription returns the description of the error as a string
func (e *Error) FetchDescription() string {
	return e.description
}

// FetchLanguageTag returns the language tag of the error as a LanguageTag
func (e *Error) FetchLanguageTag() types.LanguageTag {
	return e.language
}

// FetchFields returns the fields of the error as a map[string]any
func (e *Error) FetchFields() map[string]any {
	return e.fields
}

// FetchSource returns the source of the error as a string
func (e *Error) FetchSource() string {
	return e.source
}

// FetchComponent returns the component of the error as a ComponentErrorType
func (e *Error) FetchComponent() types.ComponentErrorType {
	return e.component
}

// FetchResponseType returns the response type of the error as a ResponseErrorType
func (e *Error) FetchResponseType() types.ResponseErrorType {
	return e.responseType
}

// FetchStatusCode returns the explicit status when set, otherwise the one implied by the response type.
func (e *Error) FetchStatusCode() int {
	if e.statusCode > 0 {
		return e.statusCode
	}
	return helpers.FetchStatusCode(e.responseType)
}

// FetchCauses returns the causes of the error as a slice of errors
func (e *Error) FetchCauses() []error {
	return e.causes
}

// EmptyCause sets the causes of the error to an empty slice and returns the updated Error instance.
func (e *Error) EmptyCause() Blame {
	e.causes = make([]error, 0)
	return e
}

// WithLanguageTag sets the language tag of the error and returns the updated Error instance.
func (e *Error) WithLanguageTag(language types.LanguageTag) *Error {
	e.language = language
	return e
}

// WithBundle sets the bundle of the error and returns the updated Error instance.
func (e *Error) WithBundle(localBundle *i18n.Bundle) *Error {
	e.bundle = localBundle
	return e
}

// WithMessage sets the message of the error and returns the updated Error instance.
func (e *Error) WithMessage(msg string) *Error {
	e.message = msg
	return e
}

// WithDescription sets the description of the error and returns the updated Error instance.
func (e *Error) WithDescription(description string) *Error {
	e.description = description
	return e
}

// WithField adds a field to the error and returns the updated Error instance.
func (e *Error) WithField(key string, value any) *Error {
	if e.fields == nil {
		e.fields = map[string]any{}
	}
	e.fields[key] = value
	return e
}

// WithFields adds multiple fields to the error and returns the updated Error instance.
func (e *Error) WithFields(fields map[string]any) *Error {
	for k, v := range fields {
		_ = e.WithField(k, v)
	}
	return e
}

// WithCause adds a cause to the error and returns the updated Error instance.
func (e *Error) WithCause(err error) *Error {
	if err != nil {
		e.causes = append(e.causes, err)
	}
	return e
}

// WithComponent sets the component of the error and returns the updated Error instance.
func (e *Error) WithComponent(component types.ComponentErrorType) *Error {
	e.component = component
	return e
}

// WithResponseType sets the response type of the error and returns the updated Error instance.
func (e *Error) WithResponseType(responseType types.ResponseErrorType) *Error {
	e.responseType = responseType
	return e
}

// WithStatusCode sets an explicit status, used for errors mirrored from a remote body.
func (e *Error) WithStatusCode(code int) *Error {
	e.statusCode = code
	return e
}

// Error returns the error code, the rendered message and the causes as a string
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.errCode.String())
	if message, _ := e.Translate(); message != "" {
		sb.WriteString(": ")
		sb.WriteString(message)
	}
	if len(e.causes) > 0 {
		sb.WriteString(" (causes: ")
		sb.WriteString(helpers.FetchErrorStack(e.causes))
		sb.WriteString(")")
	}
	return sb.String()
}

// Unwrap exposes the causes to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	return e.causes
}

// findSource captures the source of the error at the point of instantiation.
func findSource() string {
	_, file, line, _ := runtime.Caller(2)
	return fmt.Sprintf("%s:%d", strings.TrimPrefix(file, helpers.GetGoROOT()+"/src/"), line)
}

// Wrap applies the options to the error, keeping the fields and causes it already has.
func (e *Error) Wrap(opts ...BlameOption) Blame {
	options := NewBlameOptions()
	maps.Copy(options.Fields, e.fields)
	options.Causes = append(options.Causes, e.causes...)

	for _, opt := range opts {
		opt(options)
	}

	e.fields = options.Fields
	e.causes = options.Causes
	return e
}

// ErrorFromBlame creates a new error from the causes of a Blame instance.
func (e *Error) ErrorFromBlame() error {
	return errors.New(helpers.FetchErrorStack(e.FetchCauses()))
}

// Translate translates the message and description and return the localized Message and Description
func (e *Error) Translate() (string, string) {
	message := e.message
	description := e.description
	for key, value := range e.fields {
		formatedValue := fmt.Sprintf("%v", value)
		message = strings.ReplaceAll(message, "{{."+key+"}}", formatedValue)
		description = strings.ReplaceAll(description, "{{."+key+"}}", formatedValue)
	}

	if message == "" {
		return message, description
	}

	bundle := e.bundle
	if bundle == nil {
		bundle = helpers.NewBundle(e.language)
	}
	lang := e.language
	if helpers.IsEmpty(lang) {
		lang = helpers.GetDefaultLanguageTag()
	}

	localizer := i18n.NewLocalizer(bundle, lang.String())
	localizedMessage, err := localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID:          e.errCode.String(),
			Other:       message,
			Description: description,
		},
		TemplateData: e.fields,
	})
	if err != nil {
		helpers.Println(constant.ERROR, "Error localizing message: ", err)
		return message, description
	}

	if description == "" {
		return localizedMessage, description
	}

	localizedDescription, err := localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: &i18n.Message{
			ID:    e.errCode.String() + ".description",
			Other: description,
		},
		TemplateData: e.fields,
	})
	if err != nil {
		helpers.Println(constant.ERROR, "Error localizing description: ", err)
		return localizedMessage, description
	}
	return localizedMessage, localizedDescription
}
