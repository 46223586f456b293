package constant

import "github.com/abhissng/synapse/utils/types"

// These are ComponentErrorType constant
const (
	ErrAdaptors    types.ComponentErrorType = "adaptors"
	ErrMiddlewares types.ComponentErrorType = "middlewares"
	ErrLibrary     types.ComponentErrorType = "library"
	ErrUtils       types.ComponentErrorType = "utils"
	ErrEngine      types.ComponentErrorType = "engine"
	ErrAuth        types.ComponentErrorType = "auth"
	ErrCorrelation types.ComponentErrorType = "correlation"
	ErrACL         types.ComponentErrorType = "acl"
)

// These are generic request error constant
const (
	BadRequest     types.ResponseErrorType = "BadRequest"
	Forbidden      types.ResponseErrorType = "Forbidden"
	NotFound       types.ResponseErrorType = "NotFound"
	AlreadyExists  types.ResponseErrorType = "AlreadyExists"
	InternalServer types.ResponseErrorType = "InternalServerError"
	Unauthorized   types.ResponseErrorType = "Unauthorized"
	RequestTimeout types.ResponseErrorType = "RequestTimeout"
	ClientClosed   types.ResponseErrorType = "ClientClosedRequest"
	Unavailable    types.ResponseErrorType = "ServiceUnavailable"
	BadGateway     types.ResponseErrorType = "BadGateway"
)
