package constant

// Wire headers attached to every message on the bus
const (
	MessageIDHeader    = "messageId"
	ServiceTokenHeader = "serviceToken"
	CodeHeader         = "code"
	SenderHeader       = "sender"
)

// Secret store layout used by the token authenticator
const (
	PrivateKeyPathPrefix = "secretkey/jwt-service/"
	PublicKeyPathPrefix  = "publickey/jwt-service/"
	PrivateKeyField      = "privateKey"
	PublicKeyField       = "publicKey"
)

// Status codes mirrored into reply bodies
const (
	StatusOK                 = 200
	StatusBadRequest         = 400
	StatusUnauthorized       = 401
	StatusForbidden          = 403
	StatusNotFound           = 404
	StatusRequestTimeout     = 408
	StatusConflict           = 409
	StatusClientClosed       = 499
	StatusInternalError      = 500
	StatusBadGateway         = 502
	StatusServiceUnavailable = 503
)
