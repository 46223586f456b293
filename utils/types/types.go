package types

import (
	"go.uber.org/zap"
)

// MessageID is the correlation id carried by every request and its reply.
type MessageID string

// String returns the string representation of the MessageID.
func (m MessageID) String() string {
	return string(m)
}

// ErrorCode represents an error code.
type ErrorCode string

// String returns the string representation of the ErrorCode.
func (e ErrorCode) String() string {
	return string(e)
}

// ResponseErrorType represents the type of response error.
type ResponseErrorType string

// String returns the string representation of the ResponseErrorType.
func (e ResponseErrorType) String() string {
	return string(e)
}

// ComponentErrorType represents the type of component error.
type ComponentErrorType string

// String returns the string representation of the ComponentErrorType.
func (e ComponentErrorType) String() string {
	return string(e)
}

// CodecType defines the type of encoder (e.g., JSON, MessagePack).
type CodecType string

// String returns the string representation of the CodecType.
func (e CodecType) String() string {
	return string(e)
}

// Subject is a routing key on the bus.
type Subject string

// String returns the string representation of the Subject.
func (s Subject) String() string {
	return string(s)
}

// SecretPath is a path inside a secret store.
type SecretPath string

// String returns the string representation of the SecretPath.
func (p SecretPath) String() string {
	return string(p)
}

// Field type to represent structured log fields
//
//nolint:gochecknoglobals
type Field = zap.Field

// Service represents a service.
type Service string

// String returns the string representation of the Service.
func (s Service) String() string {
	return string(s)
}

// LogMode represents the logging mode
type LogMode string

// String returns the string representation of the LogMode.
func (l LogMode) String() string {
	return string(l)
}

// Provider names a pluggable backend (transport or secret store).
type Provider string

// String returns the string representation of the Provider.
func (p Provider) String() string {
	return string(p)
}
