package blame

import (
	_ "embed"
	"sync"
	"time"

	"github.com/abhissng/synapse/utils/constant"
	"github.com/abhissng/synapse/utils/helpers"
	"github.com/abhissng/synapse/utils/types"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

//go:embed error_definition.json
var embeddedBlameData []byte

var (
	localBlameManager     *BlameManager
	localBlameManagerOnce sync.Once
)

// getLocalBlameManager returns the manager built from the embedded definitions.
func getLocalBlameManager() *BlameManager {
	localBlameManagerOnce.Do(func() {
		if err := initLocalBlameManager(helpers.NewBundle(helpers.GetDefaultLanguageTag())); err != nil {
			localBlameManager = &BlameManager{BlameDefinitions: map[types.ErrorCode]*Error{}}
		}
	})
	return localBlameManager
}

// initLocalBlameManager initializes the local blame manager with the given bundle.
func initLocalBlameManager(bundle *i18n.Bundle) error {
	manager, err := buildBlameManager(embeddedBlameData, bundle, ReasonCodeNameSpace)
	if err != nil {
		helpers.Println(constant.ERROR, "Error initialising local blame definitions: ", err)
		return err
	}
	localBlameManager = manager
	return nil
}

/*
** These are internal errors function which uses
** local manager to determine the error
 */

// InternalServerError is an internal server error.
func InternalServerError(cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorInternalServerError, WithCauses(cause))
}

// MarshalError is returned when a payload cannot be encoded.
func MarshalError(codec types.CodecType, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorMarshalFailed,
		WithField("codec", codec.String()), WithCauses(cause))
}

// UnmarshalError is returned when bytes cannot be decoded.
func UnmarshalError(codec types.CodecType, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorUnmarshalFailed,
		WithField("codec", codec.String()), WithCauses(cause))
}

// UnknownCodecError is returned when no codec is registered under the name.
func UnknownCodecError(codec types.CodecType) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorUnknownCodec, WithField("codec", codec.String()))
}

// Event Errors

// PublishMessageError is returned when the transport rejects an outbound message.
func PublishMessageError(subject string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorPublishMessageFailed,
		WithField("subject", subject), WithCauses(cause))
}

// AlreadySubscribedError is returned on a second subscription for the same subject and queue.
func AlreadySubscribedError(subject string) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorAlreadySubscribedToSubject, WithField("subject", subject))
}

// SubscribeToSubjectError is returned when the transport refuses a subscription.
func SubscribeToSubjectError(subject string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorSubscribeToSubjectFailed,
		WithField("subject", subject), WithCauses(cause))
}

// SubjectHandlerError wraps a handler failure.
func SubjectHandlerError(subject string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorSubjectHandlerFailed,
		WithField("subject", subject), WithCauses(cause))
}

// UnsubscribeError is returned when a subscription cannot be torn down.
func UnsubscribeError(subject string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorUnsubscribeFailed,
		WithField("subject", subject), WithCauses(cause))
}

// TransportClosedError is returned by a closed transport.
func TransportClosedError() Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorTransportClosed)
}

// Access control errors

// ForbiddenSubjectError is returned for a subject outside the access list.
func ForbiddenSubjectError(subject string) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorForbiddenSubject, WithField("subject", subject))
}

// AccessListNotInitialisedError is returned by Extend before RestrictTo.
func AccessListNotInitialisedError() Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorAccessListNotInitialised)
}

// Authentication errors

// CreateTokenError is returned when signing fails.
func CreateTokenError(cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorCreateTokenFailed, WithCauses(cause))
}

// SigningKeyMissingError is returned when no private key can be found or provisioned.
func SigningKeyMissingError(service string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorSigningKeyMissing,
		WithField("service", service), WithCauses(cause))
}

// SigningKeyMalformedError is returned when the private key cannot be parsed.
func SigningKeyMalformedError(service string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorSigningKeyMalformed,
		WithField("service", service), WithCauses(cause))
}

// MissingAuthCredential is returned when a token is required but absent.
func MissingAuthCredential() Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorMissingAuthCredential)
}

// TokenSubjectMissingError is returned when the unverified token carries no sub claim.
func TokenSubjectMissingError(cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorTokenSubjectMissing, WithCauses(cause))
}

// VerificationKeyMissingError is returned when the claimed signer has no public key.
func VerificationKeyMissingError(signer string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorVerificationKeyMissing,
		WithField("signer", signer), WithCauses(cause))
}

// InvalidServiceTokenError hides which verification step failed.
func InvalidServiceTokenError() Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorInvalidServiceToken)
}

// Correlation errors

// RequestTimeoutError is returned when no reply arrives before the deadline.
func RequestTimeoutError(subject string, timeout time.Duration) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorRequestTimeout,
		WithField("subject", subject), WithField("timeout", timeout.String()))
}

// RequestCancelledError is returned for requests abandoned by the caller or by shutdown.
func RequestCancelledError(subject string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorRequestCancelled,
		WithField("subject", subject), WithCauses(cause))
}

// RemoteError mirrors an error body received from a remote handler.
func RemoteError(message string, code int) Blame {
	b := getLocalBlameManager().RetrieveBlameCache(ErrorRemoteFailure)
	if message != "" {
		_ = b.WithMessage(message)
	}
	if code > 0 {
		_ = b.WithStatusCode(code)
	}
	return b
}

// DuplicateMessageIDError is returned when a message id is already pending.
func DuplicateMessageIDError(messageID string) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorDuplicateMessageID, WithField("message_id", messageID))
}

// EndpointClosedError is returned by operations on a closed endpoint.
func EndpointClosedError(service string) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorEndpointClosed, WithField("service", service))
}

// Adapter and configuration errors

// SecretStoreError wraps a secret store failure for path.
func SecretStoreError(path string, cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorSecretStoreFailure,
		WithField("path", path), WithCauses(cause))
}

// ConfigLoadError wraps a failure to read or decode configuration.
func ConfigLoadError(cause error) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorConfigLoadFailure, WithCauses(cause))
}

// ConfigValidationError carries the failing fields.
func ConfigValidationError(fields map[string]string) Blame {
	opts := make(map[string]any, len(fields))
	for k, v := range fields {
		opts[k] = v
	}
	return getLocalBlameManager().FetchBlameForError(ErrorConfigValidationFailed, WithFields(opts))
}

// UnsupportedProviderError is returned for unknown transport or secret store providers.
func UnsupportedProviderError(provider types.Provider) Blame {
	return getLocalBlameManager().FetchBlameForError(ErrorUnsupportedProvider, WithField("provider", provider.String()))
}
