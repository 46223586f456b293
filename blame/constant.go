package blame

import (
	"github.com/abhissng/synapse/utils/types"
)

const (
	ReasonCodeNameSpace = "SYN"
	ReasonCodeBase      = 100000
)

// Error Identifiers for internal library
const (
	ErrorInternalServerError        types.ErrorCode = "error-internal-server-error"
	ErrorMarshalFailed              types.ErrorCode = "error-marshal-failed"
	ErrorUnmarshalFailed            types.ErrorCode = "error-unmarshal-failed"
	ErrorUnknownCodec               types.ErrorCode = "error-unknown-codec"
	ErrorPublishMessageFailed       types.ErrorCode = "error-publish-message-failed"
	ErrorAlreadySubscribedToSubject types.ErrorCode = "error-already-subscribed-to-subject"
	ErrorSubscribeToSubjectFailed   types.ErrorCode = "error-subscribe-to-subject-failed"
	ErrorSubjectHandlerFailed       types.ErrorCode = "error-subject-handler-failed"
	ErrorUnsubscribeFailed          types.ErrorCode = "error-unsubscribe-failed"
	ErrorTransportClosed            types.ErrorCode = "error-transport-closed"
	ErrorForbiddenSubject           types.ErrorCode = "error-forbidden-subject"
	ErrorAccessListNotInitialised   types.ErrorCode = "error-access-list-not-initialised"
	ErrorCreateTokenFailed          types.ErrorCode = "error-create-token-failed"
	ErrorSigningKeyMissing          types.ErrorCode = "error-signing-key-missing"          // #nosec G101
	ErrorSigningKeyMalformed        types.ErrorCode = "error-signing-key-malformed"        // #nosec G101
	ErrorMissingAuthCredential      types.ErrorCode = "error-missing-auth-credential"      // #nosec G101
	ErrorTokenSubjectMissing        types.ErrorCode = "error-token-subject-missing"        // #nosec G101
	ErrorVerificationKeyMissing     types.ErrorCode = "error-verification-key-missing"     // #nosec G101
	ErrorInvalidServiceToken        types.ErrorCode = "error-invalid-service-token"        // #nosec G101
	ErrorRequestTimeout             types.ErrorCode = "error-request-timeout"
	ErrorRequestCancelled           types.ErrorCode = "error-request-cancelled"
	ErrorRemoteFailure              types.ErrorCode = "error-remote-failure"
	ErrorDuplicateMessageID         types.ErrorCode = "error-duplicate-message-id"
	ErrorEndpointClosed             types.ErrorCode = "error-endpoint-closed"
	ErrorSecretStoreFailure         types.ErrorCode = "error-secret-store-failure" // #nosec G101
	ErrorConfigLoadFailure          types.ErrorCode = "error-config-load-failure"
	ErrorConfigValidationFailed     types.ErrorCode = "error-config-validation-failed"
	ErrorUnsupportedProvider        types.ErrorCode = "error-unsupported-provider"
)
