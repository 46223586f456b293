package constant

// constants for common messages or events
const (
	// System related messages
	SystemReady = "SystemReady"

	// Event related messages
	EventPublishedFailed       = "EventPublishedFailed"
	EventReceived              = "EventReceived"
	SubjectSubscribed          = "SubjectSubscribed"
	SubjectUnsubscribed        = "SubjectUnsubscribed"
	SubjectWithQueueSubscribed = "SubjectWithQueueSubscribed"
	SubjectSubscribeFailed     = "SubjectSubscribeFailed"
	MessageProcessed           = "MessageProcessed"
	MessageAlreadyProcessed    = "MessageAlreadyProcessed"
	ConnectionClosed           = "ConnectionClosed"
	ConnectionClosing          = "ConnectionClosing"
	StartServiceSuccessful     = "StartServiceSuccessful"
	StartServiceFailed         = "StartServiceFailed"

	// Handler related messages
	HandlerFailed = "HandlerFailed"
)
