package nats

import "time"

const (
	BreakerName             = "NATSPublish"
	DefaultReconnectWait    = 5 * time.Second
	DefaultMaxReconnects    = -1 // Infinite reconnection attempts
	DefaultMonitorInterval  = 30 * time.Second
	ConnectionFailedMessage = "connection to NATS is not yet established or failed"
)
