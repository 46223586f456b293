package circuitBreaker

import "time"

const (
	DefaultCircuitBreakerName = "synapse-transport"
	DefaultBreakerTimeout     = 10 * time.Second
	DefaultBreakerInterval    = 30 * time.Second
	DefaultBreakerMaxRequests = 5
)
