package metrics

import "time"

// Recorder collects ledger metrics. Implementations can export to any
// backend; NoOpRecorder is used when metrics are disabled.
type Recorder interface {
	// Ledger writes
	RecordTransaction(txnType, status string)
	RecordOperation(operation string, success bool, duration time.Duration)
	RecordConflictRetry(operation string)

	// HTTP
	RecordHTTPRequest(method, route string, status int, duration time.Duration)

	// Report cache
	RecordCacheLookup(hit bool)
	RecordCircuitState(name string, state CircuitState)

	// Events
	RecordEventPublished(eventType string, success bool)
}

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	// CircuitClosed means the breaker lets requests through.
	CircuitClosed CircuitState = iota
	// CircuitOpen means the breaker rejects requests.
	CircuitOpen
	// CircuitHalfOpen means the breaker is probing for recovery.
	CircuitHalfOpen
)

// String returns the string representation of the circuit state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// NoOpRecorder is a no-op implementation of Recorder.
type NoOpRecorder struct{}

// RecordTransaction does nothing.
func (NoOpRecorder) RecordTransaction(txnType, status string) {}

// RecordOperation does nothing.
func (NoOpRecorder) RecordOperation(operation string, success bool, duration time.Duration) {}

// RecordConflictRetry does nothing.
func (NoOpRecorder) RecordConflictRetry(operation string) {}

// RecordHTTPRequest does nothing.
func (NoOpRecorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {}

// RecordCacheLookup does nothing.
func (NoOpRecorder) RecordCacheLookup(hit bool) {}

// RecordCircuitState does nothing.
func (NoOpRecorder) RecordCircuitState(name string, state CircuitState) {}

// RecordEventPublished does nothing.
func (NoOpRecorder) RecordEventPublished(eventType string, success bool) {}
