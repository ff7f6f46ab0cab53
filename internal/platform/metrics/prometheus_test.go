package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	registry := prometheus.NewRegistry()
	rec := NewPrometheusRecorder("ledger")
	require.NoError(t, rec.Register(registry))

	rec.RecordTransaction("income", "completed")
	rec.RecordTransaction("income", "completed")
	rec.RecordOperation("create_transaction", false, 3*time.Millisecond)
	rec.RecordConflictRetry("create_transaction")
	rec.RecordCacheLookup(true)
	rec.RecordCircuitState("report-cache", CircuitOpen)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.transactions.WithLabelValues("income", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.operations.WithLabelValues("create_transaction", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.conflictRetries.WithLabelValues("create_transaction")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, float64(CircuitOpen), testutil.ToFloat64(rec.circuitState.WithLabelValues("report-cache")))

	// registering twice is rejected by the registry
	assert.Error(t, rec.Register(registry))
}

func TestCircuitStateString(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(9).String())
}
