package prometheus

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCollectorIsNoop(t *testing.T) {
	var mc *MetricsCollector
	assert.NotPanics(t, func() {
		mc.ObserveMessage(Outbound, "svc.y", OutcomeOK)
		mc.ObserveHandler("svc.y", OutcomeOK, time.Millisecond)
		mc.ObserveRequest("svc.y", OutcomeOK, time.Millisecond)
		mc.ObserveAuthFailure("reply")
		mc.SetPending(3)
	})
}

func TestCollectorsUseOwnRegistry(t *testing.T) {
	// two collectors must not collide on a shared default registry
	a := NewMetricsCollector(WithServiceName("a"))
	b := NewMetricsCollector(WithServiceName("b"))

	a.ObserveMessage(Outbound, "svc.y", OutcomeOK)
	a.ObserveMessage(Outbound, "svc.y", OutcomeOK)
	b.ObserveAuthFailure("request")
	a.SetPending(2)

	aText := scrape(t, a)
	assert.Contains(t, aText, `synapse_messages_total{direction="outbound",outcome="ok",service="a",subject="svc.y"} 2`)
	assert.Contains(t, aText, `synapse_requests_pending{service="a"} 2`)
	assert.NotContains(t, aText, "auth_failures_total{")

	assert.Contains(t, scrape(t, b), `synapse_auth_failures_total{path="request",service="b"} 1`)
}

func scrape(t *testing.T, mc *MetricsCollector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	mc.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestHandlerExposesMetrics(t *testing.T) {
	mc := NewMetricsCollector(WithServiceName("echo"), WithNamespace("rpc"))
	mc.ObserveHandler("svc.ping", OutcomeForbidden, 5*time.Millisecond)
	mc.GetCounter("cache-hits", "cache hits").Inc()

	body := scrape(t, mc)
	assert.Contains(t, body, `rpc_messages_total{direction="inbound",outcome="forbidden",service="echo",subject="svc.ping"} 1`)
	assert.Contains(t, body, "rpc_handler_duration_seconds_bucket")
	assert.Contains(t, body, "rpc_cache_hits 1")
}
