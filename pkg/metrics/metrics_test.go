package metrics

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveHTTP(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveHTTP("GET", "/books/:id", 200, 10*time.Millisecond)
	m.ObserveHTTP("GET", "/books/:id", 200, 20*time.Millisecond)
	m.ObserveHTTP("GET", "/books/:id", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/books/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/books/:id", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPRequestDuration))
}

func TestObserveLoan(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLoan("checkout", nil, time.Millisecond)
	m.ObserveLoan("checkout", errors.New("no stock"), time.Millisecond)
	m.ObserveLoan("return", nil, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoanOperationsTotal.WithLabelValues("checkout", ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoanOperationsTotal.WithLabelValues("checkout", ResultFailure)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoanOperationsTotal.WithLabelValues("return", ResultSuccess)))
}

func TestCacheAndBreaker(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveCache("catalog", CacheHit)
	m.ObserveCache("catalog", CacheMiss)
	m.ObserveCache("catalog", CacheMiss)
	m.SetBreakerState("redis", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheRequestsTotal.WithLabelValues("catalog", CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("redis")))
}

func TestMessages(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObservePublish("loan.checked_out", nil)
	m.ObserveConsume("loan.checked_out")

	expected := `
# HELP library_messages_consumed_total 消费的事件数
# TYPE library_messages_consumed_total counter
library_messages_consumed_total{routing_key="loan.checked_out"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "library_messages_consumed_total"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MessagesPublishedTotal.WithLabelValues("loan.checked_out", ResultSuccess)))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
		m.ObserveLoan("checkout", nil, time.Millisecond)
		m.ObserveCache("catalog", CacheHit)
		m.SetBreakerState("redis", 0)
		m.ObservePublish("x", nil)
		m.ObserveConsume("x")
	})
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	New(reg)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
