// Package metrics Prometheus指标
//
// 指标统一以 library_ 为前缀，注册到调用方传入的Registerer，
// 便于测试时使用独立的Registry。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "library"

// 借阅操作结果标签
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// 缓存查询结果标签
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics 应用指标集合
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	LoanOperationsTotal   *prometheus.CounterVec
	LoanOperationDuration *prometheus.HistogramVec

	CacheRequestsTotal  *prometheus.CounterVec
	CircuitBreakerState *prometheus.GaugeVec

	MessagesPublishedTotal *prometheus.CounterVec
	MessagesConsumedTotal  *prometheus.CounterVec
}

// New 创建并注册指标
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP请求总数",
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP请求耗时",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		HTTPRequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "处理中的HTTP请求数",
		}),

		LoanOperationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loan_operations_total",
			Help:      "借出/归还/删除操作总数",
		}, []string{"operation", "result"}),

		LoanOperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "loan_operation_duration_seconds",
			Help:      "借阅事务耗时(含锁等待)",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),

		CacheRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "缓存查询次数",
		}, []string{"cache", "result"}),

		CircuitBreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "熔断器状态(0=closed 1=open 2=half-open)",
		}, []string{"name"}),

		MessagesPublishedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_published_total",
			Help:      "发布的事件数",
		}, []string{"routing_key", "result"}),

		MessagesConsumedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_consumed_total",
			Help:      "消费的事件数",
		}, []string{"routing_key"}),
	}
}

// NewRegistry 带Go运行时和进程指标的Registry
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ObserveHTTP 记录一次HTTP请求
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveLoan 记录一次借阅操作
func (m *Metrics) ObserveLoan(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.LoanOperationsTotal.WithLabelValues(operation, result).Inc()
	m.LoanOperationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveCache 记录一次缓存查询
func (m *Metrics) ObserveCache(cache, result string) {
	if m == nil {
		return
	}
	m.CacheRequestsTotal.WithLabelValues(cache, result).Inc()
}

// SetBreakerState 更新熔断器状态
func (m *Metrics) SetBreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// ObservePublish 记录一次事件发布
func (m *Metrics) ObservePublish(routingKey string, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	m.MessagesPublishedTotal.WithLabelValues(routingKey, result).Inc()
}

// ObserveConsume 记录一次事件消费
func (m *Metrics) ObserveConsume(routingKey string) {
	if m == nil {
		return
	}
	m.MessagesConsumedTotal.WithLabelValues(routingKey).Inc()
}
