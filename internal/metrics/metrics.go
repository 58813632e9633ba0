// Package metrics 服务与 digitctl 使用的 Prometheus 指标
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "daily_digits"

// ImportJob 导入计数推送到 Pushgateway 时使用的 job 名
const ImportJob = "digitctl_import"

// Manager 指标管理器，持有独立的 registry
type Manager struct {
	registry *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	predictions         *prometheus.CounterVec
	resultsSaved        prometheus.Counter
	importRows          *prometheus.CounterVec
}

// NewManager 创建指标管理器
func NewManager() *Manager {
	m := &Manager{registry: prometheus.NewRegistry()}

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"path", "method", "status"})

	m.httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path", "method"})

	m.predictions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predictions_generated_total",
		Help:      "Predictions generated, by algorithm.",
	}, []string{"algorithm"})

	m.resultsSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "results_saved_total",
		Help:      "Daily results written through the API.",
	})

	m.importRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_rows_total",
		Help:      "Spreadsheet rows processed, by outcome.",
	}, []string{"outcome"})

	m.registry.MustRegister(
		m.httpRequests,
		m.httpRequestDuration,
		m.predictions,
		m.resultsSaved,
		m.importRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry 底层 registry
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler /metrics 处理器
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest 记录一次 HTTP 请求
func (m *Manager) RecordHTTPRequest(path, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, status).Inc()
	m.httpRequestDuration.WithLabelValues(path, method).Observe(d.Seconds())
}

// RecordPrediction 记录一次预测
func (m *Manager) RecordPrediction(algorithm string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(algorithm).Inc()
}

// RecordResultSaved 记录一次结果写入
func (m *Manager) RecordResultSaved() {
	if m == nil {
		return
	}
	m.resultsSaved.Inc()
}

// RecordImportRow 记录一行导入结果，outcome 为 imported、skipped 或 error
func (m *Manager) RecordImportRow(outcome string) {
	if m == nil {
		return
	}
	m.importRows.WithLabelValues(outcome).Inc()
}

// PushImportMetrics 将导入计数推送到 Pushgateway，供短生命周期的 digitctl 上报
func (m *Manager) PushImportMetrics(ctx context.Context, url string) error {
	return push.New(url, ImportJob).Collector(m.importRows).PushContext(ctx)
}
