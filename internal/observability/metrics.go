package observability

import (
	"sync"
	"time"
)

// MetricType represents the type of metric
type MetricType string

const (
	MetricTypeCounter MetricType = "counter"
	MetricTypeGauge   MetricType = "gauge"
)

// Well-known metric names for the query pipeline
const (
	MetricQueryTotal          = "query_pipeline_total"
	MetricQueryFailures       = "query_pipeline_failures"
	MetricQueryDurationMS     = "query_pipeline_duration_ms"
	MetricSafetyRejections    = "query_safety_rejections"
	MetricSummarizerFallbacks = "query_summarizer_fallbacks"
	MetricHTTPRequests        = "http_requests_total"
	MetricHTTPDurationMS      = "http_request_duration_ms"
)

// Metric represents a single metric
type Metric struct {
	Name      string            `json:"name"`
	Type      MetricType        `json:"type"`
	Value     float64           `json:"value"`
	Labels    map[string]string `json:"labels,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// MetricsCollector collects and stores application metrics
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics map[string]*Metric
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[string]*Metric),
	}
}

// metricKey generates a unique key for a metric
func metricKey(name string, labels map[string]string) string {
	key := name
	for k, v := range labels {
		key += "." + k + "=" + v
	}
	return key
}

// Inc increments a counter metric
func (mc *MetricsCollector) Inc(name string, labels map[string]string) {
	mc.Add(name, 1, labels)
}

// Add adds a value to a counter metric
func (mc *MetricsCollector) Add(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := metricKey(name, labels)
	if metric, exists := mc.metrics[key]; exists {
		metric.Value += value
		metric.Timestamp = time.Now()
	} else {
		mc.metrics[key] = &Metric{
			Name:      name,
			Type:      MetricTypeCounter,
			Value:     value,
			Labels:    labels,
			Timestamp: time.Now(),
		}
	}
}

// Set sets a gauge metric value
func (mc *MetricsCollector) Set(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := metricKey(name, labels)
	mc.metrics[key] = &Metric{
		Name:      name,
		Type:      MetricTypeGauge,
		Value:     value,
		Labels:    labels,
		Timestamp: time.Now(),
	}
}

// Get returns a single metric by name and labels, or nil
func (mc *MetricsCollector) Get(name string, labels map[string]string) *Metric {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if metric, exists := mc.metrics[metricKey(name, labels)]; exists {
		copied := *metric
		return &copied
	}
	return nil
}

// GetAll returns a snapshot of all collected metrics
func (mc *MetricsCollector) GetAll() []Metric {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	all := make([]Metric, 0, len(mc.metrics))
	for _, metric := range mc.metrics {
		all = append(all, *metric)
	}
	return all
}

// Global metrics collector instance
var (
	globalMetrics     *MetricsCollector
	globalMetricsOnce sync.Once
)

// GetGlobalMetrics returns the process-wide metrics collector
func GetGlobalMetrics() *MetricsCollector {
	globalMetricsOnce.Do(func() {
		globalMetrics = NewMetricsCollector()
	})
	return globalMetrics
}

// RecordQueryMetrics records the outcome of one pipeline invocation
func RecordQueryMetrics(duration time.Duration, success bool, errorType string) {
	mc := GetGlobalMetrics()

	mc.Inc(MetricQueryTotal, nil)
	mc.Set(MetricQueryDurationMS, float64(duration.Milliseconds()), nil)

	if !success {
		mc.Inc(MetricQueryFailures, map[string]string{"error_type": errorType})
	}
}

// RecordHTTPMetrics records metrics for an HTTP request
func RecordHTTPMetrics(method, path string, status int, duration time.Duration) {
	mc := GetGlobalMetrics()

	labels := map[string]string{
		"method": method,
		"path":   path,
	}
	mc.Inc(MetricHTTPRequests, labels)
	mc.Set(MetricHTTPDurationMS, float64(duration.Milliseconds()), labels)
}
