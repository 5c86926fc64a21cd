package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounter(t *testing.T) {
	mc := NewMetricsCollector()

	mc.Inc(MetricQueryTotal, nil)
	mc.Inc(MetricQueryTotal, nil)
	mc.Add(MetricQueryTotal, 3, nil)

	metric := mc.Get(MetricQueryTotal, nil)
	require.NotNil(t, metric)
	assert.Equal(t, float64(5), metric.Value)
	assert.Equal(t, MetricTypeCounter, metric.Type)
}

func TestGauge(t *testing.T) {
	mc := NewMetricsCollector()

	mc.Set(MetricQueryDurationMS, 120, nil)
	mc.Set(MetricQueryDurationMS, 80, nil)

	metric := mc.Get(MetricQueryDurationMS, nil)
	require.NotNil(t, metric)
	assert.Equal(t, float64(80), metric.Value)
	assert.Equal(t, MetricTypeGauge, metric.Type)
}

func TestLabelsSeparateSeries(t *testing.T) {
	mc := NewMetricsCollector()

	mc.Inc(MetricQueryFailures, map[string]string{"error_type": "safety"})
	mc.Inc(MetricQueryFailures, map[string]string{"error_type": "safety"})
	mc.Inc(MetricQueryFailures, map[string]string{"error_type": "execution"})

	safety := mc.Get(MetricQueryFailures, map[string]string{"error_type": "safety"})
	execution := mc.Get(MetricQueryFailures, map[string]string{"error_type": "execution"})

	require.NotNil(t, safety)
	require.NotNil(t, execution)
	assert.Equal(t, float64(2), safety.Value)
	assert.Equal(t, float64(1), execution.Value)
}

func TestGetAll(t *testing.T) {
	mc := NewMetricsCollector()

	mc.Inc(MetricQueryTotal, nil)
	mc.Set(MetricQueryDurationMS, 42, nil)

	all := mc.GetAll()
	assert.Len(t, all, 2)
}

func TestGetMissingMetric(t *testing.T) {
	mc := NewMetricsCollector()
	assert.Nil(t, mc.Get("does_not_exist", nil))
}

func TestRecordQueryMetrics(t *testing.T) {
	before := GetGlobalMetrics().Get(MetricQueryTotal, nil)
	var baseline float64
	if before != nil {
		baseline = before.Value
	}

	RecordQueryMetrics(100*time.Millisecond, false, "safety")

	after := GetGlobalMetrics().Get(MetricQueryTotal, nil)
	require.NotNil(t, after)
	assert.Equal(t, baseline+1, after.Value)

	failures := GetGlobalMetrics().Get(MetricQueryFailures, map[string]string{"error_type": "safety"})
	require.NotNil(t, failures)
	assert.GreaterOrEqual(t, failures.Value, float64(1))
}
