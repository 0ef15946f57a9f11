package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveReport(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveReport(ResultSuccess, 120*time.Millisecond)
	m.ObserveReport(ResultSuccess, 80*time.Millisecond)
	m.ObserveReport(ResultFailure, 10*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ReportsGenerated.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsGenerated.WithLabelValues(ResultFailure)))
}

func TestMetrics_AddImported(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.AddImported(3)
	m.AddImported(0)
	m.AddImported(-1)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.StudentsImported))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveReport(ResultSuccess, time.Second)
		m.AddImported(1)
	})
}
