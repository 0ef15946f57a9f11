package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mesem"

// 报表生成结果标签
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics 应用级 Prometheus 指标
type Metrics struct {
	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	ReportsGenerated *prometheus.CounterVec
	ReportDuration   prometheus.Histogram
	StudentsImported prometheus.Counter
}

// New 在给定 Registerer 上注册全部指标
// 测试中传入 prometheus.NewRegistry()，避免重复注册到全局 Registry
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP 请求总数",
		}, []string{"method", "path", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP 请求耗时",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		ReportsGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "report_generated_total",
			Help:      "月度缺勤报表生成次数",
		}, []string{"result"}),
		ReportDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "月度缺勤报表生成耗时",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		StudentsImported: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "students_imported_total",
			Help:      "通过花名册导入成功写入的学生数",
		}),
	}
}

// ObserveReport 记录一次报表生成
func (m *Metrics) ObserveReport(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ReportsGenerated.WithLabelValues(result).Inc()
	m.ReportDuration.Observe(elapsed.Seconds())
}

// AddImported 累加导入成功的学生数
func (m *Metrics) AddImported(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.StudentsImported.Add(float64(n))
}
