package health

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mineral-insights/mineralboard/internal/model"
)

// Metrics holds the process-level Prometheus instruments. Snapshot gauges are
// set once after load; run and request instruments tick per interaction.
type Metrics struct {
	registry *prometheus.Registry

	datasetRows  *prometheus.GaugeVec
	snapshotTime prometheus.Gauge

	pipelineRuns     prometheus.Counter
	pipelineDuration prometheus.Histogram

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics creates the instruments on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		datasetRows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "mineralboard_dataset_rows",
			Help: "Rows loaded per dataset table.",
		}, []string{"table"}),
		snapshotTime: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mineralboard_snapshot_loaded_timestamp_seconds",
			Help: "Unix time the snapshot finished loading.",
		}),
		pipelineRuns: factory.NewCounter(prometheus.CounterOpts{
			Name: "mineralboard_pipeline_runs_total",
			Help: "Pipeline executions.",
		}),
		pipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mineralboard_pipeline_run_seconds",
			Help:    "Pipeline execution time.",
			Buckets: prometheus.DefBuckets,
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mineralboard_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mineralboard_http_request_seconds",
			Help:    "HTTP request time by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveSnapshot records the loaded snapshot's table sizes and load time.
func (m *Metrics) ObserveSnapshot(snap *model.Snapshot) {
	m.datasetRows.WithLabelValues("series").Set(float64(len(snap.Series)))
	m.datasetRows.WithLabelValues("summary").Set(float64(len(snap.Summary)))
	m.datasetRows.WithLabelValues("tech").Set(float64(len(snap.Tech)))
	m.snapshotTime.Set(float64(snap.LoadedAt.Unix()))
}

// ObserveRun records one pipeline execution.
func (m *Metrics) ObserveRun(d time.Duration) {
	m.pipelineRuns.Inc()
	m.pipelineDuration.Observe(d.Seconds())
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
