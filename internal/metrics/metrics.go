package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Ingestion
	SensorReportsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intentguard_sensor_reports_received_total",
		Help: "Sensor reports accepted by the ingestion endpoint",
	})
	SensorWriteSuccess = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intentguard_sensor_write_success_total",
		Help: "Sensor data records persisted",
	})
	SensorWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intentguard_sensor_write_failures_total",
		Help: "Sensor data records lost after retry",
	})
	ChannelDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intentguard_channel_drops_total",
		Help: "Reports dropped because a pipeline channel was full",
	}, []string{"channel"}) // channel: db, state, alert

	// Classification
	Classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intentguard_classifications_total",
		Help: "Intent classifications by the path that produced them",
	}, []string{"source"}) // source: reasoning, heuristic
	ReasoningLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "intentguard_reasoning_duration_seconds",
		Help:    "Wall time of reasoning service calls including retry",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 12, 16},
	})

	// Alerts
	AlertsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intentguard_alerts_created_total",
		Help: "Alerts written to the store",
	}, []string{"intent", "severity"})
	AlertStatusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intentguard_alert_status_updates_total",
		Help: "Alert status changes applied",
	}, []string{"status"})
	AlertsDeduplicated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "intentguard_alerts_deduplicated_total",
		Help: "Pipeline alerts suppressed by the dedup window",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
