package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(jobsProcessedTotal, jobStageDuration) }

var jobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "media_jobs_processed_total",
		Help: "Total number of media jobs processed, labeled by final status.",
	},
	[]string{"status"}, // 'delivered', 'degraded', 'failed'
)

var jobStageDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "media_job_stage_duration_seconds",
		Help:    "Duration of each worker stage per job.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	},
	[]string{"stage"}, // 'download', 'render', 'merge', 'deliver'
)

func IncJob(status string) {
	jobsProcessedTotal.WithLabelValues(status).Inc()
}

func ObserveStage(stage string, d time.Duration) {
	jobStageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
