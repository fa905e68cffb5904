package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(queueDepth, leasesReaped) }

var queueDepth = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "media_queue_depth",
		Help: "Jobs currently pending in the queue.",
	},
)

var leasesReaped = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "media_leases_reaped_total",
		Help: "Expired job leases returned to the queue.",
	},
)

func SetQueueDepth(n int64) { queueDepth.Set(float64(n)) }

func AddLeasesReaped(n int) { leasesReaped.Add(float64(n)) }
