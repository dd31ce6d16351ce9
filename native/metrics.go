package native

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type opMetrics struct {
	total    prometheus.Counter
	fails    prometheus.Counter
	duration prometheus.Histogram
}

func newOpMetrics(prefix string) opMetrics {
	return opMetrics{
		total: promauto.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_total",
			Help: "Total amount of requests",
		}),
		fails: promauto.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_fails",
			Help: "Amount of failed requests",
		}),
		duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    prefix + "_duration",
			Help:    "Request duration, seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m opMetrics) observe(start time.Time, failed bool) {
	m.total.Inc()
	if failed {
		m.fails.Inc()
	}
	m.duration.Observe(time.Since(start).Seconds())
}

var (
	objPutMetrics    = newOpMetrics("frostfs_obj_put")
	objGetMetrics    = newOpMetrics("frostfs_obj_get")
	objDeleteMetrics = newOpMetrics("frostfs_obj_delete")
	cnrPutMetrics    = newOpMetrics("frostfs_cnr_put")
)
