package s3

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
			Help: "Total amount of s3 requests",
		}),
		fails: promauto.NewCounter(prometheus.CounterOpts{
			Name: prefix + "_fails",
			Help: "Amount of failed s3 requests",
		}),
		duration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    prefix + "_duration",
			Help:    "S3 request duration, seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (m opMetrics) observe(start time.Time, err error) {
	m.total.Inc()
	if err != nil {
		m.fails.Inc()
	}
	m.duration.Observe(time.Since(start).Seconds())
}

var (
	objPutMetrics       = newOpMetrics("aws_obj_put")
	objGetMetrics       = newOpMetrics("aws_obj_get")
	objDeleteMetrics    = newOpMetrics("aws_obj_delete")
	bucketCreateMetrics = newOpMetrics("aws_bucket_create")
)
