/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package frostload

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	promTickSuccessRatio = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "frostload_tick_success_ratio",
		Help: "Success iterations ratio",
	})
	promTickP50 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "frostload_tick_p50",
		Help: "Iteration time 50 Percentile",
	})
	promTickP95 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "frostload_tick_p95",
		Help: "Iteration time 95 Percentile",
	})
	promTickP99 = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "frostload_tick_p99",
		Help: "Iteration time 99 Percentile",
	})
	promTickMax = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "frostload_tick_max",
		Help: "Iteration time MAX",
	})
	promRPS = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "frostload_tick_rps",
		Help: "Iterations per second rate",
	})
	promVUs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "frostload_vus",
		Help: "Active virtual users",
	})
	promIterations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "frostload_iterations_total",
		Help: "Completed iterations",
	}, []string{"label", "result"})
)

type PromReporter struct{}

func (m *PromReporter) reportTick(tm *TickMetrics) {
	promTickP50.Set(float64(tm.Metrics.Latency.P50.Milliseconds()))
	promTickP95.Set(float64(tm.Metrics.Latency.P95.Milliseconds()))
	promTickP99.Set(float64(tm.Metrics.Latency.P99.Milliseconds()))
	promTickMax.Set(float64(tm.Metrics.Latency.Max.Milliseconds()))
	promTickSuccessRatio.Set(tm.Metrics.Success)
	promRPS.Set(tm.Metrics.Rate)
}

func (m *PromReporter) reportVUs(active int) {
	promVUs.Set(float64(active))
}

func (m *PromReporter) reportIteration(res IterationResult) {
	result := "ok"
	if res.DoResult.Error != "" {
		result = "fail"
	}
	promIterations.WithLabelValues(res.DoResult.RequestLabel, result).Inc()
}
