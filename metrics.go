/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package frostload

import (
	"time"

	"github.com/streadway/quantile"
)

// Metrics is a summary of iterations, per tick or for a whole run
type Metrics struct {
	Iterations uint64 `json:"iterations"`
	Failed     uint64 `json:"failed"`
	// Rate iterations per second between the first and the last iteration start
	Rate float64 `json:"rate"`
	// Success ratio of iterations without error and with non-failing status
	Success     float64        `json:"success"`
	Latency     Latency        `json:"latency"`
	BytesIn     int64          `json:"bytes_in"`
	BytesOut    int64          `json:"bytes_out"`
	StatusCodes map[int]uint64 `json:"status_codes"`
	// Errors unique iteration errors in order of appearance
	Errors []string `json:"errors"`

	firstBegin time.Time
	lastBegin  time.Time
	succeeded  uint64
	seenErrors map[string]struct{}
	estimator  *quantile.Estimator
}

// Latency of iterations, percentiles are estimated
type Latency struct {
	Mean time.Duration `json:"mean"`
	P50  time.Duration `json:"p50"`
	P95  time.Duration `json:"p95"`
	P99  time.Duration `json:"p99"`
	Max  time.Duration `json:"max"`

	sum time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{
		StatusCodes: make(map[int]uint64),
		seenErrors:  make(map[string]struct{}),
		estimator: quantile.New(
			quantile.Known(0.50, 0.01),
			quantile.Known(0.95, 0.001),
			quantile.Known(0.99, 0.0005),
		),
	}
}

// successPercent for logs
func (m *Metrics) successPercent() float64 {
	return m.Success * 100
}

// observe accounts one iteration, summary fields are stale until summarize
func (m *Metrics) observe(r IterationResult) {
	m.Iterations++
	m.BytesIn += r.DoResult.BytesIn
	m.BytesOut += r.DoResult.BytesOut

	m.Latency.sum += r.Elapsed
	if r.Elapsed > m.Latency.Max {
		m.Latency.Max = r.Elapsed
	}
	m.estimator.Add(float64(r.Elapsed))

	switch {
	case m.firstBegin.IsZero() || r.Begin.Before(m.firstBegin):
		m.firstBegin = r.Begin
	case r.Begin.After(m.lastBegin):
		m.lastBegin = r.Begin
	}
	if m.lastBegin.Before(m.firstBegin) {
		m.lastBegin = m.firstBegin
	}

	code := r.DoResult.StatusCode
	if code > 0 {
		m.StatusCodes[code]++
	}
	if e := r.DoResult.Error; e != "" {
		m.Failed++
		if _, ok := m.seenErrors[e]; !ok {
			m.seenErrors[e] = struct{}{}
			m.Errors = append(m.Errors, e)
		}
		return
	}
	// status code is optional, 4xx and 5xx are failures even without error
	if code == 0 || code < 400 {
		m.succeeded++
	}
}

// summarize computes rate, success ratio and latency percentiles
func (m *Metrics) summarize() {
	if m.Iterations == 0 {
		return
	}
	n := float64(m.Iterations)
	if span := m.lastBegin.Sub(m.firstBegin).Seconds(); span > 0 {
		m.Rate = n / span
	}
	m.Success = float64(m.succeeded) / n
	m.Latency.Mean = time.Duration(float64(m.Latency.sum) / n)
	m.Latency.P50 = time.Duration(m.estimator.Get(0.50))
	m.Latency.P95 = time.Duration(m.estimator.Get(0.95))
	m.Latency.P99 = time.Duration(m.estimator.Get(0.99))
}
