/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package frostload

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/ratelimit"
)

const (
	DefaultResultsQueueCapacity = 100_000
	MetricsLogFile              = "requests_%s_%s_%d.csv"
	PercsLogFile                = "percs_%s_%s_%d.csv"
	ReportGraphFile             = "percs_%s_%s_%d.html"

	exporterShutdownTimeout = 5 * time.Second
)

var (
	ResultsCsvHeader = []string{"RequestLabel", "VU", "BeginTimeNano", "EndTimeNano", "Elapsed", "StatusCode", "Error"}
	PercsCsvHeader   = []string{"RequestLabel", "Tick", "VUs", "RPS", "P50", "P95", "P99"}
)

type TickMetrics struct {
	Samples  []IterationResult
	Metrics  *Metrics
	Reported bool
}

// Runner provides test context for running scenario iterations in virtual users ramped by a schedule
type Runner struct {
	// Name of a runner
	Name string
	// Cfg runner config
	Cfg *RunnerConfig
	// prototype from which all virtual users scenarios are cloned
	scenarioPrototype Scenario
	// data returned by scenario setup, shared read-only between iterations
	setupData interface{}
	// ratelimiter for iterations across all virtual users, nil when unlimited
	rl ratelimit.Limiter
	// TimeoutCtx test timeout ctx
	TimeoutCtx context.Context
	// test cancel func
	CancelFunc context.CancelFunc
	// run start time, schedule is computed from it
	startedAt time.Time

	// active virtual users, guarded by vusMu, changed only by the ramp controller
	vusMu     sync.Mutex
	vus       []*vu
	nextVUNum int
	activeVUs int64
	maxVUs    int64
	vuWG      sync.WaitGroup

	// Results chan of all iterations
	results chan IterationResult
	// metrics for every received tick (completed iterations)
	receivedTickMetricsMu *sync.Mutex
	receivedTickMetrics   map[int]*TickMetrics
	// Total metrics of a run
	Total *Metrics
	// uniq error messages
	uniqErrors map[string]int
	iterations int64
	failed     int64

	// Report data
	Report       *Report
	PromReporter *PromReporter
	L            *Logger
}

// NewRunner creates new runner for a scenario by RunnerConfig
func NewRunner(cfg *RunnerConfig, s Scenario) (*Runner, error) {
	cfg.DefaultCfgValues()
	if err := cfg.validationError(); err != nil {
		return nil, err
	}
	r := &Runner{
		Name:                  cfg.Name,
		Cfg:                   cfg,
		scenarioPrototype:     s,
		results:               make(chan IterationResult, DefaultResultsQueueCapacity),
		receivedTickMetricsMu: &sync.Mutex{},
		receivedTickMetrics:   make(map[int]*TickMetrics),
		Total:                 NewMetrics(),
		uniqErrors:            make(map[string]int),
		L:                     NewLogger(cfg).With("runner", cfg.Name),
	}
	if cfg.RPS > 0 {
		r.rl = ratelimit.New(cfg.RPS)
	}
	if cfg.ReportOptions.CSV {
		report, err := NewReport(cfg)
		if err != nil {
			return nil, err
		}
		r.Report = report
	}
	if cfg.Prometheus != nil && cfg.Prometheus.Enable {
		r.PromReporter = &PromReporter{}
	}
	return r, nil
}

// startExporter serves metrics and pprof until returned stop func is called
func (r *Runner) startExporter() func() {
	if r.PromReporter == nil {
		return func() {}
	}
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", r.Cfg.Prometheus.Port),
		Handler: exporterMux(),
	}
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			r.L.Errorf("prometheus exporter stopped: %v", err)
		}
	}()
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), exporterShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			r.L.Errorf("failed to stop prometheus exporter: %v", err)
		}
		<-stopped
	}
}

// Run runs setup once, then virtual users by schedule, then teardown, returns max iterations rate
func (r *Runner) Run(serverCtx context.Context) (float64, error) {
	if serverCtx == nil {
		serverCtx = context.Background()
	}
	if r.Cfg.WaitBefore > 0 {
		r.L.Infof("waiting for %s before start", r.Cfg.WaitBefore)
		time.Sleep(r.Cfg.WaitBefore)
	}
	defer r.startExporter()()
	if err := r.setup(serverCtx); err != nil {
		return 0, err
	}
	r.L.Infof("runner started, stages: %d, duration: %s, max vus: %d", len(r.Cfg.Stages), r.Cfg.TotalDuration(), r.Cfg.MaxTarget())
	r.startedAt = time.Now()
	r.TimeoutCtx, r.CancelFunc = context.WithTimeout(serverCtx, r.Cfg.TotalDuration())
	defer r.CancelFunc()

	collected := make(chan struct{})
	go r.collectResults(collected)
	r.handleShutdownSignal()
	r.schedule()

	// every virtual user is asked to stop by the run context, in-flight iterations finish first
	r.vuWG.Wait()
	close(r.results)
	<-collected
	atomic.StoreInt64(&r.activeVUs, 0)
	r.L.Infof("runner exited, iterations: %d, failed: %d", r.Iterations(), r.FailedIterations())

	// teardown still runs when the run was cancelled
	r.teardown(context.WithoutCancel(serverCtx))

	maxRPS := r.maxRPS()
	r.L.Infof("max rps: %.2f", maxRPS)
	if r.Report != nil {
		r.Report.flushLogs()
		r.Report.plot()
	}
	return maxRPS, nil
}

// setup calls scenario setup once, any error is fatal for the run
func (r *Runner) setup(ctx context.Context) error {
	setupCtx, cancel := context.WithTimeout(ctx, r.Cfg.SetupTimeout)
	defer cancel()
	data, err := r.scenarioPrototype.Setup(setupCtx, *r.Cfg)
	if err != nil {
		r.L.Errorf("setup failed: %v", err)
		return errors.Wrapf(ErrSetupFailed, "%v", err)
	}
	r.setupData = data
	return nil
}

func (r *Runner) teardown(ctx context.Context) {
	teardownCtx, cancel := context.WithTimeout(ctx, r.Cfg.TeardownTimeout)
	defer cancel()
	if err := r.scenarioPrototype.Teardown(teardownCtx, r.setupData); err != nil {
		r.L.Errorf("teardown failed: %v", err)
	}
}

// schedule adjusts active virtual users by schedule until run ends
func (r *Runner) schedule() {
	ticker := time.NewTicker(r.Cfg.RampInterval)
	defer ticker.Stop()
	currentStage := 0
	for {
		elapsed := time.Since(r.startedAt)
		if stage := StageIndex(r.Cfg.Stages, elapsed); stage != currentStage && stage != 0 {
			currentStage = stage
			r.L.Infof("next stage: stage -> %d, target vus -> %d", stage, r.Cfg.Stages[stage-1].Target)
		}
		r.scaleVUs(PlannedVUs(r.Cfg.StartVUs, r.Cfg.Stages, elapsed))
		select {
		case <-r.TimeoutCtx.Done():
			return
		case <-ticker.C:
		}
	}
}

// scaleVUs starts or stops virtual users to have target active ones
func (r *Runner) scaleVUs(target int) {
	r.vusMu.Lock()
	defer r.vusMu.Unlock()
	if r.TimeoutCtx.Err() != nil {
		return
	}
	changed := len(r.vus) != target
	for len(r.vus) > target {
		last := r.vus[len(r.vus)-1]
		close(last.stop)
		r.vus = r.vus[:len(r.vus)-1]
	}
	for len(r.vus) < target {
		r.nextVUNum++
		v := &vu{num: r.nextVUNum, stop: make(chan struct{})}
		r.vus = append(r.vus, v)
		r.vuWG.Add(1)
		go runVU(r.scenarioPrototype.Clone(r), r, v)
	}
	active := int64(len(r.vus))
	atomic.StoreInt64(&r.activeVUs, active)
	if active > atomic.LoadInt64(&r.maxVUs) {
		atomic.StoreInt64(&r.maxVUs, active)
	}
	if changed {
		r.L.Debugf("active vus: %d, goroutines: %d", active, runtime.NumGoroutine())
		if r.PromReporter != nil {
			r.PromReporter.reportVUs(int(active))
		}
	}
}

// collectResults collects iteration results and writes them to one of report options
func (r *Runner) collectResults(done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case res, ok := <-r.results:
			if !ok {
				r.reportTicks(0)
				r.Total.summarize()
				r.L.Infof("total iterations stored: %d", r.Iterations())
				r.printErrors()
				return
			}
			r.L.Debugf("received result: %v", res)
			atomic.AddInt64(&r.iterations, 1)

			errorForReport := "ok"
			if res.DoResult.Error != "" {
				atomic.AddInt64(&r.failed, 1)
				r.uniqErrors[res.DoResult.Error]++
				r.L.Debugf("iteration error: %s", res.DoResult.Error)
				errorForReport = res.DoResult.Error
			}
			if r.Report != nil {
				r.Report.writeResultEntry(res, errorForReport)
			}
			if r.PromReporter != nil {
				r.PromReporter.reportIteration(res)
			}
			r.Total.observe(res)
			r.addTickSample(res)
		case now := <-ticker.C:
			// results of previous ticks are complete
			r.reportTicks(r.tickAt(now))
		}
	}
}

// addTickSample add iteration result to tick metrics
func (r *Runner) addTickSample(res IterationResult) {
	r.receivedTickMetricsMu.Lock()
	defer r.receivedTickMetricsMu.Unlock()
	if _, ok := r.receivedTickMetrics[res.Tick]; !ok {
		r.receivedTickMetrics[res.Tick] = &TickMetrics{
			make([]IterationResult, 0),
			NewMetrics(),
			false,
		}
	}
	tm := r.receivedTickMetrics[res.Tick]
	tm.Samples = append(tm.Samples, res)
	tm.Metrics.observe(res)
}

// reportTicks reports every unreported tick before current one, 0 reports all
func (r *Runner) reportTicks(currentTick int) {
	r.receivedTickMetricsMu.Lock()
	defer r.receivedTickMetricsMu.Unlock()
	ticks := make([]int, 0, len(r.receivedTickMetrics))
	for tick, tm := range r.receivedTickMetrics {
		if tm.Reported || (currentTick != 0 && tick >= currentTick) {
			continue
		}
		ticks = append(ticks, tick)
	}
	sort.Ints(ticks)
	for _, tick := range ticks {
		tm := r.receivedTickMetrics[tick]
		tm.Metrics.summarize()
		last := tm.Samples[len(tm.Samples)-1]
		r.L.Infof(
			"stage: %d, tick: %d, vus: %d, rate [%.4f], perc: 50 [%v] 95 [%v] 99 [%v], # iterations [%d], %% success [%.2f]",
			last.Stage,
			tick,
			last.ActiveVUs,
			tm.Metrics.Rate,
			tm.Metrics.Latency.P50,
			tm.Metrics.Latency.P95,
			tm.Metrics.Latency.P99,
			tm.Metrics.Iterations,
			tm.Metrics.successPercent(),
		)
		if r.Report != nil {
			r.Report.writePercentilesEntry(tick, last, tm.Metrics)
		}
		if r.PromReporter != nil {
			r.PromReporter.reportTick(tm)
		}
		tm.Reported = true
	}
}

// printErrors print uniq errors
func (r *Runner) printErrors() {
	if len(r.uniqErrors) == 0 {
		return
	}
	r.L.Infof("Uniq errors:")
	for e, count := range r.uniqErrors {
		r.L.Infof("error: %s, count: %d", e, count)
	}
}

// maxRPS calculate max rps for test among ticks
func (r *Runner) maxRPS() float64 {
	r.receivedTickMetricsMu.Lock()
	defer r.receivedTickMetricsMu.Unlock()
	rates := make([]float64, 0)
	for _, m := range r.receivedTickMetrics {
		rates = append(rates, m.Metrics.Rate)
	}
	return MaxRPS(rates)
}

// runEnded reports whether t is past the end of run, cancelled runs are ended too
func (r *Runner) runEnded(t time.Time) bool {
	if r.TimeoutCtx.Err() != nil {
		return true
	}
	dl, ok := r.TimeoutCtx.Deadline()
	return ok && !t.Before(dl)
}

func (r *Runner) tickAt(t time.Time) int {
	return int(t.Sub(r.startedAt)/time.Second) + 1
}

func (r *Runner) stageAt(t time.Time) int {
	return StageIndex(r.Cfg.Stages, t.Sub(r.startedAt))
}

// ActiveVUs amount of virtual users which are not asked to stop
func (r *Runner) ActiveVUs() int {
	return int(atomic.LoadInt64(&r.activeVUs))
}

// MaxVUs the biggest amount of active virtual users during run
func (r *Runner) MaxVUs() int {
	return int(atomic.LoadInt64(&r.maxVUs))
}

// Iterations amount of completed iterations
func (r *Runner) Iterations() int64 {
	return atomic.LoadInt64(&r.iterations)
}

// FailedIterations amount of iterations with error
func (r *Runner) FailedIterations() int64 {
	return atomic.LoadInt64(&r.failed)
}

// UniqErrors returns copy of error messages with counts, valid after Run
func (r *Runner) UniqErrors() map[string]int {
	res := make(map[string]int, len(r.uniqErrors))
	for k, v := range r.uniqErrors {
		res[k] = v
	}
	return res
}
