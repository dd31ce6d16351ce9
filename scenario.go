package frostload

import (
	"context"
	"time"
)

// Scenario must be implemented by a workload.
type Scenario interface {
	// Setup runs once on the prototype before any virtual user starts.
	// Returned data is passed to every Do and Teardown call and must be treated as read-only.
	// An error aborts the run before the first iteration.
	Setup(ctx context.Context, c RunnerConfig) (interface{}, error)
	// Do performs one iteration and is executed in a virtual user goroutine.
	// The context is used to cancel the iteration on timeout.
	Do(ctx context.Context, data interface{}) DoResult
	// Teardown runs once after all virtual users have stopped.
	Teardown(ctx context.Context, data interface{}) error
	// Clone should return a fresh Scenario for a virtual user.
	Clone(r *Runner) Scenario
}

// vu is a handle of one running virtual user
type vu struct {
	num  int
	stop chan struct{}
}

// runVU repeatedly calls Do until stopped or the run ends, every result goes to the collector
func runVU(s Scenario, r *Runner, v *vu) {
	defer r.vuWG.Done()
	l := r.L.With("vu", v.num)
	l.Debugf("starting virtual user")
	for {
		select {
		case <-r.TimeoutCtx.Done():
			l.Debugf("stopping virtual user, run ended")
			return
		case <-v.stop:
			l.Debugf("stopping virtual user, ramp down")
			return
		default:
		}
		if r.rl != nil {
			r.rl.Take()
		}
		if r.runEnded(time.Now()) {
			l.Debugf("stopping virtual user, run ended")
			return
		}
		res, ok := iterate(s, r, v)
		if !ok {
			return
		}
		r.results <- res
	}
}

// iterate runs one Do call under iteration timeout, false means the iteration was cut by the end of run.
// Do is called synchronously, a virtual user never has more than one iteration in flight.
func iterate(s Scenario, r *Runner, v *vu) (IterationResult, bool) {
	ctx, cancel := context.WithTimeout(r.TimeoutCtx, r.Cfg.IterationTimeout)
	defer cancel()

	tStart := time.Now()
	doResult := s.Do(ctx, r.setupData)
	tEnd := time.Now()
	if r.runEnded(tEnd) {
		return IterationResult{}, false
	}
	elapsed := tEnd.Sub(tStart)
	if elapsed >= r.Cfg.IterationTimeout || (ctx.Err() != nil && doResult.Error != "") {
		doResult.Error = errIterationTimedOut
		if doResult.RequestLabel == "" {
			doResult.RequestLabel = r.Name
		}
	}
	return IterationResult{
		VU:        v.num,
		Tick:      r.tickAt(tEnd),
		Stage:     r.stageAt(tEnd),
		ActiveVUs: r.ActiveVUs(),
		Begin:     tStart,
		End:       tEnd,
		Elapsed:   elapsed,
		DoResult:  doResult,
	}, true
}
