/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package frostload

import (
	"context"
	"net"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testConfig(stages ...Stage) *RunnerConfig {
	return &RunnerConfig{
		Name:     "test_runner",
		Stages:   stages,
		LogLevel: "error",
	}
}

func TestCommonRunnerSetupOnce(t *testing.T) {
	st := &mockState{sleep: 10 * time.Millisecond}
	r, err := NewRunner(testConfig(Stage{Duration: 2 * time.Second, Target: 5}), newMockScenario(st))
	require.NoError(t, err)
	_, err = r.Run(context.TODO())
	require.NoError(t, err)

	require.EqualValues(t, 1, atomic.LoadInt64(&st.setups))
	require.EqualValues(t, 1, atomic.LoadInt64(&st.teardowns))
	require.Zero(t, atomic.LoadInt64(&st.unprepared))
	require.Greater(t, r.Iterations(), int64(0))
	require.Zero(t, r.FailedIterations())
	require.Equal(t, 5, r.MaxVUs())
	require.Zero(t, r.ActiveVUs())
	require.EqualValues(t, r.Iterations(), r.Total.Iterations)
	require.Equal(t, 10*r.Iterations(), r.Total.BytesOut)
}

func TestCommonRunnerSetupFailed(t *testing.T) {
	st := &mockState{setupErr: errors.New("no container")}
	r, err := NewRunner(testConfig(Stage{Duration: time.Second, Target: 3}), newMockScenario(st))
	require.NoError(t, err)
	_, err = r.Run(context.TODO())
	require.ErrorIs(t, err, ErrSetupFailed)
	require.Contains(t, err.Error(), "no container")
	require.Zero(t, atomic.LoadInt64(&st.iterations))
	require.Zero(t, atomic.LoadInt64(&st.teardowns))
	require.Zero(t, r.Iterations())
}

func TestCommonRunnerFailuresDontAbort(t *testing.T) {
	st := &mockState{fail: true, sleep: 20 * time.Millisecond}
	r, err := NewRunner(testConfig(Stage{Duration: 2 * time.Second, Target: 2}), newMockScenario(st))
	require.NoError(t, err)
	start := time.Now()
	_, err = r.Run(context.TODO())
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), 2*time.Second)
	require.Greater(t, r.Iterations(), int64(10))
	require.Equal(t, r.Iterations(), r.FailedIterations())
	require.Equal(t, map[string]int{"service error": int(r.Iterations())}, r.UniqErrors())
}

func TestCommonRunnerIterationTimeout(t *testing.T) {
	st := &mockState{hang: true}
	cfg := testConfig(Stage{Duration: 2 * time.Second, Target: 1})
	cfg.IterationTimeout = 300 * time.Millisecond
	r, err := NewRunner(cfg, newMockScenario(st))
	require.NoError(t, err)
	_, err = r.Run(context.TODO())
	require.NoError(t, err)
	require.Greater(t, r.Iterations(), int64(0))
	require.Equal(t, r.Iterations(), r.FailedIterations())
	require.Contains(t, r.UniqErrors(), errIterationTimedOut)
}

func TestCommonRunnerRunEndNotCounted(t *testing.T) {
	for i := 0; i < 3; i++ {
		st := &mockState{deadlineAware: true, sleep: time.Millisecond}
		r, err := NewRunner(testConfig(Stage{Duration: time.Second, Target: 10}), newMockScenario(st))
		require.NoError(t, err)
		_, err = r.Run(context.TODO())
		require.NoError(t, err)
		require.Greater(t, r.Iterations(), int64(0))
		require.Zero(t, r.FailedIterations(), r.UniqErrors())
	}
}

func TestCommonRunnerSlowIterationNoOverlap(t *testing.T) {
	st := &mockState{ignoreCtx: true, sleep: 700 * time.Millisecond}
	cfg := testConfig(Stage{Duration: 2 * time.Second, Target: 1})
	cfg.IterationTimeout = 100 * time.Millisecond
	r, err := NewRunner(cfg, newMockScenario(st))
	require.NoError(t, err)
	_, err = r.Run(context.TODO())
	require.NoError(t, err)

	require.Equal(t, 1, r.MaxVUs())
	require.EqualValues(t, 1, atomic.LoadInt64(&st.maxInflight))
	require.Zero(t, atomic.LoadInt64(&st.inflightAtTeardown))
	require.Zero(t, atomic.LoadInt64(&st.inflight))
	// iterations which outlived the timeout are failed, not overlapped
	require.Greater(t, r.Iterations(), int64(0))
	require.Equal(t, r.Iterations(), r.FailedIterations())
	require.Equal(t, map[string]int{errIterationTimedOut: int(r.Iterations())}, r.UniqErrors())
}

func TestCommonRunnerExporterReleasesPort(t *testing.T) {
	for i := 0; i < 2; i++ {
		cfg := testConfig(Stage{Duration: 300 * time.Millisecond, Target: 1})
		cfg.Prometheus = &Prometheus{Enable: true, Port: 29112}
		r, err := NewRunner(cfg, newMockScenario(&mockState{sleep: 10 * time.Millisecond}))
		require.NoError(t, err)
		_, err = r.Run(context.TODO())
		require.NoError(t, err)
		l, err := net.Listen("tcp", ":29112")
		require.NoError(t, err)
		require.NoError(t, l.Close())
	}
}

func TestCommonRunnerRateLimit(t *testing.T) {
	st := &mockState{}
	cfg := testConfig(Stage{Duration: 2 * time.Second, Target: 5})
	cfg.RPS = 10
	r, err := NewRunner(cfg, newMockScenario(st))
	require.NoError(t, err)
	_, err = r.Run(context.TODO())
	require.NoError(t, err)
	require.Greater(t, r.Iterations(), int64(5))
	require.LessOrEqual(t, r.Iterations(), int64(25))
}

func TestCommonRunnerStagesRampDown(t *testing.T) {
	st := &mockState{sleep: 10 * time.Millisecond}
	cfg := testConfig(
		Stage{Duration: time.Second, Target: 4},
		Stage{Duration: time.Second, Target: 1},
		Stage{Duration: time.Second, Target: 0},
	)
	r, err := NewRunner(cfg, newMockScenario(st))
	require.NoError(t, err)

	var overTarget int64
	done := make(chan struct{})
	go func() {
		defer close(done)
		for r.Iterations() == 0 {
			time.Sleep(10 * time.Millisecond)
		}
		for i := 0; i < 20; i++ {
			time.Sleep(100 * time.Millisecond)
			elapsed := time.Since(r.startedAt)
			active := r.ActiveVUs()
			// controller may lag one ramp interval behind a stage boundary
			allowed := StageTarget(cfg.StartVUs, cfg.Stages, elapsed)
			if lagged := StageTarget(cfg.StartVUs, cfg.Stages, elapsed-2*cfg.RampInterval); lagged > allowed {
				allowed = lagged
			}
			if active > allowed {
				atomic.AddInt64(&overTarget, 1)
			}
		}
	}()
	_, err = r.Run(context.TODO())
	require.NoError(t, err)
	<-done
	require.Zero(t, atomic.LoadInt64(&overTarget))
	require.Equal(t, 4, r.MaxVUs())
	require.Zero(t, r.ActiveVUs())
}

func TestCommonRunnerCancel(t *testing.T) {
	st := &mockState{sleep: 10 * time.Millisecond}
	r, err := NewRunner(testConfig(Stage{Duration: time.Minute, Target: 3}), newMockScenario(st))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	start := time.Now()
	_, err = r.Run(ctx)
	require.NoError(t, err)
	require.Less(t, time.Since(start), 10*time.Second)
	require.EqualValues(t, 1, atomic.LoadInt64(&st.teardowns))
}

func TestCommonRunnerInvalidConfig(t *testing.T) {
	_, err := NewRunner(&RunnerConfig{Name: "bad", RPS: -1}, newMockScenario(&mockState{}))
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.Contains(t, err.Error(), "stage")
	require.Contains(t, err.Error(), "rps")
}

func TestCommonRunnerReport(t *testing.T) {
	cfg := testConfig(Stage{Duration: 2 * time.Second, Target: 2})
	cfg.ReportOptions = &ReportOptions{CSV: true, HTML: true, Dir: t.TempDir()}
	r, err := NewRunner(cfg, newMockScenario(&mockState{sleep: 50 * time.Millisecond}))
	require.NoError(t, err)
	_, err = r.Run(context.TODO())
	require.NoError(t, err)

	files := r.Report.Files()
	require.Len(t, files, 3)
	for _, f := range files {
		info, err := os.Stat(f)
		require.NoError(t, err, f)
		require.NotZero(t, info.Size(), f)
	}
}

func TestCommonRunnerNoLeak(t *testing.T) {
	defer goleak.VerifyNone(t,
		goleak.IgnoreTopFunction("os/signal.signal_recv"),
		goleak.IgnoreAnyFunction("os/signal.loop"),
	)
	for i := 0; i < 2; i++ {
		r, err := NewRunner(testConfig(Stage{Duration: time.Second, Target: 3}), newMockScenario(&mockState{hang: true}))
		require.NoError(t, err)
		r.Cfg.IterationTimeout = 5 * time.Second
		_, err = r.Run(context.TODO())
		require.NoError(t, err)
		// iterations cut by the end of run are dropped
		require.Zero(t, r.Iterations())
	}
}
