/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package frostload

import (
	"context"
	"sync/atomic"
	"time"
)

const mockSetupData = "setup data"

// mockState is shared by a prototype and all its clones
type mockState struct {
	setups     int64
	teardowns  int64
	iterations int64
	// iterations which saw no setup before them
	unprepared int64
	// Do calls in flight now, the biggest amount and amount seen by teardown
	inflight           int64
	maxInflight        int64
	inflightAtTeardown int64

	setupErr error
	sleep    time.Duration
	fail     bool
	hang     bool
	// sleep is not interrupted by ctx
	ignoreCtx bool
	// fails when ctx deadline is reached, like a storage client computing its request timeout
	deadlineAware bool
}

type MockScenario struct {
	state *mockState
	r     *Runner
}

func newMockScenario(st *mockState) *MockScenario {
	return &MockScenario{state: st}
}

func (m *MockScenario) Setup(_ context.Context, _ RunnerConfig) (interface{}, error) {
	atomic.AddInt64(&m.state.setups, 1)
	if m.state.setupErr != nil {
		return nil, m.state.setupErr
	}
	return mockSetupData, nil
}

func (m *MockScenario) Do(ctx context.Context, data interface{}) DoResult {
	atomic.AddInt64(&m.state.iterations, 1)
	if atomic.LoadInt64(&m.state.setups) == 0 || data != mockSetupData {
		atomic.AddInt64(&m.state.unprepared, 1)
	}
	cur := atomic.AddInt64(&m.state.inflight, 1)
	defer atomic.AddInt64(&m.state.inflight, -1)
	for {
		max := atomic.LoadInt64(&m.state.maxInflight)
		if cur <= max || atomic.CompareAndSwapInt64(&m.state.maxInflight, max, cur) {
			break
		}
	}
	if m.state.deadlineAware {
		dl, ok := ctx.Deadline()
		if ok && time.Until(dl) < m.state.sleep {
			time.Sleep(time.Until(dl))
		} else {
			time.Sleep(m.state.sleep)
		}
		if ok && time.Until(dl) <= 0 {
			return DoResult{RequestLabel: m.r.Name, Error: "context deadline exceeded"}
		}
		return DoResult{RequestLabel: m.r.Name, BytesOut: 10, BytesIn: 10}
	}
	if m.state.ignoreCtx {
		time.Sleep(m.state.sleep)
		return DoResult{RequestLabel: m.r.Name, BytesOut: 10, BytesIn: 10}
	}
	if m.state.hang {
		<-ctx.Done()
		return DoResult{RequestLabel: m.r.Name, Error: "hanged"}
	}
	time.Sleep(m.state.sleep)
	if m.state.fail {
		return DoResult{RequestLabel: m.r.Name, Error: "service error"}
	}
	return DoResult{RequestLabel: m.r.Name, BytesOut: 10, BytesIn: 10}
}

func (m *MockScenario) Teardown(_ context.Context, _ interface{}) error {
	atomic.AddInt64(&m.state.teardowns, 1)
	atomic.StoreInt64(&m.state.inflightAtTeardown, atomic.LoadInt64(&m.state.inflight))
	return nil
}

func (m *MockScenario) Clone(r *Runner) Scenario {
	return &MockScenario{state: m.state, r: r}
}
