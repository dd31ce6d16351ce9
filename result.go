/*
 * // Copyright 2020 Insolar Network Ltd.
 * // All rights reserved.
 * // This material is licensed under the Insolar License version 1.0,
 * // available at https://github.com/insolar/assured-ledger/blob/master/LICENSE.md.
 */

package frostload

import (
	"fmt"
	"time"
)

// IterationResult is a timed outcome of one scenario iteration
type IterationResult struct {
	// VU number which made the iteration
	VU int
	// Tick is a one second bucket of run time when iteration ended, starts from 1
	Tick int
	// Stage index when iteration ended, starts from 1
	Stage int
	// ActiveVUs when iteration ended
	ActiveVUs int
	Begin     time.Time
	End       time.Time
	Elapsed   time.Duration
	DoResult  DoResult
}

func (a IterationResult) String() string {
	return fmt.Sprintf(
		"Begin: %s, End: %s, Elapsed: %d, vu: %d, stage: %d, tick: %d, doResult: %v",
		a.Begin.Format(time.RFC3339),
		a.End.Format(time.RFC3339),
		a.Elapsed,
		a.VU,
		a.Stage,
		a.Tick,
		a.DoResult,
	)
}

// DoResult is the return value of a Do call on a Scenario.
type DoResult struct {
	// Label identifying the request that was send which is only used for reporting the Metrics.
	RequestLabel string
	// The error that happened during iteration, empty on success.
	Error string
	// The HTTP status code, optional.
	StatusCode int
	// Number of bytes received.
	BytesIn int64
	// Number of bytes sent.
	BytesOut int64
}
