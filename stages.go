package frostload

import (
	"time"
)

// PlannedVUs returns amount of virtual users which must be active after elapsed time of a run.
// Ramp up toward a higher target is linear and reaches the target inside the stage,
// ramp down steps to a lower target at the stage boundary, so the value never exceeds
// the current stage target.
func PlannedVUs(startVUs int, stages []Stage, elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	from := startVUs
	for _, s := range stages {
		if elapsed < s.Duration {
			if s.Target <= from {
				return s.Target
			}
			diff := int64(s.Target - from)
			// ceil(diff * elapsed / duration)
			step := (diff*int64(elapsed) + int64(s.Duration) - 1) / int64(s.Duration)
			return from + int(step)
		}
		elapsed -= s.Duration
		from = s.Target
	}
	return from
}

// StageIndex returns 1-based stage number for elapsed time, 0 when schedule is over
func StageIndex(stages []Stage, elapsed time.Duration) int {
	for i, s := range stages {
		if elapsed < s.Duration {
			return i + 1
		}
		elapsed -= s.Duration
	}
	return 0
}

// StageTarget returns target of the stage active after elapsed time, last target when schedule is over
func StageTarget(startVUs int, stages []Stage, elapsed time.Duration) int {
	idx := StageIndex(stages, elapsed)
	if idx == 0 {
		if len(stages) == 0 {
			return startVUs
		}
		return stages[len(stages)-1].Target
	}
	return stages[idx-1].Target
}
