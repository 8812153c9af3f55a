package dynquery

import (
	"time"
)

type Timings struct {
	Count         int
	Latest        time.Duration
	MovingAverage time.Duration
	Min, Max      time.Duration
}

func (t Timings) Add(d time.Duration) Timings {
	t.Latest = d

	if t.Count == 0 {
		t.Min = d
		t.Max = d
		t.MovingAverage = d
	} else {
		t.Min = min(t.Min, d)
		t.Max = max(t.Max, d)
		t.MovingAverage = (95*t.MovingAverage + 5*d) / 100
	}

	t.Count += 1

	return t
}

// CycleStats describes the cycles a query ran.
type CycleStats struct {
	// time from BeginCycle to EndCycle
	Cycles Timings

	// size of the driver of the latest cycle
	DriverCount int

	// candidates tested and entities yielded by Next in the latest cycle
	Visited int
	Matched int
}
