package evaluate

import (
	"fmt"
	"time"

	"github.com/leftmike/cubist/metrics"
)

// Timing records how long named functions take; MarkStart and MarkEnd calls for the same
// name nest.
type Timing struct {
	starts map[string][]time.Time
	totals map[string]time.Duration
}

func NewTiming() *Timing {
	return &Timing{
		starts: map[string][]time.Time{},
		totals: map[string]time.Duration{},
	}
}

func (tm *Timing) MarkStart(name string) {
	tm.starts[name] = append(tm.starts[name], time.Now())
}

func (tm *Timing) MarkEnd(name string) {
	starts := tm.starts[name]
	if len(starts) == 0 {
		panic(fmt.Sprintf("evaluate: timing: MarkEnd(%s) without MarkStart", name))
	}
	d := time.Since(starts[len(starts)-1])
	tm.starts[name] = starts[:len(starts)-1]
	tm.totals[name] += d
	metrics.FunctionDuration.WithLabelValues(name).Observe(d.Seconds())
}

// Total is the time spent in name, counting nested calls once each.
func (tm *Timing) Total(name string) time.Duration {
	return tm.totals[name]
}
