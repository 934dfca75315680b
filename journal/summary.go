// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package journal

import (
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates a session's pacing.
type Summary struct {
	Frames    int
	Presented int
	Dropped   map[Outcome]int

	// GPU wait over presented frames.
	WaitMean   time.Duration
	WaitStdDev time.Duration
	WaitP50    time.Duration
	WaitP95    time.Duration
	WaitP99    time.Duration

	PopulateMean time.Duration
	IntervalMean time.Duration
}

// DropRate returns the fraction of ticks that presented nothing.
func (s Summary) DropRate() float64 {
	if s.Frames == 0 {
		return 0
	}
	return float64(s.Frames-s.Presented) / float64(s.Frames)
}

// Summarize computes the pacing statistics of records.
func Summarize(records []FrameRecord) Summary {
	s := Summary{Frames: len(records), Dropped: make(map[Outcome]int)}

	var waits, populates, intervals []float64
	for _, r := range records {
		if r.Interval > 0 {
			intervals = append(intervals, r.Interval)
		}
		if r.Outcome != OutcomePresented {
			s.Dropped[r.Outcome]++
			continue
		}
		s.Presented++
		waits = append(waits, float64(r.Wait))
		populates = append(populates, float64(r.Populate))
	}

	if len(waits) > 0 {
		mean, std := stat.MeanStdDev(waits, nil)
		s.WaitMean = time.Duration(mean)
		if len(waits) > 1 {
			s.WaitStdDev = time.Duration(std)
		}
		slices.Sort(waits)
		s.WaitP50 = time.Duration(stat.Quantile(0.50, stat.Empirical, waits, nil))
		s.WaitP95 = time.Duration(stat.Quantile(0.95, stat.Empirical, waits, nil))
		s.WaitP99 = time.Duration(stat.Quantile(0.99, stat.Empirical, waits, nil))
		s.PopulateMean = time.Duration(stat.Mean(populates, nil))
	}
	if len(intervals) > 0 {
		s.IntervalMean = time.Duration(stat.Mean(intervals, nil) * float64(time.Second))
	}
	return s
}
