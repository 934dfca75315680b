// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package host drives the render loop once per display refresh and shows
// the presented drawables.
package host

import (
	"context"
	"fmt"
	"time"
)

// Tick is one display refresh. Times are seconds on the host clock.
type Tick struct {
	// Now is when the refresh callback fired.
	Now float64
	// Target is when the frame being prepared is displayed.
	Target float64
	// Interval is Target - Now, the current refresh interval.
	Interval float64
}

// NewTick returns the tick for a callback at now displaying at target.
func NewTick(now, target float64) Tick {
	return Tick{Now: now, Target: target, Interval: target - now}
}

// FrameFunc handles one tick. A returned error stops the driver.
type FrameFunc func(ctx context.Context, tick Tick) error

// Driver calls a FrameFunc once per refresh until ctx is done.
type Driver interface {
	Run(ctx context.Context, fn FrameFunc) error
}

// DefaultRate is the refresh rate of the headless driver, Hz.
const DefaultRate = 90.0

// Headless ticks at a fixed rate without a display.
//
// With Realtime unset the clock is virtual and ticks run back to back,
// which keeps tests and benchmarks independent of the wall clock.
type Headless struct {
	Rate     float64
	Frames   int // 0 runs until ctx is done
	Realtime bool
}

// Run implements Driver. It returns nil when Frames ticks ran or ctx is
// done.
func (h Headless) Run(ctx context.Context, fn FrameFunc) error {
	rate := h.Rate
	if rate <= 0 {
		rate = DefaultRate
	}
	interval := 1 / rate

	var (
		ticker *time.Ticker
		start  = time.Now()
	)
	if h.Realtime {
		ticker = time.NewTicker(time.Duration(interval * float64(time.Second)))
		defer ticker.Stop()
	}

	for i := 0; h.Frames == 0 || i < h.Frames; i++ {
		now := float64(i) * interval
		if h.Realtime {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
			now = time.Since(start).Seconds()
		} else if ctx.Err() != nil {
			return nil
		}
		if err := fn(ctx, NewTick(now, now+interval)); err != nil {
			return fmt.Errorf("host: tick %d: %w", i, err)
		}
	}
	return nil
}
