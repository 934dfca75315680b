// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package compositor writes the mip test pattern into drawables and hands
// them to the host for display.
//
// Each frame walks Idle -> Acquire -> Populate -> Submit -> Wait -> Present
// -> Idle. A frame that cannot acquire a drawable goes straight back to
// Idle. A frame that fails after acquisition returns its drawable to the
// queue before Render returns.
package compositor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/internal/image"
	"github.com/gogpu/vrrbench/internal/logging"
	"github.com/gogpu/vrrbench/mip"
	"github.com/gogpu/vrrbench/placement"
)

// State is the compositor's position in the frame cycle.
type State int32

const (
	StateIdle State = iota
	StateAcquire
	StatePopulate
	StateSubmit
	StateWait
	StatePresent
)

var stateNames = [...]string{"idle", "acquire", "populate", "submit", "wait", "present"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Presenter displays a written drawable with the frame's placement. On
// success the presenter owns the drawable and must Release it once the
// display no longer reads it. On error the compositor releases it.
type Presenter interface {
	Present(d *Drawable, p placement.Result) error
}

// Stats are cumulative frame counters.
type Stats struct {
	Frames        uint64
	Presented     uint64
	NoDrawable    uint64
	CommandBuffer uint64
	PresentErrors uint64
	LastPopulate  time.Duration
	LastWait      time.Duration
}

// Frame describes a presented frame.
type Frame struct {
	Drawable int
	Levels   int
	Populate time.Duration
	Wait     time.Duration
}

// Compositor runs the per-frame cycle. Render is called from one goroutine;
// State and Stats may be read from any.
type Compositor struct {
	cfg       config.RenderConfig
	dev       Device
	queue     *DrawableQueue
	assets    *mip.Assets
	presenter Presenter

	state stateCell

	frames, presented, noDrawable, cmdErrs, presentErrs atomic.Uint64
	lastPopulate, lastWait                              atomic.Int64
}

type stateCell struct{ v atomic.Int32 }

func (s *stateCell) Load() State    { return State(s.v.Load()) }
func (s *stateCell) Store(st State) { s.v.Store(int32(st)) }

// New returns a compositor copying from assets into drawables of queue.
func New(cfg config.RenderConfig, dev Device, queue *DrawableQueue, assets *mip.Assets, presenter Presenter) *Compositor {
	return &Compositor{
		cfg:       cfg,
		dev:       dev,
		queue:     queue,
		assets:    assets,
		presenter: presenter,
	}
}

// State returns the current frame state.
func (c *Compositor) State() State { return c.state.Load() }

// Stats returns a snapshot of the counters.
func (c *Compositor) Stats() Stats {
	return Stats{
		Frames:        c.frames.Load(),
		Presented:     c.presented.Load(),
		NoDrawable:    c.noDrawable.Load(),
		CommandBuffer: c.cmdErrs.Load(),
		PresentErrors: c.presentErrs.Load(),
		LastPopulate:  time.Duration(c.lastPopulate.Load()),
		LastWait:      time.Duration(c.lastWait.Load()),
	}
}

// Queue returns the drawable queue.
func (c *Compositor) Queue() *DrawableQueue { return c.queue }

// Source returns the buffer copied into level of a drawable: the solid
// color for the level or the test image's own mip.
//
// Levels below ColorMipLevelStart show the test image unless OnlyColors is
// set; levels from the start on show colors unless ColorMipLevels is off.
func (c *Compositor) Source(level int) *image.ImageBuf {
	useColor := c.cfg.OnlyColors
	if level >= c.cfg.ColorMipLevelStart {
		useColor = c.cfg.ColorMipLevels
	}
	if useColor {
		return c.assets.ColorLevel(level)
	}
	return c.assets.BaseLevel(level)
}

// Render runs one frame and presents it with res.
//
// Errors wrap ErrNoDrawable or ErrCommandBuffer for dropped frames, or are
// the presenter's error. None of them leave a drawable held.
func (c *Compositor) Render(ctx context.Context, res placement.Result) (Frame, error) {
	c.frames.Add(1)
	defer c.state.Store(StateIdle)

	c.state.Store(StateAcquire)
	d, err := c.queue.Next(ctx, c.cfg.DrawableTimeout)
	if err != nil {
		c.noDrawable.Add(1)
		logging.Logger().Debug("compositor: frame dropped", "err", err)
		return Frame{}, err
	}

	frame, err := c.write(ctx, d)
	if err != nil {
		c.cmdErrs.Add(1)
		d.Release()
		logging.Logger().Debug("compositor: frame dropped", "drawable", d.ID(), "err", err)
		return Frame{}, err
	}

	c.state.Store(StatePresent)
	if err := c.presenter.Present(d, res); err != nil {
		c.presentErrs.Add(1)
		d.Release()
		return Frame{}, fmt.Errorf("compositor: present: %w", err)
	}
	c.presented.Add(1)
	return frame, nil
}

// write populates every level of d and blocks until the copies complete.
func (c *Compositor) write(ctx context.Context, d *Drawable) (Frame, error) {
	c.state.Store(StatePopulate)
	start := time.Now()

	cb, err := c.dev.CreateCommandBuffer(fmt.Sprintf("frame-%d", d.ID()))
	if err != nil {
		return Frame{}, fmt.Errorf("%w: create: %w", ErrCommandBuffer, err)
	}

	levels := d.Texture().LevelCount()
	for level := range levels {
		if err := cb.CopyLevel(d.Texture(), level, c.Source(level)); err != nil {
			cb.Discard()
			return Frame{}, fmt.Errorf("%w: %w", ErrCommandBuffer, err)
		}
	}
	populate := time.Since(start)

	c.state.Store(StateSubmit)
	waitStart := time.Now()
	c.state.Store(StateWait)
	if err := cb.SubmitAndWait(ctx); err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrCommandBuffer, err)
	}
	wait := time.Since(waitStart)

	c.lastPopulate.Store(int64(populate))
	c.lastWait.Store(int64(wait))
	return Frame{Drawable: d.ID(), Levels: levels, Populate: populate, Wait: wait}, nil
}
