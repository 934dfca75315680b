// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compositor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/internal/logging"
)

// Drawable is one texture of the queue. It is acquired by the compositor,
// written, presented, and released by the host once displayed.
type Drawable struct {
	id    int
	tex   Texture
	queue *DrawableQueue
	held  atomic.Bool
}

// ID returns the drawable's index in its queue.
func (d *Drawable) ID() int { return d.id }

// Texture returns the backing texture.
func (d *Drawable) Texture() Texture { return d.tex }

// Release returns the drawable to its queue. Releasing a drawable that is
// not held is a no-op.
func (d *Drawable) Release() {
	if !d.held.CompareAndSwap(true, false) {
		logging.Logger().Warn("compositor: drawable released twice", "id", d.id)
		return
	}
	d.queue.put(d)
}

// DrawableQueue is a fixed pool of drawables. At most Capacity are out at
// once; Next blocks until one is released.
type DrawableQueue struct {
	dev         Device
	all         []*Drawable
	free        chan *Drawable
	done        chan struct{}
	closeOnce   sync.Once
	outstanding atomic.Int32
}

// NewDrawableQueue creates cfg.MaxBuffersInFlight drawables of the render
// size with cfg.LevelCount levels. Errors wrap ErrDevice.
func NewDrawableQueue(dev Device, cfg config.RenderConfig) (*DrawableQueue, error) {
	n := cfg.MaxBuffersInFlight
	q := &DrawableQueue{
		dev:  dev,
		all:  make([]*Drawable, 0, n),
		free: make(chan *Drawable, n),
		done: make(chan struct{}),
	}
	for i := range n {
		tex, err := dev.CreateTexture(TextureDesc{
			Label:      fmt.Sprintf("drawable-%d", i),
			Width:      cfg.Width,
			Height:     cfg.Height,
			LevelCount: cfg.LevelCount(),
			Format:     cfg.PixelFormat,
		})
		if err != nil {
			q.destroy()
			return nil, fmt.Errorf("%w: drawable %d: %w", ErrDevice, i, err)
		}
		d := &Drawable{id: i, tex: tex, queue: q}
		q.all = append(q.all, d)
		q.free <- d
	}
	logging.Logger().Info("compositor: drawable queue ready",
		"count", n, "size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height), "levels", cfg.LevelCount())
	return q, nil
}

// Next returns a free drawable, waiting up to timeout. A zero timeout does
// not wait. Errors wrap ErrNoDrawable.
func (q *DrawableQueue) Next(ctx context.Context, timeout time.Duration) (*Drawable, error) {
	select {
	case d := <-q.free:
		return q.acquire(d), nil
	default:
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: all %d in flight", ErrNoDrawable, cap(q.free))
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case d := <-q.free:
		return q.acquire(d), nil
	case <-timer.C:
		return nil, fmt.Errorf("%w: timed out after %v", ErrNoDrawable, timeout)
	case <-q.done:
		return nil, fmt.Errorf("%w: queue closed", ErrNoDrawable)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrNoDrawable, ctx.Err())
	}
}

func (q *DrawableQueue) acquire(d *Drawable) *Drawable {
	d.held.Store(true)
	q.outstanding.Add(1)
	return d
}

func (q *DrawableQueue) put(d *Drawable) {
	q.outstanding.Add(-1)
	q.free <- d
}

// Outstanding returns how many drawables are acquired and not yet released.
func (q *DrawableQueue) Outstanding() int { return int(q.outstanding.Load()) }

// Capacity returns the number of drawables.
func (q *DrawableQueue) Capacity() int { return cap(q.free) }

// Drawables returns every drawable of the queue, held or free.
func (q *DrawableQueue) Drawables() []*Drawable { return q.all }

// Close wakes pending Next calls and destroys the textures. Drawables still
// held by the host must not be used afterwards.
func (q *DrawableQueue) Close() error {
	var err error
	q.closeOnce.Do(func() {
		close(q.done)
		if n := q.Outstanding(); n > 0 {
			err = errors.New("compositor: closing queue with drawables in flight")
			logging.Logger().Warn("compositor: drawables still in flight at close", "count", n)
		}
		q.destroy()
	})
	return err
}

func (q *DrawableQueue) destroy() {
	for _, d := range q.all {
		q.dev.DestroyTexture(d.tex)
	}
}
