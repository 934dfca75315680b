// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package window is a desktop host: an ebiten window ticks the render loop
// and shows a CPU preview of the surface.
//
// Up and Down zoom the preview so that mip levels switch as they would when
// the quad moves away; Escape closes the window.
package window

import (
	"context"
	"errors"
	"image/color"
	"math"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/gogpu/vrrbench/host"
	"github.com/gogpu/vrrbench/internal/image"
	"github.com/gogpu/vrrbench/internal/logging"
	"github.com/gogpu/vrrbench/material"
)

// Window size defaults.
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

const (
	zoomStep = 1.25
	// previews kept per window: every drawable at a few zoom levels.
	previewCacheSize = 32
)

// Window is a host.Driver backed by an ebiten window.
type Window struct {
	Title   string
	Width   int
	Height  int
	Surface *host.Surface
	Sampler material.Sampler
}

// Run implements host.Driver. It blocks until the window closes or ctx is
// done.
func (w *Window) Run(ctx context.Context, fn host.FrameFunc) error {
	width, height := w.Width, w.Height
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	title := w.Title
	if title == "" {
		title = "vrrbench"
	}

	g := &game{
		ctx:     ctx,
		fn:      fn,
		surface: w.Surface,
		sampler: material.NewCachedSampler(w.Sampler, previewCacheSize),
		width:   width,
		height:  height,
		zoom:    1,
		start:   time.Now(),
	}
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	ebiten.SetVsyncEnabled(true)

	err := ebiten.RunGame(g)
	logging.Logger().Debug("window: closed", "previewHitRate", g.sampler.HitRate())
	if errors.Is(err, ebiten.Termination) {
		return g.err
	}
	return err
}

type game struct {
	ctx     context.Context
	fn      host.FrameFunc
	surface *host.Surface
	sampler *material.CachedSampler
	width   int
	height  int
	zoom    float64
	start   time.Time
	err     error

	preview *ebiten.Image
}

func (g *game) Update() error {
	if g.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowUp):
		g.zoom = math.Min(g.zoom*zoomStep, 4)
	case inpututil.IsKeyJustPressed(ebiten.KeyArrowDown):
		g.zoom = math.Max(g.zoom/zoomStep, 1.0/1024)
	}

	now := time.Since(g.start).Seconds()
	interval := 1 / float64(ebiten.TPS())
	if err := g.fn(g.ctx, host.NewTick(now, now+interval)); err != nil {
		g.err = err
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	screen.Fill(color.Black)
	if g.surface == nil {
		return
	}
	tex, _, ok := g.surface.Current()
	if !ok {
		return
	}

	tw, th := tex.Size()
	w, h := fit(tw, th, g.width, g.height, g.zoom)
	buf, err := g.sampler.Render(tex, w, h)
	if err != nil {
		logging.Logger().Debug("window: preview failed", "err", err)
		return
	}

	if g.preview == nil || g.preview.Bounds().Dx() != w || g.preview.Bounds().Dy() != h {
		if g.preview != nil {
			g.preview.Deallocate()
		}
		g.preview = ebiten.NewImage(w, h)
	}
	pix, err := rgba(buf)
	if err != nil {
		logging.Logger().Debug("window: preview failed", "err", err)
		return
	}
	g.preview.WritePixels(pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(float64(g.width-w)/2, float64(g.height-h)/2)
	screen.DrawImage(g.preview, op)
}

func (g *game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// fit scales a tw x th texture to fit a ww x wh window, times zoom.
func fit(tw, th, ww, wh int, zoom float64) (int, int) {
	s := math.Min(float64(ww)/float64(tw), float64(wh)/float64(th)) * zoom
	return max(1, int(float64(tw)*s)), max(1, int(float64(th)*s))
}

// rgba returns buf's pixels in RGBA order, as WritePixels expects.
func rgba(buf *image.ImageBuf) ([]byte, error) {
	if buf.Format() == image.FormatRGBA8 && buf.Stride() == buf.Width()*4 {
		return buf.Data(), nil
	}
	c, err := buf.Convert(image.FormatRGBA8)
	if err != nil {
		return nil, err
	}
	return c.Data(), nil
}
