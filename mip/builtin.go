// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mip

import (
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/gg"

	"github.com/gogpu/vrrbench/internal/image"
)

// BuiltinPrefix names patterns drawn in-process rather than loaded.
const BuiltinPrefix = "builtin:"

// BuiltinSize is the resolution builtin patterns are drawn at.
const (
	BuiltinWidth  = 1920
	BuiltinHeight = 1080
)

// BuiltinLoader draws clarity patterns with gg. It answers only
// "builtin:clarity" and "builtin:grid"; any other name is not found.
type BuiltinLoader struct{}

// LoadImage draws the named pattern.
func (BuiltinLoader) LoadImage(name string, f image.Format) (*image.ImageBuf, error) {
	pattern, ok := strings.CutPrefix(name, BuiltinPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errNotFound, name)
	}

	var draw func(*gg.Context) error
	switch pattern {
	case "clarity":
		draw = drawClarity
	case "grid":
		draw = drawGrid
	default:
		return nil, fmt.Errorf("%w: %s", errNotFound, name)
	}

	dc := gg.NewContext(BuiltinWidth, BuiltinHeight)
	defer func() { _ = dc.Close() }()

	dc.ClearWithColor(gg.Black)
	if err := draw(dc); err != nil {
		return nil, fmt.Errorf("draw %s: %w", name, err)
	}
	return image.FromStdImage(dc.Image(), f)
}

// drawClarity draws white-on-black line pairs of decreasing pitch, the
// features that blur first as sampling moves down the mip chain.
func drawClarity(dc *gg.Context) error {
	w, h := float64(dc.Width()), float64(dc.Height())
	dc.SetRGB(1, 1, 1)

	// Border and center cross.
	dc.SetLineWidth(2)
	dc.DrawRectangle(1, 1, w-2, h-2)
	if err := dc.Stroke(); err != nil {
		return err
	}
	dc.DrawLine(w/2, 0, w/2, h)
	dc.DrawLine(0, h/2, w, h/2)
	if err := dc.Stroke(); err != nil {
		return err
	}

	// Line-pair groups on the left half, pitch 16 px down to 1 px. The top
	// row is vertical bars, the bottom row horizontal.
	const groups = 5
	cell := w / 2 / groups
	for g := range groups {
		pitch := math.Pow(2, float64(groups-1-g))
		x0 := float64(g)*cell + cell*0.1
		for x := x0; x < x0+cell*0.8; x += 2 * pitch {
			dc.DrawRectangle(x, h*0.1, pitch, h*0.3)
		}
		for y := h * 0.6; y < h*0.9; y += 2 * pitch {
			dc.DrawRectangle(x0, y, cell*0.8, pitch)
		}
	}
	if err := dc.Fill(); err != nil {
		return err
	}

	// Concentric rings on the right half.
	dc.SetLineWidth(1)
	for r := 8.0; r < h*0.45; r += 8 {
		dc.DrawCircle(w*0.75, h/2, r)
	}
	return dc.Stroke()
}

// drawGrid draws a two-pixel grid every 32 pixels.
func drawGrid(dc *gg.Context) error {
	w, h := float64(dc.Width()), float64(dc.Height())
	dc.SetRGB(1, 1, 1)
	for x := 0.0; x <= w; x += 32 {
		dc.DrawRectangle(x, 0, 2, h)
	}
	for y := 0.0; y <= h; y += 32 {
		dc.DrawRectangle(0, y, w, 2)
	}
	return dc.Fill()
}
