// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mip

import "image/color"

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// RGBA8 converts c to 8-bit channels by truncation.
func (c Color) RGBA8() color.RGBA {
	return color.RGBA{
		R: uint8(c.R * 255),
		G: uint8(c.G * 255),
		B: uint8(c.B * 255),
		A: uint8(c.A * 255),
	}
}

var (
	green  = Color{0, 1, 0, 1}
	yellow = Color{1, 1, 0, 1}
	red    = Color{1, 0, 0, 1}
)

// ColorTable maps mip levels to solid colors, green at full resolution
// trending to red by level 6. A viewer reads the sampled level straight off
// the screen color.
var ColorTable = [16]Color{
	green,
	yellow,
	{1, 0.75, 0, 1},
	{1, 0.5, 0.1, 1},
	{1, 0.25, 0.1, 1},
	{1, 0.125, 0.1, 1},
	red, red, red, red, red, red, red, red, red, red,
}

// ColorForLevel returns the color of mip level i. Levels past the table
// clamp to its last entry; negative levels clamp to the first.
func ColorForLevel(i int) Color {
	return ColorTable[min(max(i, 0), len(ColorTable)-1)]
}
