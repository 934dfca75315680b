// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package mip

import (
	"github.com/gogpu/vrrbench/internal/image"
)

// LevelTexture is the solid-color fill of one mip level, already encoded in
// the drawable's byte order.
type LevelTexture struct {
	Level         int
	Width, Height int
	Pixels        *image.ImageBuf
}

// NewLevelTexture allocates level i of a w x h base filled with
// ColorForLevel(i).
func NewLevelTexture(level, w, h int, f image.Format) (LevelTexture, error) {
	lw, lh := image.LevelSize(w, h, level)
	buf, err := image.NewImageBuf(lw, lh, f)
	if err != nil {
		return LevelTexture{}, err
	}
	c := ColorForLevel(level).RGBA8()
	buf.Fill(c.R, c.G, c.B, c.A)
	return LevelTexture{Level: level, Width: lw, Height: lh, Pixels: buf}, nil
}
