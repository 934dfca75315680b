// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package image

import "math/bits"

// MipmapChain holds successively halved copies of an image.
// Level 0 is the source; the chain ends when both dimensions reach 1.
type MipmapChain struct {
	levels []*ImageBuf
}

// LevelCount returns the number of levels a full chain for a w x h image
// has: 1 + floor(log2(max(w, h))).
func LevelCount(w, h int) int {
	m := max(w, h)
	if m <= 0 {
		return 0
	}
	return bits.Len(uint(m))
}

// LevelSize returns the dimensions of level i for a w x h base.
func LevelSize(w, h, level int) (int, int) {
	if level < 0 {
		level = 0
	}
	return max(1, w>>level), max(1, h>>level)
}

// GenerateMipmaps builds a chain from src using a 2x2 box filter.
// src becomes level 0 and is not copied. Returns nil for an empty src.
func GenerateMipmaps(src *ImageBuf) *MipmapChain {
	if src.IsEmpty() {
		return nil
	}
	n := LevelCount(src.Width(), src.Height())
	chain := &MipmapChain{levels: make([]*ImageBuf, n)}
	chain.levels[0] = src
	for i := 1; i < n; i++ {
		chain.levels[i] = downsample(chain.levels[i-1])
	}
	return chain
}

func downsample(src *ImageBuf) *ImageBuf {
	srcW, srcH := src.Bounds()
	dstW := max(1, srcW/2)
	dstH := max(1, srcH/2)

	dst := GetFromDefault(dstW, dstH, src.Format())
	if dst == nil {
		return nil
	}

	for dy := range dstH {
		for dx := range dstW {
			sx, sy := dx*2, dy*2
			x1, y1 := min(sx+1, srcW-1), min(sy+1, srcH-1)

			r0, g0, b0, a0 := src.GetRGBA(sx, sy)
			r1, g1, b1, a1 := src.GetRGBA(x1, sy)
			r2, g2, b2, a2 := src.GetRGBA(sx, y1)
			r3, g3, b3, a3 := src.GetRGBA(x1, y1)

			r := (uint16(r0) + uint16(r1) + uint16(r2) + uint16(r3)) / 4
			g := (uint16(g0) + uint16(g1) + uint16(g2) + uint16(g3)) / 4
			b := (uint16(b0) + uint16(b1) + uint16(b2) + uint16(b3)) / 4
			a := (uint16(a0) + uint16(a1) + uint16(a2) + uint16(a3)) / 4

			_ = dst.SetRGBA(dx, dy, uint8(r), uint8(g), uint8(b), uint8(a))
		}
	}
	return dst
}

// Level returns level i, or nil if i is out of range.
func (m *MipmapChain) Level(i int) *ImageBuf {
	if m == nil || i < 0 || i >= len(m.levels) {
		return nil
	}
	return m.levels[i]
}

// NumLevels returns the number of levels in the chain.
func (m *MipmapChain) NumLevels() int {
	if m == nil {
		return 0
	}
	return len(m.levels)
}

// Release returns levels 1.. to the package pool. Level 0 belongs to the
// caller. The chain must not be used afterwards.
func (m *MipmapChain) Release() {
	if m == nil {
		return
	}
	for i := 1; i < len(m.levels); i++ {
		PutToDefault(m.levels[i])
	}
	m.levels = nil
}
