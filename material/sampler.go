// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package material

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/vrrbench/compositor"
	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/internal/cache"
	"github.com/gogpu/vrrbench/internal/image"
)

// ErrNotReadable is returned by Sampler.Render for textures that cannot be
// read back.
var ErrNotReadable = errors.New("material: texture is not readable")

// Sampler previews the surface on the CPU. It picks the mip level the GPU
// would sample for an on-screen size and scales it with the filter's kernel.
type Sampler struct {
	Filter config.FilterMethod
}

// LevelFor returns the mip level sampled when a baseW x baseH texture covers
// w x h pixels: floor(log2(footprint)), clamped to [0, levels).
func LevelFor(baseW, baseH, w, h, levels int) int {
	if w <= 0 || h <= 0 || levels <= 1 {
		return 0
	}
	footprint := math.Max(float64(baseW)/float64(w), float64(baseH)/float64(h))
	if footprint <= 1 {
		return 0
	}
	level := int(math.Floor(math.Log2(footprint)))
	return min(level, levels-1)
}

// Render returns the w x h preview of tex.
func (s Sampler) Render(tex compositor.Texture, w, h int) (*image.ImageBuf, error) {
	reader, ok := tex.(compositor.LevelReader)
	if !ok {
		return nil, ErrNotReadable
	}
	bw, bh := tex.Size()
	level := LevelFor(bw, bh, w, h, tex.LevelCount())
	src, err := reader.ReadLevel(level)
	if err != nil {
		return nil, fmt.Errorf("material: read level %d: %w", level, err)
	}
	return image.Resample(src, w, h, s.Filter.Kernel())
}

type previewKey struct {
	tex  compositor.Texture
	w, h int
}

// CachedSampler is a Sampler that keeps recent previews. Drawables are
// refilled with the same assets every frame, so a preview of a texture at
// a given size does not change while the texture lives.
type CachedSampler struct {
	sampler Sampler
	cache   *cache.Cache[previewKey, *image.ImageBuf]
}

// NewCachedSampler returns a sampler keeping up to size previews.
func NewCachedSampler(s Sampler, size int) *CachedSampler {
	return &CachedSampler{
		sampler: s,
		cache:   cache.New[previewKey, *image.ImageBuf](size),
	}
}

// Render returns the w x h preview of tex, sampling it only on a miss.
// The returned buffer is shared and must not be modified.
func (c *CachedSampler) Render(tex compositor.Texture, w, h int) (*image.ImageBuf, error) {
	return c.cache.GetOrCreate(previewKey{tex: tex, w: w, h: h}, func() (*image.ImageBuf, error) {
		return c.sampler.Render(tex, w, h)
	})
}

// Reset drops every cached preview.
func (c *CachedSampler) Reset() { c.cache.Clear() }

// HitRate returns the fraction of Render calls served from the cache.
func (c *CachedSampler) HitRate() float64 { return c.cache.Stats().HitRate() }
