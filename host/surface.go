// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package host

import (
	"sync"

	"github.com/gogpu/vrrbench/compositor"
	"github.com/gogpu/vrrbench/internal/image"
	"github.com/gogpu/vrrbench/internal/logging"
	"github.com/gogpu/vrrbench/material"
	"github.com/gogpu/vrrbench/placement"
)

// Surface is the display quad. It shows a black placeholder texel until the
// first drawable is presented, then the latest presented texture with the
// latest placement.
//
// Present latches the drawable's texture and returns the drawable to its
// queue, so a queue of any capacity keeps flowing.
type Surface struct {
	mu          sync.Mutex
	material    *material.Material
	placeholder *image.ImageBuf
	texture     compositor.Texture
	drawable    int
	placement   placement.Result
	presented   int64
	listeners   []func(compositor.Texture, placement.Result)
}

// NewSurface returns a surface drawn with m.
func NewSurface(m *material.Material, f image.Format) (*Surface, error) {
	ph, err := material.Placeholder(f)
	if err != nil {
		return nil, err
	}
	return &Surface{material: m, placeholder: ph, drawable: -1}, nil
}

// Present implements compositor.Presenter.
func (s *Surface) Present(d *compositor.Drawable, res placement.Result) error {
	s.mu.Lock()
	first := s.texture == nil
	s.texture = d.Texture()
	s.drawable = d.ID()
	s.placement = res
	s.presented++
	listeners := s.listeners
	s.mu.Unlock()

	d.Release()
	if first {
		logging.Logger().Info("host: first drawable presented", "material", s.materialName())
	}
	for _, fn := range listeners {
		fn(d.Texture(), res)
	}
	return nil
}

func (s *Surface) materialName() string {
	if s.material == nil {
		return ""
	}
	return s.material.Name
}

// OnPresent registers fn to run after each present.
func (s *Surface) OnPresent(fn func(compositor.Texture, placement.Result)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Current returns the shown texture and placement. ok is false while the
// placeholder is shown.
func (s *Surface) Current() (tex compositor.Texture, res placement.Result, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.texture, s.placement, s.texture != nil
}

// Drawable returns the ID of the last presented drawable, -1 before the
// first present.
func (s *Surface) Drawable() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drawable
}

// Presented returns the number of presents.
func (s *Surface) Presented() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presented
}

// Placeholder returns the texel shown before the first present.
func (s *Surface) Placeholder() *image.ImageBuf { return s.placeholder }

// Material returns the surface material.
func (s *Surface) Material() *material.Material { return s.material }

var _ compositor.Presenter = (*Surface)(nil)
