// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compositor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/internal/image"
)

// SoftwareDevice keeps textures in system memory. It backs the headless
// host and tests, and stands in when no GPU adapter is available.
type SoftwareDevice struct {
	mu   sync.Mutex
	live int
}

// NewSoftwareDevice returns an empty device.
func NewSoftwareDevice() *SoftwareDevice {
	return &SoftwareDevice{}
}

// Live returns the number of textures created and not destroyed.
func (d *SoftwareDevice) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.live
}

// CreateTexture allocates every level of desc.
func (d *SoftwareDevice) CreateTexture(desc TextureDesc) (Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("texture %q: size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	if limit := image.LevelCount(desc.Width, desc.Height); desc.LevelCount < 1 || desc.LevelCount > limit {
		return nil, fmt.Errorf("texture %q: %d levels, want 1..%d", desc.Label, desc.LevelCount, limit)
	}
	t := &SoftwareTexture{desc: desc, levels: make([]*image.ImageBuf, desc.LevelCount)}
	for i := range t.levels {
		w, h := image.LevelSize(desc.Width, desc.Height, i)
		buf, err := image.NewImageBuf(w, h, desc.Format.ImageFormat())
		if err != nil {
			return nil, err
		}
		t.levels[i] = buf
	}

	d.mu.Lock()
	d.live++
	d.mu.Unlock()
	return t, nil
}

// DestroyTexture frees t.
func (d *SoftwareDevice) DestroyTexture(t Texture) {
	st, ok := t.(*SoftwareTexture)
	if !ok {
		return
	}
	st.mu.Lock()
	already := st.levels == nil
	st.levels = nil
	st.mu.Unlock()
	if already {
		return
	}
	d.mu.Lock()
	d.live--
	d.mu.Unlock()
}

// CreateCommandBuffer returns an empty command buffer.
func (d *SoftwareDevice) CreateCommandBuffer(label string) (CommandBuffer, error) {
	return &softwareCommandBuffer{label: label}, nil
}

// SoftwareTexture is a texture in system memory.
type SoftwareTexture struct {
	desc   TextureDesc
	mu     sync.RWMutex
	levels []*image.ImageBuf
}

// Size returns the level 0 size.
func (t *SoftwareTexture) Size() (int, int) { return t.desc.Width, t.desc.Height }

// LevelCount returns the number of mip levels.
func (t *SoftwareTexture) LevelCount() int { return t.desc.LevelCount }

// Format returns the texel format.
func (t *SoftwareTexture) Format() config.PixelFormat { return t.desc.Format }

// ReadLevel returns a copy of level i.
func (t *SoftwareTexture) ReadLevel(i int) (*image.ImageBuf, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.levels == nil {
		return nil, errors.New("compositor: texture destroyed")
	}
	if i < 0 || i >= len(t.levels) {
		return nil, fmt.Errorf("compositor: level %d out of range", i)
	}
	return t.levels[i].Clone(), nil
}

type copyOp struct {
	dst   *SoftwareTexture
	level int
	src   *image.ImageBuf
}

type softwareCommandBuffer struct {
	label string
	ops   []copyOp
	done  bool
}

func (cb *softwareCommandBuffer) CopyLevel(dst Texture, level int, src *image.ImageBuf) error {
	if cb.done {
		return fmt.Errorf("%s: command buffer already submitted", cb.label)
	}
	st, ok := dst.(*SoftwareTexture)
	if !ok {
		return fmt.Errorf("%s: foreign texture %T", cb.label, dst)
	}
	if err := CheckLevel(dst, level, src); err != nil {
		return fmt.Errorf("%s: %w", cb.label, err)
	}
	cb.ops = append(cb.ops, copyOp{dst: st, level: level, src: src})
	return nil
}

// SubmitAndWait executes the recorded copies on the calling goroutine, so
// it returns only once every copy has landed.
func (cb *softwareCommandBuffer) SubmitAndWait(ctx context.Context) error {
	if cb.done {
		return fmt.Errorf("%s: command buffer already submitted", cb.label)
	}
	cb.done = true
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, op := range cb.ops {
		op.dst.mu.Lock()
		if op.dst.levels == nil {
			op.dst.mu.Unlock()
			return fmt.Errorf("%s: texture destroyed", cb.label)
		}
		copy(op.dst.levels[op.level].Data(), op.src.Data())
		op.dst.mu.Unlock()
	}
	cb.ops = nil
	return nil
}

func (cb *softwareCommandBuffer) Discard() {
	cb.done = true
	cb.ops = nil
}
