// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compositor

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/internal/image"
)

var (
	// ErrNoDrawable is returned when no drawable frees up before the
	// acquisition timeout. The frame is dropped.
	ErrNoDrawable = errors.New("compositor: no drawable available")

	// ErrCommandBuffer is returned when a frame's command buffer cannot be
	// created, recorded or completed. The frame is dropped.
	ErrCommandBuffer = errors.New("compositor: command buffer failed")

	// ErrDevice is returned when the device or its textures cannot be
	// created. It is fatal at startup.
	ErrDevice = errors.New("compositor: device setup failed")
)

// TextureDesc describes a drawable texture.
type TextureDesc struct {
	Label         string
	Width, Height int
	LevelCount    int
	Format        config.PixelFormat
}

// Texture is a GPU-writable 2D texture with a mip chain.
type Texture interface {
	Size() (width, height int)
	LevelCount() int
	Format() config.PixelFormat
}

// LevelReader is implemented by textures whose levels can be read back,
// for snapshots.
type LevelReader interface {
	ReadLevel(level int) (*image.ImageBuf, error)
}

// CommandBuffer records one frame's level copies.
//
// SubmitAndWait is the frame's synchronous barrier: it submits everything
// recorded and blocks the calling goroutine until the device reports
// completion. Blocking here bounds how far CPU work can run ahead of the
// display and keeps motion-to-photon latency at the prediction horizon.
type CommandBuffer interface {
	CopyLevel(dst Texture, level int, src *image.ImageBuf) error
	SubmitAndWait(ctx context.Context) error
	Discard()
}

// Device creates drawable textures and command buffers.
type Device interface {
	CreateTexture(desc TextureDesc) (Texture, error)
	DestroyTexture(t Texture)
	CreateCommandBuffer(label string) (CommandBuffer, error)
}

// CheckLevel verifies that src fits level of dst in size and byte order.
func CheckLevel(dst Texture, level int, src *image.ImageBuf) error {
	if level < 0 || level >= dst.LevelCount() {
		return fmt.Errorf("level %d out of range [0,%d)", level, dst.LevelCount())
	}
	if src.IsEmpty() {
		return fmt.Errorf("level %d: empty source", level)
	}
	w, h := dst.Size()
	lw, lh := image.LevelSize(w, h, level)
	if src.Width() != lw || src.Height() != lh {
		return fmt.Errorf("level %d: source %dx%d, want %dx%d", level, src.Width(), src.Height(), lw, lh)
	}
	if src.Format() != dst.Format().ImageFormat() {
		return fmt.Errorf("level %d: source %v, texture %v", level, src.Format(), dst.Format())
	}
	return nil
}
