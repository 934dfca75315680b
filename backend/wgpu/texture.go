// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vrrbench/compositor"
	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/internal/image"
)

// rowAlignment is the buffer row pitch required for texture-to-buffer copies.
const rowAlignment = 256

// Texture is a HAL texture owned by a Device.
type Texture struct {
	tex  hal.Texture
	desc compositor.TextureDesc
	dev  *Device
}

// Size returns the level 0 dimensions.
func (t *Texture) Size() (int, int) { return t.desc.Width, t.desc.Height }

// LevelCount returns the number of mip levels.
func (t *Texture) LevelCount() int { return t.desc.LevelCount }

// Format returns the pixel format.
func (t *Texture) Format() config.PixelFormat { return t.desc.Format }

// HAL returns the underlying texture.
func (t *Texture) HAL() hal.Texture { return t.tex }

// ReadLevel copies one mip level back to the CPU through a staging buffer.
func (t *Texture) ReadLevel(level int) (*image.ImageBuf, error) {
	if t.tex == nil {
		return nil, fmt.Errorf("read %q: texture destroyed", t.desc.Label)
	}
	if level < 0 || level >= t.desc.LevelCount {
		return nil, fmt.Errorf("read %q: level %d out of range [0,%d)", t.desc.Label, level, t.desc.LevelCount)
	}
	w, h := image.LevelSize(t.desc.Width, t.desc.Height, level)
	f := t.desc.Format.ImageFormat()
	rowBytes := f.RowBytes(w)
	paddedRow := (rowBytes + rowAlignment - 1) &^ (rowAlignment - 1)
	size := uint64(paddedRow * h)

	device, queue := t.dev.device, t.dev.queue
	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "vrrbench_readback",
		Size:  size,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create readback buffer: %w", err)
	}
	defer device.DestroyBuffer(staging)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "vrrbench_readback"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("vrrbench_readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageTextureBinding,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(paddedRow),
			RowsPerImage: uint32(h),
		},
		TextureBase: hal.ImageCopyTexture{Texture: t.tex, MipLevel: uint32(level)},
		Size:        hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageTextureBinding,
		},
	}})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	if err := submitAndWait(device, queue, cmdBuf, DefaultWaitTimeout); err != nil {
		return nil, err
	}

	padded := make([]byte, size)
	if err := queue.ReadBuffer(staging, 0, padded); err != nil {
		return nil, fmt.Errorf("read staging buffer: %w", err)
	}
	out := make([]byte, rowBytes*h)
	for y := 0; y < h; y++ {
		copy(out[y*rowBytes:(y+1)*rowBytes], padded[y*paddedRow:y*paddedRow+rowBytes])
	}
	return image.FromRaw(out, w, h, f)
}

var _ compositor.LevelReader = (*Texture)(nil)
