// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"context"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vrrbench/compositor"
	"github.com/gogpu/vrrbench/internal/image"
)

// commandBuffer uploads levels through the queue and records the barriers
// that make the destination sampleable once the fence signals.
type commandBuffer struct {
	dev     *Device
	encoder hal.CommandEncoder
	label   string
	touched []*Texture
	done    bool
}

func (c *commandBuffer) CopyLevel(dst compositor.Texture, level int, src *image.ImageBuf) error {
	if c.done {
		return fmt.Errorf("%s: command buffer already finished", c.label)
	}
	if err := compositor.CheckLevel(dst, level, src); err != nil {
		return err
	}
	tex, ok := dst.(*Texture)
	if !ok || tex.tex == nil {
		return fmt.Errorf("%s: destination is not a live wgpu texture", c.label)
	}

	c.dev.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: tex.tex, MipLevel: uint32(level)},
		src.Data(),
		&hal.ImageDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(src.Stride()),
			RowsPerImage: uint32(src.Height()),
		},
		&hal.Extent3D{
			Width:              uint32(src.Width()),
			Height:             uint32(src.Height()),
			DepthOrArrayLayers: 1,
		},
	)

	for _, t := range c.touched {
		if t == tex {
			return nil
		}
	}
	c.touched = append(c.touched, tex)
	return nil
}

func (c *commandBuffer) SubmitAndWait(ctx context.Context) error {
	if c.done {
		return fmt.Errorf("%s: command buffer already finished", c.label)
	}
	c.done = true

	if len(c.touched) > 0 {
		barriers := make([]hal.TextureBarrier, 0, len(c.touched))
		for _, t := range c.touched {
			barriers = append(barriers, hal.TextureBarrier{
				Texture: t.tex,
				Usage: hal.TextureUsageTransition{
					OldUsage: gputypes.TextureUsageCopyDst,
					NewUsage: gputypes.TextureUsageTextureBinding,
				},
			})
		}
		c.encoder.TransitionTextures(barriers)
	}

	cmdBuf, err := c.encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("%s: end encoding: %w", c.label, err)
	}
	defer c.dev.device.FreeCommandBuffer(cmdBuf)

	if err := ctx.Err(); err != nil {
		return err
	}
	timeout := DefaultWaitTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return context.DeadlineExceeded
		}
	}
	if err := submitAndWait(c.dev.device, c.dev.queue, cmdBuf, timeout); err != nil {
		return fmt.Errorf("%s: %w", c.label, err)
	}
	return nil
}

func (c *commandBuffer) Discard() {
	if c.done {
		return
	}
	c.done = true
	c.encoder.DiscardEncoding()
}

// submitAndWait submits one command buffer with a fresh fence and blocks
// until it signals or timeout elapses.
func submitAndWait(device hal.Device, queue hal.Queue, cmdBuf hal.CommandBuffer, timeout time.Duration) error {
	fence, err := device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer device.DestroyFence(fence)

	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := device.Wait(fence, 1, timeout)
	if err != nil {
		return fmt.Errorf("wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("wait for GPU: timed out after %v", timeout)
	}
	return nil
}
