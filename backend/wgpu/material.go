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
	"github.com/gogpu/vrrbench/material"
)

// SurfaceMaterial is a material's shader module and sampler on the device,
// with the texture currently bound to it.
type SurfaceMaterial struct {
	dev         *Device
	material    *material.Material
	module      hal.ShaderModule
	sampler     hal.Sampler
	placeholder *Texture
	bound       compositor.Texture
}

// CreateSurfaceMaterial creates the GPU objects for m and binds a 1x1 black
// placeholder until the first drawable is presented. Errors wrap
// material.ErrShaderSetup.
func (d *Device) CreateSurfaceMaterial(m *material.Material, format config.PixelFormat) (*SurfaceMaterial, error) {
	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  m.Name,
		Source: hal.ShaderSource{SPIRV: m.SPIRV},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create %s module: %w", material.ErrShaderSetup, m.Name, err)
	}

	filter := m.SamplerFilter()
	sampler, err := d.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        m.Name + "_sampler",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		d.device.DestroyShaderModule(module)
		return nil, fmt.Errorf("%w: create %s sampler: %w", material.ErrShaderSetup, m.Name, err)
	}

	sm := &SurfaceMaterial{dev: d, material: m, module: module, sampler: sampler}
	if err := sm.createPlaceholder(format); err != nil {
		sm.Destroy()
		return nil, err
	}
	sm.bound = sm.placeholder
	return sm, nil
}

func (sm *SurfaceMaterial) createPlaceholder(format config.PixelFormat) error {
	texel, err := material.Placeholder(format.ImageFormat())
	if err != nil {
		return err
	}
	tex, err := sm.dev.CreateTexture(compositor.TextureDesc{
		Label:      sm.material.Name + "_placeholder",
		Width:      1,
		Height:     1,
		LevelCount: 1,
		Format:     format,
	})
	if err != nil {
		return fmt.Errorf("%w: placeholder: %w", material.ErrShaderSetup, err)
	}
	sm.placeholder = tex.(*Texture)

	sm.dev.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: sm.placeholder.tex, MipLevel: 0},
		texel.Data(),
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: uint32(texel.Stride()), RowsPerImage: 1},
		&hal.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1},
	)
	return nil
}

// Material returns the compiled material.
func (sm *SurfaceMaterial) Material() *material.Material { return sm.material }

// Bind makes t the surface texture.
func (sm *SurfaceMaterial) Bind(t compositor.Texture) { sm.bound = t }

// Bound returns the texture the surface shows.
func (sm *SurfaceMaterial) Bound() compositor.Texture { return sm.bound }

// ShowsPlaceholder reports whether no drawable has been bound yet.
func (sm *SurfaceMaterial) ShowsPlaceholder() bool {
	return sm.placeholder != nil && sm.bound == compositor.Texture(sm.placeholder)
}

// Destroy releases the GPU objects.
func (sm *SurfaceMaterial) Destroy() {
	if sm.placeholder != nil {
		sm.dev.DestroyTexture(sm.placeholder)
		sm.placeholder = nil
	}
	if sm.sampler != nil {
		sm.dev.device.DestroySampler(sm.sampler)
		sm.sampler = nil
	}
	if sm.module != nil {
		sm.dev.device.DestroyShaderModule(sm.module)
		sm.module = nil
	}
	sm.bound = nil
}
