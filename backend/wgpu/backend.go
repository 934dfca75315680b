// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/vrrbench/backend"
	"github.com/gogpu/vrrbench/compositor"
	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/host"
	"github.com/gogpu/vrrbench/material"
	"github.com/gogpu/vrrbench/placement"
)

// init registers the Vulkan backend on package import.
func init() {
	backend.Register(backend.BackendWGPU, func() (backend.Backend, error) {
		dev, err := Open()
		if err != nil {
			return nil, err
		}
		return NewBackend(dev), nil
	})
	backend.RegisterShared(backend.BackendWGPU, func(p gpucontext.DeviceProvider) (backend.Backend, error) {
		dev, err := FromProvider(p)
		if err != nil {
			return nil, err
		}
		return NewBackend(dev), nil
	})
}

// Backend is a Device with the surface material bound to the presented
// drawables.
type Backend struct {
	dev      *Device
	material *SurfaceMaterial
}

// NewBackend wraps dev. Close closes it.
func NewBackend(dev *Device) *Backend {
	return &Backend{dev: dev}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return backend.BackendWGPU }

// Device returns the HAL device.
func (b *Backend) Device() compositor.Device { return b.dev }

// SurfaceMaterial returns the attached material, nil before AttachSurface.
func (b *Backend) SurfaceMaterial() *SurfaceMaterial { return b.material }

// AttachSurface creates the surface material on the device and rebinds it
// to every drawable s presents. Errors wrap material.ErrShaderSetup.
func (b *Backend) AttachSurface(s *host.Surface, f config.PixelFormat) error {
	if b.material != nil {
		return fmt.Errorf("%w: surface already attached", material.ErrShaderSetup)
	}
	sm, err := b.dev.CreateSurfaceMaterial(s.Material(), f)
	if err != nil {
		return err
	}
	b.material = sm
	s.OnPresent(func(t compositor.Texture, _ placement.Result) {
		sm.Bind(t)
	})
	return nil
}

// Close destroys the surface material and closes the device. A device
// shared from a provider stays open.
func (b *Backend) Close() {
	if b.material != nil {
		b.material.Destroy()
		b.material = nil
	}
	b.dev.Close()
}

var _ backend.Backend = (*Backend)(nil)
