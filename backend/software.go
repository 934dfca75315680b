// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"github.com/gogpu/vrrbench/compositor"
	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/host"
	"github.com/gogpu/vrrbench/internal/logging"
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU texture backend.
	BackendSoftware = "software"
	// BackendWGPU is the name of the Vulkan backend (gogpu/wgpu HAL).
	BackendWGPU = "wgpu"
	// BackendAuto asks Open for the best available backend.
	BackendAuto = "auto"
)

// SoftwareBackend keeps drawables in CPU memory. The host surface latches
// its textures directly, so there is nothing to attach.
type SoftwareBackend struct {
	dev *compositor.SoftwareDevice
}

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() (Backend, error) {
		return NewSoftwareBackend(), nil
	})
}

// NewSoftwareBackend creates a new software backend.
func NewSoftwareBackend() *SoftwareBackend {
	return &SoftwareBackend{dev: compositor.NewSoftwareDevice()}
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string {
	return BackendSoftware
}

// Device returns the software device.
func (b *SoftwareBackend) Device() compositor.Device {
	return b.dev
}

// AttachSurface implements Backend.
func (b *SoftwareBackend) AttachSurface(*host.Surface, config.PixelFormat) error {
	return nil
}

// Close reports textures that were never destroyed.
func (b *SoftwareBackend) Close() {
	if n := b.dev.Live(); n > 0 {
		logging.Logger().Warn("backend: software textures still live at close", "count", n)
	}
}
