// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"

	"github.com/gogpu/vrrbench/compositor"
	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/host"
)

// ErrBackendNotAvailable is returned when a requested backend is not
// registered or none could be opened.
var ErrBackendNotAvailable = errors.New("backend: not available")

// Backend is an opened device.
type Backend interface {
	// Name returns the backend identifier (e.g., "software", "wgpu").
	Name() string

	// Device returns the device drawables are allocated on.
	Device() compositor.Device

	// AttachSurface makes the backend display what s presents. The
	// surface's material is set up on the device in format f.
	AttachSurface(s *host.Surface, f config.PixelFormat) error

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()
}
