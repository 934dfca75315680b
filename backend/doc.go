// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package backend selects the device drawables live on.
//
// Backends are registered via init() functions and selected at runtime.
// The software backend is registered by this package; the Vulkan backend
// registers itself when backend/wgpu is imported:
//
//	import _ "github.com/gogpu/vrrbench/backend/wgpu"
//
// # Backend Selection
//
// Use Open with a name, or with "auto" to take the best backend that opens:
//
//	b, err := backend.Open("auto")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
//	sys, err := vrrbench.New(ctx, cfg, vrrbench.WithDevice(b.Device()))
//	...
//	err = b.AttachSurface(sys.Surface(), cfg.PixelFormat)
//
// A host that already owns a GPU device, such as a gogpu window, passes its
// gpucontext.DeviceProvider to OpenShared instead:
//
//	b, err := backend.OpenShared(app.DeviceProvider())
//
// # Available Backends
//
//   - "software": CPU textures, always available, deterministic
//   - "wgpu": Vulkan through gogpu/wgpu HAL
package backend
