// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// Package wgpu runs the compositor on a gogpu/wgpu HAL device.
//
// Drawable levels are uploaded with queue writes; each frame's command
// buffer carries the texture transitions and is submitted with a fence
// that SubmitAndWait blocks on.
package wgpu

import (
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/vrrbench/compositor"
	"github.com/gogpu/vrrbench/internal/logging"
)

// DefaultWaitTimeout bounds a fence wait when the context has no deadline.
const DefaultWaitTimeout = 5 * time.Second

// Device adapts a HAL device and queue to compositor.Device.
type Device struct {
	mu       sync.Mutex
	device   hal.Device
	queue    hal.Queue
	instance hal.Instance
	external bool
	adapter  string
	textures int
}

// Open creates a standalone Vulkan device, preferring a discrete or
// integrated GPU over software adapters.
func Open() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", compositor.ErrDevice)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", compositor.ErrDevice, err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no GPU adapters found", compositor.ErrDevice)
	}

	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %w", compositor.ErrDevice, err)
	}

	logging.Logger().Info("wgpu: device opened", "adapter", selected.Info.Name)
	return &Device{
		device:   openDev.Device,
		queue:    openDev.Queue,
		instance: instance,
		adapter:  selected.Info.Name,
	}, nil
}

// FromHAL wraps an existing device and queue. Close does not destroy them.
func FromHAL(device hal.Device, queue hal.Queue) *Device {
	return &Device{device: device, queue: queue, external: true}
}

// FromProvider shares the device of a host window. The provider must
// expose HalDevice() any and HalQueue() any returning hal.Device and
// hal.Queue.
func FromProvider(provider gpucontext.DeviceProvider) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: provider does not expose HAL types", compositor.ErrDevice)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: provider HalDevice is not hal.Device", compositor.ErrDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: provider HalQueue is not hal.Queue", compositor.ErrDevice)
	}
	info := provider.AdapterInfo()
	logging.Logger().Info("wgpu: using shared device", "adapter", info.Name, "surfaceFormat", provider.SurfaceFormat())
	d := FromHAL(device, queue)
	d.adapter = info.Name
	return d, nil
}

// HAL returns the underlying device and queue.
func (d *Device) HAL() (hal.Device, hal.Queue) { return d.device, d.queue }

// Adapter returns the adapter name as reported by Open or the provider.
func (d *Device) Adapter() string { return d.adapter }

// Textures returns the number of live textures.
func (d *Device) Textures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.textures
}

// Close destroys the device if Open created it.
func (d *Device) Close() {
	if d.external {
		return
	}
	if d.device != nil {
		d.device.Destroy()
		d.device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
}

// CreateTexture creates a sampled, copyable 2D texture.
func (d *Device) CreateTexture(desc compositor.TextureDesc) (compositor.Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 || desc.LevelCount < 1 {
		return nil, fmt.Errorf("texture %q: invalid size %dx%d with %d levels",
			desc.Label, desc.Width, desc.Height, desc.LevelCount)
	}
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: desc.Label,
		Size: hal.Extent3D{
			Width:              uint32(desc.Width),
			Height:             uint32(desc.Height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: uint32(desc.LevelCount),
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        desc.Format.TextureFormat(),
		Usage: gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopyDst |
			gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", desc.Label, err)
	}

	d.mu.Lock()
	d.textures++
	d.mu.Unlock()
	return &Texture{tex: tex, desc: desc, dev: d}, nil
}

// DestroyTexture releases t.
func (d *Device) DestroyTexture(t compositor.Texture) {
	wt, ok := t.(*Texture)
	if !ok || wt.tex == nil {
		return
	}
	d.device.DestroyTexture(wt.tex)
	wt.tex = nil

	d.mu.Lock()
	d.textures--
	d.mu.Unlock()
}

// CreateCommandBuffer begins a frame's encoder.
func (d *Device) CreateCommandBuffer(label string) (compositor.CommandBuffer, error) {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}
	return &commandBuffer{dev: d, encoder: encoder, label: label}, nil
}
