// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package wgpu

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/vrrbench/backend"
	"github.com/gogpu/vrrbench/compositor"
	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/host"
	"github.com/gogpu/vrrbench/internal/image"
	"github.com/gogpu/vrrbench/material"
	"github.com/gogpu/vrrbench/mip"
	"github.com/gogpu/vrrbench/placement"
)

func createNoopDevice(t *testing.T) *Device {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return FromHAL(openDev.Device, openDev.Queue)
}

func testConfig(t *testing.T) config.RenderConfig {
	t.Helper()
	o := config.Default()
	o.Width, o.Height = 64, 32
	o.DrawableTimeout = 0
	c, err := config.New(o)
	if err != nil {
		t.Fatalf("config.New() error = %v", err)
	}
	return c
}

type releasingPresenter struct{ presented int }

func (p *releasingPresenter) Present(d *compositor.Drawable, _ placement.Result) error {
	p.presented++
	d.Release()
	return nil
}

func TestCreateTexture(t *testing.T) {
	dev := createNoopDevice(t)

	tests := []struct {
		name    string
		desc    compositor.TextureDesc
		wantErr bool
	}{
		{"full chain", compositor.TextureDesc{Label: "a", Width: 64, Height: 32, LevelCount: 7, Format: config.PixelFormatBGRA8UnormSRGB}, false},
		{"single level", compositor.TextureDesc{Label: "b", Width: 8, Height: 8, LevelCount: 1, Format: config.PixelFormatRGBA8Unorm}, false},
		{"zero width", compositor.TextureDesc{Label: "c", Width: 0, Height: 8, LevelCount: 1}, true},
		{"no levels", compositor.TextureDesc{Label: "d", Width: 8, Height: 8, LevelCount: 0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex, err := dev.CreateTexture(tt.desc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateTexture() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			w, h := tex.Size()
			if w != tt.desc.Width || h != tt.desc.Height {
				t.Errorf("Size() = %dx%d, want %dx%d", w, h, tt.desc.Width, tt.desc.Height)
			}
			if got := tex.LevelCount(); got != tt.desc.LevelCount {
				t.Errorf("LevelCount() = %d, want %d", got, tt.desc.LevelCount)
			}
			dev.DestroyTexture(tex)
		})
	}
	if got := dev.Textures(); got != 0 {
		t.Errorf("Textures() after destroy = %d, want 0", got)
	}
}

func TestCommandBufferRejectsMismatchedLevel(t *testing.T) {
	dev := createNoopDevice(t)
	tex, err := dev.CreateTexture(compositor.TextureDesc{Label: "t", Width: 16, Height: 16, LevelCount: 5, Format: config.PixelFormatBGRA8Unorm})
	if err != nil {
		t.Fatal(err)
	}
	defer dev.DestroyTexture(tex)

	cb, err := dev.CreateCommandBuffer("frame")
	if err != nil {
		t.Fatal(err)
	}
	defer cb.Discard()

	wrongSize, _ := image.NewImageBuf(16, 16, image.FormatBGRA8)
	if err := cb.CopyLevel(tex, 1, wrongSize); err == nil {
		t.Error("CopyLevel() with level 0 sized source at level 1: want error")
	}
	wrongFormat, _ := image.NewImageBuf(8, 8, image.FormatRGBA8)
	if err := cb.CopyLevel(tex, 1, wrongFormat); err == nil {
		t.Error("CopyLevel() with RGBA source into BGRA texture: want error")
	}
}

func TestSubmitAndWaitOnce(t *testing.T) {
	dev := createNoopDevice(t)
	tex, err := dev.CreateTexture(compositor.TextureDesc{Label: "t", Width: 4, Height: 4, LevelCount: 3, Format: config.PixelFormatRGBA8Unorm})
	if err != nil {
		t.Fatal(err)
	}
	defer dev.DestroyTexture(tex)

	cb, err := dev.CreateCommandBuffer("frame")
	if err != nil {
		t.Fatal(err)
	}
	for level := range 3 {
		w, h := image.LevelSize(4, 4, level)
		src, _ := image.NewImageBuf(w, h, image.FormatRGBA8)
		if err := cb.CopyLevel(tex, level, src); err != nil {
			t.Fatalf("CopyLevel(%d) error = %v", level, err)
		}
	}
	if err := cb.SubmitAndWait(context.Background()); err != nil {
		t.Fatalf("SubmitAndWait() error = %v", err)
	}
	if err := cb.SubmitAndWait(context.Background()); err == nil {
		t.Error("second SubmitAndWait(): want error")
	}
}

func TestSubmitAndWaitCanceled(t *testing.T) {
	dev := createNoopDevice(t)
	cb, err := dev.CreateCommandBuffer("frame")
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := cb.SubmitAndWait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("SubmitAndWait() error = %v, want context.Canceled", err)
	}
}

func TestReadLevelSize(t *testing.T) {
	dev := createNoopDevice(t)
	tex, err := dev.CreateTexture(compositor.TextureDesc{Label: "t", Width: 100, Height: 30, LevelCount: 7, Format: config.PixelFormatBGRA8Unorm})
	if err != nil {
		t.Fatal(err)
	}
	defer dev.DestroyTexture(tex)

	reader := tex.(compositor.LevelReader)
	got, err := reader.ReadLevel(2)
	if err != nil {
		t.Fatalf("ReadLevel(2) error = %v", err)
	}
	if got.Width() != 25 || got.Height() != 7 {
		t.Errorf("ReadLevel(2) size = %dx%d, want 25x7", got.Width(), got.Height())
	}
	if got.Format() != image.FormatBGRA8 {
		t.Errorf("ReadLevel(2) format = %v, want %v", got.Format(), image.FormatBGRA8)
	}
	if _, err := reader.ReadLevel(7); err == nil {
		t.Error("ReadLevel(7): want out of range error")
	}
}

func TestCompositorOnDevice(t *testing.T) {
	dev := createNoopDevice(t)
	cfg := testConfig(t)

	assets, err := mip.NewGenerator(cfg, mip.DefaultLoader("")).Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	queue, err := compositor.NewDrawableQueue(dev, cfg)
	if err != nil {
		t.Fatalf("NewDrawableQueue() error = %v", err)
	}
	defer queue.Close()
	if got := dev.Textures(); got != cfg.MaxBuffersInFlight {
		t.Errorf("Textures() = %d, want %d", got, cfg.MaxBuffersInFlight)
	}

	p := &releasingPresenter{}
	comp := compositor.New(cfg, dev, queue, assets, p)
	for range 5 {
		frame, err := comp.Render(context.Background(), placement.Result{})
		if err != nil {
			t.Fatalf("Render() error = %v", err)
		}
		if frame.Levels != cfg.LevelCount() {
			t.Errorf("frame.Levels = %d, want %d", frame.Levels, cfg.LevelCount())
		}
	}
	if p.presented != 5 {
		t.Errorf("presented = %d, want 5", p.presented)
	}
	if got := queue.Outstanding(); got != 0 {
		t.Errorf("Outstanding() = %d, want 0", got)
	}
}

func TestSurfaceMaterial(t *testing.T) {
	dev := createNoopDevice(t)
	m := &material.Material{Name: "mono_bilinear", Filter: config.FilterBilinear, SPIRV: []uint32{0x07230203}}

	sm, err := dev.CreateSurfaceMaterial(m, config.PixelFormatBGRA8UnormSRGB)
	if err != nil {
		t.Fatalf("CreateSurfaceMaterial() error = %v", err)
	}
	if !sm.ShowsPlaceholder() {
		t.Error("new material should show the placeholder")
	}
	if w, h := sm.Bound().Size(); w != 1 || h != 1 {
		t.Errorf("placeholder size = %dx%d, want 1x1", w, h)
	}

	tex, err := dev.CreateTexture(compositor.TextureDesc{Label: "d", Width: 8, Height: 8, LevelCount: 4, Format: config.PixelFormatBGRA8UnormSRGB})
	if err != nil {
		t.Fatal(err)
	}
	sm.Bind(tex)
	if sm.ShowsPlaceholder() {
		t.Error("material still shows the placeholder after Bind")
	}
	sm.Destroy()
	dev.DestroyTexture(tex)
	if got := dev.Textures(); got != 0 {
		t.Errorf("Textures() after destroy = %d, want 0", got)
	}
}

func TestBackendRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendWGPU) {
		t.Error("wgpu backend should register on import")
	}
}

func TestBackendAttachSurface(t *testing.T) {
	b := NewBackend(createNoopDevice(t))
	m := &material.Material{Name: "mono_nearest", Filter: config.FilterNearest, SPIRV: []uint32{0x07230203}}
	s, err := host.NewSurface(m, config.PixelFormatRGBA8Unorm.ImageFormat())
	if err != nil {
		t.Fatal(err)
	}

	if err := b.AttachSurface(s, config.PixelFormatRGBA8Unorm); err != nil {
		t.Fatalf("AttachSurface() error = %v", err)
	}
	if err := b.AttachSurface(s, config.PixelFormatRGBA8Unorm); !errors.Is(err, material.ErrShaderSetup) {
		t.Errorf("second AttachSurface() error = %v, want ErrShaderSetup", err)
	}
	sm := b.SurfaceMaterial()
	if !sm.ShowsPlaceholder() {
		t.Error("attached material should show the placeholder")
	}

	cfg := testConfig(t)
	queue, err := compositor.NewDrawableQueue(b.Device(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	d, err := queue.Next(context.Background(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Present(d, placement.Result{}); err != nil {
		t.Fatal(err)
	}
	if sm.Bound() != d.Texture() {
		t.Error("material not bound to the presented drawable")
	}
	if err := queue.Close(); err != nil {
		t.Errorf("queue.Close() error = %v", err)
	}
	b.Close()
}

// windowProvider is a host window's device provider exposing HAL handles.
type windowProvider struct {
	device hal.Device
	queue  hal.Queue
}

func (p windowProvider) Device() gpucontext.Device { return p.device }
func (p windowProvider) Queue() gpucontext.Queue   { return p.queue }
func (windowProvider) Adapter() gpucontext.Adapter { return nil }
func (p windowProvider) HalDevice() any            { return p.device }
func (p windowProvider) HalQueue() any             { return p.queue }
func (windowProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "noop"}
}
func (windowProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

// opaqueProvider hides its HAL handles.
type opaqueProvider struct{ windowProvider }

func (opaqueProvider) HalDevice() {}

func TestOpenSharedDevice(t *testing.T) {
	dev := createNoopDevice(t)
	hd, hq := dev.HAL()
	provider := windowProvider{device: hd, queue: hq}

	b, err := backend.OpenShared(provider)
	if err != nil {
		t.Fatalf("OpenShared() error = %v", err)
	}
	if b.Name() != backend.BackendWGPU {
		t.Fatalf("Name() = %q, want %q", b.Name(), backend.BackendWGPU)
	}
	shared, ok := b.Device().(*Device)
	if !ok {
		t.Fatalf("Device() = %T, want *Device", b.Device())
	}
	if shared.Adapter() != "noop" {
		t.Errorf("Adapter() = %q, want noop", shared.Adapter())
	}
	if d, q := shared.HAL(); d != hd || q != hq {
		t.Error("shared device does not use the provider's HAL handles")
	}

	queue, err := compositor.NewDrawableQueue(b.Device(), testConfig(t))
	if err != nil {
		t.Fatalf("NewDrawableQueue() error = %v", err)
	}
	if err := queue.Close(); err != nil {
		t.Errorf("queue.Close() error = %v", err)
	}
	b.Close()

	// The provider still owns the device after Close.
	if _, err := dev.CreateTexture(compositor.TextureDesc{Label: "after", Width: 4, Height: 4, LevelCount: 1}); err != nil {
		t.Errorf("CreateTexture() after shared Close error = %v", err)
	}
}

func TestFromProviderRejectsOpaque(t *testing.T) {
	dev := createNoopDevice(t)
	hd, hq := dev.HAL()
	if _, err := FromProvider(opaqueProvider{windowProvider{device: hd, queue: hq}}); !errors.Is(err, compositor.ErrDevice) {
		t.Errorf("FromProvider() error = %v, want ErrDevice", err)
	}
}
