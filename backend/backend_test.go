// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/vrrbench/compositor"
	"github.com/gogpu/vrrbench/config"
)

func TestSoftwareBackendName(t *testing.T) {
	b := NewSoftwareBackend()
	if b.Name() != "software" {
		t.Errorf("Name() = %q, want %q", b.Name(), "software")
	}
}

func TestSoftwareBackendDevice(t *testing.T) {
	b := NewSoftwareBackend()
	defer b.Close()

	tex, err := b.Device().CreateTexture(compositor.TextureDesc{
		Label: "t", Width: 16, Height: 8, LevelCount: 5, Format: config.PixelFormatRGBA8Unorm,
	})
	if err != nil {
		t.Fatalf("CreateTexture() error = %v", err)
	}
	if w, h := tex.Size(); w != 16 || h != 8 {
		t.Errorf("Size() = %dx%d, want 16x8", w, h)
	}
	b.Device().DestroyTexture(tex)
	if err := b.AttachSurface(nil, config.PixelFormatRGBA8Unorm); err != nil {
		t.Errorf("AttachSurface() error = %v", err)
	}
}

func TestRegistryOpen(t *testing.T) {
	// Software backend is auto-registered via init()
	if !IsRegistered("software") {
		t.Error("software backend should be auto-registered")
	}

	b, err := Open("software")
	if err != nil {
		t.Fatalf("Open(software) error = %v", err)
	}
	defer b.Close()
	if b.Name() != "software" {
		t.Errorf("Open(software).Name() = %q, want %q", b.Name(), "software")
	}
}

func TestRegistryOpenUnregistered(t *testing.T) {
	_, err := Open("nonexistent")
	if !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open(nonexistent) error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestRegistryAvailable(t *testing.T) {
	Register("aaa-test", func() (Backend, error) { return NewSoftwareBackend(), nil })
	t.Cleanup(func() { Unregister("aaa-test") })

	available := Available()
	if !slices.Contains(available, "software") {
		t.Error("Available() should include 'software'")
	}
	if !slices.IsSorted(available) {
		t.Errorf("Available() = %v, want sorted", available)
	}
}

// namedBackend is a software backend reporting another name.
type namedBackend struct {
	*SoftwareBackend
	name string
}

func (b namedBackend) Name() string { return b.name }

func TestRegistryDefaultFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		factory Factory
		want    string
	}{
		{
			name:    "gpu opens",
			factory: func() (Backend, error) { return namedBackend{NewSoftwareBackend(), BackendWGPU}, nil },
			want:    BackendWGPU,
		},
		{
			name:    "gpu fails",
			factory: func() (Backend, error) { return nil, errors.New("no vulkan adapter") },
			want:    BackendSoftware,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if IsRegistered(BackendWGPU) {
				t.Skip("a real wgpu backend is registered")
			}
			Register(BackendWGPU, tt.factory)
			t.Cleanup(func() { Unregister(BackendWGPU) })

			b, err := Open(BackendAuto)
			if err != nil {
				t.Fatalf("Open(auto) error = %v", err)
			}
			defer b.Close()
			if b.Name() != tt.want {
				t.Errorf("Open(auto).Name() = %q, want %q", b.Name(), tt.want)
			}
		})
	}
}

func TestRegistryOpenFactoryError(t *testing.T) {
	cause := errors.New("broken")
	Register("broken-test", func() (Backend, error) { return nil, cause })
	t.Cleanup(func() { Unregister("broken-test") })

	if _, err := Open("broken-test"); !errors.Is(err, cause) {
		t.Errorf("Open(broken-test) error = %v, want wrapping %v", err, cause)
	}
}

func TestRegistryUnregister(t *testing.T) {
	Register("test-backend", func() (Backend, error) { return NewSoftwareBackend(), nil })

	if !IsRegistered("test-backend") {
		t.Error("test-backend should be registered")
	}

	Unregister("test-backend")

	if IsRegistered("test-backend") {
		t.Error("test-backend should be unregistered")
	}
}

// hostProvider stands in for a gogpu window's device provider.
type hostProvider struct{ name string }

func (hostProvider) Device() gpucontext.Device   { return nil }
func (hostProvider) Queue() gpucontext.Queue     { return nil }
func (hostProvider) Adapter() gpucontext.Adapter { return nil }
func (hostProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}
func (p hostProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: p.name}
}

func TestOpenSharedNilProvider(t *testing.T) {
	if _, err := OpenShared(nil); !errors.Is(err, ErrNilProvider) {
		t.Errorf("OpenShared(nil) error = %v, want ErrNilProvider", err)
	}
}

func TestOpenShared(t *testing.T) {
	const extra = "test-shared"
	var got gpucontext.DeviceProvider
	RegisterShared(extra, func(p gpucontext.DeviceProvider) (Backend, error) {
		got = p
		return namedBackend{NewSoftwareBackend(), extra}, nil
	})
	t.Cleanup(func() { Unregister(extra) })

	provider := hostProvider{name: "host gpu"}
	b, err := OpenShared(provider)
	if err != nil {
		t.Fatalf("OpenShared() error = %v", err)
	}
	defer b.Close()
	if !IsRegistered(BackendWGPU) && b.Name() != extra {
		t.Errorf("Name() = %q, want %q", b.Name(), extra)
	}
	if b.Name() == extra && got != provider {
		t.Error("factory did not receive the provider")
	}
}

func TestOpenSharedFallsBack(t *testing.T) {
	const failing, working = "test-shared-a", "test-shared-b"
	RegisterShared(failing, func(gpucontext.DeviceProvider) (Backend, error) {
		return nil, errors.New("provider does not expose HAL types")
	})
	RegisterShared(working, func(gpucontext.DeviceProvider) (Backend, error) {
		return namedBackend{NewSoftwareBackend(), working}, nil
	})
	t.Cleanup(func() {
		Unregister(failing)
		Unregister(working)
	})

	b, err := OpenShared(hostProvider{})
	if err != nil {
		t.Fatalf("OpenShared() error = %v", err)
	}
	defer b.Close()
	if !IsRegistered(BackendWGPU) && b.Name() != working {
		t.Errorf("Name() = %q, want %q", b.Name(), working)
	}

	Unregister(working)
	if IsRegistered(BackendWGPU) {
		return
	}
	if _, err := OpenShared(hostProvider{}); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("OpenShared() with only a failing factory error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestOpenSharedNoFactories(t *testing.T) {
	registryMu.RLock()
	n := len(shared)
	registryMu.RUnlock()
	if n > 0 {
		t.Skip("shared backends are registered")
	}
	if _, err := OpenShared(hostProvider{}); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("OpenShared() error = %v, want ErrBackendNotAvailable", err)
	}
}
