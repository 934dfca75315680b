// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/vrrbench/internal/logging"
)

// ErrNilProvider is returned by OpenShared for a nil provider.
var ErrNilProvider = errors.New("backend: nil device provider")

// Factory opens a backend.
type Factory func() (Backend, error)

// SharedFactory opens a backend on a device owned by a host application.
type SharedFactory func(provider gpucontext.DeviceProvider) (Backend, error)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	shared     = make(map[string]SharedFactory)
	// Priority order for Default (first that opens wins).
	backendPriority = []string{BackendWGPU, BackendSoftware}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// RegisterShared registers a factory that can run on a host-provided
// device. Backends that only own their device do not register one.
func RegisterShared(name string, factory SharedFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	shared[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
	delete(shared, name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Open opens the named backend. BackendAuto selects with Default.
func Open(name string) (Backend, error) {
	if name == BackendAuto {
		return Default()
	}

	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (have %v)", ErrBackendNotAvailable, name, Available())
	}
	b, err := factory()
	if err != nil {
		return nil, fmt.Errorf("backend: open %s: %w", name, err)
	}
	logging.Logger().Info("backend: opened", "name", b.Name())
	return b, nil
}

// Default opens the best backend by priority, falling back past backends
// that fail to open. Registered backends outside the priority list are
// tried last, by name.
func Default() (Backend, error) {
	registryMu.RLock()
	var rest []string
	for name := range backends {
		if !slices.Contains(backendPriority, name) {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	order := append(slices.Clone(backendPriority), rest...)
	factories := make([]Factory, len(order))
	for i, name := range order {
		factories[i] = backends[name]
	}
	registryMu.RUnlock()

	for i, factory := range factories {
		if factory == nil {
			continue
		}
		b, err := factory()
		if err != nil {
			logging.Logger().Warn("backend: unavailable, falling back", "name", order[i], "err", err)
			continue
		}
		logging.Logger().Info("backend: opened", "name", b.Name())
		return b, nil
	}
	return nil, ErrBackendNotAvailable
}

// OpenShared opens a backend on the device of provider, typically the
// window of a gogpu application embedding the bench. Shared backends are
// tried in priority order; Close leaves the provider's device alive.
func OpenShared(provider gpucontext.DeviceProvider) (Backend, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	registryMu.RLock()
	var names []string
	for _, name := range backendPriority {
		if shared[name] != nil {
			names = append(names, name)
		}
	}
	var rest []string
	for name := range shared {
		if !slices.Contains(backendPriority, name) {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	names = append(names, rest...)
	factories := make([]SharedFactory, len(names))
	for i, name := range names {
		factories[i] = shared[name]
	}
	registryMu.RUnlock()

	info := provider.AdapterInfo()
	var errs []error
	for i, factory := range factories {
		b, err := factory(provider)
		if err != nil {
			logging.Logger().Warn("backend: cannot share device", "name", names[i], "adapter", info.Name, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", names[i], err))
			continue
		}
		logging.Logger().Info("backend: opened on shared device", "name", b.Name(), "adapter", info.Name)
		return b, nil
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%w: no backend can share a device", ErrBackendNotAvailable)
	}
	return nil, fmt.Errorf("%w: %w", ErrBackendNotAvailable, errors.Join(errs...))
}
