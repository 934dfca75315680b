// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package sim

import (
	"context"
	"slices"
	"sync"

	"github.com/gogpu/vrrbench/tracking"
)

// Authorizer answers every request with fixed statuses.
type Authorizer struct {
	Status map[tracking.Kind]tracking.Status
	Err    error
}

// AllowAll authorizes every kind.
func AllowAll() *Authorizer {
	return &Authorizer{Status: map[tracking.Kind]tracking.Status{
		tracking.KindHandTracking: tracking.StatusAllowed,
		tracking.KindWorldSensing: tracking.StatusAllowed,
	}}
}

// DenyAll denies every kind.
func DenyAll() *Authorizer {
	return &Authorizer{Status: map[tracking.Kind]tracking.Status{
		tracking.KindHandTracking: tracking.StatusDenied,
		tracking.KindWorldSensing: tracking.StatusDenied,
	}}
}

// RequestAuthorization implements tracking.Authorizer.
func (a *Authorizer) RequestAuthorization(_ context.Context, kinds []tracking.Kind) (map[tracking.Kind]tracking.Status, error) {
	if a.Err != nil {
		return nil, a.Err
	}
	out := make(map[tracking.Kind]tracking.Status, len(kinds))
	for _, k := range kinds {
		out[k] = a.Status[k]
	}
	return out, nil
}

// Runner records the providers it was asked to run.
type Runner struct {
	Err error

	mu      sync.Mutex
	running []tracking.Provider
}

// Run implements tracking.Runner.
func (r *Runner) Run(_ context.Context, providers []tracking.Provider) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	r.running = slices.Clone(providers)
	r.mu.Unlock()
	return nil
}

// Running returns the providers of the last successful Run.
func (r *Runner) Running() []tracking.Provider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.running)
}
