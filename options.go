// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package vrrbench

import (
	"github.com/gogpu/vrrbench/anchors"
	"github.com/gogpu/vrrbench/compositor"
	"github.com/gogpu/vrrbench/host"
	"github.com/gogpu/vrrbench/journal"
	"github.com/gogpu/vrrbench/mip"
	"github.com/gogpu/vrrbench/placement"
	"github.com/gogpu/vrrbench/pose"
	"github.com/gogpu/vrrbench/sim"
	"github.com/gogpu/vrrbench/tracking"
)

// Option configures a System during creation.
//
// Example:
//
//	// Software device, static pose, builtin test pattern
//	sys, err := vrrbench.New(ctx, cfg)
//
//	// GPU device and a scripted head sweep
//	sys, err := vrrbench.New(ctx, cfg,
//	    vrrbench.WithDevice(gpuDevice),
//	    vrrbench.WithPoseSource(sim.NewPoseSource(sim.YawSweep, 1)))
type Option func(*options)

// options holds optional configuration for System creation.
type options struct {
	poseSource pose.Source
	device     compositor.Device
	presenter  compositor.Presenter
	loader     mip.Loader
	authorizer tracking.Authorizer
	runner     tracking.Runner
	planes     <-chan anchors.Update
	journal    *journal.Journal
	label      string
	tangents   placement.Tangents
	signals    host.Signals
}

// defaultOptions returns the options used for anything not set.
func defaultOptions() options {
	return options{
		poseSource: sim.NewPoseSource(sim.Static, 1),
		device:     nil, // Will be set to a SoftwareDevice if nil
		loader:     nil, // Will be set to mip.DefaultLoader(cfg.AssetDir) if nil
		authorizer: sim.AllowAll(),
		runner:     &sim.Runner{},
		signals:    host.LogSignals{},
		label:      "vrrbench",
	}
}

// WithPoseSource sets where head poses come from.
func WithPoseSource(src pose.Source) Option {
	return func(o *options) {
		o.poseSource = src
	}
}

// WithDevice sets the device drawables are allocated on and copied with.
// The default is a compositor.SoftwareDevice.
//
// For the GPU path, see backend/wgpu.
func WithDevice(dev compositor.Device) Option {
	return func(o *options) {
		o.device = dev
	}
}

// WithPresenter replaces the host surface as the compositor's presenter.
// System.Surface returns nil when a presenter is set.
func WithPresenter(p compositor.Presenter) Option {
	return func(o *options) {
		o.presenter = p
	}
}

// WithLoader sets how the test image is loaded.
func WithLoader(l mip.Loader) Option {
	return func(o *options) {
		o.loader = l
	}
}

// WithTracking sets the platform authorization and session runner.
func WithTracking(auth tracking.Authorizer, runner tracking.Runner) Option {
	return func(o *options) {
		o.authorizer = auth
		o.runner = runner
	}
}

// WithPlanes sets the plane anchor stream. It is consumed only when plane
// detection is running.
func WithPlanes(updates <-chan anchors.Update) Option {
	return func(o *options) {
		o.planes = updates
	}
}

// WithJournal records every frame into j under a new session with label.
// The caller keeps ownership of j.
func WithJournal(j *journal.Journal, label string) Option {
	return func(o *options) {
		o.journal = j
		if label != "" {
			o.label = label
		}
	}
}

// WithTangents sets the view tangents used for full-FOV placement.
func WithTangents(t placement.Tangents) Option {
	return func(o *options) {
		o.tangents = t
	}
}

// WithSignals sets the receiver of window and immersive space signals.
func WithSignals(s host.Signals) Option {
	return func(o *options) {
		o.signals = s
	}
}
