// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vrrbench measures how clearly a head-mounted display resolves a
// virtual screen.
//
// # Overview
//
// Every display refresh, vrrbench predicts where the head will be, places a
// textured quad at a fixed distance in front of it, and writes a test
// pattern into the quad's texture. Mip level 0 holds the test image; each
// lower-resolution level holds a solid color (green, yellow, orange, red).
// The color seen on screen tells the viewer which mip level the sampler
// picked, and so how much detail survives at that distance and size.
//
// # Quick Start
//
//	cfg, err := config.New(config.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sys, err := vrrbench.New(ctx, cfg,
//	    vrrbench.WithPoseSource(sim.NewPoseSource(sim.YawSweep, 1)))
//	if err != nil {
//	    log.Fatal(err) // *vrrbench.StartupError names the failed stage
//	}
//	defer sys.Close()
//
//	err = sys.Run(ctx, host.Headless{Frames: 900})
//
// # Frame cycle
//
// Each tick runs pose prediction (pose), orientation filtering by headlock
// mode (pose.Filter), quad placement (placement) and the compositor cycle
// acquire, populate, submit, wait, present (compositor). The wait is a
// deliberate synchronous barrier: a frame's copies complete before it is
// presented, so the measured latency includes the GPU work.
//
// Dropped frames (no pose, no drawable, command buffer failure) are
// counted and logged at debug level; the loop continues. Startup failures
// (assets, shader material, device, tracking session) are returned from
// New as *StartupError before anything is shown.
//
// # Architecture
//
// The library is organized into:
//   - Configuration: config (HuJSON files, flags, validated RenderConfig)
//   - Per-frame core: pose, placement, compositor, mip
//   - Display: material (WGSL surface materials, CPU preview), host
//     (headless driver, surface, signals), host/window (ebiten preview)
//   - Devices: compositor.SoftwareDevice, backend/wgpu (Vulkan via HAL)
//   - Platform: tracking (authorization, providers), anchors (plane store)
//   - Measurement: journal (SQLite frame log, statistics, HTML report),
//     snapshot (mip level dumps)
//   - Simulation: sim (scripted poses, planes and authorization)
//
// # Logging
//
// vrrbench is silent by default. See SetLogger.
package vrrbench
