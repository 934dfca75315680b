// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

package main

// Register the Vulkan backend.
import _ "github.com/gogpu/vrrbench/backend/wgpu"
