// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package cache provides a small generic LRU cache.
//
//	c := cache.New[key, *image.ImageBuf](32)
//	c.Set(k, buf)
//	buf, ok := c.Get(k)
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
