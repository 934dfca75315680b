// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/vrrbench/internal/image"
)

// HeadlockMode selects how the virtual screen follows the head.
type HeadlockMode uint8

const (
	// HeadlockFull locks the screen to the full head rotation.
	HeadlockFull HeadlockMode = iota

	// HeadlockYawOnly follows heading only; pitch and roll are discarded.
	HeadlockYawOnly

	// HeadlockNone fixes the screen in the world.
	HeadlockNone
)

var headlockNames = [...]string{"full", "yawOnly", "none"}

func (m HeadlockMode) String() string {
	if int(m) < len(headlockNames) {
		return headlockNames[m]
	}
	return fmt.Sprintf("HeadlockMode(%d)", m)
}

// MarshalText implements encoding.TextMarshaler.
func (m HeadlockMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *HeadlockMode) UnmarshalText(b []byte) error {
	v, err := ParseHeadlockMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseHeadlockMode parses "full", "yawOnly" or "none".
func ParseHeadlockMode(s string) (HeadlockMode, error) {
	for i, n := range headlockNames {
		if n == s {
			return HeadlockMode(i), nil
		}
	}
	return 0, fmt.Errorf("%w: headlock %q", ErrInvalid, s)
}

// FilterMethod selects the texture filter of the surface material.
type FilterMethod uint8

const (
	FilterNearest FilterMethod = iota
	FilterBilinear
	FilterBicubic
)

var filterNames = [...]string{"nearest", "bilinear", "bicubic"}

func (f FilterMethod) String() string {
	if int(f) < len(filterNames) {
		return filterNames[f]
	}
	return fmt.Sprintf("FilterMethod(%d)", f)
}

// MarshalText implements encoding.TextMarshaler.
func (f FilterMethod) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *FilterMethod) UnmarshalText(b []byte) error {
	v, err := ParseFilterMethod(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// ParseFilterMethod parses "nearest", "bilinear" or "bicubic".
func ParseFilterMethod(s string) (FilterMethod, error) {
	for i, n := range filterNames {
		if n == s {
			return FilterMethod(i), nil
		}
	}
	return 0, fmt.Errorf("%w: filter %q", ErrInvalid, s)
}

// Kernel returns the CPU resampling kernel matching f.
func (f FilterMethod) Kernel() image.Kernel {
	switch f {
	case FilterNearest:
		return image.KernelNearest
	case FilterBilinear:
		return image.KernelBilinear
	default:
		return image.KernelBicubic
	}
}

// PixelFormat is the drawable texel format.
type PixelFormat uint8

const (
	PixelFormatBGRA8UnormSRGB PixelFormat = iota
	PixelFormatBGRA8Unorm
	PixelFormatRGBA8UnormSRGB
	PixelFormatRGBA8Unorm
)

var pixelFormatNames = [...]string{"bgra8_srgb", "bgra8", "rgba8_srgb", "rgba8"}

func (p PixelFormat) String() string {
	if int(p) < len(pixelFormatNames) {
		return pixelFormatNames[p]
	}
	return fmt.Sprintf("PixelFormat(%d)", p)
}

// MarshalText implements encoding.TextMarshaler.
func (p PixelFormat) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PixelFormat) UnmarshalText(b []byte) error {
	v, err := ParsePixelFormat(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePixelFormat parses one of bgra8_srgb, bgra8, rgba8_srgb, rgba8.
func ParsePixelFormat(s string) (PixelFormat, error) {
	for i, n := range pixelFormatNames {
		if n == s {
			return PixelFormat(i), nil
		}
	}
	return 0, fmt.Errorf("%w: pixel format %q", ErrInvalid, s)
}

// IsSRGB reports whether the format is tagged sRGB.
func (p PixelFormat) IsSRGB() bool {
	return p == PixelFormatBGRA8UnormSRGB || p == PixelFormatRGBA8UnormSRGB
}

// ImageFormat returns the CPU byte order for texels of this format.
func (p PixelFormat) ImageFormat() image.Format {
	switch p {
	case PixelFormatRGBA8Unorm, PixelFormatRGBA8UnormSRGB:
		return image.FormatRGBA8
	default:
		return image.FormatBGRA8
	}
}

// TextureFormat returns the GPU texture format. sRGB tagging is carried by
// the view, so both variants map to the Unorm storage format.
func (p PixelFormat) TextureFormat() gputypes.TextureFormat {
	if p.ImageFormat() == image.FormatRGBA8 {
		return gputypes.TextureFormatRGBA8Unorm
	}
	return gputypes.TextureFormatBGRA8Unorm
}
