// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package image

// Format represents the byte order of a 32-bit texel.
//
// Only the two orders a drawable can carry are supported. A buffer in the
// drawable's format can be copied into a texture level byte for byte.
type Format uint8

const (
	// FormatRGBA8 stores red, green, blue, alpha (4 bytes per pixel).
	FormatRGBA8 Format = iota

	// FormatBGRA8 stores blue, green, red, alpha (4 bytes per pixel).
	// The default swapchain order on most desktop GPUs.
	FormatBGRA8

	formatCount
)

// BytesPerPixel returns 4 for every valid format and 0 otherwise.
func (f Format) BytesPerPixel() int {
	if !f.IsValid() {
		return 0
	}
	return 4
}

// IsValid reports whether f is a known format.
func (f Format) IsValid() bool {
	return f < formatCount
}

// RowBytes returns the number of bytes in a tightly packed row.
func (f Format) RowBytes(width int) int {
	return width * f.BytesPerPixel()
}

// ImageBytes returns the number of bytes for a tightly packed image.
func (f Format) ImageBytes(width, height int) int {
	return f.RowBytes(width) * height
}

// Encode writes r, g, b, a into px (len >= 4) in this format's order.
func (f Format) Encode(px []byte, r, g, b, a uint8) {
	switch f {
	case FormatBGRA8:
		px[0], px[1], px[2], px[3] = b, g, r, a
	default:
		px[0], px[1], px[2], px[3] = r, g, b, a
	}
}

// Decode reads a texel from px in this format's order.
func (f Format) Decode(px []byte) (r, g, b, a uint8) {
	switch f {
	case FormatBGRA8:
		return px[2], px[1], px[0], px[3]
	default:
		return px[0], px[1], px[2], px[3]
	}
}

// String returns a human-readable name for the format.
func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatBGRA8:
		return "BGRA8"
	default:
		return "Unknown"
	}
}
