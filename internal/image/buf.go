// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package image provides the texel buffers behind test-pattern mip levels
// and drawable snapshots.
//
// An ImageBuf is a tightly packed 32-bit RGBA or BGRA buffer whose bytes can
// be uploaded to a texture level as-is.
package image

import (
	"bytes"
	"errors"
)

// Common errors for image operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrInvalidFormat is returned when the format is not recognized.
	ErrInvalidFormat = errors.New("image: invalid format")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("image: data buffer too small")

	// ErrOutOfBounds is returned when pixel coordinates are outside image bounds.
	ErrOutOfBounds = errors.New("image: coordinates out of bounds")
)

// ImageBuf is a contiguous texel buffer.
//
// Thread safety: ImageBuf is safe for concurrent reads. Writes require
// external synchronization; buffers shared between goroutines are treated
// as immutable once built.
type ImageBuf struct {
	data   []byte
	width  int
	height int
	stride int
	format Format
}

// NewImageBuf creates a zeroed buffer with the given dimensions and format.
func NewImageBuf(width, height int, format Format) (*ImageBuf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	stride := format.RowBytes(width)
	return &ImageBuf{
		data:   make([]byte, stride*height),
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

// FromRaw wraps existing tightly packed data without copying.
func FromRaw(data []byte, width, height int, format Format) (*ImageBuf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if !format.IsValid() {
		return nil, ErrInvalidFormat
	}
	stride := format.RowBytes(width)
	if len(data) < stride*height {
		return nil, ErrDataTooSmall
	}
	return &ImageBuf{
		data:   data[:stride*height],
		width:  width,
		height: height,
		stride: stride,
		format: format,
	}, nil
}

// Clone returns a deep copy.
func (b *ImageBuf) Clone() *ImageBuf {
	data := make([]byte, len(b.data))
	copy(data, b.data)
	return &ImageBuf{
		data:   data,
		width:  b.width,
		height: b.height,
		stride: b.stride,
		format: b.format,
	}
}

// Width returns the image width in pixels.
func (b *ImageBuf) Width() int { return b.width }

// Height returns the image height in pixels.
func (b *ImageBuf) Height() int { return b.height }

// Stride returns the number of bytes per row.
func (b *ImageBuf) Stride() int { return b.stride }

// Format returns the texel byte order.
func (b *ImageBuf) Format() Format { return b.format }

// Bounds returns width and height.
func (b *ImageBuf) Bounds() (int, int) { return b.width, b.height }

// Data returns the underlying bytes. Callers that mutate it own the buffer.
func (b *ImageBuf) Data() []byte { return b.data }

// ByteSize returns the total size of the pixel data.
func (b *ImageBuf) ByteSize() int { return len(b.data) }

// IsEmpty reports whether the buffer has no pixels.
func (b *ImageBuf) IsEmpty() bool {
	return b == nil || b.width == 0 || b.height == 0
}

// RowBytes returns the bytes of row y, or nil if y is out of range.
func (b *ImageBuf) RowBytes(y int) []byte {
	if y < 0 || y >= b.height {
		return nil
	}
	start := y * b.stride
	return b.data[start : start+b.format.RowBytes(b.width)]
}

// GetRGBA returns the color at (x, y). Out of range reads return zero.
func (b *ImageBuf) GetRGBA(x, y int) (r, g, bl, a uint8) {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return 0, 0, 0, 0
	}
	off := y*b.stride + x*4
	return b.format.Decode(b.data[off : off+4])
}

// SetRGBA writes the color at (x, y).
func (b *ImageBuf) SetRGBA(x, y int, r, g, bl, a uint8) error {
	if x < 0 || y < 0 || x >= b.width || y >= b.height {
		return ErrOutOfBounds
	}
	off := y*b.stride + x*4
	b.format.Encode(b.data[off:off+4], r, g, bl, a)
	return nil
}

// Clear sets all pixels to transparent black.
func (b *ImageBuf) Clear() {
	clear(b.data)
}

// Fill sets every pixel to the given color.
//
// The first row is encoded texel by texel and then replicated, so filling
// a 4K level costs one row of encoding.
func (b *ImageBuf) Fill(r, g, bl, a uint8) {
	row := b.RowBytes(0)
	for x := 0; x < len(row); x += 4 {
		b.format.Encode(row[x:x+4], r, g, bl, a)
	}
	for y := 1; y < b.height; y++ {
		copy(b.RowBytes(y), row)
	}
}

// Convert returns a copy of b in format f. If f matches, the copy is exact.
func (b *ImageBuf) Convert(f Format) (*ImageBuf, error) {
	if f == b.format {
		return b.Clone(), nil
	}
	dst, err := NewImageBuf(b.width, b.height, f)
	if err != nil {
		return nil, err
	}
	for y := range b.height {
		for x := range b.width {
			r, g, bl, a := b.GetRGBA(x, y)
			_ = dst.SetRGBA(x, y, r, g, bl, a)
		}
	}
	return dst, nil
}

// Equal reports whether two buffers have identical dimensions, format and
// bytes.
func (b *ImageBuf) Equal(o *ImageBuf) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.width == o.width && b.height == o.height &&
		b.format == o.format && bytes.Equal(b.data, o.data)
}
