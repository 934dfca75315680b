// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package image

import (
	stdimage "image"

	"golang.org/x/image/draw"
)

// Kernel selects the resampling filter.
type Kernel uint8

const (
	KernelNearest Kernel = iota
	KernelBilinear
	KernelBicubic
)

// Scaler returns the x/image/draw scaler for k.
func (k Kernel) Scaler() draw.Scaler {
	switch k {
	case KernelNearest:
		return draw.NearestNeighbor
	case KernelBilinear:
		return draw.ApproxBiLinear
	default:
		return draw.CatmullRom
	}
}

// String returns the kernel name.
func (k Kernel) String() string {
	switch k {
	case KernelNearest:
		return "nearest"
	case KernelBilinear:
		return "bilinear"
	case KernelBicubic:
		return "bicubic"
	default:
		return "unknown"
	}
}

// Resample scales src to width x height with kernel k. The result keeps
// src's format. If the size already matches, src is cloned.
func Resample(src *ImageBuf, width, height int, k Kernel) (*ImageBuf, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if src.Width() == width && src.Height() == height {
		return src.Clone(), nil
	}
	dst := stdimage.NewNRGBA(stdimage.Rect(0, 0, width, height))
	s := src.ToStdImage()
	k.Scaler().Scale(dst, dst.Bounds(), s, s.Bounds(), draw.Src, nil)
	return FromStdImage(dst, src.Format())
}
