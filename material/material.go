// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package material holds the surface shaders, one per filtering method, and
// a CPU sampler that previews what the surface shows at a given size.
package material

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"

	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/internal/image"
)

// ErrShaderSetup is returned when a surface material cannot be compiled or
// created. It is fatal at startup.
var ErrShaderSetup = errors.New("material: shader setup failed")

//go:embed shaders/quad.wgsl
var quadWGSL string

//go:embed shaders/mono_sampled.wgsl
var sampledWGSL string

//go:embed shaders/mono_bicubic.wgsl
var bicubicWGSL string

// Entry points shared by every material.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// Material is a compiled surface shader.
type Material struct {
	Name   string
	Filter config.FilterMethod
	Source string
	SPIRV  []uint32
}

// Name returns the material name for a filtering method.
func Name(f config.FilterMethod) string {
	switch f {
	case config.FilterNearest:
		return "mono_nearest"
	case config.FilterBilinear:
		return "mono_bilinear"
	default:
		return "mono_bicubic"
	}
}

// Source returns the WGSL for a filtering method.
func Source(f config.FilterMethod) string {
	if f == config.FilterBicubic {
		return quadWGSL + "\n" + bicubicWGSL
	}
	return quadWGSL + "\n" + sampledWGSL
}

// Compile translates the material for f to SPIR-V. Errors wrap
// ErrShaderSetup.
func Compile(f config.FilterMethod) (*Material, error) {
	src := Source(f)
	spirvBytes, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrShaderSetup, Name(f), err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("%w: %s: SPIR-V length %d not word aligned", ErrShaderSetup, Name(f), len(spirvBytes))
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return &Material{Name: Name(f), Filter: f, Source: src, SPIRV: words}, nil
}

// SamplerFilter returns the texture filter the material's sampler uses.
// Bicubic reads texels directly and keeps a nearest sampler bound.
func (m *Material) SamplerFilter() gputypes.FilterMode {
	if m.Filter == config.FilterBilinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

// Placeholder returns the opaque black 1x1 texel bound to the surface until
// the first drawable is presented.
func Placeholder(f image.Format) (*image.ImageBuf, error) {
	buf, err := image.NewImageBuf(1, 1, f)
	if err != nil {
		return nil, fmt.Errorf("%w: placeholder: %w", ErrShaderSetup, err)
	}
	buf.Fill(0, 0, 0, 255)
	return buf, nil
}
