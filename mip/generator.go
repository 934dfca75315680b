// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package mip builds the static textures copied into every drawable: one
// solid-color fill per mip level and the mip chain of the test image.
//
// Assets are built once at startup and shared read-only by the compositor
// for the life of the process.
package mip

import (
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/internal/image"
	"github.com/gogpu/vrrbench/internal/logging"
)

// MinColorLevels is the number of color levels always built, enough for a
// 32768-pixel base.
const MinColorLevels = 16

// BaseImage is the decoded test image at render size with its mip chain.
type BaseImage struct {
	Name  string
	chain *image.MipmapChain
}

// Level returns mip level i, or nil past the end of the chain.
func (b *BaseImage) Level(i int) *image.ImageBuf { return b.chain.Level(i) }

// NumLevels returns the chain length.
func (b *BaseImage) NumLevels() int { return b.chain.NumLevels() }

// Assets are the immutable per-process texture sources.
type Assets struct {
	Format image.Format
	Colors []LevelTexture
	Base   *BaseImage
}

// ColorLevel returns the solid fill for level i.
func (a *Assets) ColorLevel(i int) *image.ImageBuf {
	if i < 0 || i >= len(a.Colors) {
		return nil
	}
	return a.Colors[i].Pixels
}

// BaseLevel returns level i of the test image.
func (a *Assets) BaseLevel(i int) *image.ImageBuf {
	return a.Base.Level(i)
}

// Generator builds Assets for a render configuration.
type Generator struct {
	cfg    config.RenderConfig
	loader Loader
}

// NewGenerator returns a generator loading the test image through loader.
func NewGenerator(cfg config.RenderConfig, loader Loader) *Generator {
	return &Generator{cfg: cfg, loader: loader}
}

// DefaultLoader resolves "builtin:" names in-process and every other name
// in dir. Without dir only builtin patterns load.
func DefaultLoader(dir string) Loader {
	if dir == "" {
		return BuiltinLoader{}
	}
	return MultiLoader{BuiltinLoader{}, FSLoader{FS: os.DirFS(dir)}}
}

// Build produces the color levels and the test image chain. Output is
// deterministic for a given configuration and image. Errors wrap
// ErrAssetLoad.
func (g *Generator) Build() (*Assets, error) {
	f := g.cfg.ImageFormat()
	n := max(MinColorLevels, g.cfg.LevelCount())

	a := &Assets{Format: f, Colors: make([]LevelTexture, n)}

	// The test image loads while the color levels fill; each job writes
	// only its own slot.
	var eg errgroup.Group
	eg.SetLimit(runtime.GOMAXPROCS(0))
	var base *BaseImage
	eg.Go(func() error {
		b, err := g.loadBase(f)
		base = b
		return err
	})
	for i := range n {
		eg.Go(func() error {
			lt, err := NewLevelTexture(i, g.cfg.Width, g.cfg.Height, f)
			if err != nil {
				return fmt.Errorf("%w: color level %d: %w", ErrAssetLoad, i, err)
			}
			a.Colors[i] = lt
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	a.Base = base

	logging.Logger().Info("mip: assets built",
		"image", g.cfg.TestImage, "size", fmt.Sprintf("%dx%d", g.cfg.Width, g.cfg.Height),
		"colorLevels", n, "baseLevels", base.NumLevels(), "format", f)
	return a, nil
}

func (g *Generator) loadBase(f image.Format) (*BaseImage, error) {
	img, err := g.loader.LoadImage(g.cfg.TestImage, f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAssetLoad, g.cfg.TestImage, err)
	}
	if img.Width() != g.cfg.Width || img.Height() != g.cfg.Height {
		logging.Logger().Warn("mip: resampling test image to render size",
			"image", g.cfg.TestImage,
			"from", fmt.Sprintf("%dx%d", img.Width(), img.Height()),
			"to", fmt.Sprintf("%dx%d", g.cfg.Width, g.cfg.Height),
			"kernel", g.cfg.Filter.Kernel())
		img, err = image.Resample(img, g.cfg.Width, g.cfg.Height, g.cfg.Filter.Kernel())
		if err != nil {
			return nil, fmt.Errorf("%w: resample: %w", ErrAssetLoad, err)
		}
	}
	return &BaseImage{Name: g.cfg.TestImage, chain: image.GenerateMipmaps(img)}, nil
}
