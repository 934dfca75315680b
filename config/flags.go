// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"flag"
	"time"
)

// Flags holds command-line overrides. A nil field was not given on the
// command line and leaves the file or default value in place.
type Flags struct {
	Width, Height   *int
	Scale           *float64
	FullFOV         *bool
	DepthInches     *float64
	DiagonalInches  *float64
	Headlock        *HeadlockMode
	Filter          *FilterMethod
	ColorMipLevels  *bool
	OnlyColors      *bool
	MipChain        *bool
	ColorStart      *int
	PixelFormat     *PixelFormat
	MaxBuffers      *int
	DrawableTimeout *time.Duration
	Lookahead       *float64
	TestImage       *string
	AssetDir        *string
}

// Resolve applies the non-nil flags to o. Turning on full-FOV also selects
// the full-FOV render size unless width, height or scale were given.
func (o *Options) Resolve(f Flags) {
	if f.FullFOV != nil {
		if *f.FullFOV {
			o.UseFullFOV()
		} else {
			o.FullFOV = false
		}
	}
	setIf(&o.Width, f.Width)
	setIf(&o.Height, f.Height)
	setIf(&o.Scale, f.Scale)
	if f.DepthInches != nil {
		o.DepthMeters = *f.DepthInches * Inch
	}
	if f.DiagonalInches != nil {
		o.DiagonalMeters = *f.DiagonalInches * Inch
	}
	setIf(&o.Headlock, f.Headlock)
	setIf(&o.Filter, f.Filter)
	setIf(&o.ColorMipLevels, f.ColorMipLevels)
	setIf(&o.OnlyColors, f.OnlyColors)
	setIf(&o.MipChain, f.MipChain)
	setIf(&o.ColorMipLevelStart, f.ColorStart)
	setIf(&o.PixelFormat, f.PixelFormat)
	setIf(&o.MaxBuffersInFlight, f.MaxBuffers)
	if f.DrawableTimeout != nil {
		o.DrawableTimeout = Duration(*f.DrawableTimeout)
	}
	setIf(&o.LookaheadFactor, f.Lookahead)
	setIf(&o.TestImage, f.TestImage)
	setIf(&o.AssetDir, f.AssetDir)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Register defines the render flags on fs. The returned function, called
// after fs.Parse, yields Flags holding only the flags that were set.
func Register(fs *flag.FlagSet) func() Flags {
	d := Default()
	var (
		width      = fs.Int("width", d.Width, "render width before scale")
		height     = fs.Int("height", d.Height, "render height before scale")
		scale      = fs.Float64("scale", d.Scale, "render scale factor")
		fullFOV    = fs.Bool("full-fov", false, "render the full field of view")
		depth      = fs.Float64("depth", d.DepthMeters/Inch, "screen distance in inches")
		diagonal   = fs.Float64("diagonal", d.DiagonalMeters/Inch, "screen diagonal in inches")
		colorMips  = fs.Bool("color-mips", d.ColorMipLevels, "fill mip levels with solid colors")
		onlyColors = fs.Bool("only-colors", d.OnlyColors, "use colors for every mip level")
		mipChain   = fs.Bool("mip-chain", d.MipChain, "allocate a full mip chain")
		colorStart = fs.Int("color-start", d.ColorMipLevelStart, "first color mip level")
		maxBuffers = fs.Int("buffers", d.MaxBuffersInFlight, "drawables in flight")
		timeout    = fs.Duration("drawable-timeout", time.Duration(d.DrawableTimeout), "drawable acquisition timeout")
		lookahead  = fs.Float64("lookahead", d.LookaheadFactor, "pose prediction lookahead in refresh intervals")
		testImage  = fs.String("image", d.TestImage, "test image: asset name in -assets, or builtin:clarity / builtin:grid")
		assetDir   = fs.String("assets", d.AssetDir, "test image directory")
	)
	headlock := d.Headlock
	fs.TextVar(&headlock, "headlock", d.Headlock, "headlock mode: full, yawOnly, none")
	filter := d.Filter
	fs.TextVar(&filter, "filter", d.Filter, "filter: nearest, bilinear, bicubic")
	format := d.PixelFormat
	fs.TextVar(&format, "format", d.PixelFormat, "drawable format: bgra8_srgb, bgra8, rgba8_srgb, rgba8")

	return func() Flags {
		var f Flags
		fs.Visit(func(fl *flag.Flag) {
			switch fl.Name {
			case "width":
				f.Width = width
			case "height":
				f.Height = height
			case "scale":
				f.Scale = scale
			case "full-fov":
				f.FullFOV = fullFOV
			case "depth":
				f.DepthInches = depth
			case "diagonal":
				f.DiagonalInches = diagonal
			case "headlock":
				f.Headlock = &headlock
			case "filter":
				f.Filter = &filter
			case "color-mips":
				f.ColorMipLevels = colorMips
			case "only-colors":
				f.OnlyColors = onlyColors
			case "mip-chain":
				f.MipChain = mipChain
			case "color-start":
				f.ColorStart = colorStart
			case "format":
				f.PixelFormat = &format
			case "buffers":
				f.MaxBuffers = maxBuffers
			case "drawable-timeout":
				f.DrawableTimeout = timeout
			case "lookahead":
				f.Lookahead = lookahead
			case "image":
				f.TestImage = testImage
			case "assets":
				f.AssetDir = assetDir
			}
		})
		return f
	}
}
