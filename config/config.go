// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package config holds the render configuration of the bench.
//
// Options is the mutable input: defaults, overlaid by a HuJSON file, then by
// command-line flags. New validates Options and derives the immutable
// RenderConfig that every other package receives by value.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/tailscale/hujson"

	"github.com/gogpu/vrrbench/internal/image"
)

// ErrInvalid is returned, wrapped with the offending field, when Options
// fail validation.
var ErrInvalid = errors.New("config: invalid option")

// Inch is one inch in meters.
const Inch = 0.0254

// Render sizes of the two layouts. The full-FOV size is the per-eye panel
// plus the overscan the compositor crops.
const (
	CroppedWidth  = 1920
	CroppedHeight = 1080
	FullFOVWidth  = 1888 + 293
	FullFOVHeight = 1824 + 84
	FullFOVScale  = 2.5
)

// Test image names. The stock chart is not distributed with the module; it
// must be present in AssetDir when named. DefaultTestImage is drawn
// in-process.
const (
	StockTestImage   = "857a4-2020-kgontech-1920x1080-tuff-test-white-on-black"
	DefaultTestImage = "builtin:clarity"
)

// Duration is a time.Duration that reads and writes as "50ms" in JSON.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("%w: duration %q", ErrInvalid, b)
	}
	*d = Duration(v)
	return nil
}

// Options is the user-facing configuration.
type Options struct {
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Scale   float64 `json:"scale"`
	FullFOV bool    `json:"full_fov"`

	DepthMeters    float64 `json:"depth_m"`
	DiagonalMeters float64 `json:"diagonal_m"`
	ZNear          float64 `json:"z_near"`
	ZFar           float64 `json:"z_far"`

	Headlock HeadlockMode `json:"headlock"`
	Filter   FilterMethod `json:"filter"`

	ColorMipLevels     bool `json:"color_mip_levels"`
	OnlyColors         bool `json:"only_colors"`
	MipChain           bool `json:"mip_chain"`
	ColorMipLevelStart int  `json:"color_mip_level_start"`

	PixelFormat        PixelFormat `json:"pixel_format"`
	MaxBuffersInFlight int         `json:"max_buffers_in_flight"`
	DrawableTimeout    Duration    `json:"drawable_timeout"`
	LookaheadFactor    float64     `json:"lookahead_factor"`
	MaxPlanes          int         `json:"max_planes"`

	TestImage string `json:"test_image"`
	AssetDir  string `json:"asset_dir"`
}

// Default returns the cropped-layout defaults.
func Default() Options {
	return Options{
		Width:              CroppedWidth,
		Height:             CroppedHeight,
		Scale:              1,
		DepthMeters:        30 * Inch,
		DiagonalMeters:     28 * Inch,
		ZNear:              0.001,
		ZFar:               100,
		Headlock:           HeadlockYawOnly,
		Filter:             FilterBicubic,
		ColorMipLevels:     true,
		MipChain:           true,
		ColorMipLevelStart: 1,
		PixelFormat:        PixelFormatBGRA8UnormSRGB,
		MaxBuffersInFlight: 3,
		DrawableTimeout:    Duration(50 * time.Millisecond),
		LookaheadFactor:    4,
		MaxPlanes:          1024,
		TestImage:          DefaultTestImage,
	}
}

// UseFullFOV switches o to the full-FOV render size and scale.
func (o *Options) UseFullFOV() {
	o.FullFOV = true
	o.Width = FullFOVWidth
	o.Height = FullFOVHeight
	o.Scale = FullFOVScale
}

// Load reads a HuJSON file (comments and trailing commas allowed) and
// overlays it on Default.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	o, err := Parse(data)
	if err != nil {
		return Options{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return o, nil
}

// Parse overlays HuJSON data on Default.
func Parse(data []byte) (Options, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return Options{}, err
	}
	o := Default()
	if err := json.Unmarshal(std, &o); err != nil {
		return Options{}, err
	}
	return o, nil
}

// RenderConfig is the validated, derived configuration. It is a value type;
// copies are independent and nothing mutates it after New.
type RenderConfig struct {
	// Width and Height are the drawable size in pixels, scale applied.
	Width, Height int
	Scale         float64

	// ScreenWidth and ScreenHeight are the virtual screen size in meters.
	ScreenWidth, ScreenHeight float64
	Depth                     float64
	ZNear, ZFar               float64

	PixelFormat        PixelFormat
	MaxBuffersInFlight int
	DrawableTimeout    time.Duration

	ColorMipLevels     bool
	OnlyColors         bool
	MipChain           bool
	ColorMipLevelStart int

	Headlock HeadlockMode
	Filter   FilterMethod
	FullFOV  bool

	TestImage       string
	AssetDir        string
	LookaheadFactor float64
	MaxPlanes       int
}

// New validates o and derives a RenderConfig.
func New(o Options) (RenderConfig, error) {
	switch {
	case o.Width <= 0:
		return RenderConfig{}, fmt.Errorf("%w: width %d", ErrInvalid, o.Width)
	case o.Height <= 0:
		return RenderConfig{}, fmt.Errorf("%w: height %d", ErrInvalid, o.Height)
	case !(o.Scale > 0):
		return RenderConfig{}, fmt.Errorf("%w: scale %v", ErrInvalid, o.Scale)
	case !(o.DepthMeters > 0):
		return RenderConfig{}, fmt.Errorf("%w: depth %v", ErrInvalid, o.DepthMeters)
	case !(o.DiagonalMeters > 0):
		return RenderConfig{}, fmt.Errorf("%w: diagonal %v", ErrInvalid, o.DiagonalMeters)
	case o.MaxBuffersInFlight < 1:
		return RenderConfig{}, fmt.Errorf("%w: max buffers in flight %d", ErrInvalid, o.MaxBuffersInFlight)
	case o.LookaheadFactor < 0 || math.IsNaN(o.LookaheadFactor):
		return RenderConfig{}, fmt.Errorf("%w: lookahead factor %v", ErrInvalid, o.LookaheadFactor)
	case o.ColorMipLevelStart < 0:
		return RenderConfig{}, fmt.Errorf("%w: color mip level start %d", ErrInvalid, o.ColorMipLevelStart)
	case !(o.ZNear > 0) || !(o.ZFar > o.ZNear):
		return RenderConfig{}, fmt.Errorf("%w: clip planes %v..%v", ErrInvalid, o.ZNear, o.ZFar)
	case o.DrawableTimeout < 0:
		return RenderConfig{}, fmt.Errorf("%w: drawable timeout %v", ErrInvalid, time.Duration(o.DrawableTimeout))
	case o.MaxPlanes < 0:
		return RenderConfig{}, fmt.Errorf("%w: max planes %d", ErrInvalid, o.MaxPlanes)
	case o.TestImage == "":
		return RenderConfig{}, fmt.Errorf("%w: empty test image", ErrInvalid)
	}

	w := int(math.Round(float64(o.Width) * o.Scale))
	h := int(math.Round(float64(o.Height) * o.Scale))
	if w <= 0 || h <= 0 {
		return RenderConfig{}, fmt.Errorf("%w: scaled size %dx%d", ErrInvalid, w, h)
	}

	// Screen size follows the unscaled aspect ratio.
	diag := math.Hypot(float64(o.Width), float64(o.Height))

	return RenderConfig{
		Width:              w,
		Height:             h,
		Scale:              o.Scale,
		ScreenWidth:        float64(o.Width) / diag * o.DiagonalMeters,
		ScreenHeight:       float64(o.Height) / diag * o.DiagonalMeters,
		Depth:              o.DepthMeters,
		ZNear:              o.ZNear,
		ZFar:               o.ZFar,
		PixelFormat:        o.PixelFormat,
		MaxBuffersInFlight: o.MaxBuffersInFlight,
		DrawableTimeout:    time.Duration(o.DrawableTimeout),
		ColorMipLevels:     o.ColorMipLevels,
		OnlyColors:         o.OnlyColors,
		MipChain:           o.MipChain,
		ColorMipLevelStart: o.ColorMipLevelStart,
		Headlock:           o.Headlock,
		Filter:             o.Filter,
		FullFOV:            o.FullFOV,
		TestImage:          o.TestImage,
		AssetDir:           o.AssetDir,
		LookaheadFactor:    o.LookaheadFactor,
		MaxPlanes:          o.MaxPlanes,
	}, nil
}

// MustNew is New for tests and examples with known-good options.
func MustNew(o Options) RenderConfig {
	c, err := New(o)
	if err != nil {
		panic(err)
	}
	return c
}

// LevelCount returns the drawable mip level count: the full chain for the
// render size, or 1 with the mip chain disabled.
func (c RenderConfig) LevelCount() int {
	if !c.MipChain {
		return 1
	}
	return image.LevelCount(c.Width, c.Height)
}

// ImageFormat returns the CPU byte order of drawable texels.
func (c RenderConfig) ImageFormat() image.Format {
	return c.PixelFormat.ImageFormat()
}
