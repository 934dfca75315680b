// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package placement computes where the virtual screen quad sits for a frame.
package placement

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/vrrbench/config"
	"github.com/gogpu/vrrbench/internal/logging"
	"github.com/gogpu/vrrbench/pose"
)

// Result is the transform written to the display quad.
type Result struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
	Scale       mgl64.Vec3
}

// Matrix returns the quad's model matrix: translate * rotate * scale.
func (r Result) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(r.Position[0], r.Position[1], r.Position[2]).
		Mul4(r.Orientation.Mat4()).
		Mul4(mgl64.Scale3D(r.Scale[0], r.Scale[1], r.Scale[2]))
}

// Tangents are the per-eye view frustum half-angle tangents reported by
// the display.
type Tangents struct {
	Left, Right, Up, Down float64
}

// Valid reports whether every tangent is positive.
func (t Tangents) Valid() bool {
	return t.Left > 0 && t.Right > 0 && t.Up > 0 && t.Down > 0
}

// Projection returns the asymmetric perspective projection for the view.
func (t Tangents) Projection(near, far float64) mgl64.Mat4 {
	return mgl64.Frustum(-t.Left*near, t.Right*near, -t.Down*near, t.Up*near, near, far)
}

// WorldAnchor is where the quad sits when the screen is fixed in the world.
var WorldAnchor = mgl64.Vec3{0, 1, -1}

// Solver places the quad from a pose sample and its filtered orientation.
type Solver struct {
	cfg      config.RenderConfig
	tangents Tangents
}

// NewSolver returns a solver for cfg. tangents are used only in full-FOV
// mode; invalid tangents fall back to the configured screen size.
func NewSolver(cfg config.RenderConfig, tangents Tangents) *Solver {
	if cfg.FullFOV && !tangents.Valid() {
		logging.Logger().Warn("placement: invalid view tangents, using screen size", "tangents", tangents)
	}
	return &Solver{cfg: cfg, tangents: tangents}
}

// Scale returns the quad scale. The quad spans X and Z in its own space.
func (s *Solver) Scale() mgl64.Vec3 {
	if s.cfg.FullFOV && s.tangents.Valid() {
		t := s.tangents
		return mgl64.Vec3{t.Left + t.Right, 1, t.Up + t.Down}.Mul(s.cfg.Depth)
	}
	return mgl64.Vec3{s.cfg.ScreenWidth, 1, s.cfg.ScreenHeight}
}

// Place computes the quad transform for sample with the filtered
// orientation produced by pose.Filter.
func (s *Solver) Place(sample pose.Sample, filtered mgl64.Quat) Result {
	res := Result{Scale: s.Scale()}

	switch {
	case s.cfg.Headlock == config.HeadlockNone:
		res.Position = WorldAnchor
		res.Orientation = pose.Alignment
	case s.cfg.Headlock == config.HeadlockFull || s.cfg.FullFOV:
		res.Position = sample.Translation().Sub(sample.Forward().Mul(s.cfg.Depth))
		res.Orientation = sample.Rotation().Mul(pose.Alignment).Normalize()
	default:
		fwd := filtered.Rotate(mgl64.Vec3{0, 1, 0})
		res.Position = sample.Translation().Sub(fwd.Mul(s.cfg.Depth))
		res.Orientation = filtered.Normalize()
	}
	return res
}
