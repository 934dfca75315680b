// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pose predicts the viewer's head pose for the frame being rendered
// and filters its orientation according to the headlock mode.
package pose

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/vrrbench/internal/logging"
)

// ErrNoPose is returned when the pose source has nothing for the requested
// time. The frame is skipped; there is no retry.
var ErrNoPose = errors.New("pose: no pose available")

// Source answers pose queries for a predicted display time.
// QueryPose reports false when tracking is unavailable.
type Source interface {
	QueryPose(at float64) (mgl64.Mat4, bool)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(at float64) (mgl64.Mat4, bool)

// QueryPose calls f(at).
func (f SourceFunc) QueryPose(at float64) (mgl64.Mat4, bool) { return f(at) }

// Sample is a predicted head transform. Column 3 holds the translation and
// column 2 the pose's forward axis.
type Sample struct {
	Timestamp float64
	Transform mgl64.Mat4
}

// Translation returns the head position.
func (s Sample) Translation() mgl64.Vec3 {
	return s.Transform.Col(3).Vec3()
}

// Forward returns column 2 of the transform.
func (s Sample) Forward() mgl64.Vec3 {
	return s.Transform.Col(2).Vec3()
}

// Rotation returns the unit quaternion of the transform's rotation.
func (s Sample) Rotation() mgl64.Quat {
	return mgl64.Mat4ToQuat(s.Transform).Normalize()
}

// DefaultLookahead is how many refresh intervals ahead poses are predicted.
// Four intervals cover the render, GPU and compositor latency observed on
// headset displays.
const DefaultLookahead = 4

// Tracker turns refresh timing into pose queries.
//
// Tracker is used from the render goroutine only.
type Tracker struct {
	src          Source
	lookahead    float64
	lastInterval float64
}

// NewTracker returns a tracker predicting lookahead intervals ahead.
func NewTracker(src Source, lookahead float64) *Tracker {
	return &Tracker{src: src, lookahead: lookahead}
}

// Sample queries the source at now + lookahead*refreshInterval.
func (t *Tracker) Sample(now, refreshInterval float64) (Sample, error) {
	t.lastInterval = refreshInterval
	at := t.PredictedTime(now, refreshInterval)
	m, ok := t.src.QueryPose(at)
	if !ok {
		logging.Logger().Debug("pose: query returned nothing", "at", at)
		return Sample{}, ErrNoPose
	}
	return Sample{Timestamp: at, Transform: m}, nil
}

// PredictedTime returns the display time poses are queried for.
func (t *Tracker) PredictedTime(now, refreshInterval float64) float64 {
	return now + t.lookahead*refreshInterval
}

// LastInterval returns the refresh interval passed to the last Sample.
func (t *Tracker) LastInterval() float64 { return t.lastInterval }

// Lookahead returns the lookahead factor.
func (t *Tracker) Lookahead() float64 { return t.lookahead }
