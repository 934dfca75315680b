// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package sim is a simulated platform: scripted head motion, a scripted
// plane stream and canned authorization answers. It lets the render loop
// run off-headset.
package sim

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Script is a head motion pattern.
type Script uint8

const (
	Static Script = iota
	YawSweep
	Nod
	Roll
	FigureEight
)

var scriptNames = [...]string{"static", "yaw", "nod", "roll", "figure8"}

func (s Script) String() string {
	if int(s) < len(scriptNames) {
		return scriptNames[s]
	}
	return "unknown"
}

// ParseScript parses a script name.
func ParseScript(name string) (Script, error) {
	for i, n := range scriptNames {
		if n == name {
			return Script(i), nil
		}
	}
	return 0, fmt.Errorf("sim: unknown script %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Script) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Script) UnmarshalText(b []byte) error {
	v, err := ParseScript(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Default motion parameters.
const (
	DefaultPeriod    = 4.0
	DefaultAmplitude = math.Pi / 6
	DefaultEyeHeight = 1.6
)

// PoseSource replays a Script as device poses.
type PoseSource struct {
	Script    Script
	Period    float64 // seconds per cycle
	Amplitude float64 // radians
	Eye       mgl64.Vec3

	// DropoutRate is the probability that a query returns no pose.
	DropoutRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewPoseSource returns a source with default period, amplitude and eye
// position. seed fixes the dropout sequence.
func NewPoseSource(script Script, seed uint64) *PoseSource {
	return &PoseSource{
		Script:    script,
		Period:    DefaultPeriod,
		Amplitude: DefaultAmplitude,
		Eye:       mgl64.Vec3{0, DefaultEyeHeight, 0},
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Angles returns the scripted pitch, yaw and roll at time at.
func (s *PoseSource) Angles(at float64) (pitch, yaw, roll float64) {
	period := s.Period
	if period <= 0 {
		period = DefaultPeriod
	}
	phase := 2 * math.Pi * at / period
	a := s.Amplitude
	switch s.Script {
	case YawSweep:
		yaw = a * math.Sin(phase)
	case Nod:
		pitch = a * math.Sin(phase)
	case Roll:
		roll = a * math.Sin(phase)
	case FigureEight:
		yaw = a * math.Sin(phase)
		pitch = a / 2 * math.Sin(2*phase)
	}
	return pitch, yaw, roll
}

// Rotation returns the scripted head rotation at time at.
func (s *PoseSource) Rotation(at float64) mgl64.Quat {
	pitch, yaw, roll := s.Angles(at)
	rz := mgl64.QuatRotate(roll, mgl64.Vec3{0, 0, 1})
	ry := mgl64.QuatRotate(yaw, mgl64.Vec3{0, 1, 0})
	rx := mgl64.QuatRotate(pitch, mgl64.Vec3{1, 0, 0})
	return rz.Mul(ry).Mul(rx).Normalize()
}

// QueryPose implements pose.Source.
func (s *PoseSource) QueryPose(at float64) (mgl64.Mat4, bool) {
	if s.DropoutRate > 0 {
		s.mu.Lock()
		drop := s.rng.Float64() < s.DropoutRate
		s.mu.Unlock()
		if drop {
			return mgl64.Mat4{}, false
		}
	}
	return mgl64.Translate3D(s.Eye[0], s.Eye[1], s.Eye[2]).Mul4(s.Rotation(at).Mat4()), true
}
