// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pose

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/gogpu/vrrbench/config"
)

// Alignment turns the quad's +Y normal onto +Z so that it faces a viewer
// looking down -Z: +90 degrees about local X.
var Alignment = mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{1, 0, 0})

// Euler angles of a rotation, radians. Pitch is about X, Yaw about Y and
// Roll about Z.
type Euler struct {
	Pitch, Yaw, Roll float64
}

// Decompose splits q into Euler angles. Yaw saturates at ±π/2 at the
// gimbal-lock singularity.
func Decompose(q mgl64.Quat) Euler {
	w, x, y, z := q.W, q.V[0], q.V[1], q.V[2]

	pitch := math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y))

	s := 2 * (w*y - z*x)
	var yaw float64
	if math.Abs(s) >= 1 {
		yaw = math.Copysign(math.Pi/2, s)
	} else {
		yaw = math.Asin(s)
	}

	roll := math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z))
	return Euler{Pitch: pitch, Yaw: yaw, Roll: roll}
}

// Filter applies the headlock mode to the head rotation q and returns the
// quad orientation.
func Filter(q mgl64.Quat, mode config.HeadlockMode) mgl64.Quat {
	switch mode {
	case config.HeadlockFull:
		return q.Mul(Alignment)
	case config.HeadlockYawOnly:
		e := Decompose(q)
		yaw := mgl64.QuatRotate(e.Yaw, mgl64.Vec3{0, 1, 0}).Normalize()
		return yaw.Mul(Alignment)
	default:
		return Alignment
	}
}
