// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package spatial

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Quaternion is a rotation (unit norm) or a pure vector embedding (zero
// scalar part). Real is the scalar part w, Imag/Jmag/Kmag are x/y/z.
type Quaternion quat.Number

// Identity returns the identity rotation (1, 0, 0, 0).
func Identity() Quaternion {
	return Quaternion{Real: 1}
}

// NewQuaternion builds a quaternion from (w, x, y, z).
func NewQuaternion(w, x, y, z float64) Quaternion {
	return Quaternion{Real: w, Imag: x, Jmag: y, Kmag: z}
}

// FromAngleAxis builds the rotation of angle radians about axis. The axis is
// assumed to be a unit vector and is not checked. If the result is
// degenerate the identity is returned.
func FromAngleAxis(angle float64, axis Vec3) Quaternion {
	s, c := math.Sincos(angle / 2)
	q := Quaternion{Real: c, Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
	if q.Magnitude() < Epsilon {
		return Identity()
	}
	return q
}

// FromVector lifts v into a pure quaternion (0, x, y, z).
func FromVector(v Vec3) Quaternion {
	return Quaternion{Imag: v.X, Jmag: v.Y, Kmag: v.Z}
}

// Mul returns the Hamilton product q ⊗ p. Composition is right to left:
// q.Mul(p) applies p first, then q.
func (q Quaternion) Mul(p Quaternion) Quaternion {
	return Quaternion(quat.Mul(quat.Number(q), quat.Number(p)))
}

// Rotate returns q ⊗ v ⊗ q⁻¹. When v is a pure quaternion the result is
// again pure up to floating point error.
func (q Quaternion) Rotate(v Quaternion) Quaternion {
	return q.Mul(v.Mul(q.Inverse()))
}

// RotateVector rotates a 3-vector by q.
func (q Quaternion) RotateVector(v Vec3) Vec3 {
	return q.Rotate(FromVector(v)).Vector()
}

// Magnitude returns the norm over all four components.
func (q Quaternion) Magnitude() float64 {
	return quat.Abs(quat.Number(q))
}

// Normalize returns q scaled to unit norm, or the identity if q is degenerate.
func (q Quaternion) Normalize() Quaternion {
	n := q.Magnitude()
	if n < Epsilon {
		return Identity()
	}
	return Quaternion(quat.Scale(1/n, quat.Number(q)))
}

// Conjugate negates the vector part.
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion(quat.Conj(quat.Number(q)))
}

// Inverse returns the conjugate divided by the squared norm, or the identity
// if the squared norm is below Epsilon. For unit quaternions it equals the
// conjugate; the general form keeps slightly denormalized intermediates
// correct.
func (q Quaternion) Inverse() Quaternion {
	n2 := q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag
	if n2 < Epsilon {
		return Identity()
	}
	return Quaternion(quat.Scale(1/n2, quat.Conj(quat.Number(q))))
}

// Vector returns the vector part (x, y, z).
func (q Quaternion) Vector() Vec3 {
	return Vec3{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
}

// EulerAngles extracts roll, pitch and yaw in radians (aerospace sequence).
// The pitch argument is clamped so round-off never leaves asin's domain.
func (q Quaternion) EulerAngles() (roll, pitch, yaw float64) {
	q0, q1, q2, q3 := q.Real, q.Imag, q.Jmag, q.Kmag
	roll = math.Atan2(2*(q0*q1+q2*q3), q0*q0-q1*q1-q2*q2+q3*q3)
	pitch = -math.Asin(Clamp(2*(q1*q3-q0*q2), -1, 1))
	yaw = math.Atan2(2*(q0*q3+q1*q2), q0*q0+q1*q1-q2*q2-q3*q3)
	return roll, pitch, yaw
}

// Array returns the components as {w, x, y, z}.
func (q Quaternion) Array() [4]float64 {
	return [4]float64{q.Real, q.Imag, q.Jmag, q.Kmag}
}

func (q Quaternion) String() string {
	return fmt.Sprintf("(%.5f, %.5f, %.5f, %.5f)", q.Real, q.Imag, q.Jmag, q.Kmag)
}

// Clamp limits x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
