// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package spatial holds the 3-vector and quaternion value types used by the
// attitude filter. Every operation is pure: inputs are taken by value and a
// new value is returned.
//
// Operations whose natural result is undefined because of a near-zero
// denominator return a neutral value instead (the zero vector or the
// identity quaternion), so a single degenerate sample can never push NaN
// into a running filter.
package spatial

import (
	"fmt"

	"github.com/golang/geo/r3"
)

// Epsilon is the magnitude below which vectors and quaternions are treated
// as degenerate.
const Epsilon = 1e-5

// Vec3 is a direction or delta in body or world frame.
type Vec3 r3.Vector

// NewVec3 builds a vector from its components.
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Magnitude returns the Euclidean norm.
func (v Vec3) Magnitude() float64 {
	return r3.Vector(v).Norm()
}

// Normalize returns v scaled to unit length and true. If the magnitude of v
// is below Epsilon it returns the zero vector and false; callers must branch
// on the flag.
func (v Vec3) Normalize() (Vec3, bool) {
	n := v.Magnitude()
	if n < Epsilon {
		return Vec3{}, false
	}
	return Vec3(r3.Vector(v).Mul(1 / n)), true
}

// Cross returns v × u.
func (v Vec3) Cross(u Vec3) Vec3 {
	return Vec3(r3.Vector(v).Cross(r3.Vector(u)))
}

// Dot returns v · u.
func (v Vec3) Dot(u Vec3) float64 {
	return r3.Vector(v).Dot(r3.Vector(u))
}

// Add returns v + u.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3(r3.Vector(v).Add(r3.Vector(u)))
}

// Scale returns v multiplied by s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3(r3.Vector(v).Mul(s))
}

// Array returns the components as {x, y, z}.
func (v Vec3) Array() [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.5f, %.5f, %.5f)", v.X, v.Y, v.Z)
}
