// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package spatial

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestVec3Magnitude(t *testing.T) {
	test.That(t, NewVec3(3, 4, 0).Magnitude(), test.ShouldAlmostEqual, 5.0)
	test.That(t, NewVec3(0, 0, 0).Magnitude(), test.ShouldEqual, 0.0)
	test.That(t, NewVec3(1, 1, 1).Magnitude(), test.ShouldAlmostEqual, math.Sqrt(3))
}

func TestVec3Normalize(t *testing.T) {
	t.Run("regular", func(t *testing.T) {
		u, ok := NewVec3(0, 3, 4).Normalize()
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, u.X, test.ShouldAlmostEqual, 0.0)
		test.That(t, u.Y, test.ShouldAlmostEqual, 0.6)
		test.That(t, u.Z, test.ShouldAlmostEqual, 0.8)
		test.That(t, u.Magnitude(), test.ShouldAlmostEqual, 1.0)
	})

	t.Run("zero vector", func(t *testing.T) {
		u, ok := NewVec3(0, 0, 0).Normalize()
		test.That(t, ok, test.ShouldBeFalse)
		test.That(t, u, test.ShouldResemble, Vec3{})
	})

	t.Run("below epsilon", func(t *testing.T) {
		u, ok := NewVec3(1e-6, -1e-6, 1e-6).Normalize()
		test.That(t, ok, test.ShouldBeFalse)
		test.That(t, u, test.ShouldResemble, Vec3{})
	})
}

func TestVec3CrossDot(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	z := NewVec3(0, 0, 1)

	test.That(t, x.Cross(y), test.ShouldResemble, z)
	test.That(t, y.Cross(z), test.ShouldResemble, x)
	test.That(t, z.Cross(x), test.ShouldResemble, y)
	test.That(t, y.Cross(x), test.ShouldResemble, z.Scale(-1))
	test.That(t, x.Cross(x), test.ShouldResemble, Vec3{})

	test.That(t, x.Dot(y), test.ShouldEqual, 0.0)
	test.That(t, NewVec3(1, 2, 3).Dot(NewVec3(4, -5, 6)), test.ShouldEqual, 12.0)

	// u × v is orthogonal to both operands
	u := NewVec3(0.3, -1.2, 2.5)
	v := NewVec3(-0.7, 0.4, 1.1)
	c := u.Cross(v)
	test.That(t, c.Dot(u), test.ShouldAlmostEqual, 0.0)
	test.That(t, c.Dot(v), test.ShouldAlmostEqual, 0.0)
}

func TestVec3AddScale(t *testing.T) {
	v := NewVec3(1, 2, 3).Scale(0.5).Add(NewVec3(0.5, 0, -1.5))
	test.That(t, v, test.ShouldResemble, NewVec3(1, 1, 0))
	test.That(t, v.Array(), test.ShouldResemble, [3]float64{1, 1, 0})
}
