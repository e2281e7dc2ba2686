// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"bytes"
	"image"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/relabs-tech/tilt/internal/orientation"
)

func litPixels(pix []byte) int {
	n := 0
	for _, b := range pix {
		for ; b != 0; b &= b - 1 {
			n++
		}
	}
	return n
}

func TestRenderPose(t *testing.T) {
	waiting := renderPose(orientation.Pose{}, false)
	test.That(t, waiting.Bounds(), test.ShouldResemble, image.Rect(0, 0, displayWidth, displayHeight))
	test.That(t, litPixels(waiting.Pix), test.ShouldBeGreaterThan, 0)

	pose := orientation.Pose{Roll: 12.5, Pitch: -3.25, Time: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	a := renderPose(pose, true)
	test.That(t, litPixels(a.Pix), test.ShouldBeGreaterThan, 0)
	test.That(t, bytes.Equal(a.Pix, waiting.Pix), test.ShouldBeFalse)

	// same pose, same picture
	test.That(t, bytes.Equal(renderPose(pose, true).Pix, a.Pix), test.ShouldBeTrue)

	pose.Roll = -12.5
	test.That(t, bytes.Equal(renderPose(pose, true).Pix, a.Pix), test.ShouldBeFalse)
}

func TestDisplayData(t *testing.T) {
	var d displayData
	_, have := d.get()
	test.That(t, have, test.ShouldBeFalse)

	d.set(orientation.Pose{Pitch: 7})
	p, have := d.get()
	test.That(t, have, test.ShouldBeTrue)
	test.That(t, p.Pitch, test.ShouldEqual, 7.0)
	test.That(t, litPixels(renderSplash().Pix), test.ShouldBeGreaterThan, 0)
}
