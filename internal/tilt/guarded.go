// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package tilt

import (
	"sync"

	"github.com/relabs-tech/tilt/internal/spatial"
)

// Guarded serializes access to a single Filter so it can be shared between
// a sampling loop and other goroutines (command handlers, status readers).
type Guarded struct {
	mu     sync.Mutex
	filter *Filter
}

// NewGuarded takes ownership of f. The caller must not use f directly
// afterwards.
func NewGuarded(f *Filter) *Guarded {
	return &Guarded{filter: f}
}

// Calibrate calls Filter.Calibrate under the lock.
func (g *Guarded) Calibrate(acc spatial.Vec3) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.filter.Calibrate(acc)
}

// Update calls Filter.Update under the lock.
func (g *Guarded) Update(acc, gyro spatial.Vec3, dt float64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filter.Update(acc, gyro, dt)
}

// PitchRoll calls Filter.PitchRoll under the lock.
func (g *Guarded) PitchRoll() (pitch, roll float64, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filter.PitchRoll()
}

// SetState calls Filter.SetState under the lock.
func (g *Guarded) SetState(s State) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.filter.SetState(s)
}

// State returns the calibration state.
func (g *Guarded) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filter.State()
}

// Attitude returns the current attitude.
func (g *Guarded) Attitude() spatial.Quaternion {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filter.Attitude()
}

// Gravity returns the calibrated down direction.
func (g *Guarded) Gravity() spatial.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.filter.Gravity()
}

// Recalibrate resets the filter to its initial, uncalibrated state.
func (g *Guarded) Recalibrate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.filter.Reset()
}

// Do runs fn with exclusive access to the filter. fn must not retain f.
func (g *Guarded) Do(fn func(f *Filter)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.filter)
}
