// Package smoothing damps frame-to-frame cursor jitter with an exponential filter.
package smoothing

import (
	"github.com/ayusman/headgaze/internal/calibration"
)

// Cursor is the last emitted cursor position in screen pixels.
type Cursor struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// CenterOf returns a cursor at the middle of the screen.
func CenterOf(s calibration.Screen) Cursor {
	x, y := s.Center()
	return Cursor{X: x, Y: y}
}

// Smoother blends each new target into the previous cursor position:
//
//	next = floor(prev + alpha*(target - prev))
//
// alpha 0 freezes the cursor; alpha 1 jumps straight to the target.
//
// One exception to the formula: when alpha > 0 and flooring would leave an
// axis where it was while still short of the target, the axis moves one pixel
// toward the target instead. Plain flooring stalls below the target on an
// upward approach; with the nudge the cursor always arrives and never
// overshoots.
type Smoother struct {
	alpha float64
}

// New creates a Smoother. alpha is clamped into [0, 1].
func New(alpha float64) *Smoother {
	switch {
	case !(alpha >= 0):
		alpha = 0
	case alpha > 1:
		alpha = 1
	}
	return &Smoother{alpha: alpha}
}

// Alpha returns the blend weight given to the new target.
func (s *Smoother) Alpha() float64 {
	return s.alpha
}

// Step advances state toward target, stores the result in state and returns it.
// Step is the only code that writes a Cursor.
func (s *Smoother) Step(state *Cursor, target calibration.Target) Cursor {
	state.X = s.axis(state.X, target.X)
	state.Y = s.axis(state.Y, target.Y)
	return *state
}

func (s *Smoother) axis(prev, target int) int {
	if s.alpha == 0 || prev == target {
		return prev
	}

	next := calibration.Pixel(float64(prev) + s.alpha*float64(target-prev))

	// Flooring can leave an upward approach stuck one step short forever;
	// move a single pixel so the cursor always reaches the target.
	if next == prev {
		if target > prev {
			return prev + 1
		}
		return prev - 1
	}
	return next
}
