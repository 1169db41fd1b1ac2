// Package pointer moves the operating system mouse cursor.
package pointer

import (
	"sync"

	"github.com/go-vgo/robotgo"

	"github.com/ayusman/headgaze/internal/calibration"
)

// Mover positions the OS cursor at absolute screen coordinates.
type Mover interface {
	Move(x, y int)
}

// Screen reports the primary display size in pixels.
type Screen interface {
	Size() calibration.Screen
}

// Device is both a Mover and a Screen.
type Device interface {
	Mover
	Screen
}

// System drives the real OS cursor.
type System struct{}

// NewSystem returns a Device backed by the OS.
func NewSystem() *System {
	return &System{}
}

// Move places the OS cursor at (x, y).
func (System) Move(x, y int) {
	robotgo.Move(x, y)
}

// Size returns the primary display size.
func (System) Size() calibration.Screen {
	w, h := robotgo.GetScreenSize()
	return calibration.Screen{Width: w, Height: h}
}

// Position returns the current OS cursor location.
func (System) Position() (int, int) {
	return robotgo.Location()
}

// Mock records cursor moves for tests and headless runs.
type Mock struct {
	mu     sync.Mutex
	screen calibration.Screen
	moves  []calibration.Target
}

// NewMock creates a Mock reporting the given screen size.
func NewMock(screen calibration.Screen) *Mock {
	return &Mock{screen: screen}
}

// Move records a cursor move.
func (m *Mock) Move(x, y int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.moves = append(m.moves, calibration.Target{X: x, Y: y})
}

// Size returns the configured screen size.
func (m *Mock) Size() calibration.Screen {
	return m.screen
}

// Moves returns a copy of every recorded move.
func (m *Mock) Moves() []calibration.Target {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]calibration.Target, len(m.moves))
	copy(out, m.moves)
	return out
}

// Last returns the most recent move.
func (m *Mock) Last() (calibration.Target, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.moves) == 0 {
		return calibration.Target{}, false
	}
	return m.moves[len(m.moves)-1], true
}
