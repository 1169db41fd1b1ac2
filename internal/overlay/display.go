package overlay

import (
	"gocv.io/x/gocv"
)

// NoKey is returned by Show when no key was pressed.
const NoKey = -1

// Display presents annotated frames and reports key presses.
type Display interface {
	// Show presents frame and returns the key pressed meanwhile, or NoKey.
	Show(frame *gocv.Mat) int
	Close() error
}

// Window shows frames in an OpenCV window.
type Window struct {
	win *gocv.Window
}

// NewWindow opens a window with the given title.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show displays frame and polls the keyboard for one millisecond.
func (w *Window) Show(frame *gocv.Mat) int {
	w.win.IMShow(*frame)
	return w.win.WaitKey(1)
}

// Close destroys the window.
func (w *Window) Close() error {
	return w.win.Close()
}

// Headless discards frames. It is used when the tracker runs without a
// preview, for example from the system tray.
type Headless struct{}

// Show implements Display.
func (Headless) Show(*gocv.Mat) int { return NoKey }

// Close implements Display.
func (Headless) Close() error { return nil }

// IsQuitKey reports whether key is ESC, q or Q.
func IsQuitKey(key int) bool {
	if key < 0 {
		return false
	}
	switch key & 0xFF {
	case 27, 'q', 'Q':
		return true
	}
	return false
}
