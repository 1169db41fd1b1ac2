// Package tray provides a system tray interface for headgaze.
package tray

import (
	"fmt"
	"sync"
	"time"

	"github.com/getlantern/systray"

	"github.com/ayusman/headgaze/internal/app"
)

// RefreshInterval is how often the status line is refreshed.
const RefreshInterval = 500 * time.Millisecond

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	status   func() app.Status
	quitWhen <-chan struct{}
	quit     func()
	enabled  bool
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuStatus *systray.MenuItem
	stop       chan struct{}
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
		quit:    systray.Quit,
		stop:    make(chan struct{}),
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback function to be called when the dashboard menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// WatchStatus sets the snapshot function used for the status line.
func (t *Tray) WatchStatus(fn func() app.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = fn
}

// QuitWhen closes the tray once done is closed. The watch starts from
// onReady, so a done that fires before the menu loop exists still quits it.
func (t *Tray) QuitWhen(done <-chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.quitWhen = done
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}


// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("HeadGaze")
	systray.SetTooltip("HeadGaze hands-free cursor")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume cursor control")
	systray.AddSeparator()

	t.menuStatus = systray.AddMenuItem("Waiting for camera", "Tracking status")
	t.menuStatus.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open Dashboard...", "Open the status page in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit HeadGaze")

	go t.refresh()

	t.mu.RLock()
	done := t.quitWhen
	t.mu.RUnlock()
	if done != nil {
		go t.watch(done)
	}

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {
	close(t.stop)
}

// refresh keeps the status line current until the tray exits.
func (t *Tray) refresh() {
	ticker := time.NewTicker(RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.mu.RLock()
			fn := t.status
			t.mu.RUnlock()
			if fn != nil {
				t.SetStatus(StatusLine(fn()))
			}
		}
	}
}

// watch quits the tray when done closes, unless the tray exits first.
func (t *Tray) watch(done <-chan struct{}) {
	select {
	case <-t.stop:
	case <-done:
		t.quit()
	}
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleOpen handles the dashboard menu item click.
func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	t.quit()
}

// SetStatus updates the status line in the menu.
func (t *Tray) SetStatus(line string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuStatus != nil {
		t.menuStatus.SetTitle(line)
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

// StatusLine renders a snapshot for the menu.
func StatusLine(st app.Status) string {
	switch {
	case !st.Running:
		return fmt.Sprintf("%s: stopped", st.Mode)
	case !st.Enabled:
		return fmt.Sprintf("%s: paused at (%d, %d)", st.Mode, st.Cursor.X, st.Cursor.Y)
	case !st.Face:
		return fmt.Sprintf("%s: no face", st.Mode)
	case !st.Signal:
		return fmt.Sprintf("%s: no signal at (%d, %d)", st.Mode, st.Cursor.X, st.Cursor.Y)
	default:
		return fmt.Sprintf("%s: cursor (%d, %d)", st.Mode, st.Cursor.X, st.Cursor.Y)
	}
}
