// Package app runs the headgaze controller loop.
//
// The loop reads a frame, mirrors it, detects the face, updates the tracker,
// moves the OS cursor on valid frames and renders the HUD. Observers such as
// the status server and the tray read snapshots the loop publishes; they never
// touch the tracker.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ayusman/headgaze/internal/capture"
	"github.com/ayusman/headgaze/internal/detector"
	"github.com/ayusman/headgaze/internal/log"
	"github.com/ayusman/headgaze/internal/overlay"
	"github.com/ayusman/headgaze/internal/pointer"
	"github.com/ayusman/headgaze/internal/store"
	"github.com/ayusman/headgaze/internal/tracking"
)

// DetectWarnInterval is the minimum spacing of repeated detector failure warnings.
const DetectWarnInterval = 5 * time.Second

// ErrAlreadyRunning is returned when a second loop is started on one App.
var ErrAlreadyRunning = errors.New("tracking loop already running")

// Config holds the collaborators of an App.
type Config struct {
	Profile  tracking.Profile
	Camera   capture.Camera
	Detector detector.Detector
	Pointer  pointer.Device
	// Display shows the annotated frames. Nil runs headless.
	Display overlay.Display
	// Store records session history. Nil disables recording.
	Store *store.Store
	// SampleEvery records one cursor sample every N frames; 0 disables the trace.
	SampleEvery int
	// FPS is requested from the camera when the loop starts.
	FPS int
	// Stream keeps a JPEG copy of the latest annotated frame for viewers.
	Stream bool
}

// App owns one tracker and drives it from the camera.
type App struct {
	config  Config
	tracker *tracking.Tracker
	style   overlay.Style

	// Detector failures repeat every frame; warnings are rate limited.
	detectWarn     *rate.Limiter
	detectFailures int

	mu      sync.RWMutex
	enabled bool
	running bool
	status  Status
	jpeg    []byte
	jpegSeq uint64

	cancel context.CancelFunc
	done   chan struct{}
	runErr error
}

// New creates an App. The screen extent is read from the pointer device once.
func New(config Config) (*App, error) {
	if config.Camera == nil {
		return nil, errors.New("app: camera is required")
	}
	if config.Detector == nil {
		return nil, errors.New("app: detector is required")
	}
	if config.Pointer == nil {
		return nil, errors.New("app: pointer is required")
	}
	if err := config.Profile.Validate(); err != nil {
		return nil, err
	}
	if config.Display == nil {
		config.Display = overlay.Headless{}
	}

	screen := config.Pointer.Size()
	tracker := tracking.New(config.Profile, screen)

	a := &App{
		config:  config,
		tracker: tracker,
		style:   StyleFor(config.Profile.Mode),
		enabled: true,

		detectWarn: rate.NewLimiter(rate.Every(DetectWarnInterval), 1),
	}
	a.status = Status{
		Enabled: true,
		Mode:    config.Profile.Mode,
		Screen:  screen,
		Cursor:  tracker.Cursor(),
	}
	return a, nil
}

// StyleFor returns the HUD style of a tracking mode.
func StyleFor(mode tracking.Mode) overlay.Style {
	if mode == tracking.ModeHead {
		return overlay.HeadStyle()
	}
	return overlay.GazeStyle()
}

// SetEnabled pauses or resumes tracking. While disabled every frame is
// handled as a frame without signal, so the cursor holds still.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
	a.status.Enabled = enabled
	log.Info(log.Fields{"enabled": enabled}, "tracking toggled")
}

// IsEnabled returns whether tracking is active.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// IsRunning returns whether the loop is running.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.running
}

// Status returns the latest snapshot published by the loop.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// LatestFrame returns the latest annotated frame as JPEG and its sequence
// number. The sequence is zero until the first frame was rendered.
func (a *App) LatestFrame() ([]byte, uint64) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.jpeg, a.jpegSeq
}

// Profile returns the tracking profile.
func (a *App) Profile() tracking.Profile {
	return a.config.Profile
}

// Start runs the loop on a background goroutine until Stop is called, the
// context is cancelled or the camera fails.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.running || a.cancel != nil {
		a.mu.Unlock()
		return ErrAlreadyRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.done = make(chan struct{})
	a.runErr = nil
	a.mu.Unlock()

	go func() {
		err := a.Run(ctx)
		if err != nil {
			log.Error(log.Fields{"error": err}, "tracking loop stopped")
		}

		a.mu.Lock()
		a.runErr = err
		a.cancel = nil
		done := a.done
		a.mu.Unlock()

		cancel()
		close(done)
	}()
	return nil
}

// Stop halts a loop started with Start and waits for it to exit. It returns
// the error the loop ended with.
func (a *App) Stop() error {
	a.mu.RLock()
	cancel, done := a.cancel, a.done
	a.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done == nil {
		return nil
	}
	<-done

	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.runErr
}

// Done is closed when a loop started with Start exits. It is nil before the
// first Start.
func (a *App) Done() <-chan struct{} {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.done
}

// Close releases the detector and the display.
func (a *App) Close() error {
	var errs []error
	if err := a.config.Detector.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close detector: %w", err))
	}
	if err := a.config.Display.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close display: %w", err))
	}
	return errors.Join(errs...)
}
