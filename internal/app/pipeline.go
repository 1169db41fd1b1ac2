package app

import (
	"context"
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/headgaze/internal/capture"
	"github.com/ayusman/headgaze/internal/detector"
	"github.com/ayusman/headgaze/internal/log"
	"github.com/ayusman/headgaze/internal/overlay"
	"github.com/ayusman/headgaze/internal/store"
	"github.com/ayusman/headgaze/internal/tracking"
)

// Run executes the controller loop on the calling goroutine. It returns nil
// when the quit key is pressed or ctx is cancelled, and an error when the
// camera fails. A window display must be driven from the main goroutine, so
// window mode calls Run directly.
func (a *App) Run(ctx context.Context) error {
	a.mu.Lock()
	if a.running {
		a.mu.Unlock()
		return ErrAlreadyRunning
	}
	a.running = true
	a.status.Running = true
	a.mu.Unlock()

	defer func() {
		a.mu.Lock()
		a.running = false
		a.status.Running = false
		a.mu.Unlock()
	}()

	if err := a.config.Camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer a.config.Camera.Close()

	if a.config.FPS > 0 {
		a.config.Camera.SetFPS(a.config.FPS)
	}

	// Start from the screen center.
	center := a.tracker.Cursor()
	a.config.Pointer.Move(center.X, center.Y)

	rec := a.startRecorder()
	defer func() { rec.finish(time.Now()) }()

	profile := a.config.Profile
	log.Info(log.Fields{
		"mode":    profile.Mode,
		"screen":  fmt.Sprintf("%dx%d", a.tracker.Screen().Width, a.tracker.Screen().Height),
		"session": rec.id(),
	}, "tracking started")

	var counters store.Counters
	for {
		select {
		case <-ctx.Done():
			log.Info(log.Fields{"frames": counters.Frames}, "tracking stopped")
			return nil
		default:
		}

		frame, err := a.config.Camera.ReadFrame()
		if err != nil {
			return fmt.Errorf("read frame: %w", err)
		}

		result, quit := a.processFrame(frame)
		frame.Close()

		counters.Frames++
		if result.Face {
			counters.FaceFrames++
		}
		if result.Valid {
			counters.SignalFrames++
		}
		rec.observe(result, counters, time.Now())

		a.mu.Lock()
		a.status.Counters = counters
		a.mu.Unlock()

		if quit {
			log.Info(log.Fields{"frames": counters.Frames}, "quit key pressed")
			return nil
		}
	}
}

// processFrame runs one iteration of the pipeline on frame and reports
// whether the user asked to quit.
func (a *App) processFrame(frame *gocv.Mat) (tracking.Frame, bool) {
	capture.Mirror(frame)

	var result tracking.Frame
	if a.IsEnabled() {
		result = a.tracker.Update(a.detect(frame))
	} else {
		result = a.tracker.Hold()
	}

	if result.Valid {
		a.config.Pointer.Move(result.Cursor.X, result.Cursor.Y)
	}

	profile := a.config.Profile
	overlay.Draw(frame, overlay.Scene{
		Title:   profile.Title,
		Hint:    profile.Hint,
		Band:    profile.Band,
		Signal:  result.Valid,
		Markers: result.Markers,
		Cursor:  result.Cursor,
		Screen:  a.tracker.Screen(),
	}, a.style)

	a.publish(result, frame)

	key := a.config.Display.Show(frame)
	return result, overlay.IsQuitKey(key)
}

// detect runs the detector. Errors are logged and treated as frames without
// a face.
func (a *App) detect(frame *gocv.Mat) []detector.FaceLandmarks {
	faces, err := a.config.Detector.Detect(frame)
	if err != nil {
		a.detectFailures++
		if a.detectWarn.Allow() {
			log.Warn(log.Fields{"error": err, "failures": a.detectFailures}, "face detection failed")
		}
		return nil
	}
	return faces
}

// publish stores the snapshot read by observers.
func (a *App) publish(result tracking.Frame, frame *gocv.Mat) {
	var jpeg []byte
	if a.config.Stream {
		data, err := overlay.EncodeJPEG(frame)
		if err != nil {
			log.Debug(log.Fields{"error": err}, "frame encode failed")
		} else {
			jpeg = data
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.status.Cursor = result.Cursor
	a.status.Face = result.Face
	a.status.Signal = result.Valid
	a.status.UpdatedAt = time.Now()
	if jpeg != nil {
		a.jpeg = jpeg
		a.jpegSeq++
	}
}

// startRecorder opens a session in the store. Recording failures are logged
// and never stop tracking.
func (a *App) startRecorder() *recorder {
	if a.config.Store == nil {
		return nil
	}

	rec, err := newRecorder(a.config.Store, a.config.Profile.Mode, a.tracker.Screen(), a.config.SampleEvery)
	if err != nil {
		log.Warn(log.Fields{"error": err}, "session recording disabled")
		return nil
	}

	a.mu.Lock()
	a.status.SessionID = rec.id()
	a.mu.Unlock()
	return rec
}
