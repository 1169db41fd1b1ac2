// Package tracking turns detected faces into cursor positions.
//
// A Tracker pairs a pluggable extract.Extractor with the shared calibration
// Mapper and smoothing Smoother and owns the cursor state of one session.
package tracking

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ayusman/headgaze/internal/calibration"
	"github.com/ayusman/headgaze/internal/detector"
	"github.com/ayusman/headgaze/internal/extract"
)

// Mode selects the signal that drives the cursor.
type Mode string

const (
	// ModeGaze drives the cursor with the iris position inside the eyes.
	ModeGaze Mode = "gaze"
	// ModeHead drives the cursor with the position of one face landmark.
	ModeHead Mode = "head"
)

// Profile holds the compiled-in tunables of one pipeline.
type Profile struct {
	Mode Mode `validate:"oneof=gaze head"`

	// Smoothing is the weight given to each new target (0 frozen, 1 no smoothing).
	Smoothing float64 `validate:"gte=0,lte=1"`

	// Band is the part of raw signal space that spans the screen.
	Band calibration.Band

	// Eyes are the eye descriptors used in gaze mode.
	Eyes []extract.EyeRegion `validate:"required_if=Mode gaze"`

	// LandmarkIndex is the landmark followed in head mode.
	LandmarkIndex int `validate:"gte=0"`

	// Detector thresholds for the Face Mesh model.
	MinDetectionConf float64 `validate:"gte=0,lte=1"`
	MinTrackingConf  float64 `validate:"gte=0,lte=1"`

	// HUD text.
	Title string
	Hint  string
}

// GazeProfile returns the eye-gaze pipeline settings.
func GazeProfile() Profile {
	return Profile{
		Mode:      ModeGaze,
		Smoothing: 0.5,
		// Iris-in-eye space: 0 = outer/top of the eye, 1 = inner/bottom.
		Band:             calibration.Band{XMin: 0.15, XMax: 0.85, YMin: 0.20, YMax: 0.80},
		Eyes:             []extract.EyeRegion{extract.LeftEye, extract.RightEye},
		LandmarkIndex:    detector.NoseTip,
		MinDetectionConf: 0.6,
		MinTrackingConf:  0.6,
		Title:            "HeadGaze - Eye Gaze Mouse",
		Hint:             "ESC/Q: Quit  |  Keep head steady, move only eyes to control cursor.",
	}
}

// HeadProfile returns the head-position pipeline settings.
func HeadProfile() Profile {
	return Profile{
		Mode:      ModeHead,
		Smoothing: 0.35,
		// Camera space. A smaller band needs less head motion to cross the screen.
		Band:             calibration.Band{XMin: 0.25, XMax: 0.75, YMin: 0.25, YMax: 0.95},
		LandmarkIndex:    detector.NoseTip,
		MinDetectionConf: 0.5,
		MinTrackingConf:  0.5,
		Title:            "HeadGaze - Head-controlled cursor",
		Hint:             "ESC/Q: Quit  |  Move head inside box to span full screen",
	}
}

// ProfileFor returns the built-in profile for mode.
func ProfileFor(mode Mode) (Profile, error) {
	switch mode {
	case ModeGaze:
		return GazeProfile(), nil
	case ModeHead:
		return HeadProfile(), nil
	default:
		return Profile{}, fmt.Errorf("unknown tracking mode %q", mode)
	}
}

var validate = validator.New()

// Validate checks the profile's ranges. A degenerate band is allowed; it maps
// to the screen center.
func (p Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid %s profile: %w", p.Mode, err)
	}
	return nil
}

// Extractor builds the signal extractor for the profile.
func (p Profile) Extractor() extract.Extractor {
	if p.Mode == ModeHead {
		return extract.NewPosition(p.LandmarkIndex)
	}
	return extract.NewGaze(p.Eyes...)
}

// DetectorConfig returns the Face Mesh settings for the profile.
func (p Profile) DetectorConfig() detector.Config {
	return detector.Config{
		MaxFaces:        1,
		RefineLandmarks: true,
		MinConfidence:   p.MinDetectionConf,
		MinTrackingConf: p.MinTrackingConf,
	}
}
