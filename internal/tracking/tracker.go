package tracking

import (
	"github.com/ayusman/headgaze/internal/calibration"
	"github.com/ayusman/headgaze/internal/detector"
	"github.com/ayusman/headgaze/internal/extract"
	"github.com/ayusman/headgaze/internal/smoothing"
)

// Frame is the outcome of one tracker update.
type Frame struct {
	// Cursor is the position to render. On frames without a signal it is the
	// held position from the previous frame.
	Cursor smoothing.Cursor `json:"cursor"`
	// Face reports whether the detector found a face.
	Face bool `json:"face"`
	// Valid reports whether a signal was extracted. Only valid frames move
	// the OS cursor.
	Valid bool `json:"valid"`
	// Raw is the unmapped control value of a valid frame.
	Raw extract.Point `json:"raw"`
	// Target is the mapped, unsmoothed screen position of a valid frame.
	Target calibration.Target `json:"target"`
	// Markers are overlay positions in normalized image coordinates.
	Markers []extract.Point `json:"markers,omitempty"`
}

// Tracker runs extract, map and smooth for one session. It is not safe for
// concurrent use; frames must be fed in capture order from one goroutine.
type Tracker struct {
	profile   Profile
	extractor extract.Extractor
	mapper    *calibration.Mapper
	smoother  *smoothing.Smoother
	cursor    smoothing.Cursor
}

// New creates a Tracker for profile on screen. The cursor starts at the
// screen center.
func New(profile Profile, screen calibration.Screen) *Tracker {
	return NewWithExtractor(profile, profile.Extractor(), screen)
}

// NewWithExtractor creates a Tracker using a custom extractor with the
// profile's band and smoothing.
func NewWithExtractor(profile Profile, ex extract.Extractor, screen calibration.Screen) *Tracker {
	return &Tracker{
		profile:   profile,
		extractor: ex,
		mapper:    calibration.NewMapper(profile.Band, screen),
		smoother:  smoothing.New(profile.Smoothing),
		cursor:    smoothing.CenterOf(screen),
	}
}

// Profile returns the tracker's profile.
func (t *Tracker) Profile() Profile {
	return t.profile
}

// Screen returns the screen extent the tracker maps onto.
func (t *Tracker) Screen() calibration.Screen {
	return t.mapper.Screen()
}

// Cursor returns the current cursor state.
func (t *Tracker) Cursor() smoothing.Cursor {
	return t.cursor
}

// Reset moves the cursor state back to the screen center.
func (t *Tracker) Reset() {
	t.cursor = smoothing.CenterOf(t.mapper.Screen())
}

// Update processes the faces detected in one frame. Only the first face is
// used. Without a face or a signal the cursor state is left unchanged.
func (t *Tracker) Update(faces []detector.FaceLandmarks) Frame {
	if len(faces) == 0 {
		return t.Hold()
	}

	reading, ok := t.extractor.Extract(&faces[0])
	if !ok {
		frame := t.Hold()
		frame.Face = true
		return frame
	}

	target := t.mapper.Map(reading.Value)
	cursor := t.smoother.Step(&t.cursor, target)

	return Frame{
		Cursor:  cursor,
		Face:    true,
		Valid:   true,
		Raw:     reading.Value,
		Target:  target,
		Markers: reading.Markers,
	}
}

// Hold returns a frame that keeps the current cursor without a signal.
func (t *Tracker) Hold() Frame {
	return Frame{Cursor: t.cursor}
}
