// Package extract derives a raw pointing signal from one face's landmarks.
//
// An Extractor turns a landmark set into a 2D value in normalized space. The
// value is unbounded here; calibration clamps and scales it afterwards.
package extract

import "github.com/ayusman/headgaze/internal/detector"

// Point is a 2D position in normalized space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Reading is the result of a successful extraction.
type Reading struct {
	// Value is the raw control value fed to calibration.
	Value Point
	// Markers are landmark positions in normalized image coordinates, kept for
	// the overlay only.
	Markers []Point
}

// Extractor produces a raw control value from one face.
// It returns false when the frame carries no usable signal.
type Extractor interface {
	Extract(face *detector.FaceLandmarks) (Reading, bool)
}
