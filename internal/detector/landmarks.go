// Package detector provides face landmark detection interfaces and types for cursor tracking.
package detector

// Face landmark indices following the MediaPipe Face Mesh convention with
// refined (iris) landmarks enabled.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
const (
	// NoseTip is the midline point just below the nose bridge. It is stable under
	// eye and mouth movement, which makes it a good head-position anchor.
	NoseTip = 1

	LeftEyeOuter  = 33
	LeftEyeInner  = 133
	LeftEyeTop    = 159
	LeftEyeBottom = 145

	RightEyeOuter  = 362
	RightEyeInner  = 263
	RightEyeTop    = 386
	RightEyeBottom = 374

	// Iris clusters, four points tracing each iris boundary.
	RightIrisFirst = 469
	RightIrisLast  = 472
	LeftIrisFirst  = 474
	LeftIrisLast   = 477

	// NumLandmarks is the landmark count with iris refinement on.
	NumLandmarks = 478
	// NumBaseLandmarks is the landmark count without iris refinement.
	NumBaseLandmarks = 468
)

// Point3D represents a landmark position. X and Y are fractions of the frame
// width and height; Z is relative depth and is not used for pointing.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FaceLandmarks holds the landmarks of a single detected face in index order.
type FaceLandmarks struct {
	Points []Point3D `json:"points"`
	Score  float64   `json:"score"`
}

// Len returns the number of landmarks.
func (f *FaceLandmarks) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Points)
}

// At returns the landmark at index i, or false if the face has no such landmark.
func (f *FaceLandmarks) At(i int) (Point3D, bool) {
	if f == nil || i < 0 || i >= len(f.Points) {
		return Point3D{}, false
	}
	return f.Points[i], true
}

// HasIris reports whether the refined iris landmarks are present.
func (f *FaceLandmarks) HasIris() bool {
	return f.Len() >= NumLandmarks
}
