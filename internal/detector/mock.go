package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu    sync.Mutex
	faces []FaceLandmarks
	queue [][]FaceLandmarks
	err   error
	calls int
	last  gocv.Mat
	seen  bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFaces sets the faces that will be returned by Detect.
func (m *MockDetector) SetFaces(faces []FaceLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faces = faces
}

// QueueFaces appends per-frame results. Queued results are returned in order
// before falling back to the faces set with SetFaces.
func (m *MockDetector) QueueFaces(frames ...[]FaceLandmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, frames...)
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect was called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastFrame returns a copy of the most recent frame passed to Detect. The
// caller owns the returned Mat.
func (m *MockDetector) LastFrame() (gocv.Mat, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.seen {
		return gocv.NewMat(), false
	}
	return m.last.Clone(), true
}

// Detect returns the pre-configured faces or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]FaceLandmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if frame != nil {
		if m.seen {
			m.last.Close()
		}
		m.last = frame.Clone()
		m.seen = true
	}
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		return next, nil
	}
	return m.faces, nil
}

// Close releases the recorded frame.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen {
		m.last.Close()
		m.seen = false
	}
	return nil
}

// GazeFace returns a synthetic refined face whose irises sit at (hx, hy) inside
// both eye boxes, where 0 is the outer/top edge and 1 the inner/bottom edge.
// All other landmarks are parked at the frame center.
func GazeFace(hx, hy float64) FaceLandmarks {
	face := FaceLandmarks{
		Points: make([]Point3D, NumLandmarks),
		Score:  0.95,
	}
	for i := range face.Points {
		face.Points[i] = Point3D{X: 0.5, Y: 0.5}
	}

	placeEye(face.Points, LeftEyeOuter, LeftEyeInner, LeftEyeTop, LeftEyeBottom,
		LeftIrisFirst, LeftIrisLast, 0.35, 0.45, 0.40, 0.44, hx, hy)
	placeEye(face.Points, RightEyeOuter, RightEyeInner, RightEyeTop, RightEyeBottom,
		RightIrisFirst, RightIrisLast, 0.55, 0.65, 0.40, 0.44, hx, hy)

	return face
}

// placeEye lays out one eye box spanning [x0,x1]×[y0,y1] with the iris
// cluster centered at the relative position (hx, hy).
func placeEye(points []Point3D, outer, inner, top, bottom, irisFirst, irisLast int,
	x0, x1, y0, y1, hx, hy float64) {
	midX := (x0 + x1) / 2
	midY := (y0 + y1) / 2

	points[outer] = Point3D{X: x0, Y: midY}
	points[inner] = Point3D{X: x1, Y: midY}
	points[top] = Point3D{X: midX, Y: y0}
	points[bottom] = Point3D{X: midX, Y: y1}

	cx := x0 + hx*(x1-x0)
	cy := y0 + hy*(y1-y0)
	const r = 0.005
	offsets := [4]Point3D{{X: r}, {Y: -r}, {X: -r}, {Y: r}}
	for i, k := irisFirst, 0; i <= irisLast; i, k = i+1, k+1 {
		points[i] = Point3D{X: cx + offsets[k].X, Y: cy + offsets[k].Y}
	}
}

// HeadFace returns a synthetic base face (no iris refinement) with the nose
// tip at (x, y).
func HeadFace(x, y float64) FaceLandmarks {
	face := FaceLandmarks{
		Points: make([]Point3D, NumBaseLandmarks),
		Score:  0.95,
	}
	for i := range face.Points {
		face.Points[i] = Point3D{X: 0.5, Y: 0.5}
	}
	face.Points[NoseTip] = Point3D{X: x, Y: y}
	return face
}
