package extract

import (
	"gonum.org/v1/gonum/stat"

	"github.com/ayusman/headgaze/internal/detector"
)

const (
	// MinEyeExtent is the smallest eye box side accepted. Anything smaller
	// means the corners collapsed onto each other.
	MinEyeExtent = 1e-6
	// MaxEyeOffset bounds the normalized iris position. Values past it come
	// from corrupted landmark sets.
	MaxEyeOffset = 1.5
)

// EyeRegion names the landmarks that outline one eye and its iris.
type EyeRegion struct {
	Name   string
	Outer  int
	Inner  int
	Top    int
	Bottom int
	Iris   []int
}

// LeftEye and RightEye are the Face Mesh eye descriptors.
var (
	LeftEye = EyeRegion{
		Name:   "left",
		Outer:  detector.LeftEyeOuter,
		Inner:  detector.LeftEyeInner,
		Top:    detector.LeftEyeTop,
		Bottom: detector.LeftEyeBottom,
		Iris:   irisCluster(detector.LeftIrisFirst, detector.LeftIrisLast),
	}
	RightEye = EyeRegion{
		Name:   "right",
		Outer:  detector.RightEyeOuter,
		Inner:  detector.RightEyeInner,
		Top:    detector.RightEyeTop,
		Bottom: detector.RightEyeBottom,
		Iris:   irisCluster(detector.RightIrisFirst, detector.RightIrisLast),
	}
)

func irisCluster(first, last int) []int {
	idx := make([]int, 0, last-first+1)
	for i := first; i <= last; i++ {
		idx = append(idx, i)
	}
	return idx
}

// maxIndex returns the largest landmark index the region references.
func (e EyeRegion) maxIndex() int {
	m := e.Outer
	for _, i := range []int{e.Inner, e.Top, e.Bottom} {
		if i > m {
			m = i
		}
	}
	for _, i := range e.Iris {
		if i > m {
			m = i
		}
	}
	return m
}

// EyeReading is the gaze of a single eye.
type EyeReading struct {
	// Offset is the iris center relative to the eye box, 0 at the outer/top
	// edge and 1 at the inner/bottom edge.
	Offset Point
	// Iris is the iris center in normalized image coordinates.
	Iris Point
}

// ReadEye computes the iris position inside one eye's bounding box.
func ReadEye(face *detector.FaceLandmarks, eye EyeRegion) (EyeReading, bool) {
	if len(eye.Iris) == 0 || face.Len() <= eye.maxIndex() {
		return EyeReading{}, false
	}

	var corners [4]detector.Point3D
	for k, i := range [4]int{eye.Outer, eye.Inner, eye.Top, eye.Bottom} {
		p, ok := face.At(i)
		if !ok || !finite(p.X) || !finite(p.Y) {
			return EyeReading{}, false
		}
		corners[k] = p
	}
	outer, inner, top, bottom := corners[0], corners[1], corners[2], corners[3]

	xs := make([]float64, len(eye.Iris))
	ys := make([]float64, len(eye.Iris))
	for k, i := range eye.Iris {
		p, ok := face.At(i)
		if !ok || !finite(p.X) || !finite(p.Y) {
			return EyeReading{}, false
		}
		xs[k], ys[k] = p.X, p.Y
	}
	iris := Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)}

	xMin, xMax := minMax(outer.X, inner.X)
	yMin, yMax := minMax(top.Y, bottom.Y)
	w := xMax - xMin
	h := yMax - yMin
	if w <= MinEyeExtent || h <= MinEyeExtent {
		return EyeReading{}, false
	}

	offset := Point{
		X: (iris.X - xMin) / w,
		Y: (iris.Y - yMin) / h,
	}
	// Written as a positive range test so NaN fails it.
	if !(offset.X >= 0 && offset.X <= MaxEyeOffset && offset.Y >= 0 && offset.Y <= MaxEyeOffset) {
		return EyeReading{}, false
	}

	return EyeReading{Offset: offset, Iris: iris}, true
}

func minMax(a, b float64) (float64, float64) {
	if a < b {
		return a, b
	}
	return b, a
}

// Combine averages the offsets of every eye that produced a reading.
func Combine(eyes ...EyeReading) (Reading, bool) {
	if len(eyes) == 0 {
		return Reading{}, false
	}

	xs := make([]float64, len(eyes))
	ys := make([]float64, len(eyes))
	markers := make([]Point, len(eyes))
	for i, e := range eyes {
		xs[i], ys[i] = e.Offset.X, e.Offset.Y
		markers[i] = e.Iris
	}

	return Reading{
		Value:   Point{X: stat.Mean(xs, nil), Y: stat.Mean(ys, nil)},
		Markers: markers,
	}, true
}

// Gaze extracts where the eyes point from the iris position inside each eye.
type Gaze struct {
	eyes []EyeRegion
}

// NewGaze creates a gaze extractor over the given eyes, both eyes by default.
func NewGaze(eyes ...EyeRegion) *Gaze {
	if len(eyes) == 0 {
		eyes = []EyeRegion{LeftEye, RightEye}
	}
	g := &Gaze{eyes: make([]EyeRegion, len(eyes))}
	for i, e := range eyes {
		e.Iris = append([]int(nil), e.Iris...)
		g.eyes[i] = e
	}
	return g
}

// Extract implements Extractor.
func (g *Gaze) Extract(face *detector.FaceLandmarks) (Reading, bool) {
	readings := make([]EyeReading, 0, len(g.eyes))
	for _, eye := range g.eyes {
		if r, ok := ReadEye(face, eye); ok {
			readings = append(readings, r)
		}
	}
	return Combine(readings...)
}
