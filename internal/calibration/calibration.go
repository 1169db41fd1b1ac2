// Package calibration maps a raw control value onto screen pixels.
//
// A Band selects the sub-rectangle of raw signal space that spans the whole
// screen. Values outside the band saturate at the nearest screen edge.
package calibration

import (
	"math"

	"github.com/ayusman/headgaze/internal/extract"
)

// Band is the calibration rectangle in raw signal space.
type Band struct {
	XMin float64 `json:"x_min"`
	XMax float64 `json:"x_max"`
	YMin float64 `json:"y_min"`
	YMax float64 `json:"y_max"`
}

// Screen is the display extent in pixels.
type Screen struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the middle pixel of the screen.
func (s Screen) Center() (int, int) {
	return s.Width / 2, s.Height / 2
}

// Target is a screen coordinate in pixels.
type Target struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Mapper maps raw values through a band onto a screen.
type Mapper struct {
	band   Band
	screen Screen
}

// NewMapper creates a Mapper. Negative screen sides are treated as zero.
func NewMapper(band Band, screen Screen) *Mapper {
	if screen.Width < 0 {
		screen.Width = 0
	}
	if screen.Height < 0 {
		screen.Height = 0
	}
	return &Mapper{band: band, screen: screen}
}

// Band returns the calibration band.
func (m *Mapper) Band() Band {
	return m.band
}

// Screen returns the screen extent.
func (m *Mapper) Screen() Screen {
	return m.screen
}

// Relative returns the raw value's position inside the band, each axis in [0, 1].
func (m *Mapper) Relative(raw extract.Point) extract.Point {
	return extract.Point{
		X: relative(raw.X, m.band.XMin, m.band.XMax),
		Y: relative(raw.Y, m.band.YMin, m.band.YMax),
	}
}

// Map returns the screen pixel for a raw value. The result lies within
// [0, Width] × [0, Height].
func (m *Mapper) Map(raw extract.Point) Target {
	rel := m.Relative(raw)
	return Target{
		X: Pixel(rel.X * float64(m.screen.Width)),
		Y: Pixel(rel.Y * float64(m.screen.Height)),
	}
}

// pixelEpsilon absorbs rounding error so that values like 539.9999999999999
// land on the pixel they denote.
const pixelEpsilon = 1e-9

// Pixel truncates a non-negative screen position to its pixel.
func Pixel(v float64) int {
	return int(math.Floor(v + pixelEpsilon))
}

// relative clamps v into [lo, hi] and rescales it to [0, 1]. An empty or
// inverted range, or a NaN input, yields the center.
func relative(v, lo, hi float64) float64 {
	if !(hi > lo) || math.IsNaN(v) {
		return 0.5
	}
	v = math.Max(lo, math.Min(hi, v))
	r := (v - lo) / (hi - lo)
	if math.IsNaN(r) {
		return 0.5
	}
	return r
}
