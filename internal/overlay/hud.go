// Package overlay draws the heads-up display on camera frames and shows them.
package overlay

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/headgaze/internal/calibration"
	"github.com/ayusman/headgaze/internal/extract"
	"github.com/ayusman/headgaze/internal/smoothing"
)

var (
	colorWhite     = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	colorSubtitle  = color.RGBA{R: 220, G: 220, B: 220, A: 0}
	colorBlack     = color.RGBA{A: 0}
	colorMarker    = color.RGBA{G: 255, A: 0}
	colorBand      = color.RGBA{R: 255, G: 180, B: 180, A: 0}
	colorBandInert = color.RGBA{R: 120, G: 90, B: 90, A: 0}
)

// Style sets the HUD geometry of one tracking mode.
type Style struct {
	BarHeight    int
	BarAlpha     float64
	HintScale    float64
	MarkerRadius int
	CursorRadius int
	// DimBand draws the band in a muted color on frames without a signal.
	DimBand bool
}

// GazeStyle is the HUD used in gaze mode.
func GazeStyle() Style {
	return Style{BarHeight: 65, BarAlpha: 0.35, HintScale: 0.5, MarkerRadius: 3, CursorRadius: 8, DimBand: true}
}

// HeadStyle is the HUD used in head mode.
func HeadStyle() Style {
	return Style{BarHeight: 60, BarAlpha: 0.35, HintScale: 0.55, MarkerRadius: 5, CursorRadius: 7}
}

// Scene is everything drawn on one frame.
type Scene struct {
	Title   string
	Hint    string
	Band    calibration.Band
	Signal  bool
	Markers []extract.Point
	Cursor  smoothing.Cursor
	Screen  calibration.Screen
}

// Draw renders scene onto frame in place.
func Draw(frame *gocv.Mat, scene Scene, style Style) {
	if frame == nil || frame.Empty() {
		return
	}
	w, h := frame.Cols(), frame.Rows()

	drawBar(frame, w, style)

	gocv.PutText(frame, scene.Title, image.Pt(10, 25), gocv.FontHersheySimplex, 0.7, colorWhite, 2)
	gocv.PutText(frame, scene.Hint, image.Pt(10, 50), gocv.FontHersheySimplex, style.HintScale, colorSubtitle, 1)

	bandColor := colorBand
	if style.DimBand && !scene.Signal {
		bandColor = colorBandInert
	}
	gocv.Rectangle(frame, BandRect(scene.Band, w, h), bandColor, 1)

	for _, m := range scene.Markers {
		gocv.Circle(frame, ToFrame(m, w, h), style.MarkerRadius, colorMarker, -1)
	}

	c := Project(scene.Cursor, scene.Screen, w, h)
	gocv.Circle(frame, c, style.CursorRadius, colorWhite, 2)
	gocv.Line(frame, image.Pt(c.X-10, c.Y), image.Pt(c.X+10, c.Y), colorWhite, 1)
	gocv.Line(frame, image.Pt(c.X, c.Y-10), image.Pt(c.X, c.Y+10), colorWhite, 1)
}

// drawBar blends a black title bar over the top of the frame.
func drawBar(frame *gocv.Mat, w int, style Style) {
	shade := frame.Clone()
	defer shade.Close()

	gocv.Rectangle(&shade, image.Rect(0, 0, w, style.BarHeight), colorBlack, -1)
	gocv.AddWeighted(shade, style.BarAlpha, *frame, 1-style.BarAlpha, 0, frame)
}

// BandRect projects the calibration band onto a w×h frame.
func BandRect(b calibration.Band, w, h int) image.Rectangle {
	return image.Rect(
		int(b.XMin*float64(w)), int(b.YMin*float64(h)),
		int(b.XMax*float64(w)), int(b.YMax*float64(h)),
	)
}

// ToFrame converts a normalized image point into frame pixels.
func ToFrame(p extract.Point, w, h int) image.Point {
	return image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
}

// Project places the screen cursor at the matching spot of a w×h frame.
// An empty screen projects to the frame origin.
func Project(c smoothing.Cursor, screen calibration.Screen, w, h int) image.Point {
	if screen.Width <= 0 || screen.Height <= 0 {
		return image.Point{}
	}
	return image.Pt(
		int(float64(c.X)/float64(screen.Width)*float64(w)),
		int(float64(c.Y)/float64(screen.Height)*float64(h)),
	)
}

// EncodeJPEG compresses frame for streaming.
func EncodeJPEG(frame *gocv.Mat) ([]byte, error) {
	if frame == nil || frame.Empty() {
		return nil, fmt.Errorf("encode jpeg: empty frame")
	}
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()
	return bytes.Clone(buf.GetBytes()), nil
}
