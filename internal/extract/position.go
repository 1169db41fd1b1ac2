package extract

import (
	"math"

	"github.com/ayusman/headgaze/internal/detector"
)

// Position uses one landmark's raw image position as the signal.
type Position struct {
	index int
}

// NewPosition creates a position extractor tracking landmark index.
func NewPosition(index int) *Position {
	return &Position{index: index}
}

// Index returns the tracked landmark index.
func (p *Position) Index() int {
	return p.index
}

// Extract implements Extractor.
func (p *Position) Extract(face *detector.FaceLandmarks) (Reading, bool) {
	lm, ok := face.At(p.index)
	if !ok || !finite(lm.X) || !finite(lm.Y) {
		return Reading{}, false
	}

	pt := Point{X: lm.X, Y: lm.Y}
	return Reading{Value: pt, Markers: []Point{pt}}, true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
