// Package testdata provides recorded tracking scenarios for tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"

	"github.com/ayusman/headgaze/internal/calibration"
	"github.com/ayusman/headgaze/internal/detector"
)

//go:embed scenarios/*.json
var scenariosFS embed.FS

// Frame kinds in a scenario.
const (
	// KindFace is a face carrying the scenario's signal at (X, Y).
	KindFace = "face"
	// KindBare is a face without iris landmarks, placed at (X, Y).
	KindBare = "bare"
	// KindNone is a frame without a face.
	KindNone = "none"
)

// Step is one scripted detector result.
type Step struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Expect holds the outcome a scenario should produce.
type Expect struct {
	Moves        []calibration.Target `json:"moves"`
	Frames       int                  `json:"frames"`
	FaceFrames   int                  `json:"face_frames"`
	SignalFrames int                  `json:"signal_frames"`
}

// Scenario is a scripted tracking session.
type Scenario struct {
	Name   string             `json:"-"`
	Mode   string             `json:"mode"`
	Screen calibration.Screen `json:"screen"`
	Steps  []Step             `json:"frames"`
	Want   Expect             `json:"want"`
}

// LoadScenario loads a scenario by file name without extension.
func LoadScenario(name string) (*Scenario, error) {
	data, err := scenariosFS.ReadFile("scenarios/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", name, err)
	}

	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode scenario %s: %w", name, err)
	}
	sc.Name = name

	for i, s := range sc.Steps {
		switch s.Kind {
		case KindFace, KindBare, KindNone:
		default:
			return nil, fmt.Errorf("scenario %s: frame %d has unknown kind %q", name, i, s.Kind)
		}
	}
	return &sc, nil
}

// Scenarios loads every embedded scenario.
func Scenarios() ([]*Scenario, error) {
	entries, err := scenariosFS.ReadDir("scenarios")
	if err != nil {
		return nil, err
	}

	var out []*Scenario
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		sc, err := LoadScenario(name[:len(name)-len(path.Ext(name))])
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}

// Faces expands the steps into per-frame detector results.
func (s *Scenario) Faces() [][]detector.FaceLandmarks {
	frames := make([][]detector.FaceLandmarks, len(s.Steps))
	for i, step := range s.Steps {
		switch step.Kind {
		case KindNone:
			frames[i] = nil
		case KindBare:
			frames[i] = []detector.FaceLandmarks{detector.HeadFace(step.X, step.Y)}
		default:
			if s.Mode == "gaze" {
				frames[i] = []detector.FaceLandmarks{detector.GazeFace(step.X, step.Y)}
			} else {
				frames[i] = []detector.FaceLandmarks{detector.HeadFace(step.X, step.Y)}
			}
		}
	}
	return frames
}
