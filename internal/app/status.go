package app

import (
	"time"

	"github.com/ayusman/headgaze/internal/calibration"
	"github.com/ayusman/headgaze/internal/smoothing"
	"github.com/ayusman/headgaze/internal/store"
	"github.com/ayusman/headgaze/internal/tracking"
)

// Status is a snapshot of the controller loop.
type Status struct {
	Running   bool               `json:"running"`
	Enabled   bool               `json:"enabled"`
	Mode      tracking.Mode      `json:"mode"`
	SessionID string             `json:"session_id,omitempty"`
	Screen    calibration.Screen `json:"screen"`
	Cursor    smoothing.Cursor   `json:"cursor"`
	Face      bool               `json:"face"`
	Signal    bool               `json:"signal"`
	Counters  store.Counters     `json:"counters"`
	UpdatedAt time.Time          `json:"updated_at"`
}
