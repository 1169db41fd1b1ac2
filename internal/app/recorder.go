package app

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/headgaze/internal/calibration"
	"github.com/ayusman/headgaze/internal/log"
	"github.com/ayusman/headgaze/internal/store"
	"github.com/ayusman/headgaze/internal/tracking"
)

// flushSize is the number of buffered samples written per transaction.
const flushSize = 64

// recorder writes the session row and the sampled cursor trace. A nil
// recorder records nothing.
type recorder struct {
	store    *store.Store
	session  *store.Session
	every    int
	seq      int
	pending  []store.CursorSample
	counters store.Counters
}

func newRecorder(s *store.Store, mode tracking.Mode, screen calibration.Screen, every int) (*recorder, error) {
	sess := &store.Session{
		ID:           uuid.NewString(),
		Mode:         string(mode),
		ScreenWidth:  screen.Width,
		ScreenHeight: screen.Height,
		StartedAt:    time.Now(),
	}
	if err := s.Sessions().Create(sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &recorder{
		store:   s,
		session: sess,
		every:   every,
		pending: make([]store.CursorSample, 0, flushSize),
	}, nil
}

func (r *recorder) id() string {
	if r == nil {
		return ""
	}
	return r.session.ID
}

// observe records one processed frame.
func (r *recorder) observe(f tracking.Frame, counters store.Counters, now time.Time) {
	if r == nil {
		return
	}
	r.counters = counters

	if r.every <= 0 || (counters.Frames-1)%r.every != 0 {
		return
	}

	r.pending = append(r.pending, store.CursorSample{
		SessionID:   r.session.ID,
		Sequence:    r.seq,
		X:           f.Cursor.X,
		Y:           f.Cursor.Y,
		Valid:       f.Valid,
		TimestampMs: now.Sub(r.session.StartedAt).Milliseconds(),
	})
	r.seq++

	if len(r.pending) >= flushSize {
		r.flush()
	}
}

// flush writes buffered samples and the current counters.
func (r *recorder) flush() {
	if err := r.store.Samples().Append(r.session.ID, r.pending); err != nil {
		log.Warn(log.Fields{"session": r.session.ID, "error": err}, "cursor samples not saved")
	}
	r.pending = r.pending[:0]

	if err := r.store.Sessions().UpdateCounters(r.session.ID, r.counters); err != nil {
		log.Warn(log.Fields{"session": r.session.ID, "error": err}, "session counters not saved")
	}
}

// finish flushes the trace and closes the session.
func (r *recorder) finish(now time.Time) {
	if r == nil {
		return
	}
	if len(r.pending) > 0 {
		r.flush()
	}
	if err := r.store.Sessions().Finish(r.session.ID, r.counters, now); err != nil {
		log.Warn(log.Fields{"session": r.session.ID, "error": err}, "session not closed")
		return
	}
	log.Info(log.Fields{
		"session": r.session.ID,
		"frames":  r.counters.Frames,
		"signal":  r.counters.SignalFrames,
	}, "session recorded")
}
