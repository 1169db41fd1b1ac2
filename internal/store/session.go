package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// Session is one recorded tracking run.
type Session struct {
	ID           string     `json:"id"`
	Mode         string     `json:"mode"`
	ScreenWidth  int        `json:"screen_width"`
	ScreenHeight int        `json:"screen_height"`
	Frames       int        `json:"frames"`
	FaceFrames   int        `json:"face_frames"`
	SignalFrames int        `json:"signal_frames"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
}

// Counters are the per-session frame tallies.
type Counters struct {
	Frames       int `json:"frames"`
	FaceFrames   int `json:"face_frames"`
	SignalFrames int `json:"signal_frames"`
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// sessionRow is the column mapping of the sessions table.
type sessionRow struct {
	ID           string       `db:"id"`
	Mode         string       `db:"mode"`
	ScreenWidth  int          `db:"screen_width"`
	ScreenHeight int          `db:"screen_height"`
	Frames       int          `db:"frames"`
	FaceFrames   int          `db:"face_frames"`
	SignalFrames int          `db:"signal_frames"`
	StartedAt    time.Time    `db:"started_at"`
	EndedAt      sql.NullTime `db:"ended_at"`
}

func (row sessionRow) session() *Session {
	sess := &Session{
		ID:           row.ID,
		Mode:         row.Mode,
		ScreenWidth:  row.ScreenWidth,
		ScreenHeight: row.ScreenHeight,
		Frames:       row.Frames,
		FaceFrames:   row.FaceFrames,
		SignalFrames: row.SignalFrames,
		StartedAt:    row.StartedAt,
	}
	if row.EndedAt.Valid {
		t := row.EndedAt.Time
		sess.EndedAt = &t
	}
	return sess
}

const (
	querySelectSessions = `SELECT id, mode, screen_width, screen_height, frames, face_frames,
		signal_frames, started_at, ended_at FROM sessions`

	queryCreateSession = `INSERT INTO sessions (id, mode, screen_width, screen_height, frames,
		face_frames, signal_frames, started_at, ended_at)
		VALUES (:id, :mode, :screen_width, :screen_height, :frames,
		:face_frames, :signal_frames, :started_at, :ended_at)`
)

// Create inserts a new session. A zero StartedAt is set to now.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	row := sessionRow{
		ID:           sess.ID,
		Mode:         sess.Mode,
		ScreenWidth:  sess.ScreenWidth,
		ScreenHeight: sess.ScreenHeight,
		Frames:       sess.Frames,
		FaceFrames:   sess.FaceFrames,
		SignalFrames: sess.SignalFrames,
		StartedAt:    sess.StartedAt,
	}
	if sess.EndedAt != nil {
		row.EndedAt = sql.NullTime{Time: *sess.EndedAt, Valid: true}
	}

	_, err := r.db.NamedExec(queryCreateSession, row)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	var row sessionRow
	if err := r.db.Get(&row, querySelectSessions+` WHERE id = ?`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return row.session(), nil
}

// List retrieves sessions, newest first. A limit of zero or less returns all.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1
	}

	var rows []sessionRow
	if err := r.db.Select(&rows, querySelectSessions+` ORDER BY started_at DESC LIMIT ?`, limit); err != nil {
		return nil, err
	}

	sessions := make([]*Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.session())
	}
	return sessions, nil
}

// UpdateCounters stores the latest frame tallies of a running session.
func (r *SessionRepository) UpdateCounters(id string, c Counters) error {
	return r.exec(
		`UPDATE sessions SET frames = ?, face_frames = ?, signal_frames = ? WHERE id = ?`,
		c.Frames, c.FaceFrames, c.SignalFrames, id,
	)
}

// Finish stores the final tallies and the end time of a session.
func (r *SessionRepository) Finish(id string, c Counters, endedAt time.Time) error {
	return r.exec(
		`UPDATE sessions SET frames = ?, face_frames = ?, signal_frames = ?, ended_at = ? WHERE id = ?`,
		c.Frames, c.FaceFrames, c.SignalFrames, endedAt, id,
	)
}

// Delete removes a session and its samples.
func (r *SessionRepository) Delete(id string) error {
	return r.exec(`DELETE FROM sessions WHERE id = ?`, id)
}

// exec runs a statement that must touch exactly one existing session.
func (r *SessionRepository) exec(query string, args ...any) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
