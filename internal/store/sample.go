package store

import (
	"github.com/jmoiron/sqlx"
)

// CursorSample is one point of a session's cursor trace.
type CursorSample struct {
	SessionID   string `json:"session_id" db:"session_id"`
	Sequence    int    `json:"sequence" db:"sequence"`
	X           int    `json:"x" db:"x"`
	Y           int    `json:"y" db:"y"`
	Valid       bool   `json:"valid" db:"valid"`
	TimestampMs int64  `json:"timestamp_ms" db:"timestamp_ms"`
}

// SampleRepository stores cursor traces.
type SampleRepository struct {
	db *sqlx.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

const queryAppendSamples = `INSERT INTO cursor_samples (session_id, sequence, x, y, valid, timestamp_ms)
	VALUES (:session_id, :sequence, :x, :y, :valid, :timestamp_ms)`

// Append inserts samples for a session as one batch statement.
func (r *SampleRepository) Append(sessionID string, samples []CursorSample) error {
	if len(samples) == 0 {
		return nil
	}

	rows := make([]CursorSample, len(samples))
	for i, s := range samples {
		s.SessionID = sessionID
		rows[i] = s
	}

	_, err := r.db.NamedExec(queryAppendSamples, rows)
	return err
}

// ListBySession retrieves the trace of a session in sequence order.
func (r *SampleRepository) ListBySession(sessionID string) ([]CursorSample, error) {
	var samples []CursorSample
	err := r.db.Select(&samples,
		`SELECT session_id, sequence, x, y, valid, timestamp_ms
		 FROM cursor_samples
		 WHERE session_id = ?
		 ORDER BY sequence`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// CountBySession returns how many samples a session has.
func (r *SampleRepository) CountBySession(sessionID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM cursor_samples WHERE session_id = ?`, sessionID)
	return n, err
}
