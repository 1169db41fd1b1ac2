package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per tracking run
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL CHECK(mode IN ('gaze', 'head')),
			screen_width INTEGER NOT NULL,
			screen_height INTEGER NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			face_frames INTEGER NOT NULL DEFAULT 0,
			signal_frames INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Cursor samples table - sampled cursor trace of a session
		`CREATE TABLE IF NOT EXISTS cursor_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			sequence INTEGER NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			valid INTEGER NOT NULL DEFAULT 1,
			timestamp_ms INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_cursor_samples_session_id ON cursor_samples(session_id, sequence)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
