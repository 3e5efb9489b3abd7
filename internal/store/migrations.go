package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Key/value settings, including the persisted force magnitudes
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// One row per run of the simulation
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			ticks INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Pinch transitions observed during a session
		`CREATE TABLE IF NOT EXISTS pinch_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			hand TEXT NOT NULL CHECK(hand IN ('LEFT', 'RIGHT')),
			pinched INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			x REAL NOT NULL,
			y REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_pinch_events_session_id ON pinch_events(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
