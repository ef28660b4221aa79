package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per candidate calibration session,
		// including the screen-info record collected at setup
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			candidate_id TEXT NOT NULL,
			collection_method TEXT NOT NULL DEFAULT 'manual',
			width_px INTEGER NOT NULL,
			height_px INTEGER NOT NULL,
			width_mm REAL NOT NULL,
			height_mm REAL NOT NULL,
			dpi REAL NOT NULL,
			diagonal_inches REAL NOT NULL,
			camera_position TEXT NOT NULL DEFAULT '',
			distance_cm REAL NOT NULL DEFAULT 0,
			monitor_name TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Calibration samples table - one row per gaze observation captured
		// during the guided calibration sequence
		`CREATE TABLE IF NOT EXISTS calibration_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			sample_index INTEGER NOT NULL,
			captured_at DATETIME NOT NULL,
			frame_index INTEGER NOT NULL,
			gaze_x REAL NOT NULL,
			gaze_y REAL NOT NULL,
			gaze_z REAL NOT NULL,
			yaw REAL NOT NULL,
			pitch REAL NOT NULL,
			roll REAL NOT NULL,
			target_nx REAL NOT NULL,
			target_ny REAL NOT NULL,
			set_x REAL NOT NULL,
			set_y REAL NOT NULL,
			set_z REAL NOT NULL DEFAULT 0
		)`,

		// Transforms table - solved transforms as matrix artifacts; a
		// recalibration inserts a new row, prior rows are never mutated
		`CREATE TABLE IF NOT EXISTS transforms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			kind TEXT NOT NULL CHECK(kind IN ('rigid', 'affine')),
			artifact TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_sessions_candidate_id ON sessions(candidate_id)`,
		`CREATE INDEX IF NOT EXISTS idx_calibration_samples_session_id ON calibration_samples(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transforms_session_id ON transforms(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
