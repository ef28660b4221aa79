package store

import (
	"database/sql"
	"time"
)

// Sample represents one calibration gaze observation stored in the database.
// The set_x/set_y columns hold the target position in millimetres; target_nx
// and target_ny keep the normalized position it was captured against.
type Sample struct {
	ID          int64
	SessionID   string
	SampleIndex int
	CapturedAt  time.Time
	FrameIndex  int
	GazeX       float64
	GazeY       float64
	GazeZ       float64
	Yaw         float64
	Pitch       float64
	Roll        float64
	TargetNX    float64
	TargetNY    float64
	SetX        float64
	SetY        float64
	SetZ        float64
}

// SampleRepository provides CRUD operations for calibration samples.
type SampleRepository struct {
	db *sql.DB
}

// Samples returns the sample repository for this store.
func (s *Store) Samples() *SampleRepository {
	return &SampleRepository{db: s.db}
}

// Create inserts all samples for a session in a single transaction.
func (r *SampleRepository) Create(sessionID string, samples []Sample) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO calibration_samples
		(session_id, sample_index, captured_at, frame_index,
		 gaze_x, gaze_y, gaze_z, yaw, pitch, roll,
		 target_nx, target_ny, set_x, set_y, set_z)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, smp := range samples {
		if _, err := stmt.Exec(
			sessionID, i, smp.CapturedAt, smp.FrameIndex,
			smp.GazeX, smp.GazeY, smp.GazeZ, smp.Yaw, smp.Pitch, smp.Roll,
			smp.TargetNX, smp.TargetNY, smp.SetX, smp.SetY, smp.SetZ,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetBySessionID retrieves all samples for a session in capture order.
func (r *SampleRepository) GetBySessionID(sessionID string) ([]Sample, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, sample_index, captured_at, frame_index,
		 gaze_x, gaze_y, gaze_z, yaw, pitch, roll,
		 target_nx, target_ny, set_x, set_y, set_z
		 FROM calibration_samples
		 WHERE session_id = ?
		 ORDER BY sample_index`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var smp Sample
		if err := rows.Scan(
			&smp.ID, &smp.SessionID, &smp.SampleIndex, &smp.CapturedAt, &smp.FrameIndex,
			&smp.GazeX, &smp.GazeY, &smp.GazeZ, &smp.Yaw, &smp.Pitch, &smp.Roll,
			&smp.TargetNX, &smp.TargetNY, &smp.SetX, &smp.SetY, &smp.SetZ,
		); err != nil {
			return nil, err
		}
		samples = append(samples, smp)
	}

	return samples, rows.Err()
}

// DeleteBySessionID removes all samples for a session.
func (r *SampleRepository) DeleteBySessionID(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM calibration_samples WHERE session_id = ?`, sessionID)
	return err
}
