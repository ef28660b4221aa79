package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/nivedita/drishti/internal/screen"
)

// Session represents a candidate calibration session and its screen record.
type Session struct {
	ID          string
	CandidateID string
	Screen      screen.Info
	CreatedAt   time.Time
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session into the database.
func (r *SessionRepository) Create(sess *Session) error {
	sess.CreatedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, candidate_id, collection_method, width_px, height_px,
		 width_mm, height_mm, dpi, diagonal_inches, camera_position, distance_cm,
		 monitor_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sess.ID, sess.CandidateID, sess.Screen.CollectionMethod,
		sess.Screen.WidthPx, sess.Screen.HeightPx, sess.Screen.WidthMm, sess.Screen.HeightMm,
		sess.Screen.DPI, sess.Screen.DiagonalInches, sess.Screen.CameraPosition,
		sess.Screen.DistanceCm, sess.Screen.MonitorName, sess.CreatedAt,
	)
	return err
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess := &Session{}

	err := r.db.QueryRow(
		`SELECT id, candidate_id, collection_method, width_px, height_px, width_mm,
		 height_mm, dpi, diagonal_inches, camera_position, distance_cm, monitor_name,
		 created_at
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(
		&sess.ID, &sess.CandidateID, &sess.Screen.CollectionMethod,
		&sess.Screen.WidthPx, &sess.Screen.HeightPx, &sess.Screen.WidthMm, &sess.Screen.HeightMm,
		&sess.Screen.DPI, &sess.Screen.DiagonalInches, &sess.Screen.CameraPosition,
		&sess.Screen.DistanceCm, &sess.Screen.MonitorName, &sess.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	sess.Screen.CandidateID = sess.CandidateID
	sess.Screen.Timestamp = sess.CreatedAt
	return sess, nil
}

// LatestByCandidate retrieves the most recent session for a candidate.
func (r *SessionRepository) LatestByCandidate(candidateID string) (*Session, error) {
	var id string
	err := r.db.QueryRow(
		`SELECT id FROM sessions WHERE candidate_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		candidateID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r.GetByID(id)
}

// ListCandidates returns the distinct candidate IDs with stored sessions.
func (r *SessionRepository) ListCandidates() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT candidate_id FROM sessions ORDER BY candidate_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		candidates = append(candidates, id)
	}
	return candidates, rows.Err()
}

// Delete removes a session and, via foreign keys, its samples and transforms.
func (r *SessionRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
