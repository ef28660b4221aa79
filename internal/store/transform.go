package store

import (
	"database/sql"
	"errors"
	"time"
)

// TransformRecord is a solved transform persisted as its matrix artifact.
type TransformRecord struct {
	ID        int64
	SessionID string
	Kind      string
	Artifact  []byte
	CreatedAt time.Time
}

// TransformRepository provides operations for stored transforms.
type TransformRepository struct {
	db *sql.DB
}

// Transforms returns the transform repository for this store.
func (s *Store) Transforms() *TransformRepository {
	return &TransformRepository{db: s.db}
}

// Create inserts a new transform row. Recalibrations insert again rather
// than updating, so earlier transforms stay readable.
func (r *TransformRepository) Create(rec *TransformRecord) error {
	rec.CreatedAt = time.Now()

	res, err := r.db.Exec(
		`INSERT INTO transforms (session_id, kind, artifact, created_at) VALUES (?, ?, ?, ?)`,
		rec.SessionID, rec.Kind, string(rec.Artifact), rec.CreatedAt,
	)
	if err != nil {
		return err
	}
	rec.ID, err = res.LastInsertId()
	return err
}

// LatestBySessionID retrieves the most recent transform for a session.
func (r *TransformRepository) LatestBySessionID(sessionID string) (*TransformRecord, error) {
	rec := &TransformRecord{}
	var artifact string

	err := r.db.QueryRow(
		`SELECT id, session_id, kind, artifact, created_at
		 FROM transforms WHERE session_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		sessionID,
	).Scan(&rec.ID, &rec.SessionID, &rec.Kind, &artifact, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rec.Artifact = []byte(artifact)
	return rec, nil
}

// CountBySessionID returns how many transforms a session has accumulated.
func (r *TransformRepository) CountBySessionID(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM transforms WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}
