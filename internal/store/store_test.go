package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/nivedita/drishti/internal/screen"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestSession(candidateID string) *Session {
	geom := screen.Geometry{WidthPx: 1920, HeightPx: 1080, WidthMm: 474.13, HeightMm: 296.33}
	return &Session{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		Screen:      screen.NewInfo(candidateID, geom, "top_center", 60),
	}
}

func TestSessionRepository_CreateAndGet(t *testing.T) {
	s := newTestStore(t)
	sess := newTestSession("cand-1")

	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	got, err := s.Sessions().GetByID(sess.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.CandidateID != "cand-1" {
		t.Errorf("CandidateID = %q, want cand-1", got.CandidateID)
	}
	if got.Screen.WidthPx != 1920 || got.Screen.HeightPx != 1080 {
		t.Errorf("unexpected pixel extents %dx%d", got.Screen.WidthPx, got.Screen.HeightPx)
	}
	if got.Screen.WidthMm != 474.13 || got.Screen.HeightMm != 296.33 {
		t.Errorf("unexpected physical extents %fx%f", got.Screen.WidthMm, got.Screen.HeightMm)
	}
	if got.Screen.CameraPosition != "top_center" {
		t.Errorf("CameraPosition = %q", got.Screen.CameraPosition)
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Sessions().GetByID(uuid.NewString())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionRepository_LatestByCandidate(t *testing.T) {
	s := newTestStore(t)

	first := newTestSession("cand-2")
	second := newTestSession("cand-2")
	other := newTestSession("cand-3")
	for _, sess := range []*Session{first, other, second} {
		if err := s.Sessions().Create(sess); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	got, err := s.Sessions().LatestByCandidate("cand-2")
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if got.ID != second.ID {
		t.Errorf("latest = %s, want %s", got.ID, second.ID)
	}

	if _, err := s.Sessions().LatestByCandidate("nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown candidate, got %v", err)
	}
}

func TestSessionRepository_ListCandidates(t *testing.T) {
	s := newTestStore(t)

	for _, id := range []string{"bravo", "alpha", "bravo"} {
		if err := s.Sessions().Create(newTestSession(id)); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	got, err := s.Sessions().ListCandidates()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(got) != 2 || got[0] != "alpha" || got[1] != "bravo" {
		t.Errorf("candidates = %v, want [alpha bravo]", got)
	}
}

func TestSessionRepository_DeleteCascades(t *testing.T) {
	s := newTestStore(t)
	sess := newTestSession("cand-4")
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := s.Samples().Create(sess.ID, []Sample{{GazeX: 0.1, GazeZ: 0.9}}); err != nil {
		t.Fatalf("create samples failed: %v", err)
	}
	if err := s.Transforms().Create(&TransformRecord{SessionID: sess.ID, Kind: "rigid", Artifact: []byte(`{}`)}); err != nil {
		t.Fatalf("create transform failed: %v", err)
	}

	if err := s.Sessions().Delete(sess.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	samples, err := s.Samples().GetBySessionID(sess.ID)
	if err != nil {
		t.Fatalf("get samples failed: %v", err)
	}
	if len(samples) != 0 {
		t.Errorf("expected samples removed with session, found %d", len(samples))
	}
	if _, err := s.Transforms().LatestBySessionID(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected transforms removed with session, got %v", err)
	}

	if err := s.Sessions().Delete(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestSampleRepository_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	sess := newTestSession("cand-5")
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	in := []Sample{
		{FrameIndex: 3, GazeX: -0.12, GazeY: 0.08, GazeZ: 0.98, Yaw: 1.5, Pitch: -2.0, Roll: 0.3, TargetNX: 0.1, TargetNY: 0.1, SetX: 47.4, SetY: 29.6},
		{FrameIndex: 9, GazeX: 0.2, GazeY: 0.1, GazeZ: 0.95, TargetNX: 0.9, TargetNY: 0.1, SetX: 426.7, SetY: 29.6},
	}
	if err := s.Samples().Create(sess.ID, in); err != nil {
		t.Fatalf("create samples failed: %v", err)
	}

	out, err := s.Samples().GetBySessionID(sess.ID)
	if err != nil {
		t.Fatalf("get samples failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(out))
	}
	for i, smp := range out {
		if smp.SampleIndex != i {
			t.Errorf("sample %d: SampleIndex = %d", i, smp.SampleIndex)
		}
		if smp.GazeX != in[i].GazeX || smp.GazeY != in[i].GazeY || smp.GazeZ != in[i].GazeZ {
			t.Errorf("sample %d: gaze mismatch %+v", i, smp)
		}
		if smp.TargetNX != in[i].TargetNX || smp.TargetNY != in[i].TargetNY {
			t.Errorf("sample %d: target mismatch %+v", i, smp)
		}
		if smp.FrameIndex != in[i].FrameIndex {
			t.Errorf("sample %d: FrameIndex = %d, want %d", i, smp.FrameIndex, in[i].FrameIndex)
		}
	}
}

func TestSampleRepository_RejectsUnknownSession(t *testing.T) {
	s := newTestStore(t)

	err := s.Samples().Create(uuid.NewString(), []Sample{{GazeZ: 1}})
	if err == nil {
		t.Fatal("expected foreign key violation, got nil")
	}
}

func TestTransformRepository_LatestAndCount(t *testing.T) {
	s := newTestStore(t)
	sess := newTestSession("cand-6")
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	first := &TransformRecord{SessionID: sess.ID, Kind: "affine", Artifact: []byte(`{"v":1}`)}
	second := &TransformRecord{SessionID: sess.ID, Kind: "rigid", Artifact: []byte(`{"v":2}`)}
	for _, rec := range []*TransformRecord{first, second} {
		if err := s.Transforms().Create(rec); err != nil {
			t.Fatalf("create transform failed: %v", err)
		}
	}
	if first.ID == 0 || second.ID == 0 {
		t.Error("expected assigned row ids")
	}

	got, err := s.Transforms().LatestBySessionID(sess.ID)
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if got.Kind != "rigid" || string(got.Artifact) != `{"v":2}` {
		t.Errorf("latest = %+v, want the rigid record", got)
	}

	n, err := s.Transforms().CountBySessionID(sess.ID)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}
