package export

import (
	"path/filepath"
	"testing"

	"github.com/nivedita/drishti/internal/calib"
)

func rigidTransform() calib.Transform {
	return calib.Transform{
		Kind:        calib.KindRigid,
		Translation: calib.Vec3{X: 237, Y: 148, Z: -600},
		PerTarget: []calib.Vec3{
			{X: 236.8, Y: 147.9, Z: -599.7},
			{X: 237.1, Y: 148.2, Z: -600.2},
		},
		TargetMm: []calib.Vec3{
			{X: 47.413, Y: 29.633},
			{X: 426.717, Y: 29.633},
		},
	}
}

func TestMatrixArtifact_RigidRoundTrip(t *testing.T) {
	in := rigidTransform()

	a := FromTransform(in)
	if a.STransG[0][3] != 237 || a.STransG[1][3] != 148 || a.STransG[2][3] != -600 {
		t.Errorf("translation column = (%f, %f, %f)", a.STransG[0][3], a.STransG[1][3], a.STransG[2][3])
	}
	if a.STransG[0][0] != -1 || a.STransG[1][1] != -1 || a.STransG[2][2] != 1 {
		t.Errorf("rotation block not the axis mirror: %+v", a.STransG)
	}
	if a.STransG[3] != [4]float64{0, 0, 0, 1} {
		t.Errorf("bottom row = %v", a.STransG[3])
	}
	if len(a.StG) != 2 || len(a.SetValues) != 2 {
		t.Fatalf("expected 2 corrections and 2 set values, got %d and %d", len(a.StG), len(a.SetValues))
	}

	data, err := a.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	decoded, err := DecodeMatrixArtifact(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	out, err := decoded.ToTransform()
	if err != nil {
		t.Fatalf("to transform failed: %v", err)
	}
	if out.Kind != calib.KindRigid {
		t.Fatalf("Kind = %s, want rigid", out.Kind)
	}
	if out.Translation != in.Translation {
		t.Errorf("Translation = %+v, want %+v", out.Translation, in.Translation)
	}
	for i := range in.PerTarget {
		if out.PerTarget[i] != in.PerTarget[i] {
			t.Errorf("PerTarget[%d] = %+v, want %+v", i, out.PerTarget[i], in.PerTarget[i])
		}
	}
	for i := range in.TargetMm {
		if out.TargetMm[i] != in.TargetMm[i] {
			t.Errorf("TargetMm[%d] = %+v, want %+v", i, out.TargetMm[i], in.TargetMm[i])
		}
	}
}

func TestMatrixArtifact_AffineRoundTrip(t *testing.T) {
	in := calib.Transform{
		Kind: calib.KindAffine,
		Affine: [3][3]float64{
			{1.2, 0.1, 0.5},
			{-0.1, 1.3, 0.4},
			{0, 0, 1},
		},
	}

	a := FromTransform(in)
	if a.STransG[0][0] != 1.2 || a.STransG[1][1] != 1.3 || a.STransG[3][3] != 1 {
		t.Errorf("affine not embedded: %+v", a.STransG)
	}
	if a.StG != nil || a.SetValues != nil {
		t.Error("affine artifact should carry no per-target data")
	}

	out, err := a.ToTransform()
	if err != nil {
		t.Fatalf("to transform failed: %v", err)
	}
	if out.Kind != calib.KindAffine {
		t.Fatalf("Kind = %s, want affine", out.Kind)
	}
	if out.Affine != in.Affine {
		t.Errorf("Affine = %+v, want %+v", out.Affine, in.Affine)
	}
}

func TestMatrixArtifact_LegacyWithoutKind(t *testing.T) {
	// Artifacts written before the kind field: the mirror rotation block
	// identifies a rigid transform, anything else is affine.
	legacyRigid := []byte(`{"STransG":[[-1,0,0,237],[0,-1,0,148],[0,0,1,-600],[0,0,0,1]]}`)
	a, err := DecodeMatrixArtifact(legacyRigid)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	tr, err := a.ToTransform()
	if err != nil {
		t.Fatalf("to transform failed: %v", err)
	}
	if tr.Kind != calib.KindRigid {
		t.Errorf("Kind = %s, want rigid", tr.Kind)
	}
	if tr.Translation != (calib.Vec3{X: 237, Y: 148, Z: -600}) {
		t.Errorf("Translation = %+v", tr.Translation)
	}

	legacyAffine := []byte(`{"STransG":[[1.1,0,0.5,0],[0,0.9,0.4,0],[0,0,1,0],[0,0,0,1]]}`)
	a, err = DecodeMatrixArtifact(legacyAffine)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	tr, err = a.ToTransform()
	if err != nil {
		t.Fatalf("to transform failed: %v", err)
	}
	if tr.Kind != calib.KindAffine {
		t.Errorf("Kind = %s, want affine", tr.Kind)
	}
}

func TestMatrixArtifact_UnknownKind(t *testing.T) {
	a := MatrixArtifact{Kind: calib.Kind("projective")}
	if _, err := a.ToTransform(); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestMatrixArtifact_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calibration_matrix.json")
	in := FromTransform(rigidTransform())

	if err := SaveMatrixArtifact(path, in); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	out, err := LoadMatrixArtifact(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if out.STransG != in.STransG {
		t.Errorf("STransG changed across save/load")
	}
	if out.Kind != calib.KindRigid {
		t.Errorf("Kind = %s, want rigid", out.Kind)
	}
}
