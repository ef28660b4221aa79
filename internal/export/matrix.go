// Package export produces the stable transport representations consumed by
// downstream analyzers: the matrix artifact, the calibration CSV log, and
// the screen-info record. Key names, column names, and column order are all
// part of the compatibility contract.
package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nivedita/drishti/internal/calib"
)

// MatrixArtifact is the persisted form of a solved transform. STransG is the
// 4x4 homogeneous screen-from-gaze matrix; StG holds the per-target
// correction vectors; SetValues holds the target positions in millimetres.
// Old artifacts carried only STransG, so StG and SetValues may be absent on
// load.
type MatrixArtifact struct {
	STransG   [4][4]float64 `json:"STransG"`
	StG       [][3]float64  `json:"StG,omitempty"`
	SetValues [][3]float64  `json:"SetValues,omitempty"`
	Kind      calib.Kind    `json:"kind,omitempty"`
}

// FromTransform builds the artifact for a solved transform. The affine
// fallback embeds its 3x3 matrix in the top-left of an identity STransG, the
// shape downstream consumers already accept.
func FromTransform(t calib.Transform) MatrixArtifact {
	a := MatrixArtifact{Kind: t.Kind}

	if t.Kind == calib.KindAffine {
		a.STransG = [4][4]float64{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				a.STransG[i][j] = t.Affine[i][j]
			}
		}
		return a
	}

	st := t.STransG()
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			a.STransG[i][j] = st.At(i, j)
		}
	}
	a.StG = make([][3]float64, len(t.PerTarget))
	for i, v := range t.PerTarget {
		a.StG[i] = [3]float64{v.X, v.Y, v.Z}
	}
	a.SetValues = make([][3]float64, len(t.TargetMm))
	for i, v := range t.TargetMm {
		a.SetValues[i] = [3]float64{v.X, v.Y, v.Z}
	}
	return a
}

// ToTransform reconstructs a Transform from the artifact. Artifacts written
// before the kind field infer their variant from the rotation block.
func (a MatrixArtifact) ToTransform() (calib.Transform, error) {
	kind := a.Kind
	if kind == "" {
		if a.hasMirrorRotation() {
			kind = calib.KindRigid
		} else {
			kind = calib.KindAffine
		}
	}

	switch kind {
	case calib.KindRigid:
		t := calib.Transform{
			Kind: calib.KindRigid,
			Translation: calib.Vec3{
				X: a.STransG[0][3],
				Y: a.STransG[1][3],
				Z: a.STransG[2][3],
			},
		}
		for _, v := range a.StG {
			t.PerTarget = append(t.PerTarget, calib.Vec3{X: v[0], Y: v[1], Z: v[2]})
		}
		for _, v := range a.SetValues {
			t.TargetMm = append(t.TargetMm, calib.Vec3{X: v[0], Y: v[1], Z: v[2]})
		}
		return t, nil
	case calib.KindAffine:
		t := calib.Transform{Kind: calib.KindAffine}
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				t.Affine[i][j] = a.STransG[i][j]
			}
		}
		return t, nil
	default:
		return calib.Transform{}, fmt.Errorf("export: unknown transform kind %q", kind)
	}
}

func (a MatrixArtifact) hasMirrorRotation() bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if a.STransG[i][j] != calib.Rotation[i][j] {
				return false
			}
		}
	}
	return true
}

// Encode serializes the artifact as JSON.
func (a MatrixArtifact) Encode() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}

// DecodeMatrixArtifact parses an artifact from JSON.
func DecodeMatrixArtifact(data []byte) (MatrixArtifact, error) {
	var a MatrixArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return MatrixArtifact{}, fmt.Errorf("export: parse matrix artifact: %w", err)
	}
	return a, nil
}

// SaveMatrixArtifact writes the artifact to a file.
func SaveMatrixArtifact(path string, a MatrixArtifact) error {
	data, err := a.Encode()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadMatrixArtifact reads an artifact from a file.
func LoadMatrixArtifact(path string) (MatrixArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return MatrixArtifact{}, err
	}
	return DecodeMatrixArtifact(data)
}
