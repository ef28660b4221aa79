package calib

import (
	"gonum.org/v1/gonum/mat"
)

// Kind distinguishes the two transform variants a calibration can produce.
type Kind string

const (
	// KindRigid is the full rigid fit: fixed rotation plus a fitted camera
	// translation with millimetre semantics.
	KindRigid Kind = "rigid"
	// KindAffine is the 2-D affine fallback mapping gaze X/Y directly to
	// normalized screen coordinates. No millimetre semantics.
	KindAffine Kind = "affine"
)

// Rotation is the fixed camera-to-screen rotation diag(-1, -1, 1): the gaze
// estimator's camera axes are mirrored in X and Y relative to screen axes,
// depth unchanged. Never fitted.
var Rotation = [3][3]float64{
	{-1, 0, 0},
	{0, -1, 0},
	{0, 0, 1},
}

// Transform is the output of a calibration. Once returned by the solver it is
// immutable and safe to share across concurrent projection calls; a
// recalibration produces a new Transform rather than patching this one.
type Transform struct {
	Kind Kind

	// Translation is the camera origin in screen-plane millimetre
	// coordinates, Z negative (camera behind the screen plane). Rigid only.
	Translation Vec3

	// PerTarget holds one residual correction vector per calibration target,
	// aligned index-for-index with TargetMm. Auxiliary data for
	// locally-weighted refinement; the baseline projection does not use it.
	PerTarget []Vec3

	// TargetMm holds the four target positions in millimetre coordinates.
	TargetMm []Vec3

	// Affine is the 3x3 homogeneous matrix of the fallback fit, mapping
	// (gazeX, gazeY, 1) to normalized screen coordinates. Affine only.
	Affine [3][3]float64
}

// STransG returns the 4x4 homogeneous screen-from-gaze transform built from
// the fixed rotation and the fitted translation.
func (t Transform) STransG() *mat.Dense {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m.Set(i, j, Rotation[i][j])
		}
	}
	m.Set(0, 3, t.Translation.X)
	m.Set(1, 3, t.Translation.Y)
	m.Set(2, 3, t.Translation.Z)
	m.Set(3, 3, 1)
	return m
}

// cameraOriginInGaze returns GtS, the camera origin column of the inverse
// homogeneous transform. Used by the projector to compute the ray scale.
func (t Transform) cameraOriginInGaze() (Vec3, error) {
	var inv mat.Dense
	if err := inv.Inverse(t.STransG()); err != nil {
		return Vec3{}, err
	}
	return Vec3{X: inv.At(0, 3), Y: inv.At(1, 3), Z: inv.At(2, 3)}, nil
}

// rotate applies the fixed rotation to v.
func rotate(v Vec3) Vec3 {
	return Vec3{
		X: Rotation[0][0]*v.X + Rotation[0][1]*v.Y + Rotation[0][2]*v.Z,
		Y: Rotation[1][0]*v.X + Rotation[1][1]*v.Y + Rotation[1][2]*v.Z,
		Z: Rotation[2][0]*v.X + Rotation[2][1]*v.Y + Rotation[2][2]*v.Z,
	}
}
