package calib

import (
	"math"

	"github.com/nivedita/drishti/internal/screen"
)

// depthEpsilon is the smallest gaze depth component accepted before the
// ray-plane intersection is treated as degenerate.
const depthEpsilon = 1e-6

// Point is a projected gaze position on the screen plane, in both
// millimetre and pixel coordinates.
type Point struct {
	XMm float64 `json:"x_mm"`
	YMm float64 `json:"y_mm"`
	XPx float64 `json:"x_px"`
	YPx float64 `json:"y_px"`
}

// Project maps a gaze direction vector to a point on the screen plane using
// a solved transform. It is pure: the same inputs always produce the same
// output.
//
// For a rigid transform the gaze ray is intersected with the screen plane;
// a ray nearly parallel to the plane fails with DegenerateGazeError rather
// than producing infinite or NaN coordinates. For the affine fallback the
// gaze X/Y components are mapped through the fitted homogeneous matrix.
func Project(gaze Vec3, t Transform, geom screen.Geometry) (Point, error) {
	if t.Kind == KindAffine {
		return projectAffine(gaze, t, geom)
	}
	return projectRigid(gaze, t, geom)
}

func projectRigid(gaze Vec3, t Transform, geom screen.Geometry) (Point, error) {
	if math.Abs(gaze.Z) < depthEpsilon {
		return Point{}, &DegenerateGazeError{Depth: gaze.Z}
	}

	// GtS is the camera origin under the inverse homogeneous transform; the
	// ray scale is its depth offset divided by the gaze depth component.
	gts, err := t.cameraOriginInGaze()
	if err != nil {
		return Point{}, &CalibrationError{Reason: "transform is not invertible", Err: err}
	}
	mu := gts.Z / gaze.Z

	s := rotate(gaze.Scale(mu)).Add(t.Translation)
	xPx, yPx := geom.MmToPx(s.X, s.Y)
	return Point{XMm: s.X, YMm: s.Y, XPx: xPx, YPx: yPx}, nil
}

func projectAffine(gaze Vec3, t Transform, geom screen.Geometry) (Point, error) {
	a := t.Affine
	hx := a[0][0]*gaze.X + a[0][1]*gaze.Y + a[0][2]
	hy := a[1][0]*gaze.X + a[1][1]*gaze.Y + a[1][2]
	hw := a[2][0]*gaze.X + a[2][1]*gaze.Y + a[2][2]
	if math.Abs(hw) < depthEpsilon {
		return Point{}, &DegenerateGazeError{Depth: hw}
	}

	nx, ny := hx/hw, hy/hw
	return Point{
		XMm: nx * geom.WidthMm,
		YMm: ny * geom.HeightMm,
		XPx: nx * float64(geom.WidthPx),
		YPx: ny * float64(geom.HeightPx),
	}, nil
}
