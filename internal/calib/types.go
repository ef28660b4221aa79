// Package calib maps camera-frame gaze rays onto the physical screen plane.
// It covers the full calibration path: collecting per-target gaze samples,
// fitting the camera pose with a bounded nonlinear least-squares solve, and
// projecting runtime gaze vectors to millimetre and pixel coordinates.
package calib

import (
	"math"
	"time"

	"github.com/nivedita/drishti/internal/screen"
)

// Vec3 is a 3-D vector in camera or screen coordinates.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns s * v.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{s * v.X, s * v.Y, s * v.Z} }

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Unit returns v scaled to unit length. The zero vector is returned unchanged.
func (v Vec3) Unit() Vec3 {
	n := v.Norm()
	if n < 1e-15 {
		return v
	}
	return v.Scale(1 / n)
}

// IsFinite reports whether all components are finite numbers.
func (v Vec3) IsFinite() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// TargetPos is a calibration target position in normalized screen
// coordinates, both components in [0,1].
type TargetPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Mm converts the normalized target position to millimetres on the screen
// plane. The target always lies on the plane, so Z is zero.
func (t TargetPos) Mm(geom screen.Geometry) Vec3 {
	return Vec3{X: t.X * geom.WidthMm, Y: t.Y * geom.HeightMm, Z: 0}
}

// Dist returns the normalized-space distance between two target positions.
func (t TargetPos) Dist(o TargetPos) float64 {
	return math.Hypot(t.X-o.X, t.Y-o.Y)
}

// CalibrationTargets are the four standard target positions shown during a
// guided calibration: the screen corners scaled inward by 10%. Observed
// targets are matched to these positions, in this order, when solving.
var CalibrationTargets = [4]TargetPos{
	{X: 0.1, Y: 0.1},
	{X: 0.9, Y: 0.1},
	{X: 0.1, Y: 0.9},
	{X: 0.9, Y: 0.9},
}

// TargetMatchTolerance is the maximum normalized distance between an observed
// target and the standard position it is matched to.
const TargetMatchTolerance = 0.1

// GazeSample is one gaze observation captured while a known target was
// displayed. Immutable after creation.
type GazeSample struct {
	Gaze       Vec3      `json:"gaze"`
	HeadPose   Vec3      `json:"head_pose"` // yaw, pitch, roll; informational only
	FrameIndex int       `json:"frame_index"`
	CapturedAt time.Time `json:"captured_at"`
}

// TargetGroup is the set of samples captured for one on-screen target.
type TargetGroup struct {
	Target  TargetPos
	Samples []GazeSample
}

// MeanGaze returns the component-wise arithmetic mean of the group's gaze
// vectors. Outliers are not down-weighted at this stage.
func (g TargetGroup) MeanGaze() Vec3 {
	var sum Vec3
	for _, s := range g.Samples {
		sum = sum.Add(s.Gaze)
	}
	if len(g.Samples) == 0 {
		return sum
	}
	return sum.Scale(1 / float64(len(g.Samples)))
}
