package calib

import (
	"math"

	"github.com/nivedita/drishti/internal/screen"
)

// testGeometry matches a common 21.5" desktop panel.
func testGeometry() screen.Geometry {
	return screen.Geometry{
		WidthPx:  1920,
		HeightPx: 1080,
		WidthMm:  474.13,
		HeightMm: 296.33,
	}
}

// groundTruth is the synthetic camera translation used across solver and
/// projector tests: roughly screen center, 600mm behind the plane.
func groundTruth() Vec3 {
	return Vec3{X: 237, Y: 148, Z: -600}
}

// synthGaze constructs the gaze direction whose ray, under translation t and
// the fixed rotation, intersects the screen plane exactly at the target.
func synthGaze(target TargetPos, t Vec3, geom screen.Geometry) Vec3 {
	p := target.Mm(geom)
	// predicted = R(mu g) + t = p  =>  g is parallel to R(p - t).
	return rotate(p.Sub(t)).Unit()
}

// syntheticGroups builds one group per standard calibration target, each
// with n identical exact samples.
func syntheticGroups(t Vec3, geom screen.Geometry, n int) []TargetGroup {
	agg := NewAggregator()
	frame := 0
	for _, target := range CalibrationTargets {
		g := synthGaze(target, t, geom)
		for i := 0; i < n; i++ {
			frame++
			agg.AddSample(g, target, frame)
		}
	}
	groups, err := agg.Finalize()
	if err != nil {
		panic(err)
	}
	return groups
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
