package calib

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/nivedita/drishti/internal/screen"
)

// SolveOptions configures the pose solver. The bounds exist to keep the
// optimizer from drifting to a degenerate or far-away camera position when
// the four calibration points are nearly colinear in gaze-space.
type SolveOptions struct {
	// InitialDistanceMm is the assumed nominal camera distance used as the
	// starting point for the depth parameter.
	InitialDistanceMm float64
	// MinDistanceMm and MaxDistanceMm bound the fitted camera distance.
	MinDistanceMm float64
	MaxDistanceMm float64
	// MaxIterations caps the Levenberg-Marquardt iteration count.
	MaxIterations int
}

// DefaultSolveOptions returns the solver configuration used by the guided
// calibration sequence.
func DefaultSolveOptions() SolveOptions {
	return SolveOptions{
		InitialDistanceMm: 600,
		MinDistanceMm:     400,
		MaxDistanceMm:     800,
		MaxIterations:     200,
	}
}

// Solver fits the rigid camera transform that best explains a set of
// calibration target groups on a given screen.
type Solver struct {
	geom screen.Geometry
	opts SolveOptions
	log  zerolog.Logger
}

// NewSolver creates a Solver for the given screen geometry.
func NewSolver(geom screen.Geometry, opts SolveOptions, log zerolog.Logger) *Solver {
	return &Solver{geom: geom, opts: opts, log: log}
}

// Solve fits a Transform to the collected target groups.
//
// The full 3-D fit treats the three translation components as free
// parameters and minimizes the stacked ray-plane intersection residuals
// against the four target positions in millimetres. If the 3-D fit fails for
// any reason, Solve falls back to a 2-D affine least-squares fit and logs
// the degradation; the returned Transform's Kind records which variant the
// caller received. Only when the fallback also fails is a CalibrationError
// returned.
func (s *Solver) Solve(groups []TargetGroup) (Transform, error) {
	gazes, targetMm, err := s.orderByStandardTargets(groups)
	if err != nil {
		return Transform{}, err
	}

	tr, rigidErr := s.fitRigid(gazes, targetMm)
	if rigidErr == nil {
		return tr, nil
	}
	s.log.Warn().Err(rigidErr).Msg("rigid calibration fit failed, falling back to 2D affine")

	tr, affineErr := s.fitAffine(gazes)
	if affineErr != nil {
		return Transform{}, &CalibrationError{
			Reason: "both rigid fit and affine fallback failed",
			Err:    errors.Join(rigidErr, affineErr),
		}
	}
	return tr, nil
}

// orderByStandardTargets matches each standard calibration position to the
// nearest observed target group and returns the group mean gazes and target
// millimetre positions in standard order. A standard position with no
// observed group within tolerance is a fatal configuration error.
func (s *Solver) orderByStandardTargets(groups []TargetGroup) ([]Vec3, []Vec3, error) {
	if len(groups) < len(CalibrationTargets) {
		return nil, nil, &InsufficientTargetsError{Found: len(groups)}
	}
	for _, g := range groups {
		if len(g.Samples) == 0 {
			return nil, nil, &InsufficientSamplesError{Target: g.Target}
		}
	}

	gazes := make([]Vec3, 0, len(CalibrationTargets))
	targetMm := make([]Vec3, 0, len(CalibrationTargets))
	var missing []TargetPos

	for _, std := range CalibrationTargets {
		best := -1
		bestDist := math.Inf(1)
		for i, g := range groups {
			if d := g.Target.Dist(std); d < bestDist {
				bestDist = d
				best = i
			}
		}
		if best < 0 || bestDist > TargetMatchTolerance {
			missing = append(missing, std)
			continue
		}
		gazes = append(gazes, groups[best].MeanGaze())
		targetMm = append(targetMm, std.Mm(s.geom))
	}
	if len(missing) > 0 {
		return nil, nil, &InsufficientTargetsError{Found: len(groups), Missing: missing}
	}
	return gazes, targetMm, nil
}

// predict intersects the gaze ray g with the screen plane under translation
// t and returns the predicted screen-frame point in millimetres.
//
//	mu = (z^T (-R^T t)) / (z^T g)
//	predicted = R (mu g) + t
//
// With the fixed axis-mirroring rotation, z^T(-R^T t) reduces to -t.Z.
func predict(t Vec3, g Vec3) Vec3 {
	mu := -t.Z / g.Z
	return rotate(g.Scale(mu)).Add(t)
}

// fitRigid runs the bounded Levenberg-Marquardt fit for the camera
// translation. The parameter vector is [Tx, Ty, D] where D is the positive
// camera distance; the model evaluates with Tz = -D so the returned
// translation already carries the camera-behind-screen sign convention.
func (s *Solver) fitRigid(gazes, targetMm []Vec3) (Transform, error) {
	for i, g := range gazes {
		if !g.IsFinite() {
			return Transform{}, &CalibrationError{Reason: fmt.Sprintf("non-finite mean gaze for target %d", i)}
		}
		if math.Abs(g.Z) < depthEpsilon {
			return Transform{}, &CalibrationError{Reason: fmt.Sprintf("mean gaze for target %d is parallel to the screen plane", i)}
		}
	}

	lower := [3]float64{0, 0, s.opts.MinDistanceMm}
	upper := [3]float64{s.geom.WidthMm, s.geom.HeightMm, s.opts.MaxDistanceMm}
	x := [3]float64{s.geom.WidthMm / 2, s.geom.HeightMm / 2, s.opts.InitialDistanceMm}
	clamp(&x, lower, upper)

	residuals := func(x [3]float64, r []float64) {
		t := Vec3{X: x[0], Y: x[1], Z: -x[2]}
		for i := range gazes {
			p := predict(t, gazes[i])
			r[3*i+0] = targetMm[i].X - p.X
			r[3*i+1] = targetMm[i].Y - p.Y
			r[3*i+2] = targetMm[i].Z - p.Z
		}
	}

	xopt, err := levenbergMarquardt(residuals, x, lower, upper, len(gazes)*3, s.opts.MaxIterations)
	if err != nil {
		return Transform{}, &CalibrationError{Reason: "nonlinear solve failed", Err: err}
	}

	// Force the sign convention: camera behind the screen plane.
	translation := Vec3{X: xopt[0], Y: xopt[1], Z: -math.Abs(xopt[2])}
	if !translation.IsFinite() {
		return Transform{}, &CalibrationError{Reason: "solver returned a non-finite translation"}
	}

	// Per-target corrections: the residual each target needs to land exactly
	// on its true position, given the global translation.
	perTarget := make([]Vec3, len(gazes))
	for i, g := range gazes {
		mu := -translation.Z / g.Z
		perTarget[i] = targetMm[i].Sub(rotate(g.Scale(mu)))
	}

	return Transform{
		Kind:        KindRigid,
		Translation: translation,
		PerTarget:   perTarget,
		TargetMm:    append([]Vec3(nil), targetMm...),
	}, nil
}

// fitAffine is the fallback: an ordinary least-squares fit mapping gaze X/Y
// directly to normalized target coordinates as a 3x3 homogeneous matrix. It
// sacrifices physical interpretability for robustness.
func (s *Solver) fitAffine(gazes []Vec3) (Transform, error) {
	n := len(gazes)
	a := mat.NewDense(n, 3, nil)
	b := mat.NewDense(n, 2, nil)
	for i, g := range gazes {
		a.Set(i, 0, g.X)
		a.Set(i, 1, g.Y)
		a.Set(i, 2, 1)
		b.Set(i, 0, CalibrationTargets[i].X)
		b.Set(i, 1, CalibrationTargets[i].Y)
	}

	var coef mat.Dense
	if err := coef.Solve(a, b); err != nil {
		return Transform{}, fmt.Errorf("affine least squares: %w", err)
	}

	var affine [3][3]float64
	for j := 0; j < 3; j++ {
		affine[0][j] = coef.At(j, 0)
		affine[1][j] = coef.At(j, 1)
	}
	affine[2] = [3]float64{0, 0, 1}

	for i := range affine {
		for j := range affine[i] {
			if math.IsNaN(affine[i][j]) || math.IsInf(affine[i][j], 0) {
				return Transform{}, fmt.Errorf("affine fit produced a non-finite matrix")
			}
		}
	}

	return Transform{Kind: KindAffine, Affine: affine}, nil
}

func clamp(x *[3]float64, lower, upper [3]float64) {
	for i := range x {
		if x[i] < lower[i] {
			x[i] = lower[i]
		}
		if x[i] > upper[i] {
			x[i] = upper[i]
		}
	}
}
