// Package app orchestrates the calibration and analysis pipelines: frames in
// from a capture source, gaze estimates from the collaborator, samples
// through the aggregator and solver, transforms and logs out to the store.
package app

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nivedita/drishti/internal/calib"
	"github.com/nivedita/drishti/internal/export"
	"github.com/nivedita/drishti/internal/gaze"
	"github.com/nivedita/drishti/internal/screen"
	"github.com/nivedita/drishti/internal/store"
)

// DefaultMinSamplesPerTarget is the quality gate applied by the calibration
// run: each target needs at least this many successful detections before the
// solve is attempted. The aggregator itself does not enforce it.
const DefaultMinSamplesPerTarget = 10

// Config holds configuration options for the application.
type Config struct {
	Store     *store.Store
	Estimator gaze.Estimator
	Screen    screen.Geometry

	// MinSamplesPerTarget overrides the per-target quality gate.
	// Zero means DefaultMinSamplesPerTarget; negative disables the gate.
	MinSamplesPerTarget int

	Solver calib.SolveOptions
	Logger zerolog.Logger
}

// App wires the calibration engine to its collaborators for one screen
// configuration. Sessions are isolated: each calibration run owns its own
// aggregator, and each solve produces a fresh Transform.
type App struct {
	config Config
	solver *calib.Solver
	log    zerolog.Logger
}

// New creates a new App instance with the given configuration.
func New(config Config) (*App, error) {
	if err := config.Screen.Validate(); err != nil {
		return nil, err
	}
	if config.MinSamplesPerTarget == 0 {
		config.MinSamplesPerTarget = DefaultMinSamplesPerTarget
	}
	if config.Solver == (calib.SolveOptions{}) {
		config.Solver = calib.DefaultSolveOptions()
	}

	return &App{
		config: config,
		solver: calib.NewSolver(config.Screen, config.Solver, config.Logger),
		log:    config.Logger,
	}, nil
}

// NewSession creates and persists a session for a candidate.
func (a *App) NewSession(candidateID string, info screen.Info) (*store.Session, error) {
	sess := &store.Session{
		ID:          uuid.NewString(),
		CandidateID: candidateID,
		Screen:      info,
	}
	if err := a.config.Store.Sessions().Create(sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// LoadTransform retrieves the most recent solved transform for a session.
func (a *App) LoadTransform(sessionID string) (calib.Transform, error) {
	rec, err := a.config.Store.Transforms().LatestBySessionID(sessionID)
	if err != nil {
		return calib.Transform{}, err
	}
	artifact, err := export.DecodeMatrixArtifact(rec.Artifact)
	if err != nil {
		return calib.Transform{}, err
	}
	return artifact.ToTransform()
}

// Recalibrate re-solves a session from its stored calibration samples and
// persists the result as a new transform row. The previous transform rows
// are left untouched, so in-flight projections keep their prior transform.
func (a *App) Recalibrate(sessionID string) (calib.Transform, error) {
	samples, err := a.config.Store.Samples().GetBySessionID(sessionID)
	if err != nil {
		return calib.Transform{}, err
	}

	agg := calib.NewAggregator()
	for _, smp := range samples {
		agg.Add(calib.GazeSample{
			Gaze:       calib.Vec3{X: smp.GazeX, Y: smp.GazeY, Z: smp.GazeZ},
			HeadPose:   calib.Vec3{X: smp.Yaw, Y: smp.Pitch, Z: smp.Roll},
			FrameIndex: smp.FrameIndex,
			CapturedAt: smp.CapturedAt,
		}, calib.TargetPos{X: smp.TargetNX, Y: smp.TargetNY})
	}

	groups, err := agg.Finalize()
	if err != nil {
		return calib.Transform{}, err
	}
	transform, err := a.solver.Solve(groups)
	if err != nil {
		return calib.Transform{}, err
	}
	if err := a.saveTransform(sessionID, transform); err != nil {
		return calib.Transform{}, err
	}
	return transform, nil
}

func (a *App) saveTransform(sessionID string, t calib.Transform) error {
	artifact, err := export.FromTransform(t).Encode()
	if err != nil {
		return fmt.Errorf("encode transform: %w", err)
	}
	return a.config.Store.Transforms().Create(&store.TransformRecord{
		SessionID: sessionID,
		Kind:      string(t.Kind),
		Artifact:  artifact,
	})
}
