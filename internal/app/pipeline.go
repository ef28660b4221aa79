package app

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gocv.io/x/gocv"

	"github.com/nivedita/drishti/internal/calib"
	"github.com/nivedita/drishti/internal/capture"
	"github.com/nivedita/drishti/internal/export"
	"github.com/nivedita/drishti/internal/store"
)

// CalibrationRun collects gaze samples for one candidate session while the
// guided calibration sequence displays targets. Feed it one frame at a time
// together with the target currently shown; call Finish when the sequence is
// done. Not safe for concurrent use.
type CalibrationRun struct {
	app        *App
	sess       *store.Session
	agg        *calib.Aggregator
	rows       []store.Sample
	frameIndex int
	missed     int
	finished   bool
}

// NewCalibrationRun starts a calibration run for a session.
func (a *App) NewCalibrationRun(sess *store.Session) *CalibrationRun {
	return &CalibrationRun{
		app:  a,
		sess: sess,
		agg:  calib.NewAggregator(),
	}
}

// Feed processes one frame captured while the given target was displayed.
// It returns false when the estimator found no face in the frame; the frame
// is skipped, not treated as an error.
func (r *CalibrationRun) Feed(frame *gocv.Mat, target calib.TargetPos) (bool, error) {
	r.frameIndex++

	est, ok, err := r.app.config.Estimator.Estimate(frame)
	if err != nil {
		return false, fmt.Errorf("estimate frame %d: %w", r.frameIndex, err)
	}
	if !ok {
		r.missed++
		r.app.log.Debug().Int("frame", r.frameIndex).Msg("no face detected, skipping calibration frame")
		return false, nil
	}

	now := time.Now().UTC()
	r.agg.Add(calib.GazeSample{
		Gaze:       est.Gaze,
		HeadPose:   est.HeadPose,
		FrameIndex: r.frameIndex,
		CapturedAt: now,
	}, target)

	targetMm := target.Mm(r.app.config.Screen)
	r.rows = append(r.rows, store.Sample{
		CapturedAt: now,
		FrameIndex: r.frameIndex,
		GazeX:      est.Gaze.X,
		GazeY:      est.Gaze.Y,
		GazeZ:      est.Gaze.Z,
		Yaw:        est.HeadPose.X,
		Pitch:      est.HeadPose.Y,
		Roll:       est.HeadPose.Z,
		TargetNX:   target.X,
		TargetNY:   target.Y,
		SetX:       targetMm.X,
		SetY:       targetMm.Y,
		SetZ:       0,
	})
	return true, nil
}

// Finish validates the collected samples, solves the transform, and
// persists both the raw samples and the transform artifact.
func (r *CalibrationRun) Finish() (calib.Transform, error) {
	if r.finished {
		return calib.Transform{}, errors.New("app: calibration run already finished")
	}
	r.finished = true

	// Optional quality gate on top of the aggregator's own validation.
	if min := r.app.config.MinSamplesPerTarget; min > 0 {
		for _, target := range r.agg.Targets() {
			if n := r.agg.Count(target); n < min {
				return calib.Transform{}, fmt.Errorf(
					"app: target (%.1f, %.1f) has %d samples, need at least %d",
					target.X, target.Y, n, min)
			}
		}
	}

	groups, err := r.agg.Finalize()
	if err != nil {
		return calib.Transform{}, err
	}

	transform, err := r.app.solver.Solve(groups)
	if err != nil {
		return calib.Transform{}, err
	}

	if err := r.app.config.Store.Samples().Create(r.sess.ID, r.rows); err != nil {
		return calib.Transform{}, fmt.Errorf("persist samples: %w", err)
	}
	if err := r.app.saveTransform(r.sess.ID, transform); err != nil {
		return calib.Transform{}, err
	}

	r.app.log.Info().
		Str("session", r.sess.ID).
		Str("kind", string(transform.Kind)).
		Int("samples", len(r.rows)).
		Int("missed", r.missed).
		Msg("calibration complete")
	return transform, nil
}

// WriteLog writes the run's samples as the calibration CSV log.
func (r *CalibrationRun) WriteLog(w io.Writer) error {
	rows := make([]export.LogRow, len(r.rows))
	for i, smp := range r.rows {
		rows[i] = export.LogRow{
			Timestamp:  smp.CapturedAt,
			FrameIndex: smp.FrameIndex,
			GazeX:      smp.GazeX,
			GazeY:      smp.GazeY,
			GazeZ:      smp.GazeZ,
			Yaw:        smp.Yaw,
			Pitch:      smp.Pitch,
			Roll:       smp.Roll,
			SetX:       smp.SetX,
			SetY:       smp.SetY,
			SetZ:       smp.SetZ,
		}
	}
	return export.WriteCalibrationLog(w, rows, r.sess.CandidateID)
}

// FrameResult is the per-frame output of a batch analysis.
type FrameResult struct {
	FrameNumber int     `json:"frame_number"`
	Timestamp   float64 `json:"timestamp"`

	Detected bool       `json:"detected"`
	Gaze     calib.Vec3 `json:"gaze"`
	HeadPose calib.Vec3 `json:"head_pose"`

	// Projected is false when the frame's gaze ray was degenerate; Point
	// and Zones are meaningless in that case.
	Projected bool                 `json:"projected"`
	Point     calib.Point          `json:"point"`
	Zones     calib.Classification `json:"zones"`
}

// Summary aggregates the frame counts of one analysis run.
type Summary struct {
	TotalFrames     int `json:"total_frames"`
	DetectedFrames  int `json:"detected_frames"`
	ProjectedFrames int `json:"projected_frames"`
	OnScreenFrames  int `json:"on_screen_frames"`
}

// Analyze projects every frame of a recorded video through a solved
// transform. Frames without a detected face, and frames whose gaze ray is
// parallel to the screen plane, are recorded but never abort the batch.
func (a *App) Analyze(src capture.Source, transform calib.Transform) ([]FrameResult, Summary, error) {
	if err := src.Open(); err != nil {
		return nil, Summary{}, err
	}
	defer src.Close()

	fps := src.FPS()
	var results []FrameResult
	var sum Summary

	for {
		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, Summary{}, err
		}

		sum.TotalFrames++
		res := FrameResult{FrameNumber: sum.TotalFrames}
		if fps > 0 {
			res.Timestamp = float64(sum.TotalFrames) / fps
		} else {
			res.Timestamp = float64(sum.TotalFrames)
		}

		est, ok, err := a.config.Estimator.Estimate(frame)
		frame.Close()
		if err != nil {
			return nil, Summary{}, fmt.Errorf("estimate frame %d: %w", sum.TotalFrames, err)
		}

		if ok {
			sum.DetectedFrames++
			res.Detected = true
			res.Gaze = est.Gaze
			res.HeadPose = est.HeadPose

			point, err := calib.Project(est.Gaze, transform, a.config.Screen)
			var degenerate *calib.DegenerateGazeError
			switch {
			case err == nil:
				sum.ProjectedFrames++
				res.Projected = true
				res.Point = point
				res.Zones = calib.Classify(point.XPx, point.YPx, a.config.Screen)
				if res.Zones.OnScreen {
					sum.OnScreenFrames++
				}
			case errors.As(err, &degenerate):
				a.log.Debug().Int("frame", sum.TotalFrames).Float64("depth", degenerate.Depth).
					Msg("gaze ray parallel to screen, no projection for frame")
			default:
				return nil, Summary{}, fmt.Errorf("project frame %d: %w", sum.TotalFrames, err)
			}
		}

		results = append(results, res)
	}

	return results, sum, nil
}
