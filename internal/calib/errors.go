package calib

import (
	"fmt"
	"strings"
)

// InsufficientTargetsError reports that fewer than the four required
// calibration targets were observed, or that a standard target position had
// no observed group within the match tolerance. Fatal for the calibration
// attempt.
type InsufficientTargetsError struct {
	Found   int
	Missing []TargetPos
}

func (e *InsufficientTargetsError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("calib: only %d calibration targets found (need 4)", e.Found)
	}
	parts := make([]string, len(e.Missing))
	for i, t := range e.Missing {
		parts[i] = fmt.Sprintf("(%.1f, %.1f)", t.X, t.Y)
	}
	return fmt.Sprintf("calib: no calibration data for target position(s) %s", strings.Join(parts, ", "))
}

// InsufficientSamplesError reports a target group with no usable samples.
// Fatal for the calibration attempt.
type InsufficientSamplesError struct {
	Target TargetPos
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("calib: target (%.1f, %.1f) has no usable samples", e.Target.X, e.Target.Y)
}

// CalibrationError reports that the nonlinear solve failed or produced a
// non-finite result. The solver falls back to the 2-D affine fit before
// surfacing this; callers see it only when the fallback failed too.
type CalibrationError struct {
	Reason string
	Err    error
}

func (e *CalibrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("calib: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("calib: %s", e.Reason)
}

func (e *CalibrationError) Unwrap() error { return e.Err }

// DegenerateGazeError reports a gaze ray nearly parallel to the screen plane
// at projection time. Recoverable per frame: the caller should treat the
// frame as having no valid projection rather than abort the batch.
type DegenerateGazeError struct {
	Depth float64
}

func (e *DegenerateGazeError) Error() string {
	return fmt.Sprintf("calib: gaze ray parallel to screen plane (depth component %.3g)", e.Depth)
}
