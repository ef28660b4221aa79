// Package gaze is the boundary to the external gaze-estimation collaborator.
// The estimator itself is a black box: per frame it emits a 3-D gaze
// direction in the camera frame plus head-pose angles. Interchangeable
// back-ends are selected by a mode string at construction time.
package gaze

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/nivedita/drishti/internal/calib"
)

// Back-end modes.
const (
	// ModePLGaze runs the gaze model in a Python subprocess and exchanges
	// frames and results over stdin/stdout.
	ModePLGaze = "plgaze"
	// ModeMock returns pre-configured estimates; used in tests and replay.
	ModeMock = "mock"
)

// Estimate is one frame's output from the collaborator.
type Estimate struct {
	// Gaze is the camera-frame gaze direction. Not guaranteed unit length.
	Gaze calib.Vec3 `json:"gaze"`
	// HeadPose carries yaw, pitch, roll in degrees. Informational only.
	HeadPose calib.Vec3 `json:"head_pose"`
}

// Estimator analyzes video frames for gaze direction. A frame with no
// detectable face is not an error: Estimate returns ok=false for it and the
// caller skips the frame.
type Estimator interface {
	// Estimate analyzes a frame. ok is false when no face was detected.
	Estimate(frame *gocv.Mat) (est Estimate, ok bool, err error)

	// Close releases any resources held by the back-end.
	Close() error
}

// Config holds back-end configuration options.
type Config struct {
	// ScriptPath overrides the discovered location of the Python gaze
	// service script. Empty means search the standard locations.
	ScriptPath string

	// MinConfidence is the minimum face-detection confidence (0.0-1.0).
	MinConfidence float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{MinConfidence: 0.5}
}

// UnsupportedModeError reports a back-end mode that is unknown or whose
// runtime prerequisites are unavailable on this machine.
type UnsupportedModeError struct {
	Mode   string
	Reason string
}

func (e *UnsupportedModeError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("gaze: unsupported estimator mode %q: %s", e.Mode, e.Reason)
	}
	return fmt.Sprintf("gaze: unsupported estimator mode %q", e.Mode)
}

// NewEstimator resolves a mode string to a back-end. Construction fails with
// UnsupportedModeError for unknown modes or when the selected back-end's
// prerequisites are missing, rather than deferring the failure to first use.
func NewEstimator(mode string, config Config) (Estimator, error) {
	switch mode {
	case ModePLGaze:
		return NewPLGazeEstimator(config)
	case ModeMock:
		return NewMockEstimator(), nil
	default:
		return nil, &UnsupportedModeError{Mode: mode}
	}
}
