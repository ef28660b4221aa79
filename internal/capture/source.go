// Package capture provides frame sources for batch gaze analysis using GoCV
// (OpenCV). Live camera acquisition is out of scope; sources read recorded
// video files or replay pre-loaded frames.
package capture

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"gocv.io/x/gocv"
)

// ErrSourceClosed is returned when reading from a source that is not open.
var ErrSourceClosed = errors.New("capture: source is not open")

// Source defines the interface for frame source implementations. Next
// returns io.EOF once the source is exhausted.
type Source interface {
	Open() error
	Close() error
	Next() (*gocv.Mat, error)
	// FPS returns the nominal frame rate of the source, or 0 when unknown.
	FPS() float64
}

// videoFile reads frames sequentially from a recorded video file.
type videoFile struct {
	path    string
	capture *gocv.VideoCapture
	mu      sync.Mutex
	running bool
}

// NewVideoFile creates a Source reading the given video file.
func NewVideoFile(path string) Source {
	return &videoFile{path: path}
}

func (v *videoFile) Open() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.running {
		return nil
	}

	capture, err := gocv.VideoCaptureFile(v.path)
	if err != nil {
		return fmt.Errorf("open video %s: %w", v.path, err)
	}
	v.capture = capture
	v.running = true
	return nil
}

func (v *videoFile) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running {
		return nil
	}
	v.running = false
	return v.capture.Close()
}

func (v *videoFile) Next() (*gocv.Mat, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running {
		return nil, ErrSourceClosed
	}

	frame := gocv.NewMat()
	if ok := v.capture.Read(&frame); !ok {
		frame.Close()
		return nil, io.EOF
	}
	if frame.Empty() {
		frame.Close()
		return nil, io.EOF
	}
	return &frame, nil
}

func (v *videoFile) FPS() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running {
		return 0
	}
	return v.capture.Get(gocv.VideoCaptureFPS)
}
