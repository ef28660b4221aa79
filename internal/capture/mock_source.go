package capture

import (
	"io"
	"sync"

	"gocv.io/x/gocv"
)

// MockSource plays back pre-loaded frames for testing.
type MockSource struct {
	frames  []*gocv.Mat
	index   int
	loop    bool
	fps     float64
	mu      sync.Mutex
	running bool
}

// NewMockSource creates a MockSource over the given frames. With loop set,
// playback restarts from the first frame instead of ending.
func NewMockSource(frames []*gocv.Mat, loop bool) *MockSource {
	return &MockSource{
		frames: frames,
		loop:   loop,
		fps:    15,
	}
}

func (m *MockSource) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = true
	m.index = 0
	return nil
}

func (m *MockSource) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	return nil
}

func (m *MockSource) Next() (*gocv.Mat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return nil, ErrSourceClosed
	}
	if m.index >= len(m.frames) {
		if !m.loop || len(m.frames) == 0 {
			return nil, io.EOF
		}
		m.index = 0
	}

	// Clone so callers can close their frame without touching the original.
	frame := m.frames[m.index].Clone()
	m.index++
	return &frame, nil
}

func (m *MockSource) FPS() float64 { return m.fps }

// Reset restarts playback from the beginning.
func (m *MockSource) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index = 0
}
