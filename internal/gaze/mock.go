package gaze

import (
	"gocv.io/x/gocv"
)

// MockEstimator is a test implementation of the Estimator interface. It
// returns a scripted sequence of estimates, one per call, letting tests and
// replay runs control exactly what the pipeline sees.
type MockEstimator struct {
	queue []mockResult
	last  mockResult
	err   error
	calls int
}

type mockResult struct {
	est Estimate
	ok  bool
}

// NewMockEstimator creates a new MockEstimator instance.
func NewMockEstimator() *MockEstimator {
	return &MockEstimator{}
}

// Enqueue appends a detection result returned by a future Estimate call.
func (m *MockEstimator) Enqueue(est Estimate) {
	m.queue = append(m.queue, mockResult{est: est, ok: true})
}

// EnqueueMiss appends a failed-detection result.
func (m *MockEstimator) EnqueueMiss() {
	m.queue = append(m.queue, mockResult{})
}

// SetError makes all subsequent Estimate calls fail with err.
func (m *MockEstimator) SetError(err error) {
	m.err = err
}

// Calls returns how many times Estimate has been invoked.
func (m *MockEstimator) Calls() int { return m.calls }

// Estimate pops the next scripted result. When the queue is exhausted the
// last result is repeated, so a single Enqueue can serve a whole run.
func (m *MockEstimator) Estimate(frame *gocv.Mat) (Estimate, bool, error) {
	m.calls++
	if m.err != nil {
		return Estimate{}, false, m.err
	}
	if len(m.queue) > 0 {
		m.last = m.queue[0]
		m.queue = m.queue[1:]
	}
	return m.last.est, m.last.ok, nil
}

// Close is a no-op for the mock estimator.
func (m *MockEstimator) Close() error {
	return nil
}
