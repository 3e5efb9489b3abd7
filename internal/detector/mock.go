package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/pinchball/internal/hand"
)

type mockResult struct {
	hands []hand.Landmarks
	err   error
}

// MockDetector is a test implementation of the Detector interface.
// Queued results are returned one per Detect call; once the queue is empty
// the values from SetHands and SetError are returned.
type MockDetector struct {
	mu     sync.Mutex
	hands  []hand.Landmarks
	err    error
	queue  []mockResult
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []hand.Landmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// QueueFrames appends per-frame results, one slice of hands per Detect call.
func (m *MockDetector) QueueFrames(frames ...[]hand.Landmarks) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range frames {
		m.queue = append(m.queue, mockResult{hands: f})
	}
}

// QueueError appends a single failing Detect call.
func (m *MockDetector) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, mockResult{err: err})
}

// Pending returns the number of queued results not yet consumed.
func (m *MockDetector) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the next queued result or the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]hand.Landmarks, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if len(m.queue) > 0 {
		r := m.queue[0]
		m.queue = m.queue[1:]
		return r.hands, r.err
	}

	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
