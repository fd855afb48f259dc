package video

import "gocv.io/x/gocv"

// Mock is a scripted Source for tests. It reports fixed timing metadata and
// serves a fixed number of (empty) frames; detector mocks ignore the pixel
// content.
type Mock struct {
	// FPSValue and Total are returned by FPS and FrameCount.
	FPSValue float64
	Total    int

	// Serve is how many frames Read yields before reporting end of stream.
	Serve int

	// Closed records whether Close was called.
	Closed bool

	served int
}

// NewMock creates a source reporting the given fps and frame count and
// serving `serve` frames.
func NewMock(fps float64, total, serve int) *Mock {
	return &Mock{FPSValue: fps, Total: total, Serve: serve}
}

// FPS returns the scripted frame rate.
func (m *Mock) FPS() float64 { return m.FPSValue }

// FrameCount returns the scripted total.
func (m *Mock) FrameCount() int { return m.Total }

// Read reports true until the scripted frame count is exhausted. The
// destination Mat is left untouched.
func (m *Mock) Read(_ *gocv.Mat) bool {
	if m.served >= m.Serve {
		return false
	}
	m.served++
	return true
}

// Close records the call.
func (m *Mock) Close() error {
	m.Closed = true
	return nil
}
