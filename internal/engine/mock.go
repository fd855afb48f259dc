package engine

import (
	"fmt"

	"gocv.io/x/gocv"
)

// Mock is a scripted Detector for tests. It returns its Results in order,
// then empty results once the script is exhausted, and records every
// timestamp it was called with so tests can assert the strictly increasing
// contract.
type Mock struct {
	// Results are returned one per DetectForVideo call, in order.
	Results []Result

	// Err, when set, is returned by every DetectForVideo call.
	Err error

	// Timestamps records the timestamp of each call.
	Timestamps []int64

	next   int
	closed bool
}

// NewMock creates a scripted detector serving the given per-frame results.
func NewMock(results []Result) *Mock {
	return &Mock{Results: results}
}

// DetectForVideo serves the next scripted result.
func (m *Mock) DetectForVideo(_ gocv.Mat, timestampMS int64) (Result, error) {
	if m.closed {
		return Result{}, fmt.Errorf("detect after close")
	}
	if m.Err != nil {
		return Result{}, m.Err
	}
	m.Timestamps = append(m.Timestamps, timestampMS)
	if m.next >= len(m.Results) {
		return Result{}, nil
	}
	r := m.Results[m.next]
	m.next++
	return r, nil
}

// Close marks the mock closed; further calls fail.
func (m *Mock) Close() error {
	m.closed = true
	return nil
}
