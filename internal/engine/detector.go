// Package engine defines the boundary to the pose-detection model and a
// gocv DNN implementation of it. The rest of the pipeline treats the engine
// as a black box: frame pixels and a timestamp in, zero or one keypoint set
// out.
package engine

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrModelUnavailable indicates the detector's model asset could not be
// located or loaded. This is a configuration failure and aborts the whole
// run; it is never a per-frame condition.
var ErrModelUnavailable = errors.New("pose model asset unavailable")

// Keypoint is one raw landmark as reported by the engine, in model output
// order. Visibility is only meaningful when HasVisibility is set; engines
// that do not score visibility leave it false and callers default to 1.0.
type Keypoint struct {
	X             float64
	Y             float64
	Z             float64
	Visibility    float64
	HasVisibility bool
}

// Result holds the poses detected in a single frame. Engines may report
// several people; the extraction pipeline uses only the first pose.
type Result struct {
	Poses [][]Keypoint
}

// Detector analyses video frames one at a time. Timestamps passed to
// DetectForVideo must be strictly increasing across calls; implementations
// may use them for temporal tracking.
type Detector interface {
	// DetectForVideo returns the poses detected in frame, or a Result with
	// no poses when nothing was detected. A non-nil error aborts the run.
	DetectForVideo(frame gocv.Mat, timestampMS int64) (Result, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Options configures detector construction.
type Options struct {
	// ModelPath is the filesystem path to the model asset. Required.
	ModelPath string

	// MinPoseDetectionConfidence is the minimum score for a frame to count
	// as containing a pose (0.0-1.0).
	MinPoseDetectionConfidence float64

	// MinPosePresenceConfidence is the minimum pose presence score
	// (0.0-1.0).
	MinPosePresenceConfidence float64
}

// DefaultOptions returns Options with the standard thresholds for the given
// model asset.
func DefaultOptions(modelPath string) Options {
	return Options{
		ModelPath:                  modelPath,
		MinPoseDetectionConfidence: 0.5,
		MinPosePresenceConfidence:  0.5,
	}
}
