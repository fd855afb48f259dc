package engine

import (
	"fmt"
	"image"
	"math"
	"os"

	"gocv.io/x/gocv"
)

const (
	// blazeInputSize is the square input resolution of the BlazePose
	// landmark model.
	blazeInputSize = 256

	// blazeKeypoints is the number of keypoints per pose in the model
	// output, with 5 values each (x, y, z, visibility, presence).
	blazeKeypoints = 33
	blazeValues    = 5

	// Output layer names of the converted landmark model: Identity carries
	// the flat landmark tensor, Identity_1 the pose presence score.
	blazeLandmarkLayer = "Identity"
	blazePoseFlagLayer = "Identity_1"
)

// BlazePose runs the BlazePose full-body landmark model through gocv's DNN
// backend. It is stateful only in that it enforces the strictly increasing
// timestamp contract across calls.
type BlazePose struct {
	net     gocv.Net
	opts    Options
	lastTS  int64
	started bool
}

// NewBlazePose loads the model asset named in opts. It fails with
// ErrModelUnavailable when the asset is missing or unreadable; a missing
// model is fatal for the whole run, never a warn-and-continue condition.
func NewBlazePose(opts Options) (*BlazePose, error) {
	if opts.ModelPath == "" {
		return nil, fmt.Errorf("%w: no model path configured", ErrModelUnavailable)
	}
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrModelUnavailable, opts.ModelPath, err)
	}

	net := gocv.ReadNet(opts.ModelPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("%w: could not load %s", ErrModelUnavailable, opts.ModelPath)
	}

	return &BlazePose{net: net, opts: opts}, nil
}

// DetectForVideo runs one frame through the landmark model. It returns an
// empty Result when the pose presence score falls below the configured
// threshold.
func (d *BlazePose) DetectForVideo(frame gocv.Mat, timestampMS int64) (Result, error) {
	if frame.Empty() {
		return Result{}, fmt.Errorf("empty frame at %dms", timestampMS)
	}
	if d.started && timestampMS <= d.lastTS {
		return Result{}, fmt.Errorf("timestamp %dms not after previous %dms", timestampMS, d.lastTS)
	}
	d.lastTS = timestampMS
	d.started = true

	blob := gocv.BlobFromImage(frame, 1.0/255.0,
		image.Pt(blazeInputSize, blazeInputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	outs := d.net.ForwardLayers([]string{blazeLandmarkLayer, blazePoseFlagLayer})
	defer func() {
		for i := range outs {
			outs[i].Close()
		}
	}()
	if len(outs) < 2 {
		return Result{}, fmt.Errorf("model returned %d outputs, want 2", len(outs))
	}

	score := float64(outs[1].GetFloatAt(0, 0))
	if score < d.opts.MinPosePresenceConfidence {
		return Result{}, nil
	}

	data, err := outs[0].DataPtrFloat32()
	if err != nil {
		return Result{}, fmt.Errorf("read landmark tensor: %w", err)
	}
	if len(data) < blazeKeypoints*blazeValues {
		return Result{}, fmt.Errorf("landmark tensor has %d values, want %d", len(data), blazeKeypoints*blazeValues)
	}

	kps := make([]Keypoint, 0, blazeKeypoints)
	for i := 0; i < blazeKeypoints; i++ {
		base := i * blazeValues
		kps = append(kps, Keypoint{
			// Model coordinates are in input-pixel scale; normalise back
			// to the [0,1] image plane.
			X:             float64(data[base+0]) / blazeInputSize,
			Y:             float64(data[base+1]) / blazeInputSize,
			Z:             float64(data[base+2]) / blazeInputSize,
			Visibility:    sigmoid(float64(data[base+3])),
			HasVisibility: true,
		})
	}

	return Result{Poses: [][]Keypoint{kps}}, nil
}

// Close releases the DNN network.
func (d *BlazePose) Close() error {
	return d.net.Close()
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
