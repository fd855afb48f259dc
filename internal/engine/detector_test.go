package engine

import (
	"errors"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions("model.task")
	if opts.ModelPath != "model.task" {
		t.Errorf("ModelPath = %q", opts.ModelPath)
	}
	if opts.MinPoseDetectionConfidence != 0.5 {
		t.Errorf("MinPoseDetectionConfidence = %v, want 0.5", opts.MinPoseDetectionConfidence)
	}
	if opts.MinPosePresenceConfidence != 0.5 {
		t.Errorf("MinPosePresenceConfidence = %v, want 0.5", opts.MinPosePresenceConfidence)
	}
}

// A missing model asset is a fatal configuration failure, never a silent
// warn-and-continue.
func TestNewBlazePoseModelUnavailable(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty path", ""},
		{"missing file", filepath.Join(t.TempDir(), "nope.task")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBlazePose(DefaultOptions(tt.path))
			if err == nil {
				t.Fatal("expected error for unavailable model")
			}
			if !errors.Is(err, ErrModelUnavailable) {
				t.Errorf("error %v is not ErrModelUnavailable", err)
			}
		})
	}
}

func TestMockServesScriptInOrder(t *testing.T) {
	mat := gocv.NewMat()
	defer mat.Close()

	first := Result{Poses: [][]Keypoint{{{X: 0.1}}}}
	second := Result{Poses: [][]Keypoint{{{X: 0.2}}}}
	m := NewMock([]Result{first, second})

	r1, err := m.DetectForVideo(mat, 0)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := m.DetectForVideo(mat, 33)
	if err != nil {
		t.Fatal(err)
	}
	r3, err := m.DetectForVideo(mat, 67)
	if err != nil {
		t.Fatal(err)
	}

	if r1.Poses[0][0].X != 0.1 || r2.Poses[0][0].X != 0.2 {
		t.Errorf("results out of order: %v %v", r1, r2)
	}
	if len(r3.Poses) != 0 {
		t.Errorf("exhausted mock returned poses: %v", r3)
	}

	want := []int64{0, 33, 67}
	if len(m.Timestamps) != len(want) {
		t.Fatalf("recorded %d timestamps, want %d", len(m.Timestamps), len(want))
	}
	for i, ts := range want {
		if m.Timestamps[i] != ts {
			t.Errorf("timestamp[%d] = %d, want %d", i, m.Timestamps[i], ts)
		}
	}
}

func TestMockAfterClose(t *testing.T) {
	mat := gocv.NewMat()
	defer mat.Close()

	m := NewMock(nil)
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := m.DetectForVideo(mat, 0); err == nil {
		t.Error("expected error after close")
	}
}

func TestSigmoid(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0.5},
		{10, 0.9999546021312976},
		{-10, 0.000045397868702434395},
	}

	for _, tt := range tests {
		got := sigmoid(tt.in)
		if diff := got - tt.want; diff > 1e-12 || diff < -1e-12 {
			t.Errorf("sigmoid(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
