// Package video provides the frame source for the extraction pipeline: a
// thin wrapper over gocv's VideoCapture that exposes timing metadata and
// sequential decode, plus per-frame JPEG export.
package video

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"github.com/banshee-data/pose.report/internal/fsutil"
)

// ErrVideoUnavailable indicates the input video is missing or cannot be
// decoded. Fatal for the run; no partial output is written.
var ErrVideoUnavailable = errors.New("video unavailable")

// Source yields video frames in decode order together with the stream's
// timing metadata. Use File for real videos; Mock for tests.
type Source interface {
	// FPS returns the stream frame rate, or 0 when unknown.
	FPS() float64

	// FrameCount returns the total number of frames in the stream, or 0
	// when unknown.
	FrameCount() int

	// Read decodes the next frame into dst and reports whether a frame was
	// produced. A false return means end of stream.
	Read(dst *gocv.Mat) bool

	// Close releases the decode handle. Safe to call more than once.
	Close() error
}

// File is a Source backed by a video file on disk.
type File struct {
	path   string
	cap    *gocv.VideoCapture
	fps    float64
	frames int
}

// Open opens the video at path for sequential decoding. It fails with
// ErrVideoUnavailable when the file is missing or cannot be opened.
func Open(path string) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrVideoUnavailable, path, err)
	}

	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrVideoUnavailable, path, err)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("%w: %s: decoder did not open", ErrVideoUnavailable, path)
	}

	return &File{
		path:   path,
		cap:    cap,
		fps:    cap.Get(gocv.VideoCaptureFPS),
		frames: int(cap.Get(gocv.VideoCaptureFrameCount)),
	}, nil
}

// FPS returns the video's frame rate as reported by the container.
func (f *File) FPS() float64 { return f.fps }

// FrameCount returns the container's total frame count.
func (f *File) FrameCount() int { return f.frames }

// Read decodes the next frame into dst.
func (f *File) Read(dst *gocv.Mat) bool {
	if f.cap == nil {
		return false
	}
	return f.cap.Read(dst) && !dst.Empty()
}

// Close releases the decode handle.
func (f *File) Close() error {
	if f.cap == nil {
		return nil
	}
	err := f.cap.Close()
	f.cap = nil
	return err
}

// ExportFrames re-decodes the video at path and writes frame_<n>.jpg into
// dir for every frame number in wanted. It returns the number of images
// written. Only frames that contributed pose data should be exported so the
// image indices stay in sync with the fixture.
func ExportFrames(path, dir string, wanted map[int]bool, fs fsutil.FileSystem) (int, error) {
	if len(wanted) == 0 {
		return 0, nil
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create image dir: %w", err)
	}

	src, err := Open(path)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	mat := gocv.NewMat()
	defer mat.Close()

	exported := 0
	for idx := 0; src.Read(&mat); idx++ {
		if !wanted[idx] {
			continue
		}
		out := filepath.Join(dir, fmt.Sprintf("frame_%d.jpg", idx))
		if ok := gocv.IMWrite(out, mat); !ok {
			return exported, fmt.Errorf("write image %s", out)
		}
		exported++
	}
	return exported, nil
}
