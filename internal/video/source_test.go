package video

import (
	"errors"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"

	"github.com/banshee-data/pose.report/internal/fsutil"
)

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.mp4"))
	if err == nil {
		t.Fatal("expected error for missing video")
	}
	if !errors.Is(err, ErrVideoUnavailable) {
		t.Errorf("error %v is not ErrVideoUnavailable", err)
	}
}

func TestMockServesConfiguredFrames(t *testing.T) {
	m := NewMock(30, 10, 3)

	if m.FPS() != 30 {
		t.Errorf("FPS = %v", m.FPS())
	}
	if m.FrameCount() != 10 {
		t.Errorf("FrameCount = %d", m.FrameCount())
	}

	mat := gocv.NewMat()
	defer mat.Close()

	served := 0
	for m.Read(&mat) {
		served++
	}
	if served != 3 {
		t.Errorf("served %d frames, want 3", served)
	}

	if err := m.Close(); err != nil {
		t.Fatal(err)
	}
	if !m.Closed {
		t.Error("Closed not recorded")
	}
}

// An empty wanted set is a no-op: no directory is created and the video is
// never opened.
func TestExportFramesNothingWanted(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()

	n, err := ExportFrames("does-not-matter.mp4", "/images", nil, fs)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("exported %d, want 0", n)
	}
	if fs.Exists("/images") {
		t.Error("image directory created for empty export")
	}
}

func TestExportFramesMissingVideo(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()

	_, err := ExportFrames(filepath.Join(t.TempDir(), "missing.mp4"), t.TempDir(), map[int]bool{0: true}, fs)
	if !errors.Is(err, ErrVideoUnavailable) {
		t.Errorf("error %v is not ErrVideoUnavailable", err)
	}
}
