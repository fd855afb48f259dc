package fixture

import (
	"bytes"
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pose.report/internal/fsutil"
	"github.com/banshee-data/pose.report/internal/pose"
)

func sampleResult() *pose.ExtractionResult {
	return &pose.ExtractionResult{
		Metadata: pose.VideoMetadata{
			SourceVideo:     "single_squat.mp4",
			FPS:             30,
			TotalFrames:     3,
			FramesWithPose:  2,
			DurationSeconds: 0.1,
			ExtractedAt:     time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC),
		},
		Frames: []pose.Frame{
			{
				FrameNumber: 1,
				TimestampMS: 33,
				Landmarks: pose.LandmarkSet{
					pose.Nose:         {X: 0.512345678, Y: 0.25, Z: -0.1, Confidence: 0.987654321},
					pose.LeftShoulder: {X: 0.4, Y: 0.35, Z: -0.05, Confidence: 1},
					pose.LeftKnee:     {X: 0.45, Y: 0.7, Z: 0.02, Confidence: 0.91},
				},
			},
			{
				FrameNumber: 2,
				TimestampMS: 67,
				Landmarks: pose.LandmarkSet{
					pose.Nose: {X: 0.51, Y: 0.26, Z: -0.11, Confidence: 0.98},
				},
			},
		},
	}
}

func TestBuildVariableNames(t *testing.T) {
	tests := []struct {
		prefix       string
		wantMetadata string
		wantFrames   string
	}{
		{"RealSingleSquat", "realSingleSquatMetadata", "realSingleSquatFrames"},
		{"realLateralRaise", "realLateralRaiseMetadata", "realLateralRaiseFrames"},
		{"x", "xMetadata", "xFrames"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			doc, err := Build(sampleResult(), tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMetadata, doc.MetadataVar)
			assert.Equal(t, tt.wantFrames, doc.FramesVar)
		})
	}
}

func TestBuildEmptyPrefix(t *testing.T) {
	_, err := Build(sampleResult(), "")
	require.Error(t, err)
}

func TestBuildRoundsToSixDecimals(t *testing.T) {
	doc, err := Build(sampleResult(), "test")
	require.NoError(t, err)

	got := doc.Frames[0].Landmarks[pose.Nose]
	want := pose.Landmark{X: 0.512346, Y: 0.25, Z: -0.1, Confidence: 0.987654}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rounded landmark mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	res := sampleResult()
	_, err := Build(res, "test")
	require.NoError(t, err)
	assert.Equal(t, 0.512345678, res.Frames[0].Landmarks[pose.Nose].X)
}

func TestRenderHeaderAndStructure(t *testing.T) {
	doc, err := Build(sampleResult(), "RealSingleSquat")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "// GENERATED FILE - DO NOT EDIT\n"))
	assert.Contains(t, out, "// Source: single_squat.mp4\n")
	assert.Contains(t, out, "import 'package:fitness_counter/fitness_counter.dart';\n")
	assert.Contains(t, out, "final Map<String, dynamic> realSingleSquatMetadata = {")
	assert.Contains(t, out, "'fps': 30.0,")
	assert.Contains(t, out, "'total_frames': 3,")
	assert.Contains(t, out, "'frames_with_pose': 2,")
	assert.Contains(t, out, "final List<PoseFrame> realSingleSquatFrames = [")
	assert.Contains(t, out, "// Frame 1 @ 33ms")
	assert.Contains(t, out, "DateTime.fromMillisecondsSinceEpoch(33)")
	assert.True(t, strings.HasSuffix(out, "];\n"))
}

// Landmarks must be emitted in schema order regardless of map iteration
// order: nose (index 0) before leftShoulder (11) before leftKnee (25).
func TestRenderSchemaOrder(t *testing.T) {
	doc, err := Build(sampleResult(), "test")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))
	out := buf.String()

	nose := strings.Index(out, "LandmarkId.nose:")
	shoulder := strings.Index(out, "LandmarkId.leftShoulder:")
	knee := strings.Index(out, "LandmarkId.leftKnee:")
	require.Greater(t, nose, 0)
	require.Greater(t, shoulder, 0)
	require.Greater(t, knee, 0)
	assert.Less(t, nose, shoulder)
	assert.Less(t, shoulder, knee)
}

// Re-parsing the emitted numeric fields must land within 1e-6 of the
// originals; six-decimal rounding is the only precision loss.
func TestRenderRoundTrip(t *testing.T) {
	res := sampleResult()
	doc, err := Build(res, "test")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))

	re := regexp.MustCompile(`x: (-?\d+\.\d{6}),`)
	matches := re.FindAllStringSubmatch(buf.String(), -1)
	require.Len(t, matches, 4) // one x per emitted landmark

	// Frame 1 emits nose, leftShoulder, leftKnee in schema order; frame 2
	// emits nose.
	wantX := []float64{
		res.Frames[0].Landmarks[pose.Nose].X,
		res.Frames[0].Landmarks[pose.LeftShoulder].X,
		res.Frames[0].Landmarks[pose.LeftKnee].X,
		res.Frames[1].Landmarks[pose.Nose].X,
	}
	for i, m := range matches {
		got, err := strconv.ParseFloat(m[1], 64)
		require.NoError(t, err)
		if math.Abs(got-wantX[i]) > 1e-6 {
			t.Errorf("x[%d] = %v, want within 1e-6 of %v", i, got, wantX[i])
		}
	}
}

func TestRenderEmptyExtraction(t *testing.T) {
	res := &pose.ExtractionResult{
		Metadata: pose.VideoMetadata{
			SourceVideo: "still.mp4",
			FPS:         30,
			TotalFrames: 10,
			ExtractedAt: time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC),
		},
	}
	doc, err := Build(res, "still")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))
	out := buf.String()

	assert.Contains(t, out, "'frames_with_pose': 0,")
	assert.Contains(t, out, "final List<PoseFrame> stillFrames = [\n];\n")
}

func TestWriteFileAtomic(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	doc, err := Build(sampleResult(), "test")
	require.NoError(t, err)

	require.NoError(t, doc.WriteFile(fs, "/out/real_single_squat.dart"))

	assert.True(t, fs.Exists("/out/real_single_squat.dart"))

	// No stray temp file is left behind.
	files := fs.Files()
	require.Len(t, files, 1)
	assert.NotContains(t, files[0], ".tmp")

	// Written bytes match a direct render.
	var buf bytes.Buffer
	require.NoError(t, doc.Render(&buf))
	data, err := fs.ReadFile("/out/real_single_squat.dart")
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(data))
}

func TestDartFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{30, "30.0"},
		{29.97, "29.97"},
		{0, "0.0"},
		{0.1, "0.1"},
	}

	for _, tt := range tests {
		if got := dartFloat(tt.in); got != tt.want {
			t.Errorf("dartFloat(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
