package pose

import (
	"fmt"
	"math"
	"time"

	"gocv.io/x/gocv"

	"github.com/banshee-data/pose.report/internal/engine"
	"github.com/banshee-data/pose.report/internal/monitoring"
	"github.com/banshee-data/pose.report/internal/timeutil"
	"github.com/banshee-data/pose.report/internal/video"
)

// clock supplies the extraction timestamp recorded in the metadata. Tests
// swap in a timeutil.MockClock.
var clock timeutil.Clock = timeutil.RealClock{}

// fallbackStepMS is the per-frame timestamp step used when the container
// does not report a frame rate (roughly 30fps).
const fallbackStepMS = 33

// progressEvery controls how often extraction progress is logged.
const progressEvery = 30

// TimestampMS returns the detection timestamp for frame index i at the
// given frame rate. For fps > 0 this is round(i/fps*1000); otherwise a
// fixed 33ms step. Monotonic in i, so feeding frames in decode order
// satisfies the engine's strictly-increasing timestamp contract.
func TimestampMS(i int, fps float64) int64 {
	if fps > 0 {
		return int64(math.Round(float64(i) / fps * 1000))
	}
	return int64(i) * fallbackStepMS
}

// Extract decodes every frame from src, runs it through det and accumulates
// the frames where a pose was detected. Frames with no detection count
// toward TotalFrames but are dropped from the result, not zero-filled.
// Extract does not close src or det; both handles belong to the caller.
func Extract(sourceName string, src video.Source, det engine.Detector) (*ExtractionResult, error) {
	fps := src.FPS()
	total := src.FrameCount()

	duration := 0.0
	if fps > 0 {
		duration = float64(total) / fps
	}

	monitoring.Logf("processing video: %s (fps=%.2f frames=%d duration=%.2fs)",
		sourceName, fps, total, duration)

	started := clock.Now()

	mat := gocv.NewMat()
	defer mat.Close()

	var frames []Frame
	for i := 0; src.Read(&mat); i++ {
		ts := TimestampMS(i, fps)

		res, err := det.DetectForVideo(mat, ts)
		if err != nil {
			return nil, fmt.Errorf("detect frame %d: %w", i, err)
		}

		if len(res.Poses) > 0 {
			frames = append(frames, Frame{
				FrameNumber: i,
				TimestampMS: ts,
				Landmarks:   mapKeypoints(res.Poses[0]),
			})
		}

		if (i+1)%progressEvery == 0 {
			monitoring.Logf("  processed %d/%d frames", i+1, total)
		}
	}

	monitoring.Logf("extracted %d frames with pose data in %s",
		len(frames), clock.Since(started).Round(time.Millisecond))

	return &ExtractionResult{
		Metadata: VideoMetadata{
			SourceVideo:     sourceName,
			FPS:             fps,
			TotalFrames:     total,
			FramesWithPose:  len(frames),
			DurationSeconds: duration,
			ExtractedAt:     started,
		},
		Frames: frames,
	}, nil
}

// mapKeypoints maps the first detected pose's keypoints positionally onto
// the fixed landmark schema: index 0 to Schema[0] and so on, truncating
// when the engine returns fewer points and ignoring indices beyond the
// schema. Confidence defaults to 1.0 when the engine reports no visibility.
func mapKeypoints(kps []engine.Keypoint) LandmarkSet {
	set := make(LandmarkSet, len(kps))
	for idx, kp := range kps {
		if idx >= SchemaSize {
			break
		}
		conf := 1.0
		if kp.HasVisibility {
			conf = kp.Visibility
		}
		set[Schema[idx]] = Landmark{
			X:          kp.X,
			Y:          kp.Y,
			Z:          kp.Z,
			Confidence: conf,
		}
	}
	return set
}

// FrameNumbers returns the set of frame numbers present in the result, for
// selecting which decoded frames to export as images.
func (r *ExtractionResult) FrameNumbers() map[int]bool {
	nums := make(map[int]bool, len(r.Frames))
	for _, f := range r.Frames {
		nums[f.FrameNumber] = true
	}
	return nums
}
