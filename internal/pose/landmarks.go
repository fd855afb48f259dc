// Package pose holds the landmark data model, the frame extraction loop and
// the joint-angle analysis used to sanity-check extracted motion.
package pose

import "time"

// LandmarkID identifies one of the 33 anatomical keypoints reported by the
// pose model. The names match the LandmarkId enum in the downstream
// fitness_counter package.
type LandmarkID string

// Landmark identifiers referenced directly by the angle analyzer. The full
// set lives in Schema.
const (
	Nose          LandmarkID = "nose"
	LeftShoulder  LandmarkID = "leftShoulder"
	RightShoulder LandmarkID = "rightShoulder"
	LeftElbow     LandmarkID = "leftElbow"
	RightElbow    LandmarkID = "rightElbow"
	LeftHip       LandmarkID = "leftHip"
	RightHip      LandmarkID = "rightHip"
	LeftKnee      LandmarkID = "leftKnee"
	RightKnee     LandmarkID = "rightKnee"
	LeftAnkle     LandmarkID = "leftAnkle"
	RightAnkle    LandmarkID = "rightAnkle"
)

// SchemaSize is the number of landmarks in the fixed pose schema.
const SchemaSize = 33

// Schema is the fixed 33-entry landmark schema in model output order. Index
// position is the wire format: the detection engine's keypoint at index i
// maps to Schema[i], and the fixture serializer emits landmarks in this
// order. Do not reorder.
var Schema = [SchemaSize]LandmarkID{
	"nose", "leftEyeInner", "leftEye", "leftEyeOuter",
	"rightEyeInner", "rightEye", "rightEyeOuter",
	"leftEar", "rightEar", "mouthLeft", "mouthRight",
	"leftShoulder", "rightShoulder", "leftElbow", "rightElbow",
	"leftWrist", "rightWrist", "leftPinky", "rightPinky",
	"leftIndex", "rightIndex", "leftThumb", "rightThumb",
	"leftHip", "rightHip", "leftKnee", "rightKnee",
	"leftAnkle", "rightAnkle", "leftHeel", "rightHeel",
	"leftFootIndex", "rightFootIndex",
}

// Landmark is one keypoint's position and detection confidence for a single
// frame. X and Y are normalised image-plane coordinates (typically [0,1]),
// Z is relative depth, Confidence is the model's visibility score in [0,1].
type Landmark struct {
	X          float64
	Y          float64
	Z          float64
	Confidence float64
}

// LandmarkSet maps landmark identifiers to their detected positions for one
// frame. Keys are present only for landmarks the engine actually reported.
type LandmarkSet map[LandmarkID]Landmark

// Frame is one video frame with a detected pose.
type Frame struct {
	FrameNumber int
	TimestampMS int64
	Landmarks   LandmarkSet
}

// VideoMetadata describes the source video and the extraction run.
type VideoMetadata struct {
	SourceVideo     string
	FPS             float64
	TotalFrames     int
	FramesWithPose  int
	DurationSeconds float64
	ExtractedAt     time.Time
}

// ExtractionResult is the complete output of one extraction run. Frames is
// strictly increasing in FrameNumber and contains only frames where the
// engine detected a pose; frames with no detection are dropped, not
// zero-filled. The result is never mutated after construction.
type ExtractionResult struct {
	Metadata VideoMetadata
	Frames   []Frame
}
