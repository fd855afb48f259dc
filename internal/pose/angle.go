package pose

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// RepMode selects how the rep approximation scans the angle signal.
type RepMode int

const (
	// CountPeaks counts falling edges through the threshold: the signal
	// was at or above and drops below. Used for exercises where the angle
	// rises to a peak each rep (lateral raises).
	CountPeaks RepMode = iota

	// CountValleys counts edges into the region below the threshold: the
	// signal was not below and goes below. Used for exercises where the
	// angle dips each rep (squats).
	CountValleys
)

// Exercise is the tagged configuration for one supported exercise: which
// landmark triples form the monitored joint, how raw angles are normalised,
// and how reps are approximated.
type Exercise struct {
	Name string

	// Left and Right are the landmark triples (vertexA, center, vertexB)
	// for each body side.
	Left  [3]LandmarkID
	Right [3]LandmarkID

	// MaxAngle bounds the normalised angle: 90 folds into [0,90]
	// (shoulder mode), 180 into [0,180] (knee mode).
	MaxAngle float64

	// Mode selects peak or valley rep counting.
	Mode RepMode

	// FixedThreshold, when positive, is the rep detection threshold in
	// degrees. When zero the mean of the signal is used instead.
	FixedThreshold float64
}

// Supported exercises.
var (
	// LateralRaise monitors the shoulder angle (hip-shoulder-elbow).
	// Standing with arms down reads near 0; arms horizontal near 90.
	LateralRaise = Exercise{
		Name:     "lateral-raise",
		Left:     [3]LandmarkID{LeftHip, LeftShoulder, LeftElbow},
		Right:    [3]LandmarkID{RightHip, RightShoulder, RightElbow},
		MaxAngle: 90,
		Mode:     CountPeaks,
	}

	// Squat monitors the knee angle (hip-knee-ankle). Standing reads
	// ~170-180; full squat ~70-90, so the fixed 120 threshold sits
	// roughly midway.
	Squat = Exercise{
		Name:           "squat",
		Left:           [3]LandmarkID{LeftHip, LeftKnee, LeftAnkle},
		Right:          [3]LandmarkID{RightHip, RightKnee, RightAnkle},
		MaxAngle:       180,
		Mode:           CountValleys,
		FixedThreshold: 120,
	}
)

// ExerciseByName looks up a supported exercise by its CLI name.
func ExerciseByName(name string) (Exercise, bool) {
	switch name {
	case LateralRaise.Name:
		return LateralRaise, true
	case Squat.Name:
		return Squat, true
	}
	return Exercise{}, false
}

// AngleBetween returns the planar angle in degrees at vertex c, formed by
// the rays c->a and c->b. Depth (z) is ignored. Symmetric in a and b. The
// result is in [0,360).
func AngleBetween(a, c, b Landmark) float64 {
	angleA := math.Atan2(a.Y-c.Y, a.X-c.X)
	angleB := math.Atan2(b.Y-c.Y, b.X-c.X)
	return math.Abs(angleA-angleB) * 180 / math.Pi
}

// normalize folds a raw [0,360) angle into the exercise's bounded range:
// first the reflex fold into [0,180], then for shoulder mode the fold of
// values above 90 to 180-angle, yielding [0,90].
func (e Exercise) normalize(deg float64) float64 {
	if deg > 180 {
		deg = 360 - deg
	}
	if e.MaxAngle == 90 && deg > 90 {
		deg = 180 - deg
	}
	return deg
}

// sideAngle computes the normalised angle for one landmark triple, or 0.0
// when any of the three landmarks is absent. Zero means "undetected", not
// an error, and is indistinguishable from a true zero angle.
func (e Exercise) sideAngle(set LandmarkSet, triple [3]LandmarkID) float64 {
	a, okA := set[triple[0]]
	c, okC := set[triple[1]]
	b, okB := set[triple[2]]
	if !okA || !okC || !okB {
		return 0.0
	}
	return e.normalize(AngleBetween(a, c, b))
}

// FrameAngle computes the bilateral joint angle for one frame: the mean of
// the left and right side angles when both are positive, otherwise
// whichever side is positive, otherwise 0.0.
func (e Exercise) FrameAngle(set LandmarkSet) float64 {
	left := e.sideAngle(set, e.Left)
	right := e.sideAngle(set, e.Right)

	if left > 0 && right > 0 {
		return (left + right) / 2
	}
	if left > 0 {
		return left
	}
	return right
}

// Angles computes the per-frame angle signal over the extracted frames, one
// sample per frame with no temporal smoothing.
func (e Exercise) Angles(frames []Frame) []float64 {
	samples := make([]float64, 0, len(frames))
	for _, f := range frames {
		samples = append(samples, e.FrameAngle(f.Landmarks))
	}
	return samples
}

// Summary holds the descriptive statistics of an angle signal.
type Summary struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
}

// NoData reports whether the summary was computed over an empty signal.
func (s Summary) NoData() bool { return s.Count == 0 }

// Summarize computes min, max and mean over the angle samples. An empty
// input yields a zero Summary with NoData true rather than a division
// error.
func Summarize(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	return Summary{
		Count: len(samples),
		Min:   floats.Min(samples),
		Max:   floats.Max(samples),
		Mean:  stat.Mean(samples, nil),
	}
}

// CountReps approximates the repetition count in the angle signal with a
// single-pass threshold-crossing scan, and returns the threshold it used.
// This is a diagnostic sanity check on the extracted motion, not the
// production rep counter. Empty input yields (0, 0).
func (e Exercise) CountReps(samples []float64) (reps int, threshold float64) {
	if len(samples) == 0 {
		return 0, 0
	}

	threshold = e.FixedThreshold
	if threshold <= 0 {
		threshold = stat.Mean(samples, nil)
	}

	switch e.Mode {
	case CountValleys:
		wasBelow := samples[0] < threshold
		for _, s := range samples[1:] {
			isBelow := s < threshold
			if isBelow && !wasBelow {
				reps++
			}
			wasBelow = isBelow
		}
	default: // CountPeaks
		for i := 1; i < len(samples); i++ {
			if samples[i-1] >= threshold && samples[i] < threshold {
				reps++
			}
		}
	}
	return reps, threshold
}
