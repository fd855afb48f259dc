// Package fixture converts an extraction result into the Dart fixture file
// consumed by the downstream fitness_counter test suite. The emitted text is
// a compatibility surface: frame order, landmark order and 6-decimal float
// formatting are all part of the format.
package fixture

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/banshee-data/pose.report/internal/fsutil"
	"github.com/banshee-data/pose.report/internal/pose"
)

// Generator is the tool name recorded in the fixture header.
const Generator = "extract-poses"

// Document is the deterministic in-memory form of a fixture file: metadata
// plus frames in extraction order, with every landmark value already
// rounded to six decimal places.
type Document struct {
	MetadataVar string
	FramesVar   string
	Metadata    pose.VideoMetadata
	Frames      []pose.Frame
}

// Build converts an extraction result into a Document. The prefix derives
// the two emitted variable names, <prefix>Metadata and <prefix>Frames; a
// leading uppercase letter is lowered so the Dart identifiers are
// camelCase. The input result is not modified.
func Build(res *pose.ExtractionResult, prefix string) (*Document, error) {
	if prefix == "" {
		return nil, fmt.Errorf("empty variable prefix")
	}

	lower := prefix
	if r := rune(prefix[0]); unicode.IsUpper(r) {
		lower = strings.ToLower(prefix[:1]) + prefix[1:]
	}

	frames := make([]pose.Frame, len(res.Frames))
	for i, f := range res.Frames {
		rounded := make(pose.LandmarkSet, len(f.Landmarks))
		for id, lm := range f.Landmarks {
			rounded[id] = pose.Landmark{
				X:          round6(lm.X),
				Y:          round6(lm.Y),
				Z:          round6(lm.Z),
				Confidence: round6(lm.Confidence),
			}
		}
		frames[i] = pose.Frame{
			FrameNumber: f.FrameNumber,
			TimestampMS: f.TimestampMS,
			Landmarks:   rounded,
		}
	}

	return &Document{
		MetadataVar: lower + "Metadata",
		FramesVar:   lower + "Frames",
		Metadata:    res.Metadata,
		Frames:      frames,
	}, nil
}

// Render writes the Dart source for the document to w.
func (d *Document) Render(w io.Writer) error {
	bw := bufio.NewWriter(w)
	m := d.Metadata

	fmt.Fprintf(bw, "// GENERATED FILE - DO NOT EDIT\n")
	fmt.Fprintf(bw, "// Generated by %s\n", Generator)
	fmt.Fprintf(bw, "// Source: %s\n", m.SourceVideo)
	fmt.Fprintf(bw, "// Extracted: %s\n\n", m.ExtractedAt.Format(time.RFC3339))

	fmt.Fprintf(bw, "import 'package:fitness_counter/fitness_counter.dart';\n\n")

	fmt.Fprintf(bw, "/// Metadata about the source video.\n")
	fmt.Fprintf(bw, "final Map<String, dynamic> %s = {\n", d.MetadataVar)
	fmt.Fprintf(bw, "  'source_video': '%s',\n", m.SourceVideo)
	fmt.Fprintf(bw, "  'fps': %s,\n", dartFloat(m.FPS))
	fmt.Fprintf(bw, "  'total_frames': %d,\n", m.TotalFrames)
	fmt.Fprintf(bw, "  'frames_with_pose': %d,\n", m.FramesWithPose)
	fmt.Fprintf(bw, "  'duration_seconds': %s,\n", dartFloat(m.DurationSeconds))
	fmt.Fprintf(bw, "  'extracted_at': '%s',\n", m.ExtractedAt.Format(time.RFC3339))
	fmt.Fprintf(bw, "};\n\n")

	fmt.Fprintf(bw, "/// Real pose data extracted from %s.\n", m.SourceVideo)
	fmt.Fprintf(bw, "///\n")
	fmt.Fprintf(bw, "/// Contains %d frames from a %.2fs video.\n", len(d.Frames), m.DurationSeconds)
	fmt.Fprintf(bw, "final List<PoseFrame> %s = [\n", d.FramesVar)

	for _, f := range d.Frames {
		fmt.Fprintf(bw, "  // Frame %d @ %dms\n", f.FrameNumber, f.TimestampMS)
		fmt.Fprintf(bw, "  PoseFrame(\n")
		fmt.Fprintf(bw, "    timestamp: DateTime.fromMillisecondsSinceEpoch(%d),\n", f.TimestampMS)
		fmt.Fprintf(bw, "    landmarks: {\n")

		// Landmark order in the output follows the fixed schema order, not
		// map iteration order.
		for _, id := range pose.Schema {
			lm, ok := f.Landmarks[id]
			if !ok {
				continue
			}
			fmt.Fprintf(bw, "      LandmarkId.%s: Landmark(\n", id)
			fmt.Fprintf(bw, "        x: %.6f,\n", lm.X)
			fmt.Fprintf(bw, "        y: %.6f,\n", lm.Y)
			fmt.Fprintf(bw, "        z: %.6f,\n", lm.Z)
			fmt.Fprintf(bw, "        confidence: %.6f,\n", lm.Confidence)
			fmt.Fprintf(bw, "      ),\n")
		}

		fmt.Fprintf(bw, "    },\n")
		fmt.Fprintf(bw, "  ),\n")
	}

	fmt.Fprintf(bw, "];\n")
	return bw.Flush()
}

// WriteFile renders the document fully in memory, writes it to a unique
// temporary file next to path and renames it into place, so a failed run
// never leaves a partial fixture behind.
func (d *Document) WriteFile(fs fsutil.FileSystem, path string) error {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return fmt.Errorf("render fixture: %w", err)
	}

	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := fs.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write fixture: %w", err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("write fixture: %w", err)
	}
	return nil
}

// round6 rounds to six decimal places, the fixture's numeric precision.
func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

// dartFloat formats a float with the shortest round-trip representation,
// keeping a trailing .0 on whole values so the literal stays a Dart double.
func dartFloat(v float64) string {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
