// Command extract-poses extracts per-frame pose landmarks from a fitness
// video and writes them as a Dart fixture for the fitness_counter test
// suite. It optionally analyses the joint-angle signal for a known exercise
// as a sanity check on the extracted motion, exports the contributing
// frames as images, and plots the angle signal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/banshee-data/pose.report/internal/engine"
	"github.com/banshee-data/pose.report/internal/fixture"
	"github.com/banshee-data/pose.report/internal/fsutil"
	"github.com/banshee-data/pose.report/internal/pose"
	"github.com/banshee-data/pose.report/internal/report"
	"github.com/banshee-data/pose.report/internal/version"
	"github.com/banshee-data/pose.report/internal/video"
)

// defaultModelName is the model asset looked up next to the executable and
// under the home directory fallback when -model is not given.
const defaultModelName = "pose_landmarker.task"

var (
	videoPath    = flag.String("video", "", "Path to the input video file (required)")
	outputPath   = flag.String("output", "", "Path to the output Dart fixture file (required)")
	namePrefix   = flag.String("name", "", "Prefix for the generated Dart variables, e.g. \"RealSingleSquat\" (required)")
	exercise     = flag.String("exercise", "none", "Exercise to analyse: squat, lateral-raise or none")
	modelPath    = flag.String("model", "", "Path to the pose model asset (default: "+defaultModelName+" beside the executable)")
	exportImages = flag.Bool("export-images", false, "Also export frames with pose data as JPEGs into an images/ directory next to the output")
	plotSignal   = flag.Bool("plot", false, "Write PNG and HTML plots of the angle signal next to the output (requires -exercise)")
	verbose      = flag.Bool("verbose", false, "Print the full error chain on failure")
	showVersion  = flag.Bool("version", false, "Print version information and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("extract-poses %s\n", version.String())
		return
	}

	if err := run(); err != nil {
		log.Printf("ERROR: %v", err)
		if *verbose {
			for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
				log.Printf("  caused by: %v", cause)
			}
		}
		os.Exit(1)
	}
}

func run() error {
	if *videoPath == "" || *outputPath == "" || *namePrefix == "" {
		flag.Usage()
		return fmt.Errorf("-video, -output and -name are required")
	}

	var ex pose.Exercise
	analyse := *exercise != "none"
	if analyse {
		var ok bool
		if ex, ok = pose.ExerciseByName(*exercise); !ok {
			return fmt.Errorf("unknown exercise %q (want squat, lateral-raise or none)", *exercise)
		}
	}

	src, err := video.Open(*videoPath)
	if err != nil {
		return err
	}
	defer src.Close()

	det, err := engine.NewBlazePose(engine.DefaultOptions(resolveModelPath()))
	if err != nil {
		return err
	}
	defer det.Close()

	res, err := pose.Extract(filepath.Base(*videoPath), src, det)
	if err != nil {
		return err
	}
	if len(res.Frames) == 0 {
		log.Printf("WARNING: no pose data extracted from %s", *videoPath)
	}

	var samples []float64
	if analyse {
		samples = ex.Angles(res.Frames)
		logAnalysis(ex, samples)
	}

	doc, err := fixture.Build(res, *namePrefix)
	if err != nil {
		return err
	}

	fs := fsutil.OSFileSystem{}
	if err := doc.WriteFile(fs, *outputPath); err != nil {
		return err
	}
	log.Printf("generated fixture: %s (variables %s, %s)", *outputPath, doc.MetadataVar, doc.FramesVar)

	if *exportImages {
		dir := filepath.Join(filepath.Dir(*outputPath), "images")
		n, err := video.ExportFrames(*videoPath, dir, res.FrameNumbers(), fs)
		if err != nil {
			return fmt.Errorf("export images: %w", err)
		}
		log.Printf("exported %d images to %s", n, dir)
	}

	if *plotSignal {
		if !analyse {
			log.Printf("skipping -plot: no exercise selected")
		} else if len(samples) == 0 {
			log.Printf("skipping -plot: no angle data")
		} else if err := writePlots(fs, ex, samples); err != nil {
			return err
		}
	}

	return nil
}

// logAnalysis prints the angle summary and the approximate rep count for
// the selected exercise.
func logAnalysis(ex pose.Exercise, samples []float64) {
	sum := pose.Summarize(samples)
	if sum.NoData() {
		log.Printf("analysis (%s): no angle data", ex.Name)
		return
	}
	reps, threshold := ex.CountReps(samples)
	log.Printf("analysis (%s):", ex.Name)
	log.Printf("  angle range: %.1f° - %.1f°", sum.Min, sum.Max)
	log.Printf("  average angle: %.1f°", sum.Mean)
	log.Printf("  approximate reps: %d (threshold %.1f°)", reps, threshold)
}

// writePlots saves the PNG and HTML angle charts next to the fixture.
func writePlots(fs fsutil.FileSystem, ex pose.Exercise, samples []float64) error {
	dir := filepath.Dir(*outputPath)
	title := fmt.Sprintf("%s - %s angle", *namePrefix, ex.Name)
	reps, threshold := ex.CountReps(samples)

	pngPath := filepath.Join(dir, *namePrefix+"_angles.png")
	if err := report.SavePNG(pngPath, title, samples); err != nil {
		return err
	}
	htmlPath := filepath.Join(dir, *namePrefix+"_angles.html")
	if err := report.SaveHTML(fs, htmlPath, title, samples, threshold, reps); err != nil {
		return err
	}
	log.Printf("wrote angle plots: %s, %s", pngPath, htmlPath)
	return nil
}

// resolveModelPath picks the model asset path: the -model flag if given,
// then pose_landmarker.task beside the executable, then the home directory
// fallback. Existence is checked by the detector, which fails the run when
// the asset is genuinely missing.
func resolveModelPath() string {
	if *modelPath != "" {
		return *modelPath
	}
	if exe, err := os.Executable(); err == nil {
		beside := filepath.Join(filepath.Dir(exe), defaultModelName)
		if _, err := os.Stat(beside); err == nil {
			return beside
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultModelName
	}
	return filepath.Join(home, ".pose.report", defaultModelName)
}
