// Command occlusion streams LiDAR scan rows from a CSV through the
// occlusion engine and writes one annotated result row per frame.
// Optionally the run and its per-frame results are recorded to SQLite.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spinscan-data/occlusion.report/internal/config"
	"github.com/spinscan-data/occlusion.report/internal/monitoring"
	"github.com/spinscan-data/occlusion.report/internal/occlusion"
	"github.com/spinscan-data/occlusion.report/internal/occlusiondb"
	"github.com/spinscan-data/occlusion.report/internal/scanio"
	"github.com/spinscan-data/occlusion.report/internal/version"
)

var (
	inputPath  = flag.String("input", "", "Input CSV path with timestep,lidar_* columns")
	outputPath = flag.String("output", "", "Output CSV path for occlusion annotations")
	dbPath     = flag.String("db", "", "Optional SQLite database to record the run")
	configPath = flag.String("config", "", "Optional JSON tuning file (flags override it)")
	showVers   = flag.Bool("version", false, "Print version and exit")

	historySize          = flag.Int("history-size", 30, "Sliding history window in frames")
	minSegmentBeams      = flag.Int("min-segment-beams", 5, "Minimum blocked-run width to keep")
	gapMergeBeams        = flag.Int("gap-merge-beams", 2, "Maximum clear gap merged between blocked runs")
	driftToleranceBeams  = flag.Int("drift-tolerance-beams", 3, "Maximum circular drift for segment matching")
	persistenceThreshold = flag.Float64("persistence-threshold", 0.7, "Minimum stability to report an occlusion")
	minOcclusionWidthDeg = flag.Float64("min-occlusion-width-deg", 5.0, "Minimum angular width to report")
	angleMinDeg          = flag.Float64("angle-min-deg", -180.0, "Angle of lidar_0 in the scanner frame")
	angleSpanDeg         = flag.Float64("angle-span-deg", 360.0, "Total angular span of the 360 beams")
)

func main() {
	flag.Parse()

	if *showVers {
		fmt.Println(version.String())
		return
	}

	if *inputPath == "" || *outputPath == "" {
		log.Fatal("both -input and -output are required")
	}

	cfg := buildConfig()
	proc, err := occlusion.NewFrameProcessor(cfg)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	in, err := os.Open(*inputPath)
	if err != nil {
		log.Fatalf("opening input: %v", err)
	}
	defer in.Close()

	reader, err := scanio.NewReader(in)
	if err != nil {
		log.Fatalf("reading scan source: %v", err)
	}

	out, err := os.Create(*outputPath)
	if err != nil {
		log.Fatalf("creating output: %v", err)
	}
	defer out.Close()
	writer := scanio.NewWriter(out)

	var db *occlusiondb.OcclusionDB
	var runID string
	if *dbPath != "" {
		db, err = occlusiondb.Open(*dbPath)
		if err != nil {
			log.Fatalf("opening database: %v", err)
		}
		defer db.Close()

		params, err := json.Marshal(cfg)
		if err != nil {
			log.Fatalf("encoding run params: %v", err)
		}
		runID, err = db.InsertRun(occlusiondb.RunRecord{
			Source:    *inputPath,
			Params:    params,
			StartedAt: time.Now(),
		})
		if err != nil {
			log.Fatalf("recording run: %v", err)
		}
		log.Printf("recording run %s to %s", runID, *dbPath)
	}

	var stats occlusion.RunStats
	skipped := 0
	for {
		frame, err := reader.Read()
		if err == io.EOF {
			break
		}
		var malformed *occlusion.MalformedFrameError
		if errors.As(err, &malformed) {
			// A bad row only loses itself; history state is untouched.
			monitoring.Logf("skipping malformed row: %v", malformed)
			skipped++
			continue
		}
		if err != nil {
			log.Fatalf("reading scan source: %v", err)
		}

		res, err := proc.Process(frame)
		if err != nil {
			// Out-of-order delivery would corrupt the stability window, so
			// the run aborts rather than guessing.
			log.Fatalf("processing timestep %d: %v", frame.Timestep, err)
		}

		if err := writer.Write(res); err != nil {
			log.Fatalf("writing result: %v", err)
		}
		if db != nil {
			if err := db.InsertFrameResult(runID, res); err != nil {
				log.Fatalf("recording frame result: %v", err)
			}
		}
		stats.Observe(res)
	}

	if err := writer.Flush(); err != nil {
		log.Fatalf("flushing output: %v", err)
	}

	summary := stats.Summary()
	if db != nil {
		if err := db.CompleteRun(runID, summary.Frames, summary.OccludedFrames, time.Now(), ""); err != nil {
			log.Fatalf("completing run: %v", err)
		}
	}

	log.Printf("processed %d frames (%d skipped): %d occluded, %d segments reported",
		summary.Frames, skipped, summary.OccludedFrames, summary.SegmentsReported)
	if summary.SegmentsReported > 0 {
		log.Printf("stability mean=%.3f stddev=%.3f p50=%.3f p90=%.3f max=%.3f",
			summary.StabilityMean, summary.StabilityStdDev,
			summary.StabilityP50, summary.StabilityP90, summary.StabilityMax)
	}
}

// buildConfig layers the configuration sources: engine defaults, then the
// JSON tuning file, then any explicitly set flags.
func buildConfig() occlusion.DetectorConfig {
	cfg := occlusion.DefaultDetectorConfig()
	if *configPath != "" {
		tuning, err := config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("loading tuning config: %v", err)
		}
		cfg = tuning.DetectorConfig()
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "history-size":
			cfg.HistorySize = *historySize
		case "min-segment-beams":
			cfg.MinSegmentBeams = *minSegmentBeams
		case "gap-merge-beams":
			cfg.GapMergeBeams = *gapMergeBeams
		case "drift-tolerance-beams":
			cfg.DriftToleranceBeams = *driftToleranceBeams
		case "persistence-threshold":
			cfg.PersistenceThreshold = *persistenceThreshold
		case "min-occlusion-width-deg":
			cfg.MinOcclusionWidthDeg = *minOcclusionWidthDeg
		case "angle-min-deg":
			cfg.AngleMinDeg = *angleMinDeg
		case "angle-span-deg":
			cfg.AngleSpanDeg = *angleSpanDeg
		}
	})
	return cfg
}
