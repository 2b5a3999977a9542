package occlusion

import (
	"fmt"
	"strings"
)

// ClassifiedSegment is one reported occlusion for a frame. Angles are in
// degrees, wrap-aware: a wrapping segment keeps its literal start/end angles
// even when start exceeds end numerically.
type ClassifiedSegment struct {
	StartAngleDeg float64
	EndAngleDeg   float64
	StartBeam     int
	EndBeam       int
	WidthBeams    int
	Stability     float64
	IsOcclusion   bool
}

// FrameResult is the annotated output for one processed frame. Segments
// holds only the classifications that crossed the reporting threshold;
// candidates that remain tracked internally but scored below it are absent.
type FrameResult struct {
	Timestep     int64
	HasOcclusion bool
	Segments     []ClassifiedSegment
}

// StabilityClassifier scores each tracked segment for the current frame and
// keeps the ones that qualify as true occlusions.
type StabilityClassifier struct {
	cfg DetectorConfig
}

// NewStabilityClassifier creates a classifier for the given configuration.
func NewStabilityClassifier(cfg DetectorConfig) *StabilityClassifier {
	return &StabilityClassifier{cfg: cfg}
}

// Stability returns the fraction of the history window in which the tracked
// segment was observed. The denominator is the full window length, so the
// score ramps from low confidence at startup and a lineage cannot qualify
// before it has persisted across a meaningful share of the window.
func (c *StabilityClassifier) Stability(tr *TrackedSegment) float64 {
	return float64(tr.MatchCount) / float64(c.cfg.HistorySize)
}

// Classify builds the FrameResult for one frame from its candidates and the
// tracked segments they were matched to. A segment is reported if and only
// if its stability meets the persistence threshold and its angular width
// meets the minimum occlusion width; everything else stays internal in case
// it stabilizes later.
func (c *StabilityClassifier) Classify(timestep int64, candidates []Segment, tracked []*TrackedSegment) *FrameResult {
	res := &FrameResult{Timestep: timestep}
	for i, cand := range candidates {
		stability := c.Stability(tracked[i])
		widthDeg := float64(cand.WidthBeams) * (c.cfg.AngleSpanDeg / BeamCount)
		if stability < c.cfg.PersistenceThreshold || widthDeg < c.cfg.MinOcclusionWidthDeg {
			continue
		}
		res.Segments = append(res.Segments, ClassifiedSegment{
			StartAngleDeg: BeamToDegrees(cand.StartBeam, c.cfg.AngleMinDeg, c.cfg.AngleSpanDeg),
			EndAngleDeg:   BeamToDegrees(cand.EndBeam, c.cfg.AngleMinDeg, c.cfg.AngleSpanDeg),
			StartBeam:     cand.StartBeam,
			EndBeam:       cand.EndBeam,
			WidthBeams:    cand.WidthBeams,
			Stability:     stability,
			IsOcclusion:   true,
		})
	}
	res.HasOcclusion = len(res.Segments) > 0
	return res
}

// FormatAngleRanges renders the reported angle ranges as
// "<start> to <end>; ..." with one decimal place, or "" when empty.
func FormatAngleRanges(segs []ClassifiedSegment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = fmt.Sprintf("%.1f to %.1f", s.StartAngleDeg, s.EndAngleDeg)
	}
	return strings.Join(parts, "; ")
}

// FormatBeamRanges renders the reported beam index ranges as
// "<start>-<end>; ..." matching the angle-range order, or "" when empty.
func FormatBeamRanges(segs []ClassifiedSegment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = fmt.Sprintf("%d-%d", s.StartBeam, s.EndBeam)
	}
	return strings.Join(parts, "; ")
}

// FormatStabilities renders the reported stability scores with two decimal
// places, matching the angle-range order, or "" when empty.
func FormatStabilities(segs []ClassifiedSegment) string {
	parts := make([]string, len(segs))
	for i, s := range segs {
		parts[i] = fmt.Sprintf("%.2f", s.Stability)
	}
	return strings.Join(parts, "; ")
}
