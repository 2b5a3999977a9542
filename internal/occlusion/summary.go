package occlusion

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// RunStats accumulates frame results across a run for end-of-run reporting.
// It observes results as they stream past and never retains the frames
// themselves.
type RunStats struct {
	frames      int
	occluded    int
	segments    int
	stabilities []float64
}

// Observe folds one frame result into the running statistics.
func (s *RunStats) Observe(res *FrameResult) {
	s.frames++
	if res.HasOcclusion {
		s.occluded++
	}
	s.segments += len(res.Segments)
	for _, seg := range res.Segments {
		s.stabilities = append(s.stabilities, seg.Stability)
	}
}

// RunSummary is the rollup of a completed run.
type RunSummary struct {
	Frames           int
	OccludedFrames   int
	SegmentsReported int
	StabilityMean    float64
	StabilityStdDev  float64
	StabilityP50     float64
	StabilityP90     float64
	StabilityMax     float64
}

// Summary computes the rollup for everything observed so far. Stability
// statistics cover reported segments only; they are zero when no segment
// crossed the reporting threshold.
func (s *RunStats) Summary() RunSummary {
	sum := RunSummary{
		Frames:           s.frames,
		OccludedFrames:   s.occluded,
		SegmentsReported: s.segments,
	}
	if len(s.stabilities) == 0 {
		return sum
	}
	sorted := make([]float64, len(s.stabilities))
	copy(sorted, s.stabilities)
	sort.Float64s(sorted)

	sum.StabilityMean = stat.Mean(sorted, nil)
	if len(sorted) > 1 {
		sum.StabilityStdDev = stat.StdDev(sorted, nil)
	}
	sum.StabilityP50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	sum.StabilityP90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	sum.StabilityMax = sorted[len(sorted)-1]
	return sum
}
