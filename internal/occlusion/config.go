package occlusion

import "fmt"

// DetectorConfig holds the tuning knobs for the occlusion engine. All knobs
// are validated at construction; a FrameProcessor is never instantiated with
// an invalid configuration.
type DetectorConfig struct {
	HistorySize          int     `json:"history_size"`            // Sliding window length in frames
	MinSegmentBeams      int     `json:"min_segment_beams"`       // Minimum segment width to keep after merging
	GapMergeBeams        int     `json:"gap_merge_beams"`         // Maximum clear gap merged between blocked runs
	DriftToleranceBeams  int     `json:"drift_tolerance_beams"`   // Maximum circular center drift for matching
	PersistenceThreshold float64 `json:"persistence_threshold"`   // Minimum stability to report an occlusion
	MinOcclusionWidthDeg float64 `json:"min_occlusion_width_deg"` // Minimum angular width to report an occlusion
	AngleMinDeg          float64 `json:"angle_min_deg"`           // Angle of beam 0 in the scanner frame
	AngleSpanDeg         float64 `json:"angle_span_deg"`          // Total angular span covered by the 360 beams
}

// DefaultDetectorConfig returns the default engine configuration.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		HistorySize:          30,
		MinSegmentBeams:      5,
		GapMergeBeams:        2,
		DriftToleranceBeams:  3,
		PersistenceThreshold: 0.7,
		MinOcclusionWidthDeg: 5.0,
		AngleMinDeg:          -180.0,
		AngleSpanDeg:         360.0,
	}
}

// Validate checks that every knob is within its stated domain.
func (c DetectorConfig) Validate() error {
	if c.HistorySize < 1 {
		return fmt.Errorf("history_size must be >= 1, got %d", c.HistorySize)
	}
	if c.MinSegmentBeams < 1 {
		return fmt.Errorf("min_segment_beams must be >= 1, got %d", c.MinSegmentBeams)
	}
	if c.GapMergeBeams < 0 {
		return fmt.Errorf("gap_merge_beams must be >= 0, got %d", c.GapMergeBeams)
	}
	if c.DriftToleranceBeams < 0 {
		return fmt.Errorf("drift_tolerance_beams must be >= 0, got %d", c.DriftToleranceBeams)
	}
	if c.PersistenceThreshold < 0 || c.PersistenceThreshold > 1 {
		return fmt.Errorf("persistence_threshold must be in [0,1], got %v", c.PersistenceThreshold)
	}
	if c.MinOcclusionWidthDeg < 0 {
		return fmt.Errorf("min_occlusion_width_deg must be >= 0, got %v", c.MinOcclusionWidthDeg)
	}
	if c.AngleSpanDeg <= 0 {
		return fmt.Errorf("angle_span_deg must be > 0, got %v", c.AngleSpanDeg)
	}
	return nil
}
