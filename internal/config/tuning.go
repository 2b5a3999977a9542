// Package config loads the JSON tuning file for the occlusion engine.
// Fields omitted from the file keep their defaults, so partial configs are
// safe; the same knobs exist as CLI flags and flags win over the file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spinscan-data/occlusion.report/internal/occlusion"
)

// TuningConfig mirrors the engine's configuration surface. Pointer fields
// distinguish "not set" from an explicit zero.
type TuningConfig struct {
	HistorySize          *int     `json:"history_size,omitempty"`
	MinSegmentBeams      *int     `json:"min_segment_beams,omitempty"`
	GapMergeBeams        *int     `json:"gap_merge_beams,omitempty"`
	DriftToleranceBeams  *int     `json:"drift_tolerance_beams,omitempty"`
	PersistenceThreshold *float64 `json:"persistence_threshold,omitempty"`
	MinOcclusionWidthDeg *float64 `json:"min_occlusion_width_deg,omitempty"`
	AngleMinDeg          *float64 `json:"angle_min_deg,omitempty"`
	AngleSpanDeg         *float64 `json:"angle_span_deg,omitempty"`
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The path must end
// in .json and stay under a sanity size cap.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &TuningConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks every set field against its stated domain. Unset fields
// fall back to valid defaults and need no checking.
func (c *TuningConfig) Validate() error {
	if c.HistorySize != nil && *c.HistorySize < 1 {
		return fmt.Errorf("history_size must be >= 1, got %d", *c.HistorySize)
	}
	if c.MinSegmentBeams != nil && *c.MinSegmentBeams < 1 {
		return fmt.Errorf("min_segment_beams must be >= 1, got %d", *c.MinSegmentBeams)
	}
	if c.GapMergeBeams != nil && *c.GapMergeBeams < 0 {
		return fmt.Errorf("gap_merge_beams must be >= 0, got %d", *c.GapMergeBeams)
	}
	if c.DriftToleranceBeams != nil && *c.DriftToleranceBeams < 0 {
		return fmt.Errorf("drift_tolerance_beams must be >= 0, got %d", *c.DriftToleranceBeams)
	}
	if c.PersistenceThreshold != nil {
		if *c.PersistenceThreshold < 0 || *c.PersistenceThreshold > 1 {
			return fmt.Errorf("persistence_threshold must be between 0 and 1, got %f", *c.PersistenceThreshold)
		}
	}
	if c.MinOcclusionWidthDeg != nil && *c.MinOcclusionWidthDeg < 0 {
		return fmt.Errorf("min_occlusion_width_deg must be >= 0, got %f", *c.MinOcclusionWidthDeg)
	}
	if c.AngleSpanDeg != nil && *c.AngleSpanDeg <= 0 {
		return fmt.Errorf("angle_span_deg must be > 0, got %f", *c.AngleSpanDeg)
	}
	return nil
}

// DetectorConfig materializes the tuning into an engine configuration,
// filling unset fields with the engine defaults.
func (c *TuningConfig) DetectorConfig() occlusion.DetectorConfig {
	cfg := occlusion.DefaultDetectorConfig()
	if c.HistorySize != nil {
		cfg.HistorySize = *c.HistorySize
	}
	if c.MinSegmentBeams != nil {
		cfg.MinSegmentBeams = *c.MinSegmentBeams
	}
	if c.GapMergeBeams != nil {
		cfg.GapMergeBeams = *c.GapMergeBeams
	}
	if c.DriftToleranceBeams != nil {
		cfg.DriftToleranceBeams = *c.DriftToleranceBeams
	}
	if c.PersistenceThreshold != nil {
		cfg.PersistenceThreshold = *c.PersistenceThreshold
	}
	if c.MinOcclusionWidthDeg != nil {
		cfg.MinOcclusionWidthDeg = *c.MinOcclusionWidthDeg
	}
	if c.AngleMinDeg != nil {
		cfg.AngleMinDeg = *c.AngleMinDeg
	}
	if c.AngleSpanDeg != nil {
		cfg.AngleSpanDeg = *c.AngleSpanDeg
	}
	return cfg
}
