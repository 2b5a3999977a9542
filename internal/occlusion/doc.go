// Package occlusion implements the occlusion segment tracking engine: it
// analyzes sequences of 360-beam range scans and distinguishes true
// occlusions (something physically and persistently blocking beams) from
// transient out-of-range readings.
//
// The pipeline per frame is extraction (contiguous blocked runs with gap
// merging on the circular ring), temporal matching against a sliding history
// of tracked segments, and stability classification against tunable
// thresholds. The engine receives already-parsed frames and returns
// structured results; it never touches I/O.
package occlusion
