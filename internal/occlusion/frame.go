package occlusion

import (
	"fmt"
	"math"
)

// ScanFrame is a single 360-beam sensor reading. Each range is either a
// finite non-negative measurement in meters, or the "no return" sentinel
// (+Inf; NaN is accepted and treated the same way, since some sources emit
// it for dropped returns). Frames are immutable once constructed.
type ScanFrame struct {
	Timestep int64
	Ranges   [BeamCount]float64
}

// NewScanFrame validates a raw row and builds a ScanFrame. It returns a
// *MalformedFrameError if the row does not contain exactly BeamCount values
// or any value is outside the accepted domain.
func NewScanFrame(timestep int64, ranges []float64) (*ScanFrame, error) {
	if len(ranges) != BeamCount {
		return nil, &MalformedFrameError{
			Timestep: timestep,
			Reason:   fmt.Sprintf("expected %d range values, got %d", BeamCount, len(ranges)),
		}
	}
	f := &ScanFrame{Timestep: timestep}
	for i, r := range ranges {
		if math.IsInf(r, -1) {
			return nil, &MalformedFrameError{
				Timestep: timestep,
				Reason:   fmt.Sprintf("beam %d: -Inf is not a valid range", i),
			}
		}
		if !math.IsInf(r, 1) && !math.IsNaN(r) && r < 0 {
			return nil, &MalformedFrameError{
				Timestep: timestep,
				Reason:   fmt.Sprintf("beam %d: negative range %v", i, r),
			}
		}
		f.Ranges[i] = r
	}
	return f, nil
}

// Blocked reports whether beam i carries the "no return" sentinel.
func (f *ScanFrame) Blocked(i int) bool {
	r := f.Ranges[i]
	return math.IsInf(r, 1) || math.IsNaN(r)
}
