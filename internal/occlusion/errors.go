package occlusion

import "fmt"

// MalformedFrameError reports a frame that cannot enter the engine: wrong
// beam count, or a range value outside the accepted domain. The frame is
// rejected at the row boundary and history state is left untouched, so the
// next valid frame is unaffected.
type MalformedFrameError struct {
	Timestep int64
	Reason   string
}

func (e *MalformedFrameError) Error() string {
	return fmt.Sprintf("malformed frame at timestep %d: %s", e.Timestep, e.Reason)
}

// OutOfOrderFrameError reports a frame whose timestep is not strictly greater
// than the previously processed one. Processing it would silently corrupt the
// stability accounting, so the engine refuses and leaves the decision to the
// caller.
type OutOfOrderFrameError struct {
	Timestep     int64
	LastTimestep int64
}

func (e *OutOfOrderFrameError) Error() string {
	return fmt.Sprintf("out-of-order frame: timestep %d not greater than last processed %d", e.Timestep, e.LastTimestep)
}
