package scanio

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/spinscan-data/occlusion.report/internal/occlusion"
)

// OutputHeader is the column layout of the annotated sink, one row per
// processed frame. The three multi-valued fields use "; " between segments
// and are empty strings when the frame reports no occlusion.
var OutputHeader = []string{
	"timestep",
	"has_occlusion",
	"num_segments",
	"angle_ranges_deg",
	"beam_indices",
	"stabilities",
}

// Writer emits one annotated CSV row per FrameResult.
type Writer struct {
	csv         *csv.Writer
	wroteHeader bool
}

// NewWriter wraps w in an annotated-result writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// Write appends one frame's row, emitting the header first if it has not
// been written yet.
func (w *Writer) Write(res *occlusion.FrameResult) error {
	if !w.wroteHeader {
		if err := w.csv.Write(OutputHeader); err != nil {
			return fmt.Errorf("writing result header: %w", err)
		}
		w.wroteHeader = true
	}

	hasOcclusion := "0"
	if res.HasOcclusion {
		hasOcclusion = "1"
	}
	record := []string{
		strconv.FormatInt(res.Timestep, 10),
		hasOcclusion,
		strconv.Itoa(len(res.Segments)),
		occlusion.FormatAngleRanges(res.Segments),
		occlusion.FormatBeamRanges(res.Segments),
		occlusion.FormatStabilities(res.Segments),
	}
	if err := w.csv.Write(record); err != nil {
		return fmt.Errorf("writing result for timestep %d: %w", res.Timestep, err)
	}
	return nil
}

// Flush forces buffered rows to the underlying writer and reports any
// deferred write error.
func (w *Writer) Flush() error {
	w.csv.Flush()
	return w.csv.Error()
}
