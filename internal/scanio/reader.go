// Package scanio is the row-oriented scan source and sink for the occlusion
// engine: CSV in (timestep plus 360 lidar_* range columns), annotated CSV
// out (one row per processed frame).
package scanio

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/spinscan-data/occlusion.report/internal/occlusion"
)

// Reader yields one ScanFrame per call from a CSV stream whose header names
// a timestep column and lidar_0..lidar_359 range columns. Column order in
// the file does not matter; beams are bound by the numeric suffix.
type Reader struct {
	csv      *csv.Reader
	beamCols [occlusion.BeamCount]int
	tsCol    int
	row      int
}

// NewReader consumes the header row and binds the beam columns. It fails if
// the header does not carry exactly one column per beam.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // row length is validated per frame, not fatally

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading scan header: %w", err)
	}

	type beamCol struct {
		beam int
		col  int
	}
	var cols []beamCol
	tsCol := -1
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == "timestep" {
			tsCol = i
			continue
		}
		if suffix, ok := strings.CutPrefix(name, "lidar_"); ok {
			beam, err := strconv.Atoi(suffix)
			if err != nil {
				return nil, fmt.Errorf("scan header: bad beam column %q", name)
			}
			cols = append(cols, beamCol{beam: beam, col: i})
		}
	}
	if tsCol < 0 {
		return nil, fmt.Errorf("scan header: no timestep column")
	}
	if len(cols) != occlusion.BeamCount {
		return nil, fmt.Errorf("scan header: expected %d lidar_* columns, got %d", occlusion.BeamCount, len(cols))
	}
	sort.Slice(cols, func(i, j int) bool { return cols[i].beam < cols[j].beam })

	rd := &Reader{csv: cr, tsCol: tsCol}
	for i, c := range cols {
		if c.beam != i {
			return nil, fmt.Errorf("scan header: missing column lidar_%d", i)
		}
		rd.beamCols[i] = c.col
	}
	return rd, nil
}

// Read returns the next frame, io.EOF at end of stream, or a
// *occlusion.MalformedFrameError for a bad row. A malformed row consumes
// only itself: the reader stays positioned on the following row.
func (r *Reader) Read() (*occlusion.ScanFrame, error) {
	record, err := r.csv.Read()
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading scan row: %w", err)
	}
	r.row++

	if r.tsCol >= len(record) {
		return nil, &occlusion.MalformedFrameError{Reason: fmt.Sprintf("row %d: missing timestep field", r.row)}
	}
	timestep, err := strconv.ParseInt(strings.TrimSpace(record[r.tsCol]), 10, 64)
	if err != nil {
		return nil, &occlusion.MalformedFrameError{Reason: fmt.Sprintf("row %d: bad timestep %q", r.row, record[r.tsCol])}
	}

	ranges := make([]float64, occlusion.BeamCount)
	for beam, col := range r.beamCols {
		if col >= len(record) {
			return nil, &occlusion.MalformedFrameError{
				Timestep: timestep,
				Reason:   fmt.Sprintf("row %d: %d fields, beam %d missing", r.row, len(record), beam),
			}
		}
		v, err := parseRange(record[col])
		if err != nil {
			return nil, &occlusion.MalformedFrameError{
				Timestep: timestep,
				Reason:   fmt.Sprintf("row %d: beam %d: %v", r.row, beam, err),
			}
		}
		ranges[beam] = v
	}

	return occlusion.NewScanFrame(timestep, ranges)
}

// parseRange accepts decimal ranges and the literal infinite/NaN markers
// ("inf", "+infinity", "nan", any case). Anything else is malformed; unknown
// tokens are not silently coerced.
func parseRange(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable range %q", s)
	}
	return v, nil
}
