package occlusiondb

import (
	"fmt"

	"github.com/spinscan-data/occlusion.report/internal/occlusion"
)

// FrameRow is one persisted frame result. The multi-valued fields carry the
// same formatted strings the CSV sink emits, so a run can be re-exported
// byte-identically.
type FrameRow struct {
	RunID          string `json:"run_id"`
	Timestep       int64  `json:"timestep"`
	HasOcclusion   bool   `json:"has_occlusion"`
	NumSegments    int    `json:"num_segments"`
	AngleRangesDeg string `json:"angle_ranges_deg"`
	BeamIndices    string `json:"beam_indices"`
	Stabilities    string `json:"stabilities"`
}

// InsertFrameResult stores one frame's annotated result under a run.
func (db *OcclusionDB) InsertFrameResult(runID string, res *occlusion.FrameResult) error {
	query := `
		INSERT INTO occlusion_frames (
			run_id, timestep, has_occlusion, num_segments,
			angle_ranges_deg, beam_indices, stabilities
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	hasOcclusion := 0
	if res.HasOcclusion {
		hasOcclusion = 1
	}
	_, err := db.Exec(query,
		runID,
		res.Timestep,
		hasOcclusion,
		len(res.Segments),
		occlusion.FormatAngleRanges(res.Segments),
		occlusion.FormatBeamRanges(res.Segments),
		occlusion.FormatStabilities(res.Segments),
	)
	if err != nil {
		return fmt.Errorf("inserting frame result for run %s timestep %d: %w", runID, res.Timestep, err)
	}
	return nil
}

// GetFrameResults returns a run's frame rows in timestep order.
func (db *OcclusionDB) GetFrameResults(runID string, limit int) ([]FrameRow, error) {
	if limit <= 0 {
		limit = 1000
	}
	query := `
		SELECT run_id, timestep, has_occlusion, num_segments,
		       angle_ranges_deg, beam_indices, stabilities
		FROM occlusion_frames
		WHERE run_id = ?
		ORDER BY timestep ASC
		LIMIT ?
	`
	rows, err := db.Query(query, runID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying frame results for run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []FrameRow
	for rows.Next() {
		var fr FrameRow
		var hasOcclusion int
		if err := rows.Scan(
			&fr.RunID, &fr.Timestep, &hasOcclusion, &fr.NumSegments,
			&fr.AngleRangesDeg, &fr.BeamIndices, &fr.Stabilities,
		); err != nil {
			return nil, fmt.Errorf("scanning frame row: %w", err)
		}
		fr.HasOcclusion = hasOcclusion != 0
		out = append(out, fr)
	}
	return out, rows.Err()
}

// CountOccludedFrames returns how many of a run's frames reported at least
// one occlusion.
func (db *OcclusionDB) CountOccludedFrames(runID string) (int, error) {
	var n int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM occlusion_frames WHERE run_id = ? AND has_occlusion = 1`,
		runID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting occluded frames for run %s: %w", runID, err)
	}
	return n, nil
}
